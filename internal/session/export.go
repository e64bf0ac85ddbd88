package session

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/samber/lo"
)

// WriteCSV renders the aggregated report: a header row, then per main
// subject a group row followed by its breakdown rows, with a blank spacer
// row between subject blocks.
func WriteCSV(w io.Writer, categories []Category, summaries []SubjectSummary) error {
	out := csv.NewWriter(w)

	header := append(
		[]string{"Group/Subject", "Participant/Detail", "Vote Count"},
		lo.Map(categories, func(c Category, _ int) string { return c.Name })...,
	)
	if err := out.Write(header); err != nil {
		return err
	}

	spacer := make([]string, len(header))
	for _, summary := range summaries {
		row := summaryRow(summary.Subject, summary.Group, categories)
		if err := out.Write(row); err != nil {
			return err
		}
		for _, bucket := range summary.Breakdown {
			if err := out.Write(summaryRow("", bucket, categories)); err != nil {
				return err
			}
		}
		if err := out.Write(spacer); err != nil {
			return err
		}
	}

	out.Flush()
	return out.Error()
}

func summaryRow(subject string, bucket Bucket, categories []Category) []string {
	row := []string{subject, bucket.Label, strconv.Itoa(bucket.Count)}
	for _, cat := range categories {
		row = append(row, FormatScore(bucket.Averages[cat.ID]))
	}
	return row
}
