package session

import (
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Bucket is one aggregated row: the average score per category over a set
// of votes sharing a display subject.
type Bucket struct {
	Label    string             `json:"label"`
	Count    int                `json:"count"`
	Averages map[string]float64 `json:"averages"`
}

// SubjectSummary aggregates every vote for one main subject: the overall
// group bucket over the union of all votes, plus one bucket per display
// subject in first-encountered order.
type SubjectSummary struct {
	Subject   string   `json:"subject"`
	Group     Bucket   `json:"group"`
	Breakdown []Bucket `json:"breakdown"`
}

// Summarize folds the flat vote log into per-subject score summaries. It
// holds no state of its own; the caller passes a snapshot.
func Summarize(categories []Category, votes []Vote) []SubjectSummary {
	var order []string
	bySubject := make(map[string][]Vote)
	for _, v := range votes {
		if _, seen := bySubject[v.MainSubject]; !seen {
			order = append(order, v.MainSubject)
		}
		bySubject[v.MainSubject] = append(bySubject[v.MainSubject], v)
	}

	return lo.Map(order, func(subject string, _ int) SubjectSummary {
		group := bySubject[subject]

		var subOrder []string
		byDisplay := make(map[string][]Vote)
		for _, v := range group {
			if _, seen := byDisplay[v.Subject]; !seen {
				subOrder = append(subOrder, v.Subject)
			}
			byDisplay[v.Subject] = append(byDisplay[v.Subject], v)
		}

		return SubjectSummary{
			Subject: subject,
			Group: Bucket{
				Label:    "Group Score",
				Count:    len(group),
				Averages: averages(categories, group),
			},
			Breakdown: lo.Map(subOrder, func(display string, _ int) Bucket {
				sub := byDisplay[display]
				return Bucket{
					Label:    displayLabel(subject, display),
					Count:    len(sub),
					Averages: averages(categories, sub),
				}
			}),
		}
	})
}

// averages computes the per-category mean over votes, rounded to two
// decimals. A vote missing a category counts as zero for it.
func averages(categories []Category, votes []Vote) map[string]float64 {
	avg := make(map[string]float64, len(categories))
	for _, cat := range categories {
		total := lo.SumBy(votes, func(v Vote) float64 { return v.Scores[cat.ID] })
		avg[cat.ID] = math.Round(total/float64(len(votes))*100) / 100
	}
	return avg
}

// displayLabel derives the export label for a display-subject bucket.
func displayLabel(mainSubject, displaySubject string) string {
	if rest, found := strings.CutPrefix(displaySubject, mainSubject+" - "); found {
		return rest
	}
	if displaySubject == mainSubject || displaySubject == mainSubject+" (Group)" {
		return "Group Evaluation"
	}
	return displaySubject
}

// FormatScore renders an average with fixed two-decimal precision.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
