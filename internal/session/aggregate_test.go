package session

import "testing"

var testCategories = []Category{
	{ID: "c1", Name: "Clarity"},
	{ID: "c2", Name: "Depth"},
}

func groupVote(subject, device string, c1 float64) Vote {
	return Vote{
		MainSubject: subject,
		Subject:     subject,
		Scores:      map[string]float64{"c1": c1},
		DeviceID:    device,
	}
}

func TestSummarize_Empty(t *testing.T) {
	if got := Summarize(testCategories, nil); len(got) != 0 {
		t.Errorf("expected no summaries, got %d", len(got))
	}
}

func TestSummarize_SpecExample(t *testing.T) {
	// Two devices score c1=8 and c1=6 for "Team A": count 2, average 7.00.
	votes := []Vote{
		groupVote("Team A", "dev-x", 8),
		groupVote("Team A", "dev-y", 6),
	}

	summaries := Summarize([]Category{{ID: "c1", Name: "Clarity"}}, votes)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 subject, got %d", len(summaries))
	}

	group := summaries[0].Group
	if group.Count != 2 {
		t.Errorf("expected group count 2, got %d", group.Count)
	}
	if got := FormatScore(group.Averages["c1"]); got != "7.00" {
		t.Errorf("expected average 7.00, got %s", got)
	}
}

func TestSummarize_GroupAggregateSpansSubBuckets(t *testing.T) {
	votes := []Vote{
		{MainSubject: "Team A", Subject: "Team A (Group)", Scores: map[string]float64{"c1": 10}},
		{MainSubject: "Team A", Subject: "Team A - Ana", Scores: map[string]float64{"c1": 4}},
		{MainSubject: "Team A", Subject: "Team A - Ben", Scores: map[string]float64{"c1": 7}},
	}

	summaries := Summarize(testCategories, votes)
	group := summaries[0].Group

	if group.Count != 3 {
		t.Errorf("group aggregate must cover the union of sub-buckets, got count %d", group.Count)
	}
	if got := group.Averages["c1"]; got != 7 {
		t.Errorf("expected union average 7, got %v", got)
	}
	if len(summaries[0].Breakdown) != 3 {
		t.Errorf("expected 3 display buckets, got %d", len(summaries[0].Breakdown))
	}
}

func TestSummarize_FirstEncounterOrdering(t *testing.T) {
	votes := []Vote{
		groupVote("Team B", "d1", 1),
		groupVote("Team A", "d2", 1),
		groupVote("Team B", "d3", 1),
		{MainSubject: "Team A", Subject: "Team A - Zoe", Scores: map[string]float64{"c1": 1}, DeviceID: "d4"},
		{MainSubject: "Team A", Subject: "Team A - Ana", Scores: map[string]float64{"c1": 1}, DeviceID: "d5"},
	}

	summaries := Summarize(testCategories, votes)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 subjects, got %d", len(summaries))
	}
	if summaries[0].Subject != "Team B" || summaries[1].Subject != "Team A" {
		t.Errorf("subjects must keep first-encountered order, got %s then %s",
			summaries[0].Subject, summaries[1].Subject)
	}

	labels := make([]string, 0, 3)
	for _, b := range summaries[1].Breakdown {
		labels = append(labels, b.Label)
	}
	want := []string{"Group Evaluation", "Zoe", "Ana"}
	for i, label := range want {
		if labels[i] != label {
			t.Errorf("breakdown order: expected %q at %d, got %v", label, i, labels)
		}
	}
}

func TestSummarize_MissingCategoryCountsAsZero(t *testing.T) {
	votes := []Vote{
		{MainSubject: "Team A", Subject: "Team A", Scores: map[string]float64{"c1": 6}},
		{MainSubject: "Team A", Subject: "Team A", Scores: map[string]float64{"c1": 8, "c2": 4}},
	}

	group := Summarize(testCategories, votes)[0].Group
	if got := group.Averages["c2"]; got != 2 {
		t.Errorf("missing score counts as zero: expected 2, got %v", got)
	}
}

func TestSummarize_TwoDecimalRounding(t *testing.T) {
	votes := []Vote{
		groupVote("Team A", "d1", 1),
		groupVote("Team A", "d2", 1),
		groupVote("Team A", "d3", 2),
	}

	group := Summarize([]Category{{ID: "c1", Name: "Clarity"}}, votes)[0].Group
	if got := FormatScore(group.Averages["c1"]); got != "1.33" {
		t.Errorf("expected 1.33, got %s", got)
	}
}

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		name     string
		main     string
		display  string
		expected string
	}{
		{"participant suffix stripped", "Team A", "Team A - Ana", "Ana"},
		{"plain group", "Team A", "Team A", "Group Evaluation"},
		{"mixed group suffix", "Team A", "Team A (Group)", "Group Evaluation"},
		{"unrelated subject verbatim", "Team A", "Something Else", "Something Else"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayLabel(tt.main, tt.display); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{7, "7.00"},
		{6.5, "6.50"},
		{1.33, "1.33"},
		{0, "0.00"},
	}

	for _, tt := range tests {
		if got := FormatScore(tt.in); got != tt.expected {
			t.Errorf("FormatScore(%v): expected %s, got %s", tt.in, tt.expected, got)
		}
	}
}
