package service

import (
	"testing"
	"time"

	"github.com/prepmed/prepmed-backend/internal/model"
)

func TestMergeBreakdownAccumulatesAcrossResults(t *testing.T) {
	agg := map[string]*SubjectStats{}

	mergeBreakdown(agg, map[string]model.BreakdownEntry{
		"Cardiology": {Total: 10, Correct: 6, Incorrect: 2, Unattempted: 2},
		"Anatomy":    {Total: 5, Correct: 5},
	})
	mergeBreakdown(agg, map[string]model.BreakdownEntry{
		"Cardiology": {Total: 4, Correct: 1, Incorrect: 3},
	})

	cardio := agg["Cardiology"]
	if cardio == nil {
		t.Fatal("expected Cardiology entry")
	}
	if cardio.Total != 14 || cardio.Correct != 7 || cardio.Incorrect != 5 {
		t.Errorf("cardiology totals = %d/%d/%d, want 14/7/5", cardio.Total, cardio.Correct, cardio.Incorrect)
	}
	// Attempted counts only answered questions, not skips.
	if cardio.Attempted != 12 {
		t.Errorf("attempted = %d, want 12", cardio.Attempted)
	}
	if agg["Anatomy"].Attempted != 5 {
		t.Errorf("anatomy attempted = %d, want 5", agg["Anatomy"].Attempted)
	}
}

func TestFlattenStatsComputesAccuracyAndSorts(t *testing.T) {
	agg := map[string]*SubjectStats{
		"Pharmacology": {Subject: "Pharmacology", Correct: 3, Attempted: 4},
		"Anatomy":      {Subject: "Anatomy", Correct: 0, Attempted: 0},
		"Medicine":     {Subject: "Medicine", Correct: 1, Attempted: 2},
	}

	out := flattenStats(agg)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	if out[0].Subject != "Anatomy" || out[1].Subject != "Medicine" || out[2].Subject != "Pharmacology" {
		t.Errorf("order = %s, %s, %s; want alphabetical", out[0].Subject, out[1].Subject, out[2].Subject)
	}
	if out[0].Accuracy != 0 {
		t.Errorf("zero-attempt accuracy = %f, want 0", out[0].Accuracy)
	}
	if out[1].Accuracy != 50 {
		t.Errorf("medicine accuracy = %f, want 50", out[1].Accuracy)
	}
	if out[2].Accuracy != 75 {
		t.Errorf("pharmacology accuracy = %f, want 75", out[2].Accuracy)
	}
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "midweek",
			now:  time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC), // Wednesday
			want: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday maps to itself",
			now:  time.Date(2025, 6, 9, 0, 0, 1, 0, time.UTC),
			want: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to the preceding monday",
			now:  time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC),
			want: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := startOfWeek(tt.now); !got.Equal(tt.want) {
				t.Errorf("startOfWeek(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
