package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func graded(earned, possible float64) Result {
	ok := earned == possible
	return Result{Outcome: OutcomeGraded, IsCorrect: &ok, EarnedPoints: earned, PossiblePoints: possible}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name        string
		results     []Result
		wantPercent int
		wantPassed  bool
	}{
		{
			name:        "perfect score",
			results:     []Result{graded(10, 10), graded(5, 5)},
			wantPercent: 100,
			wantPassed:  true,
		},
		{
			name:        "exactly at threshold passes",
			results:     []Result{graded(9, 10)},
			wantPercent: 90,
			wantPassed:  true,
		},
		{
			name:        "just below threshold fails",
			results:     []Result{graded(89, 100)},
			wantPercent: 89,
			wantPassed:  false,
		},
		{
			name:        "rounds to nearest integer",
			results:     []Result{graded(2, 3)},
			wantPercent: 67,
			wantPassed:  false,
		},
		{
			name:        "no scorable questions is zero, not a division error",
			results:     []Result{{Outcome: OutcomeManual, RequiresManualGrading: true}},
			wantPercent: 0,
			wantPassed:  false,
		},
		{
			name:        "empty result set",
			results:     nil,
			wantPercent: 0,
			wantPassed:  false,
		},
		{
			name: "manual questions are excluded from totals",
			results: []Result{
				graded(10, 10),
				{Outcome: OutcomeManual, RequiresManualGrading: true},
			},
			wantPercent: 100,
			wantPassed:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Aggregate(tt.results)
			assert.Equal(t, tt.wantPercent, score.FinalScorePercent)
			assert.Equal(t, tt.wantPassed, score.Passed)
			assert.GreaterOrEqual(t, score.FinalScorePercent, 0)
			assert.LessOrEqual(t, score.FinalScorePercent, 100)
		})
	}
}

func TestAggregateUsesFullPrecision(t *testing.T) {
	// Three thirds must sum to a full point: the display-rounded per-question
	// Score (0.33 each) would lose a cent, the raw earned values do not.
	results := []Result{
		graded(1.0/3.0, 1.0/3.0),
		graded(1.0/3.0, 1.0/3.0),
		graded(1.0/3.0, 1.0/3.0),
	}
	score := Aggregate(results)
	assert.Equal(t, 100, score.FinalScorePercent)
	assert.True(t, score.Passed)
}
