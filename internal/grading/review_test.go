package grading

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReviewComposite(t *testing.T) {
	q := Question{
		ID:        1,
		Type:      TypeBlankBoxes,
		Points:    5,
		Gaps:      []Gap{{CorrectAnswers: []string{"cat", "kitten"}}},
		Dropdowns: []Dropdown{{CorrectAnswer: "red"}},
		HintWords: []HintWord{{Word: "sun"}},
	}
	payload := mustJSON(t, map[string]string{
		"gap_0": "kitten", "dropdown_0": "blue", "hint_0": "sun",
	})

	review := BuildReview(q, payload)

	assert.Equal(t, []string{"Gap 1", "Dropdown 1", "Hint 1"}, review.QuestionParts)
	assert.Equal(t, []string{"cat / kitten", "red", "sun"}, review.CorrectAnswersRow)
	assert.Equal(t, []string{"kitten", "blue", "sun"}, review.UserAnswersRow)
	assert.Equal(t, []bool{true, false, true}, review.AnswerStatusRow)
	assert.False(t, review.RequiresManualGrading)
}

// The review rows must be derived from the same sub-units as the score: for
// every auto-graded question the count of true entries in the status row has
// to equal CorrectItems, and the row length TotalItems. (Extra checkbox
// selections add display-only rows, so the checkbox payload here stays within
// the correct options.)
func TestBuildReviewStaysInSyncWithEvaluate(t *testing.T) {
	questions := []Question{
		{
			ID: 1, Type: TypeBlankBoxes, Points: 2,
			Gaps:      []Gap{{CorrectAnswers: []string{"cat"}}, {CorrectAnswers: []string{"dog"}}},
			Dropdowns: []Dropdown{{CorrectAnswer: "red"}},
		},
		{
			ID: 2, Type: TypeMultipleChoice, Points: 10,
			Options: []Option{{Text: "Paris", IsCorrect: true}, {Text: "Rome"}},
		},
		{
			ID: 3, Type: TypeCheckboxes, Points: 1,
			Options: []Option{{Text: "A", IsCorrect: true}, {Text: "B"}, {Text: "C", IsCorrect: true}},
		},
		{
			ID: 4, Type: TypeFindHighlight, Points: 3,
			Gaps: []Gap{{CorrectAnswers: []string{"the cat"}}, {CorrectAnswers: []string{"a dog"}}},
		},
	}
	payloads := map[uint]json.RawMessage{
		1: mustJSON(t, map[string]string{"gap_0": "cat", "dropdown_0": "blue"}),
		2: json.RawMessage(`"Rome"`),
		3: json.RawMessage(`[0]`),
		4: mustJSON(t, []map[string]string{{"text": "a dog."}}),
	}

	for _, q := range questions {
		t.Run(fmt.Sprintf("question_%d", q.ID), func(t *testing.T) {
			res := Evaluate(q, payloads[q.ID])
			review := BuildReview(q, payloads[q.ID])

			require.Len(t, review.AnswerStatusRow, res.TotalItems)
			require.Len(t, review.QuestionParts, res.TotalItems)
			require.Len(t, review.CorrectAnswersRow, res.TotalItems)
			require.Len(t, review.UserAnswersRow, res.TotalItems)

			matched := 0
			for _, ok := range review.AnswerStatusRow {
				if ok {
					matched++
				}
			}
			assert.Equal(t, res.CorrectItems, matched)
		})
	}
}

func TestBuildReviewManual(t *testing.T) {
	q := Question{ID: 9, Type: TypeEssay, Points: 10}
	review := BuildReview(q, json.RawMessage(`"my essay text"`))

	assert.True(t, review.RequiresManualGrading)
	assert.Equal(t, []string{"Response"}, review.QuestionParts)
	assert.Equal(t, []string{"my essay text"}, review.UserAnswersRow)
}

func TestBuildReviewHighlightConsumption(t *testing.T) {
	q := Question{
		ID:   10,
		Type: TypeFindHighlight,
		Gaps: []Gap{{CorrectAnswers: []string{"echo"}}, {CorrectAnswers: []string{"echo"}}},
	}
	review := BuildReview(q, mustJSON(t, []map[string]string{{"text": "echo"}}))

	assert.Equal(t, []bool{true, false}, review.AnswerStatusRow)
	assert.Equal(t, []string{"echo", ""}, review.UserAnswersRow)
}

// A wrong checkbox selection makes the question incorrect, so the review has
// to show it instead of listing only the expected options.
func TestBuildReviewCheckboxExtraSelections(t *testing.T) {
	q := Question{
		ID:     11,
		Type:   TypeCheckboxes,
		Points: 2,
		Options: []Option{
			{Text: "A", IsCorrect: true},
			{Text: "B"},
			{Text: "C", IsCorrect: true},
		},
	}
	review := BuildReview(q, json.RawMessage(`[0,1,2]`))

	require.Len(t, review.UserAnswersRow, 3)
	assert.Equal(t, []string{"Option 1", "Option 3", "Option 2"}, review.QuestionParts)
	assert.Equal(t, []string{"A", "C", "B"}, review.UserAnswersRow)
	assert.Equal(t, []string{"A", "C", ""}, review.CorrectAnswersRow)
	assert.Equal(t, []bool{true, true, false}, review.AnswerStatusRow)

	res := Evaluate(q, json.RawMessage(`[0,1,2]`))
	require.NotNil(t, res.IsCorrect)
	assert.False(t, *res.IsCorrect)
}
