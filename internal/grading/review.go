package grading

import (
	"encoding/json"
	"fmt"
)

// Review is the read-side projection of one graded question: four parallel
// rows (one entry per sub-unit) for the review/audit UI. It is built from the
// same sub-unit derivation the comparators use, so the positional key scheme
// can never drift between scoring and display.
type Review struct {
	QuestionID            uint     `json:"question_id"`
	QuestionParts         []string `json:"question_parts"`
	CorrectAnswersRow     []string `json:"correct_answers_row"`
	UserAnswersRow        []string `json:"user_answers_row"`
	AnswerStatusRow       []bool   `json:"answer_status_row"`
	RequiresManualGrading bool     `json:"requires_manual_grading"`
}

// BuildReview replays the per-type sub-unit derivation without re-scoring.
func BuildReview(q Question, payload json.RawMessage) Review {
	if q.Type.IsManualGraded() {
		return Review{
			QuestionID:            q.ID,
			QuestionParts:         []string{"Response"},
			CorrectAnswersRow:     []string{""},
			UserAnswersRow:        []string{decodeFreeText(payload)},
			AnswerStatusRow:       []bool{false},
			RequiresManualGrading: true,
		}
	}

	var units []SubUnit
	switch q.Type {
	case TypeBlankBoxes, TypeGeneratedDropdowns, TypeDragDropMatching, TypeReading:
		units = compositeUnits(q, decodeKeyedAnswers(payload))
	case TypeMultipleChoice:
		units = choiceUnits(q, decodeChoice(payload))
	case TypeCheckboxes:
		var extras []int
		units, extras = checkboxUnits(q, decodeIndexSet(payload))
		// Extra wrong selections break correctness, so the review must show
		// them rather than only the expected options.
		for _, i := range extras {
			units = append(units, SubUnit{
				Key:       fmt.Sprintf("option_%d", i),
				Label:     fmt.Sprintf("Option %d", i+1),
				Submitted: q.Options[i].Text,
				Matched:   false,
			})
		}
	case TypeFindHighlight:
		units = highlightUnits(q, decodeHighlights(payload))
	default:
		units = []SubUnit{{
			Label:     "Answer",
			Correct:   string(q.CorrectAnswer),
			Submitted: string(payload),
			Matched:   fallbackMatch(q, payload),
		}}
	}

	review := Review{QuestionID: q.ID}
	for _, u := range units {
		review.QuestionParts = append(review.QuestionParts, u.Label)
		review.CorrectAnswersRow = append(review.CorrectAnswersRow, u.Correct)
		review.UserAnswersRow = append(review.UserAnswersRow, u.Submitted)
		review.AnswerStatusRow = append(review.AnswerStatusRow, u.Matched)
	}
	return review
}

func decodeFreeText(payload json.RawMessage) string {
	if len(payload) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload, &s); err != nil {
		return ""
	}
	return s
}
