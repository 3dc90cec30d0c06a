package grading

import (
	"encoding/json"
	"math"
)

// Evaluate grades one submitted answer against its question. It is pure and
// deterministic: the same (question, payload) pair always produces the same
// result, and malformed payloads grade as not correct instead of failing.
func Evaluate(q Question, payload json.RawMessage) Result {
	if q.Type.IsManualGraded() {
		return Result{
			QuestionID:            q.ID,
			Outcome:               OutcomeManual,
			IsCorrect:             nil,
			RequiresManualGrading: true,
		}
	}

	points := float64(q.EffectivePoints())

	switch q.Type {
	case TypeBlankBoxes, TypeGeneratedDropdowns, TypeDragDropMatching, TypeReading:
		return unitResult(q, compositeUnits(q, decodeKeyedAnswers(payload)), points, true)

	case TypeMultipleChoice:
		return unitResult(q, choiceUnits(q, decodeChoice(payload)), points, true)

	case TypeCheckboxes:
		units, extras := checkboxUnits(q, decodeIndexSet(payload))
		return unitResult(q, units, points, len(extras) == 0)

	case TypeFindHighlight:
		return unitResult(q, highlightUnits(q, decodeHighlights(payload)), points, true)

	default:
		// Forward-compatibility fallback for unknown type tags: serialized
		// structural equality against the stored correct answer.
		matched := fallbackMatch(q, payload)
		units := []SubUnit{{Key: "answer", Label: "Answer", Matched: matched}}
		return unitResult(q, units, points, true)
	}
}

// unitResult folds a question's sub-units into a Result. Each sub-unit
// contributes effectivePoints to the possible total and, when matched, to the
// earned total. A question with zero sub-units contributes nothing and is
// silently skipped. cleanSelection is false when the learner selected
// something outside the correct set (checkboxes): the score is unchanged but
// the question-level correctness flag drops.
func unitResult(q Question, units []SubUnit, points float64, cleanSelection bool) Result {
	correct := 0
	for _, u := range units {
		if u.Matched {
			correct++
		}
	}

	earned := float64(correct) * points
	possible := float64(len(units)) * points
	isCorrect := correct == len(units) && cleanSelection

	return Result{
		QuestionID:     q.ID,
		Outcome:        OutcomeGraded,
		IsCorrect:      &isCorrect,
		Score:          round2(earned),
		EarnedPoints:   earned,
		PossiblePoints: possible,
		CorrectItems:   correct,
		TotalItems:     len(units),
	}
}

// EvaluateAttempt grades a full answer set against one question snapshot.
// Every question of the snapshot is graded exactly once — questions the
// learner never answered grade against an empty payload so their possible
// points still count. A submitted answer referencing a question missing from
// the snapshot yields a zero-scored OutcomeUnknownQuestion result rather than
// an error, so the attempt always produces a deterministic score.
func EvaluateAttempt(questions []Question, answers []Answer) []Result {
	byID := make(map[uint]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	answered := make(map[uint]bool, len(answers))
	results := make([]Result, 0, len(questions))

	for _, a := range answers {
		if answered[a.QuestionID] {
			continue
		}
		answered[a.QuestionID] = true
		q, ok := byID[a.QuestionID]
		if !ok {
			wrong := false
			results = append(results, Result{
				QuestionID: a.QuestionID,
				Outcome:    OutcomeUnknownQuestion,
				IsCorrect:  &wrong,
			})
			continue
		}
		results = append(results, Evaluate(q, a.Payload))
	}

	for _, q := range questions {
		if !answered[q.ID] {
			results = append(results, Evaluate(q, nil))
		}
	}

	return results
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
