package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func gapQuestion(id uint, points int, gaps ...Gap) Question {
	return Question{ID: id, Type: TypeBlankBoxes, Points: points, Gaps: gaps}
}

func TestEvaluateComposite(t *testing.T) {
	q := Question{
		ID:     1,
		Type:   TypeBlankBoxes,
		Points: 5,
		Gaps: []Gap{
			{CorrectAnswers: []string{"cat", "kitten"}},
			{CorrectAnswers: []string{"dog"}},
		},
		Dropdowns: []Dropdown{{CorrectAnswer: "red"}},
		HintWords: []HintWord{{Word: "sun"}},
	}

	tests := []struct {
		name        string
		payload     any
		wantCorrect int
		wantEarned  float64
		wantIsOK    bool
	}{
		{
			name: "all sub-units matched",
			payload: map[string]string{
				"gap_0": "Kitten", "gap_1": " dog ",
				"dropdown_0": "RED", "hint_0": "sun",
			},
			wantCorrect: 4, wantEarned: 20, wantIsOK: true,
		},
		{
			name: "alternative answer accepted",
			payload: map[string]string{
				"gap_0": "cat", "gap_1": "dog",
				"dropdown_0": "red", "hint_0": "sun",
			},
			wantCorrect: 4, wantEarned: 20, wantIsOK: true,
		},
		{
			name:        "partial credit per sub-unit",
			payload:     map[string]string{"gap_0": "kitten", "dropdown_0": "blue"},
			wantCorrect: 1, wantEarned: 5, wantIsOK: false,
		},
		{
			name:        "keys are type-local, not shared",
			payload:     map[string]string{"gap_2": "red", "dropdown_0": "red"},
			wantCorrect: 1, wantEarned: 5, wantIsOK: false,
		},
		{
			name:        "empty payload",
			payload:     map[string]string{},
			wantCorrect: 0, wantEarned: 0, wantIsOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(q, mustJSON(t, tt.payload))
			assert.Equal(t, tt.wantCorrect, res.CorrectItems)
			assert.Equal(t, 4, res.TotalItems)
			assert.Equal(t, tt.wantEarned, res.EarnedPoints)
			assert.Equal(t, float64(20), res.PossiblePoints)
			require.NotNil(t, res.IsCorrect)
			assert.Equal(t, tt.wantIsOK, *res.IsCorrect)
			assert.False(t, res.RequiresManualGrading)
		})
	}
}

func TestEvaluateCompositeMalformedPayload(t *testing.T) {
	q := gapQuestion(1, 5, Gap{CorrectAnswers: []string{"cat"}})

	for _, payload := range []json.RawMessage{
		json.RawMessage(`"just a string"`),
		json.RawMessage(`[1,2,3]`),
		json.RawMessage(`{invalid`),
		nil,
	} {
		res := Evaluate(q, payload)
		assert.Equal(t, 0, res.CorrectItems)
		assert.Equal(t, float64(0), res.EarnedPoints)
		assert.Equal(t, float64(5), res.PossiblePoints)
	}
}

func TestEvaluateCompositeEmptyCollections(t *testing.T) {
	q := Question{ID: 1, Type: TypeReading, Points: 5}
	res := Evaluate(q, mustJSON(t, map[string]string{"gap_0": "anything"}))

	assert.Equal(t, 0, res.TotalItems)
	assert.Equal(t, float64(0), res.EarnedPoints)
	assert.Equal(t, float64(0), res.PossiblePoints)
}

func TestEvaluateSafePoints(t *testing.T) {
	for _, points := range []int{0, -3} {
		q := gapQuestion(1, points, Gap{CorrectAnswers: []string{"cat"}})
		res := Evaluate(q, mustJSON(t, map[string]string{"gap_0": "cat"}))
		assert.Equal(t, float64(1), res.EarnedPoints, "points=%d", points)
		assert.Equal(t, float64(1), res.PossiblePoints, "points=%d", points)
	}
}

func TestEvaluateMultipleChoice(t *testing.T) {
	q := Question{
		ID:     2,
		Type:   TypeMultipleChoice,
		Points: 10,
		Options: []Option{
			{Text: "Paris", IsCorrect: true},
			{Text: "London"},
			{Text: "Rome"},
		},
	}

	tests := []struct {
		name       string
		payload    json.RawMessage
		wantEarned float64
		wantIsOK   bool
	}{
		{"exact match", json.RawMessage(`"Paris"`), 10, true},
		{"case and whitespace tolerant", json.RawMessage(`" paris "`), 10, true},
		{"wrong option", json.RawMessage(`"London"`), 0, false},
		{"single-element list payload", json.RawMessage(`["Paris"]`), 10, true},
		{"malformed payload", json.RawMessage(`{"oops": 1}`), 0, false},
		{"empty payload", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(q, tt.payload)
			assert.Equal(t, 1, res.TotalItems)
			assert.Equal(t, tt.wantEarned, res.EarnedPoints)
			assert.Equal(t, float64(10), res.PossiblePoints)
			require.NotNil(t, res.IsCorrect)
			assert.Equal(t, tt.wantIsOK, *res.IsCorrect)
		})
	}
}

func TestEvaluateCheckboxes(t *testing.T) {
	q := Question{
		ID:     3,
		Type:   TypeCheckboxes,
		Points: 2,
		Options: []Option{
			{Text: "A", IsCorrect: true},
			{Text: "B", IsCorrect: true},
			{Text: "C"},
		},
	}

	tests := []struct {
		name       string
		payload    json.RawMessage
		wantEarned float64
		wantIsOK   bool
	}{
		{"exact correct set", json.RawMessage(`[0,1]`), 4, true},
		{"subset earns per index", json.RawMessage(`[0]`), 2, false},
		{"superset keeps score, drops correctness", json.RawMessage(`[0,1,2]`), 4, false},
		{"duplicates are de-duplicated", json.RawMessage(`[0,0,1]`), 4, true},
		{"string indices coerced", json.RawMessage(`["0","1"]`), 4, true},
		{"only wrong index", json.RawMessage(`[2]`), 0, false},
		{"malformed payload", json.RawMessage(`"zero"`), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(q, tt.payload)
			assert.Equal(t, 2, res.TotalItems)
			assert.Equal(t, tt.wantEarned, res.EarnedPoints)
			assert.Equal(t, float64(4), res.PossiblePoints)
			require.NotNil(t, res.IsCorrect)
			assert.Equal(t, tt.wantIsOK, *res.IsCorrect)
		})
	}
}

func TestEvaluateFindHighlight(t *testing.T) {
	q := Question{
		ID:     4,
		Type:   TypeFindHighlight,
		Points: 3,
		Gaps: []Gap{
			{CorrectAnswers: []string{"the cat"}},
			{CorrectAnswers: []string{"the cat"}},
			{CorrectAnswers: []string{"a dog"}},
		},
	}

	t.Run("punctuation-noisy spans still match", func(t *testing.T) {
		payload := mustJSON(t, []map[string]string{
			{"text": "The cat,"}, {"text": "(the  CAT)"}, {"text": "a dog."},
		})
		res := Evaluate(q, payload)
		assert.Equal(t, 3, res.CorrectItems)
		assert.Equal(t, float64(9), res.EarnedPoints)
	})

	t.Run("one highlight satisfies only one gap", func(t *testing.T) {
		payload := mustJSON(t, []map[string]string{{"text": "the cat"}})
		res := Evaluate(q, payload)
		assert.Equal(t, 1, res.CorrectItems)
		assert.Equal(t, 3, res.TotalItems)
		assert.Equal(t, float64(3), res.EarnedPoints)
	})

	t.Run("order of highlights is irrelevant", func(t *testing.T) {
		payload := mustJSON(t, []map[string]string{
			{"text": "a dog"}, {"text": "the cat"}, {"text": "the cat"},
		})
		res := Evaluate(q, payload)
		assert.Equal(t, 3, res.CorrectItems)
	})

	t.Run("bare string spans accepted", func(t *testing.T) {
		payload := json.RawMessage(`["the cat"]`)
		res := Evaluate(q, payload)
		assert.Equal(t, 1, res.CorrectItems)
	})
}

func TestEvaluateManualGradingTypes(t *testing.T) {
	for _, typ := range []QuestionType{TypeEssay, TypeDescription, TypeSpeaking} {
		q := Question{ID: 5, Type: typ, Points: 10}
		res := Evaluate(q, json.RawMessage(`"a long essay about cats"`))

		assert.True(t, res.RequiresManualGrading, string(typ))
		assert.Nil(t, res.IsCorrect, string(typ))
		assert.Equal(t, OutcomeManual, res.Outcome, string(typ))
		assert.Equal(t, float64(0), res.EarnedPoints, string(typ))
		assert.Equal(t, float64(0), res.PossiblePoints, string(typ))
	}
}

func TestEvaluateUnknownTypeFallback(t *testing.T) {
	q := Question{
		ID:            6,
		Type:          QuestionType("future-type"),
		Points:        4,
		CorrectAnswer: json.RawMessage(`{"value": [1, 2]}`),
	}

	match := Evaluate(q, json.RawMessage(`{"value": [1, 2]}`))
	require.NotNil(t, match.IsCorrect)
	assert.True(t, *match.IsCorrect)
	assert.Equal(t, float64(4), match.EarnedPoints)

	miss := Evaluate(q, json.RawMessage(`{"value": [2, 1]}`))
	require.NotNil(t, miss.IsCorrect)
	assert.False(t, *miss.IsCorrect)
	assert.Equal(t, float64(0), miss.EarnedPoints)
	assert.Equal(t, float64(4), miss.PossiblePoints)
}

func TestEvaluateDeterminism(t *testing.T) {
	q := Question{
		ID:     7,
		Type:   TypeBlankBoxes,
		Points: 5,
		Gaps:   []Gap{{CorrectAnswers: []string{"cat", "kitten"}}},
	}
	payload := mustJSON(t, map[string]string{"gap_0": "kitten"})

	first := Evaluate(q, payload)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(q, payload))
	}
}

func TestEvaluateAttempt(t *testing.T) {
	questions := []Question{
		{
			ID: 1, Type: TypeMultipleChoice, Points: 10,
			Options: []Option{{Text: "Paris", IsCorrect: true}, {Text: "London"}, {Text: "Rome"}},
		},
		gapQuestion(2, 5, Gap{CorrectAnswers: []string{"cat", "kitten"}}),
	}

	t.Run("worked example", func(t *testing.T) {
		answers := []Answer{
			{QuestionID: 1, Payload: json.RawMessage(`"Paris"`)},
			{QuestionID: 2, Payload: mustJSON(t, map[string]string{"gap_0": "Kitten"})},
		}
		results := EvaluateAttempt(questions, answers)
		score := Aggregate(results)

		assert.Equal(t, float64(15), score.EarnedPoints)
		assert.Equal(t, float64(15), score.PossiblePoints)
		assert.Equal(t, 100, score.FinalScorePercent)
		assert.True(t, score.Passed)
	})

	t.Run("unknown question reference is a silent zero", func(t *testing.T) {
		answers := []Answer{
			{QuestionID: 99, Payload: json.RawMessage(`"Paris"`)},
			{QuestionID: 1, Payload: json.RawMessage(`"Paris"`)},
		}
		results := EvaluateAttempt(questions, answers)
		require.Len(t, results, 3)

		assert.Equal(t, OutcomeUnknownQuestion, results[0].Outcome)
		require.NotNil(t, results[0].IsCorrect)
		assert.False(t, *results[0].IsCorrect)
		assert.Equal(t, float64(0), results[0].PossiblePoints)
	})

	t.Run("duplicate answers dedupe for unknown references too", func(t *testing.T) {
		answers := []Answer{
			{QuestionID: 1, Payload: json.RawMessage(`"Paris"`)},
			{QuestionID: 1, Payload: json.RawMessage(`"Rome"`)},
			{QuestionID: 99, Payload: json.RawMessage(`"Paris"`)},
			{QuestionID: 99, Payload: json.RawMessage(`"Rome"`)},
		}
		results := EvaluateAttempt(questions, answers)
		// question 1 (first answer wins), one unknown ref, unanswered question 2
		require.Len(t, results, 3)

		unknown := 0
		for _, r := range results {
			if r.Outcome == OutcomeUnknownQuestion {
				unknown++
				assert.Equal(t, uint(99), r.QuestionID)
			}
		}
		assert.Equal(t, 1, unknown)

		score := Aggregate(results)
		assert.Equal(t, float64(10), score.EarnedPoints)
	})

	t.Run("unanswered questions still count possible points", func(t *testing.T) {
		answers := []Answer{{QuestionID: 1, Payload: json.RawMessage(`"Paris"`)}}
		score := Aggregate(EvaluateAttempt(questions, answers))

		assert.Equal(t, float64(10), score.EarnedPoints)
		assert.Equal(t, float64(15), score.PossiblePoints)
		assert.Equal(t, 67, score.FinalScorePercent)
		assert.False(t, score.Passed)
	})
}
