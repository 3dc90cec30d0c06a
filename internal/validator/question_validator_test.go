package validator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/eduforge/quiz-service/internal/grading"
	"github.com/eduforge/quiz-service/internal/models"
)

func TestValidateQuestionContent_BlankBoxes(t *testing.T) {
	q := &models.Question{
		Type: string(grading.TypeBlankBoxes),
		Gaps: datatypes.JSON(`[{"correct_answers":["cat","kitten"]}]`),
	}
	assert.Nil(t, ValidateQuestionContent(q))

	q.Gaps = datatypes.JSON(`[]`)
	errs := ValidateQuestionContent(q)
	require.Len(t, errs, 1)
	assert.Equal(t, "gaps", errs[0].Field)

	q.Gaps = datatypes.JSON(`[{"correct_answers":["  "]}]`)
	errs = ValidateQuestionContent(q)
	require.Len(t, errs, 1)
	assert.Equal(t, "gaps[0].correct_answers", errs[0].Field)
}

func TestValidateQuestionContent_Reading(t *testing.T) {
	q := &models.Question{
		Type:      string(grading.TypeReading),
		Dropdowns: datatypes.JSON(`[{"correct_answer":"went"}]`),
	}
	assert.Nil(t, ValidateQuestionContent(q))

	empty := &models.Question{Type: string(grading.TypeReading)}
	errs := ValidateQuestionContent(empty)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "at least one gap or dropdown")
}

func TestValidateQuestionContent_MultipleChoice(t *testing.T) {
	q := &models.Question{
		Type:    string(grading.TypeMultipleChoice),
		Options: datatypes.JSON(`[{"text":"Paris","is_correct":true},{"text":"Lyon","is_correct":false}]`),
	}
	assert.Nil(t, ValidateQuestionContent(q))

	// two correct options is not a valid single-choice question
	q.Options = datatypes.JSON(`[{"text":"A","is_correct":true},{"text":"B","is_correct":true}]`)
	errs := ValidateQuestionContent(q)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "at most 1")
}

func TestValidateQuestionContent_Checkboxes(t *testing.T) {
	q := &models.Question{
		Type:    string(grading.TypeCheckboxes),
		Options: datatypes.JSON(`[{"text":"A","is_correct":true},{"text":"B","is_correct":true},{"text":"C","is_correct":false}]`),
	}
	assert.Nil(t, ValidateQuestionContent(q))

	q.Options = datatypes.JSON(`[{"text":"A","is_correct":false},{"text":"B","is_correct":false}]`)
	errs := ValidateQuestionContent(q)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "at least 1")
}

// Find-highlight questions are authored as gaps, the same shape the grader
// consumes: a question that passes validation must produce gradable sub-units.
func TestValidateQuestionContent_FindHighlight(t *testing.T) {
	q := &models.Question{
		Type:   string(grading.TypeFindHighlight),
		Points: 3,
		Gaps:   datatypes.JSON(`[{"correct_answers":["the cat"]},{"correct_answers":["a dog"]}]`),
	}
	assert.Nil(t, ValidateQuestionContent(q))

	res := grading.Evaluate(q.ToGrading(), json.RawMessage(`[{"text":"A dog."}]`))
	assert.Equal(t, 2, res.TotalItems)
	assert.Equal(t, 1, res.CorrectItems)
	assert.Equal(t, float64(6), res.PossiblePoints)

	q.Gaps = datatypes.JSON(`[]`)
	errs := ValidateQuestionContent(q)
	require.Len(t, errs, 1)
	assert.Equal(t, "gaps", errs[0].Field)

	// only the first accepted answer is matched, so it must carry content
	q.Gaps = datatypes.JSON(`[{"correct_answers":["  ","the cat"]}]`)
	errs = ValidateQuestionContent(q)
	require.Len(t, errs, 1)
	assert.Equal(t, "gaps[0].correct_answers", errs[0].Field)
}

func TestValidateQuestionContent_ManualAndFallback(t *testing.T) {
	for _, typ := range []grading.QuestionType{grading.TypeEssay, grading.TypeDescription, grading.TypeSpeaking} {
		assert.Nil(t, ValidateQuestionContent(&models.Question{Type: string(typ)}))
	}

	unknown := &models.Question{Type: "ranking"}
	errs := ValidateQuestionContent(unknown)
	require.Len(t, errs, 1)
	assert.Equal(t, "correct_answer", errs[0].Field)

	unknown.CorrectAnswer = datatypes.JSON(`["b","a","c"]`)
	assert.Nil(t, ValidateQuestionContent(unknown))
}
