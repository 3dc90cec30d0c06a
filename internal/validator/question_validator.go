package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/eduforge/quiz-service/internal/errors"
	"github.com/eduforge/quiz-service/internal/grading"
	"github.com/eduforge/quiz-service/internal/models"
)

// ValidateQuestionContent checks that a question's structured content matches
// what its type needs to be gradable. It returns nil when the question is
// well-formed and a ValidationErrors collection otherwise.
//
// Manual types (essay, description, speaking) carry free-form content only and
// always validate.
func ValidateQuestionContent(q *models.Question) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	gq := q.ToGrading()

	switch gq.Type {
	case grading.TypeBlankBoxes, grading.TypeDragDropMatching:
		errs = append(errs, validateGaps(gq.Gaps, true)...)

	case grading.TypeGeneratedDropdowns:
		errs = append(errs, validateDropdowns(gq.Dropdowns, true)...)

	case grading.TypeReading:
		// Reading mixes gaps and dropdowns; at least one sub-unit overall.
		errs = append(errs, validateGaps(gq.Gaps, false)...)
		errs = append(errs, validateDropdowns(gq.Dropdowns, false)...)
		if len(gq.Gaps) == 0 && len(gq.Dropdowns) == 0 {
			errs = append(errs, *apperrors.NewValidationError(
				"gaps", "reading question needs at least one gap or dropdown", nil))
		}

	case grading.TypeFindHighlight:
		// Highlight grading matches submissions against the first accepted
		// answer of each gap, so that is what authoring must provide.
		if len(gq.Gaps) == 0 {
			errs = append(errs, *apperrors.NewValidationError(
				"gaps", "at least one gap is required", nil))
		}
		for i, gap := range gq.Gaps {
			if len(gap.CorrectAnswers) == 0 || grading.NormalizeHighlight(gap.CorrectAnswers[0]) == "" {
				errs = append(errs, *apperrors.NewValidationError(
					fmt.Sprintf("gaps[%d].correct_answers", i),
					"first accepted answer must not be empty", gap.CorrectAnswers))
			}
		}

	case grading.TypeMultipleChoice:
		errs = append(errs, validateOptions(gq.Options, 1, 1)...)

	case grading.TypeCheckboxes:
		errs = append(errs, validateOptions(gq.Options, 1, len(gq.Options))...)

	case grading.TypeEssay, grading.TypeDescription, grading.TypeSpeaking:
		// Graded by a person, nothing structural to check.

	default:
		// Unrecognized types grade through the literal comparator and need a
		// stored correct answer to compare against.
		if len(q.CorrectAnswer) == 0 || string(q.CorrectAnswer) == "null" {
			errs = append(errs, *apperrors.NewValidationError(
				"correct_answer", "is required for this question type", nil))
		} else if !json.Valid(q.CorrectAnswer) {
			errs = append(errs, *apperrors.NewValidationError(
				"correct_answer", "must be valid JSON", string(q.CorrectAnswer)))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateGaps(gaps []grading.Gap, required bool) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if required && len(gaps) == 0 {
		errs = append(errs, *apperrors.NewValidationError(
			"gaps", "at least one gap is required", nil))
	}

	for i, gap := range gaps {
		if !hasAcceptedAnswer(gap.CorrectAnswers) {
			errs = append(errs, *apperrors.NewValidationError(
				fmt.Sprintf("gaps[%d].correct_answers", i),
				"needs at least one non-empty accepted answer", gap.CorrectAnswers))
		}
	}
	return errs
}

func validateDropdowns(dropdowns []grading.Dropdown, required bool) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if required && len(dropdowns) == 0 {
		errs = append(errs, *apperrors.NewValidationError(
			"dropdowns", "at least one dropdown is required", nil))
	}

	for i, dd := range dropdowns {
		if strings.TrimSpace(dd.CorrectAnswer) == "" {
			errs = append(errs, *apperrors.NewValidationError(
				fmt.Sprintf("dropdowns[%d].correct_answer", i), "must not be empty", dd.CorrectAnswer))
		}
	}
	return errs
}

func validateOptions(options []grading.Option, minCorrect, maxCorrect int) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if len(options) < 2 {
		errs = append(errs, *apperrors.NewValidationError(
			"options", "at least two options are required", len(options)))
	}

	correct := 0
	for i, opt := range options {
		if strings.TrimSpace(opt.Text) == "" {
			errs = append(errs, *apperrors.NewValidationError(
				fmt.Sprintf("options[%d].text", i), "must not be empty", opt.Text))
		}
		if opt.IsCorrect {
			correct++
		}
	}

	if correct < minCorrect {
		errs = append(errs, *apperrors.NewValidationError(
			"options", fmt.Sprintf("needs at least %d correct option(s)", minCorrect), correct))
	} else if maxCorrect > 0 && correct > maxCorrect {
		errs = append(errs, *apperrors.NewValidationError(
			"options", fmt.Sprintf("allows at most %d correct option(s)", maxCorrect), correct))
	}
	return errs
}

func hasAcceptedAnswer(answers []string) bool {
	for _, a := range answers {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}
