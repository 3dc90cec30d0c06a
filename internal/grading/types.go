package grading

import "encoding/json"

// QuestionType tags a question with the comparison algorithm that grades it.
type QuestionType string

const (
	TypeBlankBoxes         QuestionType = "blank-boxes"
	TypeGeneratedDropdowns QuestionType = "generated-dropdowns"
	TypeDragDropMatching   QuestionType = "drag-drop-matching"
	TypeReading            QuestionType = "reading"
	TypeFindHighlight      QuestionType = "find-highlight"
	TypeMultipleChoice     QuestionType = "multiple-choice"
	TypeCheckboxes         QuestionType = "checkboxes"
	TypeEssay              QuestionType = "essay"
	TypeDescription        QuestionType = "description"
	TypeSpeaking           QuestionType = "speaking"
)

// AllQuestionTypes lists every recognized type tag, used by validation.
var AllQuestionTypes = []QuestionType{
	TypeBlankBoxes,
	TypeGeneratedDropdowns,
	TypeDragDropMatching,
	TypeReading,
	TypeFindHighlight,
	TypeMultipleChoice,
	TypeCheckboxes,
	TypeEssay,
	TypeDescription,
	TypeSpeaking,
}

// IsManualGraded reports whether answers of this type are deferred to a human
// grader and excluded from automatic scoring.
func (t QuestionType) IsManualGraded() bool {
	switch t {
	case TypeEssay, TypeDescription, TypeSpeaking:
		return true
	default:
		return false
	}
}

// IsComposite reports whether the type is graded gap-by-gap using the
// positional gap_<i>/dropdown_<i>/hint_<i> key scheme.
func (t QuestionType) IsComposite() bool {
	switch t {
	case TypeBlankBoxes, TypeGeneratedDropdowns, TypeDragDropMatching, TypeReading:
		return true
	default:
		return false
	}
}

// Gap is a free-text blank. Any of CorrectAnswers is accepted.
type Gap struct {
	CorrectAnswers []string `json:"correct_answers"`
}

// Dropdown is a blank with a closed set of choices and a single correct one.
type Dropdown struct {
	CorrectAnswer string `json:"correct_answer"`
}

// HintWord is a blank word with an exact single-word answer.
type HintWord struct {
	Word string `json:"word"`
}

// Option is one choice of a multiple-choice or checkboxes question.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is the read-only grading view of a stored question. The three
// positional collections (Gaps, Dropdowns, HintWords) are independently
// zero-indexed: submitted keys gap_0, dropdown_0, hint_0 each address their
// own collection, never a shared counter.
type Question struct {
	ID     uint
	Type   QuestionType
	Points int

	Gaps      []Gap
	Dropdowns []Dropdown
	HintWords []HintWord
	Options   []Option

	// CorrectAnswer backs the serialized-equality fallback used for
	// unrecognized type tags.
	CorrectAnswer json.RawMessage
}

// EffectivePoints applies the safe-points rule: an absent, zero or negative
// authored weight grades as 1.
func (q Question) EffectivePoints() int {
	if q.Points > 0 {
		return q.Points
	}
	return 1
}

// Answer is one submitted answer of an attempt. Payload shape depends on the
// question type; malformed payloads grade as "not correct", never as errors.
type Answer struct {
	QuestionID uint
	Payload    json.RawMessage
}

// Outcome classifies how a per-question result was produced.
type Outcome string

const (
	// OutcomeGraded means the answer was compared automatically.
	OutcomeGraded Outcome = "graded"
	// OutcomeManual means grading is deferred to a human.
	OutcomeManual Outcome = "manual"
	// OutcomeUnknownQuestion means the submitted answer referenced a question
	// missing from the snapshot. The score contribution is zero, but the
	// outcome is kept distinguishable from a plain wrong answer.
	OutcomeUnknownQuestion Outcome = "unknown-question"
)

// Result is the per-question grading output.
type Result struct {
	QuestionID uint    `json:"question_id"`
	Outcome    Outcome `json:"outcome"`

	// IsCorrect is nil for manually graded questions.
	IsCorrect *bool `json:"is_correct"`

	// Score is EarnedPoints rounded to 2 decimals for display. Aggregation
	// uses the full-precision EarnedPoints/PossiblePoints instead.
	Score          float64 `json:"score"`
	EarnedPoints   float64 `json:"earned_points"`
	PossiblePoints float64 `json:"possible_points"`

	CorrectItems int `json:"correct_items"`
	TotalItems   int `json:"total_items"`

	RequiresManualGrading bool `json:"requires_manual_grading"`
}

// AttemptScore is the aggregate over all per-question results of one attempt.
type AttemptScore struct {
	EarnedPoints      float64 `json:"earned_points"`
	PossiblePoints    float64 `json:"possible_points"`
	FinalScorePercent int     `json:"final_score_percent"`
	Passed            bool    `json:"passed"`
}

// PassThresholdPercent is the fixed pass policy: an attempt passes at 90%.
const PassThresholdPercent = 90
