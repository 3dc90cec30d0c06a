package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/eduforge/quiz-service/internal/grading"
)

// Question is the stored form of an authored question. The structured
// collections (gaps, dropdowns, hint words, options) are produced upstream by
// the content parser and stored as JSON; the grading engine consumes them
// through ToGrading, never the raw content markup.
type Question struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	QuizID uint   `json:"quiz_id" gorm:"not null;index"`
	Type   string `json:"question_type" gorm:"not null;size:50" validate:"required,question_type"`
	Points int    `json:"points" gorm:"default:1"`
	Order  int    `json:"order" gorm:"not null;default:0"`

	// Content is the authored rich-text the learner sees. Opaque to grading.
	Content string `json:"content" gorm:"type:text"`

	Gaps      datatypes.JSON `json:"gaps" gorm:"type:jsonb"`       // []grading.Gap
	Dropdowns datatypes.JSON `json:"dropdowns" gorm:"type:jsonb"`  // []grading.Dropdown
	HintWords datatypes.JSON `json:"hint_words" gorm:"type:jsonb"` // []grading.HintWord
	Options   datatypes.JSON `json:"options" gorm:"type:jsonb"`    // []grading.Option

	// CorrectAnswer backs the fallback comparator for unrecognized types.
	CorrectAnswer datatypes.JSON `json:"correct_answer" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// ToGrading converts the stored row into the engine's read-only view.
// Malformed JSON columns decode as empty collections: a broken question
// grades as zero sub-units instead of failing the attempt.
func (q *Question) ToGrading() grading.Question {
	gq := grading.Question{
		ID:            q.ID,
		Type:          grading.QuestionType(q.Type),
		Points:        q.Points,
		CorrectAnswer: json.RawMessage(q.CorrectAnswer),
	}
	_ = json.Unmarshal(q.Gaps, &gq.Gaps)
	_ = json.Unmarshal(q.Dropdowns, &gq.Dropdowns)
	_ = json.Unmarshal(q.HintWords, &gq.HintWords)
	_ = json.Unmarshal(q.Options, &gq.Options)
	return gq
}
