package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizResult is one graded attempt. Score/Passed are derived by the grading
// engine at submission time and never recomputed by readers; the stored
// breakdown and raw answers feed the review projection and manual regrading.
type QuizResult struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	QuizID uint   `json:"quiz_id" gorm:"not null;index:idx_results_quiz_user"`
	UserID string `json:"user_id" gorm:"not null;size:64;index:idx_results_quiz_user"`

	// Score is the final integer percentage in [0,100].
	Score          int     `json:"score" gorm:"not null"`
	Passed         bool    `json:"passed" gorm:"not null;index"`
	EarnedPoints   float64 `json:"earned_points"`
	PossiblePoints float64 `json:"possible_points"`

	// PendingManual marks attempts holding essay/description/speaking answers
	// that still await a human grade.
	PendingManual bool `json:"pending_manual" gorm:"default:false;index"`

	Answers   datatypes.JSON `json:"answers" gorm:"type:jsonb"`   // []SubmittedAnswer as received
	Breakdown datatypes.JSON `json:"breakdown" gorm:"type:jsonb"` // []grading.Result

	SubmittedAt time.Time `json:"submitted_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Quiz Quiz `json:"-" gorm:"foreignKey:QuizID"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
