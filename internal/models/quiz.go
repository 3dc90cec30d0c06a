package models

import (
	"time"

	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizDraft     QuizStatus = "Draft"
	QuizPublished QuizStatus = "Published"
	QuizArchived  QuizStatus = "Archived"
)

type Quiz struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Status      QuizStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Published Archived"`
	CategoryID  *uint      `json:"category_id" gorm:"index"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:64;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question   `json:"questions" gorm:"foreignKey:QuizID"`
	Results   []QuizResult `json:"-" gorm:"foreignKey:QuizID"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
	TotalPoints    int `json:"total_points" gorm:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
