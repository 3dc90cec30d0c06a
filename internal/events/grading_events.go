package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents the grading lifecycle events the service emits.
type EventType string

const (
	// EventAttemptGraded fires after an attempt is scored and persisted.
	EventAttemptGraded EventType = "attempt.graded"

	// EventManualGradingPending fires when an attempt contains answers that
	// need a human grade before its score is final.
	EventManualGradingPending EventType = "grading.manual_pending"

	// EventManualGradeRecorded fires when a teacher grades a pending answer
	// and the attempt score is re-aggregated.
	EventManualGradeRecorded EventType = "grading.manual_recorded"

	// EventQuizPublished fires when a quiz transitions to Published.
	EventQuizPublished EventType = "quiz.published"
)

// GradingEvent is the envelope for every event on the grading topic.
type GradingEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewGradingEvent wraps a payload in the standard envelope.
func NewGradingEvent(eventType EventType, data interface{}) *GradingEvent {
	return &GradingEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data:      data,
	}
}

// Event payloads

type AttemptGradedEvent struct {
	ResultID       uint      `json:"result_id"`
	QuizID         uint      `json:"quiz_id"`
	UserID         string    `json:"user_id"`
	Score          int       `json:"score"`
	Passed         bool      `json:"passed"`
	EarnedPoints   float64   `json:"earned_points"`
	PossiblePoints float64   `json:"possible_points"`
	PendingManual  bool      `json:"pending_manual"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type ManualGradingPendingEvent struct {
	ResultID    uint   `json:"result_id"`
	QuizID      uint   `json:"quiz_id"`
	UserID      string `json:"user_id"`
	QuestionIDs []uint `json:"question_ids"`
}

type ManualGradeRecordedEvent struct {
	ResultID   uint    `json:"result_id"`
	QuestionID uint    `json:"question_id"`
	GradedBy   string  `json:"graded_by"`
	Points     float64 `json:"points"`
	NewScore   int     `json:"new_score"`
	Passed     bool    `json:"passed"`
}

type QuizPublishedEvent struct {
	QuizID    uint   `json:"quiz_id"`
	Title     string `json:"title"`
	CreatedBy string `json:"created_by"`
}
