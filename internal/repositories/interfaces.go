package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/eduforge/quiz-service/internal/models"
)

// ErrNotFound is returned by all repositories when a row does not exist.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError checks whether an error represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Repository bundles the per-aggregate repositories and transaction support.
type Repository interface {
	Quiz() QuizRepository
	Question() QuestionRepository
	Result() ResultRepository
	User() UserRepository

	// Transaction runs fn with a Repository bound to a single transaction.
	Transaction(ctx context.Context, fn func(Repository) error) error
}

// QuizRepository covers quiz CRUD and listing.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)
}

// QuestionRepository provides the question snapshot contract: GetByQuiz must
// return the full ordered question list with all grading metadata populated
// before an attempt is graded.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByQuiz(ctx context.Context, quizID uint) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
}

// ResultRepository persists graded attempts and serves the reporting reads.
type ResultRepository interface {
	Create(ctx context.Context, result *models.QuizResult) error
	GetByID(ctx context.Context, id uint) (*models.QuizResult, error)
	Update(ctx context.Context, result *models.QuizResult) error
	List(ctx context.Context, filters ResultFilters) ([]*models.QuizResult, int64, error)
	GetByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.QuizResult, error)

	// GetBestByUserAndQuiz returns the attempt with the highest score,
	// tie-broken by most recent submission.
	GetBestByUserAndQuiz(ctx context.Context, userID string, quizID uint) (*models.QuizResult, error)

	GetStats(ctx context.Context, quizID uint) (*ResultStats, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Status     *models.QuizStatus `json:"status"`
	CreatedBy  *string            `json:"created_by"`
	CategoryID *uint              `json:"category_id"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
	SortBy     string             `json:"sort_by"`    // "created_at", "title"
	SortOrder  string             `json:"sort_order"` // "asc", "desc"
}

type ResultFilters struct {
	QuizID        *uint      `json:"quiz_id"`
	UserID        *string    `json:"user_id"`
	Passed        *bool      `json:"passed"`
	PendingManual *bool      `json:"pending_manual"`
	DateFrom      *time.Time `json:"date_from"`
	DateTo        *time.Time `json:"date_to"`
	Limit         int        `json:"limit"`
	Offset        int        `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type ResultStats struct {
	TotalAttempts int     `json:"total_attempts"`
	PassedCount   int     `json:"passed_count"`
	PassRate      float64 `json:"pass_rate"`
	AverageScore  float64 `json:"average_score"`
	BestScore     int     `json:"best_score"`
	PendingManual int     `json:"pending_manual"`
}
