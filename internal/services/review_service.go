package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eduforge/quiz-service/internal/cache"
	"github.com/eduforge/quiz-service/internal/grading"
	"github.com/eduforge/quiz-service/internal/models"
	"github.com/eduforge/quiz-service/internal/repositories"
	"github.com/eduforge/quiz-service/internal/utils"
)

// ReviewService builds the read-side projection of graded attempts.
type ReviewService interface {
	GetReview(ctx context.Context, resultID uint, userID string) (*AttemptReview, error)
	GetBestAttempt(ctx context.Context, quizID uint, userID string) (*models.QuizResult, error)
	GetUserAttempts(ctx context.Context, quizID uint, userID string) ([]*models.QuizResult, error)
}

// AttemptReview is one attempt rendered for the review UI: the attempt-level
// score plus per-question parallel rows.
type AttemptReview struct {
	ResultID       uint             `json:"result_id"`
	QuizID         uint             `json:"quiz_id"`
	UserID         string           `json:"user_id"`
	Score          int              `json:"score"`
	Passed         bool             `json:"passed"`
	EarnedPoints   float64          `json:"earned_points"`
	PossiblePoints float64          `json:"possible_points"`
	PendingManual  bool             `json:"pending_manual"`
	Questions      []grading.Review `json:"questions"`
}

type reviewService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger utils.Logger
}

func NewReviewService(repo repositories.Repository, cacheSvc cache.CacheService, logger utils.Logger) ReviewService {
	return &reviewService{
		repo:   repo,
		cache:  cacheSvc,
		logger: logger,
	}
}

// GetReview renders an attempt against the quiz's current question snapshot.
// Questions deleted since the attempt are skipped; the stored score is
// returned as graded, never recomputed here.
func (s *reviewService) GetReview(ctx context.Context, resultID uint, userID string) (*AttemptReview, error) {
	result, err := s.repo.Result().GetByID(ctx, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if err := s.checkAccess(ctx, result, userID); err != nil {
		return nil, err
	}

	snapshot, err := loadQuestionSnapshot(ctx, s.repo, s.cache, s.logger, result.QuizID)
	if err != nil {
		return nil, err
	}

	var answers []SubmittedAnswer
	if err := json.Unmarshal(result.Answers, &answers); err != nil {
		return nil, fmt.Errorf("failed to decode stored answers: %w", err)
	}
	payloadByQuestion := make(map[uint]json.RawMessage, len(answers))
	for _, a := range answers {
		if _, dup := payloadByQuestion[a.QuestionID]; !dup {
			payloadByQuestion[a.QuestionID] = a.Answer
		}
	}

	reviews := make([]grading.Review, 0, len(snapshot))
	for _, q := range toGradingQuestions(snapshot) {
		reviews = append(reviews, grading.BuildReview(q, payloadByQuestion[q.ID]))
	}

	return &AttemptReview{
		ResultID:       result.ID,
		QuizID:         result.QuizID,
		UserID:         result.UserID,
		Score:          result.Score,
		Passed:         result.Passed,
		EarnedPoints:   result.EarnedPoints,
		PossiblePoints: result.PossiblePoints,
		PendingManual:  result.PendingManual,
		Questions:      reviews,
	}, nil
}

func (s *reviewService) GetBestAttempt(ctx context.Context, quizID uint, userID string) (*models.QuizResult, error) {
	result, err := s.repo.Result().GetBestByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoAttempts
		}
		return nil, fmt.Errorf("failed to get best attempt: %w", err)
	}
	return result, nil
}

func (s *reviewService) GetUserAttempts(ctx context.Context, quizID uint, userID string) ([]*models.QuizResult, error) {
	return s.repo.Result().GetByUserAndQuiz(ctx, userID, quizID)
}

func (s *reviewService) checkAccess(ctx context.Context, result *models.QuizResult, userID string) error {
	if result.UserID == userID {
		return nil
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err == nil && (user.Role == models.RoleTeacher || user.Role == models.RoleAdmin) {
		return nil
	}
	return NewPermissionError(userID, result.ID, "result", "review", "not the attempt owner")
}
