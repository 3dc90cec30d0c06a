package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	validatorlib "github.com/go-playground/validator/v10"

	"github.com/eduforge/quiz-service/internal/cache"
	apperrors "github.com/eduforge/quiz-service/internal/errors"
	"github.com/eduforge/quiz-service/internal/events"
	"github.com/eduforge/quiz-service/internal/grading"
	"github.com/eduforge/quiz-service/internal/models"
	"github.com/eduforge/quiz-service/internal/repositories"
	"github.com/eduforge/quiz-service/internal/utils"
)

// AttemptService grades submitted attempts and manages their results.
type AttemptService interface {
	Submit(ctx context.Context, req *SubmitAttemptRequest, userID string) (*SubmitAttemptResponse, error)
	GetResult(ctx context.Context, resultID uint, userID string) (*models.QuizResult, error)
	ListResults(ctx context.Context, filters repositories.ResultFilters) ([]*models.QuizResult, int64, error)
	GradeManual(ctx context.Context, resultID uint, req *ManualGradeRequest, graderID string) (*models.QuizResult, error)
}

// ===== REQUEST/RESPONSE TYPES =====

// SubmittedAnswer is one raw answer as received from the client. Answer is
// kept opaque here; the grading engine owns payload interpretation.
type SubmittedAnswer struct {
	QuestionID uint            `json:"question_id" validate:"required"`
	Answer     json.RawMessage `json:"answer"`
}

type SubmitAttemptRequest struct {
	QuizID  uint              `json:"quiz_id" validate:"required"`
	Answers []SubmittedAnswer `json:"answers" validate:"dive"`
}

type SubmitAttemptResponse struct {
	ResultID       uint             `json:"result_id"`
	QuizID         uint             `json:"quiz_id"`
	Score          int              `json:"score"`
	Passed         bool             `json:"passed"`
	EarnedPoints   float64          `json:"earned_points"`
	PossiblePoints float64          `json:"possible_points"`
	PendingManual  bool             `json:"pending_manual"`
	Breakdown      []grading.Result `json:"breakdown"`
	SubmittedAt    time.Time        `json:"submitted_at"`
}

type ManualGradeRequest struct {
	QuestionID uint    `json:"question_id" validate:"required"`
	Points     float64 `json:"points" validate:"gte=0"`
	Feedback   string  `json:"feedback" validate:"omitempty,max=2000"`
}

type attemptService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validatorlib.Validate
}

func NewAttemptService(
	repo repositories.Repository,
	cacheSvc cache.CacheService,
	publisher events.EventPublisher,
	logger utils.Logger,
	validate *validatorlib.Validate,
) AttemptService {
	return &attemptService{
		repo:      repo,
		cache:     cacheSvc,
		publisher: publisher,
		logger:    logger,
		validator: validate,
	}
}

// ===== SUBMISSION =====

func (s *attemptService) Submit(ctx context.Context, req *SubmitAttemptRequest, userID string) (*SubmitAttemptResponse, error) {
	s.logger.Info("submitting attempt", "quiz_id", req.QuizID, "user_id", userID, "answers", len(req.Answers))

	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.Status != models.QuizPublished {
		return nil, ErrQuizNotPublished
	}

	snapshot, err := loadQuestionSnapshot(ctx, s.repo, s.cache, s.logger, req.QuizID)
	if err != nil {
		return nil, err
	}
	if len(snapshot) == 0 {
		return nil, ErrQuizNoQuestions
	}

	answers := make([]grading.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, grading.Answer{
			QuestionID: a.QuestionID,
			Payload:    a.Answer,
		})
	}

	results := grading.EvaluateAttempt(toGradingQuestions(snapshot), answers)
	score := grading.Aggregate(results)

	pendingManual := false
	var manualQuestionIDs []uint
	for _, r := range results {
		switch {
		case r.Outcome == grading.OutcomeUnknownQuestion:
			// Scored zero, not an error: the submitted set may be stale
			// against a quiz edited mid-attempt.
			s.logger.Warn("answer references unknown question",
				"quiz_id", req.QuizID,
				"question_id", r.QuestionID,
				"user_id", userID)
		case r.RequiresManualGrading:
			pendingManual = true
			manualQuestionIDs = append(manualQuestionIDs, r.QuestionID)
		}
	}

	result := &models.QuizResult{
		QuizID:         req.QuizID,
		UserID:         userID,
		Score:          score.FinalScorePercent,
		Passed:         score.Passed,
		EarnedPoints:   score.EarnedPoints,
		PossiblePoints: score.PossiblePoints,
		PendingManual:  pendingManual,
		Answers:        mustMarshal(req.Answers),
		Breakdown:      mustMarshal(results),
		SubmittedAt:    time.Now().UTC(),
	}

	if err := s.repo.Result().Create(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to persist result: %w", err)
	}

	s.publishGraded(ctx, result)
	if pendingManual {
		event := events.NewGradingEvent(events.EventManualGradingPending, events.ManualGradingPendingEvent{
			ResultID:    result.ID,
			QuizID:      result.QuizID,
			UserID:      result.UserID,
			QuestionIDs: manualQuestionIDs,
		})
		if err := s.publisher.PublishGradingEvent(ctx, event); err != nil {
			s.logger.LogError(err, "failed to publish manual grading event", "result_id", result.ID)
		}
	}

	s.logger.Info("attempt graded",
		"result_id", result.ID,
		"quiz_id", req.QuizID,
		"user_id", userID,
		"score", result.Score,
		"passed", result.Passed,
		"pending_manual", pendingManual)

	return &SubmitAttemptResponse{
		ResultID:       result.ID,
		QuizID:         result.QuizID,
		Score:          result.Score,
		Passed:         result.Passed,
		EarnedPoints:   result.EarnedPoints,
		PossiblePoints: result.PossiblePoints,
		PendingManual:  pendingManual,
		Breakdown:      results,
		SubmittedAt:    result.SubmittedAt,
	}, nil
}

// ===== RESULT READS =====

func (s *attemptService) GetResult(ctx context.Context, resultID uint, userID string) (*models.QuizResult, error) {
	result, err := s.repo.Result().GetByID(ctx, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if err := s.checkResultAccess(ctx, result, userID, "read"); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *attemptService) ListResults(ctx context.Context, filters repositories.ResultFilters) ([]*models.QuizResult, int64, error) {
	return s.repo.Result().List(ctx, filters)
}

// ===== MANUAL GRADING =====

// GradeManual records a human grade for one pending answer and re-aggregates
// the attempt score from the stored breakdown.
func (s *attemptService) GradeManual(ctx context.Context, resultID uint, req *ManualGradeRequest, graderID string) (*models.QuizResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	grader, err := s.repo.User().GetByID(ctx, graderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get grader: %w", err)
	}
	if grader.Role != models.RoleTeacher && grader.Role != models.RoleAdmin {
		return nil, NewPermissionError(graderID, resultID, "result", "grade_manual", "grading requires teacher or admin role")
	}

	result, err := s.repo.Result().GetByID(ctx, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	question, err := s.repo.Question().GetByID(ctx, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	gq := question.ToGrading()
	if !gq.Type.IsManualGraded() {
		return nil, ErrGradingNotAllowed
	}

	possible := float64(gq.EffectivePoints())
	if req.Points > possible {
		return nil, ErrGradingInvalidScore
	}

	var breakdown []grading.Result
	if err := json.Unmarshal(result.Breakdown, &breakdown); err != nil {
		return nil, fmt.Errorf("failed to decode result breakdown: %w", err)
	}

	found := false
	stillPending := false
	for i := range breakdown {
		if breakdown[i].QuestionID == req.QuestionID {
			if breakdown[i].Outcome != grading.OutcomeManual {
				return nil, ErrGradingNotAllowed
			}
			if !breakdown[i].RequiresManualGrading {
				return nil, ErrGradingAlreadyCompleted
			}
			breakdown[i].EarnedPoints = req.Points
			breakdown[i].PossiblePoints = possible
			breakdown[i].Score = math.Round(req.Points*100) / 100
			breakdown[i].RequiresManualGrading = false
			found = true
			continue
		}
		if breakdown[i].RequiresManualGrading {
			stillPending = true
		}
	}
	if !found {
		return nil, ErrQuestionNotFound
	}

	score := grading.Aggregate(breakdown)
	result.Score = score.FinalScorePercent
	result.Passed = score.Passed
	result.EarnedPoints = score.EarnedPoints
	result.PossiblePoints = score.PossiblePoints
	result.PendingManual = stillPending
	result.Breakdown = mustMarshal(breakdown)

	if err := s.repo.Result().Update(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to update result: %w", err)
	}

	event := events.NewGradingEvent(events.EventManualGradeRecorded, events.ManualGradeRecordedEvent{
		ResultID:   result.ID,
		QuestionID: req.QuestionID,
		GradedBy:   graderID,
		Points:     req.Points,
		NewScore:   result.Score,
		Passed:     result.Passed,
	})
	if err := s.publisher.PublishGradingEvent(ctx, event); err != nil {
		s.logger.LogError(err, "failed to publish manual grade event", "result_id", result.ID)
	}

	s.logger.Info("manual grade recorded",
		"result_id", result.ID,
		"question_id", req.QuestionID,
		"graded_by", graderID,
		"new_score", result.Score)

	return result, nil
}

// ===== HELPERS =====

func (s *attemptService) checkResultAccess(ctx context.Context, result *models.QuizResult, userID, action string) error {
	if result.UserID == userID {
		return nil
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err == nil && (user.Role == models.RoleTeacher || user.Role == models.RoleAdmin) {
		return nil
	}
	return NewPermissionError(userID, result.ID, "result", action, "not the attempt owner")
}

func (s *attemptService) publishGraded(ctx context.Context, result *models.QuizResult) {
	event := events.NewGradingEvent(events.EventAttemptGraded, events.AttemptGradedEvent{
		ResultID:       result.ID,
		QuizID:         result.QuizID,
		UserID:         result.UserID,
		Score:          result.Score,
		Passed:         result.Passed,
		EarnedPoints:   result.EarnedPoints,
		PossiblePoints: result.PossiblePoints,
		PendingManual:  result.PendingManual,
		SubmittedAt:    result.SubmittedAt,
	})
	if err := s.publisher.PublishGradingEvent(ctx, event); err != nil {
		s.logger.LogError(err, "failed to publish attempt graded event", "result_id", result.ID)
	}
}
