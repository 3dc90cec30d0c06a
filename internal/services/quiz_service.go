package services

import (
	"context"
	"encoding/json"
	"fmt"

	validatorlib "github.com/go-playground/validator/v10"
	"gorm.io/datatypes"

	"github.com/eduforge/quiz-service/internal/cache"
	apperrors "github.com/eduforge/quiz-service/internal/errors"
	"github.com/eduforge/quiz-service/internal/events"
	"github.com/eduforge/quiz-service/internal/grading"
	"github.com/eduforge/quiz-service/internal/models"
	"github.com/eduforge/quiz-service/internal/repositories"
	"github.com/eduforge/quiz-service/internal/utils"
	qvalidator "github.com/eduforge/quiz-service/internal/validator"
)

// QuizService manages quiz and question authoring.
type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, userID string) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID string) (*models.Quiz, error)
	Publish(ctx context.Context, id uint, userID string) error
	Archive(ctx context.Context, id uint, userID string) error
	Delete(ctx context.Context, id uint, userID string) error
	List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error)

	AddQuestions(ctx context.Context, quizID uint, reqs []CreateQuestionRequest, userID string) ([]*models.Question, error)
	UpdateQuestion(ctx context.Context, questionID uint, req *CreateQuestionRequest, userID string) (*models.Question, error)
	DeleteQuestion(ctx context.Context, questionID uint, userID string) error

	GetStats(ctx context.Context, quizID uint) (*repositories.ResultStats, error)
}

// ===== REQUEST/RESPONSE TYPES =====

type CreateQuizRequest struct {
	Title       string                  `json:"title" validate:"required,min=1,max=200"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	CategoryID  *uint                   `json:"category_id"`
	Questions   []CreateQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type UpdateQuizRequest struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	CategoryID  *uint              `json:"category_id"`
	Status      *models.QuizStatus `json:"status" validate:"omitempty,quiz_status"`
}

type CreateQuestionRequest struct {
	Type    string `json:"question_type" validate:"required,question_type"`
	Points  int    `json:"points"`
	Order   int    `json:"order"`
	Content string `json:"content"`

	Gaps      []grading.Gap      `json:"gaps"`
	Dropdowns []grading.Dropdown `json:"dropdowns"`
	HintWords []grading.HintWord `json:"hint_words"`
	Options   []grading.Option   `json:"options"`

	CorrectAnswer json.RawMessage `json:"correct_answer"`
}

type quizService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validatorlib.Validate
}

func NewQuizService(
	repo repositories.Repository,
	cacheSvc cache.CacheService,
	publisher events.EventPublisher,
	logger utils.Logger,
	validate *validatorlib.Validate,
) QuizService {
	return &quizService{
		repo:      repo,
		cache:     cacheSvc,
		publisher: publisher,
		logger:    logger,
		validator: validate,
	}
}

// ===== QUIZ CRUD =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, userID string) (*models.Quiz, error) {
	s.logger.Info("creating quiz", "title", req.Title, "user_id", userID)

	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	quiz := &models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Status:      models.QuizDraft,
		CreatedBy:   userID,
	}

	questions, verrs := buildQuestions(req.Questions)
	if verrs != nil {
		return nil, verrs
	}

	err := s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Quiz().Create(ctx, quiz); err != nil {
			return fmt.Errorf("failed to create quiz: %w", err)
		}
		for _, q := range questions {
			q.QuizID = quiz.ID
		}
		return tx.Question().CreateBatch(ctx, questions)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quiz created", "quiz_id", quiz.ID, "questions", len(questions))
	return s.GetByIDWithQuestions(ctx, quiz.ID)
}

func (s *quizService) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID string) (*models.Quiz, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	quiz, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(ctx, quiz, userID, "update"); err != nil {
		return nil, err
	}
	if quiz.Status == models.QuizArchived {
		return nil, ErrQuizNotEditable
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = req.Description
	}
	if req.CategoryID != nil {
		quiz.CategoryID = req.CategoryID
	}
	if req.Status != nil {
		if !isValidTransition(quiz.Status, *req.Status) {
			return nil, ErrQuizInvalidStatus
		}
		quiz.Status = *req.Status
	}

	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) Publish(ctx context.Context, id uint, userID string) error {
	quiz, err := s.GetByIDWithQuestions(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(ctx, quiz, userID, "publish"); err != nil {
		return err
	}
	if quiz.Status != models.QuizDraft {
		return ErrQuizInvalidStatus
	}
	if len(quiz.Questions) == 0 {
		return ErrQuizNoQuestions
	}

	quiz.Status = models.QuizPublished
	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return fmt.Errorf("failed to publish quiz: %w", err)
	}

	event := events.NewGradingEvent(events.EventQuizPublished, events.QuizPublishedEvent{
		QuizID:    quiz.ID,
		Title:     quiz.Title,
		CreatedBy: quiz.CreatedBy,
	})
	if err := s.publisher.PublishGradingEvent(ctx, event); err != nil {
		// Publishing the quiz succeeded; event delivery is best effort.
		s.logger.LogError(err, "failed to publish quiz.published event", "quiz_id", quiz.ID)
	}

	s.logger.Info("quiz published", "quiz_id", quiz.ID, "user_id", userID)
	return nil
}

func (s *quizService) Archive(ctx context.Context, id uint, userID string) error {
	quiz, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(ctx, quiz, userID, "archive"); err != nil {
		return err
	}
	if quiz.Status != models.QuizPublished {
		return ErrQuizInvalidStatus
	}

	quiz.Status = models.QuizArchived
	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return fmt.Errorf("failed to archive quiz: %w", err)
	}
	return nil
}

func (s *quizService) Delete(ctx context.Context, id uint, userID string) error {
	quiz, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(ctx, quiz, userID, "delete"); err != nil {
		return err
	}

	stats, err := s.repo.Result().GetStats(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check quiz results: %w", err)
	}
	if stats.TotalAttempts > 0 {
		return ErrQuizNotDeletable
	}

	if err := s.repo.Quiz().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	s.invalidateQuestionCache(ctx, id)

	s.logger.Info("quiz deleted", "quiz_id", id, "user_id", userID)
	return nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	return s.repo.Quiz().List(ctx, filters)
}

// ===== QUESTION MANAGEMENT =====

func (s *quizService) AddQuestions(ctx context.Context, quizID uint, reqs []CreateQuestionRequest, userID string) ([]*models.Question, error) {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(ctx, quiz, userID, "add_questions"); err != nil {
		return nil, err
	}
	if quiz.Status == models.QuizArchived {
		return nil, ErrQuizNotEditable
	}

	for i := range reqs {
		if err := s.validator.Struct(&reqs[i]); err != nil {
			return nil, apperrors.ToValidationErrors(err)
		}
	}

	questions, verrs := buildQuestions(reqs)
	if verrs != nil {
		return nil, verrs
	}
	for _, q := range questions {
		q.QuizID = quizID
	}

	if err := s.repo.Question().CreateBatch(ctx, questions); err != nil {
		return nil, fmt.Errorf("failed to create questions: %w", err)
	}
	s.invalidateQuestionCache(ctx, quizID)

	return questions, nil
}

func (s *quizService) UpdateQuestion(ctx context.Context, questionID uint, req *CreateQuestionRequest, userID string) (*models.Question, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	quiz, err := s.GetByID(ctx, question.QuizID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(ctx, quiz, userID, "update_question"); err != nil {
		return nil, err
	}

	updated, verrs := buildQuestion(*req)
	if verrs != nil {
		return nil, verrs
	}
	updated.ID = question.ID
	updated.QuizID = question.QuizID
	updated.CreatedAt = question.CreatedAt

	if err := s.repo.Question().Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	s.invalidateQuestionCache(ctx, question.QuizID)

	return updated, nil
}

func (s *quizService) DeleteQuestion(ctx context.Context, questionID uint, userID string) error {
	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	quiz, err := s.GetByID(ctx, question.QuizID)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(ctx, quiz, userID, "delete_question"); err != nil {
		return err
	}

	if err := s.repo.Question().Delete(ctx, questionID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	s.invalidateQuestionCache(ctx, question.QuizID)
	return nil
}

func (s *quizService) GetStats(ctx context.Context, quizID uint) (*repositories.ResultStats, error) {
	if _, err := s.GetByID(ctx, quizID); err != nil {
		return nil, err
	}
	return s.repo.Result().GetStats(ctx, quizID)
}

// ===== HELPERS =====

func (s *quizService) checkOwnership(ctx context.Context, quiz *models.Quiz, userID, action string) error {
	if quiz.CreatedBy == userID {
		return nil
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err == nil && user.Role == models.RoleAdmin {
		return nil
	}
	return NewPermissionError(userID, quiz.ID, "quiz", action, "not the quiz owner")
}

func (s *quizService) invalidateQuestionCache(ctx context.Context, quizID uint) {
	if err := s.cache.Delete(ctx, cache.QuizQuestionsKey(quizID)); err != nil {
		s.logger.Warn("failed to invalidate question cache", "quiz_id", quizID, "error", err)
	}
}

func isValidTransition(from, to models.QuizStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.QuizDraft:
		return to == models.QuizPublished
	case models.QuizPublished:
		return to == models.QuizArchived
	default:
		return false
	}
}

func buildQuestions(reqs []CreateQuestionRequest) ([]*models.Question, ValidationErrors) {
	questions := make([]*models.Question, 0, len(reqs))
	for i, req := range reqs {
		q, verrs := buildQuestion(req)
		if verrs != nil {
			for j := range verrs {
				verrs[j].Field = fmt.Sprintf("questions[%d].%s", i, verrs[j].Field)
			}
			return nil, verrs
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// buildQuestion converts a request into a stored question, running the
// per-type content validation on the result.
func buildQuestion(req CreateQuestionRequest) (*models.Question, ValidationErrors) {
	q := &models.Question{
		Type:    req.Type,
		Points:  req.Points,
		Order:   req.Order,
		Content: req.Content,
	}

	q.Gaps = mustMarshal(req.Gaps)
	q.Dropdowns = mustMarshal(req.Dropdowns)
	q.HintWords = mustMarshal(req.HintWords)
	q.Options = mustMarshal(req.Options)
	if len(req.CorrectAnswer) > 0 {
		q.CorrectAnswer = datatypes.JSON(req.CorrectAnswer)
	}

	if verrs := qvalidator.ValidateQuestionContent(q); verrs != nil {
		return nil, verrs
	}
	return q, nil
}

func mustMarshal(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON(`null`)
	}
	return datatypes.JSON(data)
}
