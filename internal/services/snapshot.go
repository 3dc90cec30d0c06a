package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eduforge/quiz-service/internal/cache"
	"github.com/eduforge/quiz-service/internal/grading"
	"github.com/eduforge/quiz-service/internal/models"
	"github.com/eduforge/quiz-service/internal/repositories"
	"github.com/eduforge/quiz-service/internal/utils"
)

const questionSnapshotTTL = 5 * time.Minute

// loadQuestionSnapshot returns a quiz's ordered question list, reading through
// the cache. Grading and review both run against this snapshot, so they see
// the same questions in the same order.
func loadQuestionSnapshot(
	ctx context.Context,
	repo repositories.Repository,
	cacheSvc cache.CacheService,
	logger utils.Logger,
	quizID uint,
) ([]*models.Question, error) {
	key := cache.QuizQuestionsKey(quizID)

	var cached []*models.Question
	err := cacheSvc.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("question snapshot cache read failed", "quiz_id", quizID, "error", err)
	}

	questions, err := repo.Question().GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	if err := cacheSvc.Set(ctx, key, questions, questionSnapshotTTL); err != nil {
		logger.Warn("question snapshot cache write failed", "quiz_id", quizID, "error", err)
	}
	return questions, nil
}

// toGradingQuestions converts stored rows into the engine's view.
func toGradingQuestions(questions []*models.Question) []grading.Question {
	out := make([]grading.Question, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.ToGrading())
	}
	return out
}
