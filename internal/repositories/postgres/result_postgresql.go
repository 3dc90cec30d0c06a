package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/eduforge/quiz-service/internal/models"
	"github.com/eduforge/quiz-service/internal/repositories"
)

type resultRepository struct {
	db *gorm.DB
}

func (r *resultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *resultRepository) GetByID(ctx context.Context, id uint) (*models.QuizResult, error) {
	var result models.QuizResult
	if err := r.db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &result, nil
}

func (r *resultRepository) Update(ctx context.Context, result *models.QuizResult) error {
	return r.db.WithContext(ctx).Save(result).Error
}

func (r *resultRepository) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.QuizResult, int64, error) {
	var results []*models.QuizResult
	var total int64

	query := r.db.WithContext(ctx).Model(&models.QuizResult{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("submitted_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

func (r *resultRepository) GetByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.QuizResult, error) {
	var results []*models.QuizResult
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("submitted_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *resultRepository) GetBestByUserAndQuiz(ctx context.Context, userID string, quizID uint) (*models.QuizResult, error) {
	var result models.QuizResult
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("score DESC, submitted_at DESC").
		First(&result).Error; err != nil {
		return nil, translateError(err)
	}
	return &result, nil
}

func (r *resultRepository) GetStats(ctx context.Context, quizID uint) (*repositories.ResultStats, error) {
	var stats repositories.ResultStats

	row := r.db.WithContext(ctx).
		Model(&models.QuizResult{}).
		Select(`COUNT(*) as total_attempts,
			COALESCE(SUM(CASE WHEN passed THEN 1 ELSE 0 END), 0) as passed_count,
			COALESCE(AVG(score), 0) as average_score,
			COALESCE(MAX(score), 0) as best_score,
			COALESCE(SUM(CASE WHEN pending_manual THEN 1 ELSE 0 END), 0) as pending_manual`).
		Where("quiz_id = ?", quizID).
		Row()

	if err := row.Scan(&stats.TotalAttempts, &stats.PassedCount, &stats.AverageScore, &stats.BestScore, &stats.PendingManual); err != nil {
		return nil, err
	}

	if stats.TotalAttempts > 0 {
		stats.PassRate = float64(stats.PassedCount) / float64(stats.TotalAttempts) * 100
	}
	return &stats, nil
}

func (r *resultRepository) applyFilters(query *gorm.DB, filters repositories.ResultFilters) *gorm.DB {
	if filters.QuizID != nil {
		query = query.Where("quiz_id = ?", *filters.QuizID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Passed != nil {
		query = query.Where("passed = ?", *filters.Passed)
	}
	if filters.PendingManual != nil {
		query = query.Where("pending_manual = ?", *filters.PendingManual)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}
