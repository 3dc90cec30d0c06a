package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/eduforge/quiz-service/internal/models"
	"github.com/eduforge/quiz-service/internal/repositories"
)

type quizRepository struct {
	db *gorm.DB
}

func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

func (r *quizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &quiz, nil
}

func (r *quizRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC, id ASC`)
		}).
		First(&quiz, id).Error; err != nil {
		return nil, translateError(err)
	}

	quiz.QuestionsCount = len(quiz.Questions)
	for i := range quiz.Questions {
		quiz.TotalPoints += quiz.Questions[i].Points
	}
	return &quiz, nil
}

func (r *quizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Save(quiz).Error
}

func (r *quizRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Quiz{}, id).Error
}

func (r *quizRepository) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	var quizzes []*models.Quiz
	var total int64

	// apply filters first
	query := r.db.WithContext(ctx).Model(&models.Quiz{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then pagination and sorting
	query = r.applyPaginationAndSort(query, filters)

	if err := query.Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

func (r *quizRepository) applyFilters(query *gorm.DB, filters repositories.QuizFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	return query
}

func (r *quizRepository) applyPaginationAndSort(query *gorm.DB, filters repositories.QuizFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "title", "created_at", "updated_at":
	default:
		sortBy = "created_at"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
