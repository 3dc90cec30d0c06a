package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/eduforge/quiz-service/internal/models"
)

type questionRepository struct {
	db *gorm.DB
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(questions).Error
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &question, nil
}

// GetByQuiz returns the quiz's full question list in authored order. This is
// the snapshot grading runs against, so every grading column is loaded.
func (r *questionRepository) GetByQuiz(ctx context.Context, quizID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order(`"order" ASC, id ASC`).
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Question{}, id).Error
}
