package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/eduforge/quiz-service/internal/repositories"
)

type repository struct {
	db       *gorm.DB
	quiz     repositories.QuizRepository
	question repositories.QuestionRepository
	result   repositories.ResultRepository
	user     repositories.UserRepository
}

// NewRepository creates the gorm-backed repository bundle.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:       db,
		quiz:     &quizRepository{db: db},
		question: &questionRepository{db: db},
		result:   &resultRepository{db: db},
		user:     &userRepository{db: db},
	}
}

func (r *repository) Quiz() repositories.QuizRepository         { return r.quiz }
func (r *repository) Question() repositories.QuestionRepository { return r.question }
func (r *repository) Result() repositories.ResultRepository     { return r.result }
func (r *repository) User() repositories.UserRepository         { return r.user }

func (r *repository) Transaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// translateError maps gorm's not-found sentinel onto the repository error.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}
