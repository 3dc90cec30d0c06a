package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduforge/quiz-service/internal/models"
	"github.com/eduforge/quiz-service/internal/repositories"
	"github.com/eduforge/quiz-service/internal/utils"
)

func newExportFixture(t *testing.T) (*MockRepository, ExportService) {
	t.Helper()

	repo := NewMockRepository()
	svc := NewExportService(repo, utils.NewDevelopmentLogger())
	return repo, svc
}

func TestExportService_ExportResultsToCSV(t *testing.T) {
	ctx := context.Background()
	repo, svc := newExportFixture(t)

	quizID := uint(1)
	repo.QuizRepo.On("GetByID", ctx, quizID).Return(&models.Quiz{ID: quizID, CreatedBy: "teacher-1"}, nil)
	repo.ResultRepo.On("List", ctx, repositories.ResultFilters{QuizID: &quizID}).Return([]*models.QuizResult{
		{
			ID: 1, UserID: "learner-1", Score: 93, Passed: true,
			EarnedPoints: 14, PossiblePoints: 15,
			SubmittedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID: 2, UserID: "learner-2", Score: 40, Passed: false,
			EarnedPoints: 6, PossiblePoints: 15, PendingManual: true,
			SubmittedAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
		},
	}, int64(2), nil)

	data, err := svc.ExportResultsToCSV(ctx, quizID, "teacher-1")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, resultExportHeaders, records[0])
	assert.Equal(t, []string{"1", "learner-1", "93", "true", "14.00", "15.00", "false", "2026-03-01T10:00:00Z"}, records[1])
	assert.Equal(t, "true", records[2][6])
}

func TestExportService_ExportResultsToExcel(t *testing.T) {
	ctx := context.Background()
	repo, svc := newExportFixture(t)

	quizID := uint(2)
	repo.QuizRepo.On("GetByID", ctx, quizID).Return(&models.Quiz{ID: quizID, CreatedBy: "teacher-1"}, nil)
	repo.ResultRepo.On("List", ctx, repositories.ResultFilters{QuizID: &quizID}).Return([]*models.QuizResult{
		{ID: 3, UserID: "learner-1", Score: 100, Passed: true},
	}, int64(1), nil)

	data, err := svc.ExportResultsToExcel(ctx, quizID, "teacher-1")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// xlsx files are zip archives
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

func TestExportService_PermissionDenied(t *testing.T) {
	ctx := context.Background()
	repo, svc := newExportFixture(t)

	quizID := uint(3)
	repo.QuizRepo.On("GetByID", ctx, quizID).Return(&models.Quiz{ID: quizID, CreatedBy: "teacher-1"}, nil)
	repo.UserRepo.On("GetByID", ctx, "learner-1").Return(&models.User{ID: "learner-1", Role: models.RoleLearner}, nil)

	_, err := svc.ExportResultsToCSV(ctx, quizID, "learner-1")
	var permErr *PermissionError
	assert.ErrorAs(t, err, &permErr)
}
