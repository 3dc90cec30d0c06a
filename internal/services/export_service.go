package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/eduforge/quiz-service/internal/models"
	"github.com/eduforge/quiz-service/internal/repositories"
	"github.com/eduforge/quiz-service/internal/utils"
)

// ExportService renders a quiz's results for download.
type ExportService interface {
	ExportResultsToExcel(ctx context.Context, quizID uint, userID string) ([]byte, error)
	ExportResultsToCSV(ctx context.Context, quizID uint, userID string) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewExportService(repo repositories.Repository, logger utils.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var resultExportHeaders = []string{
	"Result ID", "User ID", "Score (%)", "Passed",
	"Earned Points", "Possible Points", "Pending Manual", "Submitted At",
}

func (s *exportService) ExportResultsToExcel(ctx context.Context, quizID uint, userID string) ([]byte, error) {
	results, err := s.getResultsForExport(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range resultExportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, result := range results {
		for colIndex, value := range resultToRow(result) {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("exported results to excel", "quiz_id", quizID, "rows", len(results))
	return buf.Bytes(), nil
}

func (s *exportService) ExportResultsToCSV(ctx context.Context, quizID uint, userID string) ([]byte, error) {
	results, err := s.getResultsForExport(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(resultExportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write(resultToRow(result)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	s.logger.Info("exported results to csv", "quiz_id", quizID, "rows", len(results))
	return buf.Bytes(), nil
}

// getResultsForExport loads every result of the quiz after checking that the
// caller owns the quiz or holds an elevated role.
func (s *exportService) getResultsForExport(ctx context.Context, quizID uint, userID string) ([]*models.QuizResult, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.CreatedBy != userID {
		user, err := s.repo.User().GetByID(ctx, userID)
		if err != nil || (user.Role != models.RoleTeacher && user.Role != models.RoleAdmin) {
			return nil, NewPermissionError(userID, quizID, "quiz", "export_results", "not the quiz owner")
		}
	}

	results, _, err := s.repo.Result().List(ctx, repositories.ResultFilters{QuizID: &quizID})
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

func resultToRow(r *models.QuizResult) []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.UserID,
		strconv.Itoa(r.Score),
		strconv.FormatBool(r.Passed),
		strconv.FormatFloat(r.EarnedPoints, 'f', 2, 64),
		strconv.FormatFloat(r.PossiblePoints, 'f', 2, 64),
		strconv.FormatBool(r.PendingManual),
		r.SubmittedAt.Format(time.RFC3339),
	}
}
