package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/quiz-service/internal/models"
	"github.com/eduforge/quiz-service/internal/repositories"
	"github.com/eduforge/quiz-service/internal/services"
	"github.com/eduforge/quiz-service/internal/utils"
)

// QuizHandler serves quiz and question authoring endpoints.
type QuizHandler struct {
	BaseHandler
	quizService   services.QuizService
	exportService services.ExportService
}

func NewQuizHandler(quizService services.QuizService, exportService services.ExportService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:   NewBaseHandler(logger),
		quizService:   quizService,
		exportService: exportService,
	}
}

// CreateQuiz creates a quiz, optionally with its questions
// @Summary Create quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Success 201 {object} models.Quiz
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "creating quiz", "title", req.Title)

	quiz, err := h.quizService.Create(c.Request.Context(), &req, CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// GetQuiz returns a quiz without its questions
// @Summary Get quiz
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// GetQuizWithQuestions returns a quiz with its full ordered question list
// @Summary Get quiz with questions
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Router /quizzes/{id}/details [get]
func (h *QuizHandler) GetQuizWithQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	quiz, err := h.quizService.GetByIDWithQuestions(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// ListQuizzes lists quizzes with optional filters
// @Summary List quizzes
// @Tags quizzes
// @Produce json
// @Success 200 {object} ListResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	filters := repositories.QuizFilters{
		Limit:     parseIntQuery(c, "limit", 20),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if status := c.Query("status"); status != "" {
		s := models.QuizStatus(status)
		filters.Status = &s
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	quizzes, total, err := h.quizService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: quizzes, Total: total})
}

// UpdateQuiz updates quiz metadata and status
// @Summary Update quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Router /quizzes/{id} [put]
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), id, &req, CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// PublishQuiz transitions a draft quiz to published
// @Summary Publish quiz
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} SuccessResponse
// @Router /quizzes/{id}/publish [post]
func (h *QuizHandler) PublishQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.quizService.Publish(c.Request.Context(), id, CurrentUserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Quiz published"})
}

// ArchiveQuiz transitions a published quiz to archived
// @Summary Archive quiz
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} SuccessResponse
// @Router /quizzes/{id}/archive [post]
func (h *QuizHandler) ArchiveQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.quizService.Archive(c.Request.Context(), id, CurrentUserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Quiz archived"})
}

// DeleteQuiz deletes a quiz that has no results yet
// @Summary Delete quiz
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} SuccessResponse
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), id, CurrentUserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Quiz deleted"})
}

// AddQuestions appends questions to a quiz
// @Summary Add questions
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 201 {array} models.Question
// @Router /quizzes/{id}/questions [post]
func (h *QuizHandler) AddQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var reqs []services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	questions, err := h.quizService.AddQuestions(c.Request.Context(), id, reqs, CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, questions)
}

// UpdateQuestion replaces a question's content
// @Summary Update question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {object} models.Question
// @Router /questions/{id} [put]
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	question, err := h.quizService.UpdateQuestion(c.Request.Context(), id, &req, CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question from its quiz
// @Summary Delete question
// @Tags questions
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {object} SuccessResponse
// @Router /questions/{id} [delete]
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.quizService.DeleteQuestion(c.Request.Context(), id, CurrentUserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

// GetQuizStats returns attempt statistics for a quiz
// @Summary Quiz statistics
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} repositories.ResultStats
// @Router /quizzes/{id}/stats [get]
func (h *QuizHandler) GetQuizStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.quizService.GetStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportResults downloads a quiz's results as xlsx or csv
// @Summary Export results
// @Tags quizzes
// @Produce application/octet-stream
// @Param id path uint true "Quiz ID"
// @Param format query string false "xlsx or csv" default(xlsx)
// @Router /quizzes/{id}/results/export [get]
func (h *QuizHandler) ExportResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := CurrentUserID(c)
	format := c.DefaultQuery("format", "xlsx")

	switch format {
	case "csv":
		data, err := h.exportService.ExportResultsToCSV(c.Request.Context(), id, userID)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="quiz-results.csv"`)
		c.Data(http.StatusOK, "text/csv", data)

	case "xlsx":
		data, err := h.exportService.ExportResultsToExcel(c.Request.Context(), id, userID)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="quiz-results.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)

	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid format",
			Details: "supported formats: xlsx, csv",
		})
	}
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
