package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/quiz-service/internal/repositories"
	"github.com/eduforge/quiz-service/internal/services"
	"github.com/eduforge/quiz-service/internal/utils"
)

// AttemptHandler serves attempt submission, results and review endpoints.
type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	reviewService  services.ReviewService
}

func NewAttemptHandler(attemptService services.AttemptService, reviewService services.ReviewService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		reviewService:  reviewService,
	}
}

// SubmitAttempt grades a submitted answer set and stores the result
// @Summary Submit attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Success 201 {object} services.SubmitAttemptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "submitting attempt", "quiz_id", req.QuizID)

	resp, err := h.attemptService.Submit(c.Request.Context(), &req, CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetResult returns a stored attempt result
// @Summary Get result
// @Tags attempts
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} models.QuizResult
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetResult(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	result, err := h.attemptService.GetResult(c.Request.Context(), id, CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListResults lists attempt results with optional filters
// @Summary List results
// @Tags attempts
// @Produce json
// @Success 200 {object} ListResponse
// @Router /attempts [get]
func (h *AttemptHandler) ListResults(c *gin.Context) {
	filters := repositories.ResultFilters{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if quizID := h.parseOptionalIDQuery(c, "quiz_id"); quizID != nil {
		filters.QuizID = quizID
	}
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}
	if pending := c.Query("pending_manual"); pending != "" {
		v := pending == "true"
		filters.PendingManual = &v
	}

	results, total, err := h.attemptService.ListResults(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: results, Total: total})
}

// GradeManual records a teacher's grade for a pending manual answer
// @Summary Grade manual answer
// @Tags grading
// @Accept json
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} models.QuizResult
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/grade [post]
func (h *AttemptHandler) GradeManual(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ManualGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "recording manual grade", "result_id", id, "question_id", req.QuestionID)

	result, err := h.attemptService.GradeManual(c.Request.Context(), id, &req, CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetReview returns the per-question review rows of an attempt
// @Summary Review attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} services.AttemptReview
// @Router /attempts/{id}/review [get]
func (h *AttemptHandler) GetReview(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	review, err := h.reviewService.GetReview(c.Request.Context(), id, CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// GetUserAttempts lists the caller's attempts on a quiz
// @Summary User attempts
// @Tags attempts
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {array} models.QuizResult
// @Router /quizzes/{id}/attempts [get]
func (h *AttemptHandler) GetUserAttempts(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	results, err := h.reviewService.GetUserAttempts(c.Request.Context(), id, CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetBestAttempt returns the caller's best attempt on a quiz
// @Summary Best attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} models.QuizResult
// @Router /quizzes/{id}/attempts/best [get]
func (h *AttemptHandler) GetBestAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	result, err := h.reviewService.GetBestAttempt(c.Request.Context(), id, CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AttemptHandler) parseOptionalIDQuery(c *gin.Context, name string) *uint {
	v := parseIntQuery(c, name, 0)
	if v == 0 {
		return nil
	}
	id := uint(v)
	return &id
}
