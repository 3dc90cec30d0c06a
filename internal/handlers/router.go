package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/quiz-service/internal/services"
	"github.com/eduforge/quiz-service/internal/utils"
)

type HandlerManager struct {
	quizHandler    *QuizHandler
	attemptHandler *AttemptHandler
}

func NewHandlerManager(
	quizService services.QuizService,
	attemptService services.AttemptService,
	reviewService services.ReviewService,
	exportService services.ExportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:    NewQuizHandler(quizService, exportService, logger),
		attemptHandler: NewAttemptHandler(attemptService, reviewService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RequireUser())
	{
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.GET("/:id/details", hm.quizHandler.GetQuizWithQuestions)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
			quizzes.POST("/:id/publish", hm.quizHandler.PublishQuiz)
			quizzes.POST("/:id/archive", hm.quizHandler.ArchiveQuiz)
			quizzes.GET("/:id/stats", hm.quizHandler.GetQuizStats)
			quizzes.POST("/:id/questions", hm.quizHandler.AddQuestions)
			quizzes.GET("/:id/results/export", hm.quizHandler.ExportResults)

			quizzes.GET("/:id/attempts", hm.attemptHandler.GetUserAttempts)
			quizzes.GET("/:id/attempts/best", hm.attemptHandler.GetBestAttempt)
		}

		questions := v1.Group("/questions")
		{
			questions.PUT("/:id", hm.quizHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.quizHandler.DeleteQuestion)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.POST("", hm.attemptHandler.SubmitAttempt)
			attempts.GET("", hm.attemptHandler.ListResults)
			attempts.GET("/:id", hm.attemptHandler.GetResult)
			attempts.GET("/:id/review", hm.attemptHandler.GetReview)
			attempts.POST("/:id/grade", hm.attemptHandler.GradeManual)
		}
	}
}

// HealthCheck responds to liveness probes
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "quiz-service"})
}
