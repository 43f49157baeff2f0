package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/AlbertPrograms/nodecs-backend/internal/config"
	"github.com/AlbertPrograms/nodecs-backend/internal/handler"
	"github.com/AlbertPrograms/nodecs-backend/internal/middleware"
	"github.com/AlbertPrograms/nodecs-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Task   *handler.TaskHandler
	Exam   *handler.ExamHandler
	Result *handler.ResultHandler
	WS     *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Submissions fan out into executor jobs; throttle them per identity
	// (10 per minute).
	submitLimiter := middleware.NewRateLimiter(10, time.Minute)

	api := router.Group("/api/v1")
	api.Use(middleware.RequireIdentity(cfg.JWTSecret))
	{
		api.POST("/get-task", handlers.Task.GetTask)
		api.POST("/store-task-progress", handlers.Task.StoreProgress)
		api.POST("/submit-task", submitLimiter.Middleware(), handlers.Task.Submit)

		api.POST("/get-available-exams", handlers.Exam.GetAvailableExams)
		api.POST("/exam-registration", handlers.Exam.Register)
		api.POST("/exam-unregistration", handlers.Exam.Unregister)
		api.POST("/start-exam", handlers.Exam.Start)
		api.POST("/get-exam-details", handlers.Exam.GetDetails)
		api.POST("/get-exam-in-progress", handlers.Exam.GetInProgress)
		api.POST("/get-exam-task", handlers.Exam.GetTask)
		api.POST("/store-exam-task-progress", handlers.Exam.StoreProgress)
		api.POST("/submit-exam-task", submitLimiter.Middleware(), handlers.Exam.Submit)
		api.POST("/finish-exam", handlers.Exam.Finish)

		api.POST("/get-exam-results", handlers.Result.GetResults)
	}

	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSIdentity(cfg.JWTSecret))
	{
		ws.GET("/exam-clock", handlers.WS.ExamClockStream)
	}

	return router
}
