package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tutorpaes/tutor-backend/internal/config"
	"github.com/tutorpaes/tutor-backend/internal/handler"
	"github.com/tutorpaes/tutor-backend/internal/middleware"
	"github.com/tutorpaes/tutor-backend/internal/response"
	"github.com/tutorpaes/tutor-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Quiz     *handler.QuizHandler
	Feedback *handler.FeedbackHandler
	User     *handler.UserHandler
	Question *handler.QuestionHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background goroutines owned by the router (rate limiter cleanup).
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// Restrict to ALLOWED_ORIGINS when set; otherwise allow all.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	// Rate limiter for login (30 requests per minute per IP).
	loginLimiter := middleware.NewRateLimiter(ctx, 30, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := api.Group("/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), handlers.Auth.Login)

		requireUser := []gin.HandlerFunc{
			middleware.RequireUserJWT(authService),
			middleware.CheckSession(authService),
		}
		auth.POST("/logout", append(requireUser, handlers.Auth.Logout)...)
		auth.GET("/me", append(requireUser, middleware.NoStore(), handlers.Auth.Me)...)
	}

	// ─── 2. Catalog Group (Public, Cacheable) ──────────────────────────
	catalog := api.Group("/catalog")
	catalog.Use(middleware.CacheControl(int(cfg.CatalogCacheTTL.Seconds())))
	{
		catalog.GET("/exams", handlers.Catalog.ListExams)
		catalog.GET("/subjects", handlers.Catalog.ListSubjects)
		catalog.GET("/topics", handlers.Catalog.ListTopics)
	}

	// ─── 3. Learner Group (JWT + Active Session) ───────────────────────
	learner := api.Group("")
	learner.Use(
		middleware.RequireUserJWT(authService),
		middleware.CheckSession(authService),
		middleware.NoStore(),
	)
	{
		learner.GET("/quiz/next-question", handlers.Quiz.NextQuestion)
		learner.POST("/quiz/answer", handlers.Quiz.SubmitAnswer)
		learner.GET("/ai/feedback/:id", handlers.Feedback.GetFeedback)
		learner.GET("/users/:id/stats", handlers.User.GetStats)
	}

	// ─── 4. Admin Group (JWT + Admin Flag) ─────────────────────────────
	adminAPI := api.Group("/admin")
	adminAPI.Use(
		middleware.RequireUserJWT(authService),
		middleware.CheckSession(authService),
		middleware.RequireAdmin(),
	)
	{
		adminAPI.POST("/questions", handlers.Question.CreateQuestion)
		adminAPI.GET("/questions/recent", handlers.Question.ListRecent)
		adminAPI.GET("/system/status", middleware.NoStore(), handlers.System.GetStatus)
	}

	return router
}
