package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/prepmed/prepmed-backend/internal/config"
	"github.com/prepmed/prepmed-backend/internal/handler"
	"github.com/prepmed/prepmed-backend/internal/middleware"
	"github.com/prepmed/prepmed-backend/internal/response"
	"github.com/prepmed/prepmed-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Quiz      *handler.QuizHandler
	Encounter *handler.EncounterHandler
	Study     *handler.StudyHandler
	User      *handler.UserHandler
	Flashcard *handler.FlashcardHandler
	Tutor     *handler.TutorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
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

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	// AI endpoints get a tighter budget.
	aiLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/signup", handlers.Auth.Signup)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Quiz Group (JWT) ───────────────────────────────────────────
	quiz := router.Group("/api/v1/quiz")
	quiz.Use(middleware.RequireJWT(authService))
	{
		quiz.GET("/subjects", handlers.Quiz.Subjects)
		quiz.GET("/session", handlers.Quiz.GetState)
		quiz.DELETE("/session", handlers.Quiz.Discard)
		quiz.POST("/start", handlers.Quiz.Start)
		quiz.POST("/answer", handlers.Quiz.Answer)
		quiz.POST("/mark", handlers.Quiz.ToggleMark)
		quiz.POST("/clear", handlers.Quiz.ClearAnswer)
		quiz.POST("/cursor", handlers.Quiz.SetCursor)
		quiz.POST("/pause", handlers.Quiz.Pause)
		quiz.POST("/resume", handlers.Quiz.Resume)
		quiz.POST("/submit", handlers.Quiz.Submit)
	}

	// ─── 3. Encounter Group (JWT) ──────────────────────────────────────
	encounters := router.Group("/api/v1/encounters")
	encounters.Use(middleware.RequireJWT(authService))
	{
		encounters.GET("/cases", handlers.Encounter.ListCases)
		encounters.GET("/current", handlers.Encounter.GetRun)
		encounters.DELETE("/current", handlers.Encounter.End)
		encounters.POST("/start", handlers.Encounter.Start)
		encounters.POST("/act", handlers.Encounter.Act)
	}

	// ─── 4. Study Group (JWT) ──────────────────────────────────────────
	study := router.Group("/api/v1")
	study.Use(middleware.RequireJWT(authService))
	{
		study.GET("/daily", handlers.Study.GetDaily)
		study.POST("/daily/answer", handlers.Study.AnswerDaily)
		study.GET("/analytics/history", handlers.Study.GetHistory)
		study.GET("/analytics/overview", handlers.Study.GetOverview)
		study.GET("/analytics/strategy", handlers.Study.GetStrategy)
		study.POST("/planner", aiLimiter.Middleware(), handlers.Study.GeneratePlan)

		study.PUT("/users/me/goal", handlers.User.UpdateGoal)
		study.GET("/bookmarks", handlers.User.ListBookmarks)
		study.POST("/bookmarks", handlers.User.AddBookmark)
		study.DELETE("/bookmarks/:questionID", handlers.User.RemoveBookmark)
		study.GET("/leaderboard", handlers.User.GetLeaderboard)

		study.GET("/flashcards", handlers.Flashcard.List)
		study.POST("/flashcards", handlers.Flashcard.Create)
		study.POST("/flashcards/generate", aiLimiter.Middleware(), handlers.Flashcard.Generate)
		study.GET("/flashcards/:deckID", handlers.Flashcard.Get)
		study.PUT("/flashcards/:deckID", handlers.Flashcard.Update)
		study.DELETE("/flashcards/:deckID", handlers.Flashcard.Delete)
	}

	// ─── 5. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/tutor", handlers.Tutor.TutorStream)
	}

	return router
}
