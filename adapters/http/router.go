package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/khoahotran/career-navigator/internal/application/service"
	"github.com/khoahotran/career-navigator/pkg/auth"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string
	JWTService     *auth.JWTService
	Sessions       service.SessionStore
	RateLimiter    *RateLimiter
	Auth           *AuthHandler
	Analysis       *AnalysisHandler
	Progress       *ProgressHandler
	Logger         logger.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(ErrorMiddleware(cfg.Logger))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := AuthMiddleware(cfg.JWTService, cfg.Sessions, cfg.Logger)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		api.GET("/roles", cfg.Analysis.ListRoles)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", cfg.Auth.Register)
			authGroup.POST("/login", cfg.Auth.Login)
			authGroup.GET("/oauth/google", cfg.Auth.GoogleStart)
			authGroup.GET("/oauth/google/callback", cfg.Auth.GoogleCallback)
			authGroup.POST("/logout", authMiddleware, cfg.Auth.Logout)
			authGroup.GET("/me", authMiddleware, cfg.Auth.Me)
		}

		private := api.Group("/")
		private.Use(authMiddleware)
		{
			analyze := []gin.HandlerFunc{cfg.Analysis.Analyze}
			if cfg.RateLimiter != nil {
				analyze = append([]gin.HandlerFunc{RateLimitMiddleware(cfg.RateLimiter, cfg.Logger)}, analyze...)
			}
			private.POST("/analyses", analyze...)

			private.GET("/progress", cfg.Progress.GetProgress)
			private.POST("/progress/checkpoints/:id/complete", cfg.Progress.CompleteCheckpoint)
		}
	}

	return router
}
