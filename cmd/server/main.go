package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/career-navigator/adapters/analysisclient"
	"github.com/khoahotran/career-navigator/adapters/event"
	httpAdapter "github.com/khoahotran/career-navigator/adapters/http"
	"github.com/khoahotran/career-navigator/adapters/media_storage"
	"github.com/khoahotran/career-navigator/adapters/oauth"
	"github.com/khoahotran/career-navigator/adapters/persistence"
	"github.com/khoahotran/career-navigator/internal/application/service"
	analysisUC "github.com/khoahotran/career-navigator/internal/application/usecase/analysis"
	authUC "github.com/khoahotran/career-navigator/internal/application/usecase/auth"
	progressUC "github.com/khoahotran/career-navigator/internal/application/usecase/progress"
	"github.com/khoahotran/career-navigator/internal/config"
	"github.com/khoahotran/career-navigator/internal/domain/analysis"
	"github.com/khoahotran/career-navigator/pkg/auth"
	"github.com/khoahotran/career-navigator/pkg/logger"
	"github.com/khoahotran/career-navigator/pkg/tracing"
)

const serviceName = "career-navigator-api"

func main() {
	fmt.Println("Start Career Navigator API Server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("FATAL: auth.jwt_secret is required")
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tp, err := tracing.NewTracerProvider(cfg, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracer provider", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", err)
		}
	}()

	// Infrastructure
	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	var uploader service.Uploader
	if up, err := media_storage.NewCloudinaryAdapter(cfg, appLogger); err != nil {
		appLogger.Warn("Resume archiving disabled", zap.Error(err))
	} else {
		uploader = up
	}

	// Repositories and services
	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	progressRepo := persistence.NewPostgresProgressRepo(dbPool, appLogger)
	sessions := persistence.NewRedisSessionStore(redisClient)
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	analyzer := analysisclient.NewClient(cfg, appLogger)

	// Use cases
	var oauthStartUseCase *authUC.OAuthStartUseCase
	var oauthCallbackUseCase *authUC.OAuthCallbackUseCase
	if googleProvider, err := oauth.NewGoogleProvider(cfg); err != nil {
		appLogger.Warn("Google sign-in disabled", zap.Error(err))
	} else {
		oauthStartUseCase = authUC.NewOAuthStartUseCase(googleProvider, sessions, cfg.OAuth.StateTTL, appLogger)
		oauthCallbackUseCase = authUC.NewOAuthCallbackUseCase(googleProvider, sessions, userRepo, jwtSvc, appLogger)
	}

	registerUseCase := authUC.NewRegisterUseCase(userRepo, jwtSvc, appLogger)
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	logoutUseCase := authUC.NewLogoutUseCase(sessions, appLogger)
	meUseCase := authUC.NewMeUseCase(userRepo)

	analyzeResumeUseCase := analysisUC.NewAnalyzeResumeUseCase(
		analyzer,
		analysis.NewNormalizer(cfg.Scoring.ClampScores),
		progressRepo,
		uploader,
		kafkaClient,
		cfg.Analysis.MaxResumeBytes,
		appLogger,
	)
	listRolesUseCase := analysisUC.NewListRolesUseCase()

	getProgressUseCase := progressUC.NewGetProgressUseCase(progressRepo, appLogger)
	completeCheckpointUseCase := progressUC.NewCompleteCheckpointUseCase(progressRepo, kafkaClient, appLogger)

	// HTTP
	authHandler := httpAdapter.NewAuthHandler(
		registerUseCase,
		loginUseCase,
		oauthStartUseCase,
		oauthCallbackUseCase,
		logoutUseCase,
		meUseCase,
		appLogger,
	)
	analysisHandler := httpAdapter.NewAnalysisHandler(analyzeResumeUseCase, listRolesUseCase, cfg.Analysis.MaxResumeBytes, appLogger)
	progressHandler := httpAdapter.NewProgressHandler(getProgressUseCase, completeCheckpointUseCase, appLogger)

	rateLimiter := httpAdapter.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	defer rateLimiter.Close()

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ServiceName:    serviceName,
		AllowedOrigins: cfg.App.AllowedOrigins,
		JWTService:     jwtSvc,
		Sessions:       sessions,
		RateLimiter:    rateLimiter,
		Auth:           authHandler,
		Analysis:       analysisHandler,
		Progress:       progressHandler,
		Logger:         appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		appLogger.Error("Cannot run server", err)
	case sig := <-quit:
		appLogger.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
