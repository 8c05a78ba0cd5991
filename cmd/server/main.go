// @title HRMS Evaluation API
// @version 1.0
// @description Performance evaluation backend - HR builds questionnaires, assigns them to evaluators and reports on the scored results
// @termsOfService http://swagger.io/terms/

// @contact.name HRMS Support
// @contact.email support@secinto.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your bearer token in the format: Bearer {token}

// Package main is the entry point for the HRMS evaluation API server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/secinto/hrms_backend/internal/auth"
	"github.com/secinto/hrms_backend/internal/config"
	"github.com/secinto/hrms_backend/internal/handlers"
	"github.com/secinto/hrms_backend/internal/logger"
	"github.com/secinto/hrms_backend/internal/middleware"
	"github.com/secinto/hrms_backend/internal/reporting"
	"github.com/secinto/hrms_backend/internal/seed"
	"github.com/secinto/hrms_backend/internal/services"
	"github.com/secinto/hrms_backend/internal/storage"

	// Swagger docs
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/secinto/hrms_backend/docs"
)

// Build-time variables (set via ldflags)
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger *zap.Logger) error {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Initialize JWT service before any connection is opened
	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		PrivateKeyPath:     cfg.JWTPrivateKeyPath,
		PublicKeyPath:      cfg.JWTPublicKeyPath,
		AccessTokenExpiry:  cfg.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.RefreshTokenExpiry,
		Issuer:             "hrms-backend",
	})
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(ctx); closeErr != nil {
			appLogger.Warn("error closing database connection", zap.Error(closeErr))
		}
	}()

	dependencies := map[string]handlers.Pinger{}
	if store.Ping != nil {
		dependencies[store.Driver] = handlers.PingFunc(store.Ping)
	}

	// #IMPLEMENTATION_DECISION: Redis is optional, without it caching is off and rate limits are per instance
	reportCache := reporting.NewNoopReportCache()
	var limiter middleware.Limiter = middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	if cfg.RedisEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = redisClient.Close() }()

		if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
			appLogger.Warn("redis unreachable at startup", zap.String("addr", cfg.RedisAddr), zap.Error(pingErr))
		}
		reportCache = reporting.NewRedisReportCache(redisClient, cfg.ReportCacheTTL)
		limiter = middleware.NewRedisRateLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow)
		dependencies["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// Initialize services
	questionnaireService := services.NewQuestionnaireService(store.Repos, appLogger)
	assignmentService := services.NewAssignmentService(store.Repos, appLogger)
	projector := reporting.NewProjector(assignmentService, reportCache, appLogger)

	// Seed system templates
	if cfg.SeedTemplates {
		if _, seedErr := seed.NewSeeder(questionnaireService, appLogger).SeedTemplates(ctx); seedErr != nil {
			appLogger.Warn("failed to seed templates", zap.Error(seedErr))
		}
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(dependencies, Version)
	questionnaireHandler := handlers.NewQuestionnaireHandler(questionnaireService, appLogger)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, appLogger)
	reportHandler := handlers.NewReportHandler(projector, appLogger)

	// Create Gin router
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLogger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.SecureHeaders())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Register health routes (not under /api/v1)
	healthHandler.RegisterRoutes(router)

	// Register Swagger documentation route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create API v1 group
	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(limiter, appLogger))

	// Create auth middleware
	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Register routes
	questionnaireHandler.RegisterRoutes(apiV1, authMiddleware)
	assignmentHandler.RegisterRoutes(apiV1, authMiddleware)
	reportHandler.RegisterRoutes(apiV1, authMiddleware)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("starting HRMS evaluation API server",
			zap.String("version", Version),
			zap.String("port", cfg.ServerPort),
			zap.String("environment", cfg.Environment),
			zap.String("database_driver", store.Driver),
			zap.String("build_time", BuildTime),
			zap.String("commit", GitCommit),
			zap.String("branch", GitBranch),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return err
	}

	appLogger.Info("shutting down server")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("server shutdown complete")
	return nil
}
