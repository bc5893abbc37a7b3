package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tradelink/backend/internal/api"
	"github.com/tradelink/backend/internal/auth"
	"github.com/tradelink/backend/internal/config"
	"github.com/tradelink/backend/internal/domain"
	"github.com/tradelink/backend/internal/realtime"
	"github.com/tradelink/backend/internal/repository"
)

func main() {
	_ = godotenv.Load()

	logger, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Starting TradeLink API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()
	db, err := repository.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to database")

	repo := repository.NewPostgresRepository(db)
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	googleAuth := auth.NewGoogleAuthVerifier(cfg.Google.ClientIDs)

	if googleAuth.IsConfigured() {
		logger.Info("Google sign-in is configured")
	} else {
		logger.Warn("Google sign-in is NOT configured - set GOOGLE_CLIENT_ID to enable")
	}

	// Realtime: hub for in-process subscriptions, Redis bridge for
	// cross-instance fan-out when configured.
	hub := realtime.NewHub(logger)
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Invalid Redis URL", zap.Error(err))
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		logger.Info("Connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set - realtime events stay in-process")
	}
	broker := realtime.NewBroker(hub, rdb, logger)

	brokerCtx, brokerCancel := context.WithCancel(ctx)
	go broker.Run(brokerCtx)

	wsManager := api.NewWebSocketManager(logger)
	hub.AddSink(wsManager)
	go wsManager.Run()

	authService := domain.NewAuthService(repo, repo, jwtManager, googleAuth)
	profileService := domain.NewProfileService(repo)
	connectionService := domain.NewConnectionService(repo, repo, broker)
	messagingService := domain.NewMessagingService(repo, repo, repo, hub, broker)
	dashboardService := domain.NewDashboardService(repo)

	authHandler := api.NewAuthHandler(authService, profileService, logger)
	profileHandler := api.NewProfileHandler(profileService, logger)
	connectionHandler := api.NewConnectionHandler(connectionService, logger)
	chatHandler := api.NewChatHandler(messagingService, wsManager, logger)
	dashboardHandler := api.NewDashboardHandler(dashboardService, logger)
	healthHandler := api.NewHealthHandler(repo)

	router := api.NewRouter(
		authHandler, profileHandler, connectionHandler, chatHandler,
		dashboardHandler, healthHandler,
		jwtManager, cfg.CORS.AllowedOrigins, logger,
	)
	r := router.Setup()

	cleanupCtx, cleanupCancel := context.WithCancel(ctx)
	repo.StartTokenCleanupWorker(cleanupCtx, 1*time.Hour)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	cleanupCancel()
	brokerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func initLogger() (*zap.Logger, error) {
	if os.Getenv("ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
