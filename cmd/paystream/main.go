package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/paystream/paystream/api"
	"github.com/paystream/paystream/internal/accounts"
	"github.com/paystream/paystream/internal/auth"
	"github.com/paystream/paystream/internal/config"
	"github.com/paystream/paystream/internal/database"
	"github.com/paystream/paystream/internal/feed"
	"github.com/paystream/paystream/internal/transfers"
	"github.com/paystream/paystream/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("PAYSTREAM_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	transferStore := transfers.NewStore(db, zapLogger)
	accountStore := accounts.NewStore(db, zapLogger)
	authSvc := auth.NewService(db, zapLogger, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	fetcher := feed.NewStoreFetcher(transferStore, cfg.Feed.FetchLimit)
	gateway := feed.NewGateway(fetcher, cfg.Feed, zapLogger)

	server := api.NewServer(zapLogger, cfg, authSvc, transferStore, accountStore, gateway)

	// No WriteTimeout: the feed endpoint holds its connection open for the
	// whole subscription; per-message deadlines live in the gateway.
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
	}

	go func() {
		zapLogger.Info("Starting API server", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	// Shutdown closes listener and request contexts, which in turn cancels
	// every live feed session.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		zapLogger.Error("Forced shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited properly")
}
