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

	"go.uber.org/zap"

	"github.com/careerpilot/career-assistant/internal/api"
	"github.com/careerpilot/career-assistant/internal/auth"
	"github.com/careerpilot/career-assistant/internal/config"
	"github.com/careerpilot/career-assistant/internal/core"
	"github.com/careerpilot/career-assistant/internal/logger"
	"github.com/careerpilot/career-assistant/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	if !cfg.EnvFileLoaded {
		logg.Info("No .env file found, using environment variables and defaults")
	}

	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbStore.Close()

	// A nil generator keeps the advisor in mock-only mode.
	var generator core.Generator
	if cfg.MockOnly() {
		logg.Warn("GEMINI_API_KEY not set, replies will come from the enhanced mock responder")
	} else {
		gemini, err := core.NewGeminiGenerator(context.Background(), core.GeminiOptions{
			APIKey:          cfg.GeminiAPIKey,
			Model:           cfg.GeminiModel,
			MaxOutputTokens: int32(cfg.GeminiMaxOutputTokens),
		}, logg)
		if err != nil {
			logg.Fatal("Failed to initialize Gemini client", zap.Error(err))
		}
		defer gemini.Close()
		generator = gemini
	}

	advisor := core.NewAdvisor(generator, core.AdvisorConfig{
		MaxRetries:     cfg.GeminiMaxRetries,
		RetryDelay:     cfg.GeminiRetryDelay,
		AttemptTimeout: cfg.GeminiTimeout,
	}, logg)
	chatService := core.NewChatService(dbStore, advisor, logg)

	apiHandler := api.NewAPIHandler(chatService, auth.NewTokenIssuer(cfg.JWTSecret), logg)
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // covers upstream retries with backoff
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logg.Info("Starting server", zap.String("addr", serverAddr), zap.String("mode", advisor.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("Could not listen", zap.String("addr", serverAddr), zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logg.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logg.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	logg.Info("Server exiting gracefully")
}
