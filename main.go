// Package main is the entry point for the expense report service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gitlab.com/yelinaung/billed/internal/api"
	"gitlab.com/yelinaung/billed/internal/bot"
	"gitlab.com/yelinaung/billed/internal/config"
	"gitlab.com/yelinaung/billed/internal/database"
	"gitlab.com/yelinaung/billed/internal/gemini"
	"gitlab.com/yelinaung/billed/internal/logger"
	"gitlab.com/yelinaung/billed/internal/receipts"
	"gitlab.com/yelinaung/billed/internal/repository"
	"gitlab.com/yelinaung/billed/internal/store"
	"gitlab.com/yelinaung/billed/internal/store/httpstore"
	"gitlab.com/yelinaung/billed/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("billed %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		logger.SetJSON()
	}
	logger.InitHashSalt()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Exporter:       cfg.OTelExporter,
		Endpoint:       cfg.OTelEndpoint,
	})
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to set up telemetry")
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer flushCancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	deps := bot.Deps{}
	var wg sync.WaitGroup

	if cfg.ServesAPI() {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		if err := database.RunMigrations(ctx, pool); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		logger.Log.Info().Msg("Database initialized successfully")

		storage, err := receipts.NewStorage(cfg.ReceiptsDir)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to open receipt storage")
		}

		local := store.NewLocal(repository.NewBillRepository(pool), storage, cfg.PublicURL)
		deps.Store = local
		deps.Employees = repository.NewEmployeeRepository(pool)

		gin.SetMode(gin.ReleaseMode)
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewServer(local).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		wg.Go(func() {
			logger.Log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error().Err(err).Msg("API server stopped")
				cancel()
			}
		})
		wg.Go(func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Log.Error().Err(err).Msg("Failed to shut down API server")
			}
		})
	} else {
		logger.Log.Info().Str("store_url", cfg.StoreURL).Msg("Using remote bill store")
		deps.Store = httpstore.New(cfg.StoreURL, cfg.StoreTimeout)
	}

	if cfg.BotEnabled() {
		if cfg.GeminiAPIKey != "" {
			client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
			if err != nil {
				logger.Log.Warn().Err(err).Msg("Receipt reading disabled")
			} else {
				deps.Parser = client
			}
		}

		telegramBot, err := bot.New(cfg, deps)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to create bot")
		}
		wg.Go(func() {
			telegramBot.Start(ctx)
		})
	}

	<-ctx.Done()
	logger.Log.Info().Msg("Shutting down...")
	wg.Wait()
}
