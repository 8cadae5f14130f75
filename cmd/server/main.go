package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharmapos/internal/config"
	"pharmapos/internal/infra"
	"pharmapos/internal/router"
	"pharmapos/internal/schema"
	"pharmapos/internal/settings"
	"pharmapos/internal/store"
	"pharmapos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	backend, err := infra.NewBackend(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to connect record store")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := store.NewEngine(backend, schema.Default())
	if err := eng.Open(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to open record store")
	}
	defer func() {
		if err := eng.Close(); err != nil {
			log.Error().Err(err).Msg("closing record store")
		}
	}()

	st, err := settings.Open(cfg.SettingsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load settings")
	}

	worker.StartBackupCron(ctx, worker.BackupConfig{
		Engine:   eng,
		Settings: st,
		Dir:      cfg.BackupDir,
		Interval: cfg.BackupInterval(),
		Keep:     cfg.BackupKeep,
	})

	r := router.New(cfg, eng, st)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("driver", cfg.StoreDriver).Msgf("pharmacy POS backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
