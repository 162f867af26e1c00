package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizzify"

	"github.com/rs/zerolog"
)

var log = zerolog.Nop()

func main() {
	cfg := quizzify.LoadConfig()

	log = quizzify.NewLogger(cfg.LogLevel, cfg.LogFormat)
	quizzify.SetLogger(log)
	quizzify.SetVerbose(cfg.LogLevel == "debug" || cfg.LogLevel == "trace")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.UsesDefaultSessionSecret() {
		log.Warn().Msg("SESSION_SECRET is not set, signing cookies with the public development secret")
	}

	completer, err := quizzify.NewCompleter(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Provider).Msg("failed to create completer")
	}
	defer quizzify.CloseCompleter(completer)

	generator := quizzify.NewQuizGenerator(completer, cfg.Provider)
	generator.SetTranscriptDir(cfg.TranscriptDir)

	var history *quizzify.History
	if cfg.HistoryDB != "" {
		history, err = quizzify.OpenHistory(cfg.HistoryDB)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.HistoryDB).Msg("failed to open generation history")
		}
		defer history.Close()
		generator.SetRecorder(history)
	}

	server := NewServer(cfg, generator, history)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go server.SweepIdle(sweepCtx, time.Hour)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("provider", cfg.Provider).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("shutting down")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
