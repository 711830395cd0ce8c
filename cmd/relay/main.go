package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/parleychat/relay/config"
	"github.com/parleychat/relay/src/directory"
	"github.com/parleychat/relay/src/hub"
	"github.com/parleychat/relay/src/notify"
	"github.com/parleychat/relay/src/router"
	"github.com/parleychat/relay/src/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	dir := directory.NewRedis(directory.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.RedisPrefix,
	}, logger)
	defer dir.Close()

	if err := dir.Ping(ctx); err != nil {
		logger.Warn().Err(err).Msg("participant directory unreachable, message notifications will be skipped")
	} else {
		logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to participant directory")
	}

	if cfg.NotifyBaseURL == "" {
		logger.Warn().Msg("NOTIFY_API_URL not set, notification persistence disabled")
	}

	h := hub.New(logger)
	dispatcher := notify.New(dir, cfg.NotifyBaseURL, logger)
	r := router.New(h, dispatcher, logger)
	h.SetHandler(r.Handle)

	go h.Run()
	go h.RunReaper(cfg.ReapInterval)

	srv := server.New(cfg, h, logger)
	go func() {
		if err := srv.Listen(); err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down relay...")

	// Drop live connections first so WebSocket handlers return and the
	// server shutdown can settle.
	h.CloseAll()
	if err := srv.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	h.Stop()
	dispatcher.Wait()

	logger.Info().Msg("relay stopped")
}
