package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"agroshare-backend/internal/app"
	"agroshare-backend/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("App create failed")
	}

	if application.Rdb != nil {
		if err := application.Rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		log.Info().Msg("Redis connected")
	}
	sqlDB, err := application.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Postgres connection failed")
	}
	log.Info().Msg("Postgres connected")

	if err := application.Scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Scheduler start failed")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down")
		application.Scheduler.Stop()
		_ = application.Fiber.Shutdown()
	}()

	log.Info().Str("port", cfg.Port).Msg("Server starting")
	if err := application.Fiber.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
