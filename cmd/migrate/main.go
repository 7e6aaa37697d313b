package main

import (
	"context"

	"pos-admin/internal/config"
	"pos-admin/internal/db"
	"pos-admin/internal/logger"
	"pos-admin/internal/migrate"
)

func main() {
	log := logger.New(logger.Options{Service: "migrate"})
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	version, err := migrate.Apply(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	log.Info().Uint("version", version).Msg("migrations applied")
}
