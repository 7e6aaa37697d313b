package main

import (
	"context"

	"pos-admin/internal/config"
	"pos-admin/internal/db"
	"pos-admin/internal/logger"
	customerrepo "pos-admin/internal/repository/customer"
	productrepo "pos-admin/internal/repository/product"
	"pos-admin/internal/seed"
	customersvc "pos-admin/internal/service/customer"
	productsvc "pos-admin/internal/service/product"
	"pos-admin/internal/store"
)

func main() {
	log := logger.New(logger.Options{Service: "seed"})
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

	gw := store.NewPostgres(pool, &log)
	products := productsvc.New(productrepo.New(gw, &log), &log)
	customers := customersvc.New(customerrepo.New(gw, &log), &log)

	if err := seed.Apply(ctx, products, customers); err != nil {
		log.Fatal().Err(err).Msg("seed apply")
	}

	log.Info().Msg("seed applied")
}
