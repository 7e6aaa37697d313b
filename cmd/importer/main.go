package main

import (
	"context"
	"flag"
	"os"
	"time"

	"pos-admin/internal/config"
	"pos-admin/internal/db"
	"pos-admin/internal/importer"
	"pos-admin/internal/logger"
	productrepo "pos-admin/internal/repository/product"
	productsvc "pos-admin/internal/service/product"
	"pos-admin/internal/store"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to product CSV (name,category,price,barcode,sku)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	log := logger.New(logger.Options{Service: "importer"})
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

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("open file")
	}
	defer f.Close()

	gw := store.NewPostgres(pool, &log)
	imp := importer.NewCSVImporter(f, productsvc.New(productrepo.New(gw, &log), &log), &log)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Int("imported", count).Msg("import failed")
	}

	log.Info().Int("imported", count).Str("file", filePath).Dur("took", time.Since(start).Truncate(time.Millisecond)).Msg("products imported")
}
