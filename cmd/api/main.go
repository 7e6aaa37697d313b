package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"pos-admin/internal/catalog"
	"pos-admin/internal/config"
	"pos-admin/internal/db"
	"pos-admin/internal/httpserver"
	"pos-admin/internal/logger"
	"pos-admin/internal/metrics"
	"pos-admin/internal/migrate"
	"pos-admin/internal/receipt"
	customerrepo "pos-admin/internal/repository/customer"
	invoicerepo "pos-admin/internal/repository/invoice"
	productrepo "pos-admin/internal/repository/product"
	"pos-admin/internal/seed"
	"pos-admin/internal/service/billing"
	customersvc "pos-admin/internal/service/customer"
	invoicesvc "pos-admin/internal/service/invoice"
	productsvc "pos-admin/internal/service/product"
	"pos-admin/internal/store"
)

func main() {
	bootLog := logger.New(logger.Options{Service: "api"})
	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(logger.Options{Service: "api", Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()
	gw, pinger, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	productRepo := productrepo.New(gw, &log)
	customerRepo := customerrepo.New(gw, &log)
	invoiceRepo := invoicerepo.New(gw, &log)

	productService := productsvc.New(productRepo, &log)
	customerService := customersvc.New(customerRepo, &log)

	if cfg.StoreDriver == config.StoreDriverMemory {
		if err := seed.Apply(ctx, productService, customerService); err != nil {
			log.Fatal().Err(err).Msg("seed memory store")
		}
	}

	cache := catalog.New(productRepo, &log)
	if _, err := cache.Load(ctx); err != nil {
		// The API still starts; listings report the error until a reload succeeds.
		log.Error().Err(err).Msg("initial catalog load failed")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	billingMetrics := metrics.NewBilling(reg)

	receiptOpts := receipt.Options{Shop: cfg.ShopName, Currency: cfg.Currency}
	if cfg.ReceiptPrint {
		out, closeOut, err := receipt.OpenOutput(cfg.ReceiptOutput)
		if err != nil {
			log.Fatal().Err(err).Msg("open receipt output")
		}
		defer func() {
			if err := closeOut(); err != nil {
				log.Error().Err(err).Msg("close receipt output")
			}
		}()
		receiptOpts.Printer = receipt.NewWriterPrinter(out)
	}
	renderer := receipt.NewRenderer(invoiceRepo, customerRepo, productRepo, receiptOpts, &log)

	billingService := billing.New(invoiceRepo, &log, billing.WithReceipts(renderer), billing.WithMetrics(billingMetrics))
	sessions := billing.NewSessions(billingService, cache, billingMetrics, &log)

	srv := httpserver.New(cfg.HTTPAddr, &log, httpserver.Deps{
		DB:        pinger,
		Catalog:   cache,
		Products:  productService,
		Customers: customerService,
		Sessions:  sessions,
		Invoices:  invoicesvc.New(invoiceRepo, customerRepo, productRepo, &log),
		Receipts:  renderer,
		Gatherer:  reg,
	}, cfg.CORSOrigins)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("server stopped")
	}
}

// openStore returns the gateway selected by STORE_DRIVER. The postgres store
// is migrated before use.
func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (store.Gateway, httpserver.Pinger, func()) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		mem := store.NewMemory()
		return mem, mem, func() {}
	}

	pool, err := db.Connect(ctx, cfg.DBConnString, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to db")
	}
	version, err := migrate.Apply(ctx, pool)
	if err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("apply migrations")
	}
	log.Info().Uint("schema_version", version).Msg("schema up to date")
	return store.NewPostgres(pool, &log), pool, pool.Close
}
