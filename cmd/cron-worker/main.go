package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/paintmart/paintmart-backend/internal/cart"
	"github.com/paintmart/paintmart-backend/internal/catalog"
	"github.com/paintmart/paintmart-backend/internal/cron"
	"github.com/paintmart/paintmart-backend/internal/discounts"
	"github.com/paintmart/paintmart-backend/internal/invoices"
	"github.com/paintmart/paintmart-backend/internal/saleprograms"
	"github.com/paintmart/paintmart-backend/pkg/config"
	"github.com/paintmart/paintmart-backend/pkg/db"
	"github.com/paintmart/paintmart-backend/pkg/logger"
	"github.com/paintmart/paintmart-backend/pkg/metrics"
	"github.com/paintmart/paintmart-backend/pkg/migrate"
	"github.com/paintmart/paintmart-backend/pkg/redis"
)

const lockKeyFormat = "pm:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	discountRepo := discounts.NewRepository(dbClient.DB())
	invoiceService, err := invoices.NewService(
		invoices.NewRepository(dbClient.DB()),
		cart.NewRepository(dbClient.DB()),
		catalog.NewRepository(dbClient.DB()),
		discountRepo,
		dbClient,
		cfg.Checkout,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice service", err)
		os.Exit(1)
	}

	programRepo := saleprograms.NewRepository(dbClient.DB())
	programService, err := saleprograms.NewService(programRepo, discountRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create sale program service", err)
		os.Exit(1)
	}

	invoiceJob, err := cron.NewInvoiceCompletionJob(cron.InvoiceCompletionJobParams{
		Logger:        logg,
		Invoices:      invoiceService,
		CompleteAfter: cfg.Cron.InvoiceCompleteAfter,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice completion job", err)
		os.Exit(1)
	}

	expiryJob, err := cron.NewProgramExpiryJob(cron.ProgramExpiryJobParams{
		Logger:   logg,
		Programs: programRepo,
		Service:  programService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create program expiry job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()
	registry.Register(invoiceJob)
	registry.Register(expiryJob)

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
