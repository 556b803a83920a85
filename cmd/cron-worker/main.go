package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tahanancrafts/marketplace-backend/internal/catalog"
	checkoutsvc "github.com/tahanancrafts/marketplace-backend/internal/checkout"
	"github.com/tahanancrafts/marketplace-backend/internal/cron"
	deliverysvc "github.com/tahanancrafts/marketplace-backend/internal/delivery"
	"github.com/tahanancrafts/marketplace-backend/internal/notifications"
	"github.com/tahanancrafts/marketplace-backend/internal/orders"
	"github.com/tahanancrafts/marketplace-backend/pkg/config"
	"github.com/tahanancrafts/marketplace-backend/pkg/db"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
	"github.com/tahanancrafts/marketplace-backend/pkg/metrics"
	"github.com/tahanancrafts/marketplace-backend/pkg/migrate"
	"github.com/tahanancrafts/marketplace-backend/pkg/ocr"
	"github.com/tahanancrafts/marketplace-backend/pkg/redis"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	catalogRepo := catalog.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	deliveryRepo := deliverysvc.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())
	addresses := checkoutsvc.NewAddressRepository(dbClient.DB())

	notifier, err := notifications.NewService(notificationsRepo, catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	extractor := ocr.NewHTTPExtractor(cfg.OCR, logg)
	ordersService, err := orders.NewService(ordersRepo, dbClient, notifier, extractor, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	escalateJob, err := cron.NewAutoEscalateJob(cron.AutoEscalateJobParams{
		Logger:         logg,
		Orders:         ordersService,
		EscalationDays: cfg.Cron.EscalationDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create escalation job", err)
		os.Exit(1)
	}

	jobs := []cron.Job{escalateJob}

	if cfg.Cron.SimulateCourier {
		deliveryService, err := deliverysvc.NewService(deliverysvc.ServiceParams{
			Repo:        deliveryRepo,
			OrdersRepo:  ordersRepo,
			CatalogRepo: catalogRepo,
			Addresses:   addresses,
			Tx:          dbClient,
			Notifier:    notifier,
			Simulate:    true,
			Logger:      logg,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create delivery service", err)
			os.Exit(1)
		}
		progressJob, err := cron.NewCourierProgressJob(cron.CourierProgressJobParams{
			Logger:   logg,
			Delivery: deliveryService,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create courier progress job", err)
			os.Exit(1)
		}
		jobs = append(jobs, progressJob)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(jobs...),
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
