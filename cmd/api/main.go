package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/tahanancrafts/marketplace-backend/api/routes"
	"github.com/tahanancrafts/marketplace-backend/internal/cart"
	"github.com/tahanancrafts/marketplace-backend/internal/catalog"
	checkoutsvc "github.com/tahanancrafts/marketplace-backend/internal/checkout"
	deliverysvc "github.com/tahanancrafts/marketplace-backend/internal/delivery"
	"github.com/tahanancrafts/marketplace-backend/internal/notifications"
	"github.com/tahanancrafts/marketplace-backend/internal/orders"
	"github.com/tahanancrafts/marketplace-backend/pkg/config"
	"github.com/tahanancrafts/marketplace-backend/pkg/db"
	"github.com/tahanancrafts/marketplace-backend/pkg/lalamove"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
	"github.com/tahanancrafts/marketplace-backend/pkg/migrate"
	"github.com/tahanancrafts/marketplace-backend/pkg/ocr"
	"github.com/tahanancrafts/marketplace-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	cartRepo := cart.NewRepository(dbClient.DB())
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

	deliveryParams := deliverysvc.ServiceParams{
		Repo:        deliveryRepo,
		OrdersRepo:  ordersRepo,
		CatalogRepo: catalogRepo,
		Addresses:   addresses,
		Tx:          dbClient,
		Notifier:    notifier,
		Simulate:    cfg.Cron.SimulateCourier,
		Logger:      logg,
	}
	if !cfg.Cron.SimulateCourier {
		courier, err := lalamove.New(context.Background(), cfg.Lalamove, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create courier client", err)
			os.Exit(1)
		}
		deliveryParams.Courier = courier
	}
	deliveryService, err := deliverysvc.NewService(deliveryParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		CartRepo:     cartRepo,
		CatalogRepo:  catalogRepo,
		OrdersRepo:   ordersRepo,
		DeliveryRepo: deliveryRepo,
		Addresses:    addresses,
		Quoter:       deliveryService,
		Tx:           dbClient,
		Notifier:     notifier,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			checkoutService,
			ordersService,
			deliveryService,
			notifier,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
