package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Brooksey3011/military-tees-uk/api/routes"
	"github.com/Brooksey3011/military-tees-uk/internal/cart"
	"github.com/Brooksey3011/military-tees-uk/internal/catalog"
	checkoutsvc "github.com/Brooksey3011/military-tees-uk/internal/checkout"
	"github.com/Brooksey3011/military-tees-uk/pkg/config"
	"github.com/Brooksey3011/military-tees-uk/pkg/db"
	"github.com/Brooksey3011/military-tees-uk/pkg/logger"
	"github.com/Brooksey3011/military-tees-uk/pkg/metrics"
	"github.com/Brooksey3011/military-tees-uk/pkg/migrate"
	"github.com/Brooksey3011/military-tees-uk/pkg/redis"
	"github.com/Brooksey3011/military-tees-uk/pkg/square"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(registry)

	persister, err := cart.NewRedisPersister(redisClient, cfg.Cart.SnapshotTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart persister", err)
		os.Exit(1)
	}
	manager, err := cart.NewManager(persister, cfg.Cart.StoreIdleTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart manager", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())

	cartService, err := cart.NewService(manager, catalogRepo, cartMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create square client", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		checkoutsvc.NewRepository(dbClient.DB()),
		cartService,
		catalogRepo,
		squareClient,
		cartMetrics,
	)
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
			catalogRepo,
			cartService,
			checkoutService,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
