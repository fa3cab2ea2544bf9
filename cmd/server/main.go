package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/shoplite/pricing-service/config"
	"github.com/shoplite/pricing-service/internal/pkg/broker"
	"github.com/shoplite/pricing-service/internal/pkg/cache"
	"github.com/shoplite/pricing-service/internal/pkg/logger"
	"github.com/shoplite/pricing-service/internal/pkg/postgres"
	"github.com/shoplite/pricing-service/internal/pkg/search"
	"github.com/shoplite/pricing-service/internal/pricing"

	cartH "github.com/shoplite/pricing-service/internal/cart/handler"
	cartRepoPkg "github.com/shoplite/pricing-service/internal/cart/repository"
	cartUCPkg "github.com/shoplite/pricing-service/internal/cart/usecase"

	orderH "github.com/shoplite/pricing-service/internal/order/handler"
	orderRepoPkg "github.com/shoplite/pricing-service/internal/order/repository"
	orderUCPkg "github.com/shoplite/pricing-service/internal/order/usecase"

	prodH "github.com/shoplite/pricing-service/internal/product/handler"
	prodRepoPkg "github.com/shoplite/pricing-service/internal/product/repository"
	prodUCPkg "github.com/shoplite/pricing-service/internal/product/usecase"

	competitorClientPkg "github.com/shoplite/pricing-service/internal/competitor/client"
	competitorUCPkg "github.com/shoplite/pricing-service/internal/competitor/usecase"

	repricerListenerPkg "github.com/shoplite/pricing-service/internal/repricer/listener"
	repricerTriggerPkg "github.com/shoplite/pricing-service/internal/repricer/trigger"
	repricerUCPkg "github.com/shoplite/pricing-service/internal/repricer/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger := logger.NewZapLogger(&logger.Config{
		IsDevelopment:     cfg.Server.AppEnv == "development",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer appLogger.Sync()

	// 3. Pricing policy
	policy := policyFromConfig(cfg.Pricing)
	if err := policy.Validate(); err != nil {
		appLogger.Fatal("Invalid pricing policy", zap.Error(err))
	}

	// 4. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 6. Initialize Kafka
	producer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer producer.Close()

	consumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer consumer.Close()
	appLogger.Info("Connected to Kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 7. Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (search falls back to DB)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 8. Repositories
	prodRepo := prodRepoPkg.NewPGRepository(db)
	cartRepo := cartRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)

	// 9. UseCases
	trigger := repricerTriggerPkg.NewKafkaTrigger(producer)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, esClient, cfg.Pricing.FloorRatio, appLogger)
	cartUC := cartUCPkg.NewCartUseCase(cartRepo, prodRepo, trigger, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, cartRepo, prodRepo, trigger, appLogger)
	repricerUC := repricerUCPkg.NewRepricerUseCase(prodRepo, redisClient, policy, appLogger)

	competitorClient := competitorClientPkg.NewHTTPClient(
		cfg.Competitor.BaseURL, cfg.Competitor.APIKey, cfg.Competitor.Timeout)
	competitorUC := competitorUCPkg.NewCompetitorUseCase(competitorClient, prodRepo, appLogger)

	// 10. Start reprice listener
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repriceListener := repricerListenerPkg.NewRepriceListener(consumer, repricerUC, cfg.Pricing.Workers, appLogger)
	go repriceListener.Start(ctx)

	// 11. Scheduled jobs
	scheduler := cron.New()
	mustSchedule(scheduler, cfg.Jobs.DemandRollSchedule, func() {
		if err := repricerUC.RollDemandWindows(ctx); err != nil {
			appLogger.Error("demand window roll failed", zap.Error(err))
		}
	})
	mustSchedule(scheduler, cfg.Jobs.SurplusSweepSchedule, func() {
		if err := repricerUC.RepriceSurplus(ctx); err != nil {
			appLogger.Error("surplus reprice sweep failed", zap.Error(err))
		}
	})
	mustSchedule(scheduler, cfg.Jobs.CompetitorSyncSchedule, func() {
		if err := competitorUC.SyncPrices(ctx); err != nil {
			appLogger.Error("competitor price sync failed", zap.Error(err))
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	// 12. HTTP server
	mux := http.NewServeMux()
	prodH.NewProductHandler(prodUC, appLogger).Register(mux)
	cartH.NewCartHandler(cartUC, appLogger).Register(mux)
	orderH.NewOrderHandler(orderUC, appLogger).Register(mux)
	mux.HandleFunc("GET /up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         cfg.Server.HTTPPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", cfg.Server.HTTPPort))
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", zap.Error(err))
	}
	cancel()
	appLogger.Info("Server stopped")
}

func policyFromConfig(cfg config.PricingConfig) pricing.Policy {
	policy := pricing.DefaultPolicy()
	policy.Strategy = pricing.Strategy(cfg.Strategy)
	policy.Window = pricing.DemandWindowPolicy(cfg.DemandWindow)
	policy.DemandTie = pricing.DemandLevel(cfg.DemandTie)
	if cfg.Cooldown > 0 {
		policy.Cooldown = cfg.Cooldown
	}
	return policy
}

func mustSchedule(scheduler *cron.Cron, spec string, job func()) {
	if _, err := scheduler.AddFunc(spec, job); err != nil {
		log.Fatalf("invalid cron schedule %q: %v", spec, err)
	}
}
