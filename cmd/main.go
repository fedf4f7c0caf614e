package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"user-service/internal/handler"
	"user-service/internal/middleware"
	"user-service/internal/model"
	"user-service/internal/repository/mongodb"
	"user-service/internal/repository/sqldb"
	"user-service/internal/service"
	"user-service/pkg/config"
	"user-service/pkg/database"
	"user-service/pkg/logger"
	"user-service/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()
	log.Info("Starting user service...", cfg.LogConfig()...)

	// Initialize Prometheus metrics
	metrics := prometheus.NewMetrics(cfg.Metrics.Prefix, prom.DefaultRegisterer)
	log.Info("Prometheus metrics initialized", zap.String("prefix", cfg.Metrics.Prefix))

	// Initialize storage
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established", zap.String("driver", cfg.DB.Driver))

	users := service.NewUserService(store, cfg.Security.HashCost(), metrics)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(middleware.MetricsMiddleware(metrics))

	handler.RegisterRoutes(e, handler.NewUserHandler(users), prom.DefaultGatherer)

	// Start server
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down server", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error("Failed to close database", zap.Error(err))
	}
	log.Info("Server stopped")
}

// openStore connects the store selected by DB_DRIVER and prepares its indexes
func openStore(ctx context.Context, cfg *config.Config) (model.UserStore, error) {
	if cfg.DB.Driver == config.DriverMongo {
		client, err := database.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		store := mongodb.NewUserStore(client, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(context.Background())
			return nil, err
		}
		return store, nil
	}

	db, err := database.OpenSQL(cfg.DB)
	if err != nil {
		return nil, err
	}
	store := sqldb.NewUserStore(db)
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}
	return store, nil
}
