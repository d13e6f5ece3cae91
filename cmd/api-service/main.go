package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/quantum-tracker/internal/api/handler"
	"github.com/cuongbtq/quantum-tracker/internal/api/router"
	"github.com/cuongbtq/quantum-tracker/internal/api/storage"
	"github.com/cuongbtq/quantum-tracker/internal/config"
	"github.com/cuongbtq/quantum-tracker/internal/provider"
	"github.com/cuongbtq/quantum-tracker/shared/logger"
	"github.com/cuongbtq/quantum-tracker/shared/metrics"
	"github.com/cuongbtq/quantum-tracker/shared/postgresql"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const metricsNamespace = "quantum_tracker_api"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	registry := metrics.New(metricsNamespace)

	providerClient, err := initProvider(cfg, appLogger.Logger, registry)
	if err != nil {
		return fmt.Errorf("failed to initialize provider client: %w", err)
	}

	handlerDeps := &handler.Dependencies{
		Logger:   appLogger.Logger,
		Provider: providerClient,
	}

	// Status history is optional; without it the API only proxies the provider
	var dbClient *postgresql.Client
	if cfg.History.Enabled {
		connectCtx, cancelConnect := context.WithTimeout(context.Background(), time.Minute)
		dbClient, err = initPostgreSQL(connectCtx, &cfg.Database, appLogger.Logger)
		cancelConnect()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbClient.Close()

		appLogger.Info("Database connection established")
		handlerDeps.History = storage.NewStorage(dbClient)
		handlerDeps.DB = dbClient
	}

	r := initRouter(cfg, handlerDeps, registry)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	appLogger.Info("Starting HTTP server",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
		slog.Bool("history_enabled", cfg.History.Enabled),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...",
			slog.String("signal", sig.String()),
		)
	case err := <-serverErr:
		appLogger.Error("Server failed to start",
			slog.Any("error", err),
		)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initProvider creates the provider REST client, reporting upstream calls to the registry
func initProvider(cfg *config.Config, logger *slog.Logger, registry *metrics.Registry) (*provider.Client, error) {
	return provider.NewClient(&provider.Config{
		BaseURL:           cfg.Provider.BaseURL,
		Token:             cfg.Provider.Token,
		Instance:          cfg.Provider.Instance,
		Timeout:           cfg.Provider.Timeout,
		RetryCount:        cfg.Provider.RetryCount,
		RetryWaitTime:     cfg.Provider.RetryWaitTime,
		RetryMaxWaitTime:  cfg.Provider.RetryMaxWaitTime,
		DetailConcurrency: cfg.Provider.DetailConcurrency,
		UserAgent:         fmt.Sprintf("%s/%s", cfg.App.Name, cfg.App.Version),
	}, logger, registry)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnectAttempts: cfg.ConnectAttempts,
		ConnectInterval: cfg.ConnectInterval,
	}

	return postgresql.NewClient(ctx, dbConfig, logger)
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(cfg *config.Config, deps *handler.Dependencies, registry *metrics.Registry) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(deps, router.Options{
		ServiceName:    cfg.App.Name,
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		RateLimit: router.RateLimitOptions{
			Enabled:       cfg.Server.RateLimit.Enabled,
			Limit:         cfg.Server.RateLimit.Limit,
			Period:        cfg.Server.RateLimit.Period,
			ExcludedPaths: cfg.Server.RateLimit.ExcludedPaths,
		},
		Metrics: registry,
	})
}
