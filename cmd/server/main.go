package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pricekart/compare-service/config"
	_ "github.com/pricekart/compare-service/docs"
	"github.com/pricekart/compare-service/internal/accounts"
	"github.com/pricekart/compare-service/internal/contentstore"
	"github.com/pricekart/compare-service/internal/embedding"
	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/handlers"
	"github.com/pricekart/compare-service/internal/jobs"
	"github.com/pricekart/compare-service/internal/matching"
	"github.com/pricekart/compare-service/internal/middleware"
	"github.com/pricekart/compare-service/internal/orchestrator"
	"github.com/pricekart/compare-service/internal/platforms"
	"github.com/pricekart/compare-service/internal/proxy"
	"github.com/pricekart/compare-service/internal/telemetry"
)

// @title Compare Service API
// @version 1.0
// @description Public API for cross-storefront grocery price comparison, location tools, user accounts and admin content management.
// @BasePath /
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting compare service")

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	telCfg := telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint != "",
		Endpoint: cfg.Telemetry.Endpoint,
	}
	if telCfg.Enabled && telCfg.Endpoint == "" {
		telCfg.Endpoint = "opentelemetry-collector:4317"
	}
	shutdownTelemetry, err := telemetry.Init(ctx, telCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	store, err := contentstore.Connect(ctx, contentstore.Config{
		URL:             cfg.ContentStore.URL,
		Key:             cfg.ContentStore.Key,
		MaxConns:        cfg.ContentStore.MaxConnections,
		MinConns:        cfg.ContentStore.MinConnections,
		MaxConnLifetime: cfg.ContentStore.MaxConnLifetime,
		MaxConnIdleTime: cfg.ContentStore.MaxConnIdleTime,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to content store")
	}
	defer store.Close()

	logger.Info().Msg("Content store connected")

	proxyClient := proxy.NewClient(proxy.Config{
		APIKey:   cfg.Proxy.APIKey,
		Endpoint: cfg.Proxy.Endpoint,
	})
	geoClient := geo.NewClient(geo.Config{
		Keys:    cfg.MapAPIKeys(),
		BaseURL: cfg.Geo.Endpoint,
	})

	embedder := embedding.NewMistralClient(embedding.MistralConfig{
		APIKey:   cfg.Embedding.APIKey,
		Endpoint: cfg.Embedding.Endpoint,
	})
	cachedEmbedder, err := embedding.NewCache(embedder, cfg.Embedding.CacheSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create embedding cache")
	}

	engine := matching.NewEngine(cachedEmbedder, logger)
	registry := platforms.NewDefaultRegistry(proxyClient, logger)
	comparer := orchestrator.NewService(geoClient, registry, engine, orchestrator.Config{
		Timeout: cfg.SearchTimeout(),
	}, logger)

	accountsSvc := accounts.NewService(store, accounts.Config{OTPTTL: cfg.OTPTTL()}, logger)

	cleanupManager := jobs.NewCleanupManager(store, jobs.DefaultOTPCleanupConfig(), logger)
	cleanupManager.Start()

	switch cfg.Server.GinMode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	setupMiddleware(router, logger)
	router.Use(cors.New(corsConfig()))

	healthHandler := handlers.NewHealthHandler(store)
	searchHandler := handlers.NewSearchHandler(comparer, logger)
	autocompleteHandler := handlers.NewAutocompleteHandler(geoClient, logger)
	accountsHandler := handlers.NewAccountsHandler(accountsSvc, logger)
	apikeyHandler := handlers.NewAPIKeyHandler(cfg.MapAPIKeys(), logger)
	contentHandler := handlers.NewContentHandler(store, logger)

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/health/ready", healthHandler.ReadyCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	rateLimiter := middleware.RateLimitMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	})

	public := router.Group("/")
	public.Use(rateLimiter)
	{
		public.POST("/get-search-results", searchHandler.GetSearchResults)
		public.POST("/autocomplete", autocompleteHandler.Autocomplete)
		public.POST("/signup", accountsHandler.Signup)
		public.POST("/login", accountsHandler.Login)
		public.POST("/send-otp", accountsHandler.SendOTP)
		public.POST("/confirm-otp", accountsHandler.ConfirmOTP)
		public.POST("/get-api-key", apikeyHandler.GetAPIKey)
	}

	api := router.Group("/api")
	api.Use(rateLimiter)
	contentHandler.Register(api, middleware.AdminAuthMiddleware(cfg.Admin.APIKey))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	cleanupManager.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			middleware.AdminKeyHeader, middleware.RequestIDHeader,
		},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		output = zerolog.MultiLevelWriter(output, rotating)
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "compare-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Msg("HTTP request")
	})
}
