package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/careconnect/guardian-api/cmd/mainconfig"
	"github.com/careconnect/guardian-api/internal/api/router"
	"github.com/careconnect/guardian-api/internal/blobstore"
	appconfig "github.com/careconnect/guardian-api/internal/config"
	"github.com/careconnect/guardian-api/internal/identity"
	"github.com/careconnect/guardian-api/internal/observability/metrics"
	"github.com/careconnect/guardian-api/internal/profiles"
	"github.com/careconnect/guardian-api/internal/visits"
	"github.com/careconnect/guardian-api/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting guardian API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"storage", cfg.StorageBackend,
	)

	ctx := context.Background()

	// Initialize stores for the configured backend
	visitStore, accountStore, profileStore, photoStore, db := buildStores(ctx, cfg, logger)
	if db != nil {
		defer db.Close()
	}

	// Token revocation list
	var revoker identity.Revoker
	if cfg.RedisAddr != "" {
		redisClient := buildRedisClient(cfg)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		revoker = identity.NewRedisRevoker(redisClient)
	} else {
		logger.Info("no REDIS_ADDR configured, using in-process token revocation")
		revoker = identity.NewMemoryRevoker()
	}

	// Metrics
	metricsHandler, visitMetrics := setupVisitMetrics()

	// Services and handlers
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	tokens := identity.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	profileSvc := profiles.NewService(profileStore, photoStore, logger)
	identitySvc := identity.NewService(accountStore, tokens, revoker, profileSvc, logger)
	visitSvc := visits.NewService(visitStore, logger, visitMetrics)

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		AuthHandler:        identity.NewHandler(identitySvc, logger),
		Authenticator:      identitySvc,
		VisitsHandler:      visits.NewHandler(visitSvc, logger),
		ProfilesHandler:    profiles.NewHandler(profileSvc, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildStores selects the storage backend. The returned *sql.DB is non-nil
// only for the postgres backend so the caller can close it.
func buildStores(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (visits.Store, identity.Store, profiles.Store, blobstore.Store, *sql.DB) {
	var photoStore blobstore.Store

	switch cfg.StorageBackend {
	case "dynamo":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		dynamoClient := dynamodb.NewFromConfig(awsCfg)
		if cfg.PhotosBucket != "" {
			s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
				// LocalStack needs path-style addressing
				if cfg.AWSEndpointOverride != "" {
					o.UsePathStyle = true
				}
			})
			photoStore = blobstore.NewS3Store(s3Client, cfg.PhotosBucket, cfg.PhotoURLPrefix)
		} else {
			photoStore = blobstore.NewInMemoryStore()
		}
		return visits.NewDynamoStore(dynamoClient, cfg.VisitsTable, logger),
			identity.NewDynamoStore(dynamoClient, cfg.AccountsTable),
			profiles.NewDynamoStore(dynamoClient, cfg.ProfilesTable),
			photoStore, nil

	case "postgres":
		db, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		return visits.NewPostgresStore(db),
			identity.NewPostgresStore(db),
			profiles.NewPostgresStore(db),
			blobstore.NewInMemoryStore(), db

	default:
		logger.Info("using in-memory stores, data will not survive a restart")
		return visits.NewInMemoryStore(),
			identity.NewInMemoryStore(),
			profiles.NewInMemoryStore(),
			blobstore.NewInMemoryStore(), nil
	}
}

// setupVisitMetrics wires a dedicated registry so /metrics only exposes
// what this service registers.
func setupVisitMetrics() (http.Handler, *metrics.VisitMetrics) {
	registry := prometheus.NewRegistry()
	visitMetrics := metrics.NewVisitMetrics(registry)
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return handler, visitMetrics
}

func openPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func buildRedisClient(cfg *appconfig.Config) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}
