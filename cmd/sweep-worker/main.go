package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/careconnect/guardian-api/cmd/mainconfig"
	appconfig "github.com/careconnect/guardian-api/internal/config"
	"github.com/careconnect/guardian-api/internal/visits"
	"github.com/careconnect/guardian-api/pkg/logging"
)

// sweepStore is a visit store that can also enumerate the guardians with
// scheduled visits. Both persistent backends implement it.
type sweepStore interface {
	visits.Store
	ListScheduledUserIDs(ctx context.Context) ([]string, error)
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.SweepInterval <= 0 {
		logger.Info("SWEEP_INTERVAL not set, sweep worker disabled")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := buildStore(ctx, cfg, logger)
	service := visits.NewService(store, logger, nil)

	logger.Info("sweep worker started", "interval", cfg.SweepInterval.String())
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	// one pass at startup so a long interval does not delay the first sweep
	runSweep(ctx, store, service, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info("sweep worker stopping")
			return
		case <-ticker.C:
			runSweep(ctx, store, service, logger)
		}
	}
}

func runSweep(ctx context.Context, store sweepStore, service *visits.Service, logger *logging.Logger) {
	userIDs, err := store.ListScheduledUserIDs(ctx)
	if err != nil {
		logger.Error("failed to list guardians with scheduled visits", "error", err)
		return
	}

	now := time.Now()
	totalFlagged, totalFailed := 0, 0
	for _, userID := range userIDs {
		res, err := service.Sweep(ctx, userID, now, "worker")
		if err != nil {
			logger.Error("sweep failed", "user_id", userID, "error", err)
			continue
		}
		totalFlagged += res.Flagged
		totalFailed += res.Failed
	}
	if totalFlagged > 0 || totalFailed > 0 {
		logger.Info("sweep pass complete",
			"guardians", len(userIDs),
			"flagged", totalFlagged,
			"failed", totalFailed,
		)
	}
}

func buildStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) sweepStore {
	switch cfg.StorageBackend {
	case "dynamo":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		return visits.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.VisitsTable, logger)
	case "postgres":
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			logger.Error("failed to reach postgres", "error", err)
			os.Exit(1)
		}
		return visits.NewPostgresStore(db)
	default:
		logger.Error("sweep worker requires a persistent storage backend", "storage", cfg.StorageBackend)
		os.Exit(1)
		return nil
	}
}
