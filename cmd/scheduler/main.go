package main

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"

	"ledgercontrol/internal/anchor"
	"ledgercontrol/internal/ledger"
	"ledgercontrol/internal/settlement"
	"ledgercontrol/pkg/config"
)

// RunDailySettlement seals the previous day's entries into an anchored batch
func RunDailySettlement(engine *settlement.Engine, watcher *anchor.Watcher) error {
	logger.Info("> Starting daily settlement run")

	now := time.Now().UTC()
	periodEnd := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	periodStart := periodEnd.Add(-24 * time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	batch, err := engine.Run(ctx, periodStart, periodEnd)
	if err != nil {
		logger.Errorf("> Settlement run failed: %v", err)
		return err
	}
	if batch == nil {
		logger.Info("> Nothing to settle")
		return nil
	}

	logger.Infof("> Settlement batch %d finished with status %s", batch.BatchNumber, batch.Status)

	if watcher != nil && batch.AnchorTxSignature != "" {
		watcher.Watch(batch.AnchorTxSignature, batch.ID)
	}
	return nil
}

// RecordSummary persists the ledger summary time series point
func RecordSummary() error {
	snapshot, err := ledger.RecordSummarySnapshot(config.DB)
	if err != nil {
		logger.Errorf("> Failed to record ledger summary snapshot: %v", err)
		return err
	}
	logger.Infof("> Recorded summary snapshot %d: %d accounts, %.2f total balance",
		snapshot.ID, snapshot.TotalAccounts, snapshot.TotalBalance)
	return nil
}

func main() {
	os.MkdirAll("logs", 0755)
	file, err := os.OpenFile("logs/scheduler.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		logger.SetOutput(file)
	} else {
		logger.Warn("Could not open log file, logging to stdout")
	}

	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logger.InfoLevel)
	logger.Info("> Initializing scheduler...")

	config.InitDB()
	logger.Info("> Database connection initialized")

	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()
	}

	anchorClient, err := anchor.NewSolanaClient()
	if err != nil {
		logger.Fatalf("> Failed to create anchor client: %v", err)
	}
	engine := settlement.NewEngine(config.DB, anchorClient)

	var watcher *anchor.Watcher
	if os.Getenv("ANCHOR_WS_ENDPOINT") != "" {
		watcher, err = anchor.NewWatcher(config.DB)
		if err != nil {
			logger.Fatalf("> Failed to create anchor watcher: %v", err)
		}
	}

	c := cron.New(cron.WithSeconds())

	// Daily settlement shortly after midnight UTC
	_, err = c.AddFunc("0 5 0 * * *", func() {
		if err := RunDailySettlement(engine, watcher); err != nil {
			logger.Errorf("> Daily settlement failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("> Failed to add settlement job: %v", err)
	}

	// Summary snapshot every 15 minutes
	_, err = c.AddFunc("0 */15 * * * *", func() {
		if err := RecordSummary(); err != nil {
			logger.Errorf("> Summary snapshot failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("> Failed to add snapshot job: %v", err)
	}

	logger.Info("> Scheduler started")

	c.Start()

	// Keep the process running
	select {}
}
