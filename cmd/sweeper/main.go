package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"roast-board/config"
	"roast-board/db"
	"roast-board/logger"
	"roast-board/store"
	"roast-board/sweeper"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	pool := db.NewRedisPool(cfg.Redis)
	defer pool.Close()
	sw := sweeper.New(store.NewRedisStore(pool))

	scheduler, err := newScheduler(cfg.Sweeper, func() {
		runSweep(context.Background(), sw, cfg.Sweeper.Timeout, time.Now())
	})
	if err != nil {
		logger.Log.Errorf("invalid sweeper schedule %q: %v", cfg.Sweeper.Schedule, err)
		os.Exit(1)
	}

	logger.Log.Infof("starting sweeper with schedule %q (UTC)", cfg.Sweeper.Schedule)
	scheduler.StartAsync()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Log.Info("received shutdown signal, stopping sweeper...")
	scheduler.Stop()
	logger.Log.Info("sweeper stopped")
}

// newScheduler registers job on the configured cron expression. Runs never
// overlap: a run still in progress makes the next one wait.
func newScheduler(cfg config.SweeperConfig, job func()) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if _, err := s.Cron(cfg.Schedule).Do(job); err != nil {
		return nil, err
	}
	return s, nil
}

func runSweep(ctx context.Context, sw *sweeper.Sweeper, timeout time.Duration, now time.Time) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := sw.Sweep(ctx, now); err != nil {
		logger.Log.Errorf("sweep failed: %v", err)
	}
}
