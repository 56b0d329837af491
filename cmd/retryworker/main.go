package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"roast-board/config"
	"roast-board/eventbus"
	"roast-board/logger"
)

// The retry worker moves due events from the delayed retry topics back to
// their base topic. It runs next to the archiver so slow retries never block
// the main consumer.
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	if cfg.Events.Brokers == "" {
		logger.Log.Error("KAFKA_BOOTSTRAP_SERVERS is not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, t := range eventbus.AllTopics {
		if err := eventbus.EnsureTopics(ctx, cfg.Events.Brokers, t, cfg.Events.Partitions); err != nil {
			logger.Log.Errorf("failed to ensure eventbus topics for %s: %v", t.Base(), err)
		}
	}

	bus, err := eventbus.NewKafkaEventBus(cfg.Events.Brokers)
	if err != nil {
		logger.Log.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	groupID := cfg.Events.GroupID + "-retry-worker"

	logger.Log.Info("starting retry worker service with eventbus...")

	var wg sync.WaitGroup
	for _, topic := range eventbus.AllTopics {
		wg.Add(1)
		go func() {
			defer wg.Done()
			topicGroupID := groupID + "-" + strings.ReplaceAll(topic.Base(), ".", "-")
			if err := bus.StartRetryReinjector(ctx, topicGroupID, topic); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Errorf("eventbus retry reinjector error for %s: %v", topic.Base(), err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Log.Info("received shutdown signal, shutting down retry worker service...")

	cancel()
	wg.Wait()

	logger.Log.Info("retry worker service stopped")
}
