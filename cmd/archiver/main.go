package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"roast-board/config"
	"roast-board/db"
	"roast-board/eventbus"
	"roast-board/logger"
	"roast-board/repositories"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Events.Brokers == "" {
		logger.Log.Error("KAFKA_BOOTSTRAP_SERVERS is not set")
		os.Exit(1)
	}
	if cfg.Mongo.URI == "" {
		logger.Log.Error("MONGO_URI is not set")
		os.Exit(1)
	}

	client, database, err := db.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		logger.Log.Errorf("failed to connect to MongoDB: %v", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := eventbus.EnsureTopics(ctx, cfg.Events.Brokers, eventbus.TopicRoastEvents, cfg.Events.Partitions); err != nil {
		logger.Log.Errorf("failed to ensure eventbus topics: %v", err)
	}
	bus, err := eventbus.NewKafkaEventBus(cfg.Events.Brokers)
	if err != nil {
		logger.Log.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	a := &archiver{events: repositories.NewRoastEventRepository(database)}
	groupID := cfg.Events.GroupID

	logger.Log.Info("starting archiver service with eventbus...")

	// delayed retries are moved back to the base topic by cmd/retryworker
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := eventbus.SubscribeJSON(ctx, bus, groupID, eventbus.TopicRoastEvents, a.handle); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Errorf("eventbus subscribe error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Log.Info("received shutdown signal, shutting down archiver service...")

	cancel()
	wg.Wait()

	logger.Log.Info("archiver service stopped")
}
