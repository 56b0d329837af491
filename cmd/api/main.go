package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"roast-board/cmd/api/clients/newsclient"
	"roast-board/cmd/api/clients/rosterclient"
	"roast-board/cmd/api/router"
	"roast-board/cmd/api/services"
	"roast-board/config"
	"roast-board/db"
	"roast-board/eventbus"
	"roast-board/generator"
	"roast-board/logger"
	"roast-board/repositories"
	"roast-board/store"
	"roast-board/sweeper"
)

const shutdownTimeout = 15 * time.Second

// @title           Roast Board API
// @version         1.0
// @description     Weekly sports roasts with votes and rankings.
// @BasePath        /api/v1
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := db.NewRedisPool(cfg.Redis)
	defer pool.Close()
	st := store.NewRedisStore(pool)
	if err := st.Ping(ctx); err != nil {
		// keep serving; /health reports the store as down
		logger.Log.Warnf("redis not reachable at startup: %v", err)
	}

	var logs services.GenerationLogWriter
	if cfg.Mongo.URI != "" {
		client, database, err := db.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			logger.Log.Errorf("failed to connect to MongoDB, generation logs disabled: %v", err)
		} else {
			defer func() { _ = client.Disconnect(context.Background()) }()
			logs = repositories.NewGenerationLogRepository(database)
		}
	}

	var bus eventbus.EventBus = eventbus.NoopBus{}
	if cfg.Events.Enabled && cfg.Events.Brokers != "" {
		if err := eventbus.EnsureTopics(ctx, cfg.Events.Brokers, eventbus.TopicRoastEvents, cfg.Events.Partitions); err != nil {
			logger.Log.Errorf("failed to ensure eventbus topics: %v", err)
		}
		kafkaBus, err := eventbus.NewKafkaEventBus(cfg.Events.Brokers)
		if err != nil {
			logger.Log.Errorf("failed to create event bus, events disabled: %v", err)
		} else {
			bus = kafkaBus
		}
	}
	defer bus.Close()

	quota := generator.NewQuotaLimiterFromConfig(cfg.GenerationQuota)
	gen, err := generator.NewGeminiGenerator(ctx, cfg.LLM, quota, "")
	if err != nil {
		logger.Log.Errorf("failed to create text generator: %v", err)
		os.Exit(1)
	}

	repo := repositories.NewRoastRepository(st, repositories.RoastRepositoryOptions{
		RecordTTL:    cfg.Retention.RecordTTL,
		VoteGuardTTL: cfg.Retention.VoteGuardTTL,
		TopViewTTL:   cfg.Retention.TopViewTTL,
	})
	catalog := services.NewCatalogService(st, rosterclient.New(cfg.Roster), newsclient.New(cfg.News), cfg.Retention)
	roasts := services.NewRoastService(repo, catalog, gen, logs, bus, sweeper.New(st), services.RoastServiceOptions{
		StoreTimeout:    cfg.Server.StoreTimeout,
		GenerateTimeout: cfg.Server.GenerateTimeout,
	})

	engine := router.New(router.Deps{
		Store:         st,
		Roasts:        roasts,
		Catalog:       catalog,
		TraceRequests: cfg.Logging.Level == "debug",
	})
	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "X-Span-Id"},
	}).Handler(engine)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Log.Infof("starting api server on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("api server error: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Log.Info("received shutdown signal, shutting down api server...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("api server shutdown: %v", err)
	}
	logger.Log.Info("api server stopped")
}
