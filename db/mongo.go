package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"roast-board/config"
	"roast-board/logger"
)

// ConnectMongo connects, pings and ensures indexes. The returned client must
// be disconnected by the caller.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cl, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, err
	}
	// Ping to verify connection
	if err := cl.Ping(ctx, readpref.Primary()); err != nil {
		_ = cl.Disconnect(context.Background())
		return nil, nil, err
	}
	database := cl.Database(cfg.Database)

	if err := ensureIndexes(ctx, database); err != nil {
		_ = cl.Disconnect(context.Background())
		return nil, nil, err
	}
	logger.Log.Info("MongoDB connected and indexes ensured")
	return cl, database, nil
}

func ensureIndexes(ctx context.Context, d *mongo.Database) error {
	// generation_logs: player lookups and time-ordered browsing
	{
		if _, err := d.Collection("generation_logs").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "player_id", Value: 1}, {Key: "requested_at", Value: -1}},
			Options: options.Index().SetName("idx_player_requested_at"),
		}); err != nil {
			return err
		}
	}

	// roast_events: unique event id so redelivered kafka messages are dropped
	{
		if _, err := d.Collection("roast_events").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetName("uniq_event_id").SetUnique(true),
		}); err != nil {
			return err
		}
		if _, err := d.Collection("roast_events").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "roast_id", Value: 1}, {Key: "occurred_at", Value: 1}},
			Options: options.Index().SetName("idx_roast_occurred_at"),
		}); err != nil {
			return err
		}
	}
	return nil
}
