package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roast-board/models"
)

type GenerationLogRepository struct {
	col *mongo.Collection
}

func NewGenerationLogRepository(db *mongo.Database) *GenerationLogRepository {
	return &GenerationLogRepository{col: db.Collection("generation_logs")}
}

func (r *GenerationLogRepository) Insert(ctx context.Context, log models.GenerationLog) (*mongo.InsertOneResult, error) {
	if log.RequestedAt.IsZero() {
		log.RequestedAt = time.Now()
	}
	return r.col.InsertOne(ctx, log)
}

// ListByPlayer returns the most recent generation logs of a player.
func (r *GenerationLogRepository) ListByPlayer(ctx context.Context, playerID string, limit int64) ([]models.GenerationLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, bson.M{"player_id": playerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GenerationLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
