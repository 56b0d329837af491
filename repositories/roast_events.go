package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roast-board/models"
)

// RoastEventRepository archives roast lifecycle events past the store's
// weekly window.
type RoastEventRepository struct {
	col *mongo.Collection
}

func NewRoastEventRepository(db *mongo.Database) *RoastEventRepository {
	return &RoastEventRepository{col: db.Collection("roast_events")}
}

// Archive inserts an event once. A redelivered event (same event_id) is a
// no-op and reports inserted=false.
func (r *RoastEventRepository) Archive(ctx context.Context, rec models.RoastEventRecord) (bool, error) {
	if rec.ArchivedAt.IsZero() {
		rec.ArchivedAt = time.Now()
	}
	_, err := r.col.InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByRoast returns the archived events of a roast in occurrence order.
func (r *RoastEventRepository) ListByRoast(ctx context.Context, roastID string) ([]models.RoastEventRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"roast_id": roastID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.RoastEventRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
