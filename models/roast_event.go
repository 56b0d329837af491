package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoastEventRecord is an archived roast lifecycle event.
// Collection: roast_events
type RoastEventRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID    string             `bson:"event_id" json:"event_id"`
	Type       string             `bson:"type" json:"type"`
	RoastID    string             `bson:"roast_id" json:"roast_id"`
	PlayerID   string             `bson:"player_id" json:"player_id"`
	WeekID     string             `bson:"week_id" json:"week_id"`
	Direction  string             `bson:"direction,omitempty" json:"direction,omitempty"`
	Upvotes    int64              `bson:"upvotes" json:"upvotes"`
	Downvotes  int64              `bson:"downvotes" json:"downvotes"`
	Roast      *Roast             `bson:"roast,omitempty" json:"roast,omitempty"`
	OccurredAt time.Time          `bson:"occurred_at" json:"occurred_at"`
	ArchivedAt time.Time          `bson:"archived_at" json:"archived_at"`
}
