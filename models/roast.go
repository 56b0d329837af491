package models

import (
	"strings"
	"time"
)

// RoastSchemaVersion is bumped whenever the stored Roast shape changes.
const RoastSchemaVersion = 1

// PlayerSnapshot is the subject as it looked when the roast was created.
// It is never re-synced with the roster provider.
type PlayerSnapshot struct {
	Name         string `json:"name" bson:"name"`
	Position     string `json:"position" bson:"position"`
	Team         string `json:"team" bson:"team"`
	JerseyNumber int    `json:"jersey_number" bson:"jersey_number"`
}

// Roast is one generated text item plus its vote counters.
// Stored as JSON under record:{week}:{player}:{suffix}; counters live in a
// separate hash so votes never rewrite the record.
type Roast struct {
	ID            string         `json:"id" bson:"roast_id"`
	SchemaVersion int            `json:"schema_version" bson:"schema_version"`
	PlayerID      string         `json:"player_id" bson:"player_id"`
	TeamID        string         `json:"team_id" bson:"team_id"`
	Sport         string         `json:"sport" bson:"sport"`
	Text          string         `json:"text" bson:"text"`
	Upvotes       int64          `json:"upvotes" bson:"upvotes"`
	Downvotes     int64          `json:"downvotes" bson:"downvotes"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
	WeekID        string         `json:"week_id" bson:"week_id"`
	Player        PlayerSnapshot `json:"player" bson:"player"`
}

// Score is upvotes minus downvotes.
func (r Roast) Score() int64 {
	return r.Upvotes - r.Downvotes
}

// NewRoast carries what a caller supplies to create a roast.
type NewRoast struct {
	PlayerID string
	TeamID   string
	Sport    string
	ClientID string
	Text     string
	Player   PlayerSnapshot
}

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// ParseVoteDirection accepts "up"/"down" as well as the "upvote"/"downvote"
// spelling used by older clients.
func ParseVoteDirection(s string) (VoteDirection, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "upvote":
		return VoteUp, true
	case "down", "downvote":
		return VoteDown, true
	default:
		return "", false
	}
}

// VoteResult holds the counters after a vote was applied.
type VoteResult struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}
