// Package events defines the roast lifecycle events published on the event
// bus and archived by the archiver.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"roast-board/eventbus"
	"roast-board/models"
)

type EventType string

const (
	RoastCreated EventType = "roast.created"
	RoastVoted   EventType = "roast.voted"
)

const (
	SourceAPI = "api"
	Version   = "1"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// RoastEvent is the single payload shape on the roast topic. Roast is set
// for roast.created, Direction for roast.voted.
type RoastEvent struct {
	BaseEvent
	RoastID   string        `json:"roast_id"`
	PlayerID  string        `json:"player_id"`
	WeekID    string        `json:"week_id"`
	Direction string        `json:"direction,omitempty"`
	Upvotes   int64         `json:"upvotes"`
	Downvotes int64         `json:"downvotes"`
	Roast     *models.Roast `json:"roast,omitempty"`
}

func newBase(t EventType, at time.Time) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: at.UTC(),
		Source:    SourceAPI,
		Version:   Version,
	}
}

func NewRoastCreated(r models.Roast) RoastEvent {
	return RoastEvent{
		BaseEvent: newBase(RoastCreated, r.CreatedAt),
		RoastID:   r.ID,
		PlayerID:  r.PlayerID,
		WeekID:    r.WeekID,
		Upvotes:   r.Upvotes,
		Downvotes: r.Downvotes,
		Roast:     &r,
	}
}

func NewRoastVoted(roastID, playerID, weekID string, dir models.VoteDirection, res models.VoteResult, at time.Time) RoastEvent {
	return RoastEvent{
		BaseEvent: newBase(RoastVoted, at),
		RoastID:   roastID,
		PlayerID:  playerID,
		WeekID:    weekID,
		Direction: string(dir),
		Upvotes:   res.Upvotes,
		Downvotes: res.Downvotes,
	}
}

// Record converts the event into its archived form.
func (e RoastEvent) Record(archivedAt time.Time) models.RoastEventRecord {
	return models.RoastEventRecord{
		EventID:    e.ID,
		Type:       string(e.Type),
		RoastID:    e.RoastID,
		PlayerID:   e.PlayerID,
		WeekID:     e.WeekID,
		Direction:  e.Direction,
		Upvotes:    e.Upvotes,
		Downvotes:  e.Downvotes,
		Roast:      e.Roast,
		OccurredAt: e.Timestamp,
		ArchivedAt: archivedAt,
	}
}

// Publish sends e on the roast topic. The bus event id is the event id so
// redeliveries can be recognised downstream.
func Publish(ctx context.Context, bus eventbus.EventBus, e RoastEvent) error {
	evt, err := eventbus.NewJSONEvent(e.ID, e, 0)
	if err != nil {
		return err
	}
	if err := bus.Publish(ctx, eventbus.TopicRoastEvents.Base(), evt); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}
