package main

import (
	"context"
	"fmt"
	"time"

	"roast-board/eventbus"
	"roast-board/events"
	"roast-board/logger"
	"roast-board/models"
)

type eventArchive interface {
	Archive(ctx context.Context, rec models.RoastEventRecord) (bool, error)
}

type archiver struct {
	events eventArchive
	now    func() time.Time
}

// handle stores one roast event. Unknown event types are acknowledged and
// skipped; archive failures go back to the bus for a retry.
func (a *archiver) handle(ctx context.Context, e events.RoastEvent, meta eventbus.Event) error {
	switch e.Type {
	case events.RoastCreated, events.RoastVoted:
	default:
		logger.Log.Debugf("skipping event %s of type %q", meta.ID, e.Type)
		return nil
	}

	now := time.Now
	if a.now != nil {
		now = a.now
	}
	inserted, err := a.events.Archive(ctx, e.Record(now().UTC()))
	if err != nil {
		return fmt.Errorf("archive %s %s: %w", e.Type, e.ID, err)
	}
	if !inserted {
		logger.Log.Debugf("event %s already archived", e.ID)
		return nil
	}

	logger.InfoWithFields("archived roast event", logger.Fields{
		"event_id": e.ID,
		"type":     string(e.Type),
		"roast_id": e.RoastID,
		"retry":    meta.Retry,
	})
	return nil
}
