package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roast-board/eventbus"
	"roast-board/events"
	"roast-board/models"
)

type fakeArchive struct {
	records []models.RoastEventRecord
	seen    map[string]bool
	err     error
}

func (f *fakeArchive) Archive(_ context.Context, rec models.RoastEventRecord) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[rec.EventID] {
		return false, nil
	}
	f.seen[rec.EventID] = true
	f.records = append(f.records, rec)
	return true, nil
}

var archivedAt = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestArchiverStoresEvents(t *testing.T) {
	store := &fakeArchive{}
	a := &archiver{events: store, now: func() time.Time { return archivedAt }}

	roast := models.Roast{ID: "P1-2025-11-s1", PlayerID: "P1", WeekID: "2025-11", CreatedAt: archivedAt.Add(-time.Hour)}
	created := events.NewRoastCreated(roast)
	voted := events.NewRoastVoted(roast.ID, "P1", "2025-11", models.VoteUp, models.VoteResult{Upvotes: 1}, archivedAt)

	require.NoError(t, a.handle(context.Background(), created, eventbus.Event{ID: created.ID}))
	require.NoError(t, a.handle(context.Background(), voted, eventbus.Event{ID: voted.ID}))

	require.Len(t, store.records, 2)
	assert.Equal(t, "roast.created", store.records[0].Type)
	assert.Equal(t, roast.ID, store.records[0].Roast.ID)
	assert.Equal(t, "up", store.records[1].Direction)
	assert.Equal(t, archivedAt, store.records[1].ArchivedAt)
}

func TestArchiverIgnoresRedeliveryAndUnknownTypes(t *testing.T) {
	store := &fakeArchive{}
	a := &archiver{events: store}

	e := events.NewRoastCreated(models.Roast{ID: "P1-2025-11-s1"})
	require.NoError(t, a.handle(context.Background(), e, eventbus.Event{ID: e.ID}))
	require.NoError(t, a.handle(context.Background(), e, eventbus.Event{ID: e.ID, Retry: 1}))

	unknown := events.RoastEvent{BaseEvent: events.BaseEvent{ID: "x", Type: "roast.deleted"}}
	require.NoError(t, a.handle(context.Background(), unknown, eventbus.Event{ID: "x"}))

	assert.Len(t, store.records, 1)
}

func TestArchiverReturnsStoreErrors(t *testing.T) {
	a := &archiver{events: &fakeArchive{err: errors.New("mongo down")}}

	e := events.NewRoastCreated(models.Roast{ID: "P1-2025-11-s1"})
	err := a.handle(context.Background(), e, eventbus.Event{ID: e.ID})
	assert.ErrorContains(t, err, "mongo down")
}
