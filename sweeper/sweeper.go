// Package sweeper removes week-bucketed keys that fell out of the retention
// window. Only the current and the previous week are kept.
package sweeper

import (
	"context"
	"time"

	"roast-board/bucket"
	"roast-board/keyspace"
	"roast-board/logger"
	"roast-board/store"
)

// deleteBatch bounds how many keys go into a single DEL.
const deleteBatch = 100

type Result struct {
	Scanned int `json:"scanned"`
	Deleted int `json:"deleted"`
}

type Sweeper struct {
	store      store.Store
	namespaces []keyspace.Namespace
}

func New(st store.Store) *Sweeper {
	return &Sweeper{store: st, namespaces: keyspace.Bucketed}
}

// Sweep deletes every bucketed key whose week is neither ID(now) nor
// PreviousID(now). Keys without a recognisable bucket are left alone.
// Running it twice in a row deletes nothing the second time.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (Result, error) {
	var res Result
	current, previous := bucket.ID(now), bucket.PreviousID(now)

	for _, ns := range s.namespaces {
		keys, err := s.store.ListPrefixed(ctx, ns.Pattern)
		if err != nil {
			return res, err
		}
		res.Scanned += len(keys)

		var stale []string
		for _, key := range keys {
			week, ok := ns.BucketOf(key)
			if !ok || bucket.Retained(week, now) {
				continue
			}
			stale = append(stale, key)
		}

		for start := 0; start < len(stale); start += deleteBatch {
			end := min(start+deleteBatch, len(stale))
			n, err := s.store.Delete(ctx, stale[start:end]...)
			if err != nil {
				return res, err
			}
			res.Deleted += n
		}
	}

	logger.InfoWithFields("retention sweep finished", logger.Fields{
		"current_week":  current,
		"previous_week": previous,
		"scanned":       res.Scanned,
		"deleted":       res.Deleted,
	})
	return res, nil
}
