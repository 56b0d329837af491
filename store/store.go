// Package store is the record store adapter: the small set of key-value
// operations the roast repository and the sweeper rely on.
//
// Calls are independent round trips; nothing spans more than one key
// atomically. Failures are reported as models.ErrStoreUnavailable, or
// models.ErrUpstreamTimeout when the context deadline was hit.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roast-board/models"
)

type Store interface {
	// Get returns the value and whether the key existed.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores a value without expiry. The caller is responsible for
	// keeping the key bounded (index TTL or the sweeper).
	Set(ctx context.Context, key, value string) error
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX stores the value only when the key is absent and reports whether
	// it did.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Delete removes keys and returns how many existed.
	Delete(ctx context.Context, keys ...string) (int, error)
	// ListPrefixed returns all keys matching a glob pattern such as "record:*".
	ListPrefixed(ctx context.Context, pattern string) ([]string, error)
	SAdd(ctx context.Context, key, member string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	LPush(ctx context.Context, key, member string) error
	LRange(ctx context.Context, key string, start, end int) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Ping(ctx context.Context) error
}

// wrapErr maps transport errors onto the shared error taxonomy.
func wrapErr(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", models.ErrUpstreamTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", models.ErrStoreUnavailable, op, err)
}

// ttlSeconds rounds up so sub-second TTLs never become "no expiry".
func ttlSeconds(ttl time.Duration) int64 {
	secs := int64(ttl / time.Second)
	if ttl%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
