package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roast-board/config"
	"roast-board/store"
	"roast-board/sweeper"
)

func TestNewSchedulerRejectsBadExpression(t *testing.T) {
	_, err := newScheduler(config.SweeperConfig{Schedule: "not a cron"}, func() {})
	assert.Error(t, err)
}

func TestNewSchedulerRegistersJob(t *testing.T) {
	s, err := newScheduler(config.SweeperConfig{Schedule: "0 3 * * *"}, func() {})
	require.NoError(t, err)
	assert.Len(t, s.Jobs(), 1)
	assert.Equal(t, time.UTC, s.Location())
}

func TestRunSweep(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	pool := &redis.Pool{
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr)
		},
	}
	t.Cleanup(func() { _ = pool.Close() })

	require.NoError(t, mr.Set("record:2025-01:P1:s1", "{}"))
	require.NoError(t, mr.Set("record:2025-11:P1:s2", "{}"))

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	runSweep(context.Background(), sweeper.New(store.NewRedisStore(pool)), time.Second, now)

	assert.False(t, mr.Exists("record:2025-01:P1:s1"))
	assert.True(t, mr.Exists("record:2025-11:P1:s2"))
}
