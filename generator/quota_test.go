package generator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roast-board/config"
)

func TestQuotaDailyLimit(t *testing.T) {
	now := time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC)
	l := NewQuotaLimiterFromConfig(config.GenerationQuotaConfig{RequestsPerDay: 2})
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.WaitAndReserve(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.WaitAndReserve(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, l.Remaining())

	// a new UTC day resets the counter
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, l.Remaining())
	ok, err = l.WaitAndReserve(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQuotaUnlimited(t *testing.T) {
	l := NewQuotaLimiterFromConfig(config.GenerationQuotaConfig{})
	for i := 0; i < 100; i++ {
		ok, err := l.WaitAndReserve(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, -1, l.Remaining())
}

func TestQuotaRateLimitHonoursContext(t *testing.T) {
	l := NewQuotaLimiterFromConfig(config.GenerationQuotaConfig{RequestsPerMinute: 1, RequestsPerDay: 10})

	ok, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ok, err = l.WaitAndReserve(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
	// the failed wait gives its unit back
	assert.Equal(t, 9, l.Remaining())
}
