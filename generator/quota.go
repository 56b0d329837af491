package generator

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"roast-board/config"
)

// QuotaLimiter applies the per-minute and daily caps on generation calls.
// Counters are in memory and reset with the process.
type QuotaLimiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	limiter *rate.Limiter
	now     func() time.Time
}

// NewQuotaLimiterFromConfig builds a limiter from generation_quota. Values
// <= 0 disable the limit in that direction.
func NewQuotaLimiterFromConfig(cfg config.GenerationQuotaConfig) *QuotaLimiter {
	l := &QuotaLimiter{
		dailyLimit: max(cfg.RequestsPerDay, 0),
		limiter:    rate.NewLimiter(rate.Inf, 0),
		now:        time.Now,
	}
	if cfg.RequestsPerMinute > 0 {
		l.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return l
}

// WaitAndReserve blocks until the per-minute rate allows a call and then
// takes one unit of the daily quota.
//   - daily quota used up: (false, nil), the caller must not call the provider
//   - context cancelled while waiting: (false, ctx error)
func (l *QuotaLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	if !l.reserveDaily() {
		return false, nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		l.release()
		return false, err
	}
	return true, nil
}

// Remaining reports what is left of today's quota, or -1 when unlimited.
func (l *QuotaLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dailyLimit == 0 {
		return -1
	}
	l.rollDay()
	return l.dailyLimit - l.usedToday
}

func (l *QuotaLimiter) reserveDaily() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollDay()
	if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
		return false
	}
	l.usedToday++
	return true
}

func (l *QuotaLimiter) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.usedToday > 0 {
		l.usedToday--
	}
}

func (l *QuotaLimiter) rollDay() {
	today := l.now().UTC().Format("2006-01-02")
	if l.dayKey != today {
		l.dayKey = today
		l.usedToday = 0
	}
}
