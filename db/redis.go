package db

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"

	"roast-board/config"
)

// NewRedisPool builds the redigo pool shared by every store call.
// The pool is created lazily: no connection is opened until first use.
func NewRedisPool(cfg config.RedisConfig) *redis.Pool {
	opts := []redis.DialOption{
		redis.DialDatabase(cfg.DB),
		redis.DialConnectTimeout(5 * time.Second),
	}
	if cfg.Password != "" {
		opts = append(opts, redis.DialPassword(cfg.Password))
	}

	return &redis.Pool{
		MaxIdle:     cfg.MaxIdle,
		MaxActive:   cfg.MaxActive,
		IdleTimeout: cfg.IdleTimeout,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialContext(ctx, "tcp", cfg.Addr, opts...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}
