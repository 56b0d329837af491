package store

import (
	"context"
	"sort"
	"time"

	"github.com/gomodule/redigo/redis"
)

// scanCount is the COUNT hint passed to SCAN.
const scanCount = 500

// RedisStore implements Store on a redigo connection pool. Every call
// borrows a connection for a single command.
type RedisStore struct {
	pool *redis.Pool
}

func NewRedisStore(pool *redis.Pool) *RedisStore {
	return &RedisStore{pool: pool}
}

func (s *RedisStore) do(ctx context.Context, op, cmd string, args ...any) (any, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, wrapErr(ctx, op, err)
	}
	defer conn.Close()

	reply, err := redis.DoContext(conn, ctx, cmd, args...)
	if err != nil {
		return nil, wrapErr(ctx, op, err)
	}
	return reply, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	reply, err := s.do(ctx, "get", "GET", key)
	if err != nil {
		return "", false, err
	}
	if reply == nil {
		return "", false, nil
	}
	v, err := redis.String(reply, nil)
	if err != nil {
		return "", false, wrapErr(ctx, "get", err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	_, err := s.do(ctx, "set", "SET", key, value)
	return err
}

func (s *RedisStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.do(ctx, "setex", "SET", key, value, "EX", ttlSeconds(ttl))
	return err
}

func (s *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	reply, err := s.do(ctx, "setnx", "SET", key, value, "EX", ttlSeconds(ttl), "NX")
	if err != nil {
		return false, err
	}
	return reply != nil, nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	reply, err := s.do(ctx, "del", "DEL", args...)
	if err != nil {
		return 0, err
	}
	n, err := redis.Int(reply, nil)
	if err != nil {
		return 0, wrapErr(ctx, "del", err)
	}
	return n, nil
}

// ListPrefixed walks the keyspace with SCAN so a large keyspace never blocks
// the server the way KEYS would. Keys are returned sorted and de-duplicated.
func (s *RedisStore) ListPrefixed(ctx context.Context, pattern string) ([]string, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, wrapErr(ctx, "scan", err)
	}
	defer conn.Close()

	seen := map[string]struct{}{}
	cursor := 0
	for {
		values, err := redis.Values(redis.DoContext(conn, ctx, "SCAN", cursor, "MATCH", pattern, "COUNT", scanCount))
		if err != nil {
			return nil, wrapErr(ctx, "scan", err)
		}
		if len(values) != 2 {
			return nil, wrapErr(ctx, "scan", redis.Error("unexpected SCAN reply"))
		}
		cursor, err = redis.Int(values[0], nil)
		if err != nil {
			return nil, wrapErr(ctx, "scan", err)
		}
		batch, err := redis.Strings(values[1], nil)
		if err != nil {
			return nil, wrapErr(ctx, "scan", err)
		}
		for _, k := range batch {
			seen[k] = struct{}{}
		}
		if cursor == 0 {
			break
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *RedisStore) SAdd(ctx context.Context, key, member string) error {
	_, err := s.do(ctx, "sadd", "SADD", key, member)
	return err
}

func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	reply, err := s.do(ctx, "smembers", "SMEMBERS", key)
	if err != nil {
		return nil, err
	}
	members, err := redis.Strings(reply, nil)
	if err != nil {
		return nil, wrapErr(ctx, "smembers", err)
	}
	return members, nil
}

func (s *RedisStore) LPush(ctx context.Context, key, member string) error {
	_, err := s.do(ctx, "lpush", "LPUSH", key, member)
	return err
}

func (s *RedisStore) LRange(ctx context.Context, key string, start, end int) ([]string, error) {
	reply, err := s.do(ctx, "lrange", "LRANGE", key, start, end)
	if err != nil {
		return nil, err
	}
	items, err := redis.Strings(reply, nil)
	if err != nil {
		return nil, wrapErr(ctx, "lrange", err)
	}
	return items, nil
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	_, err := s.do(ctx, "expire", "EXPIRE", key, ttlSeconds(ttl))
	return err
}

func (s *RedisStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	reply, err := s.do(ctx, "hincrby", "HINCRBY", key, field, delta)
	if err != nil {
		return 0, err
	}
	n, err := redis.Int64(reply, nil)
	if err != nil {
		return 0, wrapErr(ctx, "hincrby", err)
	}
	return n, nil
}

func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	reply, err := s.do(ctx, "hgetall", "HGETALL", key)
	if err != nil {
		return nil, err
	}
	m, err := redis.StringMap(reply, nil)
	if err != nil {
		return nil, wrapErr(ctx, "hgetall", err)
	}
	return m, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	_, err := s.do(ctx, "ping", "PING")
	return err
}
