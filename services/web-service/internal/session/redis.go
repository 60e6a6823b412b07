package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session as a hash at <prefix>:<sid>.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "sess"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(sid string) string {
	return s.prefix + ":" + sid
}

func (s *RedisStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, s.key(sid), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, sid, key, value string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key(sid), key, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key(sid), s.ttl)
		}
		return nil
	})
	return err
}

func (s *RedisStore) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return s.rdb.Del(ctx, s.key(sid)).Err()
	}
	return s.rdb.HDel(ctx, s.key(sid), keys...).Err()
}

func RedisReadyCheck(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
