package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Allow implements a fixed-window counter: the nth call within the window
// returns false once n exceeds limit.
func (s *Store) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rkey := fmt.Sprintf("ratelimit:%s", key)

	n, err := s.rdb.Incr(ctx, rkey).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := s.rdb.Expire(ctx, rkey, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}
