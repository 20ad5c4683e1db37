package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenKeyPrefix = "seen:"

// RedisSeenStore is the Redis-backed SeenStore. Each seen job is one key
// holding its first-seen timestamp; SETNX makes the check-then-mark sequence
// a single atomic unit.
type RedisSeenStore struct {
	rdb *redis.Client
}

// NewRedisSeenStore wraps an already-connected Redis client.
func NewRedisSeenStore(rdb *redis.Client) *RedisSeenStore {
	return &RedisSeenStore{rdb: rdb}
}

// IsNew reports whether jobID has never been marked seen.
// A store error is surfaced as-is: an unreachable store must halt the cycle,
// never silently report everything as new.
func (s *RedisSeenStore) IsNew(ctx context.Context, jobID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, seenKeyPrefix+jobID).Result()
	if err != nil {
		return false, fmt.Errorf("seen store: exists %s: %w", jobID, err)
	}
	return n == 0, nil
}

// MarkSeen records jobID with its first-seen timestamp. Idempotent: a
// replay after a crash leaves the original timestamp untouched.
func (s *RedisSeenStore) MarkSeen(ctx context.Context, jobID string, firstSeen time.Time) error {
	val := firstSeen.UTC().Format(time.RFC3339)
	if err := s.rdb.SetNX(ctx, seenKeyPrefix+jobID, val, 0).Err(); err != nil {
		return fmt.Errorf("seen store: mark %s: %w", jobID, err)
	}
	return nil
}

// FirstSeen returns the recorded first-seen timestamp for jobID, with
// ok=false when the job was never marked.
func (s *RedisSeenStore) FirstSeen(ctx context.Context, jobID string) (time.Time, bool, error) {
	val, err := s.rdb.Get(ctx, seenKeyPrefix+jobID).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("seen store: get %s: %w", jobID, err)
	}
	ts, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("seen store: corrupt timestamp for %s: %w", jobID, err)
	}
	return ts, true, nil
}
