package revstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares revisions across console replicas and survives restarts.
// Optionally, a TTL can be applied to revision keys to prevent unbounded
// growth. If a revision key expires, readers observe rev=0 and prefetch
// entries fetched under rev=0 stay valid; anything newer self-heals on read.
type Redis struct {
	rdb redis.UniversalClient
	ns  string        // logical namespace to avoid collisions
	ttl time.Duration // optional TTL for revision keys; 0 disables expiry
}

var _ RevStore = (*Redis)(nil)

// NewRedis creates a Redis-backed revision store without TTL.
func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	return &Redis{rdb: client, ns: namespace}
}

// NewRedisWithTTL creates a Redis-backed revision store with TTL.
// If ttl <= 0, keys do not expire.
func NewRedisWithTTL(client redis.UniversalClient, namespace string, ttl time.Duration) *Redis {
	return &Redis{rdb: client, ns: namespace, ttl: ttl}
}

func (s *Redis) key(scope string) string { return "rev:" + s.ns + ":" + scope }

// Snapshot returns the current revision. Missing keys are treated as 0.
func (s *Redis) Snapshot(ctx context.Context, scope string) (uint64, error) {
	res, err := s.rdb.Get(ctx, s.key(scope)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis rev parse: %w", err)
	}
	return u, nil
}

func (s *Redis) Bump(ctx context.Context, scope string) (uint64, error) {
	k := s.key(scope)
	v, err := s.rdb.Incr(ctx, k).Uint64()
	if err != nil {
		return 0, err
	}
	if s.ttl > 0 {
		_ = s.rdb.Expire(ctx, k, s.ttl).Err() // best-effort
	}
	return v, nil
}

func (s *Redis) Cleanup(time.Duration) {} // not applicable

func (s *Redis) Close(context.Context) error { return nil } // client not owned
