package session

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStorage keeps the session in Redis under two keys,
// "session:<ns>:token" and "session:<ns>:user". Useful when several console
// processes share one operator session (kiosk deployments).
type RedisStorage struct {
	rdb goredis.UniversalClient
	ns  string
}

var _ Storage = (*RedisStorage)(nil)

func NewRedisStorage(client goredis.UniversalClient, namespace string) *RedisStorage {
	return &RedisStorage{rdb: client, ns: namespace}
}

func (s *RedisStorage) tokenKey() string { return "session:" + s.ns + ":token" }
func (s *RedisStorage) userKey() string  { return "session:" + s.ns + ":user" }

func (s *RedisStorage) Read(ctx context.Context) (string, []byte, error) {
	token, err := s.rdb.Get(ctx, s.tokenKey()).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	user, err := s.rdb.Get(ctx, s.userKey()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return token, nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *RedisStorage) Write(ctx context.Context, token string, user []byte) error {
	if err := s.rdb.Set(ctx, s.tokenKey(), token, 0).Err(); err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.userKey(), user, 0).Err()
}

func (s *RedisStorage) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, s.tokenKey(), s.userKey()).Err()
}
