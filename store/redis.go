package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

//RedisStore Store backed by a redis client
type RedisStore struct {
	client *redis.Client
	prefix string
}

//NewRedisStore new instance. prefix namespaces the keys, may be empty.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if client == nil {
		panic("redis client must not be nil")
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value string) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
