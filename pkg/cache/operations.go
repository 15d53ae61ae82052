package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"houseprice-heatmap/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// RedisStore is the Redis-backed Store.
type RedisStore struct {
	client CacheClient
}

func NewRedisStore(client CacheClient) *RedisStore {
	return &RedisStore{client: client}
}

// store a value in the cache with the given key and expiration time.
func (s *RedisStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	start := time.Now()
	data, err := json.Marshal(value)
	if err != nil {
		IncrementError("set_marshal")
		logger.GlobalLogger.Errorf("failed to marshal value for key %s: %v", key, err)
		return NewCacheError("marshal", err, false)
	}
	err = s.client.Set(ctx, key, data, expiration).Err()
	RecordOperationDuration("set", time.Since(start).Seconds())
	if err != nil {
		IncrementError("set")
		logger.GlobalLogger.Errorf("failed to set key %s: %v", key, err)
		return NewCacheError("set", err, true)
	}
	return nil
}

// retrieve a value and unmarshal it into dest; a missing key is not an error.
func (s *RedisStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	start := time.Now()
	val, err := s.client.Get(ctx, key).Result()
	RecordOperationDuration("get", time.Since(start).Seconds())
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		IncrementError("get")
		logger.GlobalLogger.Errorf("failed to get key %s: %v", key, err)
		return false, NewCacheError("get", err, true)
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		IncrementError("get_unmarshal")
		logger.GlobalLogger.Errorf("failed to unmarshal value for key %s: %v", key, err)
		return false, NewCacheError("unmarshal", err, false)
	}
	return true, nil
}

// remove a key from the cache.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.client.Del(ctx, key).Err()
	RecordOperationDuration("delete", time.Since(start).Seconds())
	if err != nil {
		IncrementError("delete")
		logger.GlobalLogger.Errorf("failed to delete key %s: %v", key, err)
		return NewCacheError("delete", err, true)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.client.Ping(ctx).Err()
	RecordOperationDuration("ping", time.Since(start).Seconds())
	if err != nil {
		IncrementError("ping")
		return NewCacheError("ping", err, true)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		logger.GlobalLogger.Errorf("error closing Redis: %v", err)
		return err
	}
	logger.GlobalLogger.Println("Redis connection closed")
	return nil
}
