// Package cache stores serialized price responses in Redis or, when Redis is disabled, in process memory.
package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"houseprice-heatmap/pkg/config"
	"houseprice-heatmap/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// Connect opens a Redis client from the redis section of the config and pings it.
func Connect(cfg *config.Config) (*redis.Client, error) {
	var tlsConfig *tls.Config
	if cfg.Redis.TLSEnabled {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		if cfg.Redis.TLSCertFile != "" {
			cert, err := tls.LoadX509KeyPair(cfg.Redis.TLSCertFile, cfg.Redis.TLSKeyFile)
			if err != nil {
				logger.GlobalLogger.Errorf("failed to load TLS certificate: %v", err)
				return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		TLSConfig:    tlsConfig,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	_, err := client.Ping(ctx).Result()
	RecordOperationDuration("ping", time.Since(start).Seconds())
	if err != nil {
		IncrementError("ping")
		_ = client.Close()
		logger.GlobalLogger.Errorf("failed to connect to Redis: %v", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.GlobalLogger.Println("Redis connected successfully")
	return client, nil
}

// New picks the Redis store when enabled and the in-memory store otherwise.
func New(cfg *config.Config) (Store, error) {
	if !cfg.Redis.Enabled {
		logger.GlobalLogger.Println("Redis disabled, using in-memory price cache")
		return NewMemoryStore(), nil
	}
	client, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return NewRedisStore(client), nil
}
