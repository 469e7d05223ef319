// Package redis stores sealed credentials in Redis with an expiry.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
)

const keyPrefix = "marketclient:credential:"

// Storage implements repository.CredentialRepository on Redis.
type Storage struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New connects to the Redis server addressed by dsn (redis://host:port/db).
func New(ctx context.Context, dsn string, ttl time.Duration, logger *slog.Logger) (*Storage, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse redis dsn: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("credential store connected", slog.String("backend", "redis"), slog.String("addr", opts.Addr))
	return &Storage{client: client, ttl: ttl, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() {
	if err := s.client.Close(); err != nil {
		s.logger.Warn("close redis client", slog.String("error", err.Error()))
	}
}

func (s *Storage) Load(ctx context.Context, deviceID string) ([]byte, error) {
	sealed, err := s.client.Get(ctx, keyPrefix+deviceID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}
	return sealed, nil
}

func (s *Storage) Save(ctx context.Context, deviceID string, sealed []byte) error {
	if err := s.client.Set(ctx, keyPrefix+deviceID, sealed, s.ttl).Err(); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, deviceID string) error {
	if err := s.client.Del(ctx, keyPrefix+deviceID).Err(); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
