// Package storage selects the credential repository backend from its DSN.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/marketclient/internal/config"
	"github.com/polkiloo/marketclient/internal/domain/repository"
	"github.com/polkiloo/marketclient/internal/storage/memory"
	"github.com/polkiloo/marketclient/internal/storage/postgres"
	redisstore "github.com/polkiloo/marketclient/internal/storage/redis"
)

// Module wires the credential repository and closes it on stop.
var Module = fx.Options(
	fx.Provide(newRepository),
)

type repositoryParams struct {
	fx.In

	Ctx       context.Context
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newRepository(p repositoryParams) (repository.CredentialRepository, error) {
	repo, closeFn, err := Open(p.Ctx, p.Config.CredentialStore, p.Config.CredentialTTL, p.Logger)
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeFn()
			return nil
		},
	})
	return repo, nil
}

// Open connects the repository named by dsn: memory://, redis:// or postgres://.
func Open(ctx context.Context, dsn string, ttl time.Duration, logger *slog.Logger) (repository.CredentialRepository, func(), error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse credential store dsn: %w", err)
	}

	switch u.Scheme {
	case "", "memory":
		logger.Info("credential store ready", slog.String("backend", "memory"))
		return memory.New(), func() {}, nil
	case "redis", "rediss":
		s, err := redisstore.New(ctx, dsn, ttl, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "postgres", "postgresql":
		s, err := postgres.New(ctx, dsn, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported credential store scheme %q", u.Scheme)
	}
}
