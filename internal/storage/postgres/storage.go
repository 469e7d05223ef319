package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
)

type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage implements repository.CredentialRepository on PostgreSQL.
type Storage struct {
	pool   pool
	logger *slog.Logger
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	p, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: p, logger: logger}
	if err := storage.init(ctx); err != nil {
		p.Close()
		return nil, err
	}

	logger.Info("credential store connected", slog.String("backend", "postgres"), slog.String("host", cfg.ConnConfig.Host))
	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) init(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS device_credentials (
            device_id TEXT PRIMARY KEY,
            sealed BYTEA NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context, deviceID string) ([]byte, error) {
	const query = `SELECT sealed FROM device_credentials WHERE device_id=$1`
	var sealed []byte
	if err := s.pool.QueryRow(ctx, query, deviceID).Scan(&sealed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}
	return sealed, nil
}

func (s *Storage) Save(ctx context.Context, deviceID string, sealed []byte) error {
	const query = `INSERT INTO device_credentials (device_id, sealed) VALUES ($1, $2)
                   ON CONFLICT (device_id) DO UPDATE SET sealed = EXCLUDED.sealed, updated_at = NOW()`
	if _, err := s.pool.Exec(ctx, query, deviceID, sealed); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, deviceID string) error {
	const query = `DELETE FROM device_credentials WHERE device_id=$1`
	if _, err := s.pool.Exec(ctx, query, deviceID); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
