package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
	"github.com/polkiloo/marketclient/internal/domain/model"
)

// LocationResolver is the subset of the location store the refresher drives.
type LocationResolver interface {
	ResolveCurrentLocation(ctx context.Context) (model.ResolvedLocation, error)
}

// LocationRefresher periodically re-resolves the current location in the background.
type LocationRefresher struct {
	resolver LocationResolver
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewLocationRefresher constructs a refresher. A non-positive interval disables it.
func NewLocationRefresher(resolver LocationResolver, interval time.Duration, logger *slog.Logger) *LocationRefresher {
	return &LocationRefresher{
		resolver: resolver,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the refresh loop.
func (r *LocationRefresher) Start(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Info("location refresher disabled")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel

	r.wg.Add(1)
	go r.loop(runCtx)
}

// Stop waits for an in-flight refresh to finish.
func (r *LocationRefresher) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *LocationRefresher) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *LocationRefresher) refresh(ctx context.Context) {
	loc, err := r.resolver.ResolveCurrentLocation(ctx)
	if err != nil {
		if errors.Is(err, domainErrors.ErrSuperseded) || ctx.Err() != nil {
			return
		}
		var locErr *domainErrors.LocationError
		if errors.As(err, &locErr) {
			r.logger.Warn("location refresh failed", slog.String("kind", string(locErr.Kind)))
			return
		}
		r.logger.Error("location refresh failed", slog.String("error", err.Error()))
		return
	}
	r.logger.Debug("location refreshed", slog.String("city", loc.City))
}
