package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/pkg/observer"
)

// GeoResolver looks up the device's current city.
type GeoResolver interface {
	Resolve(ctx context.Context) (model.ResolvedLocation, error)
}

// LocationStore holds the selected city and the last resolved location.
type LocationStore struct {
	resolver GeoResolver
	timeout  time.Duration
	logger   *slog.Logger
	hub      *observer.Hub[model.Location]

	mu    sync.Mutex
	state model.Location
	// resets grows on Reset; resolutions started earlier are not applied.
	resets uint64
}

// NewLocationStore creates a store with nothing resolved or selected.
// A non-positive timeout leaves the caller's context deadline in charge.
func NewLocationStore(resolver GeoResolver, timeout time.Duration, logger *slog.Logger) *LocationStore {
	return &LocationStore{
		resolver: resolver,
		timeout:  timeout,
		logger:   logger,
		hub:      observer.NewHub[model.Location](),
	}
}

// ResolveCurrentLocation asks the resolver for the current city.
// On failure the previous value is kept and a *LocationError is returned.
func (l *LocationStore) ResolveCurrentLocation(ctx context.Context) (model.ResolvedLocation, error) {
	l.mu.Lock()
	started := l.resets
	l.mu.Unlock()

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	resolved, err := l.resolver.Resolve(ctx)
	if err == nil && strings.TrimSpace(resolved.City) == "" {
		err = &domainErrors.LocationError{Kind: domainErrors.LocationUnavailable, Err: errors.New("resolver returned no city")}
	}
	if err != nil {
		err = asLocationError(ctx, err)
		l.logger.Warn("location resolution failed", slog.String("error", err.Error()))
		return model.ResolvedLocation{}, err
	}
	resolved.City = strings.TrimSpace(resolved.City)
	if resolved.ResolvedAt.IsZero() {
		resolved.ResolvedAt = time.Now()
	}

	l.mu.Lock()
	if l.resets != started {
		l.mu.Unlock()
		return resolved, domainErrors.NewStateError("location.resolve", domainErrors.ErrSuperseded)
	}
	l.state.Current = &resolved
	l.publishLocked()

	l.logger.Info("location resolved", slog.String("city", resolved.City))
	return resolved, nil
}

// SelectCity sets an explicit city that overrides the resolved one.
func (l *LocationStore) SelectCity(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return domainErrors.NewStateError("location.select_city", domainErrors.ErrInvalidCity)
	}

	l.mu.Lock()
	if l.state.SelectedCity == city {
		l.mu.Unlock()
		return nil
	}
	l.state.SelectedCity = city
	l.publishLocked()
	return nil
}

// ClearSelection falls back to the resolved location.
func (l *LocationStore) ClearSelection() {
	l.mu.Lock()
	if l.state.SelectedCity == "" {
		l.mu.Unlock()
		return
	}
	l.state.SelectedCity = ""
	l.publishLocked()
}

// Reset forgets both the selection and the resolved location.
func (l *LocationStore) Reset() {
	l.mu.Lock()
	l.resets++
	if l.state.Equal(model.Location{}) {
		l.mu.Unlock()
		return
	}
	l.state = model.Location{}
	l.publishLocked()
}

// Display returns the city screens should show.
func (l *LocationStore) Display() model.DisplayLocation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Display()
}

// Snapshot returns a copy of the location state.
func (l *LocationStore) Snapshot() model.Location {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

// Subscribe registers fn for every location change.
func (l *LocationStore) Subscribe(fn func(model.Location)) (unsubscribe func()) {
	return l.hub.Subscribe(fn)
}

func (l *LocationStore) publishLocked() {
	l.hub.Enqueue(l.state.Clone())
	l.mu.Unlock()
	l.hub.Drain()
}

func asLocationError(ctx context.Context, err error) error {
	var locErr *domainErrors.LocationError
	if errors.As(err, &locErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &domainErrors.LocationError{Kind: domainErrors.LocationTimeout, Err: err}
	}
	return &domainErrors.LocationError{Kind: domainErrors.LocationUnavailable, Err: err}
}
