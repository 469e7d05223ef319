package app

import (
	"context"
	"sync"

	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/pkg/observer"
)

// NavigationRelay is the navigation surface exposed over the local bridge.
// It remembers the active target and fans transitions out to listeners.
type NavigationRelay struct {
	hub *observer.Hub[model.Target]

	mu      sync.Mutex
	current model.Target
}

// NewNavigationRelay creates a relay showing SPLASH.
func NewNavigationRelay() *NavigationRelay {
	return &NavigationRelay{
		hub:     observer.NewHub[model.Target](),
		current: model.TargetSplash,
	}
}

// Navigate switches the active screen group.
func (r *NavigationRelay) Navigate(ctx context.Context, target model.Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.current = target
	r.hub.Enqueue(target)
	r.mu.Unlock()
	r.hub.Drain()
	return nil
}

// Current returns the active screen group.
func (r *NavigationRelay) Current() model.Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Subscribe registers fn for every later transition.
func (r *NavigationRelay) Subscribe(fn func(model.Target)) (unsubscribe func()) {
	return r.hub.Subscribe(fn)
}
