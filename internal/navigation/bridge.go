package navigation

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/pkg/observer"
)

// Navigator performs the actual screen transition.
type Navigator interface {
	Navigate(ctx context.Context, target model.Target) error
}

// SessionSource is the read side of the session store.
type SessionSource interface {
	Snapshot() model.Session
	Subscribe(fn func(model.Session)) (unsubscribe func())
}

// Bridge navigates whenever the routed target of the session changes.
// Navigator calls run outside the bridge lock, one at a time and in
// decision order, so a navigator may call back into the bridge or the store.
type Bridge struct {
	source    SessionSource
	navigator Navigator
	logger    *slog.Logger
	counter   metric.Int64Counter
	moves     *observer.Hub[move]

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	current     model.Target
	// seen is set once a subscribed transition arrived; later ones supersede the start snapshot.
	seen bool
}

type move struct {
	ctx    context.Context
	target model.Target
	status model.Status
}

// NewBridge creates a stopped bridge positioned on SPLASH.
func NewBridge(source SessionSource, navigator Navigator, logger *slog.Logger) *Bridge {
	counter, err := otel.Meter("github.com/polkiloo/marketclient/internal/navigation").Int64Counter(
		"marketclient.navigations",
		metric.WithDescription("Screen group transitions issued to the navigator"),
	)
	if err != nil {
		logger.Warn("navigation counter unavailable", slog.String("error", err.Error()))
	}
	b := &Bridge{
		source:    source,
		navigator: navigator,
		logger:    logger,
		counter:   counter,
		moves:     observer.NewHub[move](),
		current:   model.TargetSplash,
	}
	b.moves.Subscribe(b.navigate)
	return b
}

// Start subscribes to session transitions and applies the current session.
func (b *Bridge) Start(ctx context.Context) {
	b.mu.Lock()
	if b.unsubscribe != nil {
		b.mu.Unlock()
		return
	}
	b.ctx, b.cancel = context.WithCancel(context.WithoutCancel(ctx))
	b.seen = false
	b.mu.Unlock()

	unsubscribe := b.source.Subscribe(func(s model.Session) { b.apply(s, true) })

	b.mu.Lock()
	b.unsubscribe = unsubscribe
	b.mu.Unlock()

	b.apply(b.source.Snapshot(), false)
}

// Stop detaches the bridge from the session store.
func (b *Bridge) Stop() {
	b.mu.Lock()
	unsubscribe, cancel := b.unsubscribe, b.cancel
	b.unsubscribe, b.cancel = nil, nil
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
}

// Current returns the last target the bridge settled on.
func (b *Bridge) Current() model.Target {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Bridge) apply(s model.Session, transition bool) {
	target := Route(s)

	b.mu.Lock()
	if b.ctx == nil {
		b.mu.Unlock()
		return
	}
	if transition {
		b.seen = true
	} else if b.seen {
		// a delivered transition is at least as new as this snapshot
		b.mu.Unlock()
		return
	}
	if target == b.current {
		b.mu.Unlock()
		return
	}
	b.current = target
	// SPLASH is the initial surface and is never navigated to.
	if target == model.TargetSplash {
		b.mu.Unlock()
		return
	}
	b.moves.Enqueue(move{ctx: b.ctx, target: target, status: s.Status})
	b.mu.Unlock()
	b.moves.Drain()
}

func (b *Bridge) navigate(m move) {
	if err := b.navigator.Navigate(m.ctx, m.target); err != nil {
		b.logger.Error("navigation failed", slog.String("target", string(m.target)), slog.String("error", err.Error()))
		return
	}
	if b.counter != nil {
		b.counter.Add(m.ctx, 1, metric.WithAttributes(attribute.String("target", string(m.target))))
	}
	b.logger.Info("navigated", slog.String("target", string(m.target)), slog.String("status", m.status.String()))
}
