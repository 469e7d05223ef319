package app

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/navigation"
	"github.com/polkiloo/marketclient/internal/store"
)

// CredentialForgetter drops the device credential on sign-out.
type CredentialForgetter interface {
	Forget(ctx context.Context) error
}

// ClientFacade aggregates the stores behind one API and enforces cross-store contracts.
type ClientFacade struct {
	sessions    *store.SessionStore
	cart        *store.CartStore
	locations   *store.LocationStore
	credentials CredentialForgetter
	relay       *NavigationRelay
	logger      *slog.Logger

	transitions   metric.Int64Counter
	cartMutations metric.Int64Counter
}

func NewClientFacade(
	sessions *store.SessionStore,
	cart *store.CartStore,
	locations *store.LocationStore,
	credentials CredentialForgetter,
	relay *NavigationRelay,
	logger *slog.Logger,
) *ClientFacade {
	meter := otel.Meter("github.com/polkiloo/marketclient/internal/app")
	transitions, err := meter.Int64Counter("marketclient.session.transitions",
		metric.WithDescription("Session status transitions"))
	if err != nil {
		logger.Warn("session transition counter unavailable", slog.String("error", err.Error()))
	}
	cartMutations, err := meter.Int64Counter("marketclient.cart.mutations",
		metric.WithDescription("Applied cart mutations"))
	if err != nil {
		logger.Warn("cart mutation counter unavailable", slog.String("error", err.Error()))
	}

	f := &ClientFacade{
		sessions:      sessions,
		cart:          cart,
		locations:     locations,
		credentials:   credentials,
		relay:         relay,
		logger:        logger,
		transitions:   transitions,
		cartMutations: cartMutations,
	}
	sessions.Subscribe(f.recordTransition)
	return f
}

func (f *ClientFacade) Initialize(ctx context.Context) (model.Session, error) {
	return f.sessions.Initialize(ctx)
}

func (f *ClientFacade) Session() model.Session {
	return f.sessions.Snapshot()
}

func (f *ClientFacade) SignIn(ctx context.Context, creds model.Credentials) (model.Session, error) {
	return f.sessions.SignIn(ctx, creds)
}

func (f *ClientFacade) SignUp(ctx context.Context, creds model.Credentials) (model.Session, error) {
	return f.sessions.SignUp(ctx, creds)
}

func (f *ClientFacade) CompleteProfile(ctx context.Context, data model.ProfileData) (model.Session, error) {
	return f.sessions.CompleteProfile(ctx, data)
}

// SignOut ends the session and clears every identity-scoped state.
// A failure to erase the stored credential is logged; the session is signed out regardless.
func (f *ClientFacade) SignOut(ctx context.Context) model.Session {
	session := f.sessions.SignOut()
	f.cart.Clear()
	f.locations.Reset()
	if err := f.credentials.Forget(ctx); err != nil {
		f.logger.Error("forget credential failed", slog.String("error", err.Error()))
	}
	return session
}

func (f *ClientFacade) Navigation() model.Target {
	return f.relay.Current()
}

func (f *ClientFacade) SubscribeNavigation(fn func(model.Target)) (unsubscribe func()) {
	return f.relay.Subscribe(fn)
}

// CheckGuard re-checks that the screen group of role may be shown now.
func (f *ClientFacade) CheckGuard(role model.Role) (navigation.Decision, model.Target) {
	return navigation.Guard{Expected: role}.Check(f.sessions.Snapshot())
}

func (f *ClientFacade) Cart() model.Cart {
	return f.cart.Snapshot()
}

func (f *ClientFacade) AddToCart(productID string, unitPrice int64, quantity int, metadata model.Metadata) (model.Cart, error) {
	if err := f.cart.AddItem(productID, unitPrice, quantity, metadata); err != nil {
		return f.cart.Snapshot(), err
	}
	f.recordCartMutation("add")
	return f.cart.Snapshot(), nil
}

func (f *ClientFacade) UpdateCartQuantity(productID string, quantity int) (model.Cart, error) {
	changed, err := f.cart.UpdateQuantity(productID, quantity)
	if err != nil {
		return f.cart.Snapshot(), err
	}
	if changed {
		f.recordCartMutation("update")
	}
	return f.cart.Snapshot(), nil
}

func (f *ClientFacade) RemoveFromCart(productID string) model.Cart {
	if f.cart.RemoveItem(productID) {
		f.recordCartMutation("remove")
	}
	return f.cart.Snapshot()
}

func (f *ClientFacade) ClearCart() model.Cart {
	if f.cart.Clear() {
		f.recordCartMutation("clear")
	}
	return f.cart.Snapshot()
}

// CheckoutCompleted empties the cart once the order has been placed.
func (f *ClientFacade) CheckoutCompleted() model.Cart {
	total, count := f.cart.Total(), f.cart.Count()
	if f.cart.Clear() {
		f.recordCartMutation("checkout")
	}
	f.logger.Info("checkout completed", slog.Int("items", count), slog.Int64("total", total))
	return f.cart.Snapshot()
}

func (f *ClientFacade) Location() model.Location {
	return f.locations.Snapshot()
}

func (f *ClientFacade) ResolveLocation(ctx context.Context) (model.Location, error) {
	_, err := f.locations.ResolveCurrentLocation(ctx)
	return f.locations.Snapshot(), err
}

func (f *ClientFacade) SelectCity(city string) (model.Location, error) {
	err := f.locations.SelectCity(city)
	return f.locations.Snapshot(), err
}

func (f *ClientFacade) ClearCity() model.Location {
	f.locations.ClearSelection()
	return f.locations.Snapshot()
}

func (f *ClientFacade) recordTransition(s model.Session) {
	if f.transitions == nil {
		return
	}
	f.transitions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("status", s.Status.String()),
		attribute.String("role", s.Role().String()),
	))
}

func (f *ClientFacade) recordCartMutation(op string) {
	if f.cartMutations == nil {
		return
	}
	f.cartMutations.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", op)))
}
