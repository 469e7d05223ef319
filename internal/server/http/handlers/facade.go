package handlers

import (
	"context"

	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/navigation"
)

// SessionFacade describes the session operations exposed to screens.
type SessionFacade interface {
	Session() model.Session
	SignIn(ctx context.Context, creds model.Credentials) (model.Session, error)
	SignUp(ctx context.Context, creds model.Credentials) (model.Session, error)
	CompleteProfile(ctx context.Context, data model.ProfileData) (model.Session, error)
	SignOut(ctx context.Context) model.Session
}

// CartFacade encapsulates cart operations.
type CartFacade interface {
	Cart() model.Cart
	AddToCart(productID string, unitPrice int64, quantity int, metadata model.Metadata) (model.Cart, error)
	UpdateCartQuantity(productID string, quantity int) (model.Cart, error)
	RemoveFromCart(productID string) model.Cart
	ClearCart() model.Cart
	CheckoutCompleted() model.Cart
}

// LocationFacade provides location operations.
type LocationFacade interface {
	Location() model.Location
	ResolveLocation(ctx context.Context) (model.Location, error)
	SelectCity(city string) (model.Location, error)
	ClearCity() model.Location
}

// NavigationFacade exposes the active screen group and the guard check.
type NavigationFacade interface {
	Navigation() model.Target
	SubscribeNavigation(fn func(model.Target)) (unsubscribe func())
	CheckGuard(role model.Role) (navigation.Decision, model.Target)
}

// ClientFacade aggregates the full set of operations used across handlers.
type ClientFacade interface {
	SessionFacade
	CartFacade
	LocationFacade
	NavigationFacade
}
