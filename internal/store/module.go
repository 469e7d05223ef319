package store

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/marketclient/internal/config"
)

// Module provides the client state stores to the fx container.
var Module = fx.Provide(
	NewSessionStore,
	NewCartStore,
	newLocationStore,
)

type locationParams struct {
	fx.In

	Resolver GeoResolver
	Config   *config.Config
	Logger   *slog.Logger
}

func newLocationStore(p locationParams) *LocationStore {
	return NewLocationStore(p.Resolver, p.Config.LocationTimeout, p.Logger)
}
