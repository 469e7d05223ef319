package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/marketclient/internal/adapter/backend"
	"github.com/polkiloo/marketclient/internal/adapter/geo"
	"github.com/polkiloo/marketclient/internal/app"
	"github.com/polkiloo/marketclient/internal/config"
	"github.com/polkiloo/marketclient/internal/logger"
	"github.com/polkiloo/marketclient/internal/pkg/vault"
	"github.com/polkiloo/marketclient/internal/server/http/handlers"
	"github.com/polkiloo/marketclient/internal/server/http/router"
	"github.com/polkiloo/marketclient/internal/storage"
	"github.com/polkiloo/marketclient/internal/store"
	"github.com/polkiloo/marketclient/internal/telemetry"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		telemetry.Module,
		vault.Module,
		storage.Module,
		backend.Module,
		geo.Module,
		store.Module,
		fx.Provide(
			func(c *backend.HTTPClient) store.CredentialBackend { return c },
			func(c *backend.HTTPClient) app.CredentialForgetter { return c },
			func(c *geo.HTTPClient) store.GeoResolver { return c },
			func(f *app.ClientFacade) handlers.ClientFacade { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
