package telemetry

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/marketclient/internal/config"
)

// Module installs tracing and flushes it on stop.
var Module = fx.Options(
	fx.Provide(newProvider),
	fx.Invoke(registerLifecycle),
)

type providerParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
}

func newProvider(p providerParams) (*Provider, error) {
	return New(p.Ctx, Options{Exporter: p.Config.TracingExporter, Endpoint: p.Config.OTLPEndpoint})
}

func registerLifecycle(lc fx.Lifecycle, provider *Provider, logger *slog.Logger, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if provider.Enabled() {
				logger.Info("tracing enabled", slog.String("exporter", cfg.TracingExporter))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})
}
