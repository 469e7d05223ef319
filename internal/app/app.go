package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/marketclient/internal/config"
	"github.com/polkiloo/marketclient/internal/navigation"
	"github.com/polkiloo/marketclient/internal/store"
	"github.com/polkiloo/marketclient/internal/worker"
)

// Module wires the facade, navigation, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewClientFacade,
		NewNavigationRelay,
		newBridge,
		newHTTPServer,
		newLocationRefresher,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.BridgeAddress,
		Handler: p.Router,
	}
}

type bridgeParams struct {
	fx.In

	Sessions *store.SessionStore
	Relay    *NavigationRelay
	Logger   *slog.Logger
}

func newBridge(p bridgeParams) *navigation.Bridge {
	return navigation.NewBridge(p.Sessions, p.Relay, p.Logger)
}

type workerParams struct {
	fx.In

	Locations *store.LocationStore
	Config    *config.Config
	Logger    *slog.Logger
}

func newLocationRefresher(p workerParams) *worker.LocationRefresher {
	return worker.NewLocationRefresher(p.Locations, p.Config.LocationRefreshInterval, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Facade     *ClientFacade
	Bridge     *navigation.Bridge
	Server     *http.Server
	Worker     *worker.LocationRefresher
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	var (
		wg     sync.WaitGroup
		cancel context.CancelFunc = func() {}
	)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting marketclient", slog.String("addr", p.Server.Addr))
			p.Bridge.Start(ctx)

			var bgCtx context.Context
			bgCtx, cancel = context.WithCancel(context.WithoutCancel(ctx))
			wg.Add(1)
			go func() {
				defer wg.Done()
				bootstrap(bgCtx, p.Facade, p.Logger)
			}()

			p.Worker.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("bridge server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			stop := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, stop = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer stop()

			err := p.Server.Shutdown(shutdownCtx)
			p.Worker.Stop()
			cancel()
			wg.Wait()
			p.Bridge.Stop()

			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("marketclient stopped")
			return nil
		},
	})
}

// bootstrap restores the persisted session and performs the first location lookup.
func bootstrap(ctx context.Context, facade *ClientFacade, logger *slog.Logger) {
	if _, err := facade.Initialize(ctx); err != nil {
		logger.Warn("session bootstrap finished with error", slog.String("error", err.Error()))
	}
	if _, err := facade.ResolveLocation(ctx); err != nil {
		logger.Warn("initial location lookup failed", slog.String("error", err.Error()))
	}
}
