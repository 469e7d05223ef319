package backend

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/marketclient/internal/config"
	"github.com/polkiloo/marketclient/internal/domain/repository"
	"github.com/polkiloo/marketclient/internal/pkg/vault"
)

// Module exposes the credential backend client to the fx graph.
var Module = fx.Provide(newKeeper, newClient)

type keeperParams struct {
	fx.In

	Repository repository.CredentialRepository
	Sealer     vault.Sealer
	Config     *config.Config
	Logger     *slog.Logger
}

func newKeeper(p keeperParams) *CredentialKeeper {
	return NewCredentialKeeper(p.Repository, p.Sealer, p.Config.DeviceID, p.Logger)
}

type clientParams struct {
	fx.In

	Keeper *CredentialKeeper
	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*HTTPClient, error) {
	return NewHTTPClient(p.Config.BackendURL, p.Config.RequestTimeout, p.Keeper, p.Logger)
}
