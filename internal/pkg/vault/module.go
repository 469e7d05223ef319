package vault

import (
	"go.uber.org/fx"

	"github.com/polkiloo/marketclient/internal/config"
)

// Module provides the credential sealer via fx.
var Module = fx.Provide(newSealer)

type sealerParams struct {
	fx.In

	Config *config.Config
}

func newSealer(p sealerParams) (Sealer, error) {
	return NewSecretboxSealer(p.Config.VaultSecret, Options{TTL: p.Config.CredentialTTL})
}
