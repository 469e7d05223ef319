package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/domain/repository"
	"github.com/polkiloo/marketclient/internal/pkg/vault"
)

// CredentialKeeper persists the backend token of one device, sealed at rest.
type CredentialKeeper struct {
	repo     repository.CredentialRepository
	sealer   vault.Sealer
	deviceID string
	logger   *slog.Logger
}

// NewCredentialKeeper binds repo and sealer to deviceID.
func NewCredentialKeeper(repo repository.CredentialRepository, sealer vault.Sealer, deviceID string, logger *slog.Logger) *CredentialKeeper {
	return &CredentialKeeper{repo: repo, sealer: sealer, deviceID: deviceID, logger: logger}
}

// Load returns the stored credential or ErrNotFound. Unreadable records are erased.
func (k *CredentialKeeper) Load(ctx context.Context) (*model.StoredCredential, error) {
	sealed, err := k.repo.Load(ctx, k.deviceID)
	if err != nil {
		return nil, err
	}

	plain, err := k.sealer.Open(sealed)
	if err == nil {
		var cred model.StoredCredential
		if err = json.Unmarshal(plain, &cred); err == nil && cred.Token != "" {
			return &cred, nil
		}
		if err == nil {
			err = errors.New("stored credential has no token")
		}
	}

	k.logger.Warn("discarding unreadable credential", slog.String("device", k.deviceID), slog.String("error", err.Error()))
	if delErr := k.repo.Delete(ctx, k.deviceID); delErr != nil {
		k.logger.Error("delete unreadable credential", slog.String("error", delErr.Error()))
	}
	return nil, domainErrors.ErrNotFound
}

// Save seals and stores cred.
func (k *CredentialKeeper) Save(ctx context.Context, cred model.StoredCredential) error {
	plain, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	sealed, err := k.sealer.Seal(plain)
	if err != nil {
		return fmt.Errorf("seal credential: %w", err)
	}
	return k.repo.Save(ctx, k.deviceID, sealed)
}

// Forget removes the stored credential.
func (k *CredentialKeeper) Forget(ctx context.Context) error {
	return k.repo.Delete(ctx, k.deviceID)
}
