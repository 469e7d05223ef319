package repository

import "context"

// CredentialRepository persists the sealed credential of a device.
// Load returns errors.ErrNotFound when nothing is stored for deviceID.
type CredentialRepository interface {
	Load(ctx context.Context, deviceID string) ([]byte, error)
	Save(ctx context.Context, deviceID string, sealed []byte) error
	Delete(ctx context.Context, deviceID string) error
}
