// Package vault seals small secrets for storage at rest.
package vault

import "time"

// Sealer encrypts and authenticates payloads.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
	Name() string
}

// Options tune a Sealer.
type Options struct {
	TTL time.Duration
}
