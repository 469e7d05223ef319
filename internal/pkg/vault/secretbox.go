package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

var ErrSealInvalid = errors.New("sealed payload is invalid or expired")

const (
	sealVersion = 1
	nonceSize   = 24
	keySize     = 32
	expirySize  = 8
	hkdfInfo    = "marketclient credential vault v1"
)

// SecretboxSealer implements Sealer with NaCl secretbox and an HKDF-SHA256 derived key.
type SecretboxSealer struct {
	key [keySize]byte
	ttl time.Duration
	now func() time.Time
}

// NewSecretboxSealer derives the sealing key from secret.
func NewSecretboxSealer(secret string, opts Options) (*SecretboxSealer, error) {
	if secret == "" {
		return nil, errors.New("vault secret must not be empty")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	s := &SecretboxSealer{ttl: ttl, now: time.Now}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("derive vault key: %w", err)
	}
	return s, nil
}

// Seal encrypts plaintext with an embedded expiry.
func (s *SecretboxSealer) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	message := make([]byte, expirySize+len(plaintext))
	binary.BigEndian.PutUint64(message, uint64(s.now().Add(s.ttl).Unix()))
	copy(message[expirySize:], plaintext)

	out := make([]byte, 1, 1+nonceSize+secretbox.Overhead+len(message))
	out[0] = sealVersion
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, message, &nonce, &s.key), nil
}

// Open authenticates and decrypts sealed. Tampered, foreign or expired payloads yield ErrSealInvalid.
func (s *SecretboxSealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < 1+nonceSize+secretbox.Overhead+expirySize || sealed[0] != sealVersion {
		return nil, ErrSealInvalid
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[1:1+nonceSize])

	message, ok := secretbox.Open(nil, sealed[1+nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrSealInvalid
	}

	expires := time.Unix(int64(binary.BigEndian.Uint64(message[:expirySize])), 0)
	if !s.now().Before(expires) {
		return nil, ErrSealInvalid
	}
	return message[expirySize:], nil
}

func (s *SecretboxSealer) Name() string {
	return "secretbox"
}
