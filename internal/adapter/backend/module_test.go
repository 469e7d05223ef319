package backend

import (
	"testing"
	"time"

	"github.com/polkiloo/marketclient/internal/config"
	"github.com/polkiloo/marketclient/internal/pkg/vault"
	"github.com/polkiloo/marketclient/internal/storage/memory"
	testhelpers "github.com/polkiloo/marketclient/internal/test"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{BackendURL: "http://example.com", RequestTimeout: 3 * time.Second, DeviceID: "dev"}
	sealer, err := vault.NewSecretboxSealer("secret", vault.Options{})
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	keeper := newKeeper(keeperParams{Repository: memory.New(), Sealer: sealer, Config: cfg, Logger: testhelpers.DiscardLogger()})
	if keeper.deviceID != "dev" {
		t.Fatalf("unexpected device id %q", keeper.deviceID)
	}

	client, err := newClient(clientParams{Keeper: keeper, Config: cfg, Logger: testhelpers.DiscardLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.httpClient.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout %v", client.httpClient.Timeout)
	}
}
