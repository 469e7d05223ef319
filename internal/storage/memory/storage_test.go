package memory

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
)

func TestStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.Load(ctx, "dev"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	payload := []byte("sealed")
	if err := s.Save(ctx, "dev", payload); err != nil {
		t.Fatalf("save: %v", err)
	}
	payload[0] = 'X'

	got, err := s.Load(ctx, "dev")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != "sealed" {
		t.Fatalf("stored payload aliased caller slice: %q", got)
	}

	if err := s.Delete(ctx, "dev"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "dev"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := s.Load(ctx, "dev"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
