package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/marketclient/internal/config"
	"github.com/polkiloo/marketclient/internal/storage/memory"
	redisstore "github.com/polkiloo/marketclient/internal/storage/redis"
	testhelpers "github.com/polkiloo/marketclient/internal/test"
)

func TestOpenSelectsBackendByScheme(t *testing.T) {
	ctx := context.Background()
	log := testhelpers.DiscardLogger()

	repo, closeFn, err := Open(ctx, "memory://", time.Hour, log)
	require.NoError(t, err)
	assert.IsType(t, &memory.Storage{}, repo)
	closeFn()

	repo, closeFn, err = Open(ctx, "", time.Hour, log)
	require.NoError(t, err)
	assert.IsType(t, &memory.Storage{}, repo)
	closeFn()

	mr := miniredis.RunT(t)
	repo, closeFn, err = Open(ctx, "redis://"+mr.Addr(), time.Hour, log)
	require.NoError(t, err)
	assert.IsType(t, &redisstore.Storage{}, repo)
	require.NoError(t, repo.Save(ctx, "dev", []byte("x")))
	assert.True(t, mr.Exists("marketclient:credential:dev"))
	closeFn()
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, _, err := Open(context.Background(), "mongodb://localhost", time.Hour, testhelpers.DiscardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported credential store scheme")
}

func TestNewRepositoryRegistersClose(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	repo, err := newRepository(repositoryParams{
		Ctx:       context.Background(),
		Lifecycle: lc,
		Config:    &config.Config{CredentialStore: "memory://", CredentialTTL: time.Hour},
		Logger:    testhelpers.DiscardLogger(),
	})
	require.NoError(t, err)
	require.NotNil(t, repo)

	lc.RequireStart()
	lc.RequireStop()
}
