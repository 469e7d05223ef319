package geo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/marketclient/internal/config"
	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
	testhelpers "github.com/polkiloo/marketclient/internal/test"
)

func newServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewHTTPClient(srv.URL, testhelpers.DiscardLogger())
	require.NoError(t, err)
	return client
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	_, err := NewHTTPClient("://bad", testhelpers.DiscardLogger())
	assert.Error(t, err)
	_, err = NewHTTPClient("relative/path", testhelpers.DiscardLogger())
	assert.Error(t, err)
}

func TestResolveSuccess(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, currentPath, r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode(response{City: "Pune", Latitude: 18.52, Longitude: 73.85})
	})

	loc, err := client.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pune", loc.City)
	assert.InDelta(t, 18.52, loc.Coordinates.Latitude, 1e-9)
	assert.False(t, loc.ResolvedAt.IsZero())
}

func TestResolveErrorKinds(t *testing.T) {
	cases := []struct {
		status int
		want   domainErrors.LocationErrorKind
	}{
		{http.StatusForbidden, domainErrors.LocationPermissionDenied},
		{http.StatusGatewayTimeout, domainErrors.LocationTimeout},
		{http.StatusServiceUnavailable, domainErrors.LocationUnavailable},
		{http.StatusNotFound, domainErrors.LocationUnavailable},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			client := newServer(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(tc.status) })
			_, err := client.Resolve(context.Background())
			var locErr *domainErrors.LocationError
			require.True(t, errors.As(err, &locErr))
			assert.Equal(t, tc.want, locErr.Kind)
		})
	}
}

func TestResolveMalformedBody(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("{not json")) })
	_, err := client.Resolve(context.Background())
	var locErr *domainErrors.LocationError
	require.True(t, errors.As(err, &locErr))
	assert.Equal(t, domainErrors.LocationUnavailable, locErr.Kind)
}

func TestResolveHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Resolve(ctx)
	var locErr *domainErrors.LocationError
	require.True(t, errors.As(err, &locErr))
	assert.Equal(t, domainErrors.LocationTimeout, locErr.Kind)
}

func TestNewClientUsesConfig(t *testing.T) {
	client, err := newClient(clientParams{Config: &config.Config{GeoURL: "http://geo.local"}, Logger: testhelpers.DiscardLogger()})
	require.NoError(t, err)
	assert.Equal(t, "geo.local", client.baseURL.Host)
}
