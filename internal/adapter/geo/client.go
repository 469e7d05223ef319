// Package geo resolves the device location through the geolocation service.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
	"github.com/polkiloo/marketclient/internal/domain/model"
)

const currentPath = "/api/location/current"

// HTTPClient implements store.GeoResolver.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type response struct {
	City      string   `json:"city"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// NewHTTPClient creates a traced geolocation client. Deadlines come from the caller's context.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse geo url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("geo url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// Resolve asks the service for the device's current city.
func (c *HTTPClient) Resolve(ctx context.Context) (model.ResolvedLocation, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, currentPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return model.ResolvedLocation{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return model.ResolvedLocation{}, &domainErrors.LocationError{Kind: domainErrors.LocationTimeout, Err: err}
		}
		return model.ResolvedLocation{}, &domainErrors.LocationError{Kind: domainErrors.LocationUnavailable, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var data response
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return model.ResolvedLocation{}, &domainErrors.LocationError{Kind: domainErrors.LocationUnavailable, Err: fmt.Errorf("decode response: %w", err)}
		}
		return model.ResolvedLocation{
			City:        data.City,
			Coordinates: model.Coordinates{Latitude: data.Latitude, Longitude: data.Longitude},
			ResolvedAt:  time.Now(),
		}, nil
	case http.StatusForbidden, http.StatusUnauthorized:
		return model.ResolvedLocation{}, &domainErrors.LocationError{Kind: domainErrors.LocationPermissionDenied}
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return model.ResolvedLocation{}, &domainErrors.LocationError{Kind: domainErrors.LocationTimeout}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("geo request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return model.ResolvedLocation{}, &domainErrors.LocationError{Kind: domainErrors.LocationUnavailable, Err: fmt.Errorf("geo error: %s", resp.Status)}
	}
}
