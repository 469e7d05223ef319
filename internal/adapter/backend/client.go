// Package backend talks to the external credential backend over HTTP.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
	"github.com/polkiloo/marketclient/internal/domain/model"
)

const (
	sessionPath  = "/api/session"
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
	profilePath  = "/api/profile"
)

// HTTPClient implements store.CredentialBackend via the backend HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	keeper     *CredentialKeeper
	logger     *slog.Logger

	mu    sync.Mutex
	token string
}

type userPayload struct {
	ID              string `json:"id"`
	Role            string `json:"role"`
	ProfileComplete bool   `json:"profile_complete"`
	Name            string `json:"name,omitempty"`
	Phone           string `json:"phone,omitempty"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type sessionResponse struct {
	User userPayload `json:"user"`
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	City          string `json:"city,omitempty"`
	StoreName     string `json:"store_name,omitempty"`
	VehicleNumber string `json:"vehicle_number,omitempty"`
}

type validationResponse struct {
	Fields map[string]string `json:"fields"`
}

// NewHTTPClient creates a traced backend client.
func NewHTTPClient(baseURL string, timeout time.Duration, keeper *CredentialKeeper, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("backend url must be absolute")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: parsed,
		keeper:  keeper,
		logger:  logger,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// CheckPersistedSession validates the stored token with the backend.
// A missing, expired or revoked token yields no session and no error.
// The returned Commit installs the token for later profile calls.
func (c *HTTPClient) CheckPersistedSession(ctx context.Context) (*model.Session, model.Commit, error) {
	cred, err := c.keeper.Load(ctx)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("load credential: %w", err)
	}

	resp, err := c.do(ctx, http.MethodGet, sessionPath, cred.Token, nil)
	if err != nil {
		return nil, nil, domainErrors.NewAuthError(domainErrors.AuthNetwork, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var data sessionResponse
		if err := decode(resp.Body, &data); err != nil {
			return nil, nil, domainErrors.NewAuthError(domainErrors.AuthMalformedSession, err)
		}
		session, err := toSession(data.User)
		if err != nil {
			return nil, nil, err
		}
		commit := func(context.Context) error {
			c.setToken(cred.Token)
			return nil
		}
		return &session, commit, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.Info("stored session rejected by backend", slog.Int("status", resp.StatusCode))
		if err := c.keeper.Forget(ctx); err != nil {
			c.logger.Warn("forget rejected credential", slog.String("error", err.Error()))
		}
		return nil, nil, nil
	default:
		return nil, nil, c.unexpected(resp, "session check")
	}
}

// Authenticate exchanges credentials for a session token.
// Nothing is stored until the returned Commit runs.
func (c *HTTPClient) Authenticate(ctx context.Context, creds model.Credentials) (model.Session, model.Commit, error) {
	return c.exchange(ctx, loginPath, creds)
}

// Register creates an account and signs it in.
func (c *HTTPClient) Register(ctx context.Context, creds model.Credentials) (model.Session, model.Commit, error) {
	return c.exchange(ctx, registerPath, creds)
}

func (c *HTTPClient) exchange(ctx context.Context, endpoint string, creds model.Credentials) (model.Session, model.Commit, error) {
	resp, err := c.do(ctx, http.MethodPost, endpoint, "", credentialsRequest{Login: creds.Login, Password: creds.Password})
	if err != nil {
		return model.Session{}, nil, domainErrors.NewAuthError(domainErrors.AuthNetwork, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var data authResponse
		if err := decode(resp.Body, &data); err != nil {
			return model.Session{}, nil, domainErrors.NewAuthError(domainErrors.AuthMalformedSession, err)
		}
		if data.Token == "" {
			return model.Session{}, nil, domainErrors.NewAuthError(domainErrors.AuthMalformedSession, errors.New("response carries no token"))
		}
		session, err := toSession(data.User)
		if err != nil {
			return model.Session{}, nil, err
		}
		cred := model.StoredCredential{Token: data.Token, UserID: session.User.ID, SavedAt: time.Now().UTC()}
		return session, c.adopt(cred), nil
	case http.StatusUnauthorized:
		return model.Session{}, nil, domainErrors.NewAuthError(domainErrors.AuthInvalidCredentials, nil)
	case http.StatusConflict:
		return model.Session{}, nil, domainErrors.NewAuthError(domainErrors.AuthRejected, errors.New("login already registered"))
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return model.Session{}, nil, validationFrom(resp.Body)
	default:
		return model.Session{}, nil, c.unexpected(resp, "auth exchange")
	}
}

// adopt installs cred in memory, then persists it.
// A failed save leaves the token usable for this run only.
func (c *HTTPClient) adopt(cred model.StoredCredential) model.Commit {
	return func(ctx context.Context) error {
		c.setToken(cred.Token)
		if err := c.keeper.Save(ctx, cred); err != nil {
			return fmt.Errorf("persist credential: %w", err)
		}
		return nil
	}
}

// SubmitProfile sends the completed profile for the signed-in user.
func (c *HTTPClient) SubmitProfile(ctx context.Context, data model.ProfileData) (model.Session, error) {
	token := c.currentToken()
	if token == "" {
		return model.Session{}, domainErrors.NewAuthError(domainErrors.AuthRejected, errors.New("no session token"))
	}

	body := profileRequest{
		Name:          data.Name,
		Phone:         data.Phone,
		City:          data.City,
		StoreName:     data.StoreName,
		VehicleNumber: data.VehicleNumber,
	}
	resp, err := c.do(ctx, http.MethodPost, profilePath, token, body)
	if err != nil {
		return model.Session{}, domainErrors.NewAuthError(domainErrors.AuthNetwork, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload sessionResponse
		if err := decode(resp.Body, &payload); err != nil {
			return model.Session{}, domainErrors.NewAuthError(domainErrors.AuthMalformedSession, err)
		}
		return toSession(payload.User)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return model.Session{}, validationFrom(resp.Body)
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.Session{}, domainErrors.NewAuthError(domainErrors.AuthRejected, fmt.Errorf("profile rejected: %s", resp.Status))
	default:
		return model.Session{}, c.unexpected(resp, "profile submit")
	}
}

// Forget drops the in-memory token and the persisted credential.
func (c *HTTPClient) Forget(ctx context.Context) error {
	c.setToken("")
	if err := c.keeper.Forget(ctx); err != nil {
		return fmt.Errorf("forget credential: %w", err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint, token string, body any) (*http.Response, error) {
	target := *c.baseURL
	target.Path = path.Join(target.Path, endpoint)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

func (c *HTTPClient) unexpected(resp *http.Response, op string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	c.logger.Error("backend request failed", slog.String("op", op), slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
	return domainErrors.NewAuthError(domainErrors.AuthNetwork, fmt.Errorf("backend error: %s", resp.Status))
}

func (c *HTTPClient) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func decode(r io.Reader, dst any) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func validationFrom(r io.Reader) error {
	var payload validationResponse
	v := &domainErrors.ValidationError{}
	if err := json.NewDecoder(r).Decode(&payload); err == nil {
		for field, problem := range payload.Fields {
			v.Add(strings.TrimSpace(field), problem)
		}
	}
	if len(v.Fields) == 0 {
		v.Add("request", "rejected by backend")
	}
	return v
}

// toSession normalizes the backend identity into a Session.
func toSession(u userPayload) (model.Session, error) {
	role, err := model.ParseRole(u.Role)
	if err != nil {
		return model.Session{}, domainErrors.NewAuthError(domainErrors.AuthMalformedSession, err)
	}
	session := model.AuthenticatedSession(model.User{
		ID:              strings.TrimSpace(u.ID),
		Role:            role,
		ProfileComplete: u.ProfileComplete,
		Name:            u.Name,
		Phone:           u.Phone,
	})
	if err := session.Validate(); err != nil {
		return model.Session{}, domainErrors.NewAuthError(domainErrors.AuthMalformedSession, err)
	}
	return session, nil
}
