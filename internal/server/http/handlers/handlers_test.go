package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/marketclient/internal/app"
	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/server/http/dto"
	"github.com/polkiloo/marketclient/internal/store"
	testhelpers "github.com/polkiloo/marketclient/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	facade  *app.ClientFacade
	backend *testhelpers.CredentialBackendStub
	geo     *testhelpers.GeoResolverStub
	relay   *app.NavigationRelay
}

func newFixture() fixture {
	logger := testhelpers.DiscardLogger()
	backend := &testhelpers.CredentialBackendStub{}
	geo := &testhelpers.GeoResolverStub{Location: model.ResolvedLocation{City: "Pune"}}
	relay := app.NewNavigationRelay()
	facade := app.NewClientFacade(
		store.NewSessionStore(backend, logger),
		store.NewCartStore(logger),
		store.NewLocationStore(geo, 50*time.Millisecond, logger),
		&testhelpers.ForgetterStub{},
		relay,
		logger,
	)
	return fixture{facade: facade, backend: backend, geo: geo, relay: relay}
}

func performRequest(t *testing.T, method, route, target string, handler gin.HandlerFunc, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, handler)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", resp.Body.String(), err)
	}
	return out
}

func signIn(t *testing.T, f fixture) {
	t.Helper()
	if _, err := f.facade.SignIn(context.Background(), model.Credentials{Login: "asha", Password: "secret"}); err != nil {
		t.Fatalf("sign in: %v", err)
	}
}

func TestSessionHandlerGet(t *testing.T) {
	h := NewSessionHandler(newFixture().facade)
	resp := performRequest(t, http.MethodGet, "/session", "/session", h.Get, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	body := decode[dto.SessionResponse](t, resp)
	if body.Status != "Loading" || body.User != nil {
		t.Fatalf("unexpected session %+v", body)
	}
}

func TestSessionHandlerSignIn(t *testing.T) {
	f := newFixture()
	h := NewSessionHandler(f.facade)
	body := mustJSON(t, dto.CredentialsRequest{Login: "asha", Password: "secret"})

	resp := performRequest(t, http.MethodPost, "/sign-in", "/sign-in", h.SignIn, body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	session := decode[dto.SessionResponse](t, resp)
	if session.Status != "AuthenticatedIncomplete" || session.User == nil || session.User.Role != "User" {
		t.Fatalf("unexpected session %+v", session)
	}

	resp = performRequest(t, http.MethodPost, "/sign-in", "/sign-in", h.SignIn, body)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409 when already signed in, got %d", resp.Code)
	}
}

func TestSessionHandlerSignInErrors(t *testing.T) {
	cases := []struct {
		name     string
		body     []byte
		backend  error
		wantCode int
		wantKind string
	}{
		{"malformed body", []byte("{"), nil, http.StatusBadRequest, "request"},
		{"empty password", []byte(`{"login":"asha"}`), nil, http.StatusUnauthorized, "invalid_credentials"},
		{"wrong password", []byte(`{"login":"asha","password":"x"}`), domainErrors.NewAuthError(domainErrors.AuthInvalidCredentials, nil), http.StatusUnauthorized, "invalid_credentials"},
		{"backend down", []byte(`{"login":"asha","password":"x"}`), errors.New("connection refused"), http.StatusBadGateway, "network"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			if tc.backend != nil {
				f.backend.AuthenticateFn = func(context.Context, model.Credentials) (model.Session, error) {
					return model.Session{}, tc.backend
				}
			}
			resp := performRequest(t, http.MethodPost, "/sign-in", "/sign-in", NewSessionHandler(f.facade).SignIn, tc.body)
			if resp.Code != tc.wantCode {
				t.Fatalf("expected status %d, got %d", tc.wantCode, resp.Code)
			}
			if got := decode[dto.ErrorResponse](t, resp).Kind; got != tc.wantKind {
				t.Fatalf("expected kind %q, got %q", tc.wantKind, got)
			}
		})
	}
}

func TestSessionHandlerSignUp(t *testing.T) {
	f := newFixture()
	h := NewSessionHandler(f.facade)
	body := mustJSON(t, dto.CredentialsRequest{Login: "asha", Password: "secret"})

	resp := performRequest(t, http.MethodPost, "/sign-up", "/sign-up", h.SignUp, body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}

	f = newFixture()
	f.backend.RegisterFn = func(context.Context, model.Credentials) (model.Session, error) {
		return model.Session{}, domainErrors.NewAuthError(domainErrors.AuthRejected, errors.New("login taken"))
	}
	resp = performRequest(t, http.MethodPost, "/sign-up", "/sign-up", NewSessionHandler(f.facade).SignUp, body)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for taken login, got %d", resp.Code)
	}
}

func TestSessionHandlerCompleteProfile(t *testing.T) {
	f := newFixture()
	h := NewSessionHandler(f.facade)

	valid := mustJSON(t, dto.ProfileRequest{Name: "Asha", Phone: "+91 98765 43210"})
	resp := performRequest(t, http.MethodPost, "/profile", "/profile", h.CompleteProfile, valid)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409 before sign in, got %d", resp.Code)
	}

	signIn(t, f)

	resp = performRequest(t, http.MethodPost, "/profile", "/profile", h.CompleteProfile, []byte(`{}`))
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", resp.Code)
	}
	fields := decode[dto.ErrorResponse](t, resp).Fields
	if fields["name"] == "" || fields["phone"] == "" {
		t.Fatalf("expected name and phone problems, got %v", fields)
	}

	resp = performRequest(t, http.MethodPost, "/profile", "/profile", h.CompleteProfile, valid)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if session := decode[dto.SessionResponse](t, resp); session.Status != "AuthenticatedReady" || !session.User.ProfileComplete {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestSessionHandlerSignOut(t *testing.T) {
	f := newFixture()
	signIn(t, f)
	if _, err := f.facade.AddToCart("tea", 100, 1, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	resp := performRequest(t, http.MethodPost, "/sign-out", "/sign-out", NewSessionHandler(f.facade).SignOut, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if session := decode[dto.SessionResponse](t, resp); session.Status != "Unauthenticated" {
		t.Fatalf("unexpected session %+v", session)
	}
	if !f.facade.Cart().Empty() {
		t.Fatalf("expected cart cleared on sign out")
	}
}

func TestCartHandlerFlow(t *testing.T) {
	f := newFixture()
	h := NewCartHandler(f.facade)

	resp := performRequest(t, http.MethodPost, "/items", "/items", h.Add, mustJSON(t, dto.AddItemRequest{ProductID: "tea", UnitPrice: 120}))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	cart := decode[dto.CartResponse](t, resp)
	if cart.Count != 1 || cart.Total != 120 {
		t.Fatalf("expected default quantity one, got %+v", cart)
	}

	qty := 2
	resp = performRequest(t, http.MethodPost, "/items", "/items", h.Add, mustJSON(t, dto.AddItemRequest{ProductID: "tea", UnitPrice: 100, Quantity: &qty}))
	cart = decode[dto.CartResponse](t, resp)
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 3 || cart.Lines[0].Subtotal != 300 {
		t.Fatalf("expected merged line with refreshed price, got %+v", cart)
	}

	resp = performRequest(t, http.MethodPut, "/items/:productID", "/items/tea", h.Update, mustJSON(t, dto.UpdateQuantityRequest{Quantity: 5}))
	if resp.Code != http.StatusOK || decode[dto.CartResponse](t, resp).Count != 5 {
		t.Fatalf("expected quantity 5, got %d %s", resp.Code, resp.Body.String())
	}

	resp = performRequest(t, http.MethodDelete, "/items/:productID", "/items/tea", h.Remove, nil)
	if resp.Code != http.StatusOK || decode[dto.CartResponse](t, resp).Count != 0 {
		t.Fatalf("expected empty cart, got %d %s", resp.Code, resp.Body.String())
	}
}

func TestCartHandlerErrors(t *testing.T) {
	f := newFixture()
	h := NewCartHandler(f.facade)
	zero := 0

	resp := performRequest(t, http.MethodPost, "/items", "/items", h.Add, mustJSON(t, dto.AddItemRequest{ProductID: "tea", UnitPrice: 1, Quantity: &zero}))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for zero quantity, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPut, "/items/:productID", "/items/ghost", h.Update, mustJSON(t, dto.UpdateQuantityRequest{Quantity: 1}))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown line, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPut, "/items/:productID", "/items/tea", h.Update, []byte("nope"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for malformed body, got %d", resp.Code)
	}

	three := 3
	resp = performRequest(t, http.MethodPost, "/items", "/items", h.Add, mustJSON(t, dto.AddItemRequest{ProductID: "gold", UnitPrice: math.MaxInt64 / 2, Quantity: &three}))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for overflowing total, got %d", resp.Code)
	}
	if cart := f.facade.Cart(); !cart.Empty() {
		t.Fatalf("overflowing line must not be added, got %+v", cart)
	}
}

func TestCartHandlerClearAndCheckout(t *testing.T) {
	f := newFixture()
	h := NewCartHandler(f.facade)
	for _, id := range []string{"tea", "rice"} {
		if _, err := f.facade.AddToCart(id, 10, 1, nil); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	resp := performRequest(t, http.MethodGet, "/cart", "/cart", h.Get, nil)
	if cart := decode[dto.CartResponse](t, resp); cart.Count != 2 || cart.Lines[0].ProductID != "tea" {
		t.Fatalf("unexpected cart %+v", cart)
	}

	resp = performRequest(t, http.MethodPost, "/checkout-complete", "/checkout-complete", h.CheckoutCompleted, nil)
	if cart := decode[dto.CartResponse](t, resp); cart.Count != 0 || len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart after checkout, got %+v", cart)
	}

	resp = performRequest(t, http.MethodDelete, "/cart", "/cart", h.Clear, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected clear of empty cart to succeed, got %d", resp.Code)
	}
}

func TestLocationHandlerResolve(t *testing.T) {
	f := newFixture()
	h := NewLocationHandler(f.facade)

	resp := performRequest(t, http.MethodPost, "/resolve", "/resolve", h.Resolve, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	loc := decode[dto.LocationResponse](t, resp)
	if loc.Current == nil || loc.Display.City != "Pune" || loc.Display.Source != "current" {
		t.Fatalf("unexpected location %+v", loc)
	}
}

func TestLocationHandlerResolveErrors(t *testing.T) {
	cases := []struct {
		name     string
		resolve  func(context.Context) (model.ResolvedLocation, error)
		wantCode int
	}{
		{"permission", func(context.Context) (model.ResolvedLocation, error) {
			return model.ResolvedLocation{}, &domainErrors.LocationError{Kind: domainErrors.LocationPermissionDenied}
		}, http.StatusForbidden},
		{"timeout", func(ctx context.Context) (model.ResolvedLocation, error) {
			<-ctx.Done()
			return model.ResolvedLocation{}, ctx.Err()
		}, http.StatusGatewayTimeout},
		{"unavailable", func(context.Context) (model.ResolvedLocation, error) {
			return model.ResolvedLocation{}, errors.New("no provider")
		}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.geo.ResolveFn = tc.resolve
			resp := performRequest(t, http.MethodPost, "/resolve", "/resolve", NewLocationHandler(f.facade).Resolve, nil)
			if resp.Code != tc.wantCode {
				t.Fatalf("expected status %d, got %d", tc.wantCode, resp.Code)
			}
		})
	}
}

func TestLocationHandlerCity(t *testing.T) {
	f := newFixture()
	h := NewLocationHandler(f.facade)

	resp := performRequest(t, http.MethodPut, "/city", "/city", h.SelectCity, mustJSON(t, dto.SelectCityRequest{City: " "}))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for blank city, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPut, "/city", "/city", h.SelectCity, mustJSON(t, dto.SelectCityRequest{City: "Mumbai"}))
	if loc := decode[dto.LocationResponse](t, resp); loc.Display.City != "Mumbai" || loc.Display.Source != "selected" {
		t.Fatalf("unexpected location %+v", loc)
	}

	resp = performRequest(t, http.MethodDelete, "/city", "/city", h.ClearCity, nil)
	if loc := decode[dto.LocationResponse](t, resp); loc.SelectedCity != "" || loc.Display.Source != "unset" {
		t.Fatalf("unexpected location %+v", loc)
	}

	resp = performRequest(t, http.MethodGet, "/location", "/location", h.Get, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestNavigationHandlerCurrentAndGuard(t *testing.T) {
	f := newFixture()
	h := NewNavigationHandler(f.facade)

	resp := performRequest(t, http.MethodGet, "/navigation", "/navigation", h.Current, nil)
	if got := decode[dto.NavigationResponse](t, resp).Target; got != "SPLASH" {
		t.Fatalf("expected SPLASH, got %s", got)
	}

	resp = performRequest(t, http.MethodGet, "/guard/:role", "/guard/merchant", h.Guard, nil)
	if guard := decode[dto.GuardResponse](t, resp); guard.Decision != "pending" || guard.Target != "SPLASH" {
		t.Fatalf("unexpected guard %+v", guard)
	}

	signIn(t, f)
	resp = performRequest(t, http.MethodGet, "/guard/:role", "/guard/merchant", h.Guard, nil)
	if guard := decode[dto.GuardResponse](t, resp); guard.Decision != "redirect" || guard.Target != "PROFILE_COMPLETION" {
		t.Fatalf("unexpected guard %+v", guard)
	}

	resp = performRequest(t, http.MethodGet, "/guard/:role", "/guard/admin", h.Guard, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown role, got %d", resp.Code)
	}
}

func TestClassifyErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"malformed session", domainErrors.NewAuthError(domainErrors.AuthMalformedSession, nil), http.StatusBadGateway},
		{"superseded", domainErrors.NewStateError("op", domainErrors.ErrSuperseded), http.StatusConflict},
		{"already initialized", domainErrors.NewStateError("op", domainErrors.ErrAlreadyInitialized), http.StatusConflict},
		{"invalid price", domainErrors.NewStateError("op", domainErrors.ErrInvalidPrice), http.StatusBadRequest},
		{"cart overflow", domainErrors.NewStateError("op", domainErrors.ErrCartOverflow), http.StatusBadRequest},
		{"validation", (&domainErrors.ValidationError{}).Add("name", "required"), http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := classify(tc.err)
			if status != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, status)
			}
			if body.Error == "" {
				t.Fatalf("expected error message")
			}
		})
	}
}
