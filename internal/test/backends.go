package test

import (
	"context"
	"sync"

	"github.com/polkiloo/marketclient/internal/domain/model"
)

// DefaultUser is the identity returned by stubs when no override is set.
var DefaultUser = model.User{ID: "u-1", Role: model.RoleUser}

// CredentialBackendStub implements store.CredentialBackend via function overrides.
// Every successful result carries a Commit that counts adoptions.
type CredentialBackendStub struct {
	CheckFn        func(context.Context) (*model.Session, error)
	AuthenticateFn func(context.Context, model.Credentials) (model.Session, error)
	RegisterFn     func(context.Context, model.Credentials) (model.Session, error)
	SubmitFn       func(context.Context, model.ProfileData) (model.Session, error)
	// CommitErr is returned by every Commit.
	CommitErr error

	mu       sync.Mutex
	Profiles []model.ProfileData
	adopted  []string
}

// CheckPersistedSession returns no session by default.
func (s *CredentialBackendStub) CheckPersistedSession(ctx context.Context) (*model.Session, model.Commit, error) {
	if s.CheckFn == nil {
		return nil, nil, nil
	}
	session, err := s.CheckFn(ctx)
	if err != nil || session == nil {
		return session, nil, err
	}
	return session, s.commit("check"), nil
}

// Authenticate returns an incomplete customer session by default.
func (s *CredentialBackendStub) Authenticate(ctx context.Context, creds model.Credentials) (model.Session, model.Commit, error) {
	session := model.AuthenticatedSession(DefaultUser)
	var err error
	if s.AuthenticateFn != nil {
		session, err = s.AuthenticateFn(ctx, creds)
	}
	if err != nil {
		return session, nil, err
	}
	return session, s.commit("authenticate"), nil
}

// Register returns an incomplete customer session by default.
func (s *CredentialBackendStub) Register(ctx context.Context, creds model.Credentials) (model.Session, model.Commit, error) {
	session := model.AuthenticatedSession(DefaultUser)
	var err error
	if s.RegisterFn != nil {
		session, err = s.RegisterFn(ctx, creds)
	}
	if err != nil {
		return session, nil, err
	}
	return session, s.commit("register"), nil
}

func (s *CredentialBackendStub) commit(op string) model.Commit {
	return func(context.Context) error {
		s.mu.Lock()
		s.adopted = append(s.adopted, op)
		s.mu.Unlock()
		return s.CommitErr
	}
}

// Adopted returns the operations whose Commit ran, in order.
func (s *CredentialBackendStub) Adopted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.adopted...)
}

// SubmitProfile records the data and returns a completed DefaultUser session.
func (s *CredentialBackendStub) SubmitProfile(ctx context.Context, data model.ProfileData) (model.Session, error) {
	s.mu.Lock()
	s.Profiles = append(s.Profiles, data)
	s.mu.Unlock()
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, data)
	}
	u := DefaultUser
	u.ProfileComplete = true
	u.Name = data.Name
	u.Phone = data.Phone
	return model.AuthenticatedSession(u), nil
}

// SubmittedProfiles returns a copy of recorded submissions.
func (s *CredentialBackendStub) SubmittedProfiles() []model.ProfileData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ProfileData(nil), s.Profiles...)
}

// Gate blocks a stubbed call until Release is invoked.
type Gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// NewGate creates a closed gate.
func NewGate() *Gate {
	return &Gate{entered: make(chan struct{}), release: make(chan struct{})}
}

// Wait marks the call as entered and blocks until released or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entered is closed once a call reached Wait.
func (g *Gate) Entered() <-chan struct{} { return g.entered }

// Release unblocks the waiting call.
func (g *Gate) Release() { close(g.release) }

// GeoResolverStub implements store.GeoResolver.
type GeoResolverStub struct {
	ResolveFn func(context.Context) (model.ResolvedLocation, error)
	Location  model.ResolvedLocation
	Err       error

	mu    sync.Mutex
	calls int
}

// Resolve returns the configured location or error.
func (s *GeoResolverStub) Resolve(ctx context.Context) (model.ResolvedLocation, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx)
	}
	if s.Err != nil {
		return model.ResolvedLocation{}, s.Err
	}
	return s.Location, nil
}

// Calls returns how many times Resolve ran.
func (s *GeoResolverStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// NavigatorStub records navigation targets.
type NavigatorStub struct {
	Err error

	mu      sync.Mutex
	targets []model.Target
}

// Navigate records target and returns Err.
func (n *NavigatorStub) Navigate(_ context.Context, target model.Target) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
	return n.Err
}

// Targets returns the recorded targets in order.
func (n *NavigatorStub) Targets() []model.Target {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Target(nil), n.targets...)
}

// ForgetterStub counts credential erasures.
type ForgetterStub struct {
	Err error

	mu    sync.Mutex
	calls int
}

// Forget records the call and returns Err.
func (f *ForgetterStub) Forget(context.Context) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.Err
}

// Calls returns the number of Forget invocations.
func (f *ForgetterStub) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
