package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/pkg/observer"
)

// CredentialBackend is the external authority for identities.
// Every returned Session must satisfy model.Session.Validate.
type CredentialBackend interface {
	// CheckPersistedSession returns nil when the device holds no usable session.
	// The Commit returned with a session runs only if the store adopts it.
	CheckPersistedSession(ctx context.Context) (*model.Session, model.Commit, error)
	Authenticate(ctx context.Context, creds model.Credentials) (model.Session, model.Commit, error)
	Register(ctx context.Context, creds model.Credentials) (model.Session, model.Commit, error)
	SubmitProfile(ctx context.Context, data model.ProfileData) (model.Session, error)
}

// SessionStore owns the current session and notifies subscribers on every transition.
type SessionStore struct {
	backend CredentialBackend
	logger  *slog.Logger
	hub     *observer.Hub[model.Session]

	mu          sync.Mutex
	state       model.Session
	initialized bool
	// signOuts grows on every SignOut; pending results started under an older value are dropped.
	signOuts uint64
	// actions grows on every explicit auth call; a pending Initialize started under an older value is dropped.
	actions uint64
}

// NewSessionStore creates a store in the Loading state.
func NewSessionStore(backend CredentialBackend, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		backend: backend,
		logger:  logger,
		hub:     observer.NewHub[model.Session](),
		state:   model.LoadingSession(),
	}
}

// Snapshot returns a copy of the current session.
func (s *SessionStore) Snapshot() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn for every future transition.
func (s *SessionStore) Subscribe(fn func(model.Session)) (unsubscribe func()) {
	return s.hub.Subscribe(fn)
}

// Initialize restores a persisted session, if any. Only the first call queries the backend.
func (s *SessionStore) Initialize(ctx context.Context) (model.Session, error) {
	const op = "session.initialize"

	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return model.Session{}, domainErrors.NewStateError(op, domainErrors.ErrAlreadyInitialized)
	}
	s.initialized = true
	if s.state.Status != model.StatusLoading {
		// an explicit sign-in or sign-out already decided the session
		current := s.state.Clone()
		s.mu.Unlock()
		return current, domainErrors.NewStateError(op, domainErrors.ErrSuperseded)
	}
	started := s.actions
	s.mu.Unlock()

	persisted, adopt, err := s.backend.CheckPersistedSession(ctx)
	if err == nil && persisted != nil {
		if verr := persisted.Validate(); verr != nil {
			err = domainErrors.NewAuthError(domainErrors.AuthMalformedSession, verr)
		}
	}

	next := model.UnauthenticatedSession()
	if err == nil && persisted != nil {
		next = persisted.Clone()
	}

	s.mu.Lock()
	if s.actions != started {
		// an explicit action won; only leave Loading if nobody else did
		if s.state.Status == model.StatusLoading {
			s.applyLocked(model.UnauthenticatedSession())
		}
		current := s.state.Clone()
		s.mu.Unlock()
		s.hub.Drain()
		s.logger.Info("persisted session discarded", slog.String("status", current.Status.String()))
		return current, domainErrors.NewStateError(op, domainErrors.ErrSuperseded)
	}
	if err == nil && persisted != nil {
		s.runCommitLocked(ctx, op, adopt)
	}
	s.applyLocked(next)
	current := s.state.Clone()
	s.mu.Unlock()
	s.hub.Drain()

	if err != nil {
		s.logger.Warn("persisted session check failed", slog.String("error", err.Error()))
		return current, err
	}
	s.logger.Info("session initialized", slog.String("status", current.Status.String()))
	return current, nil
}

// SignIn authenticates with the backend. On failure the session is unchanged.
func (s *SessionStore) SignIn(ctx context.Context, creds model.Credentials) (model.Session, error) {
	return s.authenticate(ctx, "session.sign_in", creds, s.backend.Authenticate)
}

// SignUp registers a new account and signs it in.
func (s *SessionStore) SignUp(ctx context.Context, creds model.Credentials) (model.Session, error) {
	return s.authenticate(ctx, "session.sign_up", creds, s.backend.Register)
}

type authCall func(ctx context.Context, creds model.Credentials) (model.Session, model.Commit, error)

func (s *SessionStore) authenticate(ctx context.Context, op string, creds model.Credentials, call authCall) (model.Session, error) {
	creds.Login = strings.TrimSpace(creds.Login)
	if creds.Login == "" || creds.Password == "" {
		return s.Snapshot(), domainErrors.NewAuthError(domainErrors.AuthInvalidCredentials, nil)
	}

	s.mu.Lock()
	if s.state.Status.Authenticated() {
		current := s.state.Clone()
		s.mu.Unlock()
		return current, domainErrors.NewStateError(op, domainErrors.ErrAlreadyAuthenticated)
	}
	s.actions++
	started := s.signOuts
	s.mu.Unlock()

	session, adopt, err := call(ctx, creds)
	if err == nil {
		if verr := session.Validate(); verr != nil {
			err = domainErrors.NewAuthError(domainErrors.AuthMalformedSession, verr)
		} else if !session.Status.Authenticated() {
			err = domainErrors.NewAuthError(domainErrors.AuthMalformedSession, errors.New("backend returned no identity"))
		}
	}
	if err != nil {
		s.settleLoading()
		s.logger.Warn("authentication failed", slog.String("op", op), slog.String("error", err.Error()))
		return s.Snapshot(), asAuthError(err)
	}

	return s.commit(ctx, op, started, session, adopt)
}

// CompleteProfile submits the profile and moves the session to AuthenticatedReady.
func (s *SessionStore) CompleteProfile(ctx context.Context, data model.ProfileData) (model.Session, error) {
	const op = "session.complete_profile"

	s.mu.Lock()
	if !s.state.Status.Authenticated() {
		current := s.state.Clone()
		s.mu.Unlock()
		return current, domainErrors.NewStateError(op, domainErrors.ErrNotAuthenticated)
	}
	role := s.state.User.Role
	userID := s.state.User.ID
	// captured with the identity so a sign-out after this point discards the result
	s.actions++
	started := s.signOuts
	s.mu.Unlock()

	data = normalizeProfile(data)
	if err := ValidateProfile(role, data); err != nil {
		return s.Snapshot(), err
	}

	session, err := s.backend.SubmitProfile(ctx, data)
	if err == nil {
		if verr := session.Validate(); verr != nil {
			err = domainErrors.NewAuthError(domainErrors.AuthMalformedSession, verr)
		} else if session.User == nil || session.User.ID != userID || !session.User.ProfileComplete {
			err = domainErrors.NewAuthError(domainErrors.AuthMalformedSession, errors.New("backend did not confirm profile completion"))
		}
	}
	if err != nil {
		s.logger.Warn("profile completion failed", slog.String("error", err.Error()))
		return s.Snapshot(), err
	}

	return s.commit(ctx, op, started, session, nil)
}

// SignOut clears identity immediately. Pending auth calls resolving later are discarded.
func (s *SessionStore) SignOut() model.Session {
	s.mu.Lock()
	s.signOuts++
	s.actions++
	s.applyLocked(model.UnauthenticatedSession())
	current := s.state.Clone()
	s.mu.Unlock()
	s.hub.Drain()

	s.logger.Info("signed out")
	return current
}

func (s *SessionStore) commit(ctx context.Context, op string, started uint64, session model.Session, adopt model.Commit) (model.Session, error) {
	s.mu.Lock()
	if s.signOuts != started {
		current := s.state.Clone()
		s.mu.Unlock()
		s.logger.Info("auth result discarded after sign-out", slog.String("op", op))
		return current, domainErrors.NewStateError(op, domainErrors.ErrSuperseded)
	}
	s.runCommitLocked(ctx, op, adopt)
	s.applyLocked(session.Clone())
	current := s.state.Clone()
	s.mu.Unlock()
	s.hub.Drain()

	s.logger.Info("session updated",
		slog.String("op", op),
		slog.String("status", current.Status.String()),
		slog.String("role", current.Role().String()),
	)
	return current, nil
}

// runCommitLocked persists an adopted backend result. Holding s.mu orders it
// before any SignOut, so a later credential erase always wins. Caller holds s.mu.
func (s *SessionStore) runCommitLocked(ctx context.Context, op string, adopt model.Commit) {
	if err := adopt.Run(context.WithoutCancel(ctx)); err != nil {
		// the session is still usable for this run
		s.logger.Error("credential commit failed", slog.String("op", op), slog.String("error", err.Error()))
	}
}

// settleLoading leaves Loading for Unauthenticated once no initialize can resolve it.
func (s *SessionStore) settleLoading() {
	s.mu.Lock()
	if s.state.Status != model.StatusLoading || !s.initialized {
		s.mu.Unlock()
		return
	}
	s.applyLocked(model.UnauthenticatedSession())
	s.mu.Unlock()
	s.hub.Drain()
}

// applyLocked installs next and queues a notification when it differs. Caller holds s.mu.
func (s *SessionStore) applyLocked(next model.Session) {
	if s.state.Equal(next) {
		return
	}
	s.state = next
	s.hub.Enqueue(next.Clone())
}

func asAuthError(err error) error {
	var authErr *domainErrors.AuthError
	if errors.As(err, &authErr) {
		return err
	}
	var stateErr *domainErrors.StateError
	if errors.As(err, &stateErr) {
		return err
	}
	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		return err
	}
	if errors.Is(err, domainErrors.ErrInvalidCredentials) {
		return domainErrors.NewAuthError(domainErrors.AuthInvalidCredentials, err)
	}
	return domainErrors.NewAuthError(domainErrors.AuthNetwork, err)
}

func normalizeProfile(data model.ProfileData) model.ProfileData {
	data.Name = strings.TrimSpace(data.Name)
	data.Phone = strings.TrimSpace(data.Phone)
	data.City = strings.TrimSpace(data.City)
	data.StoreName = strings.TrimSpace(data.StoreName)
	data.VehicleNumber = strings.TrimSpace(data.VehicleNumber)
	return data
}

// ValidateProfile checks the fields required for role.
func ValidateProfile(role model.Role, data model.ProfileData) error {
	var v domainErrors.ValidationError
	if data.Name == "" {
		v.Add("name", "required")
	}
	if data.Phone == "" {
		v.Add("phone", "required")
	} else if !validPhone(data.Phone) {
		v.Add("phone", "must contain 10 to 15 digits")
	}
	switch role {
	case model.RoleMerchant:
		if data.StoreName == "" {
			v.Add("store_name", "required")
		}
	case model.RoleDelivery:
		if data.VehicleNumber == "" {
			v.Add("vehicle_number", "required")
		}
	}
	return v.OrNil()
}

func validPhone(phone string) bool {
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0, r == ' ', r == '-':
		default:
			return false
		}
	}
	return digits >= 10 && digits <= 15
}
