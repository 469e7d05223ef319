package model

import "fmt"

// Status describes the authentication state of the app instance.
type Status int

const (
	StatusLoading Status = iota
	StatusUnauthenticated
	StatusAuthenticatedIncomplete
	StatusAuthenticatedReady
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusLoading,
	StatusUnauthenticated,
	StatusAuthenticatedIncomplete,
	StatusAuthenticatedReady,
}

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "Loading"
	case StatusUnauthenticated:
		return "Unauthenticated"
	case StatusAuthenticatedIncomplete:
		return "AuthenticatedIncomplete"
	case StatusAuthenticatedReady:
		return "AuthenticatedReady"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Authenticated reports whether the status carries a user.
func (s Status) Authenticated() bool {
	return s == StatusAuthenticatedIncomplete || s == StatusAuthenticatedReady
}

// Session is a consistent snapshot of status and identity.
// User is nil iff Status is Loading or Unauthenticated.
type Session struct {
	Status Status
	User   *User
}

// LoadingSession is the state at process start.
func LoadingSession() Session {
	return Session{Status: StatusLoading}
}

// UnauthenticatedSession is the state with no identity.
func UnauthenticatedSession() Session {
	return Session{Status: StatusUnauthenticated}
}

// AuthenticatedSession derives the status from the profile completeness flag.
func AuthenticatedSession(u User) Session {
	status := StatusAuthenticatedReady
	if !u.ProfileComplete {
		status = StatusAuthenticatedIncomplete
	}
	return Session{Status: status, User: &u}
}

// Validate reports whether the session honours the status/user invariant.
func (s Session) Validate() error {
	switch s.Status {
	case StatusLoading, StatusUnauthenticated:
		if s.User != nil {
			return fmt.Errorf("session %s must not carry a user", s.Status)
		}
	case StatusAuthenticatedIncomplete, StatusAuthenticatedReady:
		if s.User == nil {
			return fmt.Errorf("session %s requires a user", s.Status)
		}
		if s.User.ID == "" {
			return fmt.Errorf("session user id is empty")
		}
		if s.User.ProfileComplete != (s.Status == StatusAuthenticatedReady) {
			return fmt.Errorf("session %s disagrees with profile completeness", s.Status)
		}
	default:
		return fmt.Errorf("unknown session status %d", int(s.Status))
	}
	return nil
}

// Clone returns a copy that does not share the user record.
func (s Session) Clone() Session {
	if s.User == nil {
		return s
	}
	u := *s.User
	return Session{Status: s.Status, User: &u}
}

// Equal compares two sessions by value.
func (s Session) Equal(other Session) bool {
	if s.Status != other.Status {
		return false
	}
	if s.User == nil || other.User == nil {
		return s.User == nil && other.User == nil
	}
	return *s.User == *other.User
}

// Role returns the user's role, or RoleUser when there is no user.
func (s Session) Role() Role {
	if s.User == nil {
		return RoleUser
	}
	return s.User.Role
}
