package navigation

import "github.com/polkiloo/marketclient/internal/domain/model"

// Decision is the outcome of a screen-group guard check.
type Decision int

const (
	// DecisionPending means the session is still loading; render a neutral placeholder.
	DecisionPending Decision = iota
	DecisionAllow
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect"
	default:
		return "pending"
	}
}

// Guard re-checks on mount that a role-scoped screen group matches the session.
type Guard struct {
	Expected model.Role
}

// Check returns the decision and the target the screen group should show.
// A mismatched group is never allowed; the redirect target follows Route.
func (g Guard) Check(s model.Session) (Decision, model.Target) {
	switch {
	case s.Status == model.StatusLoading:
		return DecisionPending, model.TargetSplash
	case s.Status == model.StatusAuthenticatedReady && s.Role() == g.Expected:
		return DecisionAllow, HomeFor(g.Expected)
	default:
		return DecisionRedirect, Route(s)
	}
}
