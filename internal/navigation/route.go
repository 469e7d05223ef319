// Package navigation derives the active screen group from the session and
// hands it to the navigation surface.
package navigation

import "github.com/polkiloo/marketclient/internal/domain/model"

// Route returns the single screen group the session is entitled to.
// It is defined for every status and role combination.
func Route(s model.Session) model.Target {
	switch s.Status {
	case model.StatusUnauthenticated:
		return model.TargetAuthEntry
	case model.StatusAuthenticatedIncomplete:
		return model.TargetProfileCompletion
	case model.StatusAuthenticatedReady:
		return HomeFor(s.Role())
	default:
		return model.TargetSplash
	}
}

// HomeFor returns the home screen group of a fully onboarded role.
func HomeFor(r model.Role) model.Target {
	switch r {
	case model.RoleMerchant:
		return model.TargetMerchantHome
	case model.RoleDelivery:
		return model.TargetDeliveryHome
	default:
		return model.TargetCustomerHome
	}
}
