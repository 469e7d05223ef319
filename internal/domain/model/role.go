package model

import (
	"fmt"
	"strings"
)

// Role is the account type that decides which navigation surface a user gets.
type Role int

const (
	RoleUser Role = iota
	RoleMerchant
	RoleDelivery
)

// Roles lists every known role in declaration order.
var Roles = []Role{RoleUser, RoleMerchant, RoleDelivery}

func (r Role) String() string {
	switch r {
	case RoleMerchant:
		return "Merchant"
	case RoleDelivery:
		return "Delivery"
	default:
		return "User"
	}
}

// ParseRole converts an external role representation into Role.
// Matching is case-insensitive; an empty value means RoleUser.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "user", "customer":
		return RoleUser, nil
	case "merchant", "seller", "store":
		return RoleMerchant, nil
	case "delivery", "courier", "driver":
		return RoleDelivery, nil
	default:
		return RoleUser, fmt.Errorf("unknown role %q", raw)
	}
}

// MarshalText renders the canonical role name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText accepts any representation understood by ParseRole.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
