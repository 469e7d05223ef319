package model

// User is the identity attached to an authenticated session.
type User struct {
	ID              string
	Role            Role
	ProfileComplete bool
	Name            string
	Phone           string
}
