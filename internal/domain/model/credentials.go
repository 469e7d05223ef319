package model

import (
	"context"
	"time"
)

// Credentials is the login/password pair sent to the credential backend.
type Credentials struct {
	Login    string
	Password string
}

// ProfileData carries the fields collected by the profile completion screen.
type ProfileData struct {
	Name          string
	Phone         string
	City          string
	StoreName     string
	VehicleNumber string
}

// StoredCredential is the device-local record of a backend session token.
type StoredCredential struct {
	Token   string    `json:"token"`
	UserID  string    `json:"user_id"`
	SavedAt time.Time `json:"saved_at"`
}

// Commit makes the token behind a backend result current and durable.
// It runs only once the session store has adopted that result.
type Commit func(ctx context.Context) error

// Run calls c when set.
func (c Commit) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c(ctx)
}
