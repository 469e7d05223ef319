package dto

import (
	"time"

	"github.com/polkiloo/marketclient/internal/domain/model"
)

// SelectCityRequest sets the explicit city.
type SelectCityRequest struct {
	City string `json:"city"`
}

// ResolvedLocationResponse describes the last resolved position.
type ResolvedLocationResponse struct {
	City       string    `json:"city"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// DisplayResponse is the city screens should show.
type DisplayResponse struct {
	City   string `json:"city,omitempty"`
	Source string `json:"source"`
}

// LocationResponse describes the location state.
type LocationResponse struct {
	SelectedCity string                    `json:"selected_city,omitempty"`
	Current      *ResolvedLocationResponse `json:"current,omitempty"`
	Display      DisplayResponse           `json:"display"`
}

// NewLocationResponse maps a location snapshot.
func NewLocationResponse(loc model.Location) LocationResponse {
	display := loc.Display()
	resp := LocationResponse{
		SelectedCity: loc.SelectedCity,
		Display:      DisplayResponse{City: display.City, Source: string(display.Source)},
	}
	if loc.Current != nil {
		resp.Current = &ResolvedLocationResponse{
			City:       loc.Current.City,
			Latitude:   loc.Current.Coordinates.Latitude,
			Longitude:  loc.Current.Coordinates.Longitude,
			ResolvedAt: loc.Current.ResolvedAt,
		}
	}
	return resp
}
