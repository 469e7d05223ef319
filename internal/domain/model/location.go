package model

import "time"

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// ResolvedLocation is the result of a geolocation lookup.
type ResolvedLocation struct {
	City        string
	Coordinates Coordinates
	ResolvedAt  time.Time
}

// Location holds the explicit city choice and the last resolved position.
type Location struct {
	SelectedCity string
	Current      *ResolvedLocation
}

// LocationSource tells where a displayed city came from.
type LocationSource string

const (
	SourceSelected LocationSource = "selected"
	SourceCurrent  LocationSource = "current"
	SourceUnset    LocationSource = "unset"
)

// DisplayLocation is the single city a screen should show.
type DisplayLocation struct {
	City   string
	Source LocationSource
}

// IsSet reports whether any city is available.
func (d DisplayLocation) IsSet() bool {
	return d.Source != SourceUnset
}

// Display applies precedence: selected city, then resolved city, then unset.
func (l Location) Display() DisplayLocation {
	if l.SelectedCity != "" {
		return DisplayLocation{City: l.SelectedCity, Source: SourceSelected}
	}
	if l.Current != nil && l.Current.City != "" {
		return DisplayLocation{City: l.Current.City, Source: SourceCurrent}
	}
	return DisplayLocation{Source: SourceUnset}
}

// Clone copies the resolved location pointer target.
func (l Location) Clone() Location {
	if l.Current == nil {
		return l
	}
	cur := *l.Current
	return Location{SelectedCity: l.SelectedCity, Current: &cur}
}

// Equal compares two locations by value.
func (l Location) Equal(other Location) bool {
	if l.SelectedCity != other.SelectedCity {
		return false
	}
	if l.Current == nil || other.Current == nil {
		return l.Current == nil && other.Current == nil
	}
	return l.Current.City == other.Current.City &&
		l.Current.Coordinates == other.Current.Coordinates &&
		l.Current.ResolvedAt.Equal(other.Current.ResolvedAt)
}
