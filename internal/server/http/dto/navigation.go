package dto

// NavigationResponse names the active screen group.
type NavigationResponse struct {
	Target string `json:"target"`
}

// GuardResponse reports whether a screen group may be shown.
type GuardResponse struct {
	Decision string `json:"decision"`
	Target   string `json:"target"`
}
