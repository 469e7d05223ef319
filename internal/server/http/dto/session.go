package dto

import "github.com/polkiloo/marketclient/internal/domain/model"

// CredentialsRequest describes login/password payload.
type CredentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// ProfileRequest carries profile completion fields.
type ProfileRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	City          string `json:"city,omitempty"`
	StoreName     string `json:"store_name,omitempty"`
	VehicleNumber string `json:"vehicle_number,omitempty"`
}

// Model converts the request into profile data.
func (r ProfileRequest) Model() model.ProfileData {
	return model.ProfileData{
		Name:          r.Name,
		Phone:         r.Phone,
		City:          r.City,
		StoreName:     r.StoreName,
		VehicleNumber: r.VehicleNumber,
	}
}

// UserResponse describes the signed-in identity.
type UserResponse struct {
	ID              string `json:"id"`
	Role            string `json:"role"`
	ProfileComplete bool   `json:"profile_complete"`
	Name            string `json:"name,omitempty"`
	Phone           string `json:"phone,omitempty"`
}

// SessionResponse describes the current session.
type SessionResponse struct {
	Status string        `json:"status"`
	User   *UserResponse `json:"user,omitempty"`
}

// NewSessionResponse maps a session snapshot.
func NewSessionResponse(s model.Session) SessionResponse {
	resp := SessionResponse{Status: s.Status.String()}
	if s.User != nil {
		resp.User = &UserResponse{
			ID:              s.User.ID,
			Role:            s.User.Role.String(),
			ProfileComplete: s.User.ProfileComplete,
			Name:            s.User.Name,
			Phone:           s.User.Phone,
		}
	}
	return resp
}
