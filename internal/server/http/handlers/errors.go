package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
	"github.com/polkiloo/marketclient/internal/server/http/dto"
)

// respondError writes the status and body matching err.
func respondError(c *gin.Context, err error) {
	status, body := classify(err)
	c.JSON(status, body)
}

func classify(err error) (int, dto.ErrorResponse) {
	body := dto.ErrorResponse{Error: err.Error()}

	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		body.Kind = "validation"
		body.Fields = validationErr.Fields
		return http.StatusUnprocessableEntity, body
	}

	var authErr *domainErrors.AuthError
	if errors.As(err, &authErr) {
		body.Kind = string(authErr.Kind)
		switch authErr.Kind {
		case domainErrors.AuthInvalidCredentials:
			return http.StatusUnauthorized, body
		case domainErrors.AuthRejected:
			return http.StatusConflict, body
		default:
			return http.StatusBadGateway, body
		}
	}

	var locationErr *domainErrors.LocationError
	if errors.As(err, &locationErr) {
		body.Kind = string(locationErr.Kind)
		switch locationErr.Kind {
		case domainErrors.LocationPermissionDenied:
			return http.StatusForbidden, body
		case domainErrors.LocationTimeout:
			return http.StatusGatewayTimeout, body
		default:
			return http.StatusServiceUnavailable, body
		}
	}

	var stateErr *domainErrors.StateError
	if errors.As(err, &stateErr) {
		body.Kind = "state"
		switch {
		case errors.Is(err, domainErrors.ErrSuperseded),
			errors.Is(err, domainErrors.ErrAlreadyAuthenticated),
			errors.Is(err, domainErrors.ErrNotAuthenticated),
			errors.Is(err, domainErrors.ErrAlreadyInitialized):
			return http.StatusConflict, body
		case errors.Is(err, domainErrors.ErrLineNotFound):
			return http.StatusNotFound, body
		default:
			return http.StatusBadRequest, body
		}
	}

	return http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"}
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body", Kind: "request"})
}
