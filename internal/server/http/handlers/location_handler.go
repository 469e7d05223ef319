package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/marketclient/internal/server/http/dto"
)

// LocationHandler serves the selected and resolved location.
type LocationHandler struct {
	facade LocationFacade
}

// NewLocationHandler creates LocationHandler instance.
func NewLocationHandler(facade LocationFacade) *LocationHandler {
	return &LocationHandler{facade: facade}
}

// Get handles GET /api/location.
func (h *LocationHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewLocationResponse(h.facade.Location()))
}

// Resolve handles POST /api/location/resolve.
func (h *LocationHandler) Resolve(c *gin.Context) {
	loc, err := h.facade.ResolveLocation(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLocationResponse(loc))
}

// SelectCity handles PUT /api/location/city.
func (h *LocationHandler) SelectCity(c *gin.Context) {
	var req dto.SelectCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	loc, err := h.facade.SelectCity(req.City)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLocationResponse(loc))
}

// ClearCity handles DELETE /api/location/city.
func (h *LocationHandler) ClearCity(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewLocationResponse(h.facade.ClearCity()))
}
