package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/server/http/dto"
)

const navigationEvent = "navigation"

// NavigationHandler exposes the active screen group.
type NavigationHandler struct {
	facade NavigationFacade
}

// NewNavigationHandler creates NavigationHandler instance.
func NewNavigationHandler(facade NavigationFacade) *NavigationHandler {
	return &NavigationHandler{facade: facade}
}

// Current handles GET /api/navigation.
func (h *NavigationHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NavigationResponse{Target: string(h.facade.Navigation())})
}

// Guard handles GET /api/navigation/guard/:role.
func (h *NavigationHandler) Guard(c *gin.Context) {
	role, err := model.ParseRole(c.Param("role"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Kind: "request"})
		return
	}
	decision, target := h.facade.CheckGuard(role)
	c.JSON(http.StatusOK, dto.GuardResponse{Decision: decision.String(), Target: string(target)})
}

// Events handles GET /api/navigation/events as a server-sent event stream.
// The current target is sent first, then every transition until the client leaves.
func (h *NavigationHandler) Events(c *gin.Context) {
	targets := make(chan model.Target, 16)
	unsubscribe := h.facade.SubscribeNavigation(func(target model.Target) {
		select {
		case targets <- target:
		default:
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent(navigationEvent, dto.NavigationResponse{Target: string(h.facade.Navigation())})
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case target := <-targets:
			c.SSEvent(navigationEvent, dto.NavigationResponse{Target: string(target)})
			c.Writer.Flush()
		}
	}
}
