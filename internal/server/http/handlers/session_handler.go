package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/server/http/dto"
)

// SessionHandler processes sign-in, registration, profile completion and sign-out.
type SessionHandler struct {
	facade SessionFacade
}

// NewSessionHandler creates SessionHandler instance.
func NewSessionHandler(facade SessionFacade) *SessionHandler {
	return &SessionHandler{facade: facade}
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSessionResponse(h.facade.Session()))
}

// SignIn handles POST /api/session/sign-in.
func (h *SessionHandler) SignIn(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	session, err := h.facade.SignIn(c.Request.Context(), model.Credentials{Login: req.Login, Password: req.Password})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// SignUp handles POST /api/session/sign-up.
func (h *SessionHandler) SignUp(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	session, err := h.facade.SignUp(c.Request.Context(), model.Credentials{Login: req.Login, Password: req.Password})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSessionResponse(session))
}

// CompleteProfile handles POST /api/session/profile.
func (h *SessionHandler) CompleteProfile(c *gin.Context) {
	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	session, err := h.facade.CompleteProfile(c.Request.Context(), req.Model())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// SignOut handles POST /api/session/sign-out.
func (h *SessionHandler) SignOut(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSessionResponse(h.facade.SignOut(c.Request.Context())))
}
