package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/navigation"
	"github.com/polkiloo/marketclient/internal/server/http/dto"
)

// GuardChecker decides whether the screen group of a role may be shown.
type GuardChecker interface {
	CheckGuard(role model.Role) (navigation.Decision, model.Target)
}

// RoleGuard admits requests only while the session is ready for role.
// While the session is loading it answers 425; on mismatch 409 with the target to show instead.
func RoleGuard(checker GuardChecker, role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, target := checker.CheckGuard(role)
		switch decision {
		case navigation.DecisionAllow:
			c.Next()
		case navigation.DecisionPending:
			c.AbortWithStatusJSON(http.StatusTooEarly, dto.ErrorResponse{
				Error:  "session is loading",
				Kind:   "guard",
				Target: string(target),
			})
		default:
			c.AbortWithStatusJSON(http.StatusConflict, dto.ErrorResponse{
				Error:  "screen group not available for session",
				Kind:   "guard",
				Target: string(target),
			})
		}
	}
}
