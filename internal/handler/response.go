package handler

import (
	"net/http"

	"taskhub/internal/middleware"
	"taskhub/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var devMode bool

// SetDevMode enables the error detail field in failure envelopes.
// Development only; production responses carry the message alone.
func SetDevMode(enabled bool) {
	devMode = enabled
}

func respondError(c *gin.Context, code int, message string, err error) {
	body := gin.H{"success": false, "message": message}
	if devMode && err != nil {
		body["error"] = err.Error()
	}
	c.JSON(code, body)
}

func respondServerError(c *gin.Context, err error) {
	respondError(c, http.StatusInternalServerError, "Server Error", err)
}

// requesterFrom собирает личность запросившего из контекста,
// установленного JWTAuthMiddleware
func requesterFrom(c *gin.Context) (policy.Requester, bool) {
	v, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return policy.Requester{}, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return policy.Requester{}, false
	}
	return policy.Requester{ID: id, Role: c.GetString(middleware.UserRoleKey)}, true
}
