package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/domain"
)

const (
	bearerPrefix   = "Bearer "
	userContextKey = "auth.user"
)

// requireAuth resolves the bearer token to a user and stores it on the context.
// Handlers behind it can rely on currentUser being non-nil.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			abortWithMessage(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

		user, err := h.users.Authenticate(c.Request.Context(), token)
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
