package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"matdepot/authctl/internal/auth"
	"matdepot/authctl/internal/models"
)

const currentUserKey = "current_user"

// Auth gates a route on the presence of an authenticated user in the
// auth manager and exposes the cached user to downstream handlers.
func Auth(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager.State() != auth.StateAuthenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user := manager.CurrentUser()
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
			return
		}

		c.Set(currentUserKey, *user)

		c.Next()
	}
}

// CurrentUser reads the user placed in the context by Auth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get(currentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}
