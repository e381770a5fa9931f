package util

import (
	"book_platform_backend/internal/model"

	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// SetUserInContext stores the resolved identity snapshot for this request.
func SetUserInContext(c *gin.Context, user *model.User) {
	c.Set(userContextKey, user)
}

// GetUserFromContext returns the identity resolved by the session
// middleware, or nil for an anonymous caller.
func GetUserFromContext(c *gin.Context) *model.User {
	v, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return user
}
