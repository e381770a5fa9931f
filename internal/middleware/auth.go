package middleware

import (
	"book_platform_backend/internal/service"
	"book_platform_backend/internal/util"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the opaque session token.
// Clients may also send the token as an Authorization bearer value.
const SessionCookieName = "session_token"

// extractToken pulls the session token from the Authorization header or,
// failing that, the session cookie.
func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// SessionMiddleware resolves the caller identity exactly once per request
// and stores the snapshot in the gin context. It never fails the request:
// an absent or invalid token simply leaves the caller anonymous.
func SessionMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token != "" {
			user, err := auth.ResolveToken(c.Request.Context(), token)
			if err == nil {
				util.SetUserInContext(c, user)
			}
		}
		c.Next()
	}
}

// AuthRequired rejects anonymous callers with 401. The originally requested
// path is echoed as "next" so the client can return there after login.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if util.GetUserFromContext(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "Unauthorized",
				"next":    c.Request.URL.Path,
			})
			return
		}
		c.Next()
	}
}

// RequirePermission assumes AuthRequired has already passed. It denies with
// 403 naming only the resource and action, never which permission rows the
// user holds. Any ambiguity fails closed.
func RequirePermission(rbac *service.RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if !rbac.HasPermission(user, resource, action) {
			util.Forbidden(c, fmt.Sprintf("You do not have permission to %s %s", action, resource))
			c.Abort()
			return
		}

		c.Next()
	}
}
