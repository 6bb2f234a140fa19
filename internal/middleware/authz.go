package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadcrm/internal/authz"
)

// ReadOnlyGuard rejects unsafe methods for read-only roles. It must run
// after AuthMiddleware.
func ReadOnlyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		if authz.IsReadOnly(who.RoleID) {
			switch c.Request.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Role " + authz.RoleName(who.RoleID) + " is read-only"})
				return
			}
		}
		c.Next()
	}
}
