package middleware

import (
	"net/http"
	"slices"

	"clusterdeck/internal/domain"
	"clusterdeck/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole passes if the authenticated principal holds at least one of the
// allowed roles.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := c.GetStringSlice("roles")
		if len(roles) == 0 {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "No roles in credential")
			return
		}

		for _, role := range roles {
			if slices.Contains(allowed, role) {
				c.Next()
				return
			}
		}

		response.AbortError(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
	}
}

// AdminOnly requires the admin role.
func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
