package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"veriflow/internal/pkg/response"
)

// RequireAnyRole ensures the authenticated user has one of the given roles.
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if !allowed[role.(string)] {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminOnly restricts a route group to admin accounts.
func AdminOnly() gin.HandlerFunc {
	return RequireAnyRole("admin")
}

// ReviewerOnly allows the verification review team: admins and verifiers.
func ReviewerOnly() gin.HandlerFunc {
	return RequireAnyRole("admin", "verifier")
}
