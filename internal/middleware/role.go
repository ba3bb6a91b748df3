package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
)

// RequireRole is a middleware that checks if the user has one of the
// allowed roles. It must run after JWTAuth.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("userRole")
		if !exists {
			c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
			c.Abort()
			return
		}

		userRole, ok := role.(string)
		if !ok {
			c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "Invalid role format"))
			c.Abort()
			return
		}

		for _, r := range allowed {
			if userRole == r {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "Insufficient permissions", map[string]interface{}{
			"required_roles": allowed,
			"user_role":      userRole,
		}))
		c.Abort()
	}
}
