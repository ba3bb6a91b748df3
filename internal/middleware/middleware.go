package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
)

// JWTAuth validates the Bearer token of admin-portal requests and puts
// the user id, email and role into the Gin context.
func JWTAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Missing Authorization header. A valid Bearer token is required.")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Authorization header must use Bearer scheme. Format: 'Bearer <token>'")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			abortUnauthorized(c, "Bearer token is empty")
			return
		}

		claims, err := parseAndValidateJWT(tokenString, jwtSecret)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}
		if err := extractAndSetClaims(c, claims); err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, message))
	c.Abort()
}

// parseAndValidateJWT parses the token with HMAC-only verification and
// checks the temporal claims.
func parseAndValidateJWT(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject any non-HMAC algorithm to prevent algorithm confusion
		// attacks.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}

	now := time.Now()
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp != nil && exp.Before(now) {
		return nil, fmt.Errorf("token has expired")
	}
	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid iat claim: %w", err)
	}
	if iat != nil && iat.After(now) {
		return nil, fmt.Errorf("token issued in the future")
	}

	return claims, nil
}

// extractAndSetClaims copies the identity claims into the Gin context.
// sub and role are required; tokens without them are rejected.
func extractAndSetClaims(c *gin.Context, claims jwt.MapClaims) error {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return fmt.Errorf("token missing required 'sub' claim")
	}
	c.Set("userID", sub)

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return fmt.Errorf("token missing required 'role' claim")
	}
	switch role {
	case models.RoleSuperadmin, models.RoleAdmin, models.RoleStaff:
	default:
		return fmt.Errorf("invalid role %q", role)
	}
	c.Set("userRole", role)

	if email, ok := claims["email"].(string); ok && email != "" {
		c.Set("userEmail", email)
	}
	return nil
}
