package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ctxUserID = "user_id"
	ctxEmail  = "user_email"
	ctxRole   = "user_role"
)

func deny(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("Authorization header required")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || strings.TrimSpace(scheme) != "Bearer" {
		return "", errors.New("Invalid authorization header format")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("Token is empty")
	}
	return token, nil
}

// AuthMiddleware validates the bearer token issued by the membership site
// and stores the caller's id, email and role on the context.
func AuthMiddleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			deny(c, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := ValidateToken(token, accessTokenSecret)
		switch {
		case errors.Is(err, ErrTokenExpired):
			deny(c, http.StatusUnauthorized, "Token expired")
			return
		case err != nil:
			deny(c, http.StatusUnauthorized, "Invalid or malformed token")
			return
		case claims.TokenType != "access":
			deny(c, http.StatusUnauthorized, "Access token required")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get(ctxRole)
		if !exists {
			deny(c, http.StatusUnauthorized, "User role not found")
			return
		}
		role, ok := raw.(string)
		if !ok {
			deny(c, http.StatusUnauthorized, "Invalid role type")
			return
		}
		if role != requiredRole {
			deny(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	id, ok := c.Value(ctxUserID).(int)
	return id, ok
}

// IsAdmin reports whether the authenticated caller has the admin role.
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == RoleAdmin
}
