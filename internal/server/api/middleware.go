package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ctxKeyClaims = "claims"
	ctxKeyToken  = "token"
)

func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}

// AuthRequired verifies the bearer token and attaches its claims to the
// request context.
func AuthRequired(s UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Missing or invalid Authorization header"}})
			return
		}
		claims, err := s.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid or expired token"}})
			return
		}
		c.Set(ctxKeyToken, token)
		c.Set(ctxKeyClaims, claims)
		c.Next()
	}
}

// RequireRole rejects tokens whose role does not reach the required one.
// Runs after AuthRequired.
func RequireRole(s UserService, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetString(ctxKeyToken)
		if !s.CheckPermission(token, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Insufficient permissions"}})
			return
		}
		c.Next()
	}
}
