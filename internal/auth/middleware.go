package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const adminKeyContextKey = "auth_admin_key"

// Middleware validates bearer API keys and marks the request as admin.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, err := s.Validate(s.extractToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(adminKeyContextKey, idx)
		c.Next()
	}
}

// AdminKeyFromContext returns the index of the key that authenticated the request.
func AdminKeyFromContext(c *gin.Context) (int, bool) {
	val, ok := c.Get(adminKeyContextKey)
	if !ok {
		return -1, false
	}
	idx, ok := val.(int)
	return idx, ok
}

// IsAdmin reports whether the request carries a valid admin key. Routes that
// are open to everyone use it to decide whether admin-only flags apply.
func (s *Service) IsAdmin(c *gin.Context) bool {
	if !s.Enabled() {
		return false
	}
	_, err := s.Validate(s.extractToken(c))
	return err == nil
}

func (s *Service) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader(s.headerName)
	if len(authHeader) > 7 && strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
