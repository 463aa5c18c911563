package middleware

import (
	"net/http"
	"strings"

	"gallery-la/internal/auth"
	"gallery-la/internal/ports"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdentityKey is the gin context key holding the verified ports.Identity.
const IdentityKey = "identity"

func bearer(c *gin.Context) (string, bool, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, "Authorization header missing"
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
		return "", false, "Bearer token malformed"
	}
	return strings.TrimSpace(tokenString), true, ""
}

func bind(c *gin.Context, id ports.Identity) {
	c.Set(IdentityKey, id)
	c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(v auth.Verifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok, problem := bearer(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": problem, "code": "AUTH_REQUIRED"})
			return
		}
		id, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			log.Debug("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "code": "AUTH_REQUIRED"})
			return
		}
		bind(c, id)
		c.Next()
	}
}

// OptionalAuth binds the identity when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok, _ := bearer(c); ok {
			if id, err := v.Verify(c.Request.Context(), token); err == nil {
				bind(c, id)
			}
		}
		c.Next()
	}
}
