package httpHandler

import (
	"net/http"
	"strings"

	"asp-server/services"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserIDKey = "userID"
	ctxClaimsKey = "claims"
)

// extractToken strips the "Bearer " prefix from an Authorization header.
func extractToken(authHeader string) string {
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[len("Bearer "):]
	}
	return authHeader
}

// RequireAuth verifies the bearer token on every protected route and
// stores the resolved identity in the request context.
func RequireAuth(tokens *services.TokenService, revoked services.TokenRevoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		claims, err := tokens.Parse(extractToken(authHeader))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		isRevoked, err := revoked.IsRevoked(claims.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check token"})
			return
		}
		if isRevoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxClaimsKey, claims)
		c.Next()
	}
}

// authedUserID returns the identity RequireAuth stored on the context.
func authedUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

// authedClaims returns the full token claims from the context.
func authedClaims(c *gin.Context) *services.Claims {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*services.Claims)
	return claims
}
