// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/story-mcp/internal/i18n"
	"github.com/javajoker/story-mcp/internal/utils"
)

func bearerClaims(c *gin.Context) (*utils.OperatorClaims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, i18n.KeyAuthRequired
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, i18n.KeyAuthInvalidToken
	}

	claims, err := utils.ValidateJWT(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, i18n.KeyAuthInvalidToken
	}
	return claims, ""
}

func setOperator(c *gin.Context, claims *utils.OperatorClaims) {
	c.Set("operator", claims.Operator)
	c.Set("key_index", claims.KeyIndex)
}

// AuthRequired rejects requests without a valid operator token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, failure := bearerClaims(c)
		if claims == nil {
			utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), failure))
			c.Abort()
			return
		}

		setOperator(c, claims)
		c.Next()
	}
}

// AuthRequiredIf applies AuthRequired only when enabled is true, so a
// server without operator keys stays usable locally.
func AuthRequiredIf(enabled bool) gin.HandlerFunc {
	if enabled {
		return AuthRequired()
	}
	return OptionalAuth()
}

func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, _ := bearerClaims(c); claims != nil {
			setOperator(c, claims)
		}
		c.Next()
	}
}
