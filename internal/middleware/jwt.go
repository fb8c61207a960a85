package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
	"github.com/pierojauregui/trilceperu-sub000/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// ContextTokenKey is the gin context key storing the raw bearer token.
	ContextTokenKey = "accessToken"
)

// TokenValidator verifies an access token.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearer(c)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// BearerToken requires an Authorization header and keeps the token for
// forwarding. Verification is left to the service the token is sent to.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearer(c)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// Token returns the bearer token stored by JWT or BearerToken.
func Token(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}

func bearer(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "sesion no iniciada: falta el token de acceso")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
