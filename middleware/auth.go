package middleware

import (
	"strings"

	"rentspace/response"
	"rentspace/types"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// TokenParser verifies a bearer token and returns its principal.
type TokenParser interface {
	Parse(token string) (types.Principal, error)
}

// AuthMiddleware authenticates the request and, when roles are given,
// requires the caller to hold one of them.
func AuthMiddleware(tokens TokenParser, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c)
			return
		}

		principal, err := tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			response.Unauthorized(c)
			return
		}

		if len(roles) > 0 && !hasRole(principal.Role, roles) {
			response.Forbidden(c)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// OptionalAuth attaches a principal when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			if principal, err := tokens.Parse(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
				c.Set(principalKey, principal)
			}
		}
		c.Next()
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// PrincipalFrom returns the authenticated caller set by AuthMiddleware.
func PrincipalFrom(c *gin.Context) (types.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return types.Principal{}, false
	}
	p, ok := v.(types.Principal)
	return p, ok
}
