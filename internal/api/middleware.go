package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/auth"
	"github.com/zulandar/shiftboard/internal/identity"
	"github.com/zulandar/shiftboard/internal/models"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	principalKey    = "principal"
)

// requestID tags each request with the caller's X-Request-ID, or a fresh
// UUID, and echoes it in the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// authenticate resolves the bearer token into a principal.
func authenticate(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			writeError(c, fmt.Errorf("bearer token required: %w", apperr.ErrUnauthorized))
			return
		}
		p, err := authn.ResolveToken(strings.TrimSpace(token))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// requireRole rejects principals outside roles. Must run after authenticate.
func requireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := identity.RequireRole(principal(c), roles...); err != nil {
			writeError(c, err)
			return
		}
		c.Next()
	}
}

func principal(c *gin.Context) identity.Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(identity.Principal)
	return p
}
