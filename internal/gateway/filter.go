package gateway

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quizgrid/backend/internal/auth"
	"github.com/quizgrid/backend/pkg/response"
)

const (
	// HeaderUsername carries the authenticated username to downstream
	// services. The gateway is its sole writer: any caller-supplied value is
	// stripped before the request is classified.
	HeaderUsername = "X-Auth-Username"
	// HeaderRole carries the authenticated role the same way.
	HeaderRole = "X-Auth-Role"
)

// Filter returns the per-request authorization gate. Terminal states are
// forward (c.Next into the proxy) and reject (401/403 with no internal
// detail; decode errors are logged here only).
func Filter(jwt *auth.JWTService, policy RoutePolicy, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Identity headers are never accepted from callers, even on open routes.
		c.Request.Header.Del(HeaderUsername)
		c.Request.Header.Del(HeaderRole)

		path := c.Request.URL.Path
		if policy.IsOpen(path) {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}

		claims, err := jwt.Validate(parts[1])
		if err != nil {
			logger.Warn("token rejected", zap.String("path", path), zap.Error(err))
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		for _, rule := range policy.MatchingRules(path) {
			if !claims.Role.Equals(rule.Role) {
				logger.Warn("role rule failed",
					zap.String("path", path),
					zap.String("username", claims.Username),
					zap.String("role", string(claims.Role)),
					zap.String("required", string(rule.Role)),
				)
				response.Forbidden(c, "insufficient permissions")
				c.Abort()
				return
			}
		}

		c.Request.Header.Set(HeaderUsername, claims.Username)
		c.Request.Header.Set(HeaderRole, string(claims.Role))
		c.Next()
	}
}
