package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/quizgrid/backend/pkg/response"
)

const (
	// HeaderUsername is the gateway-injected identity header. Backend services
	// treat it as ground truth for who is calling; the gateway strips any
	// caller-supplied value before forwarding.
	HeaderUsername = "X-Auth-Username"
	// HeaderRole is the gateway-injected role header.
	HeaderRole = "X-Auth-Role"

	// ContextUsername is the key for the caller's username in gin context.
	ContextUsername = "auth_username"
	// ContextRole is the key for the caller's role in gin context.
	ContextRole = "auth_role"
)

// Identity extracts the gateway-injected identity headers into the request
// context. Requests that reach a protected backend route without them were
// not forwarded by the gateway and are rejected.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader(HeaderUsername)
		if username == "" {
			response.Unauthorized(c, "missing identity")
			c.Abort()
			return
		}
		c.Set(ContextUsername, username)
		c.Set(ContextRole, c.GetHeader(HeaderRole))
		c.Next()
	}
}

// Username returns the authenticated username from the gin context.
func Username(c *gin.Context) string {
	return c.GetString(ContextUsername)
}
