package middleware

import (
	"net"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

// AllowPrivateIP bypasses the limiter for loopback and RFC 1918 callers.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		return parsed != nil && (parsed.IsLoopback() || parsed.IsPrivate())
	}
}

// AllowAdmin bypasses the limiter for admin sessions.
func AllowAdmin() AllowFunc {
	return func(c *gin.Context) bool {
		sess := CurrentSession(c)
		return !sess.Guest && sess.Profile != nil && sess.Profile.Role == entity.RoleAdmin
	}
}
