package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/response"
)

const (
	CtxSessionKey = "session"

	// GuestModeHeader lets a client browse as a guest while holding tokens.
	GuestModeHeader = "X-Guest-Mode"
)

// Session resolves the caller's session and stores it in the Gin context.
// Requests without a token, or with X-Guest-Mode: true, get a guest session.
// A token whose session snapshot is gone or carries another sid is rejected.
func Session(sessions *application.SessionService, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if guest, _ := strconv.ParseBool(c.GetHeader(GuestModeHeader)); guest || token == "" {
			c.Set(CtxSessionKey, application.GuestSession())
			c.Next()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			return
		}
		sess, err := sessions.Restore(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, application.ErrSessionNotFound) {
				response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
				return
			}
			response.Error[any](c, http.StatusInternalServerError, "session lookup failed", nil)
			return
		}
		if sess.SID != claims.SessionID {
			response.Error[any](c, http.StatusUnauthorized, "session expired", nil)
			return
		}
		c.Set(CtxSessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session set by Session, or a guest session.
func CurrentSession(c *gin.Context) *application.Session {
	if v, ok := c.Get(CtxSessionKey); ok {
		if s, ok := v.(*application.Session); ok && s != nil {
			return s
		}
	}
	return application.GuestSession()
}

// RequireMember stops guests with 401 and a signup hint.
func RequireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := CurrentSession(c).RequireMember(); err != nil {
			response.Error[any](c, http.StatusUnauthorized, "sign up or log in to continue", gin.H{"code": "signup_required"})
			return
		}
		c.Next()
	}
}

// RequireAdmin allows only sessions whose profile has the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := CurrentSession(c).RequireAdmin()
		switch {
		case errors.Is(err, application.ErrGuestForbidden):
			response.Error[any](c, http.StatusUnauthorized, "sign up or log in to continue", gin.H{"code": "signup_required"})
			return
		case err != nil:
			response.Error[any](c, http.StatusForbidden, "admin only", nil)
			return
		}
		c.Next()
	}
}

// accessToken reads the access_token cookie, then the Authorization header.
func accessToken(c *gin.Context) string {
	if tok, err := c.Cookie("access_token"); err == nil && tok != "" {
		return tok
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
