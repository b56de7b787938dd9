package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/response"
)

type AuthHandler struct {
	Auth     *application.AuthService
	Sessions *application.SessionService
	Logger   *logrus.Logger
	Cookies  *helpers.Manager
}

func NewAuthHandler(auth *application.AuthService, sessions *application.SessionService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Auth: auth, Sessions: sessions, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type resetInitRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// authPayload is returned by register, login and refresh. Tokens are also
// set as cookies; the body copy serves clients using Authorization headers.
type authPayload struct {
	Session      *application.Session `json:"session"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
}

func (h *AuthHandler) signedIn(c *gin.Context, status int, res *application.AuthResult, msg string) {
	t := res.Tokens
	h.Cookies.SetPair(c, t.AccessToken, t.AccessTokenExpiry, t.RefreshToken, t.RefreshTokenExpiry)
	response.Success(c, status, authPayload{Session: res.Session, AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}, msg,
		map[string]any{"access_expires_at": t.AccessTokenExpiry, "refresh_expires_at": t.RefreshTokenExpiry})
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req application.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.signedIn(c, http.StatusCreated, res, "registered")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.signedIn(c, http.StatusOK, res, "login successful")
}

// Refresh POST /api/auth/refresh. The refresh token comes from the cookie or the body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, _ := c.Cookie("refresh_token")
	if refresh == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		refresh = req.RefreshToken
	}
	if refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	res, err := h.Auth.Refresh(c.Request.Context(), refresh)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
			return
		}
		writeError(c, h.Logger, err)
		return
	}
	h.signedIn(c, http.StatusOK, res, "token refreshed")
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Auth.SignOut(c.Request.Context(), middleware.CurrentSession(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// Session GET /api/session returns the caller's session. Members get a
// profile freshly read from the store.
func (h *AuthHandler) Session(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess.Guest {
		response.Success(c, http.StatusOK, sess, "guest session", nil)
		return
	}
	fresh, err := h.Sessions.Reconcile(c.Request.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, application.ErrSessionNotFound) || errors.Is(err, application.ErrUserBanned) {
			h.Cookies.Clear(c)
		}
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, fresh, "session", nil)
}

// ResetInit POST /api/auth/reset/init {email}. Always succeeds for a well formed address.
func (h *AuthHandler) ResetInit(c *gin.Context) {
	var req resetInitRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Auth.SendPasswordReset(c.Request.Context(), req.Email, clientInfo(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "if the address is registered a reset link was sent",
		map[string]any{"expires_in": application.ResetTokenTTL.String()})
}

// ResetConfirm POST /api/auth/reset/confirm {token, newPassword}
func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req application.ResetPasswordInput
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Auth.ConfirmPasswordReset(c.Request.Context(), req, clientInfo(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}

// clientInfo prefers the address resolved by the RealIP middleware.
func clientInfo(c *gin.Context) application.ClientInfo {
	ip := c.GetString("real_ip")
	if ip == "" {
		ip = c.ClientIP()
	}
	return application.ClientInfo{IP: ip, UserAgent: c.Request.UserAgent()}
}
