package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/response"
	"github.com/oksasatya/go-storefront/pkg/validation"
)

// writeError maps service errors to the response envelope. Anything it does
// not recognise is logged and reported as a 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.Is(err, application.ErrGuestForbidden):
		response.Error[any](c, http.StatusUnauthorized, "sign up or log in to continue", gin.H{"code": "signup_required"})
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrSessionNotFound):
		response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
	case errors.Is(err, application.ErrInvalidToken):
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
	case errors.Is(err, application.ErrUserBanned):
		response.Error[any](c, http.StatusForbidden, "account is banned", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, application.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, application.ErrUsernameTaken), errors.Is(err, application.ErrEmailTaken):
		response.Error[any](c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, application.ErrEmptyCart),
		errors.Is(err, application.ErrInvalidStatus),
		errors.Is(err, application.ErrInvalidRole):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrUnsupportedMedia):
		response.Error[any](c, http.StatusUnsupportedMediaType, err.Error(), nil)
	case errors.Is(err, application.ErrStorageUnavailable):
		response.Error[any](c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		if logger != nil {
			helpers.LogError(logger, "request failed", err, logrus.Fields{
				"path":       c.FullPath(),
				"request_id": c.GetString("request_id"),
			})
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

// bindJSON decodes the body into dst and writes a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}
