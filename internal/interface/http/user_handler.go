package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/response"
)

// UserHandler serves the caller's profile and the admin user screens.
type UserHandler struct {
	Svc    *application.UserService
	Media  *application.MediaService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, media *application.MediaService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Media: media, Logger: logger}
}

type setRoleRequest struct {
	Role entity.Role `json:"role" binding:"required"`
}

type setStatusRequest struct {
	Status entity.UserStatus `json:"status" binding:"required"`
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.Profile(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req application.UpdateProfileInput
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile updated", nil)
}

// UploadAvatar POST /api/profile/avatar, multipart "file" or JSON {data}.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	in, ok := readUpload(c)
	if !ok {
		return
	}
	steps := trackProgress(&in)
	u, err := h.Media.UploadAvatar(c.Request.Context(), middleware.CurrentSession(c), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "avatar updated", map[string]any{"progress": *steps})
}

// List GET /api/admin/users?q=
func (h *UserHandler) List(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), middleware.CurrentSession(c), c.Query("q"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "users", map[string]any{"count": len(items)})
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

// SetRole PUT /api/admin/users/:id/role {role}
func (h *UserHandler) SetRole(c *gin.Context) {
	var req setRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.SetRole(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), req.Role)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "role updated", nil)
}

// SetStatus PUT /api/admin/users/:id/status {status}
func (h *UserHandler) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.SetStatus(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "status updated", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	items, err := h.Svc.Delete(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "user deleted", nil)
}
