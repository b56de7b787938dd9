package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/response"
)

type NotificationHandler struct {
	Svc    *application.NotificationService
	Logger *logrus.Logger
}

func NewNotificationHandler(svc *application.NotificationService, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{Svc: svc, Logger: logger}
}

// List GET /api/notifications?q=
func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "notifications", nil)
}

// Create POST /api/admin/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req application.NotificationInput
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.Svc.Create(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, n, "notification sent", nil)
}

// Delete DELETE /api/admin/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	items, err := h.Svc.Delete(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "notification deleted", nil)
}
