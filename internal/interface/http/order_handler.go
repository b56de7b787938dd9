package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/response"
)

type OrderHandler struct {
	Svc    *application.OrderService
	Logger *logrus.Logger
}

func NewOrderHandler(svc *application.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Svc: svc, Logger: logger}
}

type updateStatusRequest struct {
	Status entity.OrderStatus `json:"status" binding:"required"`
}

// Checkout POST /api/orders {deliveryAddress, paymentMethod}
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req application.CheckoutInput
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.Svc.Checkout(c.Request.Context(), middleware.CurrentSession(c), req)
	if errors.Is(err, application.ErrCartNotCleared) && o != nil {
		response.Success(c, http.StatusCreated, o, "order placed", map[string]any{"warning": err.Error()})
		return
	}
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, o, "order placed", nil)
}

// Mine GET /api/orders
func (h *OrderHandler) Mine(c *gin.Context) {
	items, err := h.Svc.ListMine(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "orders", nil)
}

// Get GET /api/orders/:id and GET /api/admin/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.Svc.Get(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, o, "order", nil)
}

// List GET /api/admin/orders?q=
func (h *OrderHandler) List(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), middleware.CurrentSession(c), c.Query("q"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "orders", map[string]any{"count": len(items)})
}

// UpdateStatus PUT /api/admin/orders/:id/status {status}
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.Svc.UpdateStatus(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, o, "order status updated", nil)
}
