package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/response"
)

type ReviewHandler struct {
	Svc    *application.ReviewService
	Logger *logrus.Logger
}

func NewReviewHandler(svc *application.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{Svc: svc, Logger: logger}
}

// List GET /api/products/:id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "reviews", map[string]any{"count": len(items)})
}

// Create POST /api/products/:id/reviews {rating, comment}
func (h *ReviewHandler) Create(c *gin.Context) {
	var req application.ReviewInput
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.Svc.Add(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, r, "review added", nil)
}

// Delete DELETE /api/products/:id/reviews/:reviewId
func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), c.Param("reviewId")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "review deleted", nil)
}
