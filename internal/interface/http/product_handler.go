package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/response"
)

type ProductHandler struct {
	Svc    *application.ProductService
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

// List GET /api/products?categoryId=&brandId=&q=
func (h *ProductHandler) List(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), application.ProductFilter{
		CategoryID: c.Query("categoryId"),
		BrandID:    c.Query("brandId"),
		Query:      c.Query("q"),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "products", map[string]any{"count": len(items)})
}

// Get GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "product", nil)
}

// Search GET /api/products/search?q=&size=
func (h *ProductHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	items, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "search results", map[string]any{"count": len(items)})
}

// Create POST /api/admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req application.ProductInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.Add(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "product created", nil)
}

// Update PUT /api/admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req application.ProductInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "product updated", nil)
}

// Delete DELETE /api/admin/products/:id responds with the remaining products.
func (h *ProductHandler) Delete(c *gin.Context) {
	items, err := h.Svc.Delete(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "product deleted", nil)
}
