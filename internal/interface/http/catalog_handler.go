package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/response"
)

// CatalogHandler serves categories and brands.
type CatalogHandler struct {
	Svc    *application.CatalogService
	Logger *logrus.Logger
}

func NewCatalogHandler(svc *application.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Svc: svc, Logger: logger}
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	items, err := h.Svc.ListCategories(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "categories", nil)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	cat, err := h.Svc.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cat, "category", nil)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req application.NamedInput
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.Svc.AddCategory(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, cat, "category created", nil)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req application.NamedInput
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.Svc.UpdateCategory(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cat, "category updated", nil)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	items, err := h.Svc.DeleteCategory(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "category deleted", nil)
}

func (h *CatalogHandler) ListBrands(c *gin.Context) {
	items, err := h.Svc.ListBrands(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "brands", nil)
}

func (h *CatalogHandler) GetBrand(c *gin.Context) {
	b, err := h.Svc.GetBrand(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "brand", nil)
}

func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	var req application.NamedInput
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Svc.AddBrand(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, b, "brand created", nil)
}

func (h *CatalogHandler) UpdateBrand(c *gin.Context) {
	var req application.NamedInput
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Svc.UpdateBrand(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "brand updated", nil)
}

func (h *CatalogHandler) DeleteBrand(c *gin.Context) {
	items, err := h.Svc.DeleteBrand(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "brand deleted", nil)
}
