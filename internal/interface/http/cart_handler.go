package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/response"
)

type CartHandler struct {
	Cart     *application.CartService
	Wishlist *application.WishlistService
	Logger   *logrus.Logger
}

func NewCartHandler(cart *application.CartService, wishlist *application.WishlistService, logger *logrus.Logger) *CartHandler {
	return &CartHandler{Cart: cart, Wishlist: wishlist, Logger: logger}
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.Cart.List(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, view, "cart", nil)
}

// SetQuantity PUT /api/cart/items/:productId {quantity}. Zero or less removes the line.
func (h *CartHandler) SetQuantity(c *gin.Context) {
	var req setQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	sess := middleware.CurrentSession(c)
	if err := h.Cart.SetQuantity(ctx, sess, c.Param("productId"), *req.Quantity); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	view, err := h.Cart.List(ctx, sess)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, view, "cart updated", nil)
}

// RemoveItem DELETE /api/cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.CurrentSession(c)
	if err := h.Cart.Remove(ctx, sess, c.Param("productId")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	view, err := h.Cart.List(ctx, sess)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, view, "item removed", nil)
}

// ClearCart DELETE /api/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.Cart.Clear(c.Request.Context(), middleware.CurrentSession(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"cleared": true}, "cart cleared", nil)
}

// GetWishlist GET /api/wishlist
func (h *CartHandler) GetWishlist(c *gin.Context) {
	items, err := h.Wishlist.List(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "wishlist", nil)
}

// WishlistContains GET /api/wishlist/:productId. Guests always get false.
func (h *CartHandler) WishlistContains(c *gin.Context) {
	ok, err := h.Wishlist.Contains(c.Request.Context(), middleware.CurrentSession(c), c.Param("productId"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"wished": ok}, "wishlist status", nil)
}

// AddToWishlist POST /api/wishlist/:productId
func (h *CartHandler) AddToWishlist(c *gin.Context) {
	if err := h.Wishlist.Add(c.Request.Context(), middleware.CurrentSession(c), c.Param("productId")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"wished": true}, "added to wishlist", nil)
}

// RemoveFromWishlist DELETE /api/wishlist/:productId
func (h *CartHandler) RemoveFromWishlist(c *gin.Context) {
	if err := h.Wishlist.Remove(c.Request.Context(), middleware.CurrentSession(c), c.Param("productId")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"wished": false}, "removed from wishlist", nil)
}

// ToggleWishlist POST /api/wishlist/:productId/toggle
func (h *CartHandler) ToggleWishlist(c *gin.Context) {
	ok, err := h.Wishlist.Toggle(c.Request.Context(), middleware.CurrentSession(c), c.Param("productId"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"wished": ok}, "wishlist toggled", nil)
}
