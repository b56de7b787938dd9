package entity

import "time"

// CartItem is one document per product id under users/<uid>/cart.
type CartItem struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WishlistItem is one document per product id under users/<uid>/wishlist.
// Presence of the document is the flag.
type WishlistItem struct {
	ProductID string    `json:"productId"`
	AddedAt   time.Time `json:"addedAt"`
}
