package entity

import "time"

// Review lives under products/<pid>/reviews.
type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Notification is broadcast to every user; there is no read state.
type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
