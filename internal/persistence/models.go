package persistence

import "time"

// Item represents a catalog item row. Price and Quantity may be NULL.
type Item struct {
	ID        int64
	ItemName  string
	Price     *int
	Quantity  *int
	CreatedAt time.Time
	UpdatedAt time.Time
}
