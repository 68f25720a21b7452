package entity

import "time"

// Category groups products. Names are unique; a category with products
// cannot be deleted.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
