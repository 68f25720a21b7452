package entity

import "time"

// Supplier is a parts vendor referenced by purchase orders. Names are unique.
type Supplier struct {
	ID            string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
