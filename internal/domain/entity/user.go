package entity

import "time"

// User statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User is a staff account. Authentication is a thin surface here; the core
// only consumes the resolved Actor.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt, never plaintext past the handler
	Name         string
	Role         string // owner, admin, stock_manager, salesman
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor returns the identity this user carries into core operations.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Username: u.Username, Role: u.Role}
}
