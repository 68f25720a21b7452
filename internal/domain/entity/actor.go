package entity

// Staff roles. Role resolution happens outside the core; operations receive
// the resolved label and gate on it.
const (
	RoleOwner        = "owner"
	RoleAdmin        = "admin"
	RoleStockManager = "stock_manager"
	RoleSalesman     = "salesman"
)

// Actor identifies who performs an operation. Every mutating use case takes
// one explicitly; none reads identity from ambient state.
type Actor struct {
	ID       string
	Username string
	Role     string
}

// HasRole reports whether the actor holds one of the given roles.
func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// ValidRole reports whether s is a known role label.
func ValidRole(s string) bool {
	switch s {
	case RoleOwner, RoleAdmin, RoleStockManager, RoleSalesman:
		return true
	}
	return false
}
