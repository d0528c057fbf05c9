package domain

import "fmt"

// Role is the closed set of marketplace access levels. Modelling it as a
// typed constant set keeps allowed-role lists checkable at compile time
// instead of failing at runtime on a typo.
type Role string

const (
	RoleBuyer     Role = "buyer"
	RoleSupplier  Role = "supplier"
	RoleAdmin     Role = "admin"
	RolePublisher Role = "publisher"
)

// ParseRole validates a stored or transmitted role string.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleBuyer, RoleSupplier, RoleAdmin, RolePublisher:
		return r, nil
	default:
		return "", fmt.Errorf("domain: unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }
