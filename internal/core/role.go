// AngelaMos | 2026
// role.go

package core

import "fmt"

type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleUser       Role = "User"
	RoleSeller     Role = "Seller"
	RoleSuperAdmin Role = "SuperAdmin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleUser, RoleSeller, RoleSuperAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q: %w", s, ErrInvalidInput)
	}
}

func (r Role) String() string {
	return string(r)
}

func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// Privileged reports whether the role may read every account.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)
