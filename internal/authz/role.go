package authz

import "strings"

// Role is a privilege level in the account hierarchy.
type Role string

// Roles ordered from highest to lowest privilege.
const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleEditor     Role = "EDITOR"
	RoleReporter   Role = "REPORTER"
	RoleUser       Role = "USER"
)

// roleLevels maps each role to its position in the privilege order. Higher
// means more privileged. Unknown roles map to zero and fail every check.
var roleLevels = map[Role]int{
	RoleSuperAdmin: 5,
	RoleAdmin:      4,
	RoleEditor:     3,
	RoleReporter:   2,
	RoleUser:       1,
}

// ParseRole normalises a raw role string. The boolean is false for
// unknown roles.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := roleLevels[role]
	return role, ok
}

// Valid reports whether the role is one of the known privilege levels.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the privilege rank of the role, zero for unknown roles.
func (r Role) Level() int {
	return roleLevels[r]
}

// AtLeast reports whether the role has privilege equal to or above min.
func (r Role) AtLeast(min Role) bool {
	return roleLevels[r] >= roleLevels[min] && roleLevels[r] > 0
}
