package auth

import "errors"

// Roles
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleAdmin      Role = "admin"
	RolePrincipal  Role = "principal"
	RoleTeacher    Role = "teacher"
	RoleStudent    Role = "student"
)

var (
	AllRoles = []Role{RoleSuperAdmin, RoleAdmin, RolePrincipal, RoleTeacher, RoleStudent}

	// AdminRoles are the roles allowed into the admin portal.
	AdminRoles = []Role{RoleSuperAdmin, RoleAdmin, RolePrincipal}

	rolePriorities = map[Role]int{
		RoleSuperAdmin: 50,
		RoleAdmin:      40,
		RolePrincipal:  30,
		RoleTeacher:    20,
		RoleStudent:    10,
	}

	// errors
	ErrUnauthenticated  = errors.New("not authenticated")
	ErrRoleNotPermitted = errors.New("unauthorized")
	ErrForbiddenScope   = errors.New("forbidden scope")
)

func (r Role) Valid() bool {
	_, ok := rolePriorities[r]
	return ok
}

func RolePriority(role Role) int {
	return rolePriorities[role]
}

// Identity is the resolved (id, role, schoolId) triple for the current
// request. It is produced once per request from the session token and
// never mutated.
type Identity struct {
	ID       string
	Role     Role
	SchoolID string
}

func (id Identity) IsZero() bool {
	return id.ID == "" || id.Role == ""
}

// IsAdminPortal reports whether the identity belongs to any admin role.
func (id Identity) IsAdminPortal() bool {
	for _, r := range AdminRoles {
		if id.Role == r {
			return true
		}
	}
	return false
}
