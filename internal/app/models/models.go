package models

// Role is a role claim carried by an authenticated principal.
type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleStudent, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller of the current request. It is built
// from the bearer token by the auth middleware and handed to every handler.
type Principal struct {
	UserID int64
	Email  string
	Roles  []Role
}

// HasRole reports whether the principal carries the given role claim.
func (p *Principal) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
