package model

import "strings"

// Role is the coarse permission class of a user.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return r, true
	}
	return "", false
}

// Identity is the already-authenticated caller of a core operation.  It
// is built by the transport layer (from a verified bearer token) and
// passed explicitly into every call; the core never reads request or
// session state on its own.
type Identity struct {
	UserID uint64 `json:"user_id"`
	Role   Role   `json:"role"`
}

// IsAdmin reports whether the caller may decide and clear reservations.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }
