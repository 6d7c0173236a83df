package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The password hash never leaves the repository and handler
// layers; it is tagged so that it is never serialized.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – student, faculty or admin.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `json:"id"`         // users.id
	Name         string    `json:"name"`       // users.name
	Email        string    `json:"email"`      // users.email
	PasswordHash string    `json:"-"`          // users.password_hash
	Role         Role      `json:"role"`       // users.role
	CreatedAt    time.Time `json:"created_at"` // users.created_at
}

// Field is one optional member of a patch.  The zero value means "leave
// unchanged"; Set wraps a new value.  A set field holding the zero value
// of T is a real change, which a nil pointer could not express.
type Field[T any] struct {
	value T
	set   bool
}

// Set returns a Field that changes the target to v.
func Set[T any](v T) Field[T] { return Field[T]{value: v, set: true} }

// Get returns the new value and whether the field carries a change.
func (f Field[T]) Get() (T, bool) { return f.value, f.set }

// IsSet reports whether the field carries a change.
func (f Field[T]) IsSet() bool { return f.set }

// UserPatch describes a partial update of a user.  Fields left at their
// zero value are not touched.
type UserPatch struct {
	Name     Field[string]
	Email    Field[string]
	Role     Field[Role]
	Password Field[string] // plain text; hashed by the repository
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return !p.Name.IsSet() && !p.Email.IsSet() && !p.Role.IsSet() && !p.Password.IsSet()
}
