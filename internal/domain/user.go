package domain

import "context"

// Role is the coarse permission level stored with a user.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// ParseRole maps a stored role string to a Role. Anything unrecognised is
// treated as RoleUser, which is also the default for new accounts.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// User represents a staff account. Password is opaque and store-managed.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      Role
}

// UserRepository exposes read-only user lookups.
type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
