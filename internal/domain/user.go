package domain

import "strings"

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User represents an account of the storefront (administrator or customer).
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"` // Unique, compared case-insensitively
	Name      string `json:"name"`
	Password  string `json:"password"` // Hash only; the repository never hashes
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// EntityID returns the user's identifier.
func (u User) EntityID() string { return u.ID }

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasEmail reports whether the user owns the given address.
func (u *User) HasEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(u.Email), strings.TrimSpace(email))
}

// UserPatch holds the fields an update may change. Nil fields are left untouched.
type UserPatch struct {
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Name     *string `json:"name,omitempty" binding:"omitempty,min=1"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=8"`
	Role     *Role   `json:"role,omitempty" binding:"omitempty,oneof=admin customer"`
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = strings.TrimSpace(*p.Email)
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}
