package domain

import "time"

// Role is the coarse authorization level of a user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a workshop staff account
type User struct {
	ID           string // UUID
	Email        string // Unique email address
	Name         string
	PasswordHash string // Bcrypt hash (never returned in API)
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionUser is the non-secret identity carried by the session cookie.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Session returns the identity fields that are safe to hand to clients.
func (u *User) Session() SessionUser {
	return SessionUser{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

// IsAdmin reports whether the session belongs to an administrator.
func (s SessionUser) IsAdmin() bool {
	return s.Role == RoleAdmin
}
