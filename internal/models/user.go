package models

import (
	"strings"
	"time"
)

// Role is the platform role carried in the JWT and checked by the gateway.
type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
	RoleUser    Role = "USER"
)

// ParseRole maps a request-supplied role string to a known Role.
// Unknown or empty values fall back to RoleUser.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TEACHER":
		return RoleTeacher
	case "STUDENT":
		return RoleStudent
	default:
		return RoleUser
	}
}

// Equals compares roles case-insensitively.
func (r Role) Equals(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

// User is a platform account. Password holds the bcrypt hash, never plaintext.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPublic is the user shape safe to return to clients.
type UserPublic struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// ToPublic strips credential fields.
func (u *User) ToPublic() UserPublic {
	return UserPublic{ID: u.ID, Username: u.Username, Role: u.Role}
}
