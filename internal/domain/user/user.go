package user

import (
	"fmt"
	"strings"
	"time"

	"academic-records/internal/domain/academic"
	"academic-records/pkg/apperror"
)

const (
	MaxLoginLen   = 49
	MaxHashLen    = 64
	MinPassword   = 6
	MaxPassword   = 49
	DefaultAdmin  = "admin"
	DefaultSecret = "admin123"
)

// Role is the user type stored in the Tipo column
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleProfessor Role = "PROFESSOR"
	RoleStudent   Role = "ALUNO"
)

// ParseRole accepts a role name in any case
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleProfessor:
		return RoleProfessor, nil
	case RoleStudent:
		return RoleStudent, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", apperror.ErrValidationFailed, s)
}

// User represents an account allowed to use the system.
// Removal only clears Active.
type User struct {
	ID           int    `json:"id" validate:"gt=0"`
	Login        string `json:"login" validate:"required,login"`
	PasswordHash string `json:"-" validate:"required"`
	Role         Role   `json:"role" validate:"oneof=ADMIN PROFESSOR ALUNO"`
	Active       bool   `json:"active"`
}

func (u *User) Normalize() {
	u.Login = academic.Truncate(u.Login, MaxLoginLen)
}

// CreateUserRequest represents the request to create a user
type CreateUserRequest struct {
	Login    string `json:"login" validate:"required,login"`
	Password string `json:"password" validate:"required,min=6,max=49"`
	Role     Role   `json:"role" validate:"required,oneof=ADMIN PROFESSOR ALUNO"`
}

// UpdateUserRequest represents the request to update a user
type UpdateUserRequest struct {
	Login  *string `json:"login,omitempty" validate:"omitempty,login"`
	Role   *Role   `json:"role,omitempty" validate:"omitempty,oneof=ADMIN PROFESSOR ALUNO"`
	Active *bool   `json:"active,omitempty"`
}

// Session is issued on a successful login
type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	Login     string    `json:"login"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its deadline at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
