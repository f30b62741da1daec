package user

import "context"

// UserService defines the interface for user business logic
type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
	GetUser(ctx context.Context, id int) (*User, error)
	GetUserByLogin(ctx context.Context, login string) (*User, error)
	UpdateUser(ctx context.Context, id int, req *UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, id int) error
	ListUsers(ctx context.Context, limit int) ([]User, error)
}

// AuthService defines login, session and permission checks
type AuthService interface {
	Authenticate(ctx context.Context, login, password string) (*Session, error)
	ValidateSession(ctx context.Context, token string) (*Session, error)
	Logout(ctx context.Context, token string) error
	HasPermission(session *Session, action Action) bool
	ChangePassword(ctx context.Context, id int, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, id int, newPassword string) error
	EnsureDefaultAdmin(ctx context.Context) error
}
