package service

import (
	"context"
	"fmt"

	"academic-records/internal/domain/user"
	infrastructure "academic-records/internal/interfaces/infrastructure"
	"academic-records/pkg/logger"
	"academic-records/pkg/validator"
)

// userService implements the UserService interface
type userService struct {
	userRepo infrastructure.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo infrastructure.UserRepository) user.UserService {
	return &userService{
		userRepo: userRepo,
	}
}

// CreateUser creates a new active user with a hashed password
func (s *userService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	logger.Info("Creating user with login: %s", req.Login)

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Login:        req.Login,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
	}

	if _, err := s.userRepo.Create(ctx, u); err != nil {
		logger.Error("Failed to create user: %v", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User created successfully with ID: %d", u.ID)
	return u, nil
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, id int) (*user.User, error) {
	logger.Debug("Getting user with ID: %d", id)

	u, err := s.userRepo.FindByKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetUserByLogin retrieves a user by login
func (s *userService) GetUserByLogin(ctx context.Context, login string) (*user.User, error) {
	logger.Debug("Getting user with login: %s", login)

	u, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UpdateUser updates an existing user
func (s *userService) UpdateUser(ctx context.Context, id int, req *user.UpdateUserRequest) (*user.User, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	logger.Info("Updating user with ID: %d", id)

	u, err := s.userRepo.FindByKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Login != nil {
		u.Login = *req.Login
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Active != nil {
		u.Active = *req.Active
	}

	// The repository rejects a login already used by another user.
	if err := s.userRepo.Update(ctx, &u); err != nil {
		logger.Error("Failed to update user: %v", err)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logger.Info("User updated successfully with ID: %d", u.ID)
	return &u, nil
}

// DeleteUser deactivates a user
func (s *userService) DeleteUser(ctx context.Context, id int) error {
	logger.Info("Deleting user with ID: %d", id)

	if err := s.userRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete user: %v", err)
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logger.Info("User deleted successfully with ID: %d", id)
	return nil
}

// ListUsers retrieves up to limit users
func (s *userService) ListUsers(ctx context.Context, limit int) ([]user.User, error) {
	logger.Debug("Listing users with limit: %d", limit)

	users, err := s.userRepo.List(ctx, limit)
	if err != nil {
		logger.Error("Failed to list users: %v", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
