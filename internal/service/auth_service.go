package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"academic-records/internal/domain/user"
	infrastructure "academic-records/internal/interfaces/infrastructure"
	serviceInterfaces "academic-records/internal/interfaces/service"
	"academic-records/pkg/apperror"
	"academic-records/pkg/logger"

	"github.com/google/uuid"
)

type authService struct {
	users    infrastructure.UserRepository
	sessions infrastructure.SessionCache
	audit    serviceInterfaces.Auditor
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService authenticates against the user store and keeps sessions in
// the given cache for ttl.
func NewAuthService(users infrastructure.UserRepository, sessions infrastructure.SessionCache, audit serviceInterfaces.Auditor, ttl time.Duration) user.AuthService {
	if audit == nil {
		audit = NopAuditor()
	}
	return &authService{
		users:    users,
		sessions: sessions,
		audit:    audit,
		ttl:      ttl,
		now:      time.Now,
	}
}

var errBadCredentials = fmt.Errorf("%w: invalid login or password", apperror.ErrUnauthorized)

func (s *authService) Authenticate(ctx context.Context, login, password string) (*user.Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: login and password are required", apperror.ErrInvalidArgument)
	}

	u, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.audit.LoginAttempt(ctx, login, false, "unknown login")
			return nil, errBadCredentials
		}
		return nil, err
	}

	if !u.Active {
		s.audit.LoginAttempt(ctx, login, false, "inactive user")
		return nil, errBadCredentials
	}
	if !passwordMatches(u.PasswordHash, password) {
		s.audit.LoginAttempt(ctx, login, false, "wrong password")
		return nil, errBadCredentials
	}

	now := s.now()
	session := &user.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		Login:     u.Login,
		Role:      u.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessions.SetSession(ctx, session, s.ttl); err != nil {
		logger.Error("Failed to store session for %s: %v", login, err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.audit.LoginAttempt(ctx, login, true, "")
	logger.Info("User %s logged in as %s", u.Login, u.Role)
	return session, nil
}

// ValidateSession returns the session for token while it is unexpired and
// its user still exists and is active.
func (s *authService) ValidateSession(ctx context.Context, token string) (*user.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: not logged in", apperror.ErrUnauthorized)
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, infrastructure.ErrCacheMiss) {
			return nil, fmt.Errorf("%w: login again", apperror.ErrSessionExpired)
		}
		return nil, err
	}

	if session.Expired(s.now()) {
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, fmt.Errorf("%w: login again", apperror.ErrSessionExpired)
	}

	u, err := s.users.FindByKey(ctx, session.UserID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	if err != nil || !u.Active {
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, fmt.Errorf("%w: user is no longer active", apperror.ErrUnauthorized)
	}

	return session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, token)
}

func (s *authService) HasPermission(session *user.Session, action user.Action) bool {
	if session == nil {
		return false
	}
	return session.Role.Can(action)
}

func (s *authService) ChangePassword(ctx context.Context, id int, oldPassword, newPassword string) error {
	u, err := s.users.FindByKey(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if !passwordMatches(u.PasswordHash, oldPassword) {
		return fmt.Errorf("%w: current password does not match", apperror.ErrUnauthorized)
	}
	return s.setPassword(ctx, &u, newPassword)
}

func (s *authService) ResetPassword(ctx context.Context, id int, newPassword string) error {
	u, err := s.users.FindByKey(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	return s.setPassword(ctx, &u, newPassword)
}

func (s *authService) setPassword(ctx context.Context, u *user.User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	logger.Info("Password changed for user %s", u.Login)
	return nil
}

// EnsureDefaultAdmin creates the admin account when no user has that login.
func (s *authService) EnsureDefaultAdmin(ctx context.Context) error {
	exists, err := s.users.LoginExists(ctx, user.DefaultAdmin)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := hashPassword(user.DefaultSecret)
	if err != nil {
		return err
	}

	admin := &user.User{
		Login:        user.DefaultAdmin,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		Active:       true,
	}
	if _, err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, apperror.ErrDuplicateKey) {
			return nil
		}
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	logger.Warn("Created default user %q; change its password", user.DefaultAdmin)
	return nil
}
