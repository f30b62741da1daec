package interfaces

import (
	"context"
	"errors"
	"time"

	"academic-records/internal/domain/user"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// SessionCache keeps login sessions by token.
type SessionCache interface {
	SetSession(ctx context.Context, session *user.Session, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*user.Session, error)
	DeleteSession(ctx context.Context, token string) error
	CountSessions(ctx context.Context) (int, error)

	Health(ctx context.Context) error
	Close() error
}
