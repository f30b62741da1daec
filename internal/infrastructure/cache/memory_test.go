package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"academic-records/internal/config"
	"academic-records/internal/domain/user"
	interfaces "academic-records/internal/interfaces/infrastructure"
)

func TestMemoryCache_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	s := &user.Session{Token: "abc", UserID: 1, Login: "admin", Role: user.RoleAdmin}
	if err := c.SetSession(ctx, s, time.Hour); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got, err := c.GetSession(ctx, "abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.Login != "admin" {
		t.Errorf("Expected admin, got %s", got.Login)
	}

	n, _ := c.CountSessions(ctx)
	if n != 1 {
		t.Errorf("Expected 1 session, got %d", n)
	}

	now = now.Add(time.Hour)
	if _, err := c.GetSession(ctx, "abc"); !errors.Is(err, interfaces.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after ttl, got %v", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_ = c.SetSession(ctx, &user.Session{Token: "t1"}, time.Hour)
	if err := c.DeleteSession(ctx, "t1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := c.GetSession(ctx, "t1"); !errors.Is(err, interfaces.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	c, err := New(config.CacheConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("Expected *MemoryCache, got %T", c)
	}

	if _, err := New(config.CacheConfig{Type: "memcached"}); err == nil {
		t.Error("Expected error for unknown cache type")
	}
}
