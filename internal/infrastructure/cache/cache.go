package cache

import (
	"context"
	"fmt"
	"time"

	"academic-records/internal/config"
	interfaces "academic-records/internal/interfaces/infrastructure"
	"academic-records/pkg/logger"
)

// New returns the session cache selected by cfg.Type.
func New(cfg config.CacheConfig) (interfaces.SessionCache, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryCache(), nil
	case "redis":
		rc := NewRedisCache(cfg.Addr(), cfg.Password, cfg.DB)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rc.Health(ctx); err != nil {
			rc.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
		}

		logger.Info("Connected to Redis at %s", cfg.Addr())
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
