package cmd

import (
	"context"
	"fmt"
	"time"

	"academic-records/internal/config"
	"academic-records/internal/domain/user"
	"academic-records/internal/infrastructure/cache"
	"academic-records/internal/infrastructure/queue"
	"academic-records/internal/infrastructure/repository"
	interfaces "academic-records/internal/interfaces/infrastructure"
	serviceInterfaces "academic-records/internal/interfaces/service"
	"academic-records/internal/service"
	"academic-records/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// application holds the stores and services shared by the commands.
type application struct {
	cfg      *config.Config
	repos    *repository.Repositories
	sessions interfaces.SessionCache
	audit    *service.AuditService
	auditor  serviceInterfaces.Auditor
	redis    *redis.Client

	records serviceInterfaces.RecordsService
	reports serviceInterfaces.ReportService
	users   user.UserService
	auth    user.AuthService
}

func newApplication(cfg *config.Config) (*application, error) {
	app := &application{
		cfg:     cfg,
		repos:   repository.NewRepositories(cfg.Storage),
		auditor: service.NopAuditor(),
	}

	sessions, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, err
	}
	app.sessions = sessions

	if cfg.Audit.Enabled {
		if err := app.initAudit(); err != nil {
			app.close()
			return nil, err
		}
	}

	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	app.records = service.NewRecordsService(app.repos, cfg.Enrollment.StrictReferences)
	app.reports = service.NewReportService(app.repos.Lessons, cfg.Storage.Lessons.Capacity)
	app.users = service.NewUserService(app.repos.Users)
	app.auth = service.NewAuthService(app.repos.Users, app.sessions, app.auditor, ttl)
	return app, nil
}

func (a *application) initAudit() error {
	authLog, err := logger.NewFileLogger(a.cfg.Audit.AuthLog)
	if err != nil {
		return fmt.Errorf("failed to open auth log: %w", err)
	}
	actionLog, err := logger.NewFileLogger(a.cfg.Audit.ActionLog)
	if err != nil {
		return fmt.Errorf("failed to open action log: %w", err)
	}

	var q interfaces.QueueService
	switch a.cfg.Audit.Queue {
	case "redis":
		var client redis.UniversalClient
		if rc, ok := a.sessions.(*cache.RedisCache); ok {
			client = rc.Client()
		} else {
			a.redis = redis.NewClient(&redis.Options{
				Addr:     a.cfg.Cache.Addr(),
				Password: a.cfg.Cache.Password,
				DB:       a.cfg.Cache.DB,
			})
			client = a.redis
		}
		q = queue.NewRedisQueue(client, a.cfg.Audit.Workers)
		logger.Info("Using Redis audit queue at %s", a.cfg.Cache.Addr())
	case "", "memory":
		q = queue.NewInMemoryQueue(a.cfg.Audit.BufferSize, a.cfg.Audit.Workers)
	default:
		return fmt.Errorf("unknown audit queue %q", a.cfg.Audit.Queue)
	}

	a.audit = service.NewAuditService(q, authLog, actionLog)
	a.audit.Start()
	a.auditor = a.audit
	return nil
}

// prepare creates missing data files and the default admin account.
func (a *application) prepare(ctx context.Context) ([]string, error) {
	created, err := a.repos.Touch(ctx)
	if err != nil {
		return created, err
	}
	if err := a.auth.EnsureDefaultAdmin(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// listLimit is the largest configured store capacity.
func (a *application) listLimit() int {
	s := a.cfg.Storage
	limit := 0
	for _, e := range []config.EntityStorageConfig{s.Students, s.Classes, s.Lessons, s.Enrollments, s.Activities, s.Users} {
		if e.Capacity > limit {
			limit = e.Capacity
		}
	}
	return limit
}

func (a *application) close() {
	if a.audit != nil {
		a.audit.Stop()
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.sessions != nil {
		a.sessions.Close()
	}
}
