package service

import (
	"context"
	"fmt"
	"time"

	"academic-records/internal/domain/user"
	infrastructure "academic-records/internal/interfaces/infrastructure"
	serviceInterfaces "academic-records/internal/interfaces/service"
	"academic-records/pkg/logger"

	"github.com/sirupsen/logrus"
)

// AuditService queues audit events and writes them to the auth and action
// trails from the queue workers.
type AuditService struct {
	queue     infrastructure.QueueService
	authLog   *logrus.Logger
	actionLog *logrus.Logger
	now       func() time.Time
}

// NewAuditService wires the trails to q and registers itself as q's handler.
func NewAuditService(q infrastructure.QueueService, authLog, actionLog *logrus.Logger) *AuditService {
	a := &AuditService{
		queue:     q,
		authLog:   authLog,
		actionLog: actionLog,
		now:       time.Now,
	}
	q.SetHandler(a)
	return a
}

func (a *AuditService) Start() { a.queue.StartWorkers() }

// Stop flushes queued events and stops the workers.
func (a *AuditService) Stop() { a.queue.StopWorkers() }

func (a *AuditService) LoginAttempt(ctx context.Context, login string, success bool, detail string) {
	a.enqueue(ctx, infrastructure.AuditEvent{
		Kind:      infrastructure.AuditKindLogin,
		Timestamp: a.now(),
		Login:     login,
		Detail:    detail,
		Success:   success,
	})
}

func (a *AuditService) Action(ctx context.Context, session *user.Session, action, detail string, success bool) {
	event := infrastructure.AuditEvent{
		Kind:      infrastructure.AuditKindAction,
		Timestamp: a.now(),
		Action:    action,
		Detail:    detail,
		Success:   success,
	}
	if session != nil {
		event.Login = session.Login
		event.Role = string(session.Role)
	}
	a.enqueue(ctx, event)
}

func (a *AuditService) enqueue(ctx context.Context, event infrastructure.AuditEvent) {
	if err := a.queue.EnqueueAudit(ctx, event); err != nil {
		logger.WithFields(logrus.Fields{
			"kind":   event.Kind,
			"login":  event.Login,
			"action": event.Action,
		}).Warnf("Audit event dropped: %v", err)
	}
}

var _ serviceInterfaces.Auditor = (*AuditService)(nil)

// HandleAuditEvent writes one event to its trail.
func (a *AuditService) HandleAuditEvent(ctx context.Context, event infrastructure.AuditEvent) error {
	outcome := "SUCESSO"
	if !event.Success {
		outcome = "FALHA"
	}

	switch event.Kind {
	case infrastructure.AuditKindLogin:
		a.authLog.WithFields(logrus.Fields{
			"at":      event.Timestamp.Format(time.RFC3339),
			"login":   event.Login,
			"outcome": outcome,
		}).Info(nonEmpty(event.Detail, "LOGIN"))
	case infrastructure.AuditKindAction:
		a.actionLog.WithFields(logrus.Fields{
			"at":      event.Timestamp.Format(time.RFC3339),
			"login":   event.Login,
			"role":    event.Role,
			"action":  event.Action,
			"outcome": outcome,
		}).Info(nonEmpty(event.Detail, event.Action))
	default:
		return fmt.Errorf("unknown audit event kind %q", event.Kind)
	}
	return nil
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// nopAuditor is used when auditing is disabled.
type nopAuditor struct{}

func (nopAuditor) LoginAttempt(context.Context, string, bool, string)          {}
func (nopAuditor) Action(context.Context, *user.Session, string, string, bool) {}

// NopAuditor returns an Auditor that records nothing.
func NopAuditor() serviceInterfaces.Auditor { return nopAuditor{} }
