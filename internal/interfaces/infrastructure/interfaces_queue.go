package interfaces

import (
	"context"
	"time"
)

type AuditKind string

const (
	AuditKindLogin  AuditKind = "login"
	AuditKindAction AuditKind = "action"
)

// AuditEvent is one line of the audit trail.
type AuditEvent struct {
	Kind      AuditKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Login     string    `json:"login"`
	Role      string    `json:"role,omitempty"`
	Action    string    `json:"action,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Success   bool      `json:"success"`
}

// AuditHandler consumes events taken off the queue.
type AuditHandler interface {
	HandleAuditEvent(ctx context.Context, event AuditEvent) error
}

type QueueService interface {
	EnqueueAudit(ctx context.Context, event AuditEvent) error
	DequeueAudit(ctx context.Context) (*AuditEvent, error)
	Len(ctx context.Context) (int, error)
	SetHandler(handler AuditHandler)
	StartWorkers()
	StopWorkers()
}
