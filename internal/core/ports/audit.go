package ports

import (
	"context"

	"github.com/retailhub/backoffice/internal/core/domain"
)

// AuditRepository persists audit events to the auth_events collection.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
}

// AuditService records a single audit event.
type AuditService interface {
	Record(ctx context.Context, event domain.AuthEvent) error
}

// AuditSink accepts audit events without blocking the caller.
type AuditSink interface {
	Enqueue(event domain.AuthEvent)
}

// LoginLimiter tracks consecutive failed logins per identity.
type LoginLimiter interface {
	// Blocked reports whether further attempts for key must be refused.
	Blocked(ctx context.Context, key string) (bool, error)
	// Fail records a failed attempt for key.
	Fail(ctx context.Context, key string) error
	// Reset clears the failure count for key.
	Reset(ctx context.Context, key string) error
}
