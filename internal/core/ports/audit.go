package ports

import (
	"context"

	"github.com/tunelar/backend/internal/core/domain"
)

// AuditRecorder accepts security events for asynchronous persistence.
// Record must never block request handling; implementations may drop events
// under backpressure.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// LoginThrottle limits failed login attempts per credential alias.
type LoginThrottle interface {
	// Blocked reports whether the alias has exceeded the failure budget.
	Blocked(ctx context.Context, alias string) (bool, error)
	// RecordFailure counts one failed attempt against the alias.
	RecordFailure(ctx context.Context, alias string) error
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, alias string) error
}
