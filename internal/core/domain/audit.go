package domain

import "time"

// Audit actions recorded for security-relevant operations.
const (
	AuditLoginSucceeded  = "login_succeeded"
	AuditLoginFailed     = "login_failed"
	AuditUserRegistered  = "user_registered"
	AuditRoleChanged     = "role_changed"
	AuditUsernameChanged = "username_changed"
	AuditUserDeleted     = "user_deleted"
)

// AuditEvent is an append-only record of a security-relevant operation.
// Actor is the acting credential alias ("system" for bootstrap), Target the
// affected user or alias, Detail a short free-form note.
type AuditEvent struct {
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	Target     string    `json:"target,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
