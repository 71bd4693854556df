package domain

import "time"

// AuthEventKind enumerates the audited authentication actions.
type AuthEventKind string

const (
	EventLoginSucceeded AuthEventKind = "login_succeeded"
	EventLoginFailed    AuthEventKind = "login_failed"
	EventLoginThrottled AuthEventKind = "login_throttled"
	EventUserRegistered AuthEventKind = "user_registered"
	EventUserCreated    AuthEventKind = "user_created"
	EventUserUpdated    AuthEventKind = "user_updated"
	EventUserDeleted    AuthEventKind = "user_deleted"
)

// AuthEvent is an append-only audit record of an authentication action.
type AuthEvent struct {
	ID         string
	Kind       AuthEventKind
	Subject    string // email of the affected account
	ActorID    string // empty for unauthenticated actions
	Role       Role
	OccurredAt time.Time
}
