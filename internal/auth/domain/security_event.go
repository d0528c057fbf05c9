package domain

import "time"

// EventType is the closed enumeration of auth-relevant occurrences recorded
// for audit. New values are additive; existing ones are never renamed
// because stored events reference them.
type EventType string

const (
	EventLoginSuccess          EventType = "login_success"
	EventLoginFailure          EventType = "login_failure"
	EventRateLimitExceeded     EventType = "rate_limit_exceeded"
	EventTokenInvalid          EventType = "token_invalid"
	EventTokenExpired          EventType = "token_expired"
	EventTokenRefreshed        EventType = "token_refreshed"
	EventPasswordResetRequest  EventType = "password_reset_requested"
	EventPasswordResetSuccess  EventType = "password_reset_succeeded"
	EventPasswordResetFailure  EventType = "password_reset_failed"
	EventAuthorizationFailure  EventType = "authorization_failure"
	EventRegistration          EventType = "registration"
)

// SecurityEvent is an immutable audit record. Write-once: this subsystem
// never mutates or deletes individual events (housekeeping prunes whole age
// ranges).
type SecurityEvent struct {
	ID        string
	Type      EventType
	ClientID  string  // client identifier, usually the remote IP
	UserID    *string // nullable: pre-authentication events have no user
	Metadata  string  // free-form JSON detail
	CreatedAt time.Time
}
