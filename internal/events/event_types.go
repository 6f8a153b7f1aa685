package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginSucceeded EventType = "login_succeeded"
	EventLoginFailed    EventType = "login_failed"
	EventUserRegistered EventType = "user_registered"
	EventUserUpdated    EventType = "user_updated"
	EventUserDeleted    EventType = "user_deleted"
)

// LoginFailureReason is kept off the wire; clients only ever see one message.
type LoginFailureReason string

const (
	ReasonUnknownUser   LoginFailureReason = "unknown_user"
	ReasonWrongPassword LoginFailureReason = "wrong_password"
	ReasonThrottled     LoginFailureReason = "throttled"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Username  string      `json:"username"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// LoginFailedPayload payload.
type LoginFailedPayload struct {
	Reason LoginFailureReason `json:"reason"`
}

// UserUpdatedPayload payload.
type UserUpdatedPayload struct {
	PreviousUsername string `json:"previous_username,omitempty"`
	PasswordChanged  bool   `json:"password_changed"`
}
