package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/movie-api/internal/events"
)

// AuditService writes account and authentication events to the server log.
// It is the only place where the reason for a failed login is recorded.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventLoginSucceeded, a.handleLoginSucceeded)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleAccountEvent)
	a.dispatcher.Subscribe(events.EventUserUpdated, a.handleAccountEvent)
	a.dispatcher.Subscribe(events.EventUserDeleted, a.handleAccountEvent)
}

func (a *AuditService) handleLoginSucceeded(_ context.Context, event events.Event) error {
	a.logger.Info("LoginSucceeded",
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.String("username", event.Username))
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	reason := ""
	if payload, ok := event.Payload.(events.LoginFailedPayload); ok {
		reason = string(payload.Reason)
	}
	a.logger.Warn("LoginFailed",
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.String("username", event.Username),
		zap.String("reason", reason))
	return nil
}

func (a *AuditService) handleAccountEvent(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.String("username", event.Username),
		zap.Any("payload", event.Payload))
	return nil
}
