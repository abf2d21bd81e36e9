// Package event publishes auth lifecycle events to Kafka. Publishing is
// best effort; a broker outage never fails the request that triggered it.
package event

import (
	"context"
	"log/slog"

	"github.com/Haarush2006/OpsBoard-BE/internal/domain"
	"github.com/Haarush2006/OpsBoard-BE/pkg/kafka"
	"github.com/Haarush2006/OpsBoard-BE/pkg/logger"
)

const (
	source = "auth-service"

	TopicUserRegistered  = "auth.user.registered"
	TopicUserLoggedIn    = "auth.user.logged_in"
	TopicSessionsRevoked = "auth.sessions.revoked"

	TypeUserRegistered  = "user.registered"
	TypeUserLoggedIn    = "user.logged_in"
	TypeSessionsRevoked = "sessions.revoked"
)

// Publisher is the subset of kafka.Producer the event emitter needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// Emitter builds and publishes auth events.
type Emitter struct {
	producer Publisher
	logger   *slog.Logger
}

func NewEmitter(producer Publisher, log *slog.Logger) *Emitter {
	return &Emitter{producer: producer, logger: log}
}

type userPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type revokedPayload struct {
	UserID   string `json:"user_id"`
	Sessions int64  `json:"sessions"`
}

func (e *Emitter) UserRegistered(ctx context.Context, user *domain.User) {
	e.emit(ctx, TopicUserRegistered, TypeUserRegistered, user.ID, userPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
}

func (e *Emitter) UserLoggedIn(ctx context.Context, user *domain.User) {
	e.emit(ctx, TopicUserLoggedIn, TypeUserLoggedIn, user.ID, userPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
}

func (e *Emitter) SessionsRevoked(ctx context.Context, userID string, sessions int64) {
	e.emit(ctx, TopicSessionsRevoked, TypeSessionsRevoked, userID, revokedPayload{
		UserID:   userID,
		Sessions: sessions,
	})
}

func (e *Emitter) emit(ctx context.Context, topic, eventType, aggregateID string, payload any) {
	if e.producer == nil {
		return
	}

	ev, err := kafka.NewEvent(eventType, aggregateID, "user", source, payload)
	if err != nil {
		e.logger.ErrorContext(ctx, "build event", "event_type", eventType, "error", err)
		return
	}
	if reqID := logger.RequestIDFromContext(ctx); reqID != "" {
		ev = ev.WithRequestID(reqID)
	}

	if err := e.producer.Publish(ctx, topic, ev); err != nil {
		e.logger.ErrorContext(ctx, "publish event", "topic", topic, "event_type", eventType, "error", err)
	}
}
