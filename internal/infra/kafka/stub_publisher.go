package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/titandealer/portal/internal/core/domain"
	"github.com/titandealer/portal/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, subject string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("subject", subject),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountRegistered logs account.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	payload := map[string]any{
		"username":      event.Username,
		"masked_email":  event.MaskedEmail,
		"status":        event.Status,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("account.registered", event.Username, event.RegisteredAt, payload)
	return nil
}

// PublishPasswordChanged logs account.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"username":   event.Username,
		"changed_at": event.ChangedAt,
		"source":     event.Source,
		"metadata":   event.Metadata,
	}
	p.logEvent("account.password.changed", event.Username, event.ChangedAt, payload)
	return nil
}

// PublishIncidentReported logs incident.reported events.
func (p *StubPublisher) PublishIncidentReported(_ context.Context, event domain.IncidentReportedEvent) error {
	payload := map[string]any{
		"incident_id": event.IncidentID,
		"dealer_code": event.DealerCode,
		"region":      event.Region,
		"issue":       event.Issue,
		"reported_at": event.ReportedAt,
	}
	p.logEvent("incident.reported", event.DealerCode, event.ReportedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
