package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/titandealer/portal/internal/core/domain"
	"github.com/titandealer/portal/internal/core/port"
	"github.com/titandealer/portal/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Subject   string           `json:"subject,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, subject string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		Subject:   subject,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountRegistered publishes portal.account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		Username     string         `json:"username"`
		MaskedEmail  string         `json:"masked_email"`
		Status       string         `json:"status"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		Username:     event.Username,
		MaskedEmail:  event.MaskedEmail,
		Status:       string(event.Status),
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.registered", event.Username, event.RegisteredAt, payload)
}

// PublishPasswordChanged publishes portal.account.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		Username  string         `json:"username"`
		ChangedAt time.Time      `json:"changed_at"`
		Source    string         `json:"source"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		Username:  event.Username,
		ChangedAt: event.ChangedAt.UTC(),
		Source:    event.Source,
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.password.changed", event.Username, event.ChangedAt, payload)
}

// PublishIncidentReported publishes portal.incident.reported events.
func (p *EventPublisher) PublishIncidentReported(ctx context.Context, event domain.IncidentReportedEvent) error {
	payload := struct {
		IncidentID string    `json:"incident_id"`
		DealerCode string    `json:"dealer_code"`
		Region     string    `json:"region"`
		Issue      string    `json:"issue"`
		ReportedAt time.Time `json:"reported_at"`
	}{
		IncidentID: event.IncidentID,
		DealerCode: event.DealerCode,
		Region:     event.Region,
		Issue:      event.Issue,
		ReportedAt: event.ReportedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "incident.reported", event.DealerCode, event.ReportedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
