package port

import (
	"context"

	"github.com/titandealer/portal/internal/core/domain"
)

// EventPublisher fans out audit events to downstream consumers.
// Implementations must be safe for concurrent use and must not block the
// request path beyond enqueueing.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishIncidentReported(ctx context.Context, event domain.IncidentReportedEvent) error
}
