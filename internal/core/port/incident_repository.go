package port

import (
	"context"

	"github.com/titandealer/portal/internal/core/domain"
)

// IncidentRepository exposes persistence behavior for incident reports.
type IncidentRepository interface {
	Create(ctx context.Context, incident domain.Incident) error
	List(ctx context.Context) ([]domain.Incident, error)
	Delete(ctx context.Context, id string) error
	SetChecked(ctx context.Context, id string, checked bool) error
}
