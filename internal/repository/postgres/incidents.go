package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/titandealer/portal/internal/core/domain"
	"github.com/titandealer/portal/internal/repository"
)

const incidentsTable = "incidents"

var incidentColumns = []string{
	"id",
	"dealer_code",
	"location",
	"region",
	"issue",
	"email",
	"contact_no",
	"screenshot",
	"reported_at",
	"checked",
	"created_at",
}

// IncidentRepository persists incident reports in PostgreSQL.
type IncidentRepository struct {
	db pgExecutor
	sb sq.StatementBuilderType
}

// NewIncidentRepository constructs an IncidentRepository backed by the given
// executor.
func NewIncidentRepository(db pgExecutor) *IncidentRepository {
	return &IncidentRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts a new incident row.
func (r *IncidentRepository) Create(ctx context.Context, incident domain.Incident) error {
	query, args, err := r.sb.
		Insert(incidentsTable).
		Columns(incidentColumns...).
		Values(
			incident.ID,
			incident.DealerCode,
			incident.Location,
			incident.Region,
			incident.Issue,
			incident.Email,
			incident.ContactNo,
			incident.Screenshot,
			incident.ReportedAt,
			incident.Checked,
			incident.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert incident query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert incident: %w", err)
	}

	return nil
}

// List returns all incidents, newest first.
func (r *IncidentRepository) List(ctx context.Context) ([]domain.Incident, error) {
	query, args, err := r.sb.
		Select(incidentColumns...).
		From(incidentsTable).
		OrderBy("reported_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list incidents query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]domain.Incident, 0)
	for rows.Next() {
		var incident domain.Incident
		err := rows.Scan(
			&incident.ID,
			&incident.DealerCode,
			&incident.Location,
			&incident.Region,
			&incident.Issue,
			&incident.Email,
			&incident.ContactNo,
			&incident.Screenshot,
			&incident.ReportedAt,
			&incident.Checked,
			&incident.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incident rows: %w", err)
	}

	return incidents, nil
}

// Delete removes an incident by id.
func (r *IncidentRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.sb.
		Delete(incidentsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete incident query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetChecked flips the triage flag on an incident.
func (r *IncidentRepository) SetChecked(ctx context.Context, id string, checked bool) error {
	query, args, err := r.sb.
		Update(incidentsTable).
		Set("checked", checked).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update incident query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update incident checked flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
