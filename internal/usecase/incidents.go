package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/titandealer/portal/internal/core/domain"
	"github.com/titandealer/portal/internal/core/port"
	"github.com/titandealer/portal/internal/repository"
)

var (
	dealerCodePattern = regexp.MustCompile(`^\d{7}$`)
	contactNoPattern  = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// IncidentService owns incident intake and the admin triage operations.
type IncidentService struct {
	incidents port.IncidentRepository
	events    port.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewIncidentService constructs an IncidentService.
func NewIncidentService(incidents port.IncidentRepository, events port.EventPublisher, log *zap.Logger) *IncidentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &IncidentService{
		incidents: incidents,
		events:    events,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock overrides the clock used for timestamps (primarily for tests).
func (s *IncidentService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// SubmitIncidentInput carries the help-form fields.
type SubmitIncidentInput struct {
	DealerCode string
	Location   string
	Region     string
	Issue      string
	Email      string
	ContactNo  string
	Screenshot *string
	ReportedAt time.Time
}

// Submit validates and persists a new incident. Format rules previously left
// to the browser form are enforced here as well so direct API callers cannot
// store malformed rows. Nothing is written when validation fails.
func (s *IncidentService) Submit(ctx context.Context, input SubmitIncidentInput) (string, error) {
	dealerCode := strings.TrimSpace(input.DealerCode)
	issue := strings.TrimSpace(input.Issue)
	email := strings.TrimSpace(input.Email)

	if dealerCode == "" || issue == "" || email == "" {
		return "", fmt.Errorf("%w: dealerCode, issue and email are required", ErrValidation)
	}
	if !dealerCodePattern.MatchString(dealerCode) {
		return "", fmt.Errorf("%w: dealer code must be a 7-digit number", ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: email address is malformed", ErrValidation)
	}
	contactNo := strings.TrimSpace(input.ContactNo)
	if contactNo != "" && !contactNoPattern.MatchString(contactNo) {
		return "", fmt.Errorf("%w: contact number must be a 10-digit mobile number", ErrValidation)
	}

	now := s.now().UTC()
	reportedAt := input.ReportedAt
	if reportedAt.IsZero() {
		reportedAt = now
	}

	incident := domain.Incident{
		ID:         uuid.NewString(),
		DealerCode: dealerCode,
		Location:   strings.TrimSpace(input.Location),
		Region:     strings.TrimSpace(input.Region),
		Issue:      issue,
		Email:      email,
		ContactNo:  contactNo,
		Screenshot: input.Screenshot,
		ReportedAt: reportedAt.UTC(),
		Checked:    false,
		CreatedAt:  now,
	}

	if err := s.incidents.Create(ctx, incident); err != nil {
		return "", fmt.Errorf("persist incident: %w", err)
	}

	s.publishReported(ctx, incident)

	s.logger.Info("incident submitted",
		zap.String("incident_id", incident.ID),
		zap.String("dealer_code", incident.DealerCode),
		zap.String("region", incident.Region),
	)

	return incident.ID, nil
}

// List returns all incidents, newest first.
func (s *IncidentService) List(ctx context.Context) ([]domain.Incident, error) {
	incidents, err := s.incidents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return incidents, nil
}

// Delete removes an incident by id.
func (s *IncidentService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: incident id is required", ErrValidation)
	}

	if err := s.incidents.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrIncidentNotFound
		}
		return fmt.Errorf("delete incident: %w", err)
	}

	s.logger.Info("incident deleted", zap.String("incident_id", id))

	return nil
}

// SetChecked flips the triage flag. The UI only ever marks incidents checked
// but the operation accepts both directions.
func (s *IncidentService) SetChecked(ctx context.Context, id string, checked bool) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: incident id is required", ErrValidation)
	}

	if err := s.incidents.SetChecked(ctx, id, checked); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrIncidentNotFound
		}
		return fmt.Errorf("update incident checked flag: %w", err)
	}

	s.logger.Info("incident checked flag updated",
		zap.String("incident_id", id),
		zap.Bool("checked", checked),
	)

	return nil
}

func (s *IncidentService) publishReported(ctx context.Context, incident domain.Incident) {
	if s.events == nil {
		return
	}

	event := domain.IncidentReportedEvent{
		EventID:    uuid.NewString(),
		IncidentID: incident.ID,
		DealerCode: incident.DealerCode,
		Region:     incident.Region,
		Issue:      incident.Issue,
		ReportedAt: incident.ReportedAt,
	}

	if err := s.events.PublishIncidentReported(ctx, event); err != nil {
		s.logger.Warn("publish incident reported event failed",
			zap.String("incident_id", incident.ID),
			zap.Error(err),
		)
	}
}
