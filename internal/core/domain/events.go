package domain

import "time"

// AccountRegisteredEvent is published after a new dealer account is persisted.
type AccountRegisteredEvent struct {
	EventID      string         `json:"event_id"`
	Username     string         `json:"username"`
	MaskedEmail  string         `json:"masked_email"`
	Status       AccountStatus  `json:"status"`
	RegisteredAt time.Time      `json:"registered_at"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// PasswordChangedEvent is published whenever an account credential is rotated,
// whether by token redemption or by an admin-forced reset.
type PasswordChangedEvent struct {
	EventID   string         `json:"event_id"`
	Username  string         `json:"username"`
	ChangedAt time.Time      `json:"changed_at"`
	Source    string         `json:"source"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// IncidentReportedEvent is published after an incident is stored.
type IncidentReportedEvent struct {
	EventID    string    `json:"event_id"`
	IncidentID string    `json:"incident_id"`
	DealerCode string    `json:"dealer_code"`
	Region     string    `json:"region"`
	Issue      string    `json:"issue"`
	ReportedAt time.Time `json:"reported_at"`
}
