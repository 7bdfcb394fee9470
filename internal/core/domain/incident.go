package domain

import "time"

// Incident is a support ticket submitted through the dealer help form.
type Incident struct {
	ID         string
	DealerCode string
	Location   string
	Region     string
	Issue      string
	Email      string
	ContactNo  string
	Screenshot *string
	ReportedAt time.Time
	Checked    bool
	CreatedAt  time.Time
}
