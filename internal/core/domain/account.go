package domain

import (
	"fmt"
	"time"
)

// AccountStatus enumerates possible account states.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// ParseAccountStatus validates a raw status value against the closed enum.
func ParseAccountStatus(raw string) (AccountStatus, error) {
	switch AccountStatus(raw) {
	case AccountStatusActive:
		return AccountStatusActive, nil
	case AccountStatusInactive:
		return AccountStatusInactive, nil
	default:
		return "", fmt.Errorf("unrecognized account status %q", raw)
	}
}

// AdminUsername identifies the built-in administrator account.
const AdminUsername = "admin"

// Account mirrors the persisted representation in the users_data table.
type Account struct {
	Username           string
	Email              string
	PasswordHash       string
	PasswordAlgo       string
	Status             AccountStatus
	ResetTokenHash     *string
	ResetTokenExpires  *time.Time
	CreatedAt          time.Time
	LastPasswordChange time.Time
}

// IsAdmin reports whether the account is the built-in administrator.
func (a Account) IsAdmin() bool {
	return a.Username == AdminUsername
}

// HasResetToken reports whether a reset token is currently issued.
// The token hash and expiry columns are set and cleared together.
func (a Account) HasResetToken() bool {
	return a.ResetTokenHash != nil && a.ResetTokenExpires != nil
}

// ResetTokenValid reports whether an issued reset token can still be redeemed at the given instant.
func (a Account) ResetTokenValid(at time.Time) bool {
	return a.HasResetToken() && a.ResetTokenExpires.After(at)
}
