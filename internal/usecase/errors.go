package usecase

import "errors"

var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidCredentials is the generic login rejection. It deliberately
	// covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive indicates the account exists but is deactivated.
	ErrAccountInactive = errors.New("account is inactive")
	// ErrAccountNotFound indicates no account matched the request.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUsernameTaken indicates a registration collision.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrNotifierUnavailable indicates the mail channel is unconfigured or
	// unreachable.
	ErrNotifierUnavailable = errors.New("notification channel unavailable")
	// ErrResetTokenInvalid covers unknown, already consumed, and expired
	// reset tokens alike.
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")
	// ErrPasswordPolicy indicates a user-chosen password violates policy.
	ErrPasswordPolicy = errors.New("password does not meet policy")
	// ErrIncidentNotFound indicates no incident matched the identifier.
	ErrIncidentNotFound = errors.New("incident not found")
)
