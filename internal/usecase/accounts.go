package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/titandealer/portal/internal/core/domain"
	"github.com/titandealer/portal/internal/core/port"
	"github.com/titandealer/portal/internal/infra/logger"
	"github.com/titandealer/portal/internal/infra/security"
	"github.com/titandealer/portal/internal/repository"
)

const (
	defaultResetTTL      = time.Hour
	resetTokenByteLength = 32

	passwordSourceResetToken = "reset_token"
	passwordSourceAdmin      = "admin_reset"
)

// AccountService owns the dealer account lifecycle: registration,
// activation toggles, and both password reset flows.
type AccountService struct {
	accounts     port.AccountRepository
	notifier     port.Notifier
	events       port.EventPublisher
	validator    *security.PasswordValidator
	logger       *zap.Logger
	now          func() time.Time
	resetTTL     time.Duration
	resetBaseURL string
}

// NewAccountService constructs an AccountService. resetBaseURL is the
// frontend origin the emailed reset link points at.
func NewAccountService(
	accounts port.AccountRepository,
	notifier port.Notifier,
	events port.EventPublisher,
	validator *security.PasswordValidator,
	resetBaseURL string,
	log *zap.Logger,
) *AccountService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &AccountService{
		accounts:     accounts,
		notifier:     notifier,
		events:       events,
		validator:    validator,
		logger:       log,
		now:          time.Now,
		resetTTL:     defaultResetTTL,
		resetBaseURL: strings.TrimRight(resetBaseURL, "/"),
	}
}

// WithClock overrides the clock used for timestamps and token expiry
// (primarily for tests).
func (s *AccountService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithResetTTL overrides the reset-token validity window.
func (s *AccountService) WithResetTTL(ttl time.Duration) {
	if ttl > 0 {
		s.resetTTL = ttl
	}
}

// RegisterInput carries the admin-supplied fields for a new account.
type RegisterInput struct {
	Username string
	Email    string
	Status   string
}

// RegisterResult summarizes a completed registration.
type RegisterResult struct {
	Username  string
	Email     string
	Status    domain.AccountStatus
	Delivered bool
}

// Register creates a dealer account with a generated password and emails the
// credentials. Channel availability is verified before any mutation; delivery
// itself is best effort once the account is persisted.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrValidation)
	}

	status := domain.AccountStatusActive
	if input.Status != "" {
		parsed, err := domain.ParseAccountStatus(input.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		status = parsed
	}

	if err := s.notifier.Available(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotifierUnavailable, err)
	}

	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing account: %w", err)
	}

	password, err := security.GeneratePassword()
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		Username:           username,
		Email:              email,
		PasswordHash:       passwordHash,
		PasswordAlgo:       security.PasswordAlgo,
		Status:             status,
		CreatedAt:          now,
		LastPasswordChange: now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("persist account: %w", err)
	}

	delivered := true
	if err := s.notifier.SendWelcome(ctx, email, username, password); err != nil {
		delivered = false
		s.logger.Warn("welcome mail delivery failed",
			zap.String("username", username),
			zap.String("email", logger.MaskEmail(email)),
			zap.Error(err),
		)
	}

	s.publishRegistered(ctx, account, now)

	s.logger.Info("account registered",
		zap.String("username", username),
		zap.String("email", logger.MaskEmail(email)),
		zap.String("status", string(status)),
		zap.Bool("delivered", delivered),
	)

	return &RegisterResult{Username: username, Email: email, Status: status, Delivered: delivered}, nil
}

// List returns every account, the built-in admin included.
func (s *AccountService) List(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// PasswordResetRequest confirms a reset link was issued without exposing the
// full address.
type PasswordResetRequest struct {
	MaskedEmail string
	ExpiresAt   time.Time
}

// RequestPasswordReset issues a time-boxed single-use reset token and emails
// a link embedding it. A second request before consumption overwrites the
// first token; there is no queue of outstanding tokens per account.
func (s *AccountService) RequestPasswordReset(ctx context.Context, username string) (*PasswordResetRequest, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}

	if err := s.notifier.Available(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotifierUnavailable, err)
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	if strings.TrimSpace(account.Email) == "" {
		return nil, ErrAccountNotFound
	}
	if account.Status != domain.AccountStatusActive {
		return nil, ErrAccountInactive
	}

	token, err := security.GenerateResetToken(resetTokenByteLength)
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.resetTTL)

	if err := s.accounts.SetResetToken(ctx, account.Username, security.HashToken(token), expiresAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.resetBaseURL, token)
	if err := s.notifier.SendResetLink(ctx, account.Email, resetURL); err != nil {
		// The emailed link is the operation's only output; an undelivered
		// token leaves the old password valid, so report failure.
		return nil, fmt.Errorf("%w: %v", ErrNotifierUnavailable, err)
	}

	masked := logger.MaskEmail(account.Email)

	s.logger.Info("password reset requested",
		zap.String("username", account.Username),
		zap.String("email", masked),
		zap.Time("expires_at", expiresAt),
	)

	return &PasswordResetRequest{MaskedEmail: masked, ExpiresAt: expiresAt}, nil
}

// ConsumePasswordReset redeems a reset token and installs the new password.
// Redemption is a single compare-and-set update, so a token can be consumed
// at most once even under concurrent requests.
func (s *AccountService) ConsumePasswordReset(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" || newPassword == "" {
		return fmt.Errorf("%w: token and new password are required", ErrValidation)
	}

	if err := s.validator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicy, err)
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	username, err := s.accounts.ConsumeResetToken(ctx, security.HashToken(token), passwordHash, security.PasswordAlgo, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	s.publishPasswordChanged(ctx, username, passwordSourceResetToken, now)

	s.logger.Info("password reset completed", zap.String("username", username))

	return nil
}

// SetStatus activates or deactivates an account. The status value is a
// closed enum; unrecognized values are rejected.
func (s *AccountService) SetStatus(ctx context.Context, username, rawStatus string) (domain.AccountStatus, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username is required", ErrValidation)
	}

	status, err := domain.ParseAccountStatus(rawStatus)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.accounts.UpdateStatus(ctx, username, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("update account status: %w", err)
	}

	s.logger.Info("account status updated",
		zap.String("username", username),
		zap.String("status", string(status)),
	)

	return status, nil
}

// AdminResetResult summarizes an admin-forced password rotation.
type AdminResetResult struct {
	Username  string
	Delivered bool
}

// AdminResetPassword rotates an account credential to a fresh generated
// password and emails it. Availability is verified before the rotation;
// delivery afterwards is best effort since the rotation has already been
// persisted.
func (s *AccountService) AdminResetPassword(ctx context.Context, username string) (*AdminResetResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}

	if err := s.notifier.Available(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotifierUnavailable, err)
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	if strings.TrimSpace(account.Email) == "" {
		return nil, ErrAccountNotFound
	}

	password, err := security.GeneratePassword()
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	if err := s.accounts.UpdatePassword(ctx, account.Username, passwordHash, security.PasswordAlgo, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("update password: %w", err)
	}

	delivered := true
	if err := s.notifier.SendAdminReset(ctx, account.Email, account.Username, password); err != nil {
		delivered = false
		s.logger.Warn("admin reset mail delivery failed",
			zap.String("username", account.Username),
			zap.String("email", logger.MaskEmail(account.Email)),
			zap.Error(err),
		)
	}

	s.publishPasswordChanged(ctx, account.Username, passwordSourceAdmin, now)

	s.logger.Info("password reset by admin",
		zap.String("username", account.Username),
		zap.Bool("delivered", delivered),
	)

	return &AdminResetResult{Username: account.Username, Delivered: delivered}, nil
}

func (s *AccountService) publishRegistered(ctx context.Context, account domain.Account, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.AccountRegisteredEvent{
		EventID:      uuid.NewString(),
		Username:     account.Username,
		MaskedEmail:  logger.MaskEmail(account.Email),
		Status:       account.Status,
		RegisteredAt: at,
	}

	if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
		s.logger.Warn("publish account registered event failed",
			zap.String("username", account.Username),
			zap.Error(err),
		)
	}
}

func (s *AccountService) publishPasswordChanged(ctx context.Context, username, source string, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		Username:  username,
		ChangedAt: at,
		Source:    source,
	}

	if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
		s.logger.Warn("publish password changed event failed",
			zap.String("username", username),
			zap.Error(err),
		)
	}
}
