package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/titandealer/portal/internal/core/domain"
	"github.com/titandealer/portal/internal/infra/security"
	"github.com/titandealer/portal/internal/repository"
)

func newAccountService(accounts *mockAccountRepository, notifier *mockNotifier, events *mockEventPublisher) *AccountService {
	return NewAccountService(accounts, notifier, events, nil, "http://localhost:5173", nil)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRegisterRequiresUsernameAndEmail(t *testing.T) {
	accounts := &mockAccountRepository{}
	svc := newAccountService(accounts, &mockNotifier{}, &mockEventPublisher{})

	if _, err := svc.Register(context.Background(), RegisterInput{Username: "1234567"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterInput{Email: "d@x.com"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if accounts.createCalls != 0 {
		t.Fatalf("expected no account writes, got %d", accounts.createCalls)
	}
}

func TestRegisterRejectsUnknownStatus(t *testing.T) {
	accounts := &mockAccountRepository{getErr: repository.ErrNotFound}
	svc := newAccountService(accounts, &mockNotifier{}, &mockEventPublisher{})

	_, err := svc.Register(context.Background(), RegisterInput{Username: "1234567", Email: "d@x.com", Status: "suspended"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if accounts.createCalls != 0 {
		t.Fatalf("expected no account writes, got %d", accounts.createCalls)
	}
}

func TestRegisterFailsFastWhenNotifierUnavailable(t *testing.T) {
	accounts := &mockAccountRepository{getErr: repository.ErrNotFound}
	notifier := &mockNotifier{availableErr: errors.New("smtp down")}
	svc := newAccountService(accounts, notifier, &mockEventPublisher{})

	_, err := svc.Register(context.Background(), RegisterInput{Username: "1234567", Email: "d@x.com"})
	if !errors.Is(err, ErrNotifierUnavailable) {
		t.Fatalf("expected ErrNotifierUnavailable, got %v", err)
	}
	if accounts.createCalls != 0 {
		t.Fatalf("account must not be created when mail is unavailable")
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	existing := domain.Account{Username: "1234567", Status: domain.AccountStatusActive}
	accounts := &mockAccountRepository{getResult: &existing}
	svc := newAccountService(accounts, &mockNotifier{}, &mockEventPublisher{})

	_, err := svc.Register(context.Background(), RegisterInput{Username: "1234567", Email: "d@x.com"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if accounts.createCalls != 0 {
		t.Fatalf("expected no account writes, got %d", accounts.createCalls)
	}
}

func TestRegisterGeneratesCompliantPasswordAndPersistsHash(t *testing.T) {
	accounts := &mockAccountRepository{getErr: repository.ErrNotFound}
	notifier := &mockNotifier{}
	events := &mockEventPublisher{}
	svc := newAccountService(accounts, notifier, events)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.WithClock(fixedClock(now))

	result, err := svc.Register(context.Background(), RegisterInput{Username: "1234567", Email: "dealer@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if accounts.created.Status != domain.AccountStatusActive {
		t.Fatalf("expected default status active, got %s", accounts.created.Status)
	}
	if accounts.created.CreatedAt != now {
		t.Fatalf("expected created_at %v, got %v", now, accounts.created.CreatedAt)
	}
	if accounts.created.PasswordAlgo != security.PasswordAlgo {
		t.Fatalf("unexpected password algo %q", accounts.created.PasswordAlgo)
	}

	if notifier.welcomeCalls != 1 || notifier.welcomeTo != "dealer@x.com" {
		t.Fatalf("expected welcome mail to dealer@x.com, got %d calls to %q", notifier.welcomeCalls, notifier.welcomeTo)
	}

	password := notifier.welcomePassword
	if len(password) != security.GeneratedPasswordLength {
		t.Fatalf("expected password length %d, got %d", security.GeneratedPasswordLength, len(password))
	}
	for _, r := range password {
		if !strings.ContainsRune(security.GeneratedPasswordCharset, r) {
			t.Fatalf("password character %q outside the declared charset", r)
		}
	}

	ok, err := security.VerifyPassword(password, accounts.created.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash must verify the emailed password, ok=%v err=%v", ok, err)
	}

	if !result.Delivered {
		t.Fatalf("expected delivered=true")
	}
	if len(events.registered) != 1 || events.registered[0].Username != "1234567" {
		t.Fatalf("expected one registered event for 1234567, got %+v", events.registered)
	}
	if events.registered[0].MaskedEmail != "de****@x.com" {
		t.Fatalf("expected masked email de****@x.com on the event, got %q", events.registered[0].MaskedEmail)
	}
}

func TestRegisterSurvivesWelcomeDeliveryFailure(t *testing.T) {
	accounts := &mockAccountRepository{getErr: repository.ErrNotFound}
	notifier := &mockNotifier{welcomeErr: errors.New("bounced")}
	svc := newAccountService(accounts, notifier, &mockEventPublisher{})

	result, err := svc.Register(context.Background(), RegisterInput{Username: "1234567", Email: "d@x.com"})
	if err != nil {
		t.Fatalf("registration must not fail after persistence: %v", err)
	}
	if result.Delivered {
		t.Fatalf("expected delivered=false when the welcome mail bounces")
	}
	if accounts.createCalls != 1 {
		t.Fatalf("expected the account to be persisted")
	}
}

func TestRequestPasswordResetFailsFastWhenNotifierUnavailable(t *testing.T) {
	accounts := &mockAccountRepository{}
	notifier := &mockNotifier{availableErr: errors.New("smtp down")}
	svc := newAccountService(accounts, notifier, &mockEventPublisher{})

	_, err := svc.RequestPasswordReset(context.Background(), "1234567")
	if !errors.Is(err, ErrNotifierUnavailable) {
		t.Fatalf("expected ErrNotifierUnavailable, got %v", err)
	}
	if accounts.getCalls != 0 || accounts.setTokenCalls != 0 {
		t.Fatalf("no store access expected when mail is unavailable")
	}
}

func TestRequestPasswordResetUnknownUsername(t *testing.T) {
	accounts := &mockAccountRepository{getErr: repository.ErrNotFound}
	svc := newAccountService(accounts, &mockNotifier{}, &mockEventPublisher{})

	_, err := svc.RequestPasswordReset(context.Background(), "7654321")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestRequestPasswordResetMissingEmail(t *testing.T) {
	account := domain.Account{Username: "1234567", Status: domain.AccountStatusActive}
	accounts := &mockAccountRepository{getResult: &account}
	svc := newAccountService(accounts, &mockNotifier{}, &mockEventPublisher{})

	_, err := svc.RequestPasswordReset(context.Background(), "1234567")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound for account without email, got %v", err)
	}
	if accounts.setTokenCalls != 0 {
		t.Fatalf("no token must be issued without a delivery address")
	}
}

func TestRequestPasswordResetRejectsInactiveAccount(t *testing.T) {
	account := domain.Account{Username: "1234567", Email: "d@x.com", Status: domain.AccountStatusInactive}
	accounts := &mockAccountRepository{getResult: &account}
	svc := newAccountService(accounts, &mockNotifier{}, &mockEventPublisher{})

	_, err := svc.RequestPasswordReset(context.Background(), "1234567")
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
	if accounts.setTokenCalls != 0 {
		t.Fatalf("inactive accounts must not receive reset tokens")
	}
}

func TestRequestPasswordResetIssuesHashedTokenAndLink(t *testing.T) {
	account := domain.Account{Username: "1234567", Email: "dealer@x.com", Status: domain.AccountStatusActive}
	accounts := &mockAccountRepository{getResult: &account}
	notifier := &mockNotifier{}
	svc := newAccountService(accounts, notifier, &mockEventPublisher{})

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.WithClock(fixedClock(now))
	svc.WithResetTTL(30 * time.Minute)

	result, err := svc.RequestPasswordReset(context.Background(), "1234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if accounts.setTokenCalls != 1 {
		t.Fatalf("expected one token write, got %d", accounts.setTokenCalls)
	}
	wantExpiry := now.Add(30 * time.Minute)
	if !accounts.setTokenExpires.Equal(wantExpiry) {
		t.Fatalf("expected expiry %v, got %v", wantExpiry, accounts.setTokenExpires)
	}

	if notifier.resetCalls != 1 || notifier.resetTo != "dealer@x.com" {
		t.Fatalf("expected reset mail to dealer@x.com, got %d calls to %q", notifier.resetCalls, notifier.resetTo)
	}

	prefix := "http://localhost:5173/reset-password/"
	if !strings.HasPrefix(notifier.resetURL, prefix) {
		t.Fatalf("unexpected reset URL %q", notifier.resetURL)
	}
	rawToken := strings.TrimPrefix(notifier.resetURL, prefix)
	if len(rawToken) != 64 {
		t.Fatalf("expected 64 hex characters of token, got %d", len(rawToken))
	}
	if accounts.setTokenHash != security.HashToken(rawToken) {
		t.Fatalf("stored token must be the hash of the emailed token")
	}
	if accounts.setTokenHash == rawToken {
		t.Fatalf("raw token must never be persisted")
	}

	if result.MaskedEmail != "de****@x.com" {
		t.Fatalf("unexpected masked email %q", result.MaskedEmail)
	}
	if !result.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected result expiry %v, got %v", wantExpiry, result.ExpiresAt)
	}
}

func TestRequestPasswordResetReportsDeliveryFailure(t *testing.T) {
	account := domain.Account{Username: "1234567", Email: "dealer@x.com", Status: domain.AccountStatusActive}
	accounts := &mockAccountRepository{getResult: &account}
	notifier := &mockNotifier{resetErr: errors.New("bounced")}
	svc := newAccountService(accounts, notifier, &mockEventPublisher{})

	_, err := svc.RequestPasswordReset(context.Background(), "1234567")
	if !errors.Is(err, ErrNotifierUnavailable) {
		t.Fatalf("expected ErrNotifierUnavailable on delivery failure, got %v", err)
	}
}

func TestConsumePasswordResetValidation(t *testing.T) {
	accounts := &mockAccountRepository{}
	svc := newAccountService(accounts, &mockNotifier{}, &mockEventPublisher{})

	if err := svc.ConsumePasswordReset(context.Background(), "", "NewPass99"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing token, got %v", err)
	}
	if err := svc.ConsumePasswordReset(context.Background(), "sometoken", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing password, got %v", err)
	}
	if err := svc.ConsumePasswordReset(context.Background(), "sometoken", "short"); !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy for short password, got %v", err)
	}
	if accounts.consumeCalls != 0 {
		t.Fatalf("no consume attempts expected, got %d", accounts.consumeCalls)
	}
}

func TestConsumePasswordResetInvalidToken(t *testing.T) {
	accounts := &mockAccountRepository{consumeErr: repository.ErrNotFound}
	svc := newAccountService(accounts, &mockNotifier{}, &mockEventPublisher{})

	err := svc.ConsumePasswordReset(context.Background(), "deadbeef", "NewPass99")
	if !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
}

func TestConsumePasswordResetInstallsNewPassword(t *testing.T) {
	accounts := &mockAccountRepository{consumeResult: "1234567"}
	events := &mockEventPublisher{}
	svc := newAccountService(accounts, &mockNotifier{}, events)

	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	svc.WithClock(fixedClock(now))

	token := "a1b2c3d4"
	if err := svc.ConsumePasswordReset(context.Background(), token, "NewPass99"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if accounts.consumeTokenHash != security.HashToken(token) {
		t.Fatalf("redemption must match on the token hash")
	}
	if !accounts.consumeAt.Equal(now) {
		t.Fatalf("expected redemption instant %v, got %v", now, accounts.consumeAt)
	}

	ok, err := security.VerifyPassword("NewPass99", accounts.consumePasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password must verify against the stored hash, ok=%v err=%v", ok, err)
	}

	if len(events.passwordChanges) != 1 || events.passwordChanges[0].Source != "reset_token" {
		t.Fatalf("expected one password change event with source reset_token, got %+v", events.passwordChanges)
	}
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	accounts := &mockAccountRepository{}
	svc := newAccountService(accounts, &mockNotifier{}, &mockEventPublisher{})

	if _, err := svc.SetStatus(context.Background(), "1234567", "suspended"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if accounts.updateStatusCalls != 0 {
		t.Fatalf("expected no status writes, got %d", accounts.updateStatusCalls)
	}
}

func TestSetStatusUnknownAccount(t *testing.T) {
	accounts := &mockAccountRepository{updateStatusErr: repository.ErrNotFound}
	svc := newAccountService(accounts, &mockNotifier{}, &mockEventPublisher{})

	if _, err := svc.SetStatus(context.Background(), "7654321", "inactive"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestSetStatusUpdatesAccount(t *testing.T) {
	accounts := &mockAccountRepository{}
	svc := newAccountService(accounts, &mockNotifier{}, &mockEventPublisher{})

	status, err := svc.SetStatus(context.Background(), "1234567", "inactive")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.AccountStatusInactive {
		t.Fatalf("expected inactive, got %s", status)
	}
	if accounts.updateStatusUsername != "1234567" || accounts.updateStatusValue != domain.AccountStatusInactive {
		t.Fatalf("unexpected status write %q=%q", accounts.updateStatusUsername, accounts.updateStatusValue)
	}
}

func TestAdminResetPasswordUnknownAccount(t *testing.T) {
	accounts := &mockAccountRepository{getErr: repository.ErrNotFound}
	svc := newAccountService(accounts, &mockNotifier{}, &mockEventPublisher{})

	if _, err := svc.AdminResetPassword(context.Background(), "7654321"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if accounts.updatePasswordCalls != 0 {
		t.Fatalf("expected no password writes, got %d", accounts.updatePasswordCalls)
	}
}

func TestAdminResetPasswordFailsFastWhenNotifierUnavailable(t *testing.T) {
	accounts := &mockAccountRepository{}
	notifier := &mockNotifier{availableErr: errors.New("smtp down")}
	svc := newAccountService(accounts, notifier, &mockEventPublisher{})

	if _, err := svc.AdminResetPassword(context.Background(), "1234567"); !errors.Is(err, ErrNotifierUnavailable) {
		t.Fatalf("expected ErrNotifierUnavailable, got %v", err)
	}
	if accounts.updatePasswordCalls != 0 {
		t.Fatalf("password must not rotate when mail is unavailable")
	}
}

func TestAdminResetPasswordRotatesAndEmails(t *testing.T) {
	account := domain.Account{Username: "1234567", Email: "dealer@x.com", Status: domain.AccountStatusActive}
	accounts := &mockAccountRepository{getResult: &account}
	notifier := &mockNotifier{}
	events := &mockEventPublisher{}
	svc := newAccountService(accounts, notifier, events)

	result, err := svc.AdminResetPassword(context.Background(), "1234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if notifier.adminCalls != 1 || notifier.adminTo != "dealer@x.com" {
		t.Fatalf("expected admin reset mail to dealer@x.com")
	}

	password := notifier.adminPassword
	if len(password) != security.GeneratedPasswordLength {
		t.Fatalf("expected password length %d, got %d", security.GeneratedPasswordLength, len(password))
	}
	for _, r := range password {
		if !strings.ContainsRune(security.GeneratedPasswordCharset, r) {
			t.Fatalf("password character %q outside the declared charset", r)
		}
	}

	ok, err := security.VerifyPassword(password, accounts.updatePasswordHash)
	if err != nil || !ok {
		t.Fatalf("rotated hash must verify the emailed password, ok=%v err=%v", ok, err)
	}

	if !result.Delivered {
		t.Fatalf("expected delivered=true")
	}
	if len(events.passwordChanges) != 1 || events.passwordChanges[0].Source != "admin_reset" {
		t.Fatalf("expected one password change event with source admin_reset, got %+v", events.passwordChanges)
	}
}

func TestAdminResetPasswordReportsUndelivered(t *testing.T) {
	account := domain.Account{Username: "1234567", Email: "dealer@x.com", Status: domain.AccountStatusActive}
	accounts := &mockAccountRepository{getResult: &account}
	notifier := &mockNotifier{adminErr: errors.New("bounced")}
	svc := newAccountService(accounts, notifier, &mockEventPublisher{})

	result, err := svc.AdminResetPassword(context.Background(), "1234567")
	if err != nil {
		t.Fatalf("rotation already persisted, must not fail: %v", err)
	}
	if result.Delivered {
		t.Fatalf("expected delivered=false when the mail bounces")
	}
	if accounts.updatePasswordCalls != 1 {
		t.Fatalf("expected the rotation to be persisted")
	}
}
