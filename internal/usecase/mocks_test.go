package usecase

import (
	"context"
	"time"

	"github.com/titandealer/portal/internal/core/domain"
)

type mockAccountRepository struct {
	createErr   error
	createCalls int
	created     domain.Account

	getResult       *domain.Account
	getErr          error
	getCalls        int
	lastGetUsername string

	listResult []domain.Account
	listErr    error
	listCalls  int

	updateStatusErr      error
	updateStatusCalls    int
	updateStatusUsername string
	updateStatusValue    domain.AccountStatus

	updatePasswordErr      error
	updatePasswordCalls    int
	updatePasswordUsername string
	updatePasswordHash     string
	updatePasswordAt       time.Time

	setTokenErr      error
	setTokenCalls    int
	setTokenUsername string
	setTokenHash     string
	setTokenExpires  time.Time

	consumeResult       string
	consumeErr          error
	consumeCalls        int
	consumeTokenHash    string
	consumePasswordHash string
	consumeAt           time.Time
}

func (m *mockAccountRepository) Create(_ context.Context, account domain.Account) error {
	m.createCalls++
	m.created = account
	return m.createErr
}

func (m *mockAccountRepository) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	m.getCalls++
	m.lastGetUsername = username
	if m.getResult != nil {
		copied := *m.getResult
		return &copied, m.getErr
	}
	return nil, m.getErr
}

func (m *mockAccountRepository) List(context.Context) ([]domain.Account, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Account, len(m.listResult))
	copy(out, m.listResult)
	return out, nil
}

func (m *mockAccountRepository) UpdateStatus(_ context.Context, username string, status domain.AccountStatus) error {
	m.updateStatusCalls++
	m.updateStatusUsername = username
	m.updateStatusValue = status
	return m.updateStatusErr
}

func (m *mockAccountRepository) UpdatePassword(_ context.Context, username string, passwordHash, _ string, changedAt time.Time) error {
	m.updatePasswordCalls++
	m.updatePasswordUsername = username
	m.updatePasswordHash = passwordHash
	m.updatePasswordAt = changedAt
	return m.updatePasswordErr
}

func (m *mockAccountRepository) SetResetToken(_ context.Context, username string, tokenHash string, expiresAt time.Time) error {
	m.setTokenCalls++
	m.setTokenUsername = username
	m.setTokenHash = tokenHash
	m.setTokenExpires = expiresAt
	return m.setTokenErr
}

func (m *mockAccountRepository) ConsumeResetToken(_ context.Context, tokenHash string, passwordHash, _ string, now time.Time) (string, error) {
	m.consumeCalls++
	m.consumeTokenHash = tokenHash
	m.consumePasswordHash = passwordHash
	m.consumeAt = now
	if m.consumeErr != nil {
		return "", m.consumeErr
	}
	return m.consumeResult, nil
}

type mockNotifier struct {
	availableErr error

	welcomeErr      error
	welcomeCalls    int
	welcomeTo       string
	welcomeUsername string
	welcomePassword string

	resetErr   error
	resetCalls int
	resetTo    string
	resetURL   string

	adminErr      error
	adminCalls    int
	adminTo       string
	adminUsername string
	adminPassword string
}

func (m *mockNotifier) Available(context.Context) error {
	return m.availableErr
}

func (m *mockNotifier) SendWelcome(_ context.Context, to, username, password string) error {
	m.welcomeCalls++
	m.welcomeTo = to
	m.welcomeUsername = username
	m.welcomePassword = password
	return m.welcomeErr
}

func (m *mockNotifier) SendResetLink(_ context.Context, to, resetURL string) error {
	m.resetCalls++
	m.resetTo = to
	m.resetURL = resetURL
	return m.resetErr
}

func (m *mockNotifier) SendAdminReset(_ context.Context, to, username, password string) error {
	m.adminCalls++
	m.adminTo = to
	m.adminUsername = username
	m.adminPassword = password
	return m.adminErr
}

type mockEventPublisher struct {
	registered      []domain.AccountRegisteredEvent
	passwordChanges []domain.PasswordChangedEvent
	incidents       []domain.IncidentReportedEvent
	publishErr      error
}

func (m *mockEventPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	m.registered = append(m.registered, event)
	return m.publishErr
}

func (m *mockEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	m.passwordChanges = append(m.passwordChanges, event)
	return m.publishErr
}

func (m *mockEventPublisher) PublishIncidentReported(_ context.Context, event domain.IncidentReportedEvent) error {
	m.incidents = append(m.incidents, event)
	return m.publishErr
}
