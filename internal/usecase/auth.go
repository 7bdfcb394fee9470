package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/titandealer/portal/internal/core/domain"
	"github.com/titandealer/portal/internal/core/port"
	"github.com/titandealer/portal/internal/infra/security"
	"github.com/titandealer/portal/internal/repository"
)

const (
	// RoleAdmin marks the built-in administrator session.
	RoleAdmin = "admin"
	// RoleDealer marks a regular dealer session.
	RoleDealer = "dealer"
)

// AuthService verifies credentials and issues session tokens.
type AuthService struct {
	accounts port.AccountRepository
	tokens   *security.TokenIssuer
	logger   *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(accounts port.AccountRepository, tokens *security.TokenIssuer, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{accounts: accounts, tokens: tokens, logger: logger}
}

// LoginResult carries the issued session token and the resolved role.
type LoginResult struct {
	Token    string
	Username string
	Role     string
}

// Login verifies the credential pair against the stored hash. Unknown
// usernames and wrong passwords collapse into the same generic rejection so
// the endpoint cannot be used to enumerate accounts. A correct password on a
// deactivated account is rejected with the explicit inactive reason.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if account.Status != domain.AccountStatusActive {
		return nil, ErrAccountInactive
	}

	role := RoleDealer
	if account.IsAdmin() {
		role = RoleAdmin
	}

	token, err := s.tokens.Issue(account.Username, role)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	s.logger.Info("login succeeded", zap.String("username", account.Username), zap.String("role", role))

	return &LoginResult{Token: token, Username: account.Username, Role: role}, nil
}

// ParseToken verifies a bearer token and returns its claims.
func (s *AuthService) ParseToken(raw string) (*security.SessionClaims, error) {
	return s.tokens.Parse(raw)
}

// TokenTTL reports the session validity window.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
