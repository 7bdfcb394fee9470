package port

import (
	"context"
	"time"

	"github.com/titandealer/portal/internal/core/domain"
)

// AccountRepository exposes persistence behavior for dealer accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	UpdateStatus(ctx context.Context, username string, status domain.AccountStatus) error
	UpdatePassword(ctx context.Context, username string, passwordHash, passwordAlgo string, changedAt time.Time) error
	// SetResetToken overwrites any outstanding reset token for the account.
	// Last issuance wins; there is no queue of outstanding tokens.
	SetResetToken(ctx context.Context, username string, tokenHash string, expiresAt time.Time) error
	// ConsumeResetToken atomically matches an unexpired token hash, sets the
	// new password, and clears both token columns in a single statement.
	// Returns repository.ErrNotFound when no account holds a live token with
	// the given hash.
	ConsumeResetToken(ctx context.Context, tokenHash string, passwordHash, passwordAlgo string, now time.Time) (username string, err error)
}
