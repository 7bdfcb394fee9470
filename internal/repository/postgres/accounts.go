package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/titandealer/portal/internal/core/domain"
	"github.com/titandealer/portal/internal/repository"
)

const accountsTable = "users_data"

var accountColumns = []string{
	"username",
	"email",
	"password_hash",
	"password_algo",
	"status",
	"reset_token_hash",
	"reset_token_expires",
	"created_at",
	"last_password_change",
}

// AccountRepository persists dealer accounts in PostgreSQL.
type AccountRepository struct {
	db pgExecutor
	sb sq.StatementBuilderType
}

// NewAccountRepository constructs an AccountRepository backed by the given
// executor.
func NewAccountRepository(db pgExecutor) *AccountRepository {
	return &AccountRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	query, args, err := r.sb.
		Insert(accountsTable).
		Columns(accountColumns...).
		Values(
			account.Username,
			account.Email,
			account.PasswordHash,
			account.PasswordAlgo,
			string(account.Status),
			account.ResetTokenHash,
			account.ResetTokenExpires,
			account.CreatedAt,
			account.LastPasswordChange,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByUsername loads a single account or repository.ErrNotFound.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query, args, err := r.sb.
		Select(accountColumns...).
		From(accountsTable).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account query: %w", err)
	}

	row := r.db.QueryRow(ctx, query, args...)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return account, nil
}

// List returns every account ordered by creation time.
func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	query, args, err := r.sb.
		Select(accountColumns...).
		From(accountsTable).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list accounts query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}

	return accounts, nil
}

// UpdateStatus flips the status column for the named account.
func (r *AccountRepository) UpdateStatus(ctx context.Context, username string, status domain.AccountStatus) error {
	query, args, err := r.sb.
		Update(accountsTable).
		Set("status", string(status)).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update account status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePassword replaces the credential and clears any outstanding reset
// token so stale links cannot redeem against the new password.
func (r *AccountRepository) UpdatePassword(ctx context.Context, username string, passwordHash, passwordAlgo string, changedAt time.Time) error {
	query, args, err := r.sb.
		Update(accountsTable).
		Set("password_hash", passwordHash).
		Set("password_algo", passwordAlgo).
		Set("last_password_change", changedAt).
		Set("reset_token_hash", nil).
		Set("reset_token_expires", nil).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update account password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetResetToken records a new token hash and expiry, replacing any previous
// issuance.
func (r *AccountRepository) SetResetToken(ctx context.Context, username string, tokenHash string, expiresAt time.Time) error {
	query, args, err := r.sb.
		Update(accountsTable).
		Set("reset_token_hash", tokenHash).
		Set("reset_token_expires", expiresAt).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set reset token query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ConsumeResetToken redeems a live token in a single statement. The WHERE
// clause matches the hash and checks expiry, so concurrent redemptions of the
// same token cannot both succeed.
func (r *AccountRepository) ConsumeResetToken(ctx context.Context, tokenHash string, passwordHash, passwordAlgo string, now time.Time) (string, error) {
	query, args, err := r.sb.
		Update(accountsTable).
		Set("password_hash", passwordHash).
		Set("password_algo", passwordAlgo).
		Set("last_password_change", now).
		Set("reset_token_hash", nil).
		Set("reset_token_expires", nil).
		Where(sq.Eq{"reset_token_hash": tokenHash}).
		Where(sq.Gt{"reset_token_expires": now}).
		Suffix("RETURNING username").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build consume reset token query: %w", err)
	}

	var username string
	if err := r.db.QueryRow(ctx, query, args...).Scan(&username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("consume reset token: %w", err)
	}

	return username, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account domain.Account
		status  string
	)

	err := row.Scan(
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.PasswordAlgo,
		&status,
		&account.ResetTokenHash,
		&account.ResetTokenExpires,
		&account.CreatedAt,
		&account.LastPasswordChange,
	)
	if err != nil {
		return nil, err
	}

	account.Status = domain.AccountStatus(status)

	return &account, nil
}
