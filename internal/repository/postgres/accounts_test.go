package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/titandealer/portal/internal/core/domain"
	"github.com/titandealer/portal/internal/repository"
)

func TestAccountRepositoryGetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(accountColumns).
		AddRow("1234567", "dealer@x.com", "salt:hash", "argon2id", "active", nil, nil, created, created)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT username, email, password_hash, password_algo, status, reset_token_hash, reset_token_expires, created_at, last_password_change FROM users_data WHERE username = $1")).
		WithArgs("1234567").
		WillReturnRows(rows)

	account, err := repo.GetByUsername(context.Background(), "1234567")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if account.Username != "1234567" || account.Status != domain.AccountStatusActive {
		t.Fatalf("unexpected account %+v", account)
	}
	if account.HasResetToken() {
		t.Fatalf("expected no reset token")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAccountRepositoryGetByUsernameNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT username, email, password_hash, password_algo, status, reset_token_hash, reset_token_expires, created_at, last_password_change FROM users_data WHERE username = $1")).
		WithArgs("7654321").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByUsername(context.Background(), "7654321"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountRepositoryUpdateStatusNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users_data SET status = $1 WHERE username = $2")).
		WithArgs("inactive", "7654321").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdateStatus(context.Background(), "7654321", domain.AccountStatusInactive); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountRepositoryUpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users_data SET status = $1 WHERE username = $2")).
		WithArgs("inactive", "1234567").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateStatus(context.Background(), "1234567", domain.AccountStatusInactive); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAccountRepositorySetResetToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	expires := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users_data SET reset_token_hash = $1, reset_token_expires = $2 WHERE username = $3")).
		WithArgs("tokenhash", expires, "1234567").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.SetResetToken(context.Background(), "1234567", "tokenhash", expires); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAccountRepositoryConsumeResetToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	query := "UPDATE users_data SET password_hash = $1, password_algo = $2, last_password_change = $3, reset_token_hash = $4, reset_token_expires = $5 WHERE reset_token_hash = $6 AND reset_token_expires > $7 RETURNING username"

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("newhash", "argon2id", now, nil, nil, "tokenhash", now).
		WillReturnRows(pgxmock.NewRows([]string{"username"}).AddRow("1234567"))

	username, err := repo.ConsumeResetToken(context.Background(), "tokenhash", "newhash", "argon2id", now)
	if err != nil {
		t.Fatalf("ConsumeResetToken: %v", err)
	}
	if username != "1234567" {
		t.Fatalf("expected username 1234567, got %q", username)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAccountRepositoryConsumeResetTokenExpiredOrUnknown(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	query := "UPDATE users_data SET password_hash = $1, password_algo = $2, last_password_change = $3, reset_token_hash = $4, reset_token_expires = $5 WHERE reset_token_hash = $6 AND reset_token_expires > $7 RETURNING username"

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("newhash", "argon2id", now, nil, nil, "stale", now).
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.ConsumeResetToken(context.Background(), "stale", "newhash", "argon2id", now); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
