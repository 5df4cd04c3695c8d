package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/identitykit/account-service/internal/core/domain/account"
	"github.com/identitykit/account-service/internal/core/ports"
	"github.com/identitykit/account-service/internal/infrastructure/db"
)

const uniqueViolation = pq.ErrorCode("23505")

// AccountRepository implements the account repository interface
type AccountRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(database *db.Database, logger *logrus.Logger) ports.AccountRepository {
	return &AccountRepository{
		db:     database,
		logger: logger,
	}
}

// Create inserts a new account. Uniqueness of login_id and email among
// non-deleted rows is enforced by partial unique indexes.
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (id, login_id, email, password_hash, status, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		a.ID, a.LoginID, a.Email, a.PasswordHash, a.Status, a.IsDeleted, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"login_id": a.LoginID}).Debug("db: duplicate account")
			}
			return account.ErrDuplicateAccount
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": a.ID, "login_id": a.LoginID}).WithError(err).Error("db: failed to create account")
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"account_id": a.ID, "login_id": a.LoginID}).Info("db: account created")
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var a account.Account
	query := `
		SELECT id, login_id, email, password_hash, status, email_verified_at,
			   is_deleted, deleted_at, created_at, updated_at
		FROM accounts
		WHERE id = $1`

	err := sqlxGet(ctx, r.db, &a, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrAccountNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": id}).WithError(err).Error("db: failed to get account by ID")
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	return &a, nil
}

// GetByEmail retrieves the non-deleted account with the given email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	var a account.Account
	query := `
		SELECT id, login_id, email, password_hash, status, email_verified_at,
			   is_deleted, deleted_at, created_at, updated_at
		FROM accounts
		WHERE email = $1 AND is_deleted = FALSE`

	err := sqlxGet(ctx, r.db, &a, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"email": email}).Debug("db: account not found by email")
			}
			return nil, account.ErrAccountNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"email": email}).WithError(err).Error("db: failed to get account by email")
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return &a, nil
}

// Activate promotes the account to ACTIVE. The update is conditional on the
// current status so email_verified_at is written exactly once; activating an
// already-active account affects zero rows and is not an error.
func (r *AccountRepository) Activate(ctx context.Context, id uuid.UUID, now time.Time) error {
	query := `
		UPDATE accounts
		SET status = $2, email_verified_at = $3, updated_at = $3
		WHERE id = $1 AND status = $4`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, id, account.StatusActive, now, account.StatusNotVerified)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": id}).WithError(err).Error("db: failed to activate account")
		}
		return fmt.Errorf("failed to activate account: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 && r.logger != nil {
		r.logger.WithFields(logrus.Fields{"account_id": id}).Debug("db: activate affected 0 rows - account already active")
	}

	return nil
}

// SoftDelete marks the account logically deleted
func (r *AccountRepository) SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_deleted = TRUE, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, id, now)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": id}).WithError(err).Error("db: failed to soft-delete account")
		}
		return fmt.Errorf("failed to soft-delete account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

// HardDelete physically removes the account row. Verification records cascade
// with it.
func (r *AccountRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM accounts WHERE id = $1`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, id)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": id}).WithError(err).Error("db: failed to hard-delete account")
		}
		return fmt.Errorf("failed to hard-delete account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

// ListUnverifiedOlderThan returns non-deleted NOT_VERIFIED accounts created
// before the cutoff
func (r *AccountRepository) ListUnverifiedOlderThan(ctx context.Context, cutoff time.Time) ([]*account.Account, error) {
	var accounts []*account.Account
	query := `
		SELECT id, login_id, email, password_hash, status, email_verified_at,
			   is_deleted, deleted_at, created_at, updated_at
		FROM accounts
		WHERE status = $1 AND is_deleted = FALSE AND created_at < $2
		ORDER BY created_at`

	if err := sqlxSelect(ctx, r.db, &accounts, query, account.StatusNotVerified, cutoff); err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to list unverified accounts")
		}
		return nil, fmt.Errorf("failed to list unverified accounts: %w", err)
	}

	return accounts, nil
}

// ListSoftDeletedOlderThan returns soft-deleted accounts whose deletion is
// older than the cutoff
func (r *AccountRepository) ListSoftDeletedOlderThan(ctx context.Context, cutoff time.Time) ([]*account.Account, error) {
	var accounts []*account.Account
	query := `
		SELECT id, login_id, email, password_hash, status, email_verified_at,
			   is_deleted, deleted_at, created_at, updated_at
		FROM accounts
		WHERE is_deleted = TRUE AND deleted_at < $1
		ORDER BY deleted_at`

	if err := sqlxSelect(ctx, r.db, &accounts, query, cutoff); err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to list soft-deleted accounts")
		}
		return nil, fmt.Errorf("failed to list soft-deleted accounts: %w", err)
	}

	return accounts, nil
}
