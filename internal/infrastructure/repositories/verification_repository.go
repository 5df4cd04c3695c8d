package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/identitykit/account-service/internal/core/domain/account"
	"github.com/identitykit/account-service/internal/core/domain/verification"
	"github.com/identitykit/account-service/internal/core/ports"
	"github.com/identitykit/account-service/internal/infrastructure/db"
)

// VerificationRepository implements the verification store on Postgres
type VerificationRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(database *db.Database, logger *logrus.Logger) ports.VerificationStore {
	return &VerificationRepository{
		db:     database,
		logger: logger,
	}
}

// CreatePending inserts an unconsumed verification record for the account.
func (r *VerificationRepository) CreatePending(ctx context.Context, a *account.Account, token string, typ verification.Type, ttl time.Duration) (*verification.Record, error) {
	now := time.Now()
	record := &verification.Record{
		ID:        uuid.New(),
		AccountID: a.ID,
		Token:     token,
		Type:      typ,
		Email:     a.Email,
		ExpiresAt: now.Add(ttl),
		AuditMeta: account.AuditMeta{CreatedAt: now, UpdatedAt: now},
	}

	query := `
		INSERT INTO email_verifications (id, account_id, token, type, email, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		record.ID, record.AccountID, record.Token, record.Type, record.Email,
		record.ExpiresAt, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": a.ID, "type": typ}).WithError(err).Error("db: failed to create verification record")
		}
		return nil, fmt.Errorf("failed to create verification record: %w", err)
	}

	return record, nil
}

// FindValid returns the unique unconsumed record matching both the token's
// claims and the stored server-side state. The raw token string itself is part
// of the predicate, so a token that merely carries plausible claims fails.
func (r *VerificationRepository) FindValid(ctx context.Context, claims *verification.Claims, rawToken string, now time.Time) (*verification.Record, error) {
	var record verification.Record
	query := `
		SELECT v.id, v.account_id, v.token, v.type, v.email, v.expires_at, v.verified_at, v.created_at, v.updated_at
		FROM email_verifications v
		JOIN accounts a ON a.id = v.account_id
		WHERE a.email = $1 AND a.is_deleted = FALSE
		  AND v.type = $2 AND v.token = $3
		  AND v.expires_at > $4 AND v.verified_at IS NULL`

	err := sqlxGet(ctx, r.db, &record, query, claims.Email, claims.Type, rawToken, now)
	if err != nil {
		if err == sql.ErrNoRows {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"email": claims.Email, "type": claims.Type}).Debug("db: no valid verification record")
			}
			return nil, verification.ErrRecordNotFound
		}
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to find verification record")
		}
		return nil, fmt.Errorf("failed to find verification record: %w", err)
	}

	return &record, nil
}

// MarkVerified consumes the record. The WHERE clause keeps the update
// conditional on verified_at still being NULL, so of two concurrent verify
// calls carrying the same token exactly one wins.
func (r *VerificationRepository) MarkVerified(ctx context.Context, id uuid.UUID, now time.Time) error {
	query := `
		UPDATE email_verifications
		SET verified_at = $2, updated_at = $2
		WHERE id = $1 AND verified_at IS NULL`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, id, now)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"verification_id": id}).WithError(err).Error("db: failed to mark verification consumed")
		}
		return fmt.Errorf("failed to mark verification consumed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return verification.ErrRecordNotFound
	}

	return nil
}

// FindPendingByAccountAndType returns the unconsumed record for the account,
// used by the resend path to reuse the existing token.
func (r *VerificationRepository) FindPendingByAccountAndType(ctx context.Context, accountID uuid.UUID, typ verification.Type) (*verification.Record, error) {
	var record verification.Record
	query := `
		SELECT id, account_id, token, type, email, expires_at, verified_at, created_at, updated_at
		FROM email_verifications
		WHERE account_id = $1 AND type = $2 AND verified_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`

	err := sqlxGet(ctx, r.db, &record, query, accountID, typ)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, verification.ErrNoPendingVerification
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": accountID, "type": typ}).WithError(err).Error("db: failed to find pending verification")
		}
		return nil, fmt.Errorf("failed to find pending verification: %w", err)
	}

	return &record, nil
}
