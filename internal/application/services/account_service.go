package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/identitykit/account-service/internal/core/domain/account"
	"github.com/identitykit/account-service/internal/core/ports"
)

// AccountService owns account state transitions and the bulk retention
// queries.
type AccountService struct {
	repo ports.AccountRepository
	// unverifiedTTL is the window an unverified account gets before it is
	// considered abandoned; it equals the verification token expiry.
	unverifiedTTL   time.Duration
	hardDeleteAfter time.Duration
	logger          *logrus.Logger
}

func NewAccountService(repo ports.AccountRepository, unverifiedTTL, hardDeleteAfter time.Duration, logger *logrus.Logger) ports.AccountService {
	return &AccountService{
		repo:            repo,
		unverifiedTTL:   unverifiedTTL,
		hardDeleteAfter: hardDeleteAfter,
		logger:          logger,
	}
}

// CreateAccount inserts a new NOT_VERIFIED account. The storage layer's
// uniqueness constraints surface as ErrDuplicateAccount.
func (s *AccountService) CreateAccount(ctx context.Context, loginID, email, passwordHash string) (*account.Account, error) {
	now := time.Now()
	a := &account.Account{
		ID:           uuid.New(),
		LoginID:      loginID,
		Email:        email,
		PasswordHash: passwordHash,
		Status:       account.StatusNotVerified,
		AuditMeta:    account.AuditMeta{CreatedAt: now, UpdatedAt: now},
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// Activate promotes the account to ACTIVE and stamps email_verified_at. The
// transition is one-way; activating an already-active account leaves
// email_verified_at untouched.
func (s *AccountService) Activate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.Status == account.StatusActive {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"account_id": id}).Debug("account already active")
		}
		return a, nil
	}

	now := time.Now()
	if err := s.repo.Activate(ctx, id, now); err != nil {
		return nil, err
	}
	a.Activate(now)

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"account_id": id, "login_id": a.LoginID}).Info("account activated")
	}

	return a, nil
}

// FindActiveByEmail returns the non-deleted account with the given email.
func (s *AccountService) FindActiveByEmail(ctx context.Context, email string) (*account.Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

// DeleteExpiredUnverifiedAccounts soft-deletes accounts that never verified
// within their token's validity window. Returns the number processed. A row
// failure aborts the batch; already-processed rows no longer match the
// selection predicate, so a retried batch skips them.
func (s *AccountService) DeleteExpiredUnverifiedAccounts(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.unverifiedTTL)

	expired, err := s.repo.ListUnverifiedOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired unverified accounts: %w", err)
	}

	processed := 0
	for _, a := range expired {
		if err := s.repo.SoftDelete(ctx, a.ID, time.Now()); err != nil {
			return processed, fmt.Errorf("failed to soft-delete account %s: %w", a.ID, err)
		}
		processed++
	}

	if s.logger != nil && processed > 0 {
		s.logger.WithFields(logrus.Fields{"count": processed, "cutoff": cutoff}).Info("soft-deleted expired unverified accounts")
	}

	return processed, nil
}

// HardDeleteExpiredDeletedAccounts physically removes accounts soft-deleted
// longer ago than the retention period. Returns the number processed.
func (s *AccountService) HardDeleteExpiredDeletedAccounts(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.hardDeleteAfter)

	expired, err := s.repo.ListSoftDeletedOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired soft-deleted accounts: %w", err)
	}

	processed := 0
	for _, a := range expired {
		if err := s.repo.HardDelete(ctx, a.ID); err != nil {
			return processed, fmt.Errorf("failed to hard-delete account %s: %w", a.ID, err)
		}
		processed++
	}

	if s.logger != nil && processed > 0 {
		s.logger.WithFields(logrus.Fields{"count": processed, "cutoff": cutoff}).Info("hard-deleted expired accounts")
	}

	return processed, nil
}
