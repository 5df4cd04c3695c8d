package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/identitykit/account-service/internal/core/domain/account"
)

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	Create(ctx context.Context, a *account.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	// GetByEmail returns the non-deleted account with the given email.
	GetByEmail(ctx context.Context, email string) (*account.Account, error)
	// Activate flips the account to ACTIVE and stamps email_verified_at.
	// Already-active accounts are left untouched.
	Activate(ctx context.Context, id uuid.UUID, now time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	ListUnverifiedOlderThan(ctx context.Context, cutoff time.Time) ([]*account.Account, error)
	ListSoftDeletedOlderThan(ctx context.Context, cutoff time.Time) ([]*account.Account, error)
}

// AccountService defines the interface for account lifecycle logic
type AccountService interface {
	CreateAccount(ctx context.Context, loginID, email, passwordHash string) (*account.Account, error)
	// Activate promotes the account to ACTIVE, a no-op when it already is.
	Activate(ctx context.Context, id uuid.UUID) (*account.Account, error)
	FindActiveByEmail(ctx context.Context, email string) (*account.Account, error)

	// Retention operations, invoked by the scheduler. Both return the number
	// of accounts processed.
	DeleteExpiredUnverifiedAccounts(ctx context.Context) (int, error)
	HardDeleteExpiredDeletedAccounts(ctx context.Context) (int, error)
}
