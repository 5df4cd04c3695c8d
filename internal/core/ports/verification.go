package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/identitykit/account-service/internal/core/domain/account"
	"github.com/identitykit/account-service/internal/core/domain/verification"
)

// TokenService mints and validates signed, time-limited verification tokens.
type TokenService interface {
	Generate(email string, typ verification.Type) (string, error)
	Validate(token string) (*verification.Claims, error)
}

// VerificationStore persists verification records and answers whether a token
// is currently valid and unconsumed.
type VerificationStore interface {
	CreatePending(ctx context.Context, a *account.Account, token string, typ verification.Type, ttl time.Duration) (*verification.Record, error)
	// FindValid returns the unique record matching the claims, the stored
	// token, expires_at > now and verified_at IS NULL. The raw token is
	// matched against server-held state so a forged or replayed token fails
	// even with valid claims.
	FindValid(ctx context.Context, claims *verification.Claims, rawToken string, now time.Time) (*verification.Record, error)
	// MarkVerified consumes a record. The update is conditional on
	// verified_at still being NULL so two concurrent verifications of the
	// same token succeed at most once.
	MarkVerified(ctx context.Context, id uuid.UUID, now time.Time) error
	FindPendingByAccountAndType(ctx context.Context, accountID uuid.UUID, typ verification.Type) (*verification.Record, error)
}
