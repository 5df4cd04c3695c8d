package ports

import (
	"context"

	"github.com/identitykit/account-service/internal/core/domain/account"
	"github.com/identitykit/account-service/internal/core/domain/verification"
)

// RegistrationService is the facade for the three user-facing operations.
type RegistrationService interface {
	SignUp(ctx context.Context, req *account.CreateAccountRequest) error
	VerifyEmail(ctx context.Context, token string) (*account.Account, error)
	ResendEmail(ctx context.Context, req *verification.ResendEmailRequest) error
}
