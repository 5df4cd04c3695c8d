package verification

import (
	"time"

	"github.com/google/uuid"

	"github.com/identitykit/account-service/internal/core/domain/account"
)

// Type identifies what a verification token proves. Only SIGNUP has a flow
// behind it today; the other values are reserved.
type Type string

const (
	TypeSignup        Type = "SIGNUP"
	TypePasswordReset Type = "PASSWORD_RESET"
	TypeEmailChange   Type = "EMAIL_CHANGE"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case TypeSignup, TypePasswordReset, TypeEmailChange:
		return true
	default:
		return false
	}
}

// Record is the server-side row tracking a single issued token. At most one
// unconsumed record per (account, type) is expected by the resend path.
type Record struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	AccountID  uuid.UUID  `json:"account_id" db:"account_id"`
	Token      string     `json:"token" db:"token"`
	Type       Type       `json:"type" db:"type"`
	Email      string     `json:"email" db:"email"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	VerifiedAt *time.Time `json:"verified_at" db:"verified_at"`
	account.AuditMeta
}

// IsExpired reports whether the record's token has passed its expiry.
func (r *Record) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsConsumed reports whether the token has already been used.
func (r *Record) IsConsumed() bool {
	return r.VerifiedAt != nil
}

// Claims are the parsed contents of a verification token.
type Claims struct {
	Email     string
	Type      Type
	Nonce     string
	ExpiresAt time.Time
}

// ResendEmailRequest represents the request to resend a verification email
type ResendEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Type  Type   `json:"type" validate:"required"`
}
