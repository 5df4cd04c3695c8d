package account

import (
	"time"

	"github.com/google/uuid"
)

// AuditMeta carries the creation/update timestamps shared by persisted entities.
type AuditMeta struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SoftDeleteMeta carries the logical-deletion marker. IsDeleted is true
// exactly when DeletedAt is set.
type SoftDeleteMeta struct {
	IsDeleted bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at" db:"deleted_at"`
}

type Account struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	LoginID         string     `json:"login_id" db:"login_id"`
	Email           string     `json:"email" db:"email"`
	PasswordHash    string     `json:"-" db:"password_hash"`
	Status          Status     `json:"status" db:"status"`
	EmailVerifiedAt *time.Time `json:"email_verified_at" db:"email_verified_at"`
	AuditMeta
	SoftDeleteMeta
}

type Status string

const (
	StatusNotVerified Status = "NOT_VERIFIED"
	StatusActive      Status = "ACTIVE"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusNotVerified, StatusActive:
		return true
	default:
		return false
	}
}

// Activate promotes the account to ACTIVE and stamps the verification time.
// The transition is one-way: an already-active account is left untouched so
// EmailVerifiedAt is never overwritten.
func (a *Account) Activate(now time.Time) {
	if a.Status == StatusActive {
		return
	}
	a.Status = StatusActive
	a.EmailVerifiedAt = &now
	a.UpdatedAt = now
}

// SoftDelete marks the account logically deleted.
func (a *Account) SoftDelete(now time.Time) {
	a.IsDeleted = true
	a.DeletedAt = &now
	a.UpdatedAt = now
}

// CreateAccountRequest represents the request to sign up a new account
type CreateAccountRequest struct {
	LoginID  string `json:"login_id" validate:"required,min=4,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}
