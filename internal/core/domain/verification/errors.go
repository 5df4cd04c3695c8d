package verification

import "errors"

var (
	// ErrTokenInvalid is returned when the signature check fails or the
	// claims are structurally incomplete.
	ErrTokenInvalid = errors.New("verification token is invalid")

	// ErrTokenExpired is returned when the token's expiry has passed.
	ErrTokenExpired = errors.New("verification token has expired")

	// ErrInvalidOrExpiredToken is the merged error surfaced to callers of the
	// verify flow. Signature failures, expiry and missing/consumed records are
	// deliberately indistinguishable from the outside.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired verification link")

	// ErrRecordNotFound is returned when no unconsumed record matches a token.
	ErrRecordNotFound = errors.New("verification record not found")

	// ErrNoPendingVerification is returned by the resend path when every
	// record for the account has been consumed or none was ever created.
	ErrNoPendingVerification = errors.New("no pending verification")

	// ErrResendThrottled is returned when a resend is requested again within
	// the configured limit window.
	ErrResendThrottled = errors.New("verification email was resent too recently")
)
