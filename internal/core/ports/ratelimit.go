package ports

import "context"

// ResendLimiter throttles verification-email resends per address.
type ResendLimiter interface {
	// Acquire reports whether a resend for email is allowed inside the
	// current limit window, consuming the slot when it is.
	Acquire(ctx context.Context, email string) (bool, error)
}
