package ports

import "context"

// EmailSender delivers rendered verification mails. It does not retry; a
// failed send after commit is logged by the outbox worker.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
}
