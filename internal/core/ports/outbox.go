package ports

import (
	"context"
	"time"

	"github.com/identitykit/account-service/internal/core/domain/verification"
)

// OutboxMessage is a queued "send verification email" request. Messages
// enqueued inside a transaction are handed to the consumer only after that
// transaction commits.
type OutboxMessage struct {
	Recipient  string
	Token      string
	Type       verification.Type
	Resend     bool
	EnqueuedAt time.Time
}

// EventDispatcher is the commit-gated outbox. Enqueue never blocks the caller;
// when the context carries an open transaction, delivery is deferred until
// that transaction commits.
type EventDispatcher interface {
	Enqueue(ctx context.Context, msg OutboxMessage)
}
