package ports

import "context"

// TransactionManager runs a function inside a database transaction. The
// context passed to fn carries the transaction; repositories route their
// statements through it.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// AfterCommit schedules fn to run once the surrounding transaction
	// commits. Outside a transaction fn runs immediately. Registered hooks
	// are discarded on rollback.
	AfterCommit(ctx context.Context, fn func())
}
