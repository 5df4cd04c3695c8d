package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/identitykit/account-service/internal/core/ports"
)

type txCtxKey struct{}

// txSession is the per-transaction state carried through the context. Hooks
// registered via AfterCommit run only once the transaction commits; a
// rollback discards them.
type txSession struct {
	tx          *sqlx.Tx
	afterCommit []func()
}

func sessionFrom(ctx context.Context) *txSession {
	s, _ := ctx.Value(txCtxKey{}).(*txSession)
	return s
}

// TxManager implements ports.TransactionManager on top of sqlx.
type TxManager struct {
	db     *Database
	logger *logrus.Logger
}

func NewTxManager(database *Database, logger *logrus.Logger) ports.TransactionManager {
	return &TxManager{db: database, logger: logger}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// A nested call joins the already-open transaction.
	if sessionFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	session := &txSession{tx: tx}
	txCtx := context.WithValue(ctx, txCtxKey{}, session)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && m.logger != nil {
			m.logger.WithError(rbErr).Error("db: failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, hook := range session.afterCommit {
		hook()
	}

	return nil
}

// AfterCommit defers fn until the transaction in ctx commits. Without an open
// transaction fn runs immediately.
func (m *TxManager) AfterCommit(ctx context.Context, fn func()) {
	if s := sessionFrom(ctx); s != nil {
		s.afterCommit = append(s.afterCommit, fn)
		return
	}
	fn()
}

// Executor returns the statement executor for ctx: the open transaction when
// one is present, the pooled DB otherwise. Repositories route every statement
// through this so a facade-level transaction covers them transparently.
func (d *Database) Executor(ctx context.Context) sqlx.ExtContext {
	if s := sessionFrom(ctx); s != nil {
		return s.tx
	}
	return d.DB
}
