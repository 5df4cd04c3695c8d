package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/identitykit/account-service/internal/infrastructure/db"
)

// sqlxGet and sqlxSelect route single-row and multi-row queries through the
// transaction-aware executor.

func sqlxGet(ctx context.Context, database *db.Database, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, database.Executor(ctx), dest, query, args...)
}

func sqlxSelect(ctx context.Context, database *db.Database, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, database.Executor(ctx), dest, query, args...)
}
