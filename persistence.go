package auth

import (
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenPostgres opens the shared connection pool for the production setup.
// The tenant binder hands out per-request connections from this pool.
func OpenPostgres(dsn string) (*bun.DB, error) {
	if dsn == "" {
		return nil, errors.New("missing database DSN", errors.CategoryBadInput)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to reach database")
	}

	return db, nil
}

// OpenSQLite opens an in-process database, used by the test suite and the
// examples. SQLite has no settings machinery, so pair it with WithBindFunc.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open database")
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
