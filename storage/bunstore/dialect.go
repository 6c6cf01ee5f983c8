package bunstore

import (
	"database/sql"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-domain-repository/repository"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// postgres unique_violation
const pqUniqueViolation = "23505"

// Open connects to dsn with driver and wraps the pool in a *bun.DB using
// the matching dialect.
func Open(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case DriverSQLite, "sqlite":
		sqldb, err := sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case DriverPostgres, "pg":
		sqldb, err := sql.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, errors.Wrap(err, "open postgres")
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("bunstore: unsupported driver %q", driver)
	}
}

// IsConstraintViolation reports whether err is a uniqueness violation
// raised by the sqlite3 or postgres driver.
func IsConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}

func mapWriteError(op string, err error) error {
	if IsConstraintViolation(err) {
		return repository.Conflict(op, err)
	}
	return errors.Wrap(err, op)
}
