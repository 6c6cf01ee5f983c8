package bunstore

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-domain-repository/repository"
)

// Interface assertion to ensure Store implements repository.Store
var _ repository.Store[any, int64] = (*Store[any, struct{}, int64])(nil)

// Mapper converts between a domain entity T and the bun model R that is
// persisted for it.
type Mapper[T any, R any, PK any] interface {
	ToRow(T) *R
	FromRow(*R) T
	PrimaryKey(T) PK
}

// Store persists entities through a bun model. R must be a struct with a
// single primary key column.
type Store[T any, R any, PK comparable] struct {
	db     bun.IDB
	mapper Mapper[T, R, PK]
}

// New creates a store over db, which may be a *bun.DB or a bun.Tx.
func New[T any, R any, PK comparable](db bun.IDB, mapper Mapper[T, R, PK]) *Store[T, R, PK] {
	return &Store[T, R, PK]{db: db, mapper: mapper}
}

// WithTx returns a copy of the store that runs its queries in tx.
func (s *Store[T, R, PK]) WithTx(tx bun.IDB) *Store[T, R, PK] {
	return &Store[T, R, PK]{db: tx, mapper: s.mapper}
}

// Get loads the row whose primary key is pk.
func (s *Store[T, R, PK]) Get(ctx context.Context, pk PK) (T, bool, error) {
	var zero T
	row := new(R)
	err := s.db.NewSelect().
		Model(row).
		Where("?TablePKs = ?", pk).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, errors.Wrap(err, "select by primary key")
	}
	return s.mapper.FromRow(row), true, nil
}

// Delete removes the row whose primary key is pk.
func (s *Store[T, R, PK]) Delete(ctx context.Context, pk PK) error {
	_, err := s.db.NewDelete().
		Model((*R)(nil)).
		Where("?TablePKs = ?", pk).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "delete by primary key")
	}
	return nil
}

// Put inserts record when its key is zero and updates it otherwise. An
// update that touches no row falls back to an insert with the given key.
func (s *Store[T, R, PK]) Put(ctx context.Context, record T) (T, error) {
	var zero T
	row := s.mapper.ToRow(record)

	var pk PK
	if s.mapper.PrimaryKey(record) == pk {
		if err := s.insert(ctx, row); err != nil {
			return zero, err
		}
		return s.mapper.FromRow(row), nil
	}

	res, err := s.db.NewUpdate().Model(row).WherePK().Exec(ctx)
	if err != nil {
		return zero, mapWriteError("update", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if err := s.insert(ctx, row); err != nil {
			return zero, err
		}
	}
	return s.mapper.FromRow(row), nil
}

// All returns every row ordered by primary key.
func (s *Store[T, R, PK]) All(ctx context.Context) ([]T, error) {
	var rows []R
	err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("?TablePKs ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, "select all")
	}

	out := make([]T, len(rows))
	for i := range rows {
		out[i] = s.mapper.FromRow(&rows[i])
	}
	return out, nil
}

func (s *Store[T, R, PK]) insert(ctx context.Context, row *R) error {
	if _, err := s.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		return mapWriteError("insert", err)
	}
	return nil
}

// ColumnResolver resolves an identity through a unique column of the
// store's table. format converts the identity to the column's value.
func ColumnResolver[ID any, T any, R any, PK comparable](s *Store[T, R, PK], column string, format func(ID) any) repository.Resolver[ID, PK] {
	return func(ctx context.Context, id ID) (PK, bool, error) {
		var zero PK
		row := new(R)
		err := s.db.NewSelect().
			Model(row).
			Where("?TableAlias.? = ?", bun.Ident(column), format(id)).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return zero, false, nil
		}
		if err != nil {
			return zero, false, errors.Wrapf(err, "resolve by %s", column)
		}
		return s.mapper.PrimaryKey(s.mapper.FromRow(row)), true, nil
	}
}
