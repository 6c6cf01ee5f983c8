// Package bunrepo adapts a go-repository-bun repository into a
// repository.Store, so projects that already generate bun repositories can
// put the identity aware repositories of this module on top of them.
package bunrepo

import (
	"context"
	"reflect"

	"github.com/go-faster/errors"
	bunrepository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-domain-repository/repository"
	"github.com/goliatone/go-domain-repository/storage/bunstore"
)

// Source is the subset of bunrepository.Repository the adapter needs.
type Source[M any] interface {
	List(ctx context.Context, criteria ...bunrepository.SelectCriteria) ([]M, int, error)
	Create(ctx context.Context, record M, criteria ...bunrepository.InsertCriteria) (M, error)
	Update(ctx context.Context, record M, criteria ...bunrepository.UpdateCriteria) (M, error)
	DeleteWhere(ctx context.Context, criteria ...bunrepository.DeleteCriteria) error
}

// Interface assertions
var (
	_ Source[any]                  = (bunrepository.Repository[any])(nil)
	_ repository.Store[any, int64] = (*Store[any, struct{}, int64])(nil)
)

// Store exposes a bun model repository as a repository.Store of domain
// entities, converting with a bunstore.Mapper.
type Store[T any, R any, PK comparable] struct {
	source Source[*R]
	mapper bunstore.Mapper[T, R, PK]
}

// New wraps source.
func New[T any, R any, PK comparable](source Source[*R], mapper bunstore.Mapper[T, R, PK]) *Store[T, R, PK] {
	return &Store[T, R, PK]{source: source, mapper: mapper}
}

// ByPrimaryKey selects the row whose primary key is pk.
func ByPrimaryKey[PK any](pk PK) bunrepository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TablePKs = ?", pk)
	}
}

// DeleteByPrimaryKey deletes the row whose primary key is pk.
func DeleteByPrimaryKey[PK any](pk PK) bunrepository.DeleteCriteria {
	return func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("?TablePKs = ?", pk)
	}
}

// OrderByPrimaryKey sorts rows by primary key.
func OrderByPrimaryKey() bunrepository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TablePKs ASC")
	}
}

// UpdateAllColumns makes an update write the zero valued columns of row
// too. go-repository-bun updates with OmitZero, which would otherwise keep
// the old value of a column that was cleared.
func UpdateAllColumns[R any](row *R) bunrepository.UpdateCriteria {
	return func(q *bun.UpdateQuery) *bun.UpdateQuery {
		strct := reflect.ValueOf(row).Elem()
		for _, f := range q.DB().Table(strct.Type()).DataFields {
			if f.SkipUpdate() || !f.HasZeroValue(strct) {
				continue
			}
			if f.NullZero {
				q = q.Value(f.Name, "NULL")
				continue
			}
			q = q.Value(f.Name, "?", f.Value(strct).Interface())
		}
		return q
	}
}

// limit overrides the page size List applies by default. Zero lifts it.
func limit(n int) bunrepository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(n)
	}
}

// Get lists with a primary key criteria so absence is an empty result
// rather than a driver specific not found error.
func (s *Store[T, R, PK]) Get(ctx context.Context, pk PK) (T, bool, error) {
	var zero T
	rows, _, err := s.source.List(ctx, ByPrimaryKey(pk), limit(1))
	if err != nil {
		return zero, false, errors.Wrap(err, "list by primary key")
	}
	if len(rows) == 0 || rows[0] == nil {
		return zero, false, nil
	}
	return s.mapper.FromRow(rows[0]), true, nil
}

// Delete removes the row at pk.
func (s *Store[T, R, PK]) Delete(ctx context.Context, pk PK) error {
	if err := s.source.DeleteWhere(ctx, DeleteByPrimaryKey(pk)); err != nil {
		return errors.Wrap(err, "delete by primary key")
	}
	return nil
}

// Put creates records without a key. Keyed records update the existing
// row, or are created with their key when there is none.
func (s *Store[T, R, PK]) Put(ctx context.Context, record T) (T, error) {
	var zero T
	var pk PK
	row := s.mapper.ToRow(record)

	op := "create"
	if key := s.mapper.PrimaryKey(record); key != pk {
		_, exists, err := s.Get(ctx, key)
		if err != nil {
			return zero, err
		}
		if exists {
			op = "update"
		}
	}

	var (
		saved *R
		err   error
	)
	if op == "update" {
		saved, err = s.source.Update(ctx, row, UpdateAllColumns(row))
	} else {
		saved, err = s.source.Create(ctx, row)
	}
	if err != nil {
		if bunstore.IsConstraintViolation(err) {
			return zero, repository.Conflict(op, err)
		}
		return zero, errors.Wrap(err, op)
	}
	if saved == nil {
		saved = row
	}
	return s.mapper.FromRow(saved), nil
}

// All lists every row ordered by primary key.
func (s *Store[T, R, PK]) All(ctx context.Context) ([]T, error) {
	rows, _, err := s.source.List(ctx, OrderByPrimaryKey(), limit(0))
	if err != nil {
		return nil, errors.Wrap(err, "list")
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			out = append(out, s.mapper.FromRow(r))
		}
	}
	return out, nil
}
