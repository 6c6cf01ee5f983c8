package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-domain-repository/repository"
)

// Interface assertion to ensure Store implements repository.Store
var _ repository.Store[any, int64] = (*Store[any, int64])(nil)

// ErrMissingKey is returned by Put when a record has no primary key and the
// store was not given a key generator.
var ErrMissingKey = errors.New("memory: record has no primary key")

type row[T any] struct {
	seq   uint64
	value T
}

type uniqueIndex[T any, PK comparable] struct {
	name    string
	valueOf func(T) string
	entries *xsync.MapOf[string, PK]
}

// Store keeps records in process memory, keyed by primary key.
// Reads are lock free; writes are serialized so unique indexes stay
// consistent with the rows they point at.
type Store[T any, PK comparable] struct {
	keyOf   func(T) PK
	gen     func() PK
	assign  func(T, PK) T
	rows    *xsync.MapOf[PK, row[T]]
	indexes []*uniqueIndex[T, PK]
	seq     atomic.Uint64
	mu      sync.Mutex
}

// Option configures a Store.
type Option[T any, PK comparable] func(*Store[T, PK])

// WithKeyGenerator makes Put assign a fresh key to records whose key is the
// zero value. assign returns the record carrying the new key.
func WithKeyGenerator[T any, PK comparable](gen func() PK, assign func(T, PK) T) Option[T, PK] {
	return func(s *Store[T, PK]) {
		s.gen = gen
		s.assign = assign
	}
}

// WithUniqueIndex declares that valueOf must be unique across records.
// Put reports a repository.ErrConflict when it is not.
func WithUniqueIndex[T any, PK comparable](name string, valueOf func(T) string) Option[T, PK] {
	return func(s *Store[T, PK]) {
		s.indexes = append(s.indexes, &uniqueIndex[T, PK]{
			name:    name,
			valueOf: valueOf,
			entries: xsync.NewMapOf[string, PK](),
		})
	}
}

// New creates a store that reads each record's primary key with keyOf.
func New[T any, PK comparable](keyOf func(T) PK, opts ...Option[T, PK]) *Store[T, PK] {
	s := &Store[T, PK]{
		keyOf: keyOf,
		rows:  xsync.NewMapOf[PK, row[T]](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the record stored at pk.
func (s *Store[T, PK]) Get(ctx context.Context, pk PK) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	r, ok := s.rows.Load(pk)
	if !ok {
		return zero, false, nil
	}
	return r.value, true, nil
}

// Delete removes the record at pk and its index entries.
func (s *Store[T, PK]) Delete(ctx context.Context, pk PK) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows.LoadAndDelete(pk)
	if !ok {
		return nil
	}
	for _, idx := range s.indexes {
		idx.entries.Delete(idx.valueOf(r.value))
	}
	return nil
}

// Put inserts record, or replaces the record stored under the same key.
func (s *Store[T, PK]) Put(ctx context.Context, record T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pk := s.keyOf(record)
	if isZeroKey(pk) {
		if s.gen == nil {
			return zero, ErrMissingKey
		}
		pk = s.gen()
		record = s.assign(record, pk)
	}

	for _, idx := range s.indexes {
		if owner, taken := idx.entries.Load(idx.valueOf(record)); taken && owner != pk {
			return zero, repository.Conflict("put", fmt.Errorf("unique index %q: value already taken", idx.name))
		}
	}

	seq := s.seq.Add(1)
	if prev, ok := s.rows.Load(pk); ok {
		seq = prev.seq
		for _, idx := range s.indexes {
			if old := idx.valueOf(prev.value); old != idx.valueOf(record) {
				idx.entries.Delete(old)
			}
		}
	}
	for _, idx := range s.indexes {
		idx.entries.Store(idx.valueOf(record), pk)
	}
	s.rows.Store(pk, row[T]{seq: seq, value: record})
	return record, nil
}

// All returns every record in insertion order.
func (s *Store[T, PK]) All(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := make([]row[T], 0, s.rows.Size())
	s.rows.Range(func(_ PK, r row[T]) bool {
		rows = append(rows, r)
		return true
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.value
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *Store[T, PK]) Len() int {
	return s.rows.Size()
}

// Lookup returns the key of the record whose index value is value.
func (s *Store[T, PK]) Lookup(index, value string) (PK, bool) {
	for _, idx := range s.indexes {
		if idx.name == index {
			return idx.entries.Load(value)
		}
	}
	var zero PK
	return zero, false
}

// Resolver adapts a unique index of s into a repository.Resolver. format
// renders an identity the same way the index's valueOf renders a record.
func Resolver[ID any, T any, PK comparable](s *Store[T, PK], index string, format func(ID) string) repository.Resolver[ID, PK] {
	return func(ctx context.Context, id ID) (PK, bool, error) {
		if err := ctx.Err(); err != nil {
			var zero PK
			return zero, false, err
		}
		pk, ok := s.Lookup(index, format(id))
		return pk, ok, nil
	}
}

// Sequence returns a generator of increasing int64 keys starting at 1.
func Sequence() func() int64 {
	var n atomic.Int64
	return func() int64 { return n.Add(1) }
}

func isZeroKey[PK comparable](pk PK) bool {
	var zero PK
	return pk == zero
}
