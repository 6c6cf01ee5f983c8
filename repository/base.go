package repository

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

// Interface assertion to ensure Base implements Repository
var _ Repository[any, string, int64] = (*Base[any, string, int64])(nil)

// Option configures a repository.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	validate bool
}

func defaultOptions() options {
	return options{logger: zap.NewNop(), validate: true}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithValidation toggles calling Validate on entities that implement
// validation.Validatable before they are saved. It is on by default.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

// Base implements Repository for entities whose identity differs from the
// storage key. Identity lookups resolve the identity to a key first and
// then delegate to the key based operations.
type Base[T any, ID any, PK any] struct {
	store   Store[T, PK]
	resolve Resolver[ID, PK]
	opts    options
}

// New creates a repository over store that maps identities with resolve.
func New[T any, ID any, PK any](store Store[T, PK], resolve Resolver[ID, PK], opts ...Option) *Base[T, ID, PK] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Base[T, ID, PK]{store: store, resolve: resolve, opts: o}
}

// FindByPrimaryKey returns the entity stored at pk.
func (r *Base[T, ID, PK]) FindByPrimaryKey(ctx context.Context, pk PK) (T, bool, error) {
	return r.store.Get(ctx, pk)
}

// RemoveByPrimaryKey deletes the entity stored at pk, if any.
func (r *Base[T, ID, PK]) RemoveByPrimaryKey(ctx context.Context, pk PK) error {
	return r.store.Delete(ctx, pk)
}

// Save validates entity when it knows how to, then persists it.
// Storage errors, conflicts included, are returned unmodified.
func (r *Base[T, ID, PK]) Save(ctx context.Context, entity T) (T, error) {
	if r.opts.validate {
		if v, ok := any(entity).(validation.Validatable); ok {
			if err := v.Validate(); err != nil {
				var zero T
				return zero, Invalid("save", err)
			}
		}
	}

	saved, err := r.store.Put(ctx, entity)
	if err != nil {
		r.opts.logger.Debug("save failed",
			zap.String("entity", fmt.Sprintf("%T", entity)),
			zap.Bool("conflict", IsConflict(err)),
			zap.Error(err),
		)
		var zero T
		return zero, err
	}
	return saved, nil
}

// FindAll returns every persisted entity.
func (r *Base[T, ID, PK]) FindAll(ctx context.Context) ([]T, error) {
	return r.store.All(ctx)
}

// Find resolves id to a primary key and fetches the entity stored there.
// An identity without a key is reported as not found.
func (r *Base[T, ID, PK]) Find(ctx context.Context, id ID) (T, bool, error) {
	pk, ok, err := r.resolve(ctx, id)
	if err != nil || !ok {
		if err == nil {
			r.unresolved("find", id)
		}
		var zero T
		return zero, false, err
	}
	return r.FindByPrimaryKey(ctx, pk)
}

// Remove resolves id to a primary key and deletes the entity stored there.
// An identity without a key leaves storage untouched.
func (r *Base[T, ID, PK]) Remove(ctx context.Context, id ID) error {
	pk, ok, err := r.resolve(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		r.unresolved("remove", id)
		return nil
	}
	return r.RemoveByPrimaryKey(ctx, pk)
}

// Store returns the storage collaborator.
func (r *Base[T, ID, PK]) Store() Store[T, PK] {
	return r.store
}

func (r *Base[T, ID, PK]) unresolved(op string, id ID) {
	r.opts.logger.Debug("identity did not resolve to a primary key",
		zap.String("op", op),
		zap.Any("id", id),
	)
}
