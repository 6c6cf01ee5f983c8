package repository

import "context"

// Interface assertion to ensure Default implements Repository
var _ Repository[any, int64, int64] = (*Default[any, int64])(nil)

// Default is the repository for entities whose identity is the primary key.
// Find and Remove go straight to the key based operations.
type Default[T any, ID any] struct {
	*Base[T, ID, ID]
}

// NewDefault creates a repository over store where ID == PK.
func NewDefault[T any, ID any](store Store[T, ID], opts ...Option) *Default[T, ID] {
	return &Default[T, ID]{Base: New(store, IdentityResolver[ID](), opts...)}
}

// Find returns the entity whose identity, and key, is id.
func (r *Default[T, ID]) Find(ctx context.Context, id ID) (T, bool, error) {
	return r.FindByPrimaryKey(ctx, id)
}

// Remove deletes the entity whose identity, and key, is id.
func (r *Default[T, ID]) Remove(ctx context.Context, id ID) error {
	return r.RemoveByPrimaryKey(ctx, id)
}
