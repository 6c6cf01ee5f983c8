package repository

import "context"

// Repository is a collection of persisted entities T addressed by business
// identity ID and backed by storage rows addressed by primary key PK.
// ID and PK may be the same type.
//
// Absence is a normal result: lookups return found == false with a nil
// error. Errors always come from the storage collaborator.
type Repository[T any, ID any, PK any] interface {
	// FindByPrimaryKey returns the entity stored at pk.
	FindByPrimaryKey(ctx context.Context, pk PK) (T, bool, error)
	// RemoveByPrimaryKey deletes the row at pk; a missing row is a no-op.
	RemoveByPrimaryKey(ctx context.Context, pk PK) error
	// Save persists a new or updated entity and returns its persisted form.
	Save(ctx context.Context, entity T) (T, error)
	// FindAll returns every persisted entity in storage order.
	FindAll(ctx context.Context) ([]T, error)
	// Find returns the entity with business identity id.
	Find(ctx context.Context, id ID) (T, bool, error)
	// Remove deletes the entity with business identity id, if any.
	Remove(ctx context.Context, id ID) error
}

// Store is the storage collaborator a repository delegates to. It exposes
// the four per-entity capabilities: fetch, delete, upsert and enumerate.
type Store[T any, PK any] interface {
	// Get returns the row at pk, found == false when there is none.
	Get(ctx context.Context, pk PK) (T, bool, error)
	// Delete removes the row at pk. Deleting a missing row is not an error.
	Delete(ctx context.Context, pk PK) error
	// Put inserts or updates record and returns the stored form, which may
	// carry a generated key. Uniqueness violations are reported as ErrConflict.
	Put(ctx context.Context, record T) (T, error)
	// All returns every row.
	All(ctx context.Context) ([]T, error)
}

// Resolver maps a business identity to a primary key. Finding no mapping
// is reported as found == false, not as an error.
type Resolver[ID any, PK any] func(ctx context.Context, id ID) (PK, bool, error)

// IdentityResolver returns the Resolver for repositories whose identity is
// the primary key.
func IdentityResolver[K any]() Resolver[K, K] {
	return func(_ context.Context, id K) (K, bool, error) {
		return id, true, nil
	}
}
