// Package repository defines the generic persistence contract for entities
// and the two stock implementations of it.
//
// # Overview
//
// A Repository[T, ID, PK] exposes six operations. Three address rows by
// primary key (FindByPrimaryKey, RemoveByPrimaryKey, Save) and one lists them
// all (FindAll). The remaining two (Find, Remove) address entities by their
// business identity.
//
// The key based operations are delegated to a Store, the storage
// collaborator. Identity based operations first call a Resolver to turn the
// identity into a key and then reuse the key based path.
//
// # Implementations
//
// Base is the general repository. It is built from a Store and a Resolver:
//
//	repo := repository.New[*Account, uuid.UUID, int64](store, resolveByUID)
//
// Default covers the common case where identity and key are the same value:
//
//	repo := repository.NewDefault[*Widget, int64](store)
//
// # Absence and Errors
//
// A missing entity is not an error. Lookups return found == false and a nil
// error, and removing something that is not there does nothing. Errors come
// from storage and are returned as they are. Stores report uniqueness
// violations as ErrConflict, and Save reports entities that fail their own
// Validate method as ErrInvalid:
//
//	if _, err := repo.Save(ctx, w); repository.IsConflict(err) {
//		// name already taken
//	}
package repository
