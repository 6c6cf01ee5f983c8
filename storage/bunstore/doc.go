// Package bunstore implements repository.Store on top of uptrace/bun.
//
// Entities are never handed to bun directly. A Mapper converts each entity
// to a bun model R and back, so the domain type keeps its unexported
// fields and its value semantics while R carries the table mapping:
//
//	store := bunstore.New[*Widget, WidgetRow, int64](db, WidgetMapper{})
//	repo := repository.NewDefault[*Widget, int64](store)
//
// Uniqueness violations reported by the sqlite3 and postgres drivers are
// returned as repository.ErrConflict. Open builds a *bun.DB for either
// driver with the matching dialect.
package bunstore
