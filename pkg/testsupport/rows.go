package testsupport

import (
	bunrepository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// WidgetRow is the bun model persisted for a Widget.
type WidgetRow struct {
	bun.BaseModel `bun:"table:widgets,alias:w"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Name  string `bun:"name,notnull,unique"`
	Color string `bun:"color"`
}

// WidgetMapper converts between Widget and WidgetRow.
type WidgetMapper struct{}

func (WidgetMapper) ToRow(w *Widget) *WidgetRow {
	return &WidgetRow{ID: w.ID(), Name: w.name, Color: w.color}
}

func (WidgetMapper) FromRow(r *WidgetRow) *Widget {
	return NewWidgetBuilder().ID(r.ID).Name(r.Name).Color(r.Color).Build()
}

func (WidgetMapper) PrimaryKey(w *Widget) int64 {
	return w.ID()
}

// WidgetRowHandlers configures a go-repository-bun repository for the
// widgets table. Rows are keyed by an integer, so the uuid hooks are inert
// and identifier lookups go through the unique name column.
func WidgetRowHandlers() bunrepository.ModelHandlers[*WidgetRow] {
	return bunrepository.ModelHandlers[*WidgetRow]{
		NewRecord:     func() *WidgetRow { return new(WidgetRow) },
		GetID:         func(*WidgetRow) uuid.UUID { return uuid.Nil },
		SetID:         func(*WidgetRow, uuid.UUID) {},
		GetIdentifier: func() string { return "name" },
	}
}

// AccountRow is the bun model persisted for an Account. The business
// identity is stored in a unique uid column next to the integer key.
type AccountRow struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	PK    int64  `bun:"pk,pk,autoincrement"`
	UID   string `bun:"uid,notnull,unique"`
	Email string `bun:"email,notnull,unique"`
	Name  string `bun:"name"`
}

// AccountMapper converts between Account and AccountRow.
type AccountMapper struct{}

func (AccountMapper) ToRow(a *Account) *AccountRow {
	return &AccountRow{PK: a.PrimaryKey(), UID: a.ID().String(), Email: a.email, Name: a.name}
}

func (AccountMapper) FromRow(r *AccountRow) *Account {
	return RebuildAccount(uuid.MustParse(r.UID), r.PK, r.Email, r.Name)
}

func (AccountMapper) PrimaryKey(a *Account) int64 {
	return a.PrimaryKey()
}
