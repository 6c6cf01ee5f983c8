package testsupport

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/goliatone/go-domain-repository/entity"
	"github.com/goliatone/go-domain-repository/valueobject"
)

// Account is an entity whose business identity (a UUID) differs from its
// storage key. The storage key lives in the surrogate key slot and is not
// part of the value.
type Account struct {
	entity.Base[uuid.UUID]
	email string
	name  string
}

var (
	_ valueobject.ValueObject[*Account] = (*Account)(nil)
	_ entity.Entity[uuid.UUID]          = (*Account)(nil)
)

// NewAccount creates an account with a fresh identity.
func NewAccount(email, name string) *Account {
	return RebuildAccount(uuid.New(), 0, email, name)
}

// RebuildAccount restores an account loaded from storage.
func RebuildAccount(id uuid.UUID, pk int64, email, name string) *Account {
	a := &Account{
		Base:  entity.NewBase(id),
		email: email,
		name:  name,
	}
	a.AssignSurrogateKey(pk)
	return a
}

// Email returns the account email.
func (a *Account) Email() string { return a.email }

// Name returns the display name.
func (a *Account) Name() string { return a.name }

// PrimaryKey returns the storage key, zero until saved.
func (a *Account) PrimaryKey() int64 { return a.SurrogateKey() }

// WithPrimaryKey returns a copy of a carrying the storage key pk.
func (a *Account) WithPrimaryKey(pk int64) *Account {
	return RebuildAccount(a.ID(), pk, a.email, a.name)
}

// Rename returns a copy of a with a new display name.
func (a *Account) Rename(name string) *Account {
	return RebuildAccount(a.ID(), a.PrimaryKey(), a.email, name)
}

func (a *Account) ValueFields() []valueobject.Field {
	return []valueobject.Field{
		a.IdentityField(),
		{Name: "email", Value: a.email},
		{Name: "name", Value: a.name},
	}
}

func (a *Account) SameValueAs(o *Account) bool { return valueobject.SameValue(a, o) }
func (a *Account) Equals(o any) bool           { return valueobject.Equals(a, o) }
func (a *Account) HashCode() uint64            { return a.CachedHash(a) }
func (a *Account) String() string              { return valueobject.Format(a) }

// Validate checks the account invariants.
func (a *Account) Validate() error {
	return validation.Errors{
		"email": validation.Validate(a.email, validation.Required, is.EmailFormat),
		"name":  validation.Validate(a.name, validation.Length(0, 128)),
	}.Filter()
}
