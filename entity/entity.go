package entity

import (
	"github.com/goliatone/go-domain-repository/valueobject"
)

// IdentityFieldName is the field name Base uses for the identity when it
// is listed among the significant fields.
const IdentityFieldName = "id"

// Entity is a value object carrying a stable business identity.
type Entity[ID any] interface {
	valueobject.Valuer

	// ID returns the identity assigned at construction or on first save.
	ID() ID
}

// Builder produces immutable entities from a mutable staging value.
// Builders seeded from an existing entity implement copy-and-modify.
type Builder[T any] interface {
	Build() T
}

// Base is embedded by concrete entities. It carries the identity on top of
// the value object state. Equality stays field based: list IdentityField
// together with the other significant fields in ValueFields.
type Base[ID comparable] struct {
	valueobject.Base
	id ID
}

// NewBase returns a Base holding id.
func NewBase[ID comparable](id ID) Base[ID] {
	return Base[ID]{id: id}
}

// ID returns the entity identity.
func (b *Base[ID]) ID() ID {
	return b.id
}

// IdentityField returns the identity as a significant field.
func (b *Base[ID]) IdentityField() valueobject.Field {
	return valueobject.Field{Name: IdentityFieldName, Value: b.id}
}

// IsTransient reports whether no identity has been assigned yet.
func (b *Base[ID]) IsTransient() bool {
	var zero ID
	return b.id == zero
}

// IsTransient reports whether e still carries the zero identity.
func IsTransient[ID comparable](e Entity[ID]) bool {
	var zero ID
	return e.ID() == zero
}

// SameIdentity reports whether a and b carry equal identities. Use it
// where identity-only comparison is wanted; Equals stays field based.
func SameIdentity[ID comparable](a, b Entity[ID]) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ID() == b.ID()
}
