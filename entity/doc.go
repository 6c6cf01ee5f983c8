// Package entity adds a business identity to value objects.
//
// An entity embeds Base, which carries the identity next to the value
// object state, and lists the identity among its significant fields with
// IdentityField. Equality therefore remains field based: two entities with
// the same identity but different names are not equal. SameIdentity
// compares identities alone.
//
// Entities are immutable. Changes go through a Builder seeded from the
// current entity:
//
//	renamed := NewWidgetBuilderFrom(w).Name("beta").Build()
//
// An entity whose identity is still the zero value is transient; storage
// assigns the identity on first save when the identity is the key.
package entity
