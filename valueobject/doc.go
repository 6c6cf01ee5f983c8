// Package valueobject provides value-equality, hashing and string rendering
// for immutable domain values.
//
// # Overview
//
// A value object is compared by the aggregate of its significant fields and
// never by reference. Each concrete type lists its significant fields through
// the Valuer interface and embeds Base, which carries the state that is not
// part of the value: a surrogate storage key and a lazily cached hash code.
//
// # Basic Usage
//
//	type Money struct {
//		valueobject.Base
//		amount   int64
//		currency string
//	}
//
//	func (m *Money) ValueFields() []valueobject.Field {
//		return []valueobject.Field{
//			{Name: "amount", Value: m.amount},
//			{Name: "currency", Value: m.currency},
//		}
//	}
//
//	func (m *Money) SameValueAs(o *Money) bool { return valueobject.SameValue(m, o) }
//	func (m *Money) Equals(o any) bool         { return valueobject.Equals(m, o) }
//	func (m *Money) HashCode() uint64          { return m.CachedHash(m) }
//	func (m *Money) String() string            { return valueobject.Format(m) }
//
// # Equality Rules
//
//   - Equals returns false for nil, true for the same reference and false
//     when the concrete types differ; otherwise it defers to SameValue.
//   - Field values implementing Equaler are compared with their own Equals,
//     including inside slices, arrays and maps. Other values use deep equality.
//   - Two values that are SameValue always produce the same Hash.
//
// # Hash Caching
//
// CachedHash stores the first computed hash in an atomic slot. Zero means
// unset; a real hash of zero is recomputed on every call, which only costs
// time. Concurrent first calls may compute the hash more than once and the
// last store wins with the same value.
//
// # Custom Equality
//
// A type may replace Equals and HashCode with hand-written versions, for
// example to compare entities by identity only. It must keep equal values
// hashing equally.
package valueobject
