package valueobject

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Field is a single significant field of a value object.
type Field struct {
	Name  string
	Value any
}

// Valuer exposes the significant fields of a value object, in a stable order.
// The surrogate key and the cached hash held by Base are never listed.
type Valuer interface {
	ValueFields() []Field
}

// Equaler is implemented by values that define their own value equality.
// Composite fields implementing it are compared with it instead of deep equality.
type Equaler interface {
	Equals(other any) bool
}

// Hasher is implemented by values that cache or define their own hash code.
// A type implementing Equaler should implement Hasher too, so that equal
// values keep producing equal hash codes.
type Hasher interface {
	HashCode() uint64
}

// ValueObject is the contract every value object satisfies.
type ValueObject[T any] interface {
	Valuer
	Equaler
	Hasher
	fmt.Stringer

	// SameValueAs reports whether other has the same significant fields.
	SameValueAs(other T) bool
}

// Base holds the state of a value object that is not part of its value:
// a surrogate storage key and the lazily computed hash code.
// Embed it by value and pass the enclosing type by pointer.
type Base struct {
	surrogateKey int64
	cachedHash   atomic.Uint64
}

// SurrogateKey returns the storage-assigned surrogate key, zero if unset.
func (b *Base) SurrogateKey() int64 {
	return b.surrogateKey
}

// AssignSurrogateKey records the surrogate key handed out by storage.
func (b *Base) AssignSurrogateKey(key int64) {
	b.surrogateKey = key
}

// CachedHash returns the hash code of v, computing it on first use.
// Zero marks the slot as unset; concurrent first calls may both compute
// the hash, which is harmless because Hash is deterministic.
func (b *Base) CachedHash(v Valuer) uint64 {
	h := b.cachedHash.Load()
	if h == 0 {
		h = Hash(v)
		b.cachedHash.Store(h)
	}
	return h
}

// SameValue reports whether a and b hold equal significant fields.
// It returns false when b is nil or when the run-time types differ.
func SameValue[T Valuer](a, b T) bool {
	if isNil(a) || isNil(b) {
		return false
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}

	fa, fb := a.ValueFields(), b.ValueFields()
	if len(fa) != len(fb) {
		return false
	}
	for i := range fa {
		if fa[i].Name != fb[i].Name || !fieldEqual(fa[i].Value, fb[i].Value) {
			return false
		}
	}
	return true
}

// Equals implements the equals contract on top of SameValue:
// nil is never equal, the same reference always is, and a different
// concrete type never is.
func Equals[T Valuer](self T, other any) bool {
	if isNil(other) {
		return false
	}
	if sameReference(self, other) {
		return true
	}
	if reflect.TypeOf(self) != reflect.TypeOf(other) {
		return false
	}
	o, ok := other.(T)
	if !ok {
		return false
	}
	return SameValue(self, o)
}

// Hash computes a structural hash over the significant fields of v.
func Hash(v Valuer) uint64 {
	if isNil(v) {
		return 0
	}

	d := xxhash.New()
	var buf [8]byte
	for _, f := range v.ValueFields() {
		_, _ = d.WriteString(f.Name)
		_, _ = d.Write([]byte{0})

		if h, ok := f.Value.(Hasher); ok && !isNil(f.Value) {
			binary.LittleEndian.PutUint64(buf[:], h.HashCode())
			_, _ = d.Write(buf[:])
		} else {
			_, _ = d.WriteString(encode(f.Value))
		}
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// Format renders v as TypeName[field=value,...] for logs and debugging.
func Format(v Valuer) string {
	if isNil(v) {
		return "<nil>"
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	fields := v.ValueFields()
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s=%v", f.Name, f.Value)
	}

	var b strings.Builder
	b.WriteString(t.Name())
	b.WriteByte('[')
	b.WriteString(strings.Join(parts, ","))
	b.WriteByte(']')
	return b.String()
}

// fieldEqual compares two field values, descending into slices, arrays
// and maps so that nested value objects use their own equality.
func fieldEqual(a, b any) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	if eq, ok := a.(Equaler); ok {
		return eq.Equals(b)
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Slice, reflect.Array:
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !fieldEqual(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}
		return true

	case reflect.Map:
		if va.Len() != vb.Len() {
			return false
		}
		iter := va.MapRange()
		for iter.Next() {
			other := vb.MapIndex(iter.Key())
			if !other.IsValid() || !fieldEqual(iter.Value().Interface(), other.Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

func sameReference(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Ptr || vb.Kind() != reflect.Ptr {
		return false
	}
	return va.Type() == vb.Type() && va.Pointer() == vb.Pointer()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
