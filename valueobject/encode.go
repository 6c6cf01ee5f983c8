package valueobject

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// encode renders v deterministically for hashing. Equal values under
// reflect.DeepEqual always produce the same encoding. Maps are sorted and
// pointers are followed. Structs visit their exported fields, except that a
// struct with unexported state that marshals itself, such as time.Time, is
// encoded through MarshalBinary or String. Negative zero encodes as zero.
func encode(v any) string {
	if v == nil {
		return "nil"
	}
	return encodeValue(reflect.ValueOf(v))
}

func encodeValue(rv reflect.Value) string {
	if !rv.IsValid() {
		return "nil"
	}
	if h, ok := asHasher(rv); ok {
		return fmt.Sprintf("hash:%x", h.HashCode())
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return encodeValue(rv.Elem())

	case reflect.Func:
		return fmt.Sprintf("func:%t", rv.IsNil())

	case reflect.Chan:
		if rv.IsNil() {
			return "chan:nil"
		}
		return fmt.Sprintf("chan:%x", rv.Pointer())

	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return encodeSequence("slice", rv)

	case reflect.Array:
		return encodeSequence("array", rv)

	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return encodeMap(rv)

	case reflect.Struct:
		if s, ok := selfEncoded(rv); ok {
			return s
		}
		return encodeStruct(rv)

	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return fmt.Sprintf("%s:%v", rv.Kind(), basic(rv))
	}

	return jsonFallback(rv)
}

func asHasher(rv reflect.Value) (Hasher, bool) {
	if !rv.CanInterface() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil, false
		}
	}
	h, ok := rv.Interface().(Hasher)
	return h, ok
}

// basic reads scalar values without going through Interface, which is
// unavailable for values reached through unexported fields.
func basic(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return positiveZero(rv.Float())
	case reflect.Complex64, reflect.Complex128:
		c := rv.Complex()
		return complex(positiveZero(real(c)), positiveZero(imag(c)))
	default:
		return rv.String()
	}
}

// positiveZero folds -0 into 0; the two compare equal.
func positiveZero(f float64) float64 {
	if f == 0 {
		return 0
	}
	return f
}

func encodeSequence(kind string, rv reflect.Value) string {
	n := rv.Len()
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = encodeValue(rv.Index(i))
	}
	return fmt.Sprintf("%s[%d]:{%s}", kind, n, strings.Join(parts, ","))
}

func encodeMap(rv reflect.Value) string {
	pairs := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, encodeValue(iter.Key())+"="+encodeValue(iter.Value()))
	}
	sort.Strings(pairs)
	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
}

func encodeStruct(rv reflect.Value) string {
	rt := rv.Type()
	parts := make([]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		parts = append(parts, field.Name+":"+encodeValue(rv.Field(i)))
	}
	return fmt.Sprintf("%s:{%s}", rt.String(), strings.Join(parts, ","))
}

// selfEncoded renders structs that hide their state in unexported fields
// through their own binary or string form.
func selfEncoded(rv reflect.Value) (string, bool) {
	if !rv.CanInterface() || !hasUnexported(rv.Type()) {
		return "", false
	}
	v := rv.Interface()
	if m, ok := v.(encoding.BinaryMarshaler); ok {
		if data, err := m.MarshalBinary(); err == nil {
			return fmt.Sprintf("%s:bin:%x", rv.Type(), data), true
		}
	}
	if s, ok := v.(fmt.Stringer); ok {
		return fmt.Sprintf("%s:str:%s", rv.Type(), s.String()), true
	}
	return "", false
}

func hasUnexported(rt reflect.Type) bool {
	for i := 0; i < rt.NumField(); i++ {
		if !rt.Field(i).IsExported() {
			return true
		}
	}
	return false
}

func jsonFallback(rv reflect.Value) string {
	if !rv.CanInterface() {
		return "opaque:" + rv.Type().String()
	}
	data, err := json.Marshal(rv.Interface())
	if err != nil {
		return "opaque:" + rv.Type().String()
	}
	return "json:" + string(data)
}
