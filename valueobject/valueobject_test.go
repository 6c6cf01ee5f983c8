package valueobject

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type money struct {
	Base
	amount   int64
	currency string
}

func newMoney(amount int64, currency string) *money {
	return &money{amount: amount, currency: currency}
}

func (m *money) ValueFields() []Field {
	return []Field{
		{Name: "amount", Value: m.amount},
		{Name: "currency", Value: m.currency},
	}
}

func (m *money) SameValueAs(o *money) bool { return SameValue(m, o) }
func (m *money) Equals(o any) bool         { return Equals(m, o) }
func (m *money) HashCode() uint64          { return m.CachedHash(m) }
func (m *money) String() string            { return Format(m) }

// price has the same field layout as money but is a different type.
type price struct {
	Base
	amount   int64
	currency string
}

func (p *price) ValueFields() []Field {
	return []Field{
		{Name: "amount", Value: p.amount},
		{Name: "currency", Value: p.currency},
	}
}

func (p *price) Equals(o any) bool { return Equals(p, o) }
func (p *price) HashCode() uint64  { return p.CachedHash(p) }

type invoice struct {
	Base
	number string
	lines  []*money
	tags   map[string]string
	total  *money
}

func (i *invoice) ValueFields() []Field {
	return []Field{
		{Name: "number", Value: i.number},
		{Name: "lines", Value: i.lines},
		{Name: "tags", Value: i.tags},
		{Name: "total", Value: i.total},
	}
}

func (i *invoice) Equals(o any) bool { return Equals(i, o) }
func (i *invoice) HashCode() uint64  { return i.CachedHash(i) }

type reading struct {
	Base
	celsius float64
	phase   complex128
	at      time.Time
}

func (r *reading) ValueFields() []Field {
	return []Field{
		{Name: "celsius", Value: r.celsius},
		{Name: "phase", Value: r.phase},
		{Name: "at", Value: r.at},
	}
}

var _ ValueObject[*money] = (*money)(nil)

func TestEquals_Reflexive(t *testing.T) {
	m := newMoney(100, "SEK")
	assert.True(t, m.Equals(m))
	assert.True(t, m.SameValueAs(m))
}

func TestEquals_SymmetricAndConsistent(t *testing.T) {
	a := newMoney(100, "SEK")
	b := newMoney(100, "SEK")
	c := newMoney(200, "SEK")

	for i := 0; i < 3; i++ {
		assert.True(t, a.Equals(b))
		assert.True(t, b.Equals(a))
		assert.False(t, a.Equals(c))
		assert.False(t, c.Equals(a))
	}
}

func TestEquals_Nil(t *testing.T) {
	m := newMoney(1, "EUR")

	assert.False(t, m.Equals(nil))
	assert.False(t, m.Equals((*money)(nil)))
	assert.False(t, m.SameValueAs(nil))
}

func TestEquals_DifferentConcreteType(t *testing.T) {
	m := newMoney(100, "SEK")
	p := &price{amount: 100, currency: "SEK"}

	assert.False(t, m.Equals(p))
	assert.False(t, p.Equals(m))
	assert.False(t, m.Equals(money{amount: 100, currency: "SEK"}), "value and pointer are different types")
	assert.False(t, m.Equals("SEK"))
}

func TestEquals_IgnoresExcludedFields(t *testing.T) {
	a := newMoney(100, "SEK")
	b := newMoney(100, "SEK")
	a.AssignSurrogateKey(41)
	b.AssignSurrogateKey(42)

	// warm one cache only
	_ = a.HashCode()

	assert.True(t, a.Equals(b))
	assert.Equal(t, a.HashCode(), b.HashCode())
	assert.Equal(t, int64(41), a.SurrogateKey())
}

func TestHashCode_ConsistentWithEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b *money
	}{
		{name: "equal", a: newMoney(5, "USD"), b: newMoney(5, "USD")},
		{name: "zero values", a: newMoney(0, ""), b: newMoney(0, "")},
		{name: "negative", a: newMoney(-12, "JPY"), b: newMoney(-12, "JPY")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.a.SameValueAs(tt.b))
			assert.Equal(t, tt.a.HashCode(), tt.b.HashCode())
		})
	}
}

func TestHashCode_Idempotent(t *testing.T) {
	m := newMoney(7, "GBP")
	first := m.HashCode()
	second := m.HashCode()

	assert.Equal(t, first, second)
	assert.Equal(t, Hash(m), first)
	assert.NotZero(t, first)
}

func TestHashCode_ConcurrentFirstAccess(t *testing.T) {
	m := newMoney(99, "NOK")
	want := Hash(m)

	var wg sync.WaitGroup
	results := make([]uint64, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.HashCode()
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestHash_DistinguishesValues(t *testing.T) {
	a := newMoney(1, "A")
	b := newMoney(1, "B")
	assert.NotEqual(t, Hash(a), Hash(b))
}

func TestEquals_NestedValueObjects(t *testing.T) {
	build := func() *invoice {
		return &invoice{
			number: "INV-1",
			lines:  []*money{newMoney(10, "SEK"), newMoney(20, "SEK")},
			tags:   map[string]string{"b": "2", "a": "1"},
			total:  newMoney(30, "SEK"),
		}
	}

	a, b := build(), build()
	// caches differ on nested values, equality must not care
	_ = a.lines[0].HashCode()
	a.total.AssignSurrogateKey(9)

	assert.True(t, a.Equals(b))
	assert.Equal(t, a.HashCode(), b.HashCode())

	c := build()
	c.lines[1] = newMoney(21, "SEK")
	assert.False(t, a.Equals(c))

	d := build()
	d.total = nil
	assert.False(t, a.Equals(d))
	assert.False(t, d.Equals(a))

	e, f := build(), build()
	e.total, f.total = nil, nil
	assert.True(t, e.Equals(f))
}

func TestFormat(t *testing.T) {
	m := newMoney(100, "SEK")
	m.AssignSurrogateKey(3)

	assert.Equal(t, "money[amount=100,currency=SEK]", m.String())
	assert.Equal(t, "<nil>", Format((*money)(nil)))
}

func TestEncode_Deterministic(t *testing.T) {
	a := map[string]int{"x": 1, "y": 2, "z": 3}
	b := map[string]int{"z": 3, "y": 2, "x": 1}

	assert.Equal(t, encode(a), encode(b))
	assert.NotEqual(t, encode([]int(nil)), encode([]int{}))
	assert.Equal(t, "nil", encode(nil))
}

func TestSameValue_SignedZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	a := &reading{celsius: 0, phase: complex(0, 1)}
	b := &reading{celsius: negZero, phase: complex(negZero, 1)}

	require.True(t, SameValue(a, b))
	assert.Equal(t, Hash(a), Hash(b))
	assert.Equal(t, encode(0.0), encode(negZero))
	assert.Equal(t, encode(complex(0, 0)), encode(complex(negZero, negZero)))
}

func TestEncode_Time(t *testing.T) {
	noon := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, encode(noon), encode(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.NotEqual(t, encode(noon), encode(noon.Add(time.Second)))

	a := &reading{celsius: 20, at: noon}
	b := &reading{celsius: 20, at: noon.Add(time.Hour)}
	assert.False(t, SameValue(a, b))
	assert.NotEqual(t, Hash(a), Hash(b))
}
