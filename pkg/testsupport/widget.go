package testsupport

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-domain-repository/entity"
	"github.com/goliatone/go-domain-repository/valueobject"
)

// Widget is an immutable entity whose identity doubles as its storage key.
// Storage assigns the identity on first save.
type Widget struct {
	entity.Base[int64]
	name  string
	color string
}

var (
	_ valueobject.ValueObject[*Widget] = (*Widget)(nil)
	_ entity.Entity[int64]             = (*Widget)(nil)
	_ validation.Validatable           = (*Widget)(nil)
)

// NewWidget creates a transient widget.
func NewWidget(name string) *Widget {
	return &Widget{name: name}
}

// Name returns the widget name.
func (w *Widget) Name() string { return w.name }

// Color returns the widget color.
func (w *Widget) Color() string { return w.color }

// WithID returns a copy of w carrying id.
func (w *Widget) WithID(id int64) *Widget {
	return NewWidgetBuilderFrom(w).ID(id).Build()
}

// ValueFields lists the significant fields.
func (w *Widget) ValueFields() []valueobject.Field {
	return []valueobject.Field{
		w.IdentityField(),
		{Name: "name", Value: w.name},
		{Name: "color", Value: w.color},
	}
}

func (w *Widget) SameValueAs(o *Widget) bool { return valueobject.SameValue(w, o) }
func (w *Widget) Equals(o any) bool          { return valueobject.Equals(w, o) }
func (w *Widget) HashCode() uint64           { return w.CachedHash(w) }
func (w *Widget) String() string             { return valueobject.Format(w) }

// Validate checks the widget invariants.
func (w *Widget) Validate() error {
	return validation.Errors{
		"name":  validation.Validate(w.name, validation.Required, validation.Length(1, 64)),
		"color": validation.Validate(w.color, validation.In("red", "green", "blue")),
	}.Filter()
}

// WidgetBuilder stages widget fields before producing an immutable Widget.
type WidgetBuilder struct {
	id    int64
	name  string
	color string
}

var _ entity.Builder[*Widget] = (*WidgetBuilder)(nil)

// NewWidgetBuilder returns an empty builder.
func NewWidgetBuilder() *WidgetBuilder {
	return &WidgetBuilder{}
}

// NewWidgetBuilderFrom seeds a builder with the fields of other.
func NewWidgetBuilderFrom(other *Widget) *WidgetBuilder {
	return &WidgetBuilder{
		id:    other.ID(),
		name:  other.name,
		color: other.color,
	}
}

// ID sets the identity. Storage layers use it when rebuilding rows.
func (b *WidgetBuilder) ID(id int64) *WidgetBuilder {
	b.id = id
	return b
}

// Name sets the name.
func (b *WidgetBuilder) Name(name string) *WidgetBuilder {
	b.name = name
	return b
}

// Color sets the color.
func (b *WidgetBuilder) Color(color string) *WidgetBuilder {
	b.color = color
	return b
}

// Build returns a new Widget; the builder can be reused afterwards.
func (b *WidgetBuilder) Build() *Widget {
	return &Widget{
		Base:  entity.NewBase(b.id),
		name:  b.name,
		color: b.color,
	}
}
