package schema

// ParseHook transforms raw text before type parsing.
type ParseHook func(text string) string

// ValueHook transforms a typed value after parsing or before formatting.
type ValueHook func(value interface{}) interface{}

// FormatHook transforms raw text after type formatting.
type FormatHook func(text string) string

// MetadataFunc produces the value of a metadata column from the record
// context. Metadata columns contribute a logical value with no physical
// field slot.
type MetadataFunc func(rctx *RecordContext) interface{}

// ColumnDefinition describes one column of a record shape: its name,
// semantic type, nullability and null sentinel, whether it is ignored
// (consumes a physical slot, contributes no logical value), an optional
// fixed-width window, and the four conversion hooks.
//
// Definitions are built once, attached to a Schema, and not mutated
// afterwards; all With* methods return the receiver for chaining during
// construction.
type ColumnDefinition struct {
	name      string
	converter Converter
	nullable  bool
	nulls     NullHandler
	ignored   bool
	metaFn    MetadataFunc
	window    Window
	hasWindow bool

	preParse   ParseHook
	postParse  ValueHook
	preFormat  ValueHook
	postFormat FormatHook
}

// NewColumn creates a column with the given name and converter.
func NewColumn(name string, converter Converter) *ColumnDefinition {
	return &ColumnDefinition{
		name:      name,
		converter: converter,
		nulls:     DefaultNullHandler(),
	}
}

// RecordNumberColumn creates a metadata column whose logical value is the
// one-based number of the record being read. It occupies no physical slot
// and emits nothing when writing.
func RecordNumberColumn(name string) *ColumnDefinition {
	col := NewColumn(name, Int())
	col.metaFn = func(rctx *RecordContext) interface{} {
		return int64(rctx.RecordNumber)
	}
	return col
}

// Name returns the column name.
func (c *ColumnDefinition) Name() string { return c.name }

// TypeName returns the converter's semantic type name.
func (c *ColumnDefinition) TypeName() string { return c.converter.TypeName() }

// IsIgnored reports whether the column consumes a physical slot without
// contributing a logical value.
func (c *ColumnDefinition) IsIgnored() bool { return c.ignored }

// IsMetadata reports whether the column is injected into logical output
// with no physical slot.
func (c *ColumnDefinition) IsMetadata() bool { return c.metaFn != nil }

// IsNullable reports whether null sentinels are accepted for this column.
func (c *ColumnDefinition) IsNullable() bool { return c.nullable }

// Window returns the column's fixed-width window and whether one was set.
func (c *ColumnDefinition) Window() (Window, bool) { return c.window, c.hasWindow }

// Nullable marks the column as accepting the null sentinel.
func (c *ColumnDefinition) Nullable() *ColumnDefinition {
	c.nullable = true
	return c
}

// WithNullHandler replaces the column's null policy. Implies Nullable.
func (c *ColumnDefinition) WithNullHandler(h NullHandler) *ColumnDefinition {
	c.nulls = h
	c.nullable = true
	return c
}

// Ignored marks the column as consuming a physical slot while contributing
// no logical value.
func (c *ColumnDefinition) Ignored() *ColumnDefinition {
	c.ignored = true
	return c
}

// WithWindow attaches a fixed-width window to the column.
func (c *ColumnDefinition) WithWindow(w Window) *ColumnDefinition {
	c.window = w
	c.hasWindow = true
	return c
}

// WithPreParse sets the hook applied to raw text before type parsing.
func (c *ColumnDefinition) WithPreParse(h ParseHook) *ColumnDefinition {
	c.preParse = h
	return c
}

// WithPostParse sets the hook applied to the typed value after parsing.
func (c *ColumnDefinition) WithPostParse(h ValueHook) *ColumnDefinition {
	c.postParse = h
	return c
}

// WithPreFormat sets the hook applied to the typed value before formatting.
func (c *ColumnDefinition) WithPreFormat(h ValueHook) *ColumnDefinition {
	c.preFormat = h
	return c
}

// WithPostFormat sets the hook applied to raw text after type formatting.
func (c *ColumnDefinition) WithPostFormat(h FormatHook) *ColumnDefinition {
	c.postFormat = h
	return c
}
