// Package schema defines ordered column schemas and the value conversion
// pipeline that turns raw text fields into typed values and back. It also
// provides dynamic schema selection for reading (Selector) and writing
// (Injector), null handling policies, and fixed-width window layout.
//
// A Schema derives three counts from its columns:
//
//   - PhysicalCount: raw field slots consumed from or produced to a record
//   - LogicalCount: values exposed to the caller (ignored columns filtered
//     out, metadata columns included)
//   - MetadataCount: logical values injected with no physical slot
//
// A raw record whose field count does not reconcile with PhysicalCount is
// rejected before any conversion is attempted.
package schema

import (
	"fmt"

	"github.com/vandenbergjp/FlatFiles/pkg/errors"
)

// RecordContext carries per-record state through the conversion pipeline.
// Metadata columns draw their values from it.
type RecordContext struct {
	// RecordNumber is the one-based number of the record in the session.
	RecordNumber int
}

// Schema is an ordered, immutable sequence of column definitions for one
// record shape.
type Schema struct {
	name     string
	columns  []*ColumnDefinition
	physical int
	logical  int
	metadata int
}

// New creates a schema from columns in order. It fails when no column is
// given, a name is empty or duplicated, or a column is both ignored and
// metadata.
func New(columns ...*ColumnDefinition) (*Schema, error) {
	return Named("", columns...)
}

// Named creates a schema with an identifying name; see New.
func Named(name string, columns ...*ColumnDefinition) (*Schema, error) {
	if len(columns) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "schema requires at least one column")
	}
	seen := make(map[string]struct{}, len(columns))
	s := &Schema{name: name, columns: make([]*ColumnDefinition, len(columns))}
	for i, col := range columns {
		if col == nil {
			return nil, errors.Newf(errors.ErrorTypeConfig, "column %d is nil", i)
		}
		if col.name == "" {
			return nil, errors.Newf(errors.ErrorTypeConfig, "column %d has no name", i)
		}
		if _, dup := seen[col.name]; dup {
			return nil, errors.Newf(errors.ErrorTypeConfig, "duplicate column name %q", col.name)
		}
		seen[col.name] = struct{}{}
		if col.IsMetadata() && col.ignored {
			return nil, errors.Newf(errors.ErrorTypeConfig, "column %q cannot be both metadata and ignored", col.name)
		}
		s.columns[i] = col
		switch {
		case col.IsMetadata():
			s.metadata++
			s.logical++
		case col.ignored:
			s.physical++
		default:
			s.physical++
			s.logical++
		}
	}
	return s, nil
}

// Name returns the schema's identifying name, possibly empty.
func (s *Schema) Name() string { return s.name }

// Columns returns a copy of the ordered column definitions.
func (s *Schema) Columns() []*ColumnDefinition {
	out := make([]*ColumnDefinition, len(s.columns))
	copy(out, s.columns)
	return out
}

// PhysicalCount is the number of raw field slots in the record layout.
func (s *Schema) PhysicalCount() int { return s.physical }

// LogicalCount is the number of values exposed to the caller.
func (s *Schema) LogicalCount() int { return s.logical }

// MetadataCount is the number of logical values with no physical slot.
func (s *Schema) MetadataCount() int { return s.metadata }

// LogicalNames returns the names of the caller-visible columns in order.
func (s *Schema) LogicalNames() []string {
	out := make([]string, 0, s.logical)
	for _, col := range s.columns {
		if col.ignored {
			continue
		}
		out = append(out, col.name)
	}
	return out
}

// PhysicalNames returns the names of the physical columns in order,
// including ignored ones. This is the header layout for delimited files.
func (s *Schema) PhysicalNames() []string {
	out := make([]string, 0, s.physical)
	for _, col := range s.columns {
		if col.IsMetadata() {
			continue
		}
		out = append(out, col.name)
	}
	return out
}

// reconcile fails fast when a raw field count disagrees with the physical
// layout.
func (s *Schema) reconcile(rawCount int) error {
	if rawCount != s.physical {
		return errors.Newf(errors.ErrorTypeSchemaMismatch,
			"record has %d fields, schema expects %d", rawCount, s.physical)
	}
	return nil
}

// ParseValues converts one raw record into typed values. For each physical
// position in order it skips ignored columns, applies the pre-parse hook,
// short-circuits on the null sentinel, applies the column's typed parse,
// and finally the post-parse hook. Metadata columns contribute values from
// rctx. The result length equals LogicalCount and is freshly allocated.
func (s *Schema) ParseValues(rctx *RecordContext, raw []string) ([]interface{}, error) {
	if err := s.reconcile(len(raw)); err != nil {
		return nil, err
	}
	out := make([]interface{}, 0, s.logical)
	rawIdx := 0
	for _, col := range s.columns {
		if col.IsMetadata() {
			out = append(out, col.metaFn(rctx))
			continue
		}
		text := raw[rawIdx]
		rawIdx++
		if col.ignored {
			continue
		}
		if col.preParse != nil {
			text = col.preParse(text)
		}
		if col.nullable && col.nulls.IsNull(text) {
			out = append(out, nil)
			continue
		}
		value, err := col.converter.Parse(text)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConversion,
				fmt.Sprintf("cannot parse %q as %s for column %q", text, col.converter.TypeName(), col.name))
		}
		if col.postParse != nil {
			value = col.postParse(value)
		}
		out = append(out, value)
	}
	return out, nil
}

// FormatValues converts typed values into one raw record, mirroring
// ParseValues in reverse: pre-format hook, null check, typed format,
// post-format hook. Metadata columns consume a logical slot but emit no
// physical field; ignored columns emit their null text. The result length
// equals PhysicalCount.
func (s *Schema) FormatValues(rctx *RecordContext, values []interface{}) ([]string, error) {
	if len(values) != s.logical {
		return nil, errors.Newf(errors.ErrorTypeSchemaMismatch,
			"got %d values, schema expects %d", len(values), s.logical)
	}
	out := make([]string, 0, s.physical)
	logIdx := 0
	for _, col := range s.columns {
		if col.IsMetadata() {
			logIdx++
			continue
		}
		if col.ignored {
			out = append(out, col.nulls.NullText())
			continue
		}
		value := values[logIdx]
		logIdx++
		if col.preFormat != nil {
			value = col.preFormat(value)
		}
		var text string
		if value == nil {
			if !col.nullable {
				return nil, errors.Newf(errors.ErrorTypeConversion,
					"column %q is not nullable", col.name)
			}
			text = col.nulls.NullText()
		} else {
			formatted, err := col.converter.Format(value)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeConversion,
					fmt.Sprintf("cannot format value for column %q", col.name))
			}
			text = formatted
		}
		if col.postFormat != nil {
			text = col.postFormat(text)
		}
		out = append(out, text)
	}
	return out, nil
}

// Windows resolves the per-column fixed-width windows against format-wide
// defaults, in physical column order. It fails when any physical column
// lacks a window or has a non-positive width.
func (s *Schema) Windows(defaults Window) ([]Window, error) {
	out := make([]Window, 0, s.physical)
	for _, col := range s.columns {
		if col.IsMetadata() {
			continue
		}
		w, ok := col.Window()
		if !ok || w.Width <= 0 {
			return nil, errors.Newf(errors.ErrorTypeConfig,
				"column %q has no fixed-width window", col.name)
		}
		out = append(out, w.Merge(defaults))
	}
	return out, nil
}

// AllText builds an all-text, nullable schema from header names. Used when
// the first record declares the schema and none was supplied.
func AllText(names []string) (*Schema, error) {
	columns := make([]*ColumnDefinition, len(names))
	for i, name := range names {
		if name == "" {
			name = fmt.Sprintf("field_%d", i)
		}
		columns[i] = NewColumn(name, Text()).Nullable()
	}
	return New(columns...)
}
