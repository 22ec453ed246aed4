package schema

import (
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vandenbergjp/FlatFiles/pkg/errors"
)

// ColumnSpec is the declarative form of one column in a schema contract
// file. Width, alignment, fill, and truncate only matter for fixed-width
// layouts.
type ColumnSpec struct {
	Name     string   `yaml:"name" json:"name"`
	Type     string   `yaml:"type" json:"type"`
	Nullable bool     `yaml:"nullable" json:"nullable,omitempty"`
	NullText string   `yaml:"null_text" json:"null_text,omitempty"`
	Ignored  bool     `yaml:"ignored" json:"ignored,omitempty"`
	Layout   string   `yaml:"layout" json:"layout,omitempty"`
	Truthy   []string `yaml:"truthy" json:"truthy,omitempty"`
	Falsy    []string `yaml:"falsy" json:"falsy,omitempty"`

	Width     int    `yaml:"width" json:"width,omitempty"`
	Alignment string `yaml:"alignment" json:"alignment,omitempty"`
	Fill      string `yaml:"fill" json:"fill,omitempty"`
	Truncate  string `yaml:"truncate" json:"truncate,omitempty"`
}

// Spec is a schema contract: an ordered list of column declarations that
// can be stored next to the data files it describes, in YAML or JSON.
type Spec struct {
	Name    string       `yaml:"name" json:"name"`
	Columns []ColumnSpec `yaml:"columns" json:"columns"`
}

// LoadSpec reads a schema contract from a YAML (.yaml/.yml) or JSON
// (.json) file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read schema contract")
	}
	var spec Spec
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid YAML schema contract")
		}
	case ".json":
		if err := gojson.Unmarshal(data, &spec); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid JSON schema contract")
		}
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported schema contract extension %q", filepath.Ext(path))
	}
	return &spec, nil
}

// Build turns the contract into a Schema.
func (s *Spec) Build() (*Schema, error) {
	if len(s.Columns) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "schema contract declares no columns")
	}
	columns := make([]*ColumnDefinition, 0, len(s.Columns))
	for _, cs := range s.Columns {
		col, err := cs.build()
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return Named(s.Name, columns...)
}

func (cs ColumnSpec) build() (*ColumnDefinition, error) {
	var col *ColumnDefinition
	switch strings.ToLower(cs.Type) {
	case "", "text", "string":
		col = NewColumn(cs.Name, Text())
	case "int", "integer":
		col = NewColumn(cs.Name, Int())
	case "float", "number":
		col = NewColumn(cs.Name, Float())
	case "bool", "boolean":
		conv := Bool()
		if len(cs.Truthy) > 0 || len(cs.Falsy) > 0 {
			custom, err := BoolText(cs.Truthy, cs.Falsy)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeConfig,
					"invalid boolean texts for column "+cs.Name)
			}
			conv = custom
		}
		col = NewColumn(cs.Name, conv)
	case "time", "date", "datetime":
		col = NewColumn(cs.Name, Time(cs.Layout))
	case "record_number":
		col = RecordNumberColumn(cs.Name)
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown column type %q", cs.Type)
	}

	if cs.NullText != "" {
		col.WithNullHandler(ConstantNullHandler(cs.NullText))
	} else if cs.Nullable {
		col.Nullable()
	}
	if cs.Ignored {
		col.Ignored()
	}

	if cs.Width > 0 {
		w := NewWindow(cs.Width)
		switch strings.ToLower(cs.Alignment) {
		case "":
		case "left":
			w = w.WithAlignment(AlignLeft)
		case "right":
			w = w.WithAlignment(AlignRight)
		default:
			return nil, errors.Newf(errors.ErrorTypeConfig, "unknown alignment %q", cs.Alignment)
		}
		if cs.Fill != "" {
			fill := []rune(cs.Fill)
			if len(fill) != 1 {
				return nil, errors.Newf(errors.ErrorTypeConfig, "fill must be a single character, got %q", cs.Fill)
			}
			w = w.WithFill(fill[0])
		}
		switch strings.ToLower(cs.Truncate) {
		case "":
		case "trailing":
			w = w.WithTruncation(TruncateTrailing)
		case "leading":
			w = w.WithTruncation(TruncateLeading)
		default:
			return nil, errors.Newf(errors.ErrorTypeConfig, "unknown truncation policy %q", cs.Truncate)
		}
		col.WithWindow(w)
	}
	return col, nil
}
