package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Converter is the type-specific half of the conversion pipeline: it
// parses one raw field into a typed value and formats one typed value back
// into a raw field. Converters are stateless and reusable across columns.
type Converter interface {
	// TypeName identifies the semantic type, e.g. "int" or "time".
	TypeName() string
	// Parse converts raw text to a typed value.
	Parse(text string) (interface{}, error)
	// Format converts a typed value back to raw text.
	Format(value interface{}) (string, error)
}

// textConverter passes strings through unchanged.
type textConverter struct{}

func (textConverter) TypeName() string { return "text" }

func (textConverter) Parse(text string) (interface{}, error) {
	return text, nil
}

func (textConverter) Format(value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", value)
	}
	return s, nil
}

// Text returns the converter for plain string columns.
func Text() Converter { return textConverter{} }

// intConverter parses base-10 signed integers into int64.
type intConverter struct{}

func (intConverter) TypeName() string { return "int" }

func (intConverter) Parse(text string) (interface{}, error) {
	return strconv.ParseInt(strings.TrimSpace(text), 10, 64)
}

func (intConverter) Format(value interface{}) (string, error) {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", fmt.Errorf("expected integer, got %T", value)
	}
}

// Int returns the converter for base-10 integer columns (int64 values).
func Int() Converter { return intConverter{} }

// floatConverter parses decimal numbers into float64.
type floatConverter struct{}

func (floatConverter) TypeName() string { return "float" }

func (floatConverter) Parse(text string) (interface{}, error) {
	return strconv.ParseFloat(strings.TrimSpace(text), 64)
}

func (floatConverter) Format(value interface{}) (string, error) {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	default:
		return "", fmt.Errorf("expected float, got %T", value)
	}
}

// Float returns the converter for floating-point columns (float64 values).
func Float() Converter { return floatConverter{} }

// boolConverter recognizes configurable truthy/falsy text sets.
type boolConverter struct {
	truthy []string
	falsy  []string
}

func (boolConverter) TypeName() string { return "bool" }

func (c boolConverter) Parse(text string) (interface{}, error) {
	trimmed := strings.TrimSpace(text)
	for _, t := range c.truthy {
		if strings.EqualFold(trimmed, t) {
			return true, nil
		}
	}
	for _, f := range c.falsy {
		if strings.EqualFold(trimmed, f) {
			return false, nil
		}
	}
	return nil, fmt.Errorf("unrecognized boolean text %q", text)
}

func (c boolConverter) Format(value interface{}) (string, error) {
	b, ok := value.(bool)
	if !ok {
		return "", fmt.Errorf("expected bool, got %T", value)
	}
	if b {
		return c.truthy[0], nil
	}
	return c.falsy[0], nil
}

// Bool returns the converter recognizing "true"/"false" (case-insensitive).
func Bool() Converter {
	return boolConverter{truthy: []string{"true"}, falsy: []string{"false"}}
}

// BoolText returns a boolean converter with custom truthy/falsy text sets.
// The first entry of each set is used when formatting.
func BoolText(truthy, falsy []string) (Converter, error) {
	if len(truthy) == 0 || len(falsy) == 0 {
		return nil, fmt.Errorf("bool converter requires at least one truthy and one falsy text")
	}
	return boolConverter{truthy: truthy, falsy: falsy}, nil
}

// timeConverter parses timestamps with a fixed layout.
type timeConverter struct {
	layout string
}

func (timeConverter) TypeName() string { return "time" }

func (c timeConverter) Parse(text string) (interface{}, error) {
	return time.Parse(c.layout, strings.TrimSpace(text))
}

func (c timeConverter) Format(value interface{}) (string, error) {
	t, ok := value.(time.Time)
	if !ok {
		return "", fmt.Errorf("expected time.Time, got %T", value)
	}
	return t.Format(c.layout), nil
}

// Time returns a converter for time.Time columns using the given layout.
// An empty layout defaults to "2006-01-02".
func Time(layout string) Converter {
	if layout == "" {
		layout = "2006-01-02"
	}
	return timeConverter{layout: layout}
}
