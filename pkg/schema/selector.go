package schema

import (
	"github.com/vandenbergjp/FlatFiles/pkg/errors"
)

// Predicate inspects a raw record's fields and reports whether the paired
// schema applies to it.
type Predicate func(fields []string) bool

type selectorEntry struct {
	predicate Predicate
	schema    *Schema
}

// Selector resolves a schema per raw record for reading. Matchers are
// evaluated in registration order, first match wins; an optional default
// schema catches records no predicate claims.
type Selector struct {
	entries  []selectorEntry
	fallback *Schema
}

// NewSelector creates an empty selector.
func NewSelector() *Selector {
	return &Selector{}
}

// When registers a (predicate, schema) pair. Matchers run in the order
// they were registered.
func (s *Selector) When(predicate Predicate, sch *Schema) *Selector {
	if predicate == nil || sch == nil {
		panic("schema: selector matcher requires a predicate and a schema")
	}
	s.entries = append(s.entries, selectorEntry{predicate: predicate, schema: sch})
	return s
}

// Otherwise registers the default schema used when no predicate matches.
func (s *Selector) Otherwise(sch *Schema) *Selector {
	if sch == nil {
		panic("schema: selector default schema must not be nil")
	}
	s.fallback = sch
	return s
}

// Resolve returns the schema for the given raw fields. No match with no
// default configured is a configuration error raised here, at resolution
// time.
func (s *Selector) Resolve(fields []string) (*Schema, error) {
	for _, entry := range s.entries {
		if entry.predicate(fields) {
			return entry.schema, nil
		}
	}
	if s.fallback != nil {
		return s.fallback, nil
	}
	return nil, errors.New(errors.ErrorTypeConfig, "no schema matched the record and no default is configured")
}
