package schema

import (
	"github.com/vandenbergjp/FlatFiles/pkg/errors"
)

// EntityPredicate inspects an outgoing entity and reports whether the
// paired schema applies to it.
type EntityPredicate func(entity interface{}) bool

// Serializer turns one entity into the logical values of its schema. The
// returned slice must have length Schema.LogicalCount.
type Serializer func(entity interface{}) ([]interface{}, error)

// SerializerFactory compiles a serializer for a schema. Factories run at
// most once per matcher for an injector's lifetime; the result is cached.
type SerializerFactory func(sch *Schema) (Serializer, error)

type injectorEntry struct {
	predicate  EntityPredicate
	schema     *Schema
	factory    SerializerFactory
	serializer Serializer
	built      bool
}

// compile builds and caches the entry's serializer on first use.
func (e *injectorEntry) compile() (*Resolution, error) {
	if !e.built {
		serializer, err := e.factory(e.schema)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to build serializer")
		}
		e.serializer = serializer
		e.built = true
	}
	return &Resolution{
		Schema:        e.schema,
		Serializer:    e.serializer,
		PhysicalCount: e.schema.PhysicalCount(),
		LogicalCount:  e.schema.LogicalCount(),
	}, nil
}

// Resolution is the outcome of matching one entity: the schema, its
// compiled serializer, and the slot counts a writer needs to size buffers.
type Resolution struct {
	Schema        *Schema
	Serializer    Serializer
	PhysicalCount int
	LogicalCount  int
}

// Injector resolves a schema and serializer per outgoing entity for
// writing. Matchers are evaluated in registration order before the entity
// is serialized, first match wins. Each matcher's serializer is compiled
// lazily and cached, guaranteeing at most one build per matcher for the
// writer's lifetime.
type Injector struct {
	entries  []*injectorEntry
	fallback *injectorEntry
}

// NewInjector creates an empty injector.
func NewInjector() *Injector {
	return &Injector{}
}

// When registers a matcher: entities satisfying predicate are serialized
// with the serializer the factory compiles for sch.
func (in *Injector) When(predicate EntityPredicate, sch *Schema, factory SerializerFactory) *Injector {
	if predicate == nil || sch == nil || factory == nil {
		panic("schema: injector matcher requires a predicate, a schema, and a factory")
	}
	in.entries = append(in.entries, &injectorEntry{predicate: predicate, schema: sch, factory: factory})
	return in
}

// Otherwise registers the default matcher for entities no predicate claims.
func (in *Injector) Otherwise(sch *Schema, factory SerializerFactory) *Injector {
	if sch == nil || factory == nil {
		panic("schema: injector default requires a schema and a factory")
	}
	in.fallback = &injectorEntry{schema: sch, factory: factory}
	return in
}

// Resolve returns the resolution for the given entity. The serializer in
// the resolution is the one matched for this entity, regardless of what
// later entities resolve to. No match with no default is a configuration
// error.
func (in *Injector) Resolve(entity interface{}) (*Resolution, error) {
	for _, entry := range in.entries {
		if entry.predicate(entity) {
			return entry.compile()
		}
	}
	if in.fallback != nil {
		return in.fallback.compile()
	}
	return nil, errors.New(errors.ErrorTypeConfig, "no schema matched the entity and no default is configured")
}
