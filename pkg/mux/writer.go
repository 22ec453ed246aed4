// Package mux writes heterogeneous entities through one stream. The
// schema Injector picks the schema and serializer per entity; one
// underlying writer per resolved schema is built and cached, all sharing
// the caller's sink.
package mux

import (
	"context"

	"go.uber.org/zap"

	"github.com/vandenbergjp/FlatFiles/pkg/core"
	"github.com/vandenbergjp/FlatFiles/pkg/errors"
	"github.com/vandenbergjp/FlatFiles/pkg/logger"
	"github.com/vandenbergjp/FlatFiles/pkg/schema"
)

// WriterFactory builds the underlying delimited or fixed-width writer for
// a resolved schema. All writers a factory returns must share one sink.
type WriterFactory func(sch *schema.Schema) (core.Writer, error)

// Writer multiplexes entities of different shapes into a single stream.
type Writer struct {
	injector *schema.Injector
	factory  WriterFactory
	writers  map[*schema.Schema]core.Writer
	written  int
	log      *zap.Logger
}

// NewWriter creates a multiplexing writer.
func NewWriter(injector *schema.Injector, factory WriterFactory) (*Writer, error) {
	if injector == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "multiplexing writer requires an injector")
	}
	if factory == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "multiplexing writer requires a writer factory")
	}
	return &Writer{
		injector: injector,
		factory:  factory,
		writers:  make(map[*schema.Schema]core.Writer),
		log:      logger.Named("mux.writer"),
	}, nil
}

// Write resolves the entity's schema and serializer through the injector,
// serializes the entity into a freshly sized value buffer, and delegates
// to the underlying writer for that schema. The serializer invoked is the
// one the injector matched for this entity.
func (w *Writer) Write(ctx context.Context, entity interface{}) error {
	resolution, err := w.injector.Resolve(entity)
	if err != nil {
		return err
	}
	values, err := resolution.Serializer(entity)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConversion, "entity serializer failed")
	}
	if len(values) != resolution.LogicalCount {
		return errors.Newf(errors.ErrorTypeSchemaMismatch,
			"serializer produced %d values, schema expects %d", len(values), resolution.LogicalCount)
	}

	out, ok := w.writers[resolution.Schema]
	if !ok {
		out, err = w.factory(resolution.Schema)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to build writer for schema")
		}
		w.writers[resolution.Schema] = out
		w.log.Debug("writer built for schema",
			zap.String("schema", resolution.Schema.Name()),
			zap.Int("physical", resolution.PhysicalCount))
	}
	if err := out.Write(ctx, values); err != nil {
		return err
	}
	// Each underlying writer buffers independently over the shared sink;
	// flushing per record keeps the stream in entity order.
	if err := out.Flush(); err != nil {
		return err
	}
	w.written++
	return nil
}

// Written is the number of entities written so far.
func (w *Writer) Written() int {
	return w.written
}

// Flush flushes every underlying writer. Safe to call even when nothing
// was written.
func (w *Writer) Flush() error {
	for _, out := range w.writers {
		if err := out.Flush(); err != nil {
			return err
		}
	}
	return nil
}
