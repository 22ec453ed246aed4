// Package flatfiles reads and writes tabular records stored as
// separator-delimited or fixed-width text, converting between raw text
// fields and typed values under a caller-supplied schema.
//
// The library is organized as a set of small packages:
//
//   - pkg/buffer holds the streaming lookahead buffer and the token
//     matcher used to recognize multi-character separators with rollback.
//   - pkg/schema defines ordered column schemas, the parse/format
//     conversion pipeline, null handling, fixed-width windows, and the
//     dynamic Selector/Injector used to pick a schema per record.
//   - pkg/delimited and pkg/fixedwidth implement the two record shapes,
//     each with a pull-based Reader and a Writer.
//   - pkg/mux writes heterogeneous entities through one stream, using
//     the Injector to resolve schema and serializer per entity.
//
// Readers and writers are single-threaded: each instance owns its buffer,
// schema, and counters, and concurrent use of one instance must be
// serialized by the caller. The underlying stream is owned by the caller
// and is never closed by the library.
//
// A minimal read session:
//
//	sch, _ := schema.New(
//	    schema.NewColumn("name", schema.Text()),
//	    schema.NewColumn("age", schema.Int()),
//	)
//	r, _ := delimited.NewReader(input, sch, nil)
//	for {
//	    ok, err := r.Read(ctx)
//	    if err != nil || !ok {
//	        break
//	    }
//	    values, _ := r.Values()
//	    // values[0] is a string, values[1] an int64
//	}
//
// The cmd/flatfiles CLI converts files between the two shapes using
// schema contracts declared in YAML or JSON.
package flatfiles
