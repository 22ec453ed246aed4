package mux

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandenbergjp/FlatFiles/pkg/core"
	"github.com/vandenbergjp/FlatFiles/pkg/delimited"
	"github.com/vandenbergjp/FlatFiles/pkg/errors"
	"github.com/vandenbergjp/FlatFiles/pkg/schema"
)

type header struct{ batch int64 }
type detail struct {
	id   int64
	name string
}

func buildInjector(t *testing.T, builds map[string]int) (*schema.Injector, *schema.Schema, *schema.Schema) {
	t.Helper()
	headerSchema, err := schema.Named("header",
		schema.NewColumn("kind", schema.Text()),
		schema.NewColumn("batch", schema.Int()))
	require.NoError(t, err)
	detailSchema, err := schema.Named("detail",
		schema.NewColumn("kind", schema.Text()),
		schema.NewColumn("id", schema.Int()),
		schema.NewColumn("name", schema.Text()))
	require.NoError(t, err)

	inj := schema.NewInjector().
		When(func(e interface{}) bool { _, ok := e.(header); return ok }, headerSchema,
			func(sch *schema.Schema) (schema.Serializer, error) {
				builds["header"]++
				return func(e interface{}) ([]interface{}, error) {
					h := e.(header)
					return []interface{}{"H", h.batch}, nil
				}, nil
			}).
		When(func(e interface{}) bool { _, ok := e.(detail); return ok }, detailSchema,
			func(sch *schema.Schema) (schema.Serializer, error) {
				builds["detail"]++
				return func(e interface{}) ([]interface{}, error) {
					d := e.(detail)
					return []interface{}{"D", d.id, d.name}, nil
				}, nil
			})
	return inj, headerSchema, detailSchema
}

func TestMuxWriter_InterleavedShapes(t *testing.T) {
	ctx := context.Background()
	builds := map[string]int{}
	inj, _, _ := buildInjector(t, builds)

	var out bytes.Buffer
	w, err := NewWriter(inj, func(sch *schema.Schema) (core.Writer, error) {
		return delimited.NewWriter(&out, sch, nil)
	})
	require.NoError(t, err)

	entities := []interface{}{
		header{batch: 7},
		detail{id: 1, name: "alice"},
		detail{id: 2, name: "bob"},
		header{batch: 8},
	}
	for _, e := range entities {
		require.NoError(t, w.Write(ctx, e))
	}
	require.NoError(t, w.Flush())

	assert.Equal(t, "H,7\nD,1,alice\nD,2,bob\nH,8\n", out.String())
	assert.Equal(t, 4, w.Written())

	// One serializer build and one underlying writer per schema,
	// regardless of how entities interleave.
	assert.Equal(t, 1, builds["header"])
	assert.Equal(t, 1, builds["detail"])
}

func TestMuxWriter_SerializerLengthChecked(t *testing.T) {
	ctx := context.Background()
	headerSchema, err := schema.Named("header",
		schema.NewColumn("kind", schema.Text()),
		schema.NewColumn("batch", schema.Int()))
	require.NoError(t, err)

	inj := schema.NewInjector().
		Otherwise(headerSchema, func(sch *schema.Schema) (schema.Serializer, error) {
			return func(e interface{}) ([]interface{}, error) {
				return []interface{}{"H"}, nil
			}, nil
		})

	var out bytes.Buffer
	w, err := NewWriter(inj, func(sch *schema.Schema) (core.Writer, error) {
		return delimited.NewWriter(&out, sch, nil)
	})
	require.NoError(t, err)

	err = w.Write(ctx, header{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchemaMismatch))
}

func TestMuxWriter_UnmatchedEntity(t *testing.T) {
	ctx := context.Background()
	builds := map[string]int{}
	inj, _, _ := buildInjector(t, builds)

	var out bytes.Buffer
	w, err := NewWriter(inj, func(sch *schema.Schema) (core.Writer, error) {
		return delimited.NewWriter(&out, sch, nil)
	})
	require.NoError(t, err)

	err = w.Write(ctx, "not an entity")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Equal(t, 0, w.Written())
}

func TestMuxWriter_ConstructorValidation(t *testing.T) {
	builds := map[string]int{}
	inj, _, _ := buildInjector(t, builds)

	_, err := NewWriter(nil, func(sch *schema.Schema) (core.Writer, error) { return nil, nil })
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = NewWriter(inj, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestMuxWriter_FlushWithoutWrites(t *testing.T) {
	builds := map[string]int{}
	inj, _, _ := buildInjector(t, builds)

	w, err := NewWriter(inj, func(sch *schema.Schema) (core.Writer, error) {
		return delimited.NewWriter(&bytes.Buffer{}, sch, nil)
	})
	require.NoError(t, err)
	require.NoError(t, w.Flush())
}
