package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandenbergjp/FlatFiles/pkg/errors"
)

func TestSchemaCounts(t *testing.T) {
	sch, err := New(
		NewColumn("id", Int()),
		NewColumn("filler", Text()).Ignored(),
		NewColumn("name", Text()),
		RecordNumberColumn("row"),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, sch.PhysicalCount())
	assert.Equal(t, 3, sch.LogicalCount())
	assert.Equal(t, 1, sch.MetadataCount())
	assert.Equal(t, []string{"id", "name", "row"}, sch.LogicalNames())
	assert.Equal(t, []string{"id", "filler", "name"}, sch.PhysicalNames())
}

func TestSchemaValidation(t *testing.T) {
	t.Run("no columns", func(t *testing.T) {
		_, err := New()
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := New(NewColumn("", Text()))
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := New(NewColumn("id", Int()), NewColumn("id", Text()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("metadata cannot be ignored", func(t *testing.T) {
		_, err := New(RecordNumberColumn("row").Ignored())
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})
}

func TestParseValues(t *testing.T) {
	sch, err := New(
		NewColumn("id", Int()),
		NewColumn("name", Text()),
		NewColumn("score", Float()).Nullable(),
	)
	require.NoError(t, err)

	t.Run("typed conversion", func(t *testing.T) {
		values, err := sch.ParseValues(&RecordContext{RecordNumber: 1}, []string{"42", "alice", "9.5"})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{int64(42), "alice", 9.5}, values)
	})

	t.Run("null sentinel short-circuits", func(t *testing.T) {
		values, err := sch.ParseValues(&RecordContext{RecordNumber: 2}, []string{"1", "bob", ""})
		require.NoError(t, err)
		assert.Nil(t, values[2])
	})

	t.Run("field count mismatch fails fast", func(t *testing.T) {
		_, err := sch.ParseValues(&RecordContext{RecordNumber: 3}, []string{"1", "carol"})
		assert.True(t, errors.IsType(err, errors.ErrorTypeSchemaMismatch))
	})

	t.Run("conversion failure names the column", func(t *testing.T) {
		_, err := sch.ParseValues(&RecordContext{RecordNumber: 4}, []string{"nope", "dave", "1"})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConversion))
		assert.Contains(t, err.Error(), `"id"`)
	})
}

func TestParseValuesIgnoredAndMetadata(t *testing.T) {
	sch, err := New(
		NewColumn("skip", Text()).Ignored(),
		NewColumn("name", Text()),
		RecordNumberColumn("row"),
	)
	require.NoError(t, err)

	values, err := sch.ParseValues(&RecordContext{RecordNumber: 12}, []string{"garbage", "erin"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"erin", int64(12)}, values)
}

func TestParseHooks(t *testing.T) {
	sch, err := New(
		NewColumn("name", Text()).
			WithPreParse(strings.TrimSpace).
			WithPostParse(func(v interface{}) interface{} {
				return strings.ToUpper(v.(string))
			}),
	)
	require.NoError(t, err)

	values, err := sch.ParseValues(&RecordContext{RecordNumber: 1}, []string{"  frank  "})
	require.NoError(t, err)
	assert.Equal(t, "FRANK", values[0])
}

func TestFormatValues(t *testing.T) {
	sch, err := New(
		NewColumn("id", Int()),
		NewColumn("skip", Text()).WithNullHandler(ConstantNullHandler("N/A")).Ignored(),
		NewColumn("name", Text()).Nullable(),
		RecordNumberColumn("row"),
	)
	require.NoError(t, err)

	t.Run("metadata consumes a logical slot, emits nothing", func(t *testing.T) {
		fields, err := sch.FormatValues(&RecordContext{RecordNumber: 1},
			[]interface{}{int64(7), "grace", int64(1)})
		require.NoError(t, err)
		assert.Equal(t, []string{"7", "N/A", "grace"}, fields)
	})

	t.Run("nil formats as null text", func(t *testing.T) {
		fields, err := sch.FormatValues(&RecordContext{RecordNumber: 2},
			[]interface{}{int64(8), nil, int64(2)})
		require.NoError(t, err)
		assert.Equal(t, "", fields[2])
	})

	t.Run("value count mismatch", func(t *testing.T) {
		_, err := sch.FormatValues(&RecordContext{RecordNumber: 3}, []interface{}{int64(1)})
		assert.True(t, errors.IsType(err, errors.ErrorTypeSchemaMismatch))
	})
}

func TestFormatValuesNilNotNullable(t *testing.T) {
	sch, err := New(NewColumn("id", Int()))
	require.NoError(t, err)

	_, err = sch.FormatValues(&RecordContext{RecordNumber: 1}, []interface{}{nil})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConversion))
}

func TestFormatHooks(t *testing.T) {
	sch, err := New(
		NewColumn("amount", Float()).
			WithPreFormat(func(v interface{}) interface{} {
				return v.(float64) * 100
			}).
			WithPostFormat(func(text string) string {
				return text + "%"
			}),
	)
	require.NoError(t, err)

	fields, err := sch.FormatValues(&RecordContext{RecordNumber: 1}, []interface{}{0.5})
	require.NoError(t, err)
	assert.Equal(t, []string{"50%"}, fields)
}

func TestWindows(t *testing.T) {
	t.Run("merged against defaults", func(t *testing.T) {
		sch, err := New(
			NewColumn("id", Int()).WithWindow(NewWindow(5).WithAlignment(AlignRight).WithFill('0')),
			NewColumn("name", Text()).WithWindow(NewWindow(10)),
		)
		require.NoError(t, err)

		windows, err := sch.Windows(Window{Alignment: AlignLeft, Fill: ' '})
		require.NoError(t, err)
		require.Len(t, windows, 2)
		assert.Equal(t, AlignRight, windows[0].Alignment)
		assert.Equal(t, '0', windows[0].Fill)
		assert.Equal(t, AlignLeft, windows[1].Alignment)
		assert.Equal(t, ' ', windows[1].Fill)
	})

	t.Run("missing window is a config error", func(t *testing.T) {
		sch, err := New(NewColumn("id", Int()))
		require.NoError(t, err)
		_, err = sch.Windows(Window{})
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("metadata columns have no window", func(t *testing.T) {
		sch, err := New(
			NewColumn("id", Int()).WithWindow(NewWindow(5)),
			RecordNumberColumn("row"),
		)
		require.NoError(t, err)
		windows, err := sch.Windows(Window{Fill: ' '})
		require.NoError(t, err)
		assert.Len(t, windows, 1)
	})
}

func TestAllText(t *testing.T) {
	sch, err := AllText([]string{"a", "", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "field_1", "c"}, sch.LogicalNames())

	values, err := sch.ParseValues(&RecordContext{RecordNumber: 1}, []string{"x", "", "z"})
	require.NoError(t, err)
	assert.Equal(t, "x", values[0])
	assert.Nil(t, values[1])
}
