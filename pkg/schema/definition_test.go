package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandenbergjp/FlatFiles/pkg/errors"
)

func writeContract(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSpec_YAML(t *testing.T) {
	path := writeContract(t, "accounts.yaml", `
name: accounts
columns:
  - name: id
    type: int
    width: 6
    alignment: right
    fill: "0"
  - name: owner
    type: text
    width: 20
  - name: balance
    type: float
    nullable: true
    null_text: "N/A"
  - name: active
    type: bool
    truthy: ["Y"]
    falsy: ["N"]
  - name: opened
    type: date
    layout: "2006-01-02"
  - name: row
    type: record_number
`)

	spec, err := LoadSpec(path)
	require.NoError(t, err)
	assert.Equal(t, "accounts", spec.Name)
	require.Len(t, spec.Columns, 6)

	sch, err := spec.Build()
	require.NoError(t, err)
	assert.Equal(t, "accounts", sch.Name())
	assert.Equal(t, 5, sch.PhysicalCount())
	assert.Equal(t, 6, sch.LogicalCount())
	assert.Equal(t, 1, sch.MetadataCount())

	cols := sch.Columns()
	w, ok := cols[0].Window()
	require.True(t, ok)
	assert.Equal(t, 6, w.Width)
	assert.True(t, cols[2].IsNullable())
	assert.True(t, cols[5].IsMetadata())
}

func TestLoadSpec_JSON(t *testing.T) {
	path := writeContract(t, "events.json", `{
  "name": "events",
  "columns": [
    {"name": "kind", "type": "text"},
    {"name": "padding", "type": "text", "ignored": true},
    {"name": "count", "type": "integer"}
  ]
}`)

	spec, err := LoadSpec(path)
	require.NoError(t, err)

	sch, err := spec.Build()
	require.NoError(t, err)
	assert.Equal(t, 3, sch.PhysicalCount())
	assert.Equal(t, 2, sch.LogicalCount())
	assert.True(t, sch.Columns()[1].IsIgnored())
}

func TestLoadSpec_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSpec(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeContract(t, "schema.toml", "name = 'x'")
		_, err := LoadSpec(path)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeContract(t, "broken.yaml", "columns: [")
		_, err := LoadSpec(path)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})
}

func TestSpecBuild_Errors(t *testing.T) {
	t.Run("no columns", func(t *testing.T) {
		spec := &Spec{Name: "empty"}
		_, err := spec.Build()
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("unknown type", func(t *testing.T) {
		spec := &Spec{Columns: []ColumnSpec{{Name: "x", Type: "decimal128"}}}
		_, err := spec.Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown column type")
	})

	t.Run("unknown alignment", func(t *testing.T) {
		spec := &Spec{Columns: []ColumnSpec{{Name: "x", Type: "text", Width: 4, Alignment: "center"}}}
		_, err := spec.Build()
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("multi-character fill", func(t *testing.T) {
		spec := &Spec{Columns: []ColumnSpec{{Name: "x", Type: "text", Width: 4, Fill: "ab"}}}
		_, err := spec.Build()
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})
}

func TestSpecBuild_NullTextImpliesNullable(t *testing.T) {
	spec := &Spec{Columns: []ColumnSpec{{Name: "x", Type: "int", NullText: "\\N"}}}
	sch, err := spec.Build()
	require.NoError(t, err)
	assert.True(t, sch.Columns()[0].IsNullable())

	values, err := sch.ParseValues(&RecordContext{RecordNumber: 1}, []string{"\\N"})
	require.NoError(t, err)
	assert.Nil(t, values[0])
}
