package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandenbergjp/FlatFiles/pkg/errors"
	"github.com/vandenbergjp/FlatFiles/pkg/schema"
)

func writeJob(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeJob(t, `
input: data/in.csv
output: data/out.txt
input_format: delimited
output_format: fixedwidth
schema: data/accounts.yaml
skip_bad_records: true
delimited:
  separator: ";"
  header: true
fixedwidth:
  alignment: right
  fill: "0"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/in.csv", cfg.Input)
	assert.Equal(t, FormatFixedWidth, cfg.OutputFormat)
	assert.True(t, cfg.SkipBadRecords)
	assert.Equal(t, ";", cfg.Delimited.Separator)
	assert.True(t, cfg.Delimited.Header)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeJob(t, `
input: in.csv
output: out.csv
schema: s.yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatDelimited, cfg.InputFormat)
	assert.Equal(t, FormatDelimited, cfg.OutputFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestValidate(t *testing.T) {
	valid := JobConfig{
		Input:        "in.csv",
		Output:       "out.csv",
		SchemaFile:   "s.yaml",
		InputFormat:  FormatDelimited,
		OutputFormat: FormatFixedWidth,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*JobConfig)
	}{
		{"missing input", func(c *JobConfig) { c.Input = "" }},
		{"missing output", func(c *JobConfig) { c.Output = "" }},
		{"missing schema", func(c *JobConfig) { c.SchemaFile = "" }},
		{"bad input format", func(c *JobConfig) { c.InputFormat = "parquet" }},
		{"bad output format", func(c *JobConfig) { c.OutputFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestDelimitedOptions(t *testing.T) {
	cfg := JobConfig{
		Delimited: DelimitedConfig{
			Separator: "::",
			Quote:     "'",
			Escape:    "backslash",
			Header:    true,
			Preamble:  3,
		},
	}
	opts, err := cfg.DelimitedOptions()
	require.NoError(t, err)
	assert.Equal(t, "::", opts.Separator)
	assert.Equal(t, '\'', opts.Quote)
	assert.True(t, opts.FirstRecordIsSchema)
	assert.Equal(t, 3, opts.PreambleLength)

	cfg.Delimited.Quote = "''"
	_, err = cfg.DelimitedOptions()
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	cfg.Delimited.Quote = ""
	cfg.Delimited.Escape = "percent"
	_, err = cfg.DelimitedOptions()
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestFixedWidthOptions(t *testing.T) {
	cfg := JobConfig{
		FixedWidth: FixedWidthConfig{
			Alignment:  "right",
			Fill:       "0",
			Truncation: "leading",
		},
	}
	opts, err := cfg.FixedWidthOptions()
	require.NoError(t, err)
	assert.Equal(t, schema.AlignRight, opts.Alignment)
	assert.Equal(t, '0', opts.Fill)
	assert.Equal(t, schema.TruncateLeading, opts.Truncation)

	cfg.FixedWidth.Alignment = "center"
	_, err = cfg.FixedWidthOptions()
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
