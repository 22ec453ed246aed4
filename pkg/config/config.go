// Package config provides the configuration for flat-file conversion
// jobs run through the CLI. Job files are YAML, loaded with viper so
// every key can also be supplied through FLATFILES_-prefixed environment
// variables.
//
// Example job file:
//
//	input: data/accounts.csv
//	output: data/accounts.txt
//	input_format: delimited
//	output_format: fixedwidth
//	schema: data/accounts.schema.yaml
//	skip_bad_records: true
//	delimited:
//	  separator: ","
//	  header: true
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/vandenbergjp/FlatFiles/pkg/delimited"
	"github.com/vandenbergjp/FlatFiles/pkg/errors"
	"github.com/vandenbergjp/FlatFiles/pkg/fixedwidth"
	"github.com/vandenbergjp/FlatFiles/pkg/schema"
)

// Format names the two supported record shapes.
const (
	FormatDelimited  = "delimited"
	FormatFixedWidth = "fixedwidth"
)

// DelimitedConfig holds the delimited-shape options of a job.
type DelimitedConfig struct {
	Separator       string `mapstructure:"separator" yaml:"separator"`
	Quote           string `mapstructure:"quote" yaml:"quote"`
	Escape          string `mapstructure:"escape" yaml:"escape"`
	RecordSeparator string `mapstructure:"record_separator" yaml:"record_separator"`
	Header          bool   `mapstructure:"header" yaml:"header"`
	Preamble        int    `mapstructure:"preamble" yaml:"preamble"`
}

// FixedWidthConfig holds the fixed-width-shape options of a job.
type FixedWidthConfig struct {
	RecordSeparator string `mapstructure:"record_separator" yaml:"record_separator"`
	Preamble        int    `mapstructure:"preamble" yaml:"preamble"`
	Alignment       string `mapstructure:"alignment" yaml:"alignment"`
	Fill            string `mapstructure:"fill" yaml:"fill"`
	Truncation      string `mapstructure:"truncation" yaml:"truncation"`
}

// JobConfig describes one conversion: where to read, where to write, the
// shape on each side, and the schema contract governing both.
type JobConfig struct {
	Input             string `mapstructure:"input" yaml:"input"`
	Output            string `mapstructure:"output" yaml:"output"`
	InputFormat       string `mapstructure:"input_format" yaml:"input_format"`
	OutputFormat      string `mapstructure:"output_format" yaml:"output_format"`
	SchemaFile        string `mapstructure:"schema" yaml:"schema"`
	InputCompression  string `mapstructure:"input_compression" yaml:"input_compression"`
	OutputCompression string `mapstructure:"output_compression" yaml:"output_compression"`
	SkipBadRecords    bool   `mapstructure:"skip_bad_records" yaml:"skip_bad_records"`
	LogLevel          string `mapstructure:"log_level" yaml:"log_level"`

	Delimited  DelimitedConfig  `mapstructure:"delimited" yaml:"delimited"`
	FixedWidth FixedWidthConfig `mapstructure:"fixedwidth" yaml:"fixedwidth"`
}

// Load reads a job file and applies environment overrides.
func Load(path string) (*JobConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("FLATFILES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("input_format", FormatDelimited)
	v.SetDefault("output_format", FormatDelimited)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read job file")
	}
	var cfg JobConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode job file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the job for completeness.
func (c *JobConfig) Validate() error {
	if c.Input == "" {
		return errors.New(errors.ErrorTypeConfig, "job requires an input path")
	}
	if c.Output == "" {
		return errors.New(errors.ErrorTypeConfig, "job requires an output path")
	}
	if c.SchemaFile == "" {
		return errors.New(errors.ErrorTypeConfig, "job requires a schema contract")
	}
	if c.InputFormat != FormatDelimited && c.InputFormat != FormatFixedWidth {
		return errors.Newf(errors.ErrorTypeConfig, "unknown input format %q", c.InputFormat)
	}
	if c.OutputFormat != FormatDelimited && c.OutputFormat != FormatFixedWidth {
		return errors.Newf(errors.ErrorTypeConfig, "unknown output format %q", c.OutputFormat)
	}
	return nil
}

// DelimitedOptions builds the delimited options the job declares.
func (c *JobConfig) DelimitedOptions() (*delimited.Options, error) {
	opts := &delimited.Options{
		Separator:           c.Delimited.Separator,
		RecordSeparator:     c.Delimited.RecordSeparator,
		FirstRecordIsSchema: c.Delimited.Header,
		PreambleLength:      c.Delimited.Preamble,
	}
	if c.Delimited.Quote != "" {
		quote := []rune(c.Delimited.Quote)
		if len(quote) != 1 {
			return nil, errors.Newf(errors.ErrorTypeConfig, "quote must be a single character, got %q", c.Delimited.Quote)
		}
		opts.Quote = quote[0]
	}
	switch strings.ToLower(c.Delimited.Escape) {
	case "", "doubling":
		opts.Escape = delimited.EscapeDoubling
	case "backslash":
		opts.Escape = delimited.EscapeBackslash
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown escape policy %q", c.Delimited.Escape)
	}
	return opts, nil
}

// FixedWidthOptions builds the fixed-width options the job declares.
func (c *JobConfig) FixedWidthOptions() (*fixedwidth.Options, error) {
	opts := &fixedwidth.Options{
		RecordSeparator: c.FixedWidth.RecordSeparator,
		PreambleLength:  c.FixedWidth.Preamble,
	}
	switch strings.ToLower(c.FixedWidth.Alignment) {
	case "", "left":
		opts.Alignment = schema.AlignLeft
	case "right":
		opts.Alignment = schema.AlignRight
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown alignment %q", c.FixedWidth.Alignment)
	}
	if c.FixedWidth.Fill != "" {
		fill := []rune(c.FixedWidth.Fill)
		if len(fill) != 1 {
			return nil, errors.Newf(errors.ErrorTypeConfig, "fill must be a single character, got %q", c.FixedWidth.Fill)
		}
		opts.Fill = fill[0]
	}
	switch strings.ToLower(c.FixedWidth.Truncation) {
	case "", "trailing":
		opts.Truncation = schema.TruncateTrailing
	case "leading":
		opts.Truncation = schema.TruncateLeading
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown truncation policy %q", c.FixedWidth.Truncation)
	}
	return opts, nil
}
