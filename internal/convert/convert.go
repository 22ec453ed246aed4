// Package convert runs one flat-file conversion job: it opens the input
// and output streams, wraps compression, builds the reader and writer the
// job's formats call for, and pumps records between them.
package convert

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/vandenbergjp/FlatFiles/pkg/compression"
	"github.com/vandenbergjp/FlatFiles/pkg/config"
	"github.com/vandenbergjp/FlatFiles/pkg/core"
	"github.com/vandenbergjp/FlatFiles/pkg/errors"
	"github.com/vandenbergjp/FlatFiles/pkg/fixedwidth"
	"github.com/vandenbergjp/FlatFiles/pkg/logger"
	"github.com/vandenbergjp/FlatFiles/pkg/schema"

	"github.com/vandenbergjp/FlatFiles/pkg/delimited"
)

// Stats summarizes a completed job.
type Stats struct {
	RecordsRead    int
	RecordsWritten int
	RecordsSkipped int
}

// Run executes the job and returns its statistics.
func Run(ctx context.Context, cfg *config.JobConfig) (Stats, error) {
	var stats Stats
	log := logger.Named("convert")

	spec, err := schema.LoadSpec(cfg.SchemaFile)
	if err != nil {
		return stats, err
	}
	sch, err := spec.Build()
	if err != nil {
		return stats, err
	}

	in, err := os.Open(cfg.Input)
	if err != nil {
		return stats, errors.Wrap(err, errors.ErrorTypeIO, "failed to open input")
	}
	defer in.Close()

	inAlgo, err := inputAlgorithm(cfg)
	if err != nil {
		return stats, err
	}
	src, err := compression.NewReader(in, inAlgo)
	if err != nil {
		return stats, err
	}
	defer src.Close()

	out, err := os.Create(cfg.Output)
	if err != nil {
		return stats, errors.Wrap(err, errors.ErrorTypeIO, "failed to create output")
	}
	defer out.Close()

	outAlgo, err := outputAlgorithm(cfg)
	if err != nil {
		return stats, err
	}
	sink, err := compression.NewWriter(out, outAlgo)
	if err != nil {
		return stats, err
	}

	reader, err := buildReader(cfg, src, sch, &stats, log)
	if err != nil {
		return stats, err
	}
	writer, err := buildWriter(cfg, sink, sch)
	if err != nil {
		return stats, err
	}

	log.Info("job started",
		zap.String("input", cfg.Input),
		zap.String("output", cfg.Output),
		zap.String("input_format", cfg.InputFormat),
		zap.String("output_format", cfg.OutputFormat),
		zap.String("schema", sch.Name()))

	for {
		ok, err := reader.Read(ctx)
		if err != nil {
			return stats, err
		}
		if !ok {
			break
		}
		stats.RecordsRead++
		values, err := reader.Values()
		if err != nil {
			return stats, err
		}
		if err := writer.Write(ctx, values); err != nil {
			return stats, err
		}
		stats.RecordsWritten++
	}

	if err := writer.Flush(); err != nil {
		return stats, err
	}
	if err := sink.Close(); err != nil {
		return stats, errors.Wrap(err, errors.ErrorTypeIO, "failed to finalize output")
	}

	log.Info("job finished",
		zap.Int("read", stats.RecordsRead),
		zap.Int("written", stats.RecordsWritten),
		zap.Int("skipped", stats.RecordsSkipped))
	return stats, nil
}

func inputAlgorithm(cfg *config.JobConfig) (compression.Algorithm, error) {
	if cfg.InputCompression == "" {
		return compression.ByExtension(cfg.Input), nil
	}
	return compression.Parse(cfg.InputCompression)
}

func outputAlgorithm(cfg *config.JobConfig) (compression.Algorithm, error) {
	if cfg.OutputCompression == "" {
		return compression.ByExtension(cfg.Output), nil
	}
	return compression.Parse(cfg.OutputCompression)
}

func buildReader(cfg *config.JobConfig, src io.Reader, sch *schema.Schema, stats *Stats, log *zap.Logger) (core.Reader, error) {
	var onError core.ErrorHandler
	if cfg.SkipBadRecords {
		onError = func(recordNumber int, err error) bool {
			stats.RecordsSkipped++
			log.Warn("skipping bad record",
				zap.Int("record", recordNumber),
				zap.Error(err))
			return true
		}
	}

	switch cfg.InputFormat {
	case config.FormatDelimited:
		opts, err := cfg.DelimitedOptions()
		if err != nil {
			return nil, err
		}
		r, err := delimited.NewReader(src, sch, opts)
		if err != nil {
			return nil, err
		}
		r.OnError(onError)
		return r, nil
	case config.FormatFixedWidth:
		opts, err := cfg.FixedWidthOptions()
		if err != nil {
			return nil, err
		}
		r, err := fixedwidth.NewReader(src, sch, opts)
		if err != nil {
			return nil, err
		}
		r.OnError(onError)
		return r, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown input format %q", cfg.InputFormat)
	}
}

func buildWriter(cfg *config.JobConfig, sink io.Writer, sch *schema.Schema) (core.Writer, error) {
	switch cfg.OutputFormat {
	case config.FormatDelimited:
		opts, err := cfg.DelimitedOptions()
		if err != nil {
			return nil, err
		}
		return delimited.NewWriter(sink, sch, opts)
	case config.FormatFixedWidth:
		opts, err := cfg.FixedWidthOptions()
		if err != nil {
			return nil, err
		}
		return fixedwidth.NewWriter(sink, sch, opts)
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown output format %q", cfg.OutputFormat)
	}
}
