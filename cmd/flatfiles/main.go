package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vandenbergjp/FlatFiles/internal/convert"
	"github.com/vandenbergjp/FlatFiles/pkg/compression"
	"github.com/vandenbergjp/FlatFiles/pkg/config"
	"github.com/vandenbergjp/FlatFiles/pkg/core"
	"github.com/vandenbergjp/FlatFiles/pkg/delimited"
	"github.com/vandenbergjp/FlatFiles/pkg/fixedwidth"
	"github.com/vandenbergjp/FlatFiles/pkg/logger"
	"github.com/vandenbergjp/FlatFiles/pkg/schema"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "flatfiles",
		Short: "FlatFiles - schema-driven flat-file reader and writer",
		Long: `FlatFiles reads and writes delimited and fixed-width text files through
typed schemas. The convert command moves records between the two shapes;
the inspect command prints a file's typed records as JSON.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("FlatFiles v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newConvertCommand())
	root.AddCommand(newInspectCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	_ = logger.Sync()
}

func newConvertCommand() *cobra.Command {
	var jobFile string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Run a conversion job",
		Long: `Run a conversion job described by a YAML job file. The job names the
input and output paths, the shape on each side, and the schema contract.

Example:
  flatfiles convert --job accounts.job.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(jobFile)
			if err != nil {
				return err
			}
			if err := logger.Init(logger.Config{Level: cfg.LogLevel, Encoding: "json"}); err != nil {
				return err
			}
			log := logger.Named("cli")

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			start := time.Now()
			stats, err := convert.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}
			log.Info("conversion completed",
				zap.Duration("duration", time.Since(start)),
				zap.Int("read", stats.RecordsRead),
				zap.Int("written", stats.RecordsWritten),
				zap.Int("skipped", stats.RecordsSkipped))
			return nil
		},
	}

	cmd.Flags().StringVarP(&jobFile, "job", "j", "", "Path to the YAML job file (required)")
	_ = cmd.MarkFlagRequired("job")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Job timeout")
	return cmd
}

func newInspectCommand() *cobra.Command {
	var schemaFile, format, compress string
	var limit int
	var header bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print a file's typed records as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(args[0], schemaFile, format, compress, limit, header)
		},
	}

	cmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "Path to the schema contract (required)")
	_ = cmd.MarkFlagRequired("schema")
	cmd.Flags().StringVarP(&format, "format", "f", config.FormatDelimited, "File shape: delimited or fixedwidth")
	cmd.Flags().StringVar(&compress, "compression", "", "Compression algorithm (default: inferred from extension)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum records to print (0 means all)")
	cmd.Flags().BoolVar(&header, "header", false, "Treat the first record as a schema row")
	return cmd
}

func inspect(path, schemaFile, format, compress string, limit int, header bool) error {
	spec, err := schema.LoadSpec(schemaFile)
	if err != nil {
		return err
	}
	sch, err := spec.Build()
	if err != nil {
		return err
	}

	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer in.Close()

	algo := compression.ByExtension(path)
	if compress != "" {
		if algo, err = compression.Parse(compress); err != nil {
			return err
		}
	}
	src, err := compression.NewReader(in, algo)
	if err != nil {
		return err
	}
	defer src.Close()

	var reader core.Reader
	switch format {
	case config.FormatDelimited:
		reader, err = delimited.NewReader(src, sch, &delimited.Options{FirstRecordIsSchema: header})
	case config.FormatFixedWidth:
		reader, err = fixedwidth.NewReader(src, sch, nil)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}

	names := sch.LogicalNames()
	enc := json.NewEncoder(os.Stdout)
	ctx := context.Background()
	printed := 0
	for limit == 0 || printed < limit {
		ok, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		values, err := reader.Values()
		if err != nil {
			return err
		}
		record := make(map[string]interface{}, len(values))
		for i, name := range names {
			record[name] = values[i]
		}
		if err := enc.Encode(record); err != nil {
			return err
		}
		printed++
	}
	return nil
}
