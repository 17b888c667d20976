package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prequel-dev/prequel-frozen/pkg/export"
	"github.com/prequel-dev/prequel-frozen/pkg/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	var (
		outputBucket = pflag.String("output-bucket", "", "target bucket or directory for JSONL output (default: source)")
		outputPrefix = pflag.String("output-prefix", "decoded/", "prefix for output JSONL blobs")
		configPath   = pflag.String("config", "", "YAML config file")
		filterTerm   = pflag.String("filter", "", "jq expression selecting events to export")
		workers      = pflag.Int("workers", 4, "journals decoded in parallel")
		console      = pflag.Bool("console", false, "print events to stdout instead of writing blobs")
		verbose      = pflag.BoolP("verbose", "v", false, "enable debug logging")
	)
	pflag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if pflag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <source>\n\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(1)
	}

	cfg := export.ConfigT{
		OutputPrefix: *outputPrefix,
		Workers:      *workers,
	}

	if *configPath != "" {
		var err error
		if cfg, err = export.LoadConfig(*configPath); err != nil {
			log.Error().Err(err).Msg("Fail load config")
			os.Exit(1)
		}
	}

	// Explicit flags win over config file values.
	if pflag.CommandLine.Changed("output-bucket") || cfg.OutputBucket == "" {
		cfg.OutputBucket = *outputBucket
	}
	if pflag.CommandLine.Changed("output-prefix") || cfg.OutputPrefix == "" {
		cfg.OutputPrefix = *outputPrefix
	}
	if pflag.CommandLine.Changed("workers") || cfg.Workers <= 0 {
		cfg.Workers = *workers
	}
	if pflag.CommandLine.Changed("filter") {
		cfg.Filter = *filterTerm
	}
	if pflag.CommandLine.Changed("console") {
		cfg.Console = *console
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, prefix, err := storage.New(ctx, pflag.Arg(0))
	if err != nil {
		log.Error().Err(err).Str("source", pflag.Arg(0)).Msg("Fail open source store")
		os.Exit(1)
	}

	var (
		dst       = src
		dstPrefix = cfg.OutputPrefix
	)
	if cfg.OutputBucket != "" {
		var inner string
		if dst, inner, err = storage.New(ctx, cfg.OutputBucket); err != nil {
			log.Error().Err(err).Str("bucket", cfg.OutputBucket).Msg("Fail open output store")
			os.Exit(1)
		}
		if inner != "" {
			dstPrefix = inner + "/" + dstPrefix
		}
	}

	opts := []export.OptT{
		export.WithWorkers(cfg.Workers),
		export.WithOutputPrefix(dstPrefix),
	}

	if cfg.Filter != "" {
		filterF, err := export.NewFilter(cfg.Filter)
		if err != nil {
			log.Error().Err(err).Msg("Fail compile filter")
			os.Exit(1)
		}
		opts = append(opts, export.WithFilter(filterF))
	}

	if cfg.Console {
		opts = append(opts, export.WithConsole(os.Stdout))
	}

	sum, err := export.NewExporter(src, dst, opts...).Run(ctx, prefix)
	if err != nil {
		log.Error().Err(err).Msg("Export failed")
		os.Exit(1)
	}
	if sum.Journals == 0 {
		log.Error().Str("source", pflag.Arg(0)).Msg("No journals found")
		os.Exit(1)
	}
}
