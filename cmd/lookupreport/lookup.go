package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/config"
	"github.com/nao1215/lookupreport/internal/history"
	"github.com/nao1215/lookupreport/internal/lookup"
	"github.com/nao1215/lookupreport/internal/model"
	"github.com/nao1215/lookupreport/internal/pipeline"
	"github.com/nao1215/lookupreport/internal/report"
)

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <category> <query>...",
		Short: "Fetch and render live lookups",
		Long: `Lookup normalizes each query for the category, fetches it from the
configured endpoint, prints the report and records the search in the
local history.

Several queries are looked up concurrently (see --workers); reports are
printed in argument order. Queries without data are reported on stderr.

Examples:
  # Look up one mobile number
  lookupreport lookup mobile 98765-43210

  # Look up several vehicles, four at a time
  lookupreport lookup vehicle MH12AB1234 DL8CAF5030 -w 4

  # Go through a local Tor SOCKS proxy and skip history
  lookupreport lookup upi name@bank --proxy 127.0.0.1:9050 --no-history`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLookupCmd,
	}

	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent lookups")
	addUpstreamFlags(cmd)
	addOutputFlags(cmd)

	return cmd
}

func runLookupCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return config.ErrNoQuery
	}

	cfg, err := newBaseConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Workers, err = cmd.Flags().GetInt("workers"); err != nil {
		return err
	}
	if err := readUpstreamFlags(cmd, cfg); err != nil {
		return err
	}
	if err := readOutputFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, stop := signalContext()
	defer stop()

	return runLookup(ctx, cmd, cfg, category.Normalize(args[0]), args[1:], logger)
}

// newLookupFactory wires the lookup pipeline from cfg. The returned close
// function releases the history store.
func newLookupFactory(cfg *config.Config, logger *slog.Logger) (func() *pipeline.Pipeline, func() error, error) {
	reg, err := newRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}

	client, err := lookup.NewClient(cfg, lookup.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create lookup client: %w", err)
	}

	closeFn := func() error { return nil }
	var recorder pipeline.Recorder
	if cfg.SaveToDB {
		store, err := history.Open(cfg.DBPath(), history.DefaultOptions())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open history database: %w", err)
		}
		logger.Debug("history database opened", "path", store.Path())
		recorder = store
		closeFn = store.Close
	}

	components := pipeline.Components{
		Registry: reg,
		Fetcher:  client,
		Engine:   report.NewEngine(),
		Recorder: recorder,
		Logger:   logger,
	}
	return func() *pipeline.Pipeline {
		return pipeline.NewLookupPipeline(components)
	}, closeFn, nil
}

func runLookup(ctx context.Context, cmd *cobra.Command, cfg *config.Config, c category.Category, queries []string, logger *slog.Logger) error {
	factory, closeFn, err := newLookupFactory(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn() //nolint:errcheck // nothing useful to do on close failure

	var lookups []*model.Lookup
	if len(queries) == 1 {
		l := model.NewLookup(c, queries[0])
		_ = factory().Execute(ctx, l) //nolint:errcheck // outcome is stored in l
		lookups = []*model.Lookup{l}
	} else {
		bp := pipeline.NewBatchProcessor(factory,
			pipeline.WithConcurrency(cfg.Workers),
			pipeline.WithBatchLogger(logger),
		)
		lookups, err = bp.ProcessBatch(ctx, c, queries)
		if err != nil {
			return err
		}
	}

	return writeLookups(cmd, cfg, lookups)
}

// writeLookups prints every report and reports failures on stderr.
func writeLookups(cmd *cobra.Command, cfg *config.Config, lookups []*model.Lookup) error {
	out, closeOut, err := openOutput(cmd, cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // write errors are reported by Write

	w := newDocumentWriter(cfg, out)
	failed := 0
	for _, l := range lookups {
		if l == nil {
			failed++
			continue
		}
		if !l.Succeeded() {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", l.Category, l.Message)
			continue
		}
		if _, err := w.Write(l.Document); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d lookups returned no report", failed, len(lookups))
	}
	return nil
}
