package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/lookupreport/internal/config"
	"github.com/nao1215/lookupreport/internal/history"
	applog "github.com/nao1215/lookupreport/internal/log"
	"github.com/nao1215/lookupreport/internal/lookup"
	"github.com/nao1215/lookupreport/internal/pipeline"
	"github.com/nao1215/lookupreport/internal/report"
	"github.com/nao1215/lookupreport/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve starts an HTTP API for rendering and lookups.

Routes:
  POST /v1/render                   {"category","query","payload"} -> text report
  POST /v1/explain                  {"category","payload"} -> JSON diagnosis
  GET  /v1/categories               category registry
  GET  /v1/lookup/:category/:query  live lookup -> text report
  GET  /v1/history                  recent searches (?limit=N)
  GET  /v1/stats                    search statistics

Append ?format=json to render and lookup for a JSON document.

Examples:
  lookupreport serve
  lookupreport serve --addr :9000 --api-rate 20`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultServerAddr, "Listen address")
	cmd.Flags().Float64("api-rate", server.DefaultRateLimit, "API requests per second per client IP")
	cmd.Flags().Int("api-burst", server.DefaultRateBurst, "API request burst per client IP")
	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit, "Default number of searches returned by /v1/history")
	addUpstreamFlags(cmd)

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := newBaseConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.ServerAddr, err = cmd.Flags().GetString("addr"); err != nil {
		return err
	}
	if cfg.HistoryLimit, err = cmd.Flags().GetInt("limit"); err != nil {
		return err
	}
	apiRate, err := cmd.Flags().GetFloat64("api-rate")
	if err != nil {
		return err
	}
	apiBurst, err := cmd.Flags().GetInt("api-burst")
	if err != nil {
		return err
	}
	if err := readUpstreamFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	client, err := lookup.NewClient(cfg, lookup.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create lookup client: %w", err)
	}
	engine := report.NewEngine()

	opts := []server.Option{
		server.WithEngine(engine),
		server.WithRegistry(reg),
		server.WithLogger(logger),
		server.WithRateLimit(apiRate, apiBurst),
		server.WithCacheTTL(cfg.CacheTTL),
		server.WithHistoryLimit(cfg.HistoryLimit),
	}

	components := pipeline.Components{
		Registry: reg,
		Fetcher:  client,
		Engine:   engine,
		Logger:   logger,
	}
	if cfg.SaveToDB {
		store, err := history.Open(cfg.DBPath(), history.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer store.Close()
		components.Recorder = store
		opts = append(opts, server.WithHistory(store))
	}
	opts = append(opts, server.WithLookup(func() *pipeline.Pipeline {
		return pipeline.NewLookupPipeline(components)
	}))

	ctx, stop := signalContext()
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", cfg.ServerAddr)
	return server.New(opts...).Run(ctx, cfg.ServerAddr)
}
