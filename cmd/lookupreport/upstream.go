package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/lookupreport/internal/config"
)

// addUpstreamFlags registers the flags that shape upstream requests.
func addUpstreamFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each upstream request")
	cmd.Flags().Float64("rate", config.DefaultRateLimit,
		"Upstream requests per second shared by all workers (0 disables the limit)")
	cmd.Flags().Int("burst", config.DefaultRateBurst,
		"Upstream requests allowed at once")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"Reuse successful responses for this long (0 disables the cache)")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy for upstream requests (e.g., 127.0.0.1:9050)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum upstream response size in bytes")
	cmd.Flags().Bool("no-history", false,
		"Do not record lookups in the history database")
}

// readUpstreamFlags copies the upstream flags into cfg.
func readUpstreamFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.RateLimit, err = cmd.Flags().GetFloat64("rate"); err != nil {
		return err
	}
	if cfg.RateBurst, err = cmd.Flags().GetInt("burst"); err != nil {
		return err
	}
	if cfg.CacheTTL, err = cmd.Flags().GetDuration("cache-ttl"); err != nil {
		return err
	}
	if cfg.ProxyAddress, err = cmd.Flags().GetString("proxy"); err != nil {
		return err
	}
	if cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size"); err != nil {
		return err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noHistory

	return nil
}
