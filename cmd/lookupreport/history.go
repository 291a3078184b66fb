package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/lookupreport/internal/config"
	"github.com/nao1215/lookupreport/internal/history"
)

// historyTimeLayout formats search times in listings.
const historyTimeLayout = "02/01/2006, 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show recent searches and statistics",
		Long: `History lists the most recent lookups with their status and response
time, followed by the total number of searches, the success rate and the
average response time.

With an id it prints the report stored for that search.

Examples:
  lookupreport history
  lookupreport history -n 20 --markdown
  lookupreport history 42
  lookupreport history --clear`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit, "Number of recent searches to show")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().Bool("clear", false, "Delete all recorded searches")

	return cmd
}

// historyView is the JSON form of the history listing.
type historyView struct {
	Searches []history.Search `json:"searches"`
	Stats    history.Stats    `json:"stats"`
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := newBaseConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.HistoryLimit, err = cmd.Flags().GetInt("limit"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	clearAll, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger := setupLogger(cmd)

	if _, err := os.Stat(cfg.DBPath()); errors.Is(err, os.ErrNotExist) && !clearAll {
		fmt.Fprintln(cmd.OutOrStdout(), "No searches recorded yet.")
		return nil
	}

	store, err := history.Open(cfg.DBPath(), history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()
	logger.Debug("history database opened", "path", store.Path())

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if clearAll {
		n, err := store.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %d searches.\n", n)
		return nil
	}

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid search id %q", args[0])
		}
		search, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		return writeSearch(out, cfg, search)
	}

	searches, err := store.Recent(ctx, cfg.HistoryLimit)
	if err != nil {
		return err
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}

	switch {
	case cfg.JSONReport:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(historyView{Searches: searches, Stats: stats})
	case cfg.MarkdownReport:
		return writeHistoryMarkdown(out, searches, stats)
	default:
		return writeHistoryText(out, searches, stats)
	}
}

func historyRows(searches []history.Search) [][]string {
	rows := make([][]string, 0, len(searches))
	for _, s := range searches {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.CreatedAt.Local().Format(historyTimeLayout),
			s.Category.Title(),
			s.Query,
			s.Status.Label(),
			fmt.Sprintf("%dms", s.ResponseMs),
		})
	}
	return rows
}

var historyHeader = []string{"ID", "TIME", "CATEGORY", "QUERY", "STATUS", "RESPONSE"}

func statsLine(st history.Stats) string {
	return fmt.Sprintf("Total Searches: %d  Success Rate: %d%%  Avg Response: %dms",
		st.Total, st.SuccessRate, st.AvgResponse)
}

func writeHistoryText(w io.Writer, searches []history.Search, st history.Stats) error {
	if len(searches) == 0 {
		fmt.Fprintln(w, "No searches recorded yet.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		writeRow(tw, historyHeader)
		for _, r := range historyRows(searches) {
			writeRow(tw, r)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, statsLine(st))
	return nil
}

func writeHistoryMarkdown(w io.Writer, searches []history.Search, st history.Stats) error {
	md := markdown.NewMarkdown(w)
	md.H2("Recent Searches")
	if len(searches) == 0 {
		md.PlainText("No searches recorded yet.")
	} else {
		md.Table(markdown.TableSet{Header: historyHeader, Rows: historyRows(searches)})
	}
	md.PlainText("")
	md.H2("Statistics")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Searches", strconv.Itoa(st.Total)},
			{"Success Rate", fmt.Sprintf("%d%%", st.SuccessRate)},
			{"Avg Response", fmt.Sprintf("%dms", st.AvgResponse)},
		},
	})
	return md.Build()
}

// writeSearch prints one stored search: its report when one was rendered,
// otherwise its message.
func writeSearch(w io.Writer, cfg *config.Config, s *history.Search) error {
	if cfg.JSONReport {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*history.Search
			Report string `json:"report,omitempty"`
		}{Search: s, Report: s.Report})
	}

	if s.Report != "" {
		_, err := io.WriteString(w, s.Report)
		return err
	}
	fmt.Fprintf(w, "%s %s: %s (%s)\n", s.Category.Title(), s.Query, s.Status.Label(), s.Message)
	return nil
}
