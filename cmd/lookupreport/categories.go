package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"
)

// NewCategoriesCmd creates the categories command.
func NewCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List lookup categories",
		Long: `Categories lists the built-in lookup categories together with any added
or changed by the configuration file. The ENDPOINT column shows whether an
upstream endpoint is configured; the URL itself is never printed.`,
		Args: cobra.NoArgs,
		RunE: runCategoriesCmd,
	}

	cmd.Flags().BoolP("markdown", "m", false, "Output a Markdown table")

	return cmd
}

func runCategoriesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := newBaseConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(cmd)

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	header := []string{"CATEGORY", "LABEL", "LENGTH", "ENDPOINT", "INFO"}
	rows := make([][]string, 0, len(reg.All()))
	for _, s := range reg.All() {
		length := strconv.Itoa(s.MinLength)
		if s.MaxLength != s.MinLength {
			length = fmt.Sprintf("%d-%d", s.MinLength, s.MaxLength)
		}
		endpoint := "no"
		if s.Endpoint != "" {
			endpoint = "yes"
		}
		rows = append(rows, []string{s.Category.String(), s.Label, length, endpoint, s.Info})
	}

	out := cmd.OutOrStdout()
	if asMarkdown {
		md := markdown.NewMarkdown(out)
		md.H2("Lookup Categories")
		md.Table(markdown.TableSet{Header: header, Rows: rows})
		return md.Build()
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeRow(tw, header)
	for _, r := range rows {
		writeRow(tw, r)
	}
	return tw.Flush()
}

func writeRow(tw *tabwriter.Writer, cols []string) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
}
