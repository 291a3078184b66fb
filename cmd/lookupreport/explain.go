package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/report"
)

// NewExplainCmd creates the explain command.
func NewExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [file|-]",
		Short: "Explain how a saved response would be rendered",
		Long: `Explain prints whether a response would produce a report or a
"No details found" answer, and why.

Examples:
  lookupreport explain response.json
  lookupreport explain --category vehicle < vehicle.json
  lookupreport explain --json response.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExplainCmd,
	}

	cmd.Flags().String("category", "",
		"Category used to select a dedicated renderer (default: generic)")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

func runExplainCmd(cmd *cobra.Command, args []string) error {
	setupLogger(cmd)

	tag, err := cmd.Flags().GetString("category")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	raw, err := readPayload(cmd, path)
	if err != nil {
		return err
	}

	ex := report.NewEngine().Explain(raw, category.Normalize(tag))

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ex)
	}

	fmt.Fprintln(out, ex.Diagnosis.String())
	if ex.Renderer != "" {
		fmt.Fprintf(out, "renderer: %s\n", ex.Renderer)
	}
	return nil
}
