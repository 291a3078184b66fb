package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/config"
	"github.com/nao1215/lookupreport/internal/payload"
	"github.com/nao1215/lookupreport/internal/report"
)

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <category> <query> [file|-]",
		Short: "Render a saved lookup response",
		Long: `Render formats a saved JSON response as a report.

The response is read from the given file, or from stdin when the file is
omitted or "-". An empty input is treated as "no data". The query is only
used in the report header and is not validated.

Examples:
  # Render a saved GST response
  lookupreport render gst 27AAPFU0939F1ZV response.json

  # Pipe a response from curl
  curl -s "$API?q=9876543210" | lookupreport render mobile 9876543210

  # Markdown output written to a file
  lookupreport render family 123412341234 family.json -m -o family.md`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runRenderCmd,
	}

	addOutputFlags(cmd)

	return cmd
}

func runRenderCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	if err := readOutputFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	setupLogger(cmd)

	path := ""
	if len(args) == 3 {
		path = args[2]
	}
	raw, err := readPayload(cmd, path)
	if err != nil {
		return err
	}

	doc := report.NewEngine().Build(raw, category.Normalize(args[0]), args[1])

	out, closeOut, err := openOutput(cmd, cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // write errors are reported by Write

	_, err = newDocumentWriter(cfg, out).Write(doc)
	return err
}

// readPayload reads and decodes a response. Empty input decodes to null.
func readPayload(cmd *cobra.Command, path string) (payload.Value, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return payload.Null(), err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return payload.Null(), nil
	}
	v, err := payload.Parse(data)
	if err != nil {
		return payload.Null(), fmt.Errorf("invalid response JSON: %w", err)
	}
	return v, nil
}
