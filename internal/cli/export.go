package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ExportResult is the payload reported after an export.
type ExportResult struct {
	Path       string `json:"path"`
	ExportID   string `json:"export_id"`
	ExportedAt string `json:"exported_at"`
	Items      int    `json:"items"`
	Zones      int    `json:"zones"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of every item, zone and report",
		Long: `Write a JSON snapshot containing every item status, the zone registry,
distribution patterns and the attention report.

The target defaults to HAPPY_PLACES_EXPORT_PATH.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				output = rootOpts.Config.ExportPath
			}
			return runExport(rootOpts, output, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default from config)")
	return cmd
}

func runExport(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	svc, err := openServices(opts)
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer svc.close()

	doc, err := svc.exporter.WriteFile(context.Background(), path)
	if err != nil {
		return formatter.Fail("failed to export", err)
	}

	result := ExportResult{
		Path:       path,
		ExportID:   doc.ExportID,
		ExportedAt: doc.ExportedAt,
		Items:      len(doc.Items),
		Zones:      len(doc.Zones),
	}
	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Exported %d items and %d zones to %s\n", result.Items, result.Zones, path)
	})
}
