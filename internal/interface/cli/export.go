package cli

import (
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/neilberkman/cyclerider/internal/core/export"
)

var (
	exportOutput    string
	exportClipboard bool
)

var exportCmd = &cobra.Command{
	Use:   "export <files or directories...>",
	Short: "Export per-cycle results as tab-separated text",
	Long: `Export one row per cycle with charge and discharge capacity, Coulombic
efficiency, energy, average voltage and energy density.

By default writes to the export_path from the config (cycles.txt).
Use --output - to print to stdout.

Examples:
  cyclerider export data/
  cyclerider export data/ --output results.txt
  cyclerider export data/ -o -
  cyclerider export data/ --clipboard`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path, - for stdout (default: export_path from config)")
	exportCmd.Flags().BoolVar(&exportClipboard, "clipboard", false, "Copy the export to the clipboard instead of writing a file")
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := loadSession(args)
	if err != nil {
		return err
	}
	res := s.Analyze(cfg.Params())

	if exportClipboard {
		if err := clipboard.WriteAll(export.Format(res.Segments)); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Copied %d cycles to clipboard\n", len(export.Rows(res.Segments)))
		return nil
	}

	outputPath := exportOutput
	if outputPath == "" {
		outputPath = cfg.ExportPath
	}
	err = writeOut(outputPath, func(w io.Writer) error {
		return export.Write(w, res.Segments)
	})
	if err != nil {
		return err
	}
	if outputPath != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d cycles to: %s\n", len(export.Rows(res.Segments)), outputPath)
	}
	return nil
}
