package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/neilberkman/cyclerider/internal/core/cycles"
	"github.com/neilberkman/cyclerider/internal/core/export"
	"github.com/neilberkman/cyclerider/internal/core/models"
)

var analyzeFormat string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <files or directories...>",
	Short: "Derive per-cycle results",
	Long: `Import cycling exports and print one line per half-cycle with its
capacity, energy, energy density, average voltage and current, followed by the
Coulombic efficiency per cycle.

Examples:
  cyclerider analyze data/
  cyclerider analyze "charge (1).txt" "discharge (1).txt" --current 0.05
  cyclerider analyze data/ --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "table", "Output format: table, json or yaml")
}

// Report is the machine-readable form of one analysis.
type Report struct {
	CurrentA   float64                  `json:"current_a" yaml:"current_a"`
	VolumeL    float64                  `json:"volume_l" yaml:"volume_l"`
	Pairing    models.Pairing           `json:"pairing" yaml:"pairing"`
	Segments   []cycles.Segment         `json:"segments" yaml:"segments"`
	Cycles     []export.Row             `json:"cycles" yaml:"cycles"`
	Efficiency []cycles.EfficiencyPoint `json:"efficiency" yaml:"efficiency"`
	Skipped    []string                 `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

func newReport(res cycles.Result, params models.Params, pairing models.Pairing) Report {
	return Report{
		CurrentA:   params.CurrentA,
		VolumeL:    params.VolumeL,
		Pairing:    pairing,
		Segments:   res.Segments,
		Cycles:     export.Rows(res.Segments),
		Efficiency: cycles.Efficiencies(res.Segments, pairing),
		Skipped:    res.Skipped,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	s, err := loadSession(args)
	if err != nil {
		return err
	}

	params := cfg.Params()
	res := s.Analyze(params)
	return writeReport(cmd.OutOrStdout(), analyzeFormat, newReport(res, params, cfg.Pairing))
}

func writeReport(w io.Writer, format string, r Report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(r)
	case "table", "":
		_, err := fmt.Fprintln(w, renderTable(r))
		return err
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

func renderTable(r Report) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("Cycle", "Type", "File", "Capacity (mAh)", "Energy (mWh)", "Density (Wh/L)", "Avg V", "Current (A)")

	for _, s := range r.Segments {
		current := strconv.FormatFloat(s.Current, 'g', 5, 64)
		if s.CurrentMeasured {
			current += " *"
		}
		t.Row(
			strconv.Itoa(s.Cycle),
			string(s.Type),
			s.Name,
			fmt.Sprintf("%.5f", s.CapacityMAh),
			fmt.Sprintf("%.5f", s.EnergyMWh),
			fmt.Sprintf("%.5f", s.EnergyDensityWhL),
			fmt.Sprintf("%.3f", s.AverageVoltageV),
			current,
		)
	}

	out := t.Render()
	if len(r.Efficiency) > 0 {
		out += "\n\nCoulombic efficiency (" + string(r.Pairing) + " pairing)"
		for _, p := range r.Efficiency {
			out += fmt.Sprintf("\n  cycle %d: %.2f %%", p.Cycle, p.Percent)
		}
	}
	if len(r.Skipped) > 0 {
		out += "\n\nSkipped (no potential column):"
		for _, name := range r.Skipped {
			out += "\n  " + name
		}
	}
	if measuredAny(r.Segments) {
		out += "\n\n* current measured from the file"
	}
	return out
}

func measuredAny(segs []cycles.Segment) bool {
	for _, s := range segs {
		if s.CurrentMeasured {
			return true
		}
	}
	return false
}

func writeOut(path string, write func(io.Writer) error) (err error) {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f)
}
