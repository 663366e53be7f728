package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/cyclerider/internal/core/models"
	"github.com/neilberkman/cyclerider/internal/core/plot"
)

var (
	plotDir     string
	plotOverlay string
	plotDensity bool
	plotWidth   int
	plotHeight  int
)

var plotCmd = &cobra.Command{
	Use:   "plot <files or directories...>",
	Short: "Render potential, capacity and energy charts as PNG",
	Long: `Render three charts from the selected files:

  potential.png  potential over the stitched time axis
  capacity.png   capacity per cycle, optionally with efficiency or voltage overlay
  energy.png     energy (or energy density) per cycle

Examples:
  cyclerider plot data/ --dir plots
  cyclerider plot data/ --overlay efficiency --density`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVarP(&plotDir, "dir", "d", "", "Output directory (default: plot_dir from config, else current directory)")
	plotCmd.Flags().StringVar(&plotOverlay, "overlay", "", "Capacity chart overlay: none, efficiency or voltage")
	plotCmd.Flags().BoolVar(&plotDensity, "density", false, "Plot energy density instead of energy")
	plotCmd.Flags().IntVar(&plotWidth, "width", 0, "Chart width in pixels")
	plotCmd.Flags().IntVar(&plotHeight, "height", 0, "Chart height in pixels")
}

func runPlot(cmd *cobra.Command, args []string) error {
	display := cfg.Display()
	if cmd.Flags().Changed("overlay") {
		o, err := models.ParseOverlay(plotOverlay)
		if err != nil {
			return err
		}
		display.Overlay = o
	}
	if cmd.Flags().Changed("density") {
		display.ShowEnergyDensity = plotDensity
	}

	dir := plotDir
	if dir == "" {
		dir = cfg.PlotDir
	}
	if dir == "" {
		dir = "."
	}

	s, err := loadSession(args)
	if err != nil {
		return err
	}
	res := s.Analyze(cfg.Params())

	written, err := plot.WriteFiles(dir, res, plot.Options{
		Display: display,
		Pairing: cfg.Pairing,
		Width:   plotWidth,
		Height:  plotHeight,
	})
	if err != nil {
		return fmt.Errorf("failed to write charts: %w", err)
	}
	for _, path := range written {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}
