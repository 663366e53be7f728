package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/neilberkman/cyclerider/internal/core/importer"
	"github.com/neilberkman/cyclerider/internal/core/logging"
	"github.com/neilberkman/cyclerider/internal/interface/tui"
	"github.com/neilberkman/cyclerider/pkg/novaexport"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [files or directories...]",
	Short: "Launch the interactive cycling analyzer",
	Long:  "Import potentiostat exports and browse per-cycle capacity, energy and efficiency interactively",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Logging to stderr would corrupt the alt screen
	imp := importer.New(novaexport.Options{StrictHeader: cfg.StrictHeader}, logging.Discard())

	model := tui.New(imp, cfg, args)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
