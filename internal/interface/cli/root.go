package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/neilberkman/cyclerider/internal/core/config"
	"github.com/neilberkman/cyclerider/internal/core/importer"
	"github.com/neilberkman/cyclerider/internal/core/logging"
	"github.com/neilberkman/cyclerider/internal/core/models"
	"github.com/neilberkman/cyclerider/internal/core/session"
	"github.com/neilberkman/cyclerider/pkg/novaexport"
)

var (
	configPath   string
	currentA     float64
	volumeL      float64
	chargeFirst  bool
	strictHeader bool
	pairingName  string
	logLevel     string
	versionInfo  string

	cfg = config.Default()
	log = logging.NewLogger("info")
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cyclerider [files...]",
	Short: "Battery cycling test analyzer",
	Long: `cyclerider - turn potentiostat charge/discharge exports into per-cycle results

Reads tab-separated cycling exports, classifies each file as a charge or
discharge half-cycle, and derives capacity, energy, energy density, average
voltage and Coulombic efficiency per cycle.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to TUI if no subcommand specified
		return tuiCmd.RunE(cmd, args)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().Float64Var(&currentA, "current", models.DefaultCurrentA, "Current in A for files without a current column")
	rootCmd.PersistentFlags().Float64Var(&volumeL, "volume", models.DefaultVolumeL, "Sample volume in L (<= 0 disables energy density)")
	rootCmd.PersistentFlags().BoolVar(&chargeFirst, "charge-first", true, "Process charge before discharge for files with the same number")
	rootCmd.PersistentFlags().BoolVar(&strictHeader, "strict-header", false, "Reject files without a \"Corrected time\"/\"Potential\" header line")
	rootCmd.PersistentFlags().StringVar(&pairingName, "pairing", string(models.PairingAdjacent), "Efficiency pairing: adjacent or by-cycle")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// setup loads the config file and lets explicitly set flags override it.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadFile(configPath)
	if err != nil {
		log.Warnf("Using default config: %v", err)
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("current") {
		cfg.CurrentA = currentA
	}
	if flags.Changed("volume") {
		cfg.VolumeL = volumeL
	}
	if flags.Changed("charge-first") {
		cfg.ChargeFirst = chargeFirst
	}
	if flags.Changed("strict-header") {
		cfg.StrictHeader = strictHeader
	}
	if flags.Changed("pairing") {
		p, err := models.ParsePairing(pairingName)
		if err != nil {
			return err
		}
		cfg.Pairing = p
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	logging.SetLevel(log, cfg.LogLevel)

	if err := cfg.Params().Validate(); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}

	log.WithFields(logrus.Fields{
		"current_a":    cfg.CurrentA,
		"volume_l":     cfg.VolumeL,
		"charge_first": cfg.ChargeFirst,
		"pairing":      cfg.Pairing,
	}).Debug("Configuration loaded")
	return nil
}

// loadSession imports the files and directories named in args.
func loadSession(args []string) (*session.Session, error) {
	files, err := importer.ExpandPaths(args)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	var progress importer.ProgressCallback
	if len(files) > 1 && isatty.IsTerminal(os.Stderr.Fd()) {
		progress = importer.NewProgressReporter(os.Stderr, len(files))
	}

	imp := importer.New(novaexport.Options{StrictHeader: cfg.StrictHeader}, log)
	batch := imp.Import(files, progress)

	for _, f := range batch.Failures {
		fmt.Fprintf(os.Stderr, "%s: %s\n", f.Title(), f.Message())
	}
	if len(batch.Recordings) == 0 {
		return nil, fmt.Errorf("none of the %d files could be imported", len(files))
	}

	s := session.New(cfg.ChargeFirst)
	s.Replace(batch)
	return s, nil
}
