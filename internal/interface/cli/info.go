package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/cyclerider/internal/core/cycles"
	"github.com/neilberkman/cyclerider/pkg/novaexport"
)

var infoCmd = &cobra.Command{
	Use:   "info <files or directories...>",
	Short: "Show what was read from each file",
	Long: `Print the columns, row count, time source and classification of every
file, in processing order, without deriving cycles.

Examples:
  cyclerider info "charge (1).txt"
  cyclerider info data/ --strict-header`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, err := loadSession(args)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for i, rec := range s.Ordered() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeInfo(w, rec)
	}
	return nil
}

func writeInfo(w io.Writer, rec *novaexport.Recording) {
	fmt.Fprintf(w, "%s\n", rec.Name)
	fmt.Fprintf(w, "  Path:      %s\n", rec.Path)
	fmt.Fprintf(w, "  Size:      %s\n", humanize.Bytes(uint64(rec.Size)))
	if st, err := os.Stat(rec.Path); err == nil {
		fmt.Fprintf(w, "  Modified:  %s\n", humanize.Time(st.ModTime()))
	}
	fmt.Fprintf(w, "  Rows:      %s\n", humanize.Comma(int64(rec.Rows())))
	fmt.Fprintf(w, "  Columns:   %s\n", strings.Join(rec.Columns, ", "))
	fmt.Fprintf(w, "  Number:    %d\n", cycles.FileNumber(rec.Path))

	timeSource := novaexport.ColumnCorrectedTime
	if rec.TimeDerived {
		timeSource = "derived from " + novaexport.ColumnTime
	}
	fmt.Fprintf(w, "  Time:      %s\n", timeSource)
	if rec.HeaderFallback {
		fmt.Fprintf(w, "  Header:    first line (no marker header found)\n")
	}

	if !rec.HasPotential() {
		fmt.Fprintf(w, "  Potential: missing, file is skipped during analysis\n")
		return
	}
	trend := cycles.Trend(rec.Potential)
	fmt.Fprintf(w, "  Trend:     %+.6f V/row (%s)\n", trend, cycles.ClassifyTrend(trend))

	if rec.HasCurrent() {
		fmt.Fprintf(w, "  Current:   measured\n")
	} else {
		fmt.Fprintf(w, "  Current:   not recorded, using %g A\n", cfg.CurrentA)
	}
}
