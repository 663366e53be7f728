package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neilberkman/cyclerider/internal/core/summary"
)

var summaryTemplate string

var summaryCmd = &cobra.Command{
	Use:   "summary <files or directories...>",
	Short: "Print a plain-text summary of the cycles",
	Long: `Render a summary of the analysis from a mustache template.

The built-in template is used unless summary_template is set in the config,
a summary.mustache file exists next to it, or --template is given.

Examples:
  cyclerider summary data/
  cyclerider summary data/ --template report.mustache > report.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&summaryTemplate, "template", "t", "", "Mustache template file")
}

func runSummary(cmd *cobra.Command, args []string) error {
	tmpl := cfg.SummaryTemplate
	if summaryTemplate != "" {
		data, err := os.ReadFile(summaryTemplate)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		tmpl = string(data)
	}

	s, err := loadSession(args)
	if err != nil {
		return err
	}

	params := cfg.Params()
	out, err := summary.Render(tmpl, s.Analyze(params), params, cfg.Pairing)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
