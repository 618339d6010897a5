package cmd

import (
	"github.com/spf13/cobra"

	"github.com/optiscan/optiscan/core"
	"github.com/optiscan/optiscan/internal/contract"
)

// analyzeCmd scores source files against the active model.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [target-path]",
	Short: "Rank source files by how likely they need optimization.",
	Long: `Scan a file or directory, extract static metrics from every source file,
and score each one against the trained classifier.

Results are ranked with the least optimized files first, so the top of the
list is where optimization work pays off most. Each flagged file carries
concrete recommendations derived from its metrics.

Use --metrics-only to inspect the raw metrics without running the classifier.

Examples:
  # Analyze the current directory
  optiscan analyze

  # Analyze a project and keep the 10 worst files
  optiscan analyze ~/src/myproject --limit 10

  # Export findings to CSV for tracking
  optiscan analyze --output csv --output-file findings.csv

  # Just extract metrics, no model required
  optiscan analyze src/ --metrics-only`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, engine, storeManager); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}
