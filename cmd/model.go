package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/optiscan/optiscan/core"
	"github.com/optiscan/optiscan/internal/contract"
)

// modelCmd focused on model bundle management.
var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect and manage the persisted model bundle",
	Long: `Manage the trained model bundle and its training report sidecar.

Subcommands:
  info  - Show the active model's algorithm, metrics, and feature importance
  clear - Delete the persisted bundle and report

Examples:
  # Inspect the active model
  optiscan model info

  # Remove the persisted model to force retraining
  optiscan model clear`,
}

// modelInfoCmd shows the active model summary.
var modelInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show algorithm, training metrics, and feature importance",
	Long: `Display a summary of the active model.

Shows:
- Algorithm and training timestamp
- Evaluation metrics from the held-out split (accuracy, precision, recall, F1, AUC-ROC)
- Dataset composition used for training
- Per-feature importance weights

Examples:
  # Human-readable summary
  optiscan model info

  # Machine-readable for scripts
  optiscan model info --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteModelInfo(cfg, engine); err != nil {
			contract.LogFatal("Cannot show model info", err)
		}
	},
}

// modelClearCmd deletes the persisted bundle and report.
var modelClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the persisted model bundle and training report",
	Long: `Delete the model bundle and its training report sidecar from disk.

The next analyze, serve, or watch run will require training a new model
first. Missing files are not an error, so clear is safe to run twice.

Examples:
  optiscan model clear`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		for _, path := range []string{cfg.ModelPath, cfg.ReportPath} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				contract.LogFatal("Failed to remove "+path, err)
			}
		}
		fmt.Println("Model bundle cleared successfully.")
	},
}
