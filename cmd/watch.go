package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/optiscan/optiscan/core/model"
	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/internal/watch"
)

// watchCmd analyzes source files as they change on disk.
var watchCmd = &cobra.Command{
	Use:   "watch [target-path]",
	Short: "Watch a directory and score source files as they change.",
	Long: `Watch a directory tree for file system changes and score every modified
source file against the model.

Events are debounced so rapid save bursts produce one analysis per file.
Deletions, non-source files, and files outside the configured size bounds
are skipped.

Predictions run against the local model by default. Pass --server to send
feature vectors to a running optiscan server instead, keeping the watcher
itself lightweight.

Press Ctrl+C to stop; a session summary is printed on exit.

Examples:
  # Watch the current directory with the local model
  optiscan watch

  # Watch a project with a longer debounce window
  optiscan watch ~/src/myproject --debounce-ms 5000

  # Delegate predictions to a shared server
  optiscan watch --server http://localhost:8000`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		var predictor watch.Predictor
		if cfg.WatchServerURL != "" {
			client := watch.NewRemoteClient(cfg.WatchServerURL)
			if err := client.Health(); err != nil {
				contract.LogWarn("Prediction server not healthy yet", err)
			}
			predictor = client
		} else {
			if !engine.Ready() {
				contract.LogFatal("Cannot start watch session", model.ErrModelNotReady)
			}
			predictor = engine
		}

		var store contract.HistoryStore
		if storeManager != nil {
			store = storeManager.GetHistoryStore()
		}

		session := watch.NewSession(cfg, predictor, store, os.Stdout)
		if err := session.Run(ctx); err != nil {
			contract.LogFatal("Watch session failed", err)
		}
	},
}
