package cmd

import (
	"github.com/spf13/cobra"

	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/internal/server"
)

// serveCmd runs the HTTP prediction API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP prediction API.",
	Long: `Start an HTTP server exposing the prediction engine.

Endpoints (all under /api/ml):
  POST /predict        - score one feature vector
  POST /batch-predict  - score many feature vectors in one call
  POST /retrain        - retrain the model and swap it in atomically
  GET  /model-info     - summarize the active model
  GET  /health         - liveness and model status

A previously trained model is loaded at startup when present. Without one,
predict endpoints return 503 until a retrain request succeeds.

Examples:
  # Serve on the default port
  optiscan serve

  # Bind to localhost only
  optiscan serve --host 127.0.0.1 --port 9000`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := server.Run(cfg, engine, storeManager); err != nil {
			contract.LogFatal("Server stopped", err)
		}
	},
}
