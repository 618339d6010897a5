// Package cmd defines the command-line interface for optiscan.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the model subcommands to the parent model command
	modelCmd.AddCommand(modelInfoCmd)
	modelCmd.AddCommand(modelClearCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("model-path", "", "Path to the model bundle (default: ~/.optiscan_model.bin)")
	rootCmd.PersistentFlags().StringP("algorithm", "a", string(schema.RandomForest), "Classifier algorithm: random_forest, gradient_boosting, svm, logistic_regression")
	rootCmd.PersistentFlags().Int64("seed", contract.DefaultSeed, "Random seed for synthetic data generation")
	rootCmd.PersistentFlags().Float64("test-fraction", contract.DefaultTestFraction, "Fraction of samples held out for evaluation")
	rootCmd.PersistentFlags().Int("dataset-size", contract.DefaultDatasetSize, "Total number of synthetic samples to generate")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "History backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of analyzeCmd to Viper
	analyzeCmd.Flags().Bool("metrics-only", false, "Print raw metrics without running the classifier")
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyze flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("host", contract.DefaultServerHost, "Host interface to bind the HTTP server to")
	serveCmd.Flags().Int("port", contract.DefaultServerPort, "Port to bind the HTTP server to")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of watchCmd to Viper
	watchCmd.Flags().String("server", "", "Base URL of a running optiscan server to predict against (empty = local model)")
	watchCmd.Flags().Int("debounce-ms", int(contract.DefaultDebounce.Milliseconds()), "Debounce window for file system events in milliseconds")
	watchCmd.Flags().Int64("min-file-size", contract.DefaultMinFileSize, "Skip files smaller than this many bytes")
	watchCmd.Flags().Int64("max-file-size", contract.DefaultMaxFileSize, "Skip files larger than this many bytes")
	if err := viper.BindPFlags(watchCmd.Flags()); err != nil {
		contract.LogFatal("Error binding watch flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
