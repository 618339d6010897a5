package cmd

import (
	"github.com/spf13/cobra"

	"github.com/optiscan/optiscan/core"
	"github.com/optiscan/optiscan/internal/contract"
)

// datasetCmd generates a synthetic dataset without training.
var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Generate a labeled synthetic dataset without training.",
	Long: `Generate the same synthetic dataset the train command uses and write it
out for inspection or external experimentation.

The dataset is split into train and test partitions using the configured
test fraction. Text output prints per-partition summary statistics; csv and
json emit every sample. An output file ending in .parquet selects the
columnar writer regardless of the output format.

Examples:
  # Summarize a default-sized dataset
  optiscan dataset

  # Write all samples to CSV
  optiscan dataset --dataset-size 1000 --output csv --output-file samples.csv

  # Produce a Parquet file for pandas/DuckDB
  optiscan dataset --output-file samples.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDataset(cfg); err != nil {
			contract.LogFatal("Cannot generate dataset", err)
		}
	},
}
