package mlstore

import (
	"errors"
	"fmt"

	"github.com/optiscan/optiscan/internal/parquet"
)

// ExecuteHistoryExport performs the actual export of history data to Parquet files.
func ExecuteHistoryExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Get the history store
	store := Manager.GetHistoryStore()
	if store == nil {
		return errors.New("history tracking is disabled")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}

	if status.TotalRuns == 0 && status.TotalPredictions == 0 {
		return errors.New("no history data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total training runs: %d\n", status.TotalRuns)
	fmt.Printf("Total predictions: %d\n", status.TotalPredictions)

	// Retrieve all training runs
	trainingRuns, err := store.GetAllTrainingRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve training runs: %w", err)
	}

	// Retrieve all predictions
	predictions, err := store.GetAllPredictions()
	if err != nil {
		return fmt.Errorf("failed to retrieve predictions: %w", err)
	}

	// Convert to Parquet format
	parquetTrainingRuns := parquet.ConvertTrainingRunRecords(trainingRuns)
	parquetPredictions := parquet.ConvertPredictionRecords(predictions)

	// Write training runs to Parquet
	trainingRunsFile := outputFile + ".training_runs.parquet"
	if err := parquet.WriteTrainingRunsParquet(parquetTrainingRuns, trainingRunsFile); err != nil {
		return fmt.Errorf("failed to write training runs: %w", err)
	}
	fmt.Printf("Exported %d training runs to: %s\n", len(parquetTrainingRuns), trainingRunsFile)

	// Write predictions to Parquet
	predictionsFile := outputFile + ".predictions.parquet"
	if err := parquet.WritePredictionsParquet(parquetPredictions, predictionsFile); err != nil {
		return fmt.Errorf("failed to write predictions: %w", err)
	}
	fmt.Printf("Exported %d prediction records to: %s\n", len(parquetPredictions), predictionsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
