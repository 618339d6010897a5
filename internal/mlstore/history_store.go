package mlstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib"  // PostgreSQL driver
	_ "modernc.org/sqlite"              // SQLite driver

	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

// Table names for history tracking.
const (
	trainingRunsTable = "optiscan_training_runs"
	predictionsTable  = "optiscan_predictions"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetHistoryDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{
			db:         nil,
			backend:    backend,
			driverName: "",
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	// Create the table schemas
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createHistoryTables creates the history tracking tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{trainingRunsTable, getCreateTrainingRunsQuery(backend)},
		{predictionsTable, getCreatePredictionsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateTrainingRunsQuery returns the CREATE TABLE query for optiscan_training_runs.
func getCreateTrainingRunsQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				algorithm VARCHAR(50) NOT NULL,
				dataset_size INT NOT NULL,
				train_samples INT NOT NULL,
				test_samples INT NOT NULL,
				metrics_json TEXT,
				model_path VARCHAR(512)
			);
		`, trainingRunsTable)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				algorithm TEXT NOT NULL,
				dataset_size INT NOT NULL,
				train_samples INT NOT NULL,
				test_samples INT NOT NULL,
				metrics_json TEXT,
				model_path TEXT
			);
		`, trainingRunsTable)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				algorithm TEXT NOT NULL,
				dataset_size INTEGER NOT NULL,
				train_samples INTEGER NOT NULL,
				test_samples INTEGER NOT NULL,
				metrics_json TEXT,
				model_path TEXT
			);
		`, trainingRunsTable)
	}
}

// getCreatePredictionsQuery returns the CREATE TABLE query for optiscan_predictions.
func getCreatePredictionsQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				prediction_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				predicted_at DATETIME(6) NOT NULL,
				source VARCHAR(512) NOT NULL,
				label INT NOT NULL,
				confidence_score DOUBLE NOT NULL,
				lines_of_code DOUBLE NOT NULL,
				cyclomatic_complexity DOUBLE NOT NULL,
				dependency_count DOUBLE NOT NULL,
				function_count DOUBLE NOT NULL,
				class_count DOUBLE NOT NULL,
				comment_lines DOUBLE NOT NULL,
				complexity_per_loc DOUBLE NOT NULL,
				comment_ratio DOUBLE NOT NULL,
				functions_per_class DOUBLE NOT NULL
			);
		`, predictionsTable)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				prediction_id BIGSERIAL PRIMARY KEY,
				predicted_at TIMESTAMPTZ NOT NULL,
				source TEXT NOT NULL,
				label INT NOT NULL,
				confidence_score DOUBLE PRECISION NOT NULL,
				lines_of_code DOUBLE PRECISION NOT NULL,
				cyclomatic_complexity DOUBLE PRECISION NOT NULL,
				dependency_count DOUBLE PRECISION NOT NULL,
				function_count DOUBLE PRECISION NOT NULL,
				class_count DOUBLE PRECISION NOT NULL,
				comment_lines DOUBLE PRECISION NOT NULL,
				complexity_per_loc DOUBLE PRECISION NOT NULL,
				comment_ratio DOUBLE PRECISION NOT NULL,
				functions_per_class DOUBLE PRECISION NOT NULL
			);
		`, predictionsTable)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				prediction_id INTEGER PRIMARY KEY AUTOINCREMENT,
				predicted_at TEXT NOT NULL,
				source TEXT NOT NULL,
				label INTEGER NOT NULL,
				confidence_score REAL NOT NULL,
				lines_of_code REAL NOT NULL,
				cyclomatic_complexity REAL NOT NULL,
				dependency_count REAL NOT NULL,
				function_count REAL NOT NULL,
				class_count REAL NOT NULL,
				comment_lines REAL NOT NULL,
				complexity_per_loc REAL NOT NULL,
				comment_ratio REAL NOT NULL,
				functions_per_class REAL NOT NULL
			);
		`, predictionsTable)
	}
}

// BeginTrainingRun creates a new training run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginTrainingRun(startTime time.Time, algorithm schema.Algorithm, datasetSize, trainSamples, testSamples int) (int64, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	var runID int64
	var err error
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, algorithm, dataset_size, train_samples, test_samples) VALUES ($1, $2, $3, $4, $5) RETURNING run_id`, trainingRunsTable)
		err = hs.db.QueryRow(query, startTime, string(algorithm), datasetSize, trainSamples, testSamples).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, algorithm, dataset_size, train_samples, test_samples) VALUES (?, ?, ?, ?, ?)`, trainingRunsTable)
		var result sql.Result
		result, err = hs.db.Exec(query, formatTime(startTime, hs.backend), string(algorithm), datasetSize, trainSamples, testSamples)
		if err != nil {
			return 0, err
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert training run: %w", err)
	}

	return runID, nil
}

// EndTrainingRun updates the training run with completion data.
func (hs *HistoryStoreImpl) EndTrainingRun(runID int64, endTime time.Time, metricsJSON, modelPath string) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	var startTime time.Time

	var query string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = $1`, trainingRunsTable)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, trainingRunsTable)
	}

	row := hs.db.QueryRow(query, runID)

	// Handle different time storage formats per backend
	switch hs.backend {
	case schema.SQLiteBackend:
		var startTimeStr string
		if err := row.Scan(&startTimeStr); err != nil {
			return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
		var err error
		startTime, err = time.Parse(time.RFC3339Nano, startTimeStr)
		if err != nil {
			return fmt.Errorf("failed to parse start_time: %w", err)
		}
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&startTime); err != nil {
			return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
	}

	// Calculate duration in milliseconds
	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	var args []any

	switch hs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, metrics_json = $3, model_path = $4 WHERE run_id = $5`, trainingRunsTable)
		args = []any{endTime, durationMs, metricsJSON, modelPath, runID}
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, metrics_json = ?, model_path = ? WHERE run_id = ?`, trainingRunsTable)
		args = []any{formatTime(endTime, hs.backend), durationMs, metricsJSON, modelPath, runID}
	}

	if _, err := hs.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update training run: %w", err)
	}

	return nil
}

// RecordPrediction stores a single prediction outcome with its feature block.
func (hs *HistoryStoreImpl) RecordPrediction(record schema.PredictionRecord) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	fv := record.Features
	columns := `predicted_at, source, label, confidence_score,
		lines_of_code, cyclomatic_complexity, dependency_count, function_count,
		class_count, comment_lines, complexity_per_loc, comment_ratio, functions_per_class`

	var query string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, predictionsTable, columns)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, predictionsTable, columns)
	}

	args := []any{
		formatTime(record.PredictedAt, hs.backend), record.Source, int(record.Label), record.ConfidenceScore,
		fv.LinesOfCode, fv.CyclomaticComplexity, fv.DependencyCount, fv.FunctionCount,
		fv.ClassCount, fv.CommentLines, fv.ComplexityPerLOC, fv.CommentRatio, fv.FunctionsPerClass,
	}

	if _, err := hs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	// Get total runs
	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", trainingRunsTable)
	row := hs.db.QueryRow(runsQuery)
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", trainingRunsTable)
		row = hs.db.QueryRow(lastRunQuery)

		switch hs.backend {
		case schema.SQLiteBackend:
			var lastRunTimeStr string
			if err := row.Scan(&status.LastRunID, &lastRunTimeStr); err != nil {
				return status, fmt.Errorf("failed to get last run info: %w", err)
			}
			lastRunTime, err := time.Parse(time.RFC3339Nano, lastRunTimeStr)
			if err != nil {
				return status, fmt.Errorf("failed to parse last run time: %w", err)
			}
			status.LastRunTime = lastRunTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := row.Scan(&status.LastRunID, &status.LastRunTime); err != nil {
				return status, fmt.Errorf("failed to get last run info: %w", err)
			}
		}

		// Get oldest run time
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", trainingRunsTable)
		row = hs.db.QueryRow(oldestRunQuery)

		switch hs.backend {
		case schema.SQLiteBackend:
			var oldestRunTimeStr string
			if err := row.Scan(&oldestRunTimeStr); err != nil {
				return status, fmt.Errorf("failed to get oldest run time: %w", err)
			}
			oldestRunTime, err := time.Parse(time.RFC3339Nano, oldestRunTimeStr)
			if err != nil {
				return status, fmt.Errorf("failed to parse oldest run time: %w", err)
			}
			status.OldestRunTime = oldestRunTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := row.Scan(&status.OldestRunTime); err != nil {
				return status, fmt.Errorf("failed to get oldest run time: %w", err)
			}
		}
	}

	// Get total predictions
	predQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", predictionsTable)
	row = hs.db.QueryRow(predQuery)
	if err := row.Scan(&status.TotalPredictions); err != nil {
		return status, fmt.Errorf("failed to get total predictions: %w", err)
	}

	// Get table sizes
	tables := []string{trainingRunsTable, predictionsTable}
	for _, table := range tables {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		row = hs.db.QueryRow(countQuery)
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllTrainingRuns retrieves all training runs from the store.
func (hs *HistoryStoreImpl) GetAllTrainingRuns() ([]schema.TrainingRunRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, algorithm, dataset_size, train_samples, test_samples, metrics_json, model_path FROM %s ORDER BY run_id", trainingRunsTable)

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.TrainingRunRecord

	for rows.Next() {
		var record schema.TrainingRunRecord

		switch hs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &record.Algorithm, &record.DatasetSize, &record.TrainSamples, &record.TestSamples, &record.MetricsJSON, &record.ModelPath); err != nil {
				return nil, fmt.Errorf("failed to scan training run: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.Algorithm, &record.DatasetSize, &record.TrainSamples, &record.TestSamples, &record.MetricsJSON, &record.ModelPath); err != nil {
				return nil, fmt.Errorf("failed to scan training run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training runs: %w", err)
	}

	return results, nil
}

// GetAllPredictions retrieves all prediction records from the store.
func (hs *HistoryStoreImpl) GetAllPredictions() ([]schema.PredictionRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT prediction_id, predicted_at, source, label, confidence_score,
		lines_of_code, cyclomatic_complexity, dependency_count, function_count,
		class_count, comment_lines, complexity_per_loc, comment_ratio, functions_per_class
		FROM %s ORDER BY prediction_id`, predictionsTable)

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PredictionRecord

	for rows.Next() {
		var record schema.PredictionRecord
		var label int
		fv := &record.Features

		switch hs.backend {
		case schema.SQLiteBackend:
			var predictedAtStr string
			if err := rows.Scan(&record.PredictionID, &predictedAtStr, &record.Source, &label, &record.ConfidenceScore,
				&fv.LinesOfCode, &fv.CyclomaticComplexity, &fv.DependencyCount, &fv.FunctionCount,
				&fv.ClassCount, &fv.CommentLines, &fv.ComplexityPerLOC, &fv.CommentRatio, &fv.FunctionsPerClass); err != nil {
				return nil, fmt.Errorf("failed to scan prediction: %w", err)
			}
			predictedAt, err := time.Parse(time.RFC3339Nano, predictedAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse predicted_at: %w", err)
			}
			record.PredictedAt = predictedAt
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.PredictionID, &record.PredictedAt, &record.Source, &label, &record.ConfidenceScore,
				&fv.LinesOfCode, &fv.CyclomaticComplexity, &fv.DependencyCount, &fv.FunctionCount,
				&fv.ClassCount, &fv.CommentLines, &fv.ComplexityPerLOC, &fv.CommentRatio, &fv.FunctionsPerClass); err != nil {
				return nil, fmt.Errorf("failed to scan prediction: %w", err)
			}
		}

		record.Label = schema.Label(label)
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}

	return results, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}
