package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/optiscan/optiscan/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit  = 25
	MaxResultLimit      = 1000
	DefaultPrecision    = 2
	DefaultDatasetSize  = 800
	MaxDatasetSize      = 100000
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
	DefaultServerHost   = "0.0.0.0"
	DefaultServerPort   = 8000
	DefaultDebounce     = 2 * time.Second
	DefaultMinFileSize  = 10              // bytes
	DefaultMaxFileSize  = 1 * 1024 * 1024 // bytes
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for all commands.
// This struct remains the "final, validated" config.
type Config struct {
	TargetPath  string
	ModelPath   string
	ReportPath  string
	Algorithm   schema.Algorithm
	DatasetSize int
	TestFrac    float64
	Seed        int64

	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Excludes    []string
	Width       int // Terminal width override (0 = auto-detect)
	MetricsOnly bool

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	ServerHost string
	ServerPort int

	WatchServerURL string
	Debounce       time.Duration
	MinFileSize    int64
	MaxFileSize    int64

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	TargetPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	ModelPath        string  `mapstructure:"model-path"`
	Algorithm        string  `mapstructure:"algorithm"`
	Seed             int64   `mapstructure:"seed"`
	TestFraction     float64 `mapstructure:"test-fraction"`
	Limit            int     `mapstructure:"limit"`
	Workers          int     `mapstructure:"workers"`
	Precision        int     `mapstructure:"precision"`
	Output           string  `mapstructure:"output"`
	OutputFile       string  `mapstructure:"output-file"`
	Exclude          string  `mapstructure:"exclude"`
	Width            int     `mapstructure:"width"`
	HistoryBackend   string  `mapstructure:"history-backend"`
	HistoryDBConnect string  `mapstructure:"history-db-connect"`
	Emoji            string  `mapstructure:"emoji"`
	Color            string  `mapstructure:"color"`

	// --- Fields from trainCmd.Flags() and serveCmd.Flags() ---
	DatasetSize int    `mapstructure:"dataset-size"`
	ServerHost  string `mapstructure:"host"`
	ServerPort  int    `mapstructure:"port"`

	// --- Fields from analyzeCmd.Flags() ---
	MetricsOnly bool `mapstructure:"metrics-only"`

	// --- Fields from watchCmd.Flags() ---
	WatchServer string `mapstructure:"server"`
	DebounceMS  int    `mapstructure:"debounce-ms"`
	MinFileSize int64  `mapstructure:"min-file-size"`
	MaxFileSize int64  `mapstructure:"max-file-size"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processModelPaths(cfg, input); err != nil {
		return err
	}
	if err := processTrainingInputs(cfg, input); err != nil {
		return err
	}
	if err := processServerInputs(cfg, input); err != nil {
		return err
	}
	if err := processWatchInputs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.TargetPath = input.TargetPathStr
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MetricsOnly = input.MetricsOnly

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Algorithm Validation ---
	cfg.Algorithm = schema.Algorithm(strings.ToLower(input.Algorithm))
	if _, ok := schema.ValidAlgorithms[cfg.Algorithm]; !ok {
		return fmt.Errorf("invalid algorithm '%s'. must be random_forest, gradient_boosting, svm, logistic_regression", input.Algorithm)
	}

	// --- 4. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	// --- 5. Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// --- 6. Excludes Processing ---
	defaults := []string{
		".git/", "node_modules/", "vendor/", "dist/", "build/", "out/", "target/", "bin/",
		"__pycache__/", ".venv/", ".idea/",
		"Cargo.lock", "go.sum", "package-lock.json", "yarn.lock", "pnpm-lock.yaml", "composer.lock", "uv.lock",
		".min.js", ".min.css",
		".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".mp4", ".mov", ".webm", ".mp3", ".ogg", ".pdf", ".webp",
		".DS_Store", ".gitignore",
	}
	cfg.Excludes = defaults // Set defaults first

	if input.Exclude != "" {
		parts := strings.SplitSeq(input.Exclude, ",")
		for p := range parts {
			trimmedP := strings.TrimSpace(p)
			if trimmedP != "" {
				cfg.Excludes = append(cfg.Excludes, trimmedP)
			}
		}
	}

	return nil
}

// processModelPaths resolves the model bundle path and its report sidecar.
func processModelPaths(cfg *Config, input *ConfigRawInput) error {
	cfg.ModelPath = strings.TrimSpace(input.ModelPath)
	if cfg.ModelPath == "" {
		cfg.ModelPath = GetModelFilePath()
	}
	cfg.ReportPath = ReportPathForModel(cfg.ModelPath)
	return nil
}

// processTrainingInputs handles the dataset and split parameters.
func processTrainingInputs(cfg *Config, input *ConfigRawInput) error {
	if input.DatasetSize <= 0 || input.DatasetSize > MaxDatasetSize {
		return fmt.Errorf("dataset-size must be between 1 and %d (received %d)", MaxDatasetSize, input.DatasetSize)
	}
	cfg.DatasetSize = input.DatasetSize

	if input.TestFraction <= 0 || input.TestFraction >= 1 {
		return fmt.Errorf("test-fraction must be between 0 and 1 exclusive (received %g)", input.TestFraction)
	}
	cfg.TestFrac = input.TestFraction

	cfg.Seed = input.Seed
	return nil
}

// processServerInputs handles the request surface parameters.
func processServerInputs(cfg *Config, input *ConfigRawInput) error {
	if input.ServerPort <= 0 || input.ServerPort > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (received %d)", input.ServerPort)
	}
	cfg.ServerPort = input.ServerPort

	cfg.ServerHost = strings.TrimSpace(input.ServerHost)
	if cfg.ServerHost == "" {
		cfg.ServerHost = DefaultServerHost
	}
	return nil
}

// processWatchInputs handles the watcher parameters.
func processWatchInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.WatchServerURL = strings.TrimSpace(input.WatchServer)

	if input.DebounceMS < 0 {
		return fmt.Errorf("debounce-ms cannot be negative (received %d)", input.DebounceMS)
	}
	cfg.Debounce = time.Duration(input.DebounceMS) * time.Millisecond
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}

	if input.MinFileSize < 0 || input.MaxFileSize < 0 {
		return fmt.Errorf("file size bounds cannot be negative")
	}
	cfg.MinFileSize = input.MinFileSize
	cfg.MaxFileSize = input.MaxFileSize
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.MinFileSize > cfg.MaxFileSize {
		return fmt.Errorf("min-file-size (%d) cannot exceed max-file-size (%d)", cfg.MinFileSize, cfg.MaxFileSize)
	}

	return nil
}
