// Package main provides a performance benchmarking tool for the optiscan CLI.
// It measures training time per algorithm and analysis throughput across
// source trees of different sizes, running each test multiple times, treating
// the first successful run as cold and averaging the rest as warm, generating
// CSV output for performance analysis and documentation.
//
// Prerequisites:
// - optiscan binary installed and available in PATH
// - Source trees checked out under the specified base directory
//
// Usage: go run benchmark/main.go [project-base-dir]
//
//	project-base-dir: Directory containing test source trees
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-history average, cold run and average of warm runs).
type BenchmarkResult struct {
	Target        string
	Command       string
	NoHistoryTime string
	ColdTime      string
	WarmTime      string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ProjectBase   string
	Timeout       time.Duration
	Workers       int
	NoHistoryRuns int
	HistoryRuns   int
	TestProjects  []string
	Algorithms    []string
	DatasetSize   int
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [project-base-dir]\n", os.Args[0])
		os.Exit(1)
	}
	projectBase := os.Args[1]

	config := BenchmarkConfig{
		ProjectBase:   projectBase,
		Timeout:       5 * time.Minute,
		Workers:       14,
		NoHistoryRuns: 3,
		HistoryRuns:   4,
		TestProjects:  []string{"small", "medium", "large"},
		Algorithms:    []string{"random_forest", "gradient_boosting", "svm", "logistic_regression"},
		DatasetSize:   2000,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear any previous history so cold runs are actually cold
	fmt.Printf("Clearing history...\n")
	clearCmd := exec.Command("optiscan", "history", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear history: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("History cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the optiscan binary and test projects exist
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if optiscan is available
	if _, err := exec.LookPath("optiscan"); err != nil {
		return fmt.Errorf("optiscan binary not found in PATH")
	}

	// Check if source trees exist
	for _, project := range config.TestProjects {
		projectPath := filepath.Join(config.ProjectBase, project)
		if _, err := os.Stat(projectPath); os.IsNotExist(err) {
			return fmt.Errorf("project %s not found at %s", project, projectPath)
		}
	}

	return nil
}

// runBenchmarks executes all benchmark tests across algorithms and projects
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d projects, %v timeout, %d workers, no-history: %d runs, history: %d runs\n",
		len(config.TestProjects), config.Timeout, config.Workers, config.NoHistoryRuns, config.HistoryRuns)

	// Training benchmarks, one per algorithm
	for _, algorithm := range config.Algorithms {
		fmt.Printf("Benchmarking training with %s\n", algorithm)
		extraArgs := fmt.Sprintf("--algorithm %s --dataset-size %d", algorithm, config.DatasetSize)
		desc := fmt.Sprintf("training (%s, %d samples)", algorithm, config.DatasetSize)
		result := runBenchmarkSuite(config, algorithm, config.ProjectBase, "train", desc, extraArgs)
		results = append(results, result)
	}

	// Analysis benchmarks, one per source tree
	for _, project := range config.TestProjects {
		fmt.Printf("Benchmarking %s\n", project)

		projectPath := filepath.Join(config.ProjectBase, project)
		extraArgs := fmt.Sprintf("--workers %d", config.Workers)
		result := runBenchmarkSuite(config, project, projectPath, "analyze", "analysis", extraArgs)
		results = append(results, result)
	}

	return results
}

// runBenchmarkSuite runs both no-history and history benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, target, workDir, command, description, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, target)

	// Helper to run a benchmark phase
	runPhase := func(historyBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, workDir, command, extraArgs, historyBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-history runs
	_, noHistoryAvg := runPhase("none", config.NoHistoryRuns, "No-history")

	// Phase 2: History runs
	coldTime, warmAvg := runPhase("sqlite", config.HistoryRuns, "History")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-history average: %s, Cold time: %s, Warm average: %s\n", noHistoryAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Target:        target,
		Command:       command,
		NoHistoryTime: noHistoryAvg,
		ColdTime:      coldTimeStr,
		WarmTime:      warmAvg,
	}
}

// runBenchmark executes an optiscan command multiple times with the specified
// history backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, workDir, command, extraArgs, historyBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := []string{command, "--history-backend", historyBackend}
	if extraArgs != "" {
		args = append(args, parseArgs(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("optiscan", args...)
		cmd.Dir = workDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

func parseArgs(argsStr string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, r := range argsStr {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ' ':
			if !inQuotes && current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			} else if inQuotes {
				current.WriteRune(r)
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	if command == "train" {
		return strings.Contains(outputStr, "Algorithm")
	}
	return strings.Contains(outputStr, "Showing") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/optiscan_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"target", "cmd", "no_history_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Target, result.Command, result.NoHistoryTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "train", "Training:")
	printCommandSummary(results, "analyze", "Analysis:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: No-history: %s, Cold: %s, Warm: %s\n", result.Target, result.NoHistoryTime, result.ColdTime, result.WarmTime)
		}
	}
}
