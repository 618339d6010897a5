package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

// WritePredictions outputs ranked prediction results, dispatching based on
// the output format configured. Results arrive least optimized first.
func WritePredictions(cfg *contract.Config, results []schema.FilePrediction) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONPredictions(w, results)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVPredictions(w, results, fmtFloat)
		}, "Wrote CSV")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePredictionsTable(results, cfg, fmtFloat, w)
		}, "Wrote table")
	}
}

// writePredictionsTable generates and writes the human-readable table.
func writePredictionsTable(results []schema.FilePrediction, cfg *contract.Config, fmtFloat func(float64) string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	table.Header([]string{"Rank", "Path", "Score", "Label", "Status", "Top Advice"})

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	var data [][]string
	for i, r := range results {
		label := contract.GetPlainLabel(r.Score)
		if cfg.UseColors {
			label = contract.GetColorLabel(r.Score)
		}
		row := []string{
			strconv.Itoa(i + 1), // Rank
			contract.TruncatePath(r.Path, getMaxTablePathWidth(cfg)), // File
			fmtFloat(r.Score), // Score
			label,
			r.Result.OptimizationStatus,
			topAdvice(r.Result.Recommendations),
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Compute summary stats
	unoptimized := 0
	for _, r := range results {
		if !r.Result.IsOptimized {
			unoptimized++
		}
	}
	if _, err := fmt.Fprintf(writer, "Showing %d files, least optimized first (%d flagged unoptimized)\n", len(results), unoptimized); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analysis ran with %d workers. History backend: %s\n", cfg.Workers, cfg.HistoryBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVPredictions writes the prediction results in CSV format.
func writeCSVPredictions(w io.Writer, results []schema.FilePrediction, fmtFloat func(float64) string) error {
	header := []string{
		"rank",
		"file",
		"score",
		"label",
		"status",
		"confidence",
		"loc",
		"complexity",
		"dependencies",
		"functions",
		"classes",
		"comment_lines",
		"recommendations",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range results {
			fv := r.Result.InputMetrics
			rec := []string{
				strconv.Itoa(i + 1),               // Rank
				r.Path,                            // File Path
				fmtFloat(r.Score),                 // Optimized-class probability
				contract.GetPlainLabel(r.Score),   // Label
				r.Result.OptimizationStatus,       // Status
				fmtFloat(r.Result.ConfidenceScore),
				fmtFloat(fv.LinesOfCode),
				fmtFloat(fv.CyclomaticComplexity),
				fmtFloat(fv.DependencyCount),
				fmtFloat(fv.FunctionCount),
				fmtFloat(fv.ClassCount),
				fmtFloat(fv.CommentLines),
				strings.Join(r.Result.Recommendations, "|"),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONPredictions writes the prediction results in JSON format.
func writeJSONPredictions(w io.Writer, results []schema.FilePrediction) error {
	// 1. Prepare the data structure for JSON with rank and label added
	type JSONFilePrediction struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.FilePrediction
	}

	output := make([]JSONFilePrediction, len(results))
	for i, r := range results {
		output[i] = JSONFilePrediction{
			Rank:           i + 1,
			Label:          contract.GetPlainLabel(r.Score),
			FilePrediction: r,
		}
	}

	// 2. Use the generic JSON writer
	return writeJSON(w, output)
}

// topAdvice returns the first recommendation, truncated for table display.
func topAdvice(recommendations []string) string {
	if len(recommendations) == 0 {
		return ""
	}
	const maxAdviceWidth = 40
	advice := recommendations[0]
	runes := []rune(advice)
	if len(runes) > maxAdviceWidth {
		return string(runes[:maxAdviceWidth-3]) + "..."
	}
	return advice
}
