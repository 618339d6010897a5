package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

// WriteTrainingReport outputs the results of a training run, dispatching
// based on the output format configured.
func WriteTrainingReport(cfg *contract.Config, report *schema.TrainingReport) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVReport(w, report, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(report, fmtFloat, w)
		}, "Wrote report")
	}
}

// writeReportText writes the human-readable training summary.
func writeReportText(report *schema.TrainingReport, fmtFloat func(float64) string, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "Algorithm: %s\n", report.Algorithm); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Trained at: %s\n", report.Timestamp.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	ds := report.Dataset
	if _, err := fmt.Fprintf(writer, "Dataset: %d samples (%d train / %d test, %d optimized / %d unoptimized)\n",
		ds.TotalSamples, ds.TrainingSamples, ds.TestSamples, ds.OptimizedSamples, ds.UnoptimizedSamples); err != nil {
		return err
	}

	// Metrics table
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Metric", "Value"})

	m := report.Metrics
	data := [][]string{
		{"Accuracy", fmtFloat(m.Accuracy)},
		{"Precision", fmtFloat(m.Precision)},
		{"Recall", fmtFloat(m.Recall)},
		{"F1 Score", fmtFloat(m.F1Score)},
	}
	if m.AUCROC != nil {
		data = append(data, []string{"AUC-ROC", fmtFloat(*m.AUCROC)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	return writeImportanceText(writer, report.FeatureImportance, fmtFloat)
}

// writeImportanceText prints feature importances sorted by weight, highest
// first. Algorithms without importances print nothing.
func writeImportanceText(writer io.Writer, importance map[string]float64, fmtFloat func(float64) string) error {
	if len(importance) == 0 {
		return nil
	}

	names := make([]string, 0, len(importance))
	for name := range importance {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if importance[names[i]] != importance[names[j]] {
			return importance[names[i]] > importance[names[j]]
		}
		return names[i] < names[j]
	})

	if _, err := fmt.Fprintln(writer, "Feature importance:"); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintf(writer, "  %-22s %s\n", name, fmtFloat(importance[name])); err != nil {
			return err
		}
	}
	return nil
}

// writeCSVReport writes the training report as metric/value rows.
func writeCSVReport(w io.Writer, report *schema.TrainingReport, fmtFloat func(float64) string) error {
	header := []string{"metric", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		m := report.Metrics
		ds := report.Dataset
		rows := [][]string{
			{"algorithm", string(report.Algorithm)},
			{"trained_at", report.Timestamp.Format(time.RFC3339)},
			{"total_samples", fmt.Sprintf("%d", ds.TotalSamples)},
			{"training_samples", fmt.Sprintf("%d", ds.TrainingSamples)},
			{"test_samples", fmt.Sprintf("%d", ds.TestSamples)},
			{"accuracy", fmtFloat(m.Accuracy)},
			{"precision", fmtFloat(m.Precision)},
			{"recall", fmtFloat(m.Recall)},
			{"f1_score", fmtFloat(m.F1Score)},
		}
		if m.AUCROC != nil {
			rows = append(rows, []string{"auc_roc", fmtFloat(*m.AUCROC)})
		}
		for _, row := range rows {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
