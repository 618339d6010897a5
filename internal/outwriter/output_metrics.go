package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

// WriteMetrics outputs raw extracted metrics for metrics-only runs,
// dispatching based on the output format configured.
func WriteMetrics(cfg *contract.Config, metrics []schema.FileMetrics) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, metrics)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVMetrics(w, metrics, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsTable(metrics, cfg, fmtFloat, w)
		}, "Wrote table")
	}
}

// writeMetricsTable generates and writes the human-readable metrics table.
func writeMetricsTable(metrics []schema.FileMetrics, cfg *contract.Config, fmtFloat func(float64) string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Path", "LOC", "Complexity", "Deps", "Funcs", "Classes", "Comments", "Cx/LOC", "Cmt Ratio"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, m := range metrics {
		fv := m.Features
		data = append(data, []string{
			contract.TruncatePath(m.Path, getMaxTablePathWidth(cfg)),
			fmtFloat(fv.LinesOfCode),
			fmtFloat(fv.CyclomaticComplexity),
			fmtFloat(fv.DependencyCount),
			fmtFloat(fv.FunctionCount),
			fmtFloat(fv.ClassCount),
			fmtFloat(fv.CommentLines),
			fmtFloat(fv.ComplexityPerLOC),
			fmtFloat(fv.CommentRatio),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Extracted metrics for %d files\n", len(metrics)); err != nil {
		return err
	}
	return nil
}

// writeCSVMetrics writes the extracted metrics in CSV format, one row per file
// with the full feature block flattened into columns.
func writeCSVMetrics(w io.Writer, metrics []schema.FileMetrics, fmtFloat func(float64) string) error {
	header := append([]string{"file"}, schema.FeatureNames...)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, m := range metrics {
			rec := []string{m.Path}
			for _, v := range m.Features.Values() {
				rec = append(rec, fmtFloat(v))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
