package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

// WriteModelInfo outputs a summary of the active model, dispatching based on
// the output format configured.
func WriteModelInfo(cfg *contract.Config, info schema.ModelInfo) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, info)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVModelInfo(w, info, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeModelInfoText(info, fmtFloat, w)
		}, "Wrote info")
	}
}

// writeModelInfoText prints the human-readable model summary.
func writeModelInfoText(info schema.ModelInfo, fmtFloat func(float64) string, writer io.Writer) error {
	if !info.ModelLoaded {
		_, err := fmt.Fprintln(writer, "No model loaded. Run the train command first.")
		return err
	}

	if _, err := fmt.Fprintf(writer, "Algorithm: %s\n", info.Algorithm); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Trained at: %s\n", info.TrainingTimestamp); err != nil {
		return err
	}
	if info.Dataset != nil {
		ds := info.Dataset
		if _, err := fmt.Fprintf(writer, "Dataset: %d samples (%d train / %d test)\n",
			ds.TotalSamples, ds.TrainingSamples, ds.TestSamples); err != nil {
			return err
		}
	}
	if info.Metrics != nil {
		m := info.Metrics
		if _, err := fmt.Fprintf(writer, "Accuracy: %s  Precision: %s  Recall: %s  F1: %s\n",
			fmtFloat(m.Accuracy), fmtFloat(m.Precision), fmtFloat(m.Recall), fmtFloat(m.F1Score)); err != nil {
			return err
		}
		if m.AUCROC != nil {
			if _, err := fmt.Fprintf(writer, "AUC-ROC: %s\n", fmtFloat(*m.AUCROC)); err != nil {
				return err
			}
		}
	}
	return writeImportanceText(writer, info.FeatureImportance, fmtFloat)
}

// writeCSVModelInfo writes the model summary as key/value rows.
func writeCSVModelInfo(w io.Writer, info schema.ModelInfo, fmtFloat func(float64) string) error {
	header := []string{"key", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		rows := [][]string{
			{"model_loaded", fmt.Sprintf("%t", info.ModelLoaded)},
		}
		if info.ModelLoaded {
			rows = append(rows,
				[]string{"algorithm", string(info.Algorithm)},
				[]string{"trained_at", info.TrainingTimestamp},
			)
			if info.Metrics != nil {
				m := info.Metrics
				rows = append(rows,
					[]string{"accuracy", fmtFloat(m.Accuracy)},
					[]string{"precision", fmtFloat(m.Precision)},
					[]string{"recall", fmtFloat(m.Recall)},
					[]string{"f1_score", fmtFloat(m.F1Score)},
				)
				if m.AUCROC != nil {
					rows = append(rows, []string{"auc_roc", fmtFloat(*m.AUCROC)})
				}
			}
		}
		for _, row := range rows {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
