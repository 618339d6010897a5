package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/optiscan/optiscan/core/synth"
	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/internal/outwriter"
	"github.com/optiscan/optiscan/internal/parquet"
	"github.com/optiscan/optiscan/schema"
)

// ExecuteAnalyze scans the target path, scores every source file against
// the active model, and writes the ranked results (least optimized first).
// With MetricsOnly set it skips inference and writes raw metrics instead.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, eng *Engine, mgr contract.StoreManager) error {
	logHeader(cfg, "🔍", fmt.Sprintf("Analyzing %s", displayTarget(cfg)))

	files, err := CollectFiles(cfg)
	if err != nil {
		return err
	}

	if cfg.MetricsOnly {
		metrics := extractFiles(ctx, cfg, files)
		return outwriter.WriteMetrics(cfg, metrics)
	}

	if _, err := eng.Bundle(); err != nil {
		return err
	}

	var store contract.HistoryStore
	if mgr != nil {
		store = mgr.GetHistoryStore()
	}

	results := analyzeFiles(ctx, cfg, eng, store, files)
	ranked := rankPredictions(results, cfg.ResultLimit)
	return outwriter.WritePredictions(cfg, ranked)
}

// ExecuteTrain runs a full training pipeline and writes the resulting
// report. The freshly trained model becomes the active one.
func ExecuteTrain(cfg *contract.Config, eng *Engine, mgr contract.StoreManager) error {
	logHeader(cfg, "🧠", fmt.Sprintf("Training %s on %d synthetic samples", cfg.Algorithm, cfg.DatasetSize))

	var store contract.HistoryStore
	if mgr != nil {
		store = mgr.GetHistoryStore()
	}

	report, err := eng.Retrain(cfg, store)
	if err != nil {
		return err
	}
	return outwriter.WriteTrainingReport(cfg, report)
}

// ExecuteDataset generates a synthetic dataset and writes it out. An
// output file ending in .parquet selects the columnar writer; otherwise the
// configured output mode applies.
func ExecuteDataset(cfg *contract.Config) error {
	logHeader(cfg, "🧪", fmt.Sprintf("Generating %d synthetic samples (seed %d)", cfg.DatasetSize, cfg.Seed))

	half := cfg.DatasetSize / 2
	data := synth.Generate(half, cfg.DatasetSize-half, cfg.TestFrac, cfg.Seed)

	if strings.HasSuffix(cfg.OutputFile, ".parquet") {
		if err := parquet.WriteDataset(cfg.OutputFile, data); err != nil {
			return err
		}
		fmt.Printf("Dataset written to %s (%d train, %d test)\n", cfg.OutputFile, len(data.Train), len(data.Test))
		return nil
	}
	return outwriter.WriteDataset(cfg, data)
}

// ExecuteModelInfo writes a summary of the active model.
func ExecuteModelInfo(cfg *contract.Config, eng *Engine) error {
	return outwriter.WriteModelInfo(cfg, eng.Info())
}

// logHeader prints a one-line banner for interactive runs, honoring the
// emoji preference the way all command output does.
func logHeader(cfg *contract.Config, emoji, msg string) {
	if cfg.Output != "" && cfg.Output != schema.TextOut {
		return // machine-readable outputs stay clean
	}
	if cfg.UseEmojis {
		fmt.Printf("%s %s\n", emoji, msg)
	} else {
		fmt.Println(msg)
	}
}

func displayTarget(cfg *contract.Config) string {
	if cfg.TargetPath == "" {
		return "."
	}
	return cfg.TargetPath
}
