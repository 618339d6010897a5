package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/optiscan/optiscan/core/extract"
	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

// CollectFiles walks the target path and returns every analyzable source
// file that passes the exclude patterns and size bounds. A direct file
// target bypasses the extension filter.
func CollectFiles(cfg *contract.Config) ([]string, error) {
	root := cfg.TargetPath
	if root == "" {
		root = "."
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			rel := relPath(root, path)
			if rel != "." && contract.ShouldIgnore(rel+"/", cfg.Excludes) {
				return filepath.SkipDir
			}
			return nil
		}

		rel := relPath(root, path)
		if contract.ShouldIgnore(rel, cfg.Excludes) {
			return nil
		}
		if path != root && !contract.IsSourceFile(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() < cfg.MinFileSize || info.Size() > cfg.MaxFileSize {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	if len(files) == 0 {
		return nil, errors.New("no analyzable source files found")
	}
	return files, nil
}

// analyzeFiles runs extraction and inference over the files with a worker
// pool of cfg.Workers goroutines. Undecodable files are skipped with a
// warning; successful predictions are recorded to the history store when
// tracking is enabled.
func analyzeFiles(ctx context.Context, cfg *contract.Config, eng *Engine, store contract.HistoryStore, files []string) []schema.FilePrediction {
	fileCh := make(chan string, len(files))
	resultCh := make(chan schema.FilePrediction, len(files))
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Go(func() {
			for f := range fileCh {
				if ctx.Err() != nil {
					continue
				}
				result, err := analyzeFile(cfg, eng, store, f)
				if err != nil {
					contract.LogWarn(fmt.Sprintf("Skipping %s", contract.TruncatePath(f, 60)), err)
					continue
				}
				resultCh <- result
			}
		})
	}

	for _, f := range files {
		fileCh <- f
	}
	close(fileCh)

	wg.Wait()
	close(resultCh)

	results := make([]schema.FilePrediction, 0, len(files))
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}

// analyzeFile extracts metrics from one file and scores them against the
// active model.
func analyzeFile(cfg *contract.Config, eng *Engine, store contract.HistoryStore, path string) (schema.FilePrediction, error) {
	fv, err := extract.FromFile(path)
	if err != nil {
		return schema.FilePrediction{}, err
	}

	result, err := eng.Predict(fv)
	if err != nil {
		return schema.FilePrediction{}, err
	}

	// Score is always the positive-class probability so that ascending
	// order ranks least optimized first.
	score := result.ConfidenceScore
	if !result.IsOptimized {
		score = 1 - score
	}

	if store != nil {
		record := schema.PredictionRecord{
			PredictedAt:     time.Now(),
			Source:          path,
			Features:        fv,
			Label:           labelFor(result.IsOptimized),
			ConfidenceScore: result.ConfidenceScore,
		}
		if err := store.RecordPrediction(record); err != nil {
			contract.LogWarn(fmt.Sprintf("Prediction tracking failed for %s", path), err)
		}
	}

	return schema.FilePrediction{Path: path, Score: score, Result: result}, nil
}

// extractFiles runs extraction only, for metrics-only analysis.
func extractFiles(ctx context.Context, cfg *contract.Config, files []string) []schema.FileMetrics {
	fileCh := make(chan string, len(files))
	resultCh := make(chan schema.FileMetrics, len(files))
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Go(func() {
			for f := range fileCh {
				if ctx.Err() != nil {
					continue
				}
				fv, err := extract.FromFile(f)
				if err != nil {
					contract.LogWarn(fmt.Sprintf("Skipping %s", contract.TruncatePath(f, 60)), err)
					continue
				}
				resultCh <- schema.FileMetrics{Path: f, Features: fv}
			}
		})
	}

	for _, f := range files {
		fileCh <- f
	}
	close(fileCh)

	wg.Wait()
	close(resultCh)

	results := make([]schema.FileMetrics, 0, len(files))
	for r := range resultCh {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}

// rankPredictions orders results least optimized first and truncates to the
// configured limit. Ties break on path for stable output.
func rankPredictions(results []schema.FilePrediction, limit int) []schema.FilePrediction {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		return results[i].Path < results[j].Path
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func labelFor(isOptimized bool) schema.Label {
	if isOptimized {
		return schema.Optimized
	}
	return schema.Unoptimized
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
