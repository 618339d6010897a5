package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/optiscan/optiscan/core/extract"
	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

// Predictor scores one feature vector. The local engine and the remote
// server client both satisfy it.
type Predictor interface {
	Predict(fv schema.FeatureVector) (schema.PredictionResult, error)
}

// Stats counts the session's activity for the shutdown summary.
type Stats struct {
	EventsSeen int
	Analyzed   int
	Skipped    int
	Errors     int
}

// Session wires a watcher to a predictor and reports each change.
type Session struct {
	cfg       *contract.Config
	predictor Predictor
	store     contract.HistoryStore
	out       io.Writer

	mu    sync.Mutex
	stats Stats
}

// NewSession creates a watch session writing event lines to out.
func NewSession(cfg *contract.Config, predictor Predictor, store contract.HistoryStore, out io.Writer) *Session {
	return &Session{
		cfg:       cfg,
		predictor: predictor,
		store:     store,
		out:       out,
	}
}

// Run watches the target path until the context is canceled, then prints the
// session summary.
func (s *Session) Run(ctx context.Context) error {
	watcher, err := NewWatcher(s.cfg.TargetPath, s.cfg.Debounce, s.cfg.Excludes, s.HandleChanges)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(s.out, "Watching %s (debounce %v). Press Ctrl+C to stop.\n", s.cfg.TargetPath, s.cfg.Debounce)
	<-ctx.Done()

	s.PrintSummary()
	return nil
}

// HandleChanges processes one debounced batch of changes.
func (s *Session) HandleChanges(changes []FileChange) {
	for _, change := range changes {
		s.handleChange(change)
	}
}

func (s *Session) handleChange(change FileChange) {
	s.mu.Lock()
	s.stats.EventsSeen++
	s.mu.Unlock()

	ok, reason := acceptChange(s.cfg, change)
	if !ok {
		s.recordSkip()
		if s.cfg.Output == schema.TextOut {
			fmt.Fprintf(s.out, "  skipped %s (%s)\n", change.Path, reason)
		}
		return
	}

	fv, err := extract.FromFile(change.Path)
	if err != nil {
		s.recordError()
		contract.LogWarn("Metric extraction failed for "+change.Path, err)
		return
	}

	result, err := s.predictor.Predict(fv)
	if err != nil {
		s.recordError()
		contract.LogWarn("Prediction failed for "+change.Path, err)
		return
	}

	s.mu.Lock()
	s.stats.Analyzed++
	s.mu.Unlock()

	if s.store != nil {
		score := result.ConfidenceScore
		label := schema.Unoptimized
		if result.IsOptimized {
			label = schema.Optimized
		}
		record := schema.PredictionRecord{
			PredictedAt:     time.Now(),
			Source:          change.Path,
			Features:        result.InputMetrics,
			Label:           label,
			ConfidenceScore: score,
		}
		if err := s.store.RecordPrediction(record); err != nil {
			contract.LogWarn("Prediction history tracking failed", err)
		}
	}

	s.printResult(change, result)
}

// printResult emits one line per analyzed change: a colorized console line in
// text mode, a JSON event line otherwise.
func (s *Session) printResult(change FileChange, result schema.PredictionResult) {
	if s.cfg.Output == schema.JSONOut {
		event := map[string]any{
			"path":   change.Path,
			"op":     change.Op.String(),
			"result": result,
		}
		if payload, err := json.Marshal(event); err == nil {
			fmt.Fprintln(s.out, string(payload))
		}
		return
	}

	score := positiveScore(result)
	label := contract.GetPlainLabel(score)
	if s.cfg.UseColors {
		label = contract.GetColorLabel(score)
	}
	fmt.Fprintf(s.out, "[%s] %s %s (%s)\n", change.Op, change.Path, label, result.Confidence)
}

// positiveScore converts the predicted-class confidence back into the
// optimized-class probability used by the label scale.
func positiveScore(result schema.PredictionResult) float64 {
	if result.IsOptimized {
		return result.ConfidenceScore
	}
	return 1 - result.ConfidenceScore
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// PrintSummary prints the session counters.
func (s *Session) PrintSummary() {
	stats := s.Stats()
	fmt.Fprintf(s.out, "\nWatch session summary: %d events, %d analyzed, %d skipped, %d errors\n",
		stats.EventsSeen, stats.Analyzed, stats.Skipped, stats.Errors)
}

func (s *Session) recordSkip() {
	s.mu.Lock()
	s.stats.Skipped++
	s.mu.Unlock()
}

func (s *Session) recordError() {
	s.mu.Lock()
	s.stats.Errors++
	s.mu.Unlock()
}
