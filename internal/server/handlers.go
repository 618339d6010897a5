package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/optiscan/optiscan/core"
	"github.com/optiscan/optiscan/core/model"
	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

const serviceName = "optiscan"

// HandlePredict scores a single feature vector against the active model.
func HandlePredict(eng *core.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PredictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := eng.Predict(req.Vector())
		if err != nil {
			respondPredictError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HandleBatchPredict scores a list of feature vectors in submission order.
func HandleBatchPredict(eng *core.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BatchPredictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		results := make([]schema.PredictionResult, 0, len(req.MetricsList))
		for _, item := range req.MetricsList {
			result, err := eng.Predict(item.Vector())
			if err != nil {
				respondPredictError(c, err)
				return
			}
			results = append(results, result)
		}
		c.JSON(http.StatusOK, BatchPredictResponse{Results: results, Count: len(results)})
	}
}

// HandleRetrain runs a synchronous training pipeline and swaps the active
// model on success.
func HandleRetrain(cfg *contract.Config, eng *core.Engine, mgr contract.StoreManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RetrainRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		runCfg := cfg.Clone()
		if req.Algorithm != "" {
			runCfg.Algorithm = schema.Algorithm(req.Algorithm)
			if _, ok := schema.ValidAlgorithms[runCfg.Algorithm]; !ok {
				unsupported := &model.UnsupportedAlgorithmError{Algorithm: req.Algorithm}
				c.JSON(http.StatusBadRequest, gin.H{"error": unsupported.Error()})
				return
			}
		}
		if req.DatasetSize != nil {
			size := *req.DatasetSize
			if size < 2 || size > contract.MaxDatasetSize {
				c.JSON(http.StatusBadRequest, gin.H{"error": "dataset_size must be between 2 and 100000"})
				return
			}
			runCfg.DatasetSize = size
		}

		var store contract.HistoryStore
		if mgr != nil {
			store = mgr.GetHistoryStore()
		}

		slog.Info("retraining model", "algorithm", runCfg.Algorithm, "dataset_size", runCfg.DatasetSize)
		report, err := eng.Retrain(runCfg, store)
		if err != nil {
			var unsupported *model.UnsupportedAlgorithmError
			if errors.As(err, &unsupported) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			slog.Error("retrain failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "training failed"})
			return
		}

		c.JSON(http.StatusOK, RetrainResponse{
			Message:     "Model retrained successfully",
			Algorithm:   report.Algorithm,
			Metrics:     report.Metrics,
			DatasetInfo: report.Dataset,
		})
	}
}

// HandleModelInfo summarizes the active model.
func HandleModelInfo(eng *core.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, eng.Info())
	}
}

// HandleHealth reports liveness and model readiness.
func HandleHealth(eng *core.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:      "healthy",
			Service:     serviceName,
			ModelLoaded: eng.Ready(),
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}
		if info := eng.Info(); info.ModelLoaded {
			resp.ModelAlgorithm = info.Algorithm
		}
		c.JSON(http.StatusOK, resp)
	}
}

// respondPredictError maps inference errors to status codes. A missing model
// is a service-availability condition, not a client error.
func respondPredictError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrModelNotReady) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no model loaded, train a model first"})
		return
	}
	slog.Error("prediction failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
}
