// Package server exposes the prediction engine over HTTP.
package server

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/optiscan/optiscan/core"
	"github.com/optiscan/optiscan/internal/contract"
)

// NewRouter builds the gin engine with all routes registered. Exposed
// separately from Run so tests can drive it with httptest.
func NewRouter(cfg *contract.Config, eng *core.Engine, mgr contract.StoreManager) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())
	SetupRoutes(router, cfg, eng, mgr)
	return router
}

// SetupRoutes registers the ML API route group.
func SetupRoutes(router *gin.Engine, cfg *contract.Config, eng *core.Engine, mgr contract.StoreManager) {
	api := router.Group("/api/ml")
	{
		api.POST("/predict", HandlePredict(eng))
		api.POST("/batch-predict", HandleBatchPredict(eng))
		api.POST("/retrain", HandleRetrain(cfg, eng, mgr))
		api.GET("/model-info", HandleModelInfo(eng))
		api.GET("/health", HandleHealth(eng))
	}
}

// Run starts the HTTP server on the configured host and port, blocking until
// the listener fails.
func Run(cfg *contract.Config, eng *core.Engine, mgr contract.StoreManager) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	router := NewRouter(cfg, eng, mgr)

	addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
	slog.Info("starting server", "addr", addr, "model_loaded", eng.Ready())
	return router.Run(addr)
}

// requestLogger emits one structured log line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if status >= 500 {
			slog.Error("request", attrs...)
		} else {
			slog.Info("request", attrs...)
		}
	}
}
