package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/optiscan/optiscan/core"
	"github.com/optiscan/optiscan/core/extract"
	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	engine  *core.Engine
	mgr     contract.StoreManager
}

func (h *toolHandler) handleExtractMetrics(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source := request.GetString("source", "")
	filePath := request.GetString("file_path", "")

	var (
		fv  schema.FeatureVector
		err error
	)
	switch {
	case source != "":
		fv = extract.Metrics(source)
	case filePath != "":
		fv, err = extract.FromFile(filePath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("metric extraction failed: %v", err)), nil
		}
	default:
		return mcp.NewToolResultError("either source or file_path is required"), nil
	}

	jsonData, _ := json.MarshalIndent(fv, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handlePredictFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := request.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fv, err := extract.FromFile(filePath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("metric extraction failed: %v", err)), nil
	}

	result, err := h.engine.Predict(fv)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("prediction failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleModelInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info := h.engine.Info()
	jsonData, _ := json.MarshalIndent(info, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRetrainModel(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if a := request.GetString("algorithm", ""); a != "" {
		cfg.Algorithm = schema.Algorithm(a)
	}
	if n := request.GetInt("dataset_size", 0); n > 0 {
		cfg.DatasetSize = n
	}

	if _, ok := schema.ValidAlgorithms[cfg.Algorithm]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid retrain parameters: unsupported algorithm %q", cfg.Algorithm)), nil
	}
	if cfg.DatasetSize < 2 || cfg.DatasetSize > contract.MaxDatasetSize {
		return mcp.NewToolResultError(fmt.Sprintf("invalid retrain parameters: dataset_size must be between 2 and %d", contract.MaxDatasetSize)), nil
	}

	var store contract.HistoryStore
	if h.mgr != nil {
		store = h.mgr.GetHistoryStore()
	}

	report, err := h.engine.Retrain(cfg, store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("retraining failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
