// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/optiscan/optiscan/core"
	"github.com/optiscan/optiscan/internal/contract"
)

// NewMCPServer initializes and configures the Optiscan MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, eng *core.Engine, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Optiscan Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		engine:  eng,
		mgr:     mgr,
	}

	// --- 1. Tool: extract_metrics ---
	s.AddTool(mcp.NewTool("extract_metrics",
		mcp.WithDescription("Extract static code metrics (LOC, complexity, dependencies, functions, classes, comments) from source code or a file."),
		mcp.WithString("source", mcp.Description("Raw source code to analyze. Either source or file_path is required.")),
		mcp.WithString("file_path", mcp.Description("Path to a source file to analyze. Either source or file_path is required.")),
	), h.handleExtractMetrics)

	// --- 2. Tool: predict_file ---
	s.AddTool(mcp.NewTool("predict_file",
		mcp.WithDescription("Predict whether a source file is optimized, with confidence and improvement recommendations."),
		mcp.WithString("file_path", mcp.Description("Path to the source file to score."), mcp.Required()),
	), h.handlePredictFile)

	// --- 3. Tool: model_info ---
	s.AddTool(mcp.NewTool("model_info",
		mcp.WithDescription("Summarize the active classifier: algorithm, training metrics, and feature importance."),
	), h.handleModelInfo)

	// --- 4. Tool: retrain_model ---
	s.AddTool(mcp.NewTool("retrain_model",
		mcp.WithDescription("Retrain the classifier on a fresh synthetic dataset and swap it in."),
		mcp.WithString("algorithm", mcp.Description("Classifier algorithm. Defaults to the configured one."), mcp.Enum("random_forest", "gradient_boosting", "svm", "logistic_regression")),
		mcp.WithNumber("dataset_size", mcp.Description("Total synthetic samples to generate (split evenly between classes).")),
	), h.handleRetrainModel)

	return s
}

// StartMCPServer starts the Optiscan MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, eng *core.Engine, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, eng, mgr)
	return server.ServeStdio(s)
}
