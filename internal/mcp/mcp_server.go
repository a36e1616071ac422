// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/repotally/repotally/internal/contract"
)

// NewMCPServer initializes and configures the repotally MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Repotally Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg}

	// --- 1. Tool: analyze_repo ---
	s.AddTool(mcp.NewTool("analyze_repo",
		mcp.WithDescription("Compose a deterministic analysis receipt for a repository."),
		mcp.WithString("repo_path", mcp.Description("Path to the repository (defaults to the configured path if not specified).")),
		mcp.WithString("preset", mcp.Description("Receipt preset (minimal, standard, ci, context, full). Defaults to 'standard'."), mcp.Enum("minimal", "standard", "ci", "context", "full")),
		mcp.WithNumber("max_commits", mcp.Description("Cap on commits streamed for the history section.")),
	), h.handleAnalyzeRepo)

	// --- 2. Tool: evaluate_policy ---
	s.AddTool(mcp.NewTool("evaluate_policy",
		mcp.WithDescription("Compose a receipt and evaluate a policy file against it."),
		mcp.WithString("policy_path", mcp.Description("Path to the YAML or JSON policy file."), mcp.Required()),
		mcp.WithString("repo_path", mcp.Description("Path to the repository.")),
		mcp.WithString("preset", mcp.Description("Receipt preset to compose before gating. Defaults to 'ci'."), mcp.Enum("minimal", "standard", "ci", "context", "full")),
	), h.handleEvaluatePolicy)

	// --- 3. Tool: list_presets ---
	s.AddTool(mcp.NewTool("list_presets",
		mcp.WithDescription("List the known presets and the receipt sections each enables."),
	), h.handleListPresets)

	return s
}

// StartMCPServer starts the repotally MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
