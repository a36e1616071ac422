package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/repotally/repotally/core"
	"github.com/repotally/repotally/core/gate"
	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/internal/gitclient"
	"github.com/repotally/repotally/internal/scan"
	"github.com/repotally/repotally/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// compose builds a receipt for the given config using the local
// filesystem and git client.
func compose(ctx context.Context, cfg *contract.Config) (*schema.AnalysisReceipt, error) {
	src := scan.NewFilesystemSource(cfg.RepoPath)
	hist := gitclient.NewLocalHistoryClient(cfg.GitTimeout)
	return core.ComposeReceipt(ctx, cfg, src, hist)
}

func (h *toolHandler) handleAnalyzeRepo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	if p := request.GetString("preset", ""); p != "" {
		if _, err := schema.LookupPreset(schema.PresetName(p)); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid preset: %v", err)), nil
		}
		cfg.Preset = schema.PresetName(p)
	}
	if m := request.GetInt("max_commits", 0); m > 0 {
		cfg.MaxCommits = m
	}

	receipt, err := compose(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	data, err := core.MarshalReceipt(receipt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *toolHandler) handleEvaluatePolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyPath := request.GetString("policy_path", "")
	if policyPath == "" {
		return mcp.NewToolResultError("policy_path is required"), nil
	}

	policy, err := gate.LoadPolicy(policyPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid policy: %v", err)), nil
	}

	cfg := h.baseCfg.CloneWithPreset(schema.CIPreset)
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	if p := request.GetString("preset", ""); p != "" {
		if _, err := schema.LookupPreset(schema.PresetName(p)); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid preset: %v", err)), nil
		}
		cfg.Preset = schema.PresetName(p)
	}

	receipt, err := compose(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	result, err := gate.Evaluate(receipt, policy)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListPresets(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type presetEntry struct {
		Name       schema.PresetName `json:"name"`
		Derived    bool              `json:"derived"`
		Complexity bool              `json:"complexity"`
		History    bool              `json:"history"`
		Similarity bool              `json:"similarity"`
	}

	entries := make([]presetEntry, 0, len(schema.OrderedPresets))
	for _, name := range schema.OrderedPresets {
		set := schema.Presets[name]
		entries = append(entries, presetEntry{
			Name:       name,
			Derived:    set.Derived,
			Complexity: set.Complexity,
			History:    set.History,
			Similarity: set.Similarity,
		})
	}

	jsonData, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
