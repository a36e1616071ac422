package core

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/repotally/repotally/core/agg"
	"github.com/repotally/repotally/core/derive"
	"github.com/repotally/repotally/core/history"
	"github.com/repotally/repotally/core/similar"
	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// ComposeReceipt scans the tree, aggregates it and runs the preset's
// section engines over the shared aggregate output. The engines read
// the same immutable substrate and write disjoint sections, so they run
// concurrently when more than one worker is configured; the receipt is
// identical either way.
func ComposeReceipt(ctx context.Context, cfg *contract.Config, src contract.FileSource, hist contract.HistoryClient) (*schema.AnalysisReceipt, error) {
	stats, err := src.Scan(ctx, cfg.Excludes)
	if err != nil {
		return nil, err
	}

	output, err := agg.Aggregate(stats, cfg)
	if err != nil {
		return nil, err
	}

	sections, err := schema.LookupPreset(cfg.Preset)
	if err != nil {
		return nil, err
	}

	receipt := &schema.AnalysisReceipt{
		SchemaVersion: schema.SchemaVersion,
		Preset:        cfg.Preset,
		Languages:     output.Languages,
		Modules:       output.Modules,
		Export:        output.Export,
	}

	runSections(ctx, cfg, src, hist, output.Records, sections, receipt)
	return receipt, nil
}

// runSections fills the optional receipt sections, one engine per
// worker goroutine when parallelism is enabled.
func runSections(ctx context.Context, cfg *contract.Config, src contract.FileSource, hist contract.HistoryClient, records []schema.FileRecord, sections schema.SectionSet, receipt *schema.AnalysisReceipt) {
	tasks := make([]func(), 0, 4)
	if sections.Derived {
		tasks = append(tasks, func() {
			receipt.Derived = derive.Compute(records)
		})
	}
	if sections.Complexity {
		tasks = append(tasks, func() {
			receipt.Complexity = derive.ComputeComplexity(records, src, cfg.WindowBytes)
		})
	}
	if sections.History {
		tasks = append(tasks, func() {
			receipt.GitRisk = history.Compute(ctx, hist, cfg.RepoPath, records, cfg)
		})
	}
	if sections.Similarity {
		tasks = append(tasks, func() {
			receipt.Similarity = similar.Compute(records, src, cfg)
		})
	}

	if cfg.Workers <= 1 || len(tasks) <= 1 {
		for _, task := range tasks {
			task()
		}
		return
	}

	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(run func()) {
			defer wg.Done()
			run()
		}(task)
	}
	wg.Wait()
}

// MarshalReceipt renders the canonical receipt document. The same
// receipt always yields the same bytes, so stored receipts can be
// compared byte for byte across runs.
func MarshalReceipt(receipt *schema.AnalysisReceipt) ([]byte, error) {
	raw, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(raw, '\n'), nil
}
