// Package core composes analysis receipts and evaluates policies.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/repotally/repotally/core/gate"
	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/internal/gitclient"
	"github.com/repotally/repotally/internal/outwriter"
	"github.com/repotally/repotally/internal/parquet"
	"github.com/repotally/repotally/internal/scan"
	"github.com/repotally/repotally/internal/store"
	"github.com/repotally/repotally/schema"
)

// ErrGateFailed marks a policy evaluation that produced a failing verdict.
// Callers translate it into a non-zero exit code.
var ErrGateFailed = errors.New("policy gate failed")

// ExecutorFunc defines the function signature for executing commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// ExecuteAnalyze composes a receipt for the configured repository and
// writes it to the configured output. It serves as the main entry point
// for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	src := scan.NewFilesystemSource(cfg.RepoPath)
	hist := gitclient.NewLocalHistoryClient(cfg.GitTimeout)

	receipt, err := ComposeReceipt(ctx, cfg, src, hist)
	if err != nil {
		return err
	}

	if cfg.StoreReceipt {
		if err := persistReceipt(ctx, cfg, hist, receipt); err != nil {
			return err
		}
	}

	duration := time.Since(start)
	return outwriter.WriteReceipt(receipt, cfg, duration)
}

// ExecuteGate composes a receipt, evaluates the configured policy against
// it and prints the per-rule verdicts. A failing verdict returns
// ErrGateFailed after the results are written.
func ExecuteGate(ctx context.Context, cfg *contract.Config) error {
	if cfg.PolicyFile == "" {
		return errors.New("--policy is required")
	}
	policy, err := gate.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return err
	}

	src := scan.NewFilesystemSource(cfg.RepoPath)
	hist := gitclient.NewLocalHistoryClient(cfg.GitTimeout)
	receipt, err := ComposeReceipt(ctx, cfg, src, hist)
	if err != nil {
		return err
	}

	result, err := gate.Evaluate(receipt, policy)
	if err != nil {
		return err
	}
	if err := outwriter.WriteGateResult(result, cfg); err != nil {
		return err
	}
	if !result.Passed {
		return ErrGateFailed
	}
	return nil
}

// ExecuteExport composes a receipt and writes its flat per-file rows to a
// Parquet file at the configured output path.
func ExecuteExport(ctx context.Context, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required")
	}

	src := scan.NewFilesystemSource(cfg.RepoPath)
	hist := gitclient.NewLocalHistoryClient(cfg.GitTimeout)
	receipt, err := ComposeReceipt(ctx, cfg, src, hist)
	if err != nil {
		return err
	}

	// Best effort; rows carry an empty hash outside a repository.
	repoHash := ""
	if hist.Probe(ctx, cfg.RepoPath) {
		if hash, err := hist.RepoHash(ctx, cfg.RepoPath); err == nil {
			repoHash = hash
		}
	}

	rows := parquet.BuildFileRows(receipt, repoHash)
	if err := parquet.WriteFileRows(rows, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Printf("Exported %d rows to %s\n", len(rows), cfg.OutputFile)
	return nil
}

// ExecuteReceiptsStatus prints the receipt store summary.
func ExecuteReceiptsStatus(_ context.Context, cfg *contract.Config) error {
	st, err := store.New(cfg.StoreBackend, cfg.StoreConnect)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	status, err := st.Status()
	if err != nil {
		return err
	}
	return outwriter.WriteStoreStatus(status, cfg)
}

// ExecuteReceiptsClear removes all stored receipts.
func ExecuteReceiptsClear(_ context.Context, cfg *contract.Config) error {
	st, err := store.New(cfg.StoreBackend, cfg.StoreConnect)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return st.Clear()
}

// ExecuteReceiptsMigrate applies store migrations up to the target version.
func ExecuteReceiptsMigrate(_ context.Context, cfg *contract.Config, targetVersion int) error {
	return store.Migrate(cfg.StoreBackend, cfg.StoreConnect, targetVersion)
}

// ExecutePresets lists the known presets and their sections.
func ExecutePresets(_ context.Context, cfg *contract.Config) error {
	return outwriter.WritePresets(cfg)
}

// persistReceipt stores the marshaled receipt keyed by repository state.
// Storing requires a resolvable repo hash; outside a repository the
// receipt has no stable key to store under.
func persistReceipt(ctx context.Context, cfg *contract.Config, hist contract.HistoryClient, receipt *schema.AnalysisReceipt) error {
	hash, err := hist.RepoHash(ctx, cfg.RepoPath)
	if err != nil {
		return fmt.Errorf("cannot store receipt without a repo hash: %w", err)
	}

	data, err := MarshalReceipt(receipt)
	if err != nil {
		return err
	}

	st, err := store.New(cfg.StoreBackend, cfg.StoreConnect)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	return st.Put(hash, receipt.Preset, data, time.Now().Unix())
}
