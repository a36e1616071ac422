// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/repotally/repotally/schema"
)

// RawFileStat is the per-file tuple supplied by the scanning collaborator.
// Counts are signed so malformed negative values can be detected and
// rejected instead of silently coerced.
type RawFileStat struct {
	Path     string
	Language string
	Code     int64
	Comment  int64
	Blank    int64
	Bytes    int64

	// ParentLanguage is set when this stat describes an embedded-language
	// block (e.g. script inside markup). The aggregator folds or separates
	// these according to the configured children mode.
	ParentLanguage string
}

// FileSource supplies the candidate file list and capped content windows.
// Scan results are not guaranteed to be in any particular order; the
// aggregation phase must not depend on it.
type FileSource interface {
	// Scan walks the tree rooted at the configured path and returns raw
	// per-file measurements, honoring the exclude patterns.
	Scan(ctx context.Context, excludes []string) ([]RawFileStat, error)

	// ReadWindow returns up to maxBytes of the file's content. The window
	// always starts at offset zero so digests stay reproducible.
	ReadWindow(path string, maxBytes int) ([]byte, error)
}

// StreamLimits are hard caps enforced during stream iteration,
// not after full materialization.
type StreamLimits struct {
	MaxCommits     int
	MaxCommitFiles int
}

// CommitIter is a lazy, finite, non-restartable sequence of commits.
type CommitIter interface {
	// Next returns the next commit. ok is false once the stream is
	// exhausted or a cap was hit; err reports parse or subprocess failure.
	Next() (rec schema.CommitRecord, ok bool, err error)

	// Truncated reports whether the MaxCommits cap cut the stream short.
	Truncated() bool

	// Close releases the underlying subprocess. Safe to call twice.
	Close() error
}

// HistoryClient is the injected collaborator for commit-history extraction.
// This isolates the one place true I/O failure can occur and keeps the
// risk-engine logic unit-testable against synthetic streams.
type HistoryClient interface {
	// Probe reports whether history extraction is available for the path
	// (VCS tool installed and the path inside a repository).
	Probe(ctx context.Context, repoPath string) bool

	// RepoHash returns a stable identifier for the current repository state.
	RepoHash(ctx context.Context, repoPath string) (string, error)

	// Stream starts the commit extraction subprocess and returns a
	// forward-only iterator over its output.
	Stream(ctx context.Context, repoPath string, limits StreamLimits) (CommitIter, error)
}

// StoreStatus describes the receipt store for status commands.
type StoreStatus struct {
	Backend  schema.DatabaseBackend
	Location string
	Receipts int64
}

// ReceiptStore persists composed receipts keyed by repository state,
// so CI runs can diff receipts across commits.
type ReceiptStore interface {
	Put(repoHash string, preset schema.PresetName, receipt []byte, createdAt int64) error
	Get(repoHash string, preset schema.PresetName) ([]byte, error)
	Status() (StoreStatus, error)
	Clear() error
	Close() error
}
