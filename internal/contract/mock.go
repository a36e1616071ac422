package contract

import (
	"context"
	"fmt"

	"github.com/repotally/repotally/schema"
)

// MockFileSource is an in-memory FileSource for tests.
type MockFileSource struct {
	Stats    []RawFileStat
	Contents map[string][]byte
	ScanErr  error
}

var _ FileSource = &MockFileSource{} // Compile-time check

// Scan implements the FileSource interface.
func (m *MockFileSource) Scan(_ context.Context, excludes []string) ([]RawFileStat, error) {
	if m.ScanErr != nil {
		return nil, m.ScanErr
	}
	out := make([]RawFileStat, 0, len(m.Stats))
	for _, s := range m.Stats {
		if ShouldIgnore(s.Path, excludes) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// ReadWindow implements the FileSource interface.
func (m *MockFileSource) ReadWindow(path string, maxBytes int) ([]byte, error) {
	content, ok := m.Contents[path]
	if !ok {
		return nil, fmt.Errorf("no content for %q", path)
	}
	if len(content) > maxBytes {
		content = content[:maxBytes]
	}
	return content, nil
}

// SliceCommitIter replays a fixed commit slice as a CommitIter.
type SliceCommitIter struct {
	Commits   []schema.CommitRecord
	Err       error
	WasCapped bool
	pos       int
}

var _ CommitIter = &SliceCommitIter{} // Compile-time check

// Next implements the CommitIter interface.
func (it *SliceCommitIter) Next() (schema.CommitRecord, bool, error) {
	if it.Err != nil {
		return schema.CommitRecord{}, false, it.Err
	}
	if it.pos >= len(it.Commits) {
		return schema.CommitRecord{}, false, nil
	}
	rec := it.Commits[it.pos]
	it.pos++
	return rec, true, nil
}

// Truncated implements the CommitIter interface.
func (it *SliceCommitIter) Truncated() bool { return it.WasCapped }

// Close implements the CommitIter interface.
func (it *SliceCommitIter) Close() error { return nil }

// MockHistoryClient serves synthetic commit streams for tests.
type MockHistoryClient struct {
	Available bool
	Hash      string
	Commits   []schema.CommitRecord
	StreamErr error
}

var _ HistoryClient = &MockHistoryClient{} // Compile-time check

// Probe implements the HistoryClient interface.
func (m *MockHistoryClient) Probe(_ context.Context, _ string) bool { return m.Available }

// RepoHash implements the HistoryClient interface.
func (m *MockHistoryClient) RepoHash(_ context.Context, _ string) (string, error) {
	if m.Hash == "" {
		return "", fmt.Errorf("no hash configured")
	}
	return m.Hash, nil
}

// Stream implements the HistoryClient interface.
func (m *MockHistoryClient) Stream(_ context.Context, _ string, limits StreamLimits) (CommitIter, error) {
	if m.StreamErr != nil {
		return nil, m.StreamErr
	}
	commits := m.Commits
	capped := false
	if limits.MaxCommits > 0 && len(commits) > limits.MaxCommits {
		commits = commits[:limits.MaxCommits]
		capped = true
	}
	if limits.MaxCommitFiles > 0 {
		trimmed := make([]schema.CommitRecord, len(commits))
		for i, c := range commits {
			if len(c.Paths) > limits.MaxCommitFiles {
				c.Paths = c.Paths[:limits.MaxCommitFiles]
			}
			trimmed[i] = c
		}
		commits = trimmed
	}
	return &SliceCommitIter{Commits: commits, WasCapped: capped}, nil
}
