// Package gitclient extracts commit history by executing the local git binary.
package gitclient

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// logFormat yields one "timestamp|author|subject" header per commit,
// followed by the changed paths and a blank separator line.
const logFormat = "--pretty=format:%ct|%an|%s"

const maxLineBytes = 1024 * 1024

// LocalHistoryClient implements the HistoryClient interface by executing
// the local 'git' binary with a bounded wait per invocation.
type LocalHistoryClient struct {
	timeout time.Duration
}

var _ contract.HistoryClient = &LocalHistoryClient{} // Compile-time check

// NewLocalHistoryClient creates a git-backed history client.
func NewLocalHistoryClient(timeout time.Duration) *LocalHistoryClient {
	if timeout <= 0 {
		timeout = contract.DefaultGitTimeout
	}
	return &LocalHistoryClient{timeout: timeout}
}

// Probe implements the HistoryClient interface. It reports false when
// git is missing or the path is outside a repository.
func (c *LocalHistoryClient) Probe(ctx context.Context, repoPath string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "rev-parse", "--is-inside-work-tree")
	return cmd.Run() == nil
}

// RepoHash implements the HistoryClient interface. The HEAD commit hash
// identifies the repository state for receipt storage.
func (c *LocalHistoryClient) RepoHash(ctx context.Context, repoPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "rev-parse", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("cannot resolve repository state: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Stream implements the HistoryClient interface. The subprocess output
// is consumed incrementally; one commit past the cap is requested so
// truncation is observable without reading further.
func (c *LocalHistoryClient) Stream(ctx context.Context, repoPath string, limits contract.StreamLimits) (contract.CommitIter, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	args := []string{"-C", repoPath, "log", logFormat, "--name-only"}
	if limits.MaxCommits > 0 {
		args = append(args, fmt.Sprintf("-n%d", limits.MaxCommits+1))
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("cannot open git log pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("cannot start git log: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	return &gitCommitIter{
		cmd:     cmd,
		cancel:  cancel,
		stdout:  stdout,
		scanner: scanner,
		limits:  limits,
	}, nil
}

// gitCommitIter parses the git log stream one commit at a time.
type gitCommitIter struct {
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	stdout  io.ReadCloser
	scanner *bufio.Scanner

	limits        contract.StreamLimits
	pendingHeader string
	emitted       int
	truncated     bool
	done          bool
	closed        bool
}

var _ contract.CommitIter = &gitCommitIter{} // Compile-time check

// Next implements the CommitIter interface.
func (it *gitCommitIter) Next() (schema.CommitRecord, bool, error) {
	if it.done {
		return schema.CommitRecord{}, false, nil
	}

	header := it.pendingHeader
	it.pendingHeader = ""
	for header == "" {
		if !it.scanner.Scan() {
			return schema.CommitRecord{}, false, it.finish()
		}
		line := strings.TrimRight(it.scanner.Text(), "\r")
		if _, ok := parseHeader(line); ok {
			header = line
		}
	}

	if it.limits.MaxCommits > 0 && it.emitted >= it.limits.MaxCommits {
		// The commit past the cap only signals truncation.
		it.truncated = true
		return schema.CommitRecord{}, false, it.finish()
	}

	rec, _ := parseHeader(header)
	for it.scanner.Scan() {
		line := strings.TrimRight(it.scanner.Text(), "\r")
		if line == "" {
			break
		}
		if _, ok := parseHeader(line); ok {
			it.pendingHeader = line
			break
		}
		if it.limits.MaxCommitFiles <= 0 || len(rec.Paths) < it.limits.MaxCommitFiles {
			rec.Paths = append(rec.Paths, line)
		}
	}

	it.emitted++
	return rec, true, nil
}

// finish drains iterator state at end of stream and surfaces subprocess
// failure. A non-zero git exit means the history is unreliable.
func (it *gitCommitIter) finish() error {
	it.done = true
	if err := it.scanner.Err(); err != nil {
		it.Close()
		return fmt.Errorf("git log read failed: %w", err)
	}
	if it.truncated {
		// The subprocess is cut off mid-stream on purpose.
		it.Close()
		return nil
	}
	if it.cmd != nil {
		if err := it.cmd.Wait(); err != nil {
			it.cancel()
			return fmt.Errorf("git log failed: %w", err)
		}
	}
	it.closed = true
	if it.cancel != nil {
		it.cancel()
	}
	return nil
}

// Truncated implements the CommitIter interface.
func (it *gitCommitIter) Truncated() bool { return it.truncated }

// Close implements the CommitIter interface.
func (it *gitCommitIter) Close() error {
	it.done = true
	if it.closed {
		return nil
	}
	it.closed = true
	if it.cancel != nil {
		it.cancel()
	}
	if it.stdout != nil {
		it.stdout.Close()
	}
	if it.cmd != nil {
		it.cmd.Wait()
	}
	return nil
}

// parseHeader splits a "timestamp|author|subject" line. Path lines fail
// the numeric timestamp check and fall through to the caller.
func parseHeader(line string) (schema.CommitRecord, bool) {
	parts := strings.SplitN(line, "|", 3)
	if len(parts) != 3 {
		return schema.CommitRecord{}, false
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || ts <= 0 {
		return schema.CommitRecord{}, false
	}
	return schema.CommitRecord{Timestamp: ts, Author: parts[1], Subject: parts[2]}, true
}
