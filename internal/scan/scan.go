// Package scan walks a repository tree and measures source files.
package scan

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/repotally/repotally/internal/contract"
)

// Directories that never contain measurable source.
var skippedDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	".venv":        {},
	"__pycache__":  {},
	".idea":        {},
	".vscode":      {},
}

const binarySniffBytes = 8192

// FilesystemSource implements the FileSource interface over a local
// directory tree.
type FilesystemSource struct {
	root string
}

var _ contract.FileSource = &FilesystemSource{} // Compile-time check

// NewFilesystemSource creates a source rooted at the given directory.
func NewFilesystemSource(root string) *FilesystemSource {
	return &FilesystemSource{root: root}
}

// Scan implements the FileSource interface. Paths come back repo-relative
// with forward slashes; unknown and binary files are skipped.
func (s *FilesystemSource) Scan(ctx context.Context, excludes []string) ([]contract.RawFileStat, error) {
	var stats []contract.RawFileStat

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if _, skip := skippedDirs[d.Name()]; skip && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if contract.ShouldIgnore(rel, excludes) {
			return nil
		}
		info, ok := lookupLanguage(rel)
		if !ok {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			// Unreadable files degrade to a skip, not a failed scan.
			return nil
		}
		if isBinary(content) {
			return nil
		}

		stats = append(stats, measureFile(rel, info, content)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ReadWindow implements the FileSource interface.
func (s *FilesystemSource) ReadWindow(path string, maxBytes int) ([]byte, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	window := make([]byte, maxBytes)
	n, err := io.ReadFull(f, window)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return window[:n], nil
}

// isBinary sniffs for a NUL byte in the leading window.
func isBinary(content []byte) bool {
	sniff := content
	if len(sniff) > binarySniffBytes {
		sniff = sniff[:binarySniffBytes]
	}
	return bytes.IndexByte(sniff, 0) >= 0
}

// measureFile counts the file itself plus any embedded fenced blocks.
func measureFile(rel string, info languageInfo, content []byte) []contract.RawFileStat {
	stat := contract.RawFileStat{
		Path:     rel,
		Language: info.name,
		Bytes:    int64(len(content)),
	}

	lines := splitLines(content)
	for _, line := range lines {
		classifyLine(line, info.lineComment, &stat)
	}

	stats := []contract.RawFileStat{stat}
	if info.name == "Markdown" {
		stats = append(stats, fencedChildren(rel, info.name, lines)...)
	}
	return stats
}

func splitLines(content []byte) []string {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func classifyLine(line string, comments []string, stat *contract.RawFileStat) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		stat.Blank++
		return
	}
	for _, marker := range comments {
		if strings.HasPrefix(trimmed, marker) {
			stat.Comment++
			return
		}
	}
	stat.Code++
}

// fencedChildren extracts ```lang blocks from markdown as embedded-child
// stats. Bytes stay zero; the parent already owns the physical bytes.
func fencedChildren(rel, parent string, lines []string) []contract.RawFileStat {
	children := make(map[string]*contract.RawFileStat)
	var current *contract.RawFileStat

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if current != nil {
				current = nil
				continue
			}
			tag := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "```")))
			lang, ok := fenceLanguages[tag]
			if !ok {
				continue
			}
			current = children[lang]
			if current == nil {
				current = &contract.RawFileStat{Path: rel, Language: lang, ParentLanguage: parent}
				children[lang] = current
			}
			continue
		}
		if current != nil {
			classifyLine(line, nil, current)
		}
	}

	out := make([]contract.RawFileStat, 0, len(children))
	for _, c := range children {
		out = append(out, *c)
	}
	return out
}
