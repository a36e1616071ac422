package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repotally/repotally/internal/contract"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func statsByKey(stats []contract.RawFileStat) map[string]contract.RawFileStat {
	out := make(map[string]contract.RawFileStat, len(stats))
	for _, s := range stats {
		out[s.Path+"|"+s.Language] = s
	}
	return out
}

func TestScanCountsLines(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/count.go", "package pkg\n\n// doc comment\nfunc F() int {\n\treturn 1\n}\n")

	stats, err := NewFilesystemSource(root).Scan(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	s := stats[0]
	assert.Equal(t, "pkg/count.go", s.Path)
	assert.Equal(t, "Go", s.Language)
	assert.Equal(t, int64(4), s.Code)
	assert.Equal(t, int64(1), s.Comment)
	assert.Equal(t, int64(1), s.Blank)
	assert.Greater(t, s.Bytes, int64(0))
	assert.Empty(t, s.ParentLanguage)
}

func TestScanSkipsUnknownBinaryAndVCS(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "image.xyzzy", "whatever")
	writeFile(t, root, ".git/config", "[core]\n")
	writeFile(t, root, "node_modules/dep/index.js", "module.exports = 1\n")
	writeFile(t, root, "blob.go", "package main\nvar b = \"\x00\"\n")

	stats, err := NewFilesystemSource(root).Scan(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, stats, 1)
	assert.Equal(t, "main.go", stats[0].Path)
}

func TestScanHonorsExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.go", "package a\n")
	writeFile(t, root, "vendor/dep.go", "package dep\n")

	stats, err := NewFilesystemSource(root).Scan(context.Background(), []string{"vendor/"})
	require.NoError(t, err)

	require.Len(t, stats, 1)
	assert.Equal(t, "keep.go", stats[0].Path)
}

func TestScanMarkdownFences(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", `# Title

Some prose here.

`+"```go"+`
package main

func main() {}
`+"```"+`

More prose.

`+"```"+`
plain fence, no language tag
`+"```"+`
`)

	stats, err := NewFilesystemSource(root).Scan(context.Background(), nil)
	require.NoError(t, err)

	byKey := statsByKey(stats)
	parent, ok := byKey["README.md|Markdown"]
	require.True(t, ok)
	assert.Empty(t, parent.ParentLanguage)
	assert.Greater(t, parent.Code, int64(0))

	child, ok := byKey["README.md|Go"]
	require.True(t, ok)
	assert.Equal(t, "Markdown", child.ParentLanguage)
	assert.Equal(t, int64(2), child.Code) // package + func lines
	assert.Equal(t, int64(1), child.Blank)
	assert.Zero(t, child.Bytes)

	// The untagged fence contributes no child.
	assert.Len(t, stats, 2)
}

func TestScanWellKnownFilenames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Makefile", "# build\nall:\n\tgo build ./...\n")

	stats, err := NewFilesystemSource(root).Scan(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, stats, 1)
	assert.Equal(t, "Makefile", stats[0].Language)
	assert.Equal(t, int64(1), stats[0].Comment)
}

func TestReadWindow(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/data.go", "package pkg // trailing content beyond the window\n")

	src := NewFilesystemSource(root)

	window, err := src.ReadWindow("pkg/data.go", 11)
	require.NoError(t, err)
	assert.Equal(t, []byte("package pkg"), window)

	full, err := src.ReadWindow("pkg/data.go", 1<<20)
	require.NoError(t, err)
	assert.Greater(t, len(full), 11)

	_, err = src.ReadWindow("missing.go", 16)
	assert.Error(t, err)
}

func TestScanDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.go", "package b\n")
	writeFile(t, root, "a.go", "package a\n")
	writeFile(t, root, "sub/c.go", "package c\n")

	src := NewFilesystemSource(root)
	first, err := src.Scan(context.Background(), nil)
	require.NoError(t, err)
	second, err := src.Scan(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
