// Package agg has path normalization and aggregation logic for file records.
package agg

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// ErrInvalidRecord marks a malformed input record. The whole aggregation
// fails rather than silently skipping, because silent data loss would
// corrupt downstream determinism guarantees.
var ErrInvalidRecord = errors.New("invalid file record")

// EmbeddedSuffix is appended to language names for embedded-language rows
// when the children mode is separate.
const EmbeddedSuffix = " (embedded)"

// NormalizePath converts a raw path to its canonical form: backslashes
// become forward slashes, a leading "./" is dropped, and the configured
// prefix is stripped. The function is idempotent; the prefix is stripped
// as often as it leads the path so a second application is a no-op.
func NormalizePath(raw string, stripPrefix string) string {
	p := strings.ReplaceAll(raw, "\\", "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	if stripPrefix != "" {
		prefix := strings.TrimSuffix(stripPrefix, "/") + "/"
		for strings.HasPrefix(p, prefix) {
			p = p[len(prefix):]
		}
	}
	return p
}

// ModuleKey derives the deterministic grouping key for a canonical path.
// Root-level files map to the "(root)" sentinel. Otherwise the first path
// segment is the key, unless it matches a configured root, in which case
// up to depth leading segments are kept (never including the file itself).
func ModuleKey(canonical string, roots []string, depth int) string {
	segs := strings.Split(canonical, "/")
	if len(segs) < 2 {
		return schema.RootModuleKey
	}

	first := segs[0]
	for _, r := range roots {
		if first != r {
			continue
		}
		keep := depth
		if keep > len(segs)-1 {
			keep = len(segs) - 1
		}
		return strings.Join(segs[:keep], "/")
	}
	return first
}

// Aggregate folds raw file stats into normalized records plus the
// language, module and export reports. Folding is associative and
// commutative: the result does not depend on input order, because the
// upstream file list order is not guaranteed stable across filesystems.
func Aggregate(stats []contract.RawFileStat, cfg *contract.Config) (*schema.AggregateOutput, error) {
	records, err := normalizeRecords(stats, cfg)
	if err != nil {
		return nil, err
	}

	languages := foldLanguages(records, cfg.ChildrenMode)
	modules := foldModules(records)
	export := buildExport(records, cfg.MinCode, cfg.MaxRows)

	return &schema.AggregateOutput{
		Records:   records,
		Languages: languages,
		Modules:   modules,
		Export:    export,
	}, nil
}

// normalizeRecords validates and normalizes every raw stat into a FileRecord.
// Records are sorted by path then language so downstream engines see a
// canonical order regardless of how the collaborator walked the tree.
func normalizeRecords(stats []contract.RawFileStat, cfg *contract.Config) ([]schema.FileRecord, error) {
	records := make([]schema.FileRecord, 0, len(stats))
	for _, s := range stats {
		if strings.TrimSpace(s.Path) == "" {
			return nil, fmt.Errorf("%w: empty path", ErrInvalidRecord)
		}
		if s.Code < 0 || s.Comment < 0 || s.Blank < 0 || s.Bytes < 0 {
			return nil, fmt.Errorf("%w: negative counts for %q", ErrInvalidRecord, s.Path)
		}

		canonical := NormalizePath(s.Path, cfg.StripPrefix)
		records = append(records, schema.FileRecord{
			Path:            canonical,
			Language:        s.Language,
			Code:            uint64(s.Code),
			Comment:         uint64(s.Comment),
			Blank:           uint64(s.Blank),
			Bytes:           uint64(s.Bytes),
			TokenEstimate:   uint64(s.Bytes) / 4,
			ModuleKey:       ModuleKey(canonical, cfg.ModuleRoots, cfg.ModuleDepth),
			IsEmbeddedChild: s.ParentLanguage != "",
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Path != records[j].Path {
			return records[i].Path < records[j].Path
		}
		return records[i].Language < records[j].Language
	})
	return records, nil
}

// foldLanguages folds records by language. Embedded children either
// collapse into a parent row (their line counts fold in, bytes and tokens
// already belong to the parent file) or surface as a separate zero-weight
// row suffixed "(embedded)".
func foldLanguages(records []schema.FileRecord, mode schema.ChildrenMode) schema.LanguageReport {
	byName := make(map[string]*schema.LanguageRow)

	rowFor := func(name string) *schema.LanguageRow {
		if row, ok := byName[name]; ok {
			return row
		}
		row := &schema.LanguageRow{Name: name}
		byName[name] = row
		return row
	}

	for _, r := range records {
		name := r.Language
		if r.IsEmbeddedChild {
			if mode == schema.SeparateChildren {
				name = r.Language + EmbeddedSuffix
			}
			row := rowFor(name)
			row.Code += r.Code
			row.Comment += r.Comment
			row.Blank += r.Blank
			// Embedded rows never contribute bytes or tokens; those are
			// accounted to the physical parent file.
			continue
		}

		row := rowFor(name)
		row.Files++
		row.Code += r.Code
		row.Comment += r.Comment
		row.Blank += r.Blank
		row.Bytes += r.Bytes
		row.Tokens += r.TokenEstimate
	}

	rows := make([]schema.LanguageRow, 0, len(byName))
	for _, row := range byName {
		rows = append(rows, *row)
	}
	schema.SortLanguageRows(rows)
	return schema.LanguageReport{Rows: rows}
}

// foldModules folds records by module key. Embedded children contribute
// their line counts to the module but no file count, bytes or tokens.
func foldModules(records []schema.FileRecord) schema.ModuleReport {
	byKey := make(map[string]*schema.ModuleRow)

	for _, r := range records {
		row, ok := byKey[r.ModuleKey]
		if !ok {
			row = &schema.ModuleRow{Name: r.ModuleKey}
			byKey[r.ModuleKey] = row
		}
		row.Code += r.Code
		row.Comment += r.Comment
		row.Blank += r.Blank
		if !r.IsEmbeddedChild {
			row.Files++
			row.Bytes += r.Bytes
			row.Tokens += r.TokenEstimate
		}
	}

	rows := make([]schema.ModuleRow, 0, len(byKey))
	for _, row := range byKey {
		rows = append(rows, *row)
	}
	schema.SortModuleRows(rows)
	return schema.ModuleReport{Rows: rows}
}

// buildExport produces the flat per-file rows. The min_code and max_rows
// filters apply after aggregation and sorting, never before.
func buildExport(records []schema.FileRecord, minCode uint64, maxRows int) schema.ExportData {
	rows := make([]schema.ExportRow, 0, len(records))
	for _, r := range records {
		if r.IsEmbeddedChild {
			continue // one row per physical file
		}
		rows = append(rows, schema.ExportRow{
			Path:      r.Path,
			Language:  r.Language,
			ModuleKey: r.ModuleKey,
			Code:      r.Code,
			Comment:   r.Comment,
			Blank:     r.Blank,
			Bytes:     r.Bytes,
			Tokens:    r.TokenEstimate,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Code != rows[j].Code {
			return rows[i].Code > rows[j].Code
		}
		return rows[i].Path < rows[j].Path
	})

	filtered := rows[:0]
	for _, row := range rows {
		if row.Code < minCode {
			continue
		}
		filtered = append(filtered, row)
	}
	if maxRows > 0 && len(filtered) > maxRows {
		filtered = filtered[:maxRows]
	}

	return schema.ExportData{
		MinCode: minCode,
		MaxRows: maxRows,
		Rows:    filtered,
	}
}
