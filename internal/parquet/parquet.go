// Package parquet exports the flat per-file receipt rows to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/repotally/repotally/schema"
)

// FileRow is one flat per-file record plus the receipt metadata needed to
// join rows from different runs. The Parquet schema is inferred from the
// struct tags.
type FileRow struct {
	// RepoHash identifies the repository state the receipt was composed from.
	// Empty when history extraction was unavailable.
	RepoHash string `parquet:"repo_hash,snappy"`

	// Preset is the preset name the receipt was composed with.
	Preset string `parquet:"preset,snappy"`

	// SchemaVersion is the receipt schema version.
	SchemaVersion int32 `parquet:"schema_version,snappy"`

	// Path is the normalized repository-relative path.
	Path string `parquet:"path,snappy"`

	// Language is the detected language name.
	Language string `parquet:"language,snappy"`

	// ModuleKey is the module grouping key the path rolled up under.
	ModuleKey string `parquet:"module_key,snappy"`

	Code    int64 `parquet:"code,snappy"`
	Comment int64 `parquet:"comment,snappy"`
	Blank   int64 `parquet:"blank,snappy"`
	Bytes   int64 `parquet:"bytes,snappy"`
	Tokens  int64 `parquet:"tokens,snappy"`
}

// BuildFileRows flattens a receipt's export section into Parquet rows.
func BuildFileRows(receipt *schema.AnalysisReceipt, repoHash string) []FileRow {
	rows := make([]FileRow, 0, len(receipt.Export.Rows))
	for _, r := range receipt.Export.Rows {
		rows = append(rows, FileRow{
			RepoHash:      repoHash,
			Preset:        string(receipt.Preset),
			SchemaVersion: int32(receipt.SchemaVersion),
			Path:          r.Path,
			Language:      r.Language,
			ModuleKey:     r.ModuleKey,
			Code:          int64(r.Code),
			Comment:       int64(r.Comment),
			Blank:         int64(r.Blank),
			Bytes:         int64(r.Bytes),
			Tokens:        int64(r.Tokens),
		})
	}
	return rows
}

// WriteFileRows writes the rows to a Parquet file at outputPath.
func WriteFileRows(rows []FileRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[FileRow](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
