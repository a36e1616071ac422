// Package schema has configs, models and global variables for all parts of repotally.
package schema

// FileRecord is the normalized per-file measurement that feeds every
// downstream engine. It is created once by the aggregation phase and
// never mutated afterwards.
type FileRecord struct {
	Path            string `json:"path"`     // Repo-relative, forward-slash normalized
	Language        string `json:"language"` // Language tag from the scanning collaborator
	Code            uint64 `json:"code"`
	Comment         uint64 `json:"comment"`
	Blank           uint64 `json:"blank"`
	Bytes           uint64 `json:"bytes"`
	TokenEstimate   uint64 `json:"token_estimate"` // Bytes / 4
	ModuleKey       string `json:"module_key"`
	IsEmbeddedChild bool   `json:"is_embedded_child"` // e.g. script inside markup
}

// CommitRecord is a single commit from the history collaborator.
// The stream of these is lazy, finite and non-restartable.
type CommitRecord struct {
	Timestamp int64    // Epoch seconds
	Author    string   // Author identity as reported by the VCS
	Subject   string   // First line of the commit message
	Paths     []string // Changed file paths, in VCS order
}

// LanguageRow is one row of the per-language aggregation.
type LanguageRow struct {
	Name    string `json:"name"`
	Files   uint64 `json:"files"`
	Code    uint64 `json:"code"`
	Comment uint64 `json:"comment"`
	Blank   uint64 `json:"blank"`
	Bytes   uint64 `json:"bytes"`
	Tokens  uint64 `json:"tokens"`
}

// ModuleRow is one row of the per-module aggregation.
type ModuleRow struct {
	Name    string `json:"name"`
	Files   uint64 `json:"files"`
	Code    uint64 `json:"code"`
	Comment uint64 `json:"comment"`
	Blank   uint64 `json:"blank"`
	Bytes   uint64 `json:"bytes"`
	Tokens  uint64 `json:"tokens"`
}

// LanguageReport holds language rows sorted by code descending,
// ties broken by name ascending.
type LanguageReport struct {
	Rows []LanguageRow `json:"rows"`
}

// ModuleReport holds module rows with the same total order as LanguageReport.
type ModuleReport struct {
	Rows []ModuleRow `json:"rows"`
}

// ExportRow is one flat per-file row for machine consumers.
type ExportRow struct {
	Path      string `json:"path"`
	Language  string `json:"language"`
	ModuleKey string `json:"module_key"`
	Code      uint64 `json:"code"`
	Comment   uint64 `json:"comment"`
	Blank     uint64 `json:"blank"`
	Bytes     uint64 `json:"bytes"`
	Tokens    uint64 `json:"tokens"`
}

// ExportData holds the flat rows plus the filters that were applied to them,
// so a consumer can tell a short list from a truncated one.
type ExportData struct {
	MinCode uint64      `json:"min_code"`
	MaxRows int         `json:"max_rows"`
	Rows    []ExportRow `json:"rows"`
}

// AggregateOutput bundles the three aggregation products with the
// normalized records they were folded from. It is the shared, read-only
// substrate for the derived, history and similarity engines.
type AggregateOutput struct {
	Records   []FileRecord
	Languages LanguageReport
	Modules   ModuleReport
	Export    ExportData
}
