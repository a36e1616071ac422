package schema

// Totals holds whole-tree sums over the normalized file records.
type Totals struct {
	Files   uint64 `json:"files"`
	Code    uint64 `json:"code"`
	Comment uint64 `json:"comment"`
	Blank   uint64 `json:"blank"`
	Bytes   uint64 `json:"bytes"`
	Tokens  uint64 `json:"tokens"`
}

// Ratios holds density statistics, rounded to 4 decimal places for
// stable serialization. A zero denominator yields 0, never NaN.
type Ratios struct {
	DocDensity        float64 `json:"doc_density"`        // comment / (code + comment)
	TestDensity       float64 `json:"test_density"`       // test-file code / total code
	WhitespaceDensity float64 `json:"whitespace_density"` // blank / all lines
}

// HistogramBucket is one bucket of the code-size distribution.
// Upper is exclusive; the last bucket has Upper == 0 meaning unbounded.
type HistogramBucket struct {
	Lower uint64 `json:"lower"`
	Upper uint64 `json:"upper"`
	Count uint64 `json:"count"`
}

// Distribution summarizes per-file code line counts.
type Distribution struct {
	P50       float64           `json:"p50"`
	P90       float64           `json:"p90"`
	P99       float64           `json:"p99"`
	Gini      float64           `json:"gini"`
	Histogram []HistogramBucket `json:"histogram"`
}

// CocomoEstimate is the organic-mode COCOMO effort estimate.
type CocomoEstimate struct {
	EffortMonths   float64 `json:"effort_months"`
	ScheduleMonths float64 `json:"schedule_months"`
}

// DerivedReport holds totals, densities, distribution statistics and the
// effort estimate.
type DerivedReport struct {
	Totals       Totals         `json:"totals"`
	Ratios       Ratios         `json:"ratios"`
	Distribution Distribution   `json:"distribution"`
	Cocomo       CocomoEstimate `json:"cocomo"`
}

// FileComplexity holds Halstead and maintainability scoring for one file.
// Unscored is set instead of failing the report when a logarithm input
// would be non-positive.
type FileComplexity struct {
	Path            string       `json:"path"`
	Volume          float64      `json:"volume"`
	Difficulty      float64      `json:"difficulty"`
	Effort          float64      `json:"effort"`
	CyclomaticProxy float64      `json:"cyclomatic_proxy"`
	AvgFuncLines    float64      `json:"avg_func_lines"`
	Maintainability float64      `json:"maintainability"`
	Grade           Grade        `json:"grade,omitempty"`
	Entropy         float64      `json:"entropy"`
	EntropyClass    EntropyClass `json:"entropy_class"`
	Unscored        bool         `json:"unscored,omitempty"`
}

// GradeCount tallies files per maintainability grade.
type GradeCount struct {
	Grade Grade  `json:"grade"`
	Count uint64 `json:"count"`
}

// EntropyCount tallies files per entropy class.
type EntropyCount struct {
	Class EntropyClass `json:"class"`
	Count uint64       `json:"count"`
}

// ComplexityReport holds per-file complexity scoring plus tallies.
type ComplexityReport struct {
	Files   []FileComplexity `json:"files"`
	Grades  []GradeCount     `json:"grades"`
	Entropy []EntropyCount   `json:"entropy"`
}

// Hotspot is a per-path change-frequency score with recency decay.
type Hotspot struct {
	Path    string  `json:"path"`
	Commits uint64  `json:"commits"`
	Score   float64 `json:"score"`
}

// BusFactor is the minimal number of authors whose cumulative share of
// a module's changes exceeds the dominance threshold.
type BusFactor struct {
	Module        string  `json:"module"`
	AuthorCount   uint64  `json:"author_count"`
	BusFactor     uint64  `json:"bus_factor"`
	DominantShare float64 `json:"dominant_share"`
}

// Freshness is the age of the newest commit touching a path.
// AgeSeconds is null for paths with no commit history.
type Freshness struct {
	Path       string `json:"path"`
	AgeSeconds *int64 `json:"age_seconds"`
}

// CouplingPair is a co-change pair with Jaccard and Lift strength.
// PathA sorts lexicographically before PathB.
type CouplingPair struct {
	PathA         string  `json:"path_a"`
	PathB         string  `json:"path_b"`
	CoOccurrences uint64  `json:"co_occurrences"`
	Jaccard       float64 `json:"jaccard"`
	Lift          float64 `json:"lift"`
}

// ChurnTrend classifies a module's commit-rate trajectory.
type ChurnTrend struct {
	Module string     `json:"module"`
	Class  TrendClass `json:"class"`
	Slope  float64    `json:"slope"`
}

// IntentCounts tallies classified commit intents for a module.
type IntentCounts struct {
	Module   string `json:"module"`
	Feat     uint64 `json:"feat"`
	Fix      uint64 `json:"fix"`
	Refactor uint64 `json:"refactor"`
	Docs     uint64 `json:"docs"`
	Test     uint64 `json:"test"`
	Chore    uint64 `json:"chore"`
	CI       uint64 `json:"ci"`
	Other    uint64 `json:"other"`
}

// GitRiskReport holds every history-derived signal. When the history
// collaborator is unavailable the report carries Available=false and a
// reason, so consumers never conflate "no risk" with "no data".
type GitRiskReport struct {
	Available       bool           `json:"available"`
	Reason          string         `json:"reason,omitempty"`
	CommitsAnalyzed uint64         `json:"commits_analyzed"`
	Truncated       bool           `json:"truncated"` // max_commits cap was hit
	Hotspots        []Hotspot      `json:"hotspots,omitempty"`
	BusFactors      []BusFactor    `json:"bus_factors,omitempty"`
	Freshness       []Freshness    `json:"freshness,omitempty"`
	Coupling        []CouplingPair `json:"coupling,omitempty"`
	Trends          []ChurnTrend   `json:"trends,omitempty"`
	Intents         []IntentCounts `json:"intents,omitempty"`
}

// DuplicateGroup is a set of paths sharing one content digest.
type DuplicateGroup struct {
	Digest string   `json:"digest"`
	Paths  []string `json:"paths"`
}

// NearDuplicate is a pair of files above the similarity threshold.
// PathA sorts lexicographically before PathB.
type NearDuplicate struct {
	PathA      string  `json:"path_a"`
	PathB      string  `json:"path_b"`
	Similarity float64 `json:"similarity"`
}

// SimilarityReport holds exact and near-duplicate findings with the
// parameters that produced them embedded for reproducibility.
type SimilarityReport struct {
	Scope          SimilarityScope  `json:"scope"`
	Threshold      float64          `json:"threshold"`
	ShingleSize    int              `json:"shingle_size"`
	WindowBytes    int              `json:"window_bytes"`
	ExactGroups    []DuplicateGroup `json:"exact_groups"`
	NearDuplicates []NearDuplicate  `json:"near_duplicates"`
}

// AnalysisReceipt is the schema-versioned envelope for one run. Sections
// other than the aggregates are independently optional and selected by
// preset; a disabled section is absent, while a computed-but-empty section
// is present and empty.
type AnalysisReceipt struct {
	SchemaVersion int               `json:"schema_version"`
	Preset        PresetName        `json:"preset"`
	Languages     LanguageReport    `json:"languages"`
	Modules       ModuleReport      `json:"modules"`
	Export        ExportData        `json:"export"`
	Derived       *DerivedReport    `json:"derived,omitempty"`
	Complexity    *ComplexityReport `json:"complexity,omitempty"`
	GitRisk       *GitRiskReport    `json:"git_risk,omitempty"`
	Similarity    *SimilarityReport `json:"similarity,omitempty"`
}
