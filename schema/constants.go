package schema

// SchemaVersion is the monotonically increasing version of the receipt
// envelope. Consumers must default missing optional sections rather than
// fail on older or newer minor revisions.
const SchemaVersion = 3

// Custom string types for type safety.
type (
	// ChildrenMode represents the policy for embedded-language blocks.
	ChildrenMode string

	// OutputMode represents the format of the output.
	OutputMode string

	// PresetName represents a named selection of receipt sections.
	PresetName string

	// DatabaseBackend represents the database backend for the receipt store.
	DatabaseBackend string

	// RuleLevel represents the severity of a policy rule.
	RuleLevel string

	// RuleStatus represents the outcome of a single rule evaluation.
	RuleStatus string

	// RuleOp represents a policy comparison operator.
	RuleOp string

	// TrendClass represents a module's commit-rate trajectory.
	TrendClass string

	// IntentKind represents the classified purpose of a commit.
	IntentKind string

	// EntropyClass represents a file's Shannon-entropy bucket.
	EntropyClass string

	// Grade represents a maintainability letter grade.
	Grade string

	// SimilarityScope represents the comparison scope for near-duplicate detection.
	SimilarityScope string
)

// All children modes supported.
const (
	CollapseChildren ChildrenMode = "collapse" // default
	SeparateChildren ChildrenMode = "separate"
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All presets supported.
const (
	MinimalPreset  PresetName = "minimal"
	StandardPreset PresetName = "standard" // default
	CIPreset       PresetName = "ci"
	ContextPreset  PresetName = "context"
	FullPreset     PresetName = "full"
)

// All receipt store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All rule levels supported.
const (
	WarnLevel  RuleLevel = "warn"
	ErrorLevel RuleLevel = "error" // default
)

// All rule statuses. SkippedMissing marks a missing pointer that passed
// under allow_missing, which must stay distinguishable from a genuine pass.
const (
	RulePass       RuleStatus = "pass"
	RuleFail       RuleStatus = "fail"
	SkippedMissing RuleStatus = "skipped_missing"
)

// All policy operators supported.
const (
	OpGT       RuleOp = ">"
	OpGTE      RuleOp = ">="
	OpLT       RuleOp = "<"
	OpLTE      RuleOp = "<="
	OpEQ       RuleOp = "=="
	OpNEQ      RuleOp = "!="
	OpIn       RuleOp = "in"
	OpContains RuleOp = "contains"
	OpExists   RuleOp = "exists"
)

// All churn-trend classes.
const (
	StableTrend   TrendClass = "stable"
	RisingTrend   TrendClass = "rising"
	FallingTrend  TrendClass = "falling"
	VolatileTrend TrendClass = "volatile"
)

// All commit intents. Matching is ordered and first-match-wins;
// unmatched subjects fall through to OtherIntent.
const (
	FeatIntent     IntentKind = "feat"
	FixIntent      IntentKind = "fix"
	RefactorIntent IntentKind = "refactor"
	DocsIntent     IntentKind = "docs"
	TestIntent     IntentKind = "test"
	ChoreIntent    IntentKind = "chore"
	CIIntent       IntentKind = "ci"
	OtherIntent    IntentKind = "other"
)

// All entropy classes, bucketed in bits per byte.
const (
	LowEntropy        EntropyClass = "low"        // < 4.0
	MediumEntropy     EntropyClass = "medium"     // 4.0 - 6.0
	HighEntropy       EntropyClass = "high"       // 6.0 - 7.5
	SuspiciousEntropy EntropyClass = "suspicious" // > 7.5
)

// All maintainability grades.
const (
	GradeA Grade = "A" // MI >= 85
	GradeB Grade = "B" // MI >= 65
	GradeC Grade = "C"
)

// All similarity scopes supported.
const (
	ModuleScope   SimilarityScope = "module" // default
	LanguageScope SimilarityScope = "language"
	GlobalScope   SimilarityScope = "global"
)

// ValidSimilarityScopes lists all valid similarity scopes.
var ValidSimilarityScopes = map[SimilarityScope]struct{}{
	ModuleScope:   {},
	LanguageScope: {},
	GlobalScope:   {},
}

// RootModuleKey is the sentinel module key for files at the repository root.
const RootModuleKey = "(root)"

// ValidChildrenModes lists all valid children modes.
var ValidChildrenModes = map[ChildrenMode]struct{}{
	CollapseChildren: {},
	SeparateChildren: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid receipt store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidRuleLevels lists all valid rule levels.
var ValidRuleLevels = map[RuleLevel]struct{}{
	WarnLevel:  {},
	ErrorLevel: {},
}

// ValidRuleOps lists all valid policy operators.
var ValidRuleOps = map[RuleOp]struct{}{
	OpGT:       {},
	OpGTE:      {},
	OpLT:       {},
	OpLTE:      {},
	OpEQ:       {},
	OpNEQ:      {},
	OpIn:       {},
	OpContains: {},
	OpExists:   {},
}

// OrderedIntents is the declaration order used for intent matching
// and for serializing intent tallies.
var OrderedIntents = []IntentKind{
	FeatIntent, FixIntent, RefactorIntent, DocsIntent,
	TestIntent, ChoreIntent, CIIntent, OtherIntent,
}

// SectionSet describes which optional receipt sections a preset enables.
// Aggregates are always computed; they are the shared substrate.
type SectionSet struct {
	Derived    bool
	Complexity bool
	History    bool
	Similarity bool
}

// Presets is the static table mapping preset name to enabled sections.
var Presets = map[PresetName]SectionSet{
	MinimalPreset:  {},
	StandardPreset: {Derived: true, Complexity: true},
	CIPreset:       {Derived: true, History: true},
	ContextPreset:  {Derived: true, Similarity: true},
	FullPreset:     {Derived: true, Complexity: true, History: true, Similarity: true},
}

// OrderedPresets is the display order for preset listings.
var OrderedPresets = []PresetName{
	MinimalPreset, StandardPreset, CIPreset, ContextPreset, FullPreset,
}
