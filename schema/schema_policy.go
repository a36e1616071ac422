package schema

// PolicyRule is one declarative check against the receipt. Rules are pure
// configuration: loaded once, never mutated during evaluation.
type PolicyRule struct {
	Name    string    `json:"name" yaml:"name"`
	Pointer string    `json:"pointer" yaml:"pointer"` // RFC 6901 JSON Pointer
	Op      RuleOp    `json:"op" yaml:"op"`
	Value   any       `json:"value,omitempty" yaml:"value,omitempty"` // scalar or list
	Negate  bool      `json:"negate,omitempty" yaml:"negate,omitempty"`
	Level   RuleLevel `json:"level,omitempty" yaml:"level,omitempty"` // defaults to error
	Message string    `json:"message,omitempty" yaml:"message,omitempty"`
}

// Policy is the full rule set plus evaluation switches.
type Policy struct {
	FailFast     bool         `json:"fail_fast" yaml:"fail_fast"`
	AllowMissing bool         `json:"allow_missing" yaml:"allow_missing"`
	Rules        []PolicyRule `json:"rules" yaml:"rules"`
}

// RuleResult is the outcome of evaluating one rule.
type RuleResult struct {
	Name     string     `json:"name"`
	Status   RuleStatus `json:"status"`
	Level    RuleLevel  `json:"level"`
	Message  string     `json:"message,omitempty"`
	Observed any        `json:"observed,omitempty"` // resolved value, when present
}

// GateResult is the verdict surface for one policy evaluation. Results
// keeps rule declaration order; under fail_fast it ends at the first
// error-level failure and later rules are absent, not back-filled.
type GateResult struct {
	Passed   bool         `json:"passed"`
	Errors   int          `json:"errors"`
	Warnings int          `json:"warnings"`
	Results  []RuleResult `json:"rule_results"`
}
