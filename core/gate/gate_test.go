package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repotally/repotally/schema"
)

func sampleReceipt() *schema.AnalysisReceipt {
	return &schema.AnalysisReceipt{
		SchemaVersion: schema.SchemaVersion,
		Preset:        schema.CIPreset,
		Languages: schema.LanguageReport{
			Rows: []schema.LanguageRow{
				{Name: "Go", Files: 10, Code: 1200},
				{Name: "Markdown", Files: 2, Code: 100},
			},
		},
		Derived: &schema.DerivedReport{
			Totals: schema.Totals{Files: 12, Code: 1200, Comment: 150},
			Ratios: schema.Ratios{DocDensity: 0.1111},
		},
	}
}

func rule(name, pointer string, op schema.RuleOp, value any) schema.PolicyRule {
	return schema.PolicyRule{Name: name, Pointer: pointer, Op: op, Value: value, Level: schema.ErrorLevel}
}

func TestParsePolicy(t *testing.T) {
	raw := []byte(`
fail_fast: true
allow_missing: false
rules:
  - name: code-budget
    pointer: /derived/totals/code
    op: "<="
    value: 1000
    message: code budget exceeded
  - name: has-go
    pointer: /languages/rows/0/name
    op: "=="
    value: Go
    level: warn
`)

	policy, err := ParsePolicy(raw)
	require.NoError(t, err)

	assert.True(t, policy.FailFast)
	require.Len(t, policy.Rules, 2)
	assert.Equal(t, schema.ErrorLevel, policy.Rules[0].Level) // defaulted
	assert.Equal(t, schema.WarnLevel, policy.Rules[1].Level)
}

func TestParsePolicyRejects(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  string
	}{
		{"bad syntax", `rules: [`},
		{"missing name", `rules: [{pointer: /a, op: ">"}]`},
		{"bad pointer", `rules: [{name: r, pointer: "a/b", op: ">"}]`},
		{"unknown op", `rules: [{name: r, pointer: /a, op: "~="}]`},
		{"unknown level", `rules: [{name: r, pointer: /a, op: ">", level: fatal}]`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePolicy([]byte(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestEvaluateBudgetRule(t *testing.T) {
	policy := &schema.Policy{Rules: []schema.PolicyRule{
		rule("code-budget", "/derived/totals/code", schema.OpLTE, 1000),
	}}

	result, err := Evaluate(sampleReceipt(), policy)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 0, result.Warnings)
	require.Len(t, result.Results, 1)
	assert.Equal(t, schema.RuleFail, result.Results[0].Status)
	assert.Equal(t, float64(1200), result.Results[0].Observed)
}

func TestEvaluateNegate(t *testing.T) {
	policy := &schema.Policy{Rules: []schema.PolicyRule{
		{Name: "code-budget", Pointer: "/derived/totals/code", Op: schema.OpLTE, Value: 1000, Negate: true, Level: schema.ErrorLevel},
	}}

	result, err := Evaluate(sampleReceipt(), policy)
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, schema.RulePass, result.Results[0].Status)
}

func TestEvaluateFailFast(t *testing.T) {
	policy := &schema.Policy{FailFast: true, Rules: []schema.PolicyRule{
		rule("fails-first", "/derived/totals/code", schema.OpLT, 100),
		rule("never-reached", "/derived/totals/files", schema.OpGT, 0),
		rule("also-skipped", "/schema_version", schema.OpGTE, 1),
	}}

	result, err := Evaluate(sampleReceipt(), policy)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.Errors)
	assert.Len(t, result.Results, 1) // later rules absent, not back-filled
}

func TestEvaluateWarnLevel(t *testing.T) {
	policy := &schema.Policy{FailFast: true, Rules: []schema.PolicyRule{
		{Name: "doc-density", Pointer: "/derived/ratios/doc_density", Op: schema.OpGTE, Value: 0.5, Level: schema.WarnLevel},
		rule("version", "/schema_version", schema.OpEQ, schema.SchemaVersion),
	}}

	result, err := Evaluate(sampleReceipt(), policy)
	require.NoError(t, err)

	// A warn-level failure never trips fail_fast or the verdict.
	assert.True(t, result.Passed)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, 1, result.Warnings)
	assert.Len(t, result.Results, 2)
}

func TestEvaluateMissingPointer(t *testing.T) {
	policy := &schema.Policy{Rules: []schema.PolicyRule{
		rule("absent", "/git_risk/commits_analyzed", schema.OpGT, 0),
	}}

	result, err := Evaluate(sampleReceipt(), policy)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, schema.RuleFail, result.Results[0].Status)

	policy.AllowMissing = true
	result, err = Evaluate(sampleReceipt(), policy)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	// Distinguishable from a genuine pass in audit logs.
	assert.Equal(t, schema.SkippedMissing, result.Results[0].Status)
}

func TestEvaluateOperators(t *testing.T) {
	for _, tc := range []struct {
		name string
		rule schema.PolicyRule
		want schema.RuleStatus
	}{
		{"gt", rule("r", "/derived/totals/code", schema.OpGT, 1000), schema.RulePass},
		{"gte boundary", rule("r", "/derived/totals/code", schema.OpGTE, 1200), schema.RulePass},
		{"lt", rule("r", "/derived/totals/comment", schema.OpLT, 100), schema.RuleFail},
		{"string-encoded number", rule("r", "/derived/totals/code", schema.OpLTE, "1500"), schema.RulePass},
		{"eq string", rule("r", "/languages/rows/0/name", schema.OpEQ, "Go"), schema.RulePass},
		{"eq numeric cross-type", rule("r", "/schema_version", schema.OpEQ, schema.SchemaVersion), schema.RulePass},
		{"neq", rule("r", "/preset", schema.OpNEQ, "full"), schema.RulePass},
		{"in", rule("r", "/preset", schema.OpIn, []any{"ci", "full"}), schema.RulePass},
		{"in miss", rule("r", "/preset", schema.OpIn, []any{"minimal"}), schema.RuleFail},
		{"contains substring", rule("r", "/languages/rows/1/name", schema.OpContains, "Mark"), schema.RulePass},
		{"exists hit", rule("r", "/derived", schema.OpExists, nil), schema.RulePass},
		{"exists miss", rule("r", "/similarity", schema.OpExists, nil), schema.RuleFail},
	} {
		t.Run(tc.name, func(t *testing.T) {
			policy := &schema.Policy{Rules: []schema.PolicyRule{tc.rule}}
			result, err := Evaluate(sampleReceipt(), policy)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Results[0].Status)
		})
	}
}

func TestEvaluateOperatorTypeErrors(t *testing.T) {
	policy := &schema.Policy{Rules: []schema.PolicyRule{
		rule("bad", "/preset", schema.OpGT, 5),
	}}

	_, err := Evaluate(sampleReceipt(), policy)
	assert.Error(t, err)
}

func TestEvaluateIsPure(t *testing.T) {
	receipt := sampleReceipt()
	policy := &schema.Policy{Rules: []schema.PolicyRule{
		rule("budget", "/derived/totals/code", schema.OpLTE, 1000),
	}}

	first, err := Evaluate(receipt, policy)
	require.NoError(t, err)
	second, err := Evaluate(receipt, policy)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, uint64(1200), receipt.Derived.Totals.Code) // inputs untouched
}

func TestResolvePointer(t *testing.T) {
	doc := map[string]any{
		"a":   map[string]any{"b": []any{1.0, 2.0, 3.0}},
		"x/y": "slash",
		"t~u": "tilde",
	}

	for _, tc := range []struct {
		name    string
		pointer string
		want    any
		found   bool
	}{
		{"whole document", "", doc, true},
		{"nested array index", "/a/b/1", 2.0, true},
		{"escaped slash", "/x~1y", "slash", true},
		{"escaped tilde", "/t~0u", "tilde", true},
		{"missing key", "/a/z", nil, false},
		{"index out of range", "/a/b/9", nil, false},
		{"non-numeric index", "/a/b/first", nil, false},
		{"descend into scalar", "/x~1y/deep", nil, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, found := ResolvePointer(doc, tc.pointer)
			assert.Equal(t, tc.found, found)
			if tc.found {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
