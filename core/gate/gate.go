// Package gate evaluates declarative policies against analysis receipts.
package gate

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/repotally/repotally/schema"
)

// LoadPolicy reads and validates a policy file. YAML and JSON both
// parse; an unreadable file or a malformed rule aborts the whole gate.
func LoadPolicy(path string) (*schema.Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read policy file: %w", err)
	}
	return ParsePolicy(raw)
}

// ParsePolicy parses and validates raw policy bytes.
func ParsePolicy(raw []byte) (*schema.Policy, error) {
	var policy schema.Policy
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return nil, fmt.Errorf("cannot parse policy: %w", err)
	}

	for i := range policy.Rules {
		rule := &policy.Rules[i]
		if rule.Name == "" {
			return nil, fmt.Errorf("rule %d: name is required", i)
		}
		if rule.Pointer != "" && !strings.HasPrefix(rule.Pointer, "/") {
			return nil, fmt.Errorf("rule %q: pointer must be empty or start with /", rule.Name)
		}
		if _, ok := schema.ValidRuleOps[rule.Op]; !ok {
			return nil, fmt.Errorf("rule %q: unknown operator %q", rule.Name, rule.Op)
		}
		if rule.Level == "" {
			rule.Level = schema.ErrorLevel
		}
		if _, ok := schema.ValidRuleLevels[rule.Level]; !ok {
			return nil, fmt.Errorf("rule %q: unknown level %q", rule.Name, rule.Level)
		}
	}
	return &policy, nil
}

// Evaluate runs every rule against the receipt in declaration order.
// It is a pure function of its inputs: no I/O, no mutation. Under
// fail_fast the result list ends at the first error-level failure.
func Evaluate(receipt *schema.AnalysisReceipt, policy *schema.Policy) (*schema.GateResult, error) {
	doc, err := receiptDocument(receipt)
	if err != nil {
		return nil, err
	}

	result := &schema.GateResult{Passed: true, Results: make([]schema.RuleResult, 0, len(policy.Rules))}
	for _, rule := range policy.Rules {
		rr, err := evaluateRule(doc, rule, policy.AllowMissing)
		if err != nil {
			return nil, err
		}
		result.Results = append(result.Results, rr)

		if rr.Status == schema.RuleFail {
			if rr.Level == schema.ErrorLevel {
				result.Errors++
				result.Passed = false
				if policy.FailFast {
					break
				}
			} else {
				result.Warnings++
			}
		}
	}
	return result, nil
}

// receiptDocument projects the receipt into a generic JSON document so
// pointers resolve against exactly what consumers would see on the wire.
func receiptDocument(receipt *schema.AnalysisReceipt) (any, error) {
	raw, err := json.Marshal(receipt)
	if err != nil {
		return nil, fmt.Errorf("cannot project receipt: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("cannot project receipt: %w", err)
	}
	return doc, nil
}

func evaluateRule(doc any, rule schema.PolicyRule, allowMissing bool) (schema.RuleResult, error) {
	rr := schema.RuleResult{Name: rule.Name, Level: rule.Level, Message: rule.Message}

	observed, found := ResolvePointer(doc, rule.Pointer)

	if rule.Op == schema.OpExists {
		rr.Status = status(found != rule.Negate)
		if found {
			rr.Observed = observed
		}
		return rr, nil
	}

	if !found {
		if allowMissing {
			rr.Status = schema.SkippedMissing
		} else {
			rr.Status = schema.RuleFail
			if rr.Message == "" {
				rr.Message = fmt.Sprintf("pointer %q not found in receipt", rule.Pointer)
			}
		}
		return rr, nil
	}
	rr.Observed = observed

	ok, err := apply(rule.Op, observed, rule.Value)
	if err != nil {
		return rr, fmt.Errorf("rule %q: %w", rule.Name, err)
	}
	rr.Status = status(ok != rule.Negate)
	return rr, nil
}

func status(pass bool) schema.RuleStatus {
	if pass {
		return schema.RulePass
	}
	return schema.RuleFail
}

// ResolvePointer walks an RFC 6901 JSON Pointer through a decoded JSON
// document. The empty pointer resolves to the whole document.
func ResolvePointer(doc any, pointer string) (any, bool) {
	if pointer == "" {
		return doc, true
	}

	current := doc
	for _, token := range strings.Split(pointer[1:], "/") {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")

		switch node := current.(type) {
		case map[string]any:
			next, ok := node[token]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// apply evaluates one operator. Ordering operators coerce both operands
// to float64 and accept string-encoded numbers; equality falls back to
// deep equality when either side is non-numeric.
func apply(op schema.RuleOp, observed, expected any) (bool, error) {
	switch op {
	case schema.OpGT, schema.OpGTE, schema.OpLT, schema.OpLTE:
		left, okL := toFloat(observed)
		right, okR := toFloat(expected)
		if !okL || !okR {
			return false, fmt.Errorf("operator %q needs numeric operands, got %T and %T", op, observed, expected)
		}
		switch op {
		case schema.OpGT:
			return left > right, nil
		case schema.OpGTE:
			return left >= right, nil
		case schema.OpLT:
			return left < right, nil
		default:
			return left <= right, nil
		}
	case schema.OpEQ:
		return looseEqual(observed, expected), nil
	case schema.OpNEQ:
		return !looseEqual(observed, expected), nil
	case schema.OpIn:
		list, ok := toList(expected)
		if !ok {
			return false, fmt.Errorf("operator %q needs a list value, got %T", op, expected)
		}
		for _, item := range list {
			if looseEqual(observed, item) {
				return true, nil
			}
		}
		return false, nil
	case schema.OpContains:
		return contains(observed, expected)
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}

// contains is substring match for strings and membership for lists.
func contains(observed, expected any) (bool, error) {
	switch node := observed.(type) {
	case string:
		needle, ok := expected.(string)
		if !ok {
			return false, fmt.Errorf("operator %q on a string needs a string value, got %T", schema.OpContains, expected)
		}
		return strings.Contains(node, needle), nil
	case []any:
		for _, item := range node {
			if looseEqual(item, expected) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("operator %q needs a string or list target, got %T", schema.OpContains, observed)
	}
}

// looseEqual compares numerically when both sides are numeric and by
// deep equality otherwise.
func looseEqual(a, b any) bool {
	fa, okA := numeric(a)
	fb, okB := numeric(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// numeric converts genuine number types only; strings stay strings so
// equality never conflates "3" with 3.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toFloat additionally accepts string-encoded numbers for the ordering
// operators.
func toFloat(v any) (float64, bool) {
	if f, ok := numeric(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}

func toList(v any) ([]any, bool) {
	list, ok := v.([]any)
	return list, ok
}
