package outwriter

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// WriteGateResult outputs the policy verdict, dispatching on the
// configured format.
func WriteGateResult(result *schema.GateResult, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg, func(w io.Writer) error {
		return writeGateTable(w, result)
	}, "Wrote table")
}

// writeGateTable renders the per-rule verdicts with colored labels.
func writeGateTable(w io.Writer, result *schema.GateResult) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rule", "Status", "Level", "Observed", "Message"})

	var data [][]string
	for _, r := range result.Results {
		observed := ""
		if r.Observed != nil {
			observed = fmt.Sprintf("%v", r.Observed)
		}
		data = append(data, []string{
			r.Name,
			contract.GetColorLabel(statusLabel(r.Status)),
			string(r.Level),
			observed,
			r.Message,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	verdict := contract.GetColorLabel(contract.PassValue)
	if !result.Passed {
		verdict = contract.GetColorLabel(contract.FailValue)
	}
	fmt.Fprintf(w, "Gate: %s (%d errors, %d warnings, %d rules evaluated)\n",
		verdict, result.Errors, result.Warnings, len(result.Results))
	return nil
}

// statusLabel maps a rule status to its display label. A failed warn-level
// rule still shows Fail; the level column carries the severity.
func statusLabel(status schema.RuleStatus) string {
	switch status {
	case schema.RulePass:
		return contract.PassValue
	case schema.RuleFail:
		return contract.FailValue
	default:
		return contract.SkipValue
	}
}
