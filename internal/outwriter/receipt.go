package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// Maximum rows shown per section in table output. JSON and CSV always
// carry the full receipt.
const maxTableRows = 10

// WriteReceipt outputs the receipt, dispatching on the configured format.
func WriteReceipt(receipt *schema.AnalysisReceipt, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeJSON(w, receipt)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeExportCSV(w, receipt.Export)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeReceiptTables(w, receipt, cfg, duration)
		}, "Wrote table")
	}
}

// writeExportCSV writes the flat per-file rows in CSV format.
func writeExportCSV(w io.Writer, export schema.ExportData) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	header := []string{"path", "language", "module_key", "code", "comment", "blank", "bytes", "tokens"}
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range export.Rows {
		row := []string{
			r.Path,
			r.Language,
			r.ModuleKey,
			strconv.FormatUint(r.Code, 10),
			strconv.FormatUint(r.Comment, 10),
			strconv.FormatUint(r.Blank, 10),
			strconv.FormatUint(r.Bytes, 10),
			strconv.FormatUint(r.Tokens, 10),
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}

// writeReceiptTables renders the human-readable receipt summary.
func writeReceiptTables(w io.Writer, receipt *schema.AnalysisReceipt, cfg *contract.Config, duration time.Duration) error {
	fmt.Fprintf(w, "Analysis receipt (preset: %s, schema v%d)\n\n", receipt.Preset, receipt.SchemaVersion)

	if err := writeLanguageTable(w, receipt.Languages); err != nil {
		return err
	}
	if err := writeModuleTable(w, receipt.Modules, cfg); err != nil {
		return err
	}
	if receipt.Derived != nil {
		writeDerivedSummary(w, receipt.Derived)
	}
	if receipt.Complexity != nil {
		writeComplexitySummary(w, receipt.Complexity)
	}
	if receipt.GitRisk != nil {
		if err := writeGitRiskSummary(w, receipt.GitRisk, cfg); err != nil {
			return err
		}
	}
	if receipt.Similarity != nil {
		writeSimilaritySummary(w, receipt.Similarity)
	}

	fmt.Fprintf(w, "Receipt composed in %v with %d workers\n", duration, cfg.Workers)
	return nil
}

func writeLanguageTable(w io.Writer, report schema.LanguageReport) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Language", "Files", "Code", "Comment", "Blank", "Tokens"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, row := range report.Rows {
		if i >= maxTableRows {
			break
		}
		data = append(data, []string{
			row.Name,
			strconv.FormatUint(row.Files, 10),
			strconv.FormatUint(row.Code, 10),
			strconv.FormatUint(row.Comment, 10),
			strconv.FormatUint(row.Blank, 10),
			strconv.FormatUint(row.Tokens, 10),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Showing %d of %d languages\n\n", len(data), len(report.Rows))
	return nil
}

func writeModuleTable(w io.Writer, report schema.ModuleReport, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Module", "Files", "Code", "Comment", "Blank", "Tokens"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, row := range report.Rows {
		if i >= maxTableRows {
			break
		}
		data = append(data, []string{
			contract.TruncatePath(row.Name, getMaxTablePathWidth(cfg)),
			strconv.FormatUint(row.Files, 10),
			strconv.FormatUint(row.Code, 10),
			strconv.FormatUint(row.Comment, 10),
			strconv.FormatUint(row.Blank, 10),
			strconv.FormatUint(row.Tokens, 10),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Showing %d of %d modules\n\n", len(data), len(report.Rows))
	return nil
}

func writeDerivedSummary(w io.Writer, derived *schema.DerivedReport) {
	t := derived.Totals
	fmt.Fprintf(w, "Totals: %d files, %d code, %d comment, %d blank, %d bytes, %d tokens\n",
		t.Files, t.Code, t.Comment, t.Blank, t.Bytes, t.Tokens)
	fmt.Fprintf(w, "Ratios: doc %.4f, test %.4f, whitespace %.4f\n",
		derived.Ratios.DocDensity, derived.Ratios.TestDensity, derived.Ratios.WhitespaceDensity)
	d := derived.Distribution
	fmt.Fprintf(w, "Code per file: p50 %.1f, p90 %.1f, p99 %.1f, gini %.4f\n", d.P50, d.P90, d.P99, d.Gini)
	fmt.Fprintf(w, "COCOMO (organic): %.1f effort-months, %.1f schedule-months\n\n",
		derived.Cocomo.EffortMonths, derived.Cocomo.ScheduleMonths)
}

func writeComplexitySummary(w io.Writer, complexity *schema.ComplexityReport) {
	fmt.Fprint(w, "Maintainability grades: ")
	for i, g := range complexity.Grades {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%s=%d", g.Grade, g.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, "Entropy classes: ")
	for i, e := range complexity.Entropy {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%s=%d", e.Class, e.Count)
	}
	fmt.Fprintf(w, "\nScored %d files\n\n", len(complexity.Files))
}

func writeGitRiskSummary(w io.Writer, risk *schema.GitRiskReport, cfg *contract.Config) error {
	if !risk.Available {
		fmt.Fprintf(w, "Git risk: unavailable (%s)\n\n", risk.Reason)
		return nil
	}

	truncNote := ""
	if risk.Truncated {
		truncNote = " (truncated)"
	}
	fmt.Fprintf(w, "Git risk over %d commits%s\n", risk.CommitsAnalyzed, truncNote)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Hotspot", "Commits", "Score"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, h := range risk.Hotspots {
		if i >= maxTableRows {
			break
		}
		data = append(data, []string{
			contract.TruncatePath(h.Path, getMaxTablePathWidth(cfg)),
			strconv.FormatUint(h.Commits, 10),
			fmt.Sprintf("%.4f", h.Score),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Bus factors: %d modules, coupling pairs: %d, trends: %d\n\n",
		len(risk.BusFactors), len(risk.Coupling), len(risk.Trends))
	return nil
}

func writeSimilaritySummary(w io.Writer, sim *schema.SimilarityReport) {
	fmt.Fprintf(w, "Similarity (%s scope, threshold %.2f): %d exact groups, %d near-duplicate pairs\n",
		sim.Scope, sim.Threshold, len(sim.ExactGroups), len(sim.NearDuplicates))
	for i, nd := range sim.NearDuplicates {
		if i >= maxTableRows {
			fmt.Fprintf(w, "  ... %d more pairs\n", len(sim.NearDuplicates)-maxTableRows)
			break
		}
		fmt.Fprintf(w, "  %.4f  %s <-> %s\n", nd.Similarity, nd.PathA, nd.PathB)
	}
	fmt.Fprintln(w)
}
