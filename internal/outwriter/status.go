package outwriter

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// presetRow is one line of the preset listing for JSON output.
type presetRow struct {
	Name       schema.PresetName `json:"name"`
	Derived    bool              `json:"derived"`
	Complexity bool              `json:"complexity"`
	History    bool              `json:"history"`
	Similarity bool              `json:"similarity"`
}

// WritePresets lists the known presets and the sections each enables.
func WritePresets(cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		rows := make([]presetRow, 0, len(schema.OrderedPresets))
		for _, name := range schema.OrderedPresets {
			set := schema.Presets[name]
			rows = append(rows, presetRow{
				Name:       name,
				Derived:    set.Derived,
				Complexity: set.Complexity,
				History:    set.History,
				Similarity: set.Similarity,
			})
		}
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg, writePresetTable, "Wrote table")
}

func writePresetTable(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Preset", "Derived", "Complexity", "History", "Similarity"})

	var data [][]string
	for _, name := range schema.OrderedPresets {
		set := schema.Presets[name]
		data = append(data, []string{
			string(name),
			yesNo(set.Derived),
			yesNo(set.Complexity),
			yesNo(set.History),
			yesNo(set.Similarity),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// WriteStoreStatus outputs the receipt-store summary.
func WriteStoreStatus(status contract.StoreStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		payload := struct {
			Backend  schema.DatabaseBackend `json:"backend"`
			Location string                 `json:"location"`
			Receipts int64                  `json:"receipts"`
		}{status.Backend, status.Location, status.Receipts}
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeJSON(w, payload)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg, func(w io.Writer) error {
		fmt.Fprintf(w, "Backend:  %s\n", status.Backend)
		fmt.Fprintf(w, "Location: %s\n", status.Location)
		fmt.Fprintf(w, "Receipts: %d\n", status.Receipts)
		return nil
	}, "Wrote status")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
