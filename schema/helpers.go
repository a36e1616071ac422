package schema

import (
	"fmt"
	"sort"
)

// GradeForMaintainability maps a maintainability index to a letter grade.
func GradeForMaintainability(mi float64) Grade {
	switch {
	case mi >= 85:
		return GradeA
	case mi >= 65:
		return GradeB
	default:
		return GradeC
	}
}

// ClassifyEntropy maps a Shannon entropy value in bits per byte to a bucket.
func ClassifyEntropy(bitsPerByte float64) EntropyClass {
	switch {
	case bitsPerByte > 7.5:
		return SuspiciousEntropy
	case bitsPerByte > 6.0:
		return HighEntropy
	case bitsPerByte >= 4.0:
		return MediumEntropy
	default:
		return LowEntropy
	}
}

// LookupPreset resolves a preset name to its section set.
func LookupPreset(name PresetName) (SectionSet, error) {
	set, ok := Presets[name]
	if !ok {
		return SectionSet{}, fmt.Errorf("unknown preset %q. must be minimal, standard, ci, context, full", name)
	}
	return set, nil
}

// Count returns the tally for the given intent kind.
func (c *IntentCounts) Count(kind IntentKind) uint64 {
	switch kind {
	case FeatIntent:
		return c.Feat
	case FixIntent:
		return c.Fix
	case RefactorIntent:
		return c.Refactor
	case DocsIntent:
		return c.Docs
	case TestIntent:
		return c.Test
	case ChoreIntent:
		return c.Chore
	case CIIntent:
		return c.CI
	default:
		return c.Other
	}
}

// Add increments the tally for the given intent kind.
func (c *IntentCounts) Add(kind IntentKind) {
	switch kind {
	case FeatIntent:
		c.Feat++
	case FixIntent:
		c.Fix++
	case RefactorIntent:
		c.Refactor++
	case DocsIntent:
		c.Docs++
	case TestIntent:
		c.Test++
	case ChoreIntent:
		c.Chore++
	case CIIntent:
		c.CI++
	default:
		c.Other++
	}
}

// Total returns the sum of all intent tallies.
func (c *IntentCounts) Total() uint64 {
	return c.Feat + c.Fix + c.Refactor + c.Docs + c.Test + c.Chore + c.CI + c.Other
}

// SortLanguageRows applies the report total order in place:
// code descending, name ascending on ties.
func SortLanguageRows(rows []LanguageRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Code != rows[j].Code {
			return rows[i].Code > rows[j].Code
		}
		return rows[i].Name < rows[j].Name
	})
}

// SortModuleRows applies the report total order in place:
// code descending, name ascending on ties.
func SortModuleRows(rows []ModuleRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Code != rows[j].Code {
			return rows[i].Code > rows[j].Code
		}
		return rows[i].Name < rows[j].Name
	})
}
