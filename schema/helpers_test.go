package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeForMaintainability(t *testing.T) {
	tests := []struct {
		mi   float64
		want Grade
	}{
		{171, GradeA},
		{85, GradeA},
		{84.9, GradeB},
		{65, GradeB},
		{64.9, GradeC},
		{0, GradeC},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeForMaintainability(tt.mi))
	}
}

func TestClassifyEntropy(t *testing.T) {
	tests := []struct {
		bits float64
		want EntropyClass
	}{
		{0.0, LowEntropy},
		{3.99, LowEntropy},
		{4.0, MediumEntropy},
		{5.5, MediumEntropy},
		{6.0, MediumEntropy},
		{6.1, HighEntropy},
		{7.5, HighEntropy},
		{7.6, SuspiciousEntropy},
		{8.0, SuspiciousEntropy},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyEntropy(tt.bits))
	}
}

func TestLookupPreset(t *testing.T) {
	t.Run("known presets", func(t *testing.T) {
		for _, name := range OrderedPresets {
			set, err := LookupPreset(name)
			assert.NoError(t, err)
			if name == MinimalPreset {
				assert.Equal(t, SectionSet{}, set)
			}
		}
	})

	t.Run("unknown preset", func(t *testing.T) {
		_, err := LookupPreset("turbo")
		assert.Error(t, err)
	})
}

func TestIntentCounts(t *testing.T) {
	var c IntentCounts
	for _, kind := range OrderedIntents {
		c.Add(kind)
	}
	c.Add(FixIntent)

	assert.Equal(t, uint64(2), c.Count(FixIntent))
	assert.Equal(t, uint64(1), c.Count(CIIntent))
	assert.Equal(t, uint64(9), c.Total())
}

func TestSortRows(t *testing.T) {
	rows := []LanguageRow{
		{Name: "Go", Code: 100},
		{Name: "Ada", Code: 200},
		{Name: "C", Code: 200},
	}
	SortLanguageRows(rows)

	assert.Equal(t, "Ada", rows[0].Name)
	assert.Equal(t, "C", rows[1].Name)
	assert.Equal(t, "Go", rows[2].Name)

	mods := []ModuleRow{
		{Name: "internal", Code: 5},
		{Name: "cmd", Code: 5},
	}
	SortModuleRows(mods)
	assert.Equal(t, "cmd", mods[0].Name)
}
