package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repotally/repotally/schema"
)

func TestRatio(t *testing.T) {
	for _, tc := range []struct {
		name     string
		num, den float64
		want     float64
	}{
		{"zero denominator", 5, 0, 0},
		{"zero numerator", 0, 10, 0},
		{"half", 1, 2, 0.5},
		{"rounds to four places", 1, 3, 0.3333},
		{"rounds up", 2, 3, 0.6667},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Ratio(tc.num, tc.den), 1e-9)
		})
	}
}

func TestPercentile(t *testing.T) {
	for _, tc := range []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 50, 0},
		{"single", []float64{7}, 99, 7},
		{"median of two", []float64{10, 20}, 50, 15},
		{"exact rank", []float64{1, 2, 3, 4, 5}, 50, 3},
		{"interpolated", []float64{1, 2, 3, 4}, 50, 2.5},
		{"p90 of ten", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 90, 9.1},
		{"p0 is min", []float64{3, 8, 12}, 0, 3},
		{"p100 is max", []float64{3, 8, 12}, 100, 12},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Percentile(tc.sorted, tc.p), 1e-9)
		})
	}
}

func TestGini(t *testing.T) {
	for _, tc := range []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5}, 0},
		{"perfectly equal", []float64{4, 4, 4, 4}, 0},
		{"all zero", []float64{0, 0, 0}, 0},
		{"one holds everything", []float64{0, 0, 0, 100}, 0.75},
		{"two equal", []float64{10, 10}, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Gini(tc.values), 1e-9)
		})
	}
}

func TestGiniBounds(t *testing.T) {
	samples := [][]float64{
		{1, 2, 3, 4, 5},
		{100, 1, 1, 1},
		{0.5, 0.5, 99},
		{7, 7, 7, 7, 7, 7, 0},
	}
	for _, vals := range samples {
		g := Gini(vals)
		assert.GreaterOrEqual(t, g, 0.0)
		assert.LessOrEqual(t, g, 1.0)
	}
}

func TestGiniOrderIndependence(t *testing.T) {
	a := Gini([]float64{5, 1, 9, 3})
	b := Gini([]float64{9, 3, 5, 1})
	assert.Equal(t, a, b)
}

func TestIsTestPath(t *testing.T) {
	for _, tc := range []struct {
		path string
		want bool
	}{
		{"pkg/agg/agg_test.go", true},
		{"tests/unit/check.py", true},
		{"src/__tests__/app.spec.ts", true},
		{"scripts/test_runner.py", true},
		{"src/app.ts", false},
		{"contest/entry.go", false},
		{"attest.go", false},
	} {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, isTestPath(tc.path))
		})
	}
}

func TestComputeTotals(t *testing.T) {
	records := []schema.FileRecord{
		{Path: "a.go", Code: 100, Comment: 20, Blank: 10, Bytes: 4000, TokenEstimate: 1000},
		{Path: "b.md", Code: 50, Comment: 0, Blank: 5, Bytes: 2000, TokenEstimate: 500},
		{Path: "b.md", Code: 8, Comment: 2, Blank: 0, IsEmbeddedChild: true},
	}

	rep := Compute(records)

	// Embedded children contribute lines but not files, bytes or tokens.
	assert.Equal(t, uint64(2), rep.Totals.Files)
	assert.Equal(t, uint64(158), rep.Totals.Code)
	assert.Equal(t, uint64(22), rep.Totals.Comment)
	assert.Equal(t, uint64(15), rep.Totals.Blank)
	assert.Equal(t, uint64(6000), rep.Totals.Bytes)
	assert.Equal(t, uint64(1500), rep.Totals.Tokens)
}

func TestComputeRatios(t *testing.T) {
	records := []schema.FileRecord{
		{Path: "src/main.go", Code: 300, Comment: 100, Blank: 100},
		{Path: "src/main_test.go", Code: 100},
	}

	rep := Compute(records)

	assert.InDelta(t, 0.2, rep.Ratios.DocDensity, 1e-9)   // 100 / 500
	assert.InDelta(t, 0.25, rep.Ratios.TestDensity, 1e-9) // 100 / 400
	assert.InDelta(t, 0.1667, rep.Ratios.WhitespaceDensity, 1e-9)
}

func TestComputeEmpty(t *testing.T) {
	rep := Compute(nil)

	assert.Equal(t, uint64(0), rep.Totals.Files)
	assert.Zero(t, rep.Ratios.DocDensity)
	assert.Zero(t, rep.Distribution.Gini)
	assert.Zero(t, rep.Cocomo.EffortMonths)
	assert.Len(t, rep.Distribution.Histogram, len(histogramBounds))
}

func TestCocomo(t *testing.T) {
	est := cocomo(10000) // 10 KLOC

	assert.InDelta(t, 26.9284, est.EffortMonths, 1e-3)
	assert.InDelta(t, 8.7382, est.ScheduleMonths, 1e-3)

	// Same input, same output.
	assert.Equal(t, est, cocomo(10000))
}

func TestHistogram(t *testing.T) {
	buckets := histogram([]float64{0, 50, 100, 250, 600, 5000})

	assert.Len(t, buckets, 5)
	assert.Equal(t, uint64(2), buckets[0].Count) // [0, 100)
	assert.Equal(t, uint64(2), buckets[1].Count) // [100, 300)
	assert.Equal(t, uint64(0), buckets[2].Count) // [300, 600)
	assert.Equal(t, uint64(1), buckets[3].Count) // [600, 1200)
	assert.Equal(t, uint64(1), buckets[4].Count) // [1200, inf)
	assert.Equal(t, uint64(0), buckets[4].Upper) // unbounded
}
