// Package derive computes density, distribution, effort and complexity
// statistics over the aggregated file records.
package derive

import (
	"math"
	"sort"
	"strings"

	"github.com/repotally/repotally/schema"
)

// Organic-mode COCOMO coefficients.
const (
	cocomoA = 2.4
	cocomoB = 1.05
	cocomoC = 2.5
	cocomoD = 0.38
)

// histogramBounds are the code-size bucket boundaries. The last bucket
// is unbounded.
var histogramBounds = []uint64{0, 100, 300, 600, 1200}

// Ratio returns num/den rounded to 4 decimal places for stable
// serialization, or 0 when the denominator is 0. It never divides by zero.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return Round4(num / den)
}

// Round4 rounds to 4 decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Percentile returns the p-th percentile of the sorted values using
// linear interpolation. p is in [0, 100].
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Gini calculates the Lorenz-curve inequality coefficient for a set of
// non-negative values: 0 is perfectly equal, 1 maximally unequal.
// Defined as 0 for empty and single-element sequences.
func Gini(values []float64) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var total, weighted float64
	for i, v := range sorted {
		total += v
		weighted += float64(i+1) * v
	}
	if total == 0 {
		return 0
	}

	g := (2*weighted)/(float64(n)*total) - float64(n+1)/float64(n)
	return math.Min(math.Max(g, 0), 1) // clamp to [0,1]
}

// Compute builds the derived report from the normalized records.
// The result is a pure function of its input; no randomness, no clock.
func Compute(records []schema.FileRecord) *schema.DerivedReport {
	totals := computeTotals(records)

	var testCode uint64
	codes := make([]float64, 0, len(records))
	for _, r := range records {
		if r.IsEmbeddedChild {
			continue
		}
		codes = append(codes, float64(r.Code))
		if isTestPath(r.Path) {
			testCode += r.Code
		}
	}
	sort.Float64s(codes)

	allLines := totals.Code + totals.Comment + totals.Blank

	return &schema.DerivedReport{
		Totals: totals,
		Ratios: schema.Ratios{
			DocDensity:        Ratio(float64(totals.Comment), float64(totals.Code+totals.Comment)),
			TestDensity:       Ratio(float64(testCode), float64(totals.Code)),
			WhitespaceDensity: Ratio(float64(totals.Blank), float64(allLines)),
		},
		Distribution: schema.Distribution{
			P50:       Round4(Percentile(codes, 50)),
			P90:       Round4(Percentile(codes, 90)),
			P99:       Round4(Percentile(codes, 99)),
			Gini:      Round4(Gini(codes)),
			Histogram: histogram(codes),
		},
		Cocomo: cocomo(totals.Code),
	}
}

func computeTotals(records []schema.FileRecord) schema.Totals {
	var t schema.Totals
	for _, r := range records {
		t.Code += r.Code
		t.Comment += r.Comment
		t.Blank += r.Blank
		if !r.IsEmbeddedChild {
			t.Files++
			t.Bytes += r.Bytes
			t.Tokens += r.TokenEstimate
		}
	}
	return t
}

// isTestPath reports whether a path looks like test code.
func isTestPath(path string) bool {
	base := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		base = path[idx+1:]
	}
	if strings.Contains(base, "_test.") || strings.HasPrefix(base, "test_") || strings.HasSuffix(base, ".spec.js") || strings.HasSuffix(base, ".spec.ts") {
		return true
	}
	for seg := range strings.SplitSeq(path, "/") {
		if seg == "test" || seg == "tests" || seg == "__tests__" {
			return true
		}
	}
	return false
}

func histogram(codes []float64) []schema.HistogramBucket {
	buckets := make([]schema.HistogramBucket, len(histogramBounds))
	for i, lower := range histogramBounds {
		buckets[i].Lower = lower
		if i+1 < len(histogramBounds) {
			buckets[i].Upper = histogramBounds[i+1]
		}
	}

	for _, c := range codes {
		for i := len(buckets) - 1; i >= 0; i-- {
			if c >= float64(buckets[i].Lower) {
				buckets[i].Count++
				break
			}
		}
	}
	return buckets
}

// cocomo applies the organic-mode parametric formula over total code lines.
func cocomo(code uint64) schema.CocomoEstimate {
	if code == 0 {
		return schema.CocomoEstimate{}
	}
	kloc := float64(code) / 1000.0
	effort := cocomoA * math.Pow(kloc, cocomoB)
	schedule := cocomoC * math.Pow(effort, cocomoD)
	return schema.CocomoEstimate{
		EffortMonths:   Round4(effort),
		ScheduleMonths: Round4(schedule),
	}
}
