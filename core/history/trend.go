package history

import (
	"math"
	"sort"
	"strings"

	"github.com/repotally/repotally/core/derive"
	"github.com/repotally/repotally/schema"
)

// Churn-trend classification thresholds. Per-bucket commit counts are
// normalized by their mean before comparison, so repositories of any
// activity level classify the same way.
const (
	trendBuckets       = 8
	trendSlopeCutoff   = 0.1 // relative slope beyond which rising/falling
	trendVolatilityCut = 1.0 // coefficient of variation beyond which volatile
)

// trends classifies each module's commit-rate trajectory across fixed
// time buckets spanning the observed history.
func trends(perModule map[string]*moduleStats, oldest, newest int64) []schema.ChurnTrend {
	out := make([]schema.ChurnTrend, 0, len(perModule))
	for module, ms := range perModule {
		class, slope := classifyTrend(ms.timestamps, oldest, newest)
		out = append(out, schema.ChurnTrend{
			Module: module,
			Class:  class,
			Slope:  derive.Round4(slope),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Module < out[j].Module })
	return out
}

// classifyTrend buckets commit timestamps over [oldest, newest] and
// compares the least-squares slope and coefficient of variation of the
// per-bucket counts against fixed cutoffs.
func classifyTrend(timestamps []int64, oldest, newest int64) (schema.TrendClass, float64) {
	span := newest - oldest
	if len(timestamps) == 0 || span <= 0 {
		return schema.StableTrend, 0
	}

	counts := make([]float64, trendBuckets)
	width := float64(span) / trendBuckets
	for _, ts := range timestamps {
		idx := int(float64(ts-oldest) / width)
		if idx >= trendBuckets {
			idx = trendBuckets - 1
		}
		counts[idx]++
	}

	mean := float64(len(timestamps)) / trendBuckets
	slope := leastSquaresSlope(counts)
	relSlope := slope / mean

	var variance float64
	for _, c := range counts {
		variance += (c - mean) * (c - mean)
	}
	variance /= trendBuckets

	if math.Sqrt(variance)/mean > trendVolatilityCut {
		return schema.VolatileTrend, relSlope
	}
	if relSlope > trendSlopeCutoff {
		return schema.RisingTrend, relSlope
	}
	if relSlope < -trendSlopeCutoff {
		return schema.FallingTrend, relSlope
	}
	return schema.StableTrend, relSlope
}

// leastSquaresSlope fits counts against their bucket index.
func leastSquaresSlope(counts []float64) float64 {
	n := float64(len(counts))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range counts {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// ClassifyIntent parses a commit subject against the conventional-prefix
// patterns in declaration order. The prefix may carry a scope and a
// breaking-change marker, e.g. "feat(agg)!: fold modules". First match
// wins; anything unmatched is OtherIntent.
func ClassifyIntent(subject string) schema.IntentKind {
	subject = strings.TrimSpace(strings.ToLower(subject))
	colon := strings.Index(subject, ":")
	if colon < 0 {
		return schema.OtherIntent
	}

	prefix := subject[:colon]
	if open := strings.Index(prefix, "("); open >= 0 {
		if !strings.HasSuffix(strings.TrimSuffix(prefix, "!"), ")") {
			return schema.OtherIntent
		}
		prefix = prefix[:open]
	}
	prefix = strings.TrimSuffix(prefix, "!")

	for _, kind := range schema.OrderedIntents {
		if kind == schema.OtherIntent {
			break
		}
		if prefix == string(kind) {
			return kind
		}
	}
	return schema.OtherIntent
}
