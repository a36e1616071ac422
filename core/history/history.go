// Package history computes commit-history risk signals: hotspots, bus
// factor, freshness, co-change coupling, churn trends and commit intent.
package history

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/repotally/repotally/core/derive"
	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// Hotspot decay half-life in seconds (30 days). Ages are measured
// against the newest commit in the stream, never the wall clock, so
// the same history always yields the same scores.
const halfLifeSeconds = 30 * 24 * 60 * 60

// Cumulative author share that defines the bus factor.
const busFactorShare = 0.5

// Unavailable builds the degraded report emitted when history cannot
// be extracted. Consumers must never conflate this with empty signals.
func Unavailable(reason string) *schema.GitRiskReport {
	return &schema.GitRiskReport{Available: false, Reason: reason}
}

// Compute probes the history collaborator, streams commits once and
// folds them into the full risk report. Extraction failure degrades to
// an unavailable report instead of failing the caller.
func Compute(ctx context.Context, client contract.HistoryClient, repoPath string, records []schema.FileRecord, cfg *contract.Config) *schema.GitRiskReport {
	if !client.Probe(ctx, repoPath) {
		return Unavailable("commit history not detected")
	}

	iter, err := client.Stream(ctx, repoPath, cfg.Limits())
	if err != nil {
		return Unavailable(fmt.Sprintf("history extraction failed: %v", err))
	}
	defer iter.Close()

	report, err := Consume(iter, records, cfg.MinCoupling)
	if err != nil {
		return Unavailable(fmt.Sprintf("history stream failed: %v", err))
	}
	return report
}

// pathStats accumulates per-path signals during the single pass.
type pathStats struct {
	commits    uint64
	timestamps []int64
	lastTS     int64
}

// moduleStats accumulates per-module signals during the single pass.
type moduleStats struct {
	authorCommits map[string]uint64
	timestamps    []int64
	intents       schema.IntentCounts
}

// Consume folds the commit stream into a risk report in one pass.
// Commit paths are matched against the current file records; paths that
// no longer exist contribute to commit totals but to no signal.
func Consume(iter contract.CommitIter, records []schema.FileRecord, minCoupling int) (*schema.GitRiskReport, error) {
	pathModule := make(map[string]string, len(records))
	for _, r := range records {
		if !r.IsEmbeddedChild {
			pathModule[r.Path] = r.ModuleKey
		}
	}

	perPath := make(map[string]*pathStats)
	perModule := make(map[string]*moduleStats)
	pairCounts := make(map[[2]string]uint64)

	var commitsAnalyzed uint64
	var newest, oldest int64

	for {
		rec, ok, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		commitsAnalyzed++
		if newest == 0 || rec.Timestamp > newest {
			newest = rec.Timestamp
		}
		if oldest == 0 || rec.Timestamp < oldest {
			oldest = rec.Timestamp
		}

		known := make([]string, 0, len(rec.Paths))
		modules := make(map[string]struct{})
		for _, p := range rec.Paths {
			module, ok := pathModule[p]
			if !ok {
				continue
			}
			known = append(known, p)
			modules[module] = struct{}{}

			ps := perPath[p]
			if ps == nil {
				ps = &pathStats{}
				perPath[p] = ps
			}
			ps.commits++
			ps.timestamps = append(ps.timestamps, rec.Timestamp)
			if rec.Timestamp > ps.lastTS {
				ps.lastTS = rec.Timestamp
			}
		}

		intent := ClassifyIntent(rec.Subject)
		for module := range modules {
			ms := perModule[module]
			if ms == nil {
				ms = &moduleStats{authorCommits: make(map[string]uint64)}
				perModule[module] = ms
			}
			ms.authorCommits[rec.Author]++
			ms.timestamps = append(ms.timestamps, rec.Timestamp)
			ms.intents.Add(intent)
		}

		countPairs(pairCounts, known)
	}

	return &schema.GitRiskReport{
		Available:       true,
		CommitsAnalyzed: commitsAnalyzed,
		Truncated:       iter.Truncated(),
		Hotspots:        hotspots(perPath, newest),
		BusFactors:      busFactors(perModule),
		Freshness:       freshness(records, perPath, newest),
		Coupling:        coupling(pairCounts, perPath, commitsAnalyzed, minCoupling),
		Trends:          trends(perModule, oldest, newest),
		Intents:         intents(perModule),
	}, nil
}

// countPairs tallies every unordered pair of paths in one commit.
// Self-pairs are impossible since paths within a commit are distinct.
func countPairs(pairCounts map[[2]string]uint64, paths []string) {
	if len(paths) < 2 {
		return
	}
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			pairCounts[[2]string{sorted[i], sorted[j]}]++
		}
	}
}

// hotspots scores each path by decayed commit frequency. Every commit
// contributes a weight that halves per half-life of age relative to the
// newest commit, so the score grows with commit count and recency.
func hotspots(perPath map[string]*pathStats, newest int64) []schema.Hotspot {
	out := make([]schema.Hotspot, 0, len(perPath))
	for path, ps := range perPath {
		var score float64
		for _, ts := range ps.timestamps {
			age := float64(newest - ts)
			score += math.Pow(0.5, age/halfLifeSeconds)
		}
		out = append(out, schema.Hotspot{
			Path:    path,
			Commits: ps.commits,
			Score:   derive.Round4(score),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// busFactors computes, per module, the minimal number of authors whose
// cumulative commit share exceeds the dominance threshold.
func busFactors(perModule map[string]*moduleStats) []schema.BusFactor {
	out := make([]schema.BusFactor, 0, len(perModule))
	for module, ms := range perModule {
		var total uint64
		shares := make([]uint64, 0, len(ms.authorCommits))
		for _, c := range ms.authorCommits {
			total += c
			shares = append(shares, c)
		}
		sort.Slice(shares, func(i, j int) bool { return shares[i] > shares[j] })

		var cumulative uint64
		var factor uint64
		for _, c := range shares {
			cumulative += c
			factor++
			if float64(cumulative) > busFactorShare*float64(total) {
				break
			}
		}

		out = append(out, schema.BusFactor{
			Module:        module,
			AuthorCount:   uint64(len(ms.authorCommits)),
			BusFactor:     factor,
			DominantShare: derive.Ratio(float64(shares[0]), float64(total)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Module < out[j].Module })
	return out
}

// freshness reports the age of the newest commit touching each current
// path, measured against the newest commit in the stream. Paths with no
// history carry a null age.
func freshness(records []schema.FileRecord, perPath map[string]*pathStats, newest int64) []schema.Freshness {
	seen := make(map[string]struct{}, len(records))
	out := make([]schema.Freshness, 0, len(records))
	for _, r := range records {
		if r.IsEmbeddedChild {
			continue
		}
		if _, dup := seen[r.Path]; dup {
			continue
		}
		seen[r.Path] = struct{}{}

		f := schema.Freshness{Path: r.Path}
		if ps, ok := perPath[r.Path]; ok {
			age := newest - ps.lastTS
			f.AgeSeconds = &age
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// coupling emits co-change pairs at or above the minimum co-occurrence
// count with Jaccard and Lift strength.
func coupling(pairCounts map[[2]string]uint64, perPath map[string]*pathStats, total uint64, minCoupling int) []schema.CouplingPair {
	out := make([]schema.CouplingPair, 0)
	for pair, co := range pairCounts {
		if co < uint64(minCoupling) {
			continue
		}
		countA := perPath[pair[0]].commits
		countB := perPath[pair[1]].commits
		union := countA + countB - co

		var jaccard, lift float64
		if union > 0 {
			jaccard = derive.Round4(float64(co) / float64(union))
		}
		if countA > 0 && countB > 0 && total > 0 {
			lift = derive.Round4(float64(co) * float64(total) / (float64(countA) * float64(countB)))
		}

		out = append(out, schema.CouplingPair{
			PathA:         pair[0],
			PathB:         pair[1],
			CoOccurrences: co,
			Jaccard:       jaccard,
			Lift:          lift,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PathA != out[j].PathA {
			return out[i].PathA < out[j].PathA
		}
		return out[i].PathB < out[j].PathB
	})
	return out
}

// intents serializes per-module intent tallies in module order.
func intents(perModule map[string]*moduleStats) []schema.IntentCounts {
	out := make([]schema.IntentCounts, 0, len(perModule))
	for module, ms := range perModule {
		ic := ms.intents
		ic.Module = module
		out = append(out, ic)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Module < out[j].Module })
	return out
}
