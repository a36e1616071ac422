package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

const day = int64(24 * 60 * 60)

// base is an arbitrary fixed epoch; signals never depend on the wall clock.
const base = int64(1_700_000_000)

func fileRecords() []schema.FileRecord {
	return []schema.FileRecord{
		{Path: "core/a.go", Language: "Go", ModuleKey: "core"},
		{Path: "core/b.go", Language: "Go", ModuleKey: "core"},
		{Path: "docs/guide.md", Language: "Markdown", ModuleKey: "docs"},
		{Path: "README.md", Language: "Markdown", ModuleKey: schema.RootModuleKey},
	}
}

func commit(ts int64, author, subject string, paths ...string) schema.CommitRecord {
	return schema.CommitRecord{Timestamp: ts, Author: author, Subject: subject, Paths: paths}
}

func TestConsumeBasic(t *testing.T) {
	iter := &contract.SliceCommitIter{Commits: []schema.CommitRecord{
		commit(base+2*day, "alice", "feat: add b", "core/a.go", "core/b.go"),
		commit(base+day, "alice", "fix: patch a", "core/a.go"),
		commit(base, "bob", "docs: first guide", "docs/guide.md", "deleted/old.go"),
	}}

	rep, err := Consume(iter, fileRecords(), 1)
	require.NoError(t, err)

	assert.True(t, rep.Available)
	assert.Empty(t, rep.Reason)
	assert.Equal(t, uint64(3), rep.CommitsAnalyzed)
	assert.False(t, rep.Truncated)

	// Hotspots cover only paths still in the tree, highest score first.
	require.Len(t, rep.Hotspots, 3)
	assert.Equal(t, "core/a.go", rep.Hotspots[0].Path)
	assert.Equal(t, uint64(2), rep.Hotspots[0].Commits)
	for _, h := range rep.Hotspots {
		assert.NotEqual(t, "deleted/old.go", h.Path)
	}
}

func TestConsumeEmptyStream(t *testing.T) {
	rep, err := Consume(&contract.SliceCommitIter{}, fileRecords(), 1)
	require.NoError(t, err)

	assert.True(t, rep.Available)
	assert.Equal(t, uint64(0), rep.CommitsAnalyzed)
	assert.Empty(t, rep.Hotspots)
	assert.Len(t, rep.Freshness, 4) // every current path, all ages null
	for _, f := range rep.Freshness {
		assert.Nil(t, f.AgeSeconds)
	}
}

func TestConsumeStreamError(t *testing.T) {
	iter := &contract.SliceCommitIter{Err: errors.New("broken pipe")}
	_, err := Consume(iter, fileRecords(), 1)
	assert.Error(t, err)
}

func TestHotspotRecencyWeighting(t *testing.T) {
	// Same commit count; one path changed recently, one long ago.
	iter := &contract.SliceCommitIter{Commits: []schema.CommitRecord{
		commit(base+100*day, "alice", "feat: recent", "core/a.go"),
		commit(base+99*day, "alice", "feat: recent", "core/a.go"),
		commit(base+day, "alice", "feat: ancient", "core/b.go"),
		commit(base, "alice", "feat: ancient", "core/b.go"),
	}}

	rep, err := Consume(iter, fileRecords(), 1)
	require.NoError(t, err)

	require.Len(t, rep.Hotspots, 2)
	assert.Equal(t, "core/a.go", rep.Hotspots[0].Path)
	assert.Greater(t, rep.Hotspots[0].Score, rep.Hotspots[1].Score)
}

func TestHotspotMonotonicInCommitCount(t *testing.T) {
	commits := []schema.CommitRecord{
		commit(base, "alice", "fix: both", "core/a.go", "core/b.go"),
		commit(base, "alice", "fix: a only", "core/a.go"),
	}

	rep, err := Consume(&contract.SliceCommitIter{Commits: commits}, fileRecords(), 1)
	require.NoError(t, err)

	require.Len(t, rep.Hotspots, 2)
	assert.Equal(t, "core/a.go", rep.Hotspots[0].Path)
	assert.Greater(t, rep.Hotspots[0].Score, rep.Hotspots[1].Score)
}

func TestBusFactor(t *testing.T) {
	for _, tc := range []struct {
		name        string
		commits     []schema.CommitRecord
		wantFactor  uint64
		wantAuthors uint64
	}{
		{
			name: "single author equals one",
			commits: []schema.CommitRecord{
				commit(base, "alice", "feat: a", "core/a.go"),
				commit(base+day, "alice", "fix: a", "core/a.go"),
			},
			wantFactor:  1,
			wantAuthors: 1,
		},
		{
			name: "dominant author equals one",
			commits: []schema.CommitRecord{
				commit(base, "alice", "feat: a", "core/a.go"),
				commit(base+day, "alice", "fix: a", "core/a.go"),
				commit(base+2*day, "alice", "fix: b", "core/b.go"),
				commit(base+3*day, "bob", "docs: note", "core/a.go"),
			},
			wantFactor:  1,
			wantAuthors: 2,
		},
		{
			name: "even split needs two",
			commits: []schema.CommitRecord{
				commit(base, "alice", "feat: a", "core/a.go"),
				commit(base+day, "bob", "fix: a", "core/a.go"),
			},
			wantFactor:  2,
			wantAuthors: 2,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rep, err := Consume(&contract.SliceCommitIter{Commits: tc.commits}, fileRecords(), 1)
			require.NoError(t, err)

			require.NotEmpty(t, rep.BusFactors)
			bf := rep.BusFactors[0]
			assert.Equal(t, "core", bf.Module)
			assert.Equal(t, tc.wantFactor, bf.BusFactor)
			assert.Equal(t, tc.wantAuthors, bf.AuthorCount)
		})
	}
}

func TestFreshness(t *testing.T) {
	iter := &contract.SliceCommitIter{Commits: []schema.CommitRecord{
		commit(base+10*day, "alice", "feat: latest", "core/a.go"),
		commit(base, "alice", "feat: older", "core/a.go", "core/b.go"),
	}}

	rep, err := Consume(iter, fileRecords(), 1)
	require.NoError(t, err)

	ages := make(map[string]*int64)
	for _, f := range rep.Freshness {
		ages[f.Path] = f.AgeSeconds
	}

	require.NotNil(t, ages["core/a.go"])
	assert.Equal(t, int64(0), *ages["core/a.go"]) // newest commit itself
	require.NotNil(t, ages["core/b.go"])
	assert.Equal(t, 10*day, *ages["core/b.go"])
	assert.Nil(t, ages["README.md"]) // never committed
}

func TestCoupling(t *testing.T) {
	iter := &contract.SliceCommitIter{Commits: []schema.CommitRecord{
		commit(base, "alice", "feat: pair", "core/a.go", "core/b.go"),
		commit(base+day, "alice", "fix: pair", "core/b.go", "core/a.go"),
		commit(base+2*day, "alice", "fix: a alone", "core/a.go"),
		commit(base+3*day, "bob", "docs: guide", "docs/guide.md", "core/a.go"),
	}}

	rep, err := Consume(iter, fileRecords(), 2)
	require.NoError(t, err)

	// Only the a/b pair reaches the minimum co-occurrence count.
	require.Len(t, rep.Coupling, 1)
	pair := rep.Coupling[0]
	assert.Equal(t, "core/a.go", pair.PathA)
	assert.Equal(t, "core/b.go", pair.PathB)
	assert.Equal(t, uint64(2), pair.CoOccurrences)
	assert.InDelta(t, 0.5, pair.Jaccard, 1e-9) // 2 / (4 + 2 - 2)
	assert.InDelta(t, 1.0, pair.Lift, 1e-9)    // 2 * 4 / (4 * 2)
}

func TestCouplingJaccardBounds(t *testing.T) {
	iter := &contract.SliceCommitIter{Commits: []schema.CommitRecord{
		commit(base, "alice", "feat: all", "core/a.go", "core/b.go", "docs/guide.md"),
		commit(base+day, "alice", "fix: all", "core/a.go", "core/b.go", "docs/guide.md"),
	}}

	rep, err := Consume(iter, fileRecords(), 1)
	require.NoError(t, err)

	require.NotEmpty(t, rep.Coupling)
	for _, p := range rep.Coupling {
		assert.GreaterOrEqual(t, p.Jaccard, 0.0)
		assert.LessOrEqual(t, p.Jaccard, 1.0)
		assert.NotEqual(t, p.PathA, p.PathB) // no self-pairs
		assert.Less(t, p.PathA, p.PathB)
	}
}

func TestChurnTrend(t *testing.T) {
	// Commit rate grows steadily toward the present.
	offsets := []int64{0, 10, 20, 21, 30, 31, 40, 41, 42, 50, 51, 52, 60, 61, 62, 63, 70, 71, 72, 80}
	rising := make([]schema.CommitRecord, 0, len(offsets))
	for _, off := range offsets {
		rising = append(rising, commit(base+off*day, "alice", "feat: grow", "core/a.go"))
	}

	rep, err := Consume(&contract.SliceCommitIter{Commits: rising}, fileRecords(), 1)
	require.NoError(t, err)

	require.Len(t, rep.Trends, 1)
	assert.Equal(t, "core", rep.Trends[0].Module)
	assert.Equal(t, schema.RisingTrend, rep.Trends[0].Class)
	assert.Greater(t, rep.Trends[0].Slope, 0.0)
}

func TestClassifyTrendDegenerate(t *testing.T) {
	class, slope := classifyTrend(nil, 0, 0)
	assert.Equal(t, schema.StableTrend, class)
	assert.Zero(t, slope)

	// A single commit has no span to trend over.
	class, _ = classifyTrend([]int64{base}, base, base)
	assert.Equal(t, schema.StableTrend, class)
}

func TestClassifyIntent(t *testing.T) {
	for _, tc := range []struct {
		subject string
		want    schema.IntentKind
	}{
		{"feat: add aggregation", schema.FeatIntent},
		{"feat(core)!: breaking fold", schema.FeatIntent},
		{"Fix: off by one", schema.FixIntent},
		{"refactor(history): split trend", schema.RefactorIntent},
		{"docs: usage", schema.DocsIntent},
		{"test: cover gini", schema.TestIntent},
		{"chore: bump deps", schema.ChoreIntent},
		{"ci: cache modules", schema.CIIntent},
		{"update readme", schema.OtherIntent},
		{"feature: not conventional", schema.OtherIntent},
		{"fixing things: loosely", schema.OtherIntent},
		{"", schema.OtherIntent},
	} {
		t.Run(tc.subject, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyIntent(tc.subject))
		})
	}
}

func TestIntentTallies(t *testing.T) {
	iter := &contract.SliceCommitIter{Commits: []schema.CommitRecord{
		commit(base, "alice", "feat: one", "core/a.go"),
		commit(base+day, "alice", "feat: two", "core/a.go"),
		commit(base+2*day, "bob", "fix: patch", "core/a.go"),
		commit(base+3*day, "bob", "no prefix here", "docs/guide.md"),
	}}

	rep, err := Consume(iter, fileRecords(), 1)
	require.NoError(t, err)

	require.Len(t, rep.Intents, 2)
	assert.Equal(t, "core", rep.Intents[0].Module)
	assert.Equal(t, uint64(2), rep.Intents[0].Feat)
	assert.Equal(t, uint64(1), rep.Intents[0].Fix)
	assert.Equal(t, "docs", rep.Intents[1].Module)
	assert.Equal(t, uint64(1), rep.Intents[1].Other)
}

func TestComputeUnavailable(t *testing.T) {
	cfg := &contract.Config{MinCoupling: 1, MaxCommits: 100, MaxCommitFiles: 10}

	rep := Compute(context.Background(), &contract.MockHistoryClient{Available: false}, "/repo", fileRecords(), cfg)
	assert.False(t, rep.Available)
	assert.NotEmpty(t, rep.Reason)
	assert.Empty(t, rep.Hotspots)
}

func TestComputeStreamFailure(t *testing.T) {
	client := &contract.MockHistoryClient{Available: true, StreamErr: errors.New("spawn failed")}
	cfg := &contract.Config{MinCoupling: 1, MaxCommits: 100, MaxCommitFiles: 10}

	rep := Compute(context.Background(), client, "/repo", fileRecords(), cfg)
	assert.False(t, rep.Available)
	assert.Contains(t, rep.Reason, "spawn failed")
}

func TestComputeTruncation(t *testing.T) {
	commits := make([]schema.CommitRecord, 5)
	for i := range commits {
		commits[i] = commit(base+int64(i)*day, "alice", "fix: n", "core/a.go")
	}
	client := &contract.MockHistoryClient{Available: true, Commits: commits}
	cfg := &contract.Config{MinCoupling: 1, MaxCommits: 3, MaxCommitFiles: 10}

	rep := Compute(context.Background(), client, "/repo", fileRecords(), cfg)
	assert.True(t, rep.Available)
	assert.True(t, rep.Truncated)
	assert.Equal(t, uint64(3), rep.CommitsAnalyzed)
}
