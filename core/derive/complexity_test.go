package derive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

const goSample = `package main

func main() {
	if x > 0 {
		print(x)
	}
}
`

func TestEntropy(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content []byte
		want    float64
	}{
		{"empty", nil, 0},
		{"single byte class", []byte("aaaa"), 0},
		{"two balanced classes", []byte("abab"), 1},
		{"four balanced classes", []byte("abcd"), 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Entropy(tc.content), 1e-9)
		})
	}
}

func TestEntropyBounds(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}

	// A uniform byte distribution is the 8-bit maximum.
	assert.InDelta(t, 8.0, Entropy(all), 1e-9)
	assert.GreaterOrEqual(t, Entropy([]byte(goSample)), 0.0)
	assert.LessOrEqual(t, Entropy([]byte(goSample)), 8.0)
}

func TestCountHalstead(t *testing.T) {
	h := countHalstead([]byte("x = x + 1"))

	// Operands: x (twice), 1. Operators: =, +.
	assert.Len(t, h.distinctOperands, 2)
	assert.Equal(t, uint64(3), h.totalOperands)
	assert.Len(t, h.distinctOperators, 2)
	assert.Equal(t, uint64(2), h.totalOperators)
	assert.Greater(t, h.volume(), 0.0)
}

func TestCyclomaticProxy(t *testing.T) {
	assert.Equal(t, 1.0, cyclomaticProxy("plain text"))
	assert.Equal(t, 3.0, cyclomaticProxy("if a { } else if b { }"))
	assert.Equal(t, 2.0, cyclomaticProxy("a && b"))
}

func TestAvgFuncLines(t *testing.T) {
	noFuncs := "line one\nline two\nline three"
	assert.InDelta(t, 3.0, avgFuncLines(noFuncs), 1e-9)

	twoFuncs := strings.Repeat("x\n", 9) + "func a() {}\nfunc b() {}"
	assert.InDelta(t, 5.5, avgFuncLines(twoFuncs), 1e-9)
}

func TestComputeComplexity(t *testing.T) {
	src := &contract.MockFileSource{
		Contents: map[string][]byte{
			"main.go": []byte(goSample),
		},
	}
	records := []schema.FileRecord{
		{Path: "main.go", Language: "Go", Code: 6},
		{Path: "missing.go", Language: "Go", Code: 3},
		{Path: "main.go", Language: "Shell", IsEmbeddedChild: true},
	}

	rep := ComputeComplexity(records, src, 1024)

	// Embedded children are skipped; physical files stay sorted by path.
	assert.Len(t, rep.Files, 2)
	assert.Equal(t, "main.go", rep.Files[0].Path)
	assert.Equal(t, "missing.go", rep.Files[1].Path)

	scored := rep.Files[0]
	assert.False(t, scored.Unscored)
	assert.Greater(t, scored.Volume, 0.0)
	assert.Greater(t, scored.Maintainability, 0.0)
	assert.LessOrEqual(t, scored.Maintainability, 171.0)
	assert.Contains(t, []schema.Grade{schema.GradeA, schema.GradeB, schema.GradeC}, scored.Grade)

	assert.True(t, rep.Files[1].Unscored)
}

func TestComputeComplexityTallies(t *testing.T) {
	src := &contract.MockFileSource{
		Contents: map[string][]byte{
			"a.go": []byte(goSample),
			"b.go": []byte(goSample),
		},
	}
	records := []schema.FileRecord{
		{Path: "a.go", Language: "Go"},
		{Path: "b.go", Language: "Go"},
		{Path: "gone.go", Language: "Go"},
	}

	rep := ComputeComplexity(records, src, 1024)

	var graded uint64
	for _, g := range rep.Grades {
		graded += g.Count
	}
	assert.Equal(t, uint64(2), graded) // unscored files carry no grade

	var classed uint64
	for _, e := range rep.Entropy {
		classed += e.Count
	}
	assert.Equal(t, uint64(3), classed)
}

func TestComputeComplexityDeterministic(t *testing.T) {
	src := &contract.MockFileSource{
		Contents: map[string][]byte{
			"a.go": []byte(goSample),
			"b.py": []byte("def f():\n    return 1\n"),
		},
	}
	records := []schema.FileRecord{
		{Path: "b.py", Language: "Python"},
		{Path: "a.go", Language: "Go"},
	}

	first := ComputeComplexity(records, src, 1024)
	second := ComputeComplexity(records, src, 1024)
	assert.Equal(t, first, second)
}
