package derive

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// Maintainability index coefficients (SEI formula).
const (
	miBase       = 171.0
	miVolume     = 5.2
	miCyclomatic = 0.23
	miLines      = 16.2
	miMax        = 171.0
)

// branchTokens approximate a cyclomatic count without AST parsing.
var branchTokens = []string{
	"if ", "if(", "for ", "for(", "while ", "while(", "case ",
	"&&", "||", "catch ", "catch(", "elif ", "when ",
}

// funcTokens approximate a function count across common languages.
var funcTokens = []string{
	"func ", "fn ", "def ", "function ", "sub ", "proc ",
}

// ComputeComplexity scores every physical file with Halstead metrics, the
// maintainability index and an entropy class. Files whose content cannot
// be read, or whose logarithm inputs would be non-positive, are marked
// unscored instead of failing the whole report.
func ComputeComplexity(records []schema.FileRecord, src contract.FileSource, windowBytes int) *schema.ComplexityReport {
	files := make([]schema.FileComplexity, 0, len(records))
	gradeCounts := make(map[schema.Grade]uint64)
	entropyCounts := make(map[schema.EntropyClass]uint64)

	for _, r := range records {
		if r.IsEmbeddedChild {
			continue
		}

		fc := schema.FileComplexity{Path: r.Path}
		content, err := src.ReadWindow(r.Path, windowBytes)
		if err != nil {
			fc.Unscored = true
			fc.EntropyClass = schema.LowEntropy
			files = append(files, fc)
			entropyCounts[fc.EntropyClass]++
			continue
		}

		scoreFile(&fc, content)
		files = append(files, fc)
		entropyCounts[fc.EntropyClass]++
		if !fc.Unscored {
			gradeCounts[fc.Grade]++
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return &schema.ComplexityReport{
		Files:   files,
		Grades:  orderedGrades(gradeCounts),
		Entropy: orderedEntropy(entropyCounts),
	}
}

// scoreFile fills in all per-file complexity metrics from a content window.
func scoreFile(fc *schema.FileComplexity, content []byte) {
	fc.Entropy = Round4(Entropy(content))
	fc.EntropyClass = schema.ClassifyEntropy(fc.Entropy)

	h := countHalstead(content)
	fc.Volume = Round4(h.volume())
	fc.Difficulty = Round4(h.difficulty())
	fc.Effort = Round4(h.effort())

	text := string(content)
	fc.CyclomaticProxy = cyclomaticProxy(text)
	fc.AvgFuncLines = Round4(avgFuncLines(text))

	if fc.Volume <= 0 || fc.AvgFuncLines <= 0 {
		fc.Unscored = true
		return
	}

	mi := miBase - miVolume*math.Log(fc.Volume) - miCyclomatic*fc.CyclomaticProxy - miLines*math.Log(fc.AvgFuncLines)
	fc.Maintainability = Round4(math.Min(math.Max(mi, 0), miMax))
	fc.Grade = schema.GradeForMaintainability(fc.Maintainability)
}

// Entropy returns the Shannon entropy of the content in bits per byte,
// 0.0 for empty input.
func Entropy(content []byte) float64 {
	if len(content) == 0 {
		return 0
	}

	var freq [256]uint64
	for _, b := range content {
		freq[b]++
	}

	total := float64(len(content))
	var h float64
	for _, c := range freq {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}

// halsteadCounts holds distinct/total operator and operand tallies from
// a lightweight token scan. This is a proxy, not an AST walk.
type halsteadCounts struct {
	distinctOperators map[string]struct{}
	distinctOperands  map[string]struct{}
	totalOperators    uint64
	totalOperands     uint64
}

func (h *halsteadCounts) vocabulary() float64 {
	return float64(len(h.distinctOperators) + len(h.distinctOperands))
}

func (h *halsteadCounts) length() float64 {
	return float64(h.totalOperators + h.totalOperands)
}

func (h *halsteadCounts) volume() float64 {
	n := h.vocabulary()
	if n <= 0 {
		return 0
	}
	return h.length() * math.Log2(n)
}

func (h *halsteadCounts) difficulty() float64 {
	n2 := float64(len(h.distinctOperands))
	if n2 == 0 {
		return 0
	}
	return float64(len(h.distinctOperators)) / 2 * float64(h.totalOperands) / n2
}

func (h *halsteadCounts) effort() float64 {
	return h.difficulty() * h.volume()
}

// countHalstead scans content into operator and operand tallies.
// Identifiers and numbers count as operands; runs of symbol characters
// count as operators. Whitespace and quotes are separators.
func countHalstead(content []byte) *halsteadCounts {
	h := &halsteadCounts{
		distinctOperators: make(map[string]struct{}),
		distinctOperands:  make(map[string]struct{}),
	}

	var token strings.Builder
	flushOperand := func() {
		if token.Len() == 0 {
			return
		}
		h.distinctOperands[token.String()] = struct{}{}
		h.totalOperands++
		token.Reset()
	}

	for _, r := range string(content) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			token.WriteRune(r)
		case unicode.IsSpace(r) || r == '"' || r == '\'' || r == '`':
			flushOperand()
		default:
			flushOperand()
			op := string(r)
			h.distinctOperators[op] = struct{}{}
			h.totalOperators++
		}
	}
	flushOperand()
	return h
}

// cyclomaticProxy counts branch tokens plus one.
func cyclomaticProxy(text string) float64 {
	count := 1.0
	for _, tok := range branchTokens {
		count += float64(strings.Count(text, tok))
	}
	return count
}

// avgFuncLines approximates average lines per function. Files with no
// recognizable function declarations score their full line count.
func avgFuncLines(text string) float64 {
	lines := float64(strings.Count(text, "\n") + 1)
	var funcs float64
	for _, tok := range funcTokens {
		funcs += float64(strings.Count(text, tok))
	}
	if funcs == 0 {
		return lines
	}
	return lines / funcs
}

func orderedGrades(counts map[schema.Grade]uint64) []schema.GradeCount {
	out := make([]schema.GradeCount, 0, 3)
	for _, g := range []schema.Grade{schema.GradeA, schema.GradeB, schema.GradeC} {
		out = append(out, schema.GradeCount{Grade: g, Count: counts[g]})
	}
	return out
}

func orderedEntropy(counts map[schema.EntropyClass]uint64) []schema.EntropyCount {
	classes := []schema.EntropyClass{
		schema.LowEntropy, schema.MediumEntropy, schema.HighEntropy, schema.SuspiciousEntropy,
	}
	out := make([]schema.EntropyCount, 0, len(classes))
	for _, c := range classes {
		out = append(out, schema.EntropyCount{Class: c, Count: counts[c]})
	}
	return out
}
