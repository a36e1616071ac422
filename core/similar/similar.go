// Package similar detects exact and near-duplicate file content.
package similar

import (
	"crypto/sha256"
	"encoding/hex"
	"hash/fnv"
	"sort"

	"github.com/repotally/repotally/core/derive"
	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// fileDigest holds the hashed content window for one physical file.
type fileDigest struct {
	path     string
	module   string
	language string
	digest   string
	shingles map[uint64]struct{}
}

// Compute hashes every physical file's content window and reports exact
// duplicate groups plus near-duplicate pairs within the configured scope.
// Unreadable files are skipped; output ordering is canonical regardless
// of discovery order.
func Compute(records []schema.FileRecord, src contract.FileSource, cfg *contract.Config) *schema.SimilarityReport {
	digests := make([]fileDigest, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.IsEmbeddedChild {
			continue
		}
		if _, dup := seen[r.Path]; dup {
			continue
		}
		seen[r.Path] = struct{}{}

		content, err := src.ReadWindow(r.Path, cfg.WindowBytes)
		if err != nil {
			continue
		}

		sum := sha256.Sum256(content)
		digests = append(digests, fileDigest{
			path:     r.Path,
			module:   r.ModuleKey,
			language: r.Language,
			digest:   hex.EncodeToString(sum[:]),
			shingles: shingleSet(content, cfg.ShingleSize),
		})
	}
	sort.Slice(digests, func(i, j int) bool { return digests[i].path < digests[j].path })

	return &schema.SimilarityReport{
		Scope:          cfg.SimilarityScope,
		Threshold:      cfg.SimilarityThreshold,
		ShingleSize:    cfg.ShingleSize,
		WindowBytes:    cfg.WindowBytes,
		ExactGroups:    exactGroups(digests),
		NearDuplicates: nearDuplicates(digests, cfg.SimilarityScope, cfg.SimilarityThreshold),
	}
}

// shingleSet hashes every k-byte window of the content. Content shorter
// than one shingle hashes as a single whole-content shingle.
func shingleSet(content []byte, k int) map[uint64]struct{} {
	set := make(map[uint64]struct{})
	if len(content) == 0 {
		return set
	}
	if len(content) < k {
		set[hashShingle(content)] = struct{}{}
		return set
	}
	for i := 0; i+k <= len(content); i++ {
		set[hashShingle(content[i:i+k])] = struct{}{}
	}
	return set
}

func hashShingle(b []byte) uint64 {
	h := fnv.New64a()
	h.Write(b)
	return h.Sum64()
}

// exactGroups collects digests shared by more than one path, ordered by
// digest with member paths sorted.
func exactGroups(digests []fileDigest) []schema.DuplicateGroup {
	byDigest := make(map[string][]string)
	for _, d := range digests {
		byDigest[d.digest] = append(byDigest[d.digest], d.path)
	}

	out := make([]schema.DuplicateGroup, 0)
	for digest, paths := range byDigest {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)
		out = append(out, schema.DuplicateGroup{Digest: digest, Paths: paths})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Digest < out[j].Digest })
	return out
}

// nearDuplicates compares path pairs within each scope group by shingle
// overlap. Exact duplicates are excluded; they already appear as groups.
func nearDuplicates(digests []fileDigest, scope schema.SimilarityScope, threshold float64) []schema.NearDuplicate {
	groups := make(map[string][]fileDigest)
	for _, d := range digests {
		groups[scopeKey(d, scope)] = append(groups[scopeKey(d, scope)], d)
	}

	out := make([]schema.NearDuplicate, 0)
	for _, group := range groups {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.digest == b.digest {
					continue
				}
				sim := shingleSimilarity(a.shingles, b.shingles)
				if sim >= threshold {
					out = append(out, schema.NearDuplicate{
						PathA:      a.path,
						PathB:      b.path,
						Similarity: derive.Round4(sim),
					})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PathA != out[j].PathA {
			return out[i].PathA < out[j].PathA
		}
		return out[i].PathB < out[j].PathB
	})
	return out
}

func scopeKey(d fileDigest, scope schema.SimilarityScope) string {
	switch scope {
	case schema.LanguageScope:
		return d.language
	case schema.GlobalScope:
		return ""
	default:
		return d.module
	}
}

// shingleSimilarity is the Jaccard index of the two shingle sets.
func shingleSimilarity(a, b map[uint64]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	var intersection int
	for s := range small {
		if _, ok := large[s]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
