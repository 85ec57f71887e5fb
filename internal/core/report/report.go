package report

import (
	"sort"

	"github.com/eisonai/devkit/internal/core/match"
	"github.com/eisonai/devkit/internal/core/scan"
	"github.com/eisonai/devkit/internal/domain"
)

// maxExamples caps the example paths listed per tree for unique contents
const maxExamples = 10

// Options configures which listings a report carries
type Options struct {
	// Algorithm and ChunkSize are echoed into the report
	Algorithm string
	ChunkSize int
	Ignore    []string

	// TopK is the number of ranked matches listed per file
	TopK int

	// AllPairs enables the |A|x|B| similarity listing
	AllPairs bool
}

// Side holds the statistics of one tree measured against the other
type Side struct {
	Root  string
	Files int
	Bytes int64

	// ReusableFiles counts files whose digest also exists in the other tree.
	// Duplicates inside this tree all count.
	ReusableFiles int
	ReusableBytes int64

	// OnlyUniqueContents counts digests absent from the other tree
	OnlyUniqueContents int
	// OnlyExamples lists up to 10 paths, ordered by digest
	OnlyExamples []string

	// WeightedBestSimilarity is sum(size*best similarity)/Bytes, 0 for an empty tree
	WeightedBestSimilarity float64

	// BestMatches maps each path to its best match in the other tree
	BestMatches map[string]domain.MatchResult

	// TopMatches lists ranked matches per file, sorted by path
	TopMatches []FileMatches
}

// FileMatches is the ranked match list of one file
type FileMatches struct {
	Path    string
	Matches []domain.MatchResult
}

// Pair is one cell of the all-pairs listing
type Pair struct {
	APath      string
	BPath      string
	Similarity float64
	Reason     domain.Reason
}

// Report is the full comparison of two trees
type Report struct {
	Algorithm string
	ChunkSize int
	Ignore    []string
	TopK      int

	A Side
	B Side

	// CommonUniqueContents is |digests(A) ∩ digests(B)|
	CommonUniqueContents int

	// AllPairs is nil unless requested
	AllPairs []Pair
}

// Builder aggregates two scanned trees into a Report
type Builder struct {
	matcher match.Matcher
}

// NewBuilder creates a builder using the given matcher
func NewBuilder(m match.Matcher) *Builder {
	if m == nil {
		m = match.NewDefaultMatcher()
	}
	return &Builder{matcher: m}
}

// Build computes every statistic of the report. It does not touch the filesystem.
func (b *Builder) Build(treeA, treeB *scan.Tree, opts Options) *Report {
	firstA := firstPathByDigest(treeA.Files)
	firstB := firstPathByDigest(treeB.Files)

	common := 0
	for digest := range firstA {
		if _, ok := firstB[digest]; ok {
			common++
		}
	}

	r := &Report{
		Algorithm:            opts.Algorithm,
		ChunkSize:            opts.ChunkSize,
		Ignore:               opts.Ignore,
		TopK:                 opts.TopK,
		A:                    b.side(treeA, treeB, firstA, firstB, opts.TopK),
		B:                    b.side(treeB, treeA, firstB, firstA, opts.TopK),
		CommonUniqueContents: common,
	}

	if opts.AllPairs {
		r.AllPairs = b.allPairs(treeA.Files, treeB.Files)
	}
	return r
}

// side measures tree against other
func (b *Builder) side(tree, other *scan.Tree, own, others map[string]string, topK int) Side {
	s := Side{
		Root:        tree.Root,
		Files:       len(tree.Files),
		Bytes:       tree.TotalBytes,
		BestMatches: make(map[string]domain.MatchResult, len(tree.Files)),
	}

	for _, f := range tree.Files {
		if _, ok := others[f.Digest]; ok {
			s.ReusableFiles++
			s.ReusableBytes += f.Size
		}
	}

	var unique []string
	for digest := range own {
		if _, ok := others[digest]; !ok {
			unique = append(unique, digest)
		}
	}
	sort.Strings(unique)
	s.OnlyUniqueContents = len(unique)
	for i := 0; i < len(unique) && i < maxExamples; i++ {
		s.OnlyExamples = append(s.OnlyExamples, own[unique[i]])
	}

	var weighted float64
	for _, f := range tree.Files {
		best := b.matcher.BestMatch(f, other.Files)
		s.BestMatches[f.Path] = best
		weighted += float64(f.Size) * best.Similarity
	}
	if tree.TotalBytes > 0 {
		s.WeightedBestSimilarity = weighted / float64(tree.TotalBytes)
	}

	sorted := make([]domain.FileRecord, len(tree.Files))
	copy(sorted, tree.Files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	for _, f := range sorted {
		s.TopMatches = append(s.TopMatches, FileMatches{
			Path:    f.Path,
			Matches: b.matcher.TopK(f, other.Files, topK),
		})
	}

	return s
}

// allPairs scores every file of a against every file of b
func (b *Builder) allPairs(a, other []domain.FileRecord) []Pair {
	pairs := make([]Pair, 0, len(a)*len(other))
	for _, fa := range a {
		for _, fb := range other {
			m := b.matcher.Similarity(fa, fb)
			pairs = append(pairs, Pair{
				APath:      fa.Path,
				BPath:      fb.Path,
				Similarity: m.Similarity,
				Reason:     m.Reason,
			})
		}
	}
	return pairs
}

// firstPathByDigest maps each digest to the first path discovered with it
func firstPathByDigest(files []domain.FileRecord) map[string]string {
	out := make(map[string]string, len(files))
	for _, f := range files {
		if _, ok := out[f.Digest]; !ok {
			out[f.Digest] = f.Path
		}
	}
	return out
}
