package match

import (
	"sort"

	"github.com/eisonai/devkit/internal/domain"
)

// Matcher scores files of one tree against files of another
type Matcher interface {
	// Similarity compares two records
	Similarity(a, b domain.FileRecord) domain.MatchResult

	// BestMatch returns the single best candidate for entry
	BestMatch(entry domain.FileRecord, candidates []domain.FileRecord) domain.MatchResult

	// TopK returns up to k ranked candidates for entry
	TopK(entry domain.FileRecord, candidates []domain.FileRecord, k int) []domain.MatchResult
}

// DefaultMatcher uses whole-file digests first, then positional chunk overlap
type DefaultMatcher struct{}

// NewDefaultMatcher creates a new DefaultMatcher
func NewDefaultMatcher() *DefaultMatcher {
	return &DefaultMatcher{}
}

// Similarity implements the Matcher interface.
//
// Equal digests score 1.0 ("exact"). Otherwise chunk i of a is only compared
// with chunk i of b, and the count of equal chunks is divided by the longer
// chunk sequence, so a length mismatch always costs similarity.
func (m *DefaultMatcher) Similarity(a, b domain.FileRecord) domain.MatchResult {
	result := domain.MatchResult{
		OtherPath: b.Path,
		NameMatch: a.BaseName() == b.BaseName(),
	}

	if a.Digest == b.Digest {
		result.Similarity = 1.0
		result.Reason = domain.ReasonExact
		return result
	}

	// Unreachable for real files: empty inputs always share a digest
	if len(a.ChunkDigests) == 0 && len(b.ChunkDigests) == 0 {
		result.Reason = domain.ReasonEmpty
		return result
	}

	shorter := min(len(a.ChunkDigests), len(b.ChunkDigests))
	common := 0
	for i := 0; i < shorter; i++ {
		if a.ChunkDigests[i] == b.ChunkDigests[i] {
			common++
		}
	}

	result.Similarity = float64(common) / float64(max(len(a.ChunkDigests), len(b.ChunkDigests)))
	result.Reason = domain.ReasonChunk
	return result
}

// BestMatch implements the Matcher interface.
//
// The highest score wins. Among equal scores the first candidate seen wins,
// unless a later one shares the entry's base name and the current best does not.
func (m *DefaultMatcher) BestMatch(entry domain.FileRecord, candidates []domain.FileRecord) domain.MatchResult {
	if len(candidates) == 0 {
		return noCandidates()
	}

	best := domain.MatchResult{Similarity: -1}
	for _, candidate := range candidates {
		result := m.Similarity(entry, candidate)
		switch {
		case result.Similarity > best.Similarity:
			best = result
		case result.Similarity == best.Similarity && result.NameMatch && !best.NameMatch:
			best = result
		}
	}

	return best
}

// TopK implements the Matcher interface.
//
// Candidates are ranked by score, then by name bonus; ties keep scan order.
// When the best score is positive every zero-score candidate is dropped, so
// the list may be shorter than k. When the best score is zero the zero-score
// candidates are kept so callers still see what was compared.
func (m *DefaultMatcher) TopK(entry domain.FileRecord, candidates []domain.FileRecord, k int) []domain.MatchResult {
	scored := make([]domain.MatchResult, 0, len(candidates))
	for _, candidate := range candidates {
		scored = append(scored, m.Similarity(entry, candidate))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].NamePreferred() && !scored[j].NamePreferred()
	})

	if len(scored) > 0 && scored[0].Similarity > 0 {
		positive := scored[:0]
		for _, r := range scored {
			if r.Similarity > 0 {
				positive = append(positive, r)
			}
		}
		scored = positive
	}

	k = max(k, 0)
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// noCandidates is the result for an empty opposing tree
func noCandidates() domain.MatchResult {
	return domain.MatchResult{
		Similarity: 0,
		Reason:     domain.ReasonNoCandidates,
	}
}
