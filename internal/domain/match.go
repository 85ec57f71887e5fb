package domain

// Reason explains how a similarity score was obtained
type Reason string

const (
	// ReasonExact means the full digests are equal
	ReasonExact Reason = "exact"

	// ReasonChunk means the score comes from positional chunk overlap
	ReasonChunk Reason = "chunk"

	// ReasonEmpty means both files have no chunks but different digests.
	// Digests of two empty inputs are always equal, so real files never land here.
	ReasonEmpty Reason = "empty"

	// ReasonNoCandidates means the opposing tree had nothing to compare against
	ReasonNoCandidates Reason = "no-candidates"
)

// nameSuffix marks a non-exact match whose base name equals the entry's
const nameSuffix = "+name"

// MatchResult is the similarity of one file against another.
// It is derived on demand and never stored.
type MatchResult struct {
	// OtherPath is the matched file in the opposing tree, empty when there is none
	OtherPath string

	// Similarity in [0,1]
	Similarity float64

	// Reason tags how Similarity was computed
	Reason Reason

	// NameMatch is set when both files share the same base name
	NameMatch bool
}

// HasOther reports whether the result points at a file
func (m MatchResult) HasOther() bool {
	return m.OtherPath != ""
}

// Label returns the reason as printed in reports, e.g. "chunk+name".
// Exact matches never carry the name suffix.
func (m MatchResult) Label() string {
	if m.NameMatch && m.Reason != ReasonExact && m.Reason != ReasonNoCandidates {
		return string(m.Reason) + nameSuffix
	}
	return string(m.Reason)
}

// NamePreferred reports whether the result ranks ahead of an equal-score
// result without the name bonus.
func (m MatchResult) NamePreferred() bool {
	return m.NameMatch && m.Reason != ReasonExact && m.Reason != ReasonNoCandidates
}
