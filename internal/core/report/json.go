package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/eisonai/devkit/internal/domain"
)

// Compression selects the container of a written JSON report
type Compression uint8

const (
	// CompressionNone writes plain JSON
	CompressionNone Compression = iota
	// CompressionZstd writes a zstd frame, selected by a ".zst" suffix
	CompressionZstd
	// CompressionLZ4 writes an lz4 frame, selected by a ".lz4" suffix
	CompressionLZ4
)

// CompressionFor picks the compression from a path's extension
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

type matchJSON struct {
	OtherRel   *string `json:"other_rel"`
	Similarity float64 `json:"similarity"`
	Reason     string  `json:"reason"`
}

type pairJSON struct {
	ARel       string  `json:"a_rel"`
	BRel       string  `json:"b_rel"`
	Similarity float64 `json:"similarity"`
	Reason     string  `json:"reason"`
}

type document struct {
	Algo      string   `json:"algo"`
	ChunkSize int      `json:"chunk_size"`
	Ignore    []string `json:"ignore"`
	TopK      int      `json:"top_k"`

	DirA      string `json:"dir_a"`
	DirB      string `json:"dir_b"`
	DirAFiles int    `json:"dir_a_files"`
	DirBFiles int    `json:"dir_b_files"`
	DirABytes int64  `json:"dir_a_bytes"`
	DirBBytes int64  `json:"dir_b_bytes"`

	CommonUniqueContents int `json:"common_unique_contents"`

	DirAReusableFiles int   `json:"dir_a_reusable_files"`
	DirAReusableBytes int64 `json:"dir_a_reusable_bytes"`
	DirBReusableFiles int   `json:"dir_b_reusable_files"`
	DirBReusableBytes int64 `json:"dir_b_reusable_bytes"`

	DirAOnlyUniqueContents int      `json:"dir_a_only_unique_contents"`
	DirBOnlyUniqueContents int      `json:"dir_b_only_unique_contents"`
	DirAOnlyExamples       []string `json:"dir_a_only_examples"`
	DirBOnlyExamples       []string `json:"dir_b_only_examples"`

	DirAWeightedBestSimilarity float64 `json:"dir_a_weighted_best_similarity"`
	DirBWeightedBestSimilarity float64 `json:"dir_b_weighted_best_similarity"`

	DirABestMatches map[string]matchJSON   `json:"dir_a_best_matches"`
	DirBBestMatches map[string]matchJSON   `json:"dir_b_best_matches"`
	DirATopMatches  map[string][]matchJSON `json:"dir_a_top_matches"`
	DirBTopMatches  map[string][]matchJSON `json:"dir_b_top_matches"`

	AllPairs []pairJSON `json:"all_pairs"`
}

// MarshalJSON flattens the report into the dir_a_* / dir_b_* layout.
// Paths are written verbatim; '&', '<' and '>' are not escaped.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.document()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (r *Report) document() document {
	doc := document{
		Algo:      r.Algorithm,
		ChunkSize: r.ChunkSize,
		Ignore:    nonNil(r.Ignore),
		TopK:      r.TopK,

		DirA:      r.A.Root,
		DirB:      r.B.Root,
		DirAFiles: r.A.Files,
		DirBFiles: r.B.Files,
		DirABytes: r.A.Bytes,
		DirBBytes: r.B.Bytes,

		CommonUniqueContents: r.CommonUniqueContents,

		DirAReusableFiles: r.A.ReusableFiles,
		DirAReusableBytes: r.A.ReusableBytes,
		DirBReusableFiles: r.B.ReusableFiles,
		DirBReusableBytes: r.B.ReusableBytes,

		DirAOnlyUniqueContents: r.A.OnlyUniqueContents,
		DirBOnlyUniqueContents: r.B.OnlyUniqueContents,
		DirAOnlyExamples:       nonNil(r.A.OnlyExamples),
		DirBOnlyExamples:       nonNil(r.B.OnlyExamples),

		DirAWeightedBestSimilarity: r.A.WeightedBestSimilarity,
		DirBWeightedBestSimilarity: r.B.WeightedBestSimilarity,

		DirABestMatches: bestMatchesJSON(r.A.BestMatches),
		DirBBestMatches: bestMatchesJSON(r.B.BestMatches),
		DirATopMatches:  topMatchesJSON(r.A.TopMatches),
		DirBTopMatches:  topMatchesJSON(r.B.TopMatches),
	}

	if r.AllPairs != nil {
		doc.AllPairs = make([]pairJSON, 0, len(r.AllPairs))
		for _, p := range r.AllPairs {
			doc.AllPairs = append(doc.AllPairs, pairJSON{
				ARel:       p.APath,
				BRel:       p.BPath,
				Similarity: p.Similarity,
				Reason:     string(p.Reason),
			})
		}
	}

	return doc
}

func toMatchJSON(m domain.MatchResult) matchJSON {
	out := matchJSON{Similarity: m.Similarity, Reason: m.Label()}
	if m.HasOther() {
		other := m.OtherPath
		out.OtherRel = &other
	}
	return out
}

func bestMatchesJSON(in map[string]domain.MatchResult) map[string]matchJSON {
	out := make(map[string]matchJSON, len(in))
	for path, m := range in {
		out[path] = toMatchJSON(m)
	}
	return out
}

func topMatchesJSON(in []FileMatches) map[string][]matchJSON {
	out := make(map[string][]matchJSON, len(in))
	for _, fm := range in {
		list := make([]matchJSON, 0, len(fm.Matches))
		for _, m := range fm.Matches {
			list = append(list, toMatchJSON(m))
		}
		out[fm.Path] = list
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Encode writes the report as indented JSON followed by a newline
func Encode(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(r.document())
}

// WriteJSON writes the report to path, creating parent directories.
// The file is written to a temporary sibling first and renamed into place.
func WriteJSON(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}

	writeErr := encodeCompressed(file, r, CompressionFor(path))
	closeErr := file.Close()

	if writeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("writing report: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("writing report: %w", closeErr)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming report: %w", err)
	}
	return nil
}

func encodeCompressed(w io.Writer, r *Report, c Compression) error {
	switch c {
	case CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		if err := Encode(zw, r); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	case CompressionLZ4:
		lw := lz4.NewWriter(w)
		if err := Encode(lw, r); err != nil {
			lw.Close()
			return err
		}
		return lw.Close()
	default:
		return Encode(w, r)
	}
}
