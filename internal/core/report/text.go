package report

import (
	"fmt"
	"io"

	"github.com/eisonai/devkit/internal/progress"
)

// printer keeps the first write error so rendering code stays linear
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) linef(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

// WriteText renders the human-readable report
func WriteText(w io.Writer, r *Report) error {
	p := &printer{w: w}

	writeTreeHeader(p, "A", r.A)
	writeTreeHeader(p, "B", r.B)
	p.linef("---")

	p.linef("Common unique contents (by %s): %d", r.Algorithm, r.CommonUniqueContents)
	writeReusable(p, "A -> B", r.A)
	writeReusable(p, "B -> A", r.B)
	p.linef("---")

	writeUnique(p, "A", r.A)
	writeUnique(p, "B", r.B)
	p.linef("---")

	p.linef("A best-match similarity (bytes-weighted): %s", percent(r.A.WeightedBestSimilarity))
	p.linef("B best-match similarity (bytes-weighted): %s", percent(r.B.WeightedBestSimilarity))
	p.linef("---")

	writePerFile(p, "A -> B", r.A)
	p.linef("---")
	writePerFile(p, "B -> A", r.B)

	return p.err
}

func writeTreeHeader(p *printer, label string, s Side) {
	p.linef("%s: %s", label, s.Root)
	p.linef("  - files: %d", s.Files)
	p.linef("  - bytes: %d (%s)", s.Bytes, progress.FormatBytes(s.Bytes))
}

func writeReusable(p *printer, label string, s Side) {
	p.linef("%s reusable: %d/%d files, %d/%d bytes (%s)",
		label, s.ReusableFiles, s.Files, s.ReusableBytes, s.Bytes, ratio(s.ReusableBytes, s.Bytes))
}

func writeUnique(p *printer, label string, s Side) {
	p.linef("%s-only unique contents: %d", label, s.OnlyUniqueContents)
	for _, example := range s.OnlyExamples {
		p.linef("  - %s", example)
	}
}

func writePerFile(p *printer, label string, s Side) {
	p.linef("%s per-file similarity:", label)
	for _, fm := range s.TopMatches {
		if len(fm.Matches) == 0 {
			p.linef("  - %s: %s (no match)", fm.Path, percent(0))
			continue
		}
		first := fm.Matches[0]
		p.linef("  - %s: %s (%s) -> %s", fm.Path, percent(first.Similarity), first.Label(), first.OtherPath)
		for _, extra := range fm.Matches[1:] {
			p.linef("    + %s (%s) -> %s", percent(extra.Similarity), extra.Label(), extra.OtherPath)
		}
	}
}

// percent renders a [0,1] fraction as "12.345%"
func percent(v float64) string {
	return fmt.Sprintf("%.3f%%", v*100)
}

// ratio renders part/total as a percentage, "n/a" when total is 0
func ratio(part, total int64) string {
	if total == 0 {
		return "n/a"
	}
	return percent(float64(part) / float64(total))
}
