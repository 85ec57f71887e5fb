package telegram

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// CaptionLimit is the longest photo caption, in code points
	CaptionLimit = 1024
	// MessageLimit is the longest text message, in code points
	MessageLimit = 4096

	// maxTitleLength bounds lines considered for implicit headings
	maxTitleLength = 40
)

var listMarkers = []string{"-", "•", "·", "✅", "⚠️", "❌", "☑️", "✔️", "✳️", "⭐"}

// Merge joins the header text and the changelog with one blank line
func Merge(top, changelog string) string {
	top = strings.TrimRight(top, "\n")
	changelog = strings.TrimLeft(changelog, "\n")
	if top != "" && changelog != "" {
		return top + "\n\n" + changelog
	}
	return top + changelog
}

// Normalize rewrites markdown into Telegram's legacy Markdown dialect.
// "# Title" headings become *Title*. Short standalone lines become bold when
// they are version numbers, introduce a list, or end the text.
func Normalize(text string) string {
	lines := splitLines(text)
	out := make([]string, 0, len(lines))

	for idx, line := range lines {
		stripped := trimLeftSpace(line)

		if heading, ok := headingText(stripped); ok {
			out = append(out, "*"+heading+"*")
			continue
		}

		if stripped != "" &&
			!isListLike(stripped) &&
			utf8.RuneCountInString(stripped) <= maxTitleLength &&
			!strings.Contains(stripped, "。") {
			next := nextNonBlank(lines[idx+1:])
			if isVersionLine(stripped) || isListLike(next) || next == "" {
				out = append(out, "*"+strings.TrimSpace(stripped)+"*")
				continue
			}
		}

		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// headingText returns the text of an ATX heading ("## text")
func headingText(stripped string) (string, bool) {
	level := 0
	for level < len(stripped) && stripped[level] == '#' {
		level++
	}
	if level == 0 || level >= len(stripped) || stripped[level] != ' ' {
		return "", false
	}
	content := strings.TrimSpace(stripped[level+1:])
	return content, content != ""
}

func nextNonBlank(lines []string) string {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return trimLeftSpace(l)
		}
	}
	return ""
}

func isListLike(line string) bool {
	stripped := trimLeftSpace(line)
	if stripped == "" {
		return false
	}
	for _, m := range listMarkers[:3] {
		if strings.HasPrefix(stripped, m) {
			return true
		}
	}

	// numbered item: a single digit followed by "." or ")"
	first, size := utf8.DecodeRuneInString(stripped)
	if unicode.IsDigit(first) && size < len(stripped) {
		if c := stripped[size]; c == '.' || c == ')' {
			return true
		}
	}

	for _, m := range listMarkers[3:] {
		if strings.HasPrefix(stripped, m) {
			return true
		}
	}
	return false
}

// isVersionLine matches dot separated digit groups such as "1.2.10"
func isVersionLine(line string) bool {
	stripped := strings.TrimSpace(line)
	if stripped == "" {
		return false
	}
	for _, part := range strings.Split(stripped, ".") {
		if part == "" {
			return false
		}
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}

// splitLines splits on line breaks without yielding a trailing empty line
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func trimLeftSpace(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

// ChunkText splits text into pieces of at most limit code points. Each cut
// happens at the last newline before the limit, else the last space, else
// at the limit itself.
func ChunkText(text string, limit int) []string {
	if limit <= 0 {
		return []string{text}
	}

	var chunks []string
	remaining := []rune(text)
	for len(remaining) > limit {
		splitAt := lastIndex(remaining[:limit], '\n')
		if splitAt == -1 {
			splitAt = lastIndex(remaining[:limit], ' ')
		}
		if splitAt <= 0 {
			splitAt = limit
		}
		chunks = append(chunks, strings.TrimRight(string(remaining[:splitAt]), "\n"))
		remaining = []rune(strings.TrimLeft(string(remaining[splitAt:]), "\n"))
	}
	if len(remaining) > 0 {
		chunks = append(chunks, string(remaining))
	}
	return chunks
}

func lastIndex(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
