package scan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/eisonai/devkit/internal/domain"
)

// IgnoreMatcher matches slash-separated relative paths against fnmatch
// style globs. Unlike path.Match, '*' also crosses '/', so "*.log" hides
// logs at any depth and "**/.DS_Store" requires at least one directory.
type IgnoreMatcher struct {
	patterns []*regexp.Regexp
}

// NewIgnoreMatcher compiles patterns; empty patterns are skipped
func NewIgnoreMatcher(patterns []string) (*IgnoreMatcher, error) {
	m := &IgnoreMatcher{}
	for _, raw := range patterns {
		if raw == "" {
			continue
		}
		re, err := compileGlob(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", domain.ErrInvalidPattern, raw, err)
		}
		m.patterns = append(m.patterns, re)
	}
	return m, nil
}

// Match reports whether rel matches any pattern
func (m *IgnoreMatcher) Match(rel string) bool {
	if m == nil {
		return false
	}
	for _, re := range m.patterns {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

// compileGlob translates a glob into an anchored regexp:
// '*' any run, '?' one rune, "[seq]" / "[!seq]" classes.
// An unterminated '[' is literal.
func compileGlob(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`(?s)^`)

	runes := []rune(glob)
	n := len(runes)
	for i := 0; i < n; {
		c := runes[i]
		i++
		switch c {
		case '*':
			for i < n && runes[i] == '*' {
				i++
			}
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			j := i
			if j < n && runes[j] == '!' {
				j++
			}
			if j < n && runes[j] == ']' {
				j++
			}
			for j < n && runes[j] != ']' {
				j++
			}
			if j >= n {
				b.WriteString(`\[`)
				continue
			}
			class := string(runes[i:j])
			i = j + 1

			class = strings.ReplaceAll(class, `\`, `\\`)
			class = strings.ReplaceAll(class, `[`, `\[`)
			switch {
			case strings.HasPrefix(class, "!"):
				class = "^" + class[1:]
			case strings.HasPrefix(class, "^"):
				class = `\` + class
			}
			b.WriteString("[" + class + "]")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	b.WriteString(`$`)
	return regexp.Compile(b.String())
}
