// Package latex extracts LaTeX from tutor explanations and renders it to PNG
// through the CodeCogs service.
package latex

import (
	"fmt"
	"regexp"
	"strings"
)

// PlaceholderFormat names the token that replaces each extracted segment.
const PlaceholderFormat = "__LATEX_%d__"

// Segment is one extracted piece of LaTeX.
type Segment struct {
	Latex   string
	Display bool
	Boxed   bool // a boxed segment is always display
}

var (
	displayRe = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)
	boxedRe   = regexp.MustCompile(`(?s)\\boxed\{(.*?)\}`)
)

// Placeholder returns the placeholder of the n-th segment.
func Placeholder(n int) string {
	return fmt.Sprintf(PlaceholderFormat, n)
}

// FindSegments replaces LaTeX in text with placeholders and returns the
// rewritten text plus the segment behind each placeholder.
//
// Segments are collected in three passes, numbered in pass order: display
// math ($$...$$), inline math ($...$ not touching another $), then
// \boxed{...}. Empty segments and inline segments made only of digits, dots
// and commas (prices) are left as written.
func FindSegments(text string) (string, map[string]Segment) {
	segments := make(map[string]Segment)

	add := func(raw, content string, seg Segment) string {
		content = strings.TrimSpace(content)
		if content == "" {
			return raw
		}
		if !seg.Display && isNumeric(content) {
			return raw
		}
		seg.Latex = content
		key := Placeholder(len(segments))
		segments[key] = seg
		return key
	}

	out := replaceSubmatch(displayRe, text, func(raw, content string) string {
		return add(raw, content, Segment{Display: true})
	})
	out = replaceInline(out, func(raw, content string) string {
		return add(raw, content, Segment{})
	})
	out = replaceSubmatch(boxedRe, out, func(raw, content string) string {
		return add(raw, content, Segment{Display: true, Boxed: true})
	})

	return out, segments
}

// replaceSubmatch replaces every match of re with repl(match, group1).
func replaceSubmatch(re *regexp.Regexp, s string, repl func(raw, content string) string) string {
	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(s[last:m[0]])
		b.WriteString(repl(s[m[0]:m[1]], s[m[2]:m[3]]))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// replaceInline handles single-dollar math. An opening $ must not follow
// another $, the content is at least one non-$ character, and the closing $
// must not be followed by another $.
func replaceInline(s string, repl func(raw, content string) string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '$' || (i > 0 && s[i-1] == '$') {
			b.WriteByte(s[i])
			i++
			continue
		}

		j := strings.IndexByte(s[i+1:], '$')
		if j <= 0 {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := i + 1 + j
		if end+1 < len(s) && s[end+1] == '$' {
			b.WriteByte(s[i])
			i++
			continue
		}

		b.WriteString(repl(s[i:end+1], s[i+1:end]))
		i = end + 1
	}
	return b.String()
}

func isNumeric(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return false
		}
	}
	return s != ""
}
