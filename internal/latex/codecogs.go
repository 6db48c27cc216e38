package latex

import (
	"fmt"
	"strings"
)

// CodecogsBaseURL is the CodeCogs PNG rendering endpoint.
const CodecogsBaseURL = "https://latex.codecogs.com/png.latex?"

// DPI is the rendering resolution requested from CodeCogs.
const DPI = 150

// safeChars are left unescaped in the query in addition to the unreserved
// characters.
const safeChars = `$\=+*{}()[]^`

// CodecogsURL builds the image URL of a LaTeX expression. Boxed
// expressions are wrapped in \boxed{}. Display expressions starting with a
// command are sent as-is and other display expressions are wrapped in $$.
// Inline expressions are wrapped in $.
func CodecogsURL(latex string, display, boxed bool) string {
	var expr string
	switch {
	case boxed:
		expr = `\boxed{` + latex + `}`
	case display && strings.HasPrefix(latex, `\`):
		expr = latex
	case display:
		expr = "$$" + latex + "$$"
	default:
		expr = "$" + latex + "$"
	}
	return CodecogsBaseURL + quote(fmt.Sprintf(`\dpi{%d} `, DPI)+expr)
}

// URL returns the CodeCogs URL of the segment.
func (s Segment) URL() string {
	return CodecogsURL(s.Latex, s.Display, s.Boxed)
}

// quote percent-encodes s byte-wise, keeping ASCII letters, digits,
// "_.-~" and safeChars.
func quote(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || strings.IndexByte(safeChars, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '_' || c == '.' || c == '-' || c == '~'
}
