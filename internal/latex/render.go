package latex

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Source returns the segment written back in its original delimiters.
func (s Segment) Source() string {
	switch {
	case s.Boxed:
		return `\boxed{` + s.Latex + `}`
	case s.Display:
		return "$$" + s.Latex + "$$"
	default:
		return "$" + s.Latex + "$"
	}
}

// Rendered is an explanation with its LaTeX rendered to images.
type Rendered struct {
	// Text holds placeholders for every segment in Images. Segments that
	// failed to render are written back as LaTeX source.
	Text     string
	Segments map[string]Segment
	Images   map[string][]byte // PNG data by placeholder
}

// Keys returns the placeholders of Images in segment order.
func (r *Rendered) Keys() []string {
	keys := make([]string, 0, len(r.Images))
	for k := range r.Images {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return placeholderIndex(keys[i]) < placeholderIndex(keys[j])
	})
	return keys
}

// Render extracts the LaTeX in text and downloads an image per segment.
// A failed download does not fail the render; only context cancellation does.
func (f *Fetcher) Render(ctx context.Context, text string) (*Rendered, error) {
	processed, segments := FindSegments(text)
	out := &Rendered{
		Segments: segments,
		Images:   make(map[string][]byte, len(segments)),
	}

	replacements := make([]string, 0, 2*len(segments))
	for key, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := f.Download(ctx, seg.URL())
		if err != nil {
			replacements = append(replacements, key, seg.Source())
			continue
		}
		out.Images[key] = data
	}

	out.Text = strings.NewReplacer(replacements...).Replace(processed)
	return out, nil
}

// Piece is a run of plain text or a single math segment.
type Piece struct {
	Text    string // plain text, or the LaTeX of a math piece
	Math    bool
	Display bool
	Boxed   bool
}

var placeholderRe = regexp.MustCompile(`__LATEX_(\d+)__`)

// Pieces splits text into plain and math pieces in reading order.
func Pieces(text string) []Piece {
	processed, segments := FindSegments(text)

	var out []Piece
	last := 0
	for _, m := range placeholderRe.FindAllStringIndex(processed, -1) {
		seg, ok := segments[processed[m[0]:m[1]]]
		if !ok {
			continue
		}
		if m[0] > last {
			out = append(out, Piece{Text: processed[last:m[0]]})
		}
		out = append(out, Piece{Text: seg.Latex, Math: true, Display: seg.Display, Boxed: seg.Boxed})
		last = m[1]
	}
	if last < len(processed) {
		out = append(out, Piece{Text: processed[last:]})
	}
	return out
}

func placeholderIndex(key string) int {
	m := placeholderRe.FindStringSubmatch(key)
	if m == nil {
		return -1
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
