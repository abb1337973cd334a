package natspec

import (
	"fmt"
	"regexp"
	"strings"
)

// referencePattern matches a `{Target}` reference: an identifier, or two
// identifiers joined by `.`, `::`, or `-`.
var referencePattern = regexp.MustCompile(`\{([A-Za-z_]\w*(?:(?:\.|::|-)[A-Za-z_]\w*)?)\}`)

// fencePattern matches a fenced code block delimiter line.
var fencePattern = regexp.MustCompile("(?m)^```")

// linkify rewrites every `{Target}` reference in text that resolve can
// resolve into a markdown link, leaving text inside fenced code blocks
// untouched (and any reference resolve rejects untouched too).
func linkify(text string, resolve LinkResolver) string {
	if resolve == nil {
		return text
	}
	segments := splitFences(text)
	var b strings.Builder
	for _, seg := range segments {
		if seg.fenced {
			b.WriteString(seg.text)
			continue
		}
		b.WriteString(referencePattern.ReplaceAllStringFunc(seg.text, func(m string) string {
			target := referencePattern.FindStringSubmatch(m)[1]
			link, ok := resolve(target)
			if !ok {
				return m
			}
			return fmt.Sprintf("[`{%s}`](%s#L%d)", target, link.URI, link.Line)
		}))
	}
	return b.String()
}

type fenceSegment struct {
	text   string
	fenced bool
}

// splitFences splits text into alternating fenced/unfenced segments on
// ``` delimiter lines, so linkify can leave code block contents (and the
// fence lines themselves) alone.
func splitFences(text string) []fenceSegment {
	idxs := fencePattern.FindAllStringIndex(text, -1)
	if len(idxs) == 0 {
		return []fenceSegment{{text: text}}
	}
	var out []fenceSegment
	pos := 0
	fenced := false
	for i := 0; i < len(idxs); i++ {
		start := idxs[i][0]
		if start > pos {
			out = append(out, fenceSegment{text: text[pos:start], fenced: fenced})
		}
		// Find the end of this fence line.
		lineEnd := strings.IndexByte(text[start:], '\n')
		var end int
		if lineEnd < 0 {
			end = len(text)
		} else {
			end = start + lineEnd + 1
		}
		out = append(out, fenceSegment{text: text[start:end], fenced: true})
		pos = end
		fenced = !fenced
	}
	if pos < len(text) {
		out = append(out, fenceSegment{text: text[pos:], fenced: fenced})
	}
	return out
}

// LineOf converts a byte offset in src into a 1-based line number.
func LineOf(src []byte, offset int) int {
	line := 1
	if offset > len(src) {
		offset = len(src)
	}
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
		}
	}
	return line
}
