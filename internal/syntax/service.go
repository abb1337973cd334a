package syntax

import (
	"strings"

	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

// Parsed is the result of parsing one file: the tree itself, its
// recoverable errors, and a span mapper that later layers use instead of
// trusting stale byte offsets against a source that may have since
// changed length.
type Parsed struct {
	File   *File
	Errors []SyntaxError
	srcLen int
}

// Parse lexes and parses src into a Parsed tree. It never fails outright
// — a malformed file still yields whatever top-level items were
// recognized before the first unrecoverable token, plus the recorded
// errors.
func Parse(src []byte) *Parsed {
	p := NewParser(src)
	f := p.ParseFile()
	return &Parsed{File: f, Errors: f.SyntaxErrors, srcLen: len(src)}
}

// ToRange validates r against the source length this tree was parsed
// from, returning ok=false for a span that no longer fits — e.g. one
// captured against a since-shortened buffer.
func (p *Parsed) ToRange(r text.Range) (text.Range, bool) {
	if r.Start < 0 || r.End > p.srcLen || r.Start > r.End {
		return text.Range{}, false
	}
	return r, true
}

// Session pins whatever state a single parse pass needs for its
// duration. The hand-written recursive-descent parser above keeps no
// state outside its own Parser value, so WithSession is a direct call —
// the indirection exists so callers written against a pluggable syntax
// front end don't need to change if a future grammar needs real
// thread-local scoping (e.g. a C-based parser library).
func WithSession[T any](fn func() T) T {
	return fn()
}

// IdentRangeResult is one token-level name lookup: the qualifier is the
// dot-joined prefix before Name ("" if Name is unqualified), and
// NameRange is the exact span of the trailing segment.
type IdentRangeResult struct {
	Qualifier    string
	HasQualifier bool
	Name         string
	NameRange    text.Range
}

// CollectIdentRange finds the qualified-name token containing offset:
// for "foo.bar.baz" with offset inside "baz" it returns
// (Qualifier: "foo.bar", Name: "baz"). Offset landing inside an earlier
// segment returns that segment's own prefix instead, so a lookup always
// resolves the identifier actually under the cursor rather than the
// chain's tail.
func CollectIdentRange(src []byte, offset int) (IdentRangeResult, bool) {
	sc := NewScanner(src)
	var segs []Token
	for {
		tok := sc.Next()
		if tok.Kind == TokEOF {
			break
		}
		switch tok.Kind {
		case TokIdent:
			if len(segs) == 0 || segs[len(segs)-1].Kind == TokDot {
				segs = append(segs, tok)
			} else {
				segs = []Token{tok}
			}
			if tok.Range.ContainsInclusive(offset) {
				return buildIdentResult(segs), true
			}
			if tok.Range.Start > offset {
				return IdentRangeResult{}, false
			}
		case TokDot:
			if len(segs) > 0 && segs[len(segs)-1].Kind == TokIdent {
				segs = append(segs, tok)
			} else {
				segs = nil
			}
		default:
			segs = nil
		}
	}
	return IdentRangeResult{}, false
}

func buildIdentResult(segs []Token) IdentRangeResult {
	last := segs[len(segs)-1]
	if len(segs) == 1 {
		return IdentRangeResult{Name: last.Text, NameRange: last.Range}
	}
	var parts []string
	for i := 0; i < len(segs)-1; i += 2 {
		parts = append(parts, segs[i].Text)
	}
	return IdentRangeResult{
		Qualifier:    strings.Join(parts, "."),
		HasQualifier: true,
		Name:         last.Text,
		NameRange:    last.Range,
	}
}
