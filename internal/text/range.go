// Package text defines the byte-offset range type shared by every layer
// that talks about positions in a file: the syntax tree, the def map,
// local scopes, and the semantic snapshot.
package text

// Range is a half-open byte-offset interval [Start, End) into a file's
// text.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes the range spans.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether offset o falls within [Start, End).
func (r Range) Contains(o int) bool { return o >= r.Start && o < r.End }

// ContainsInclusive reports whether o falls within [Start, End], which is
// useful at end-of-token boundaries (e.g. cursor immediately after an
// identifier).
func (r Range) ContainsInclusive(o int) bool { return o >= r.Start && o <= r.End }

// Empty reports whether the range spans zero bytes.
func (r Range) Empty() bool { return r.Start >= r.End }
