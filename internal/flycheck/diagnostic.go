// Package flycheck implements the debounce/supersede/merge/publish state
// machine that turns two independent diagnostic producers (an external
// compiler and an internal lint pass) into one published diagnostic list
// per file, the way a background build watcher keeps an editor's problem
// list current without blocking on every keystroke.
package flycheck

import (
	"sort"

	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

// Severity mirrors the handful of levels a diagnostic client distinguishes.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

// Source names which producer reported a diagnostic. Merge does not key
// on it: a compiler diagnostic overrides a lint diagnostic with the same
// (range, code).
type Source string

const (
	SourceCompiler Source = "solc"
	SourceLint     Source = "solidity-lint"
)

// Diagnostic is one problem reported against a file.
type Diagnostic struct {
	Range    text.Range
	Severity Severity
	Code     string
	Message  string
	Source   Source
}

func sortDiagnostics(ds []Diagnostic) {
	sort.Slice(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Range.Start != b.Range.Start {
			return a.Range.Start < b.Range.Start
		}
		if a.Range.End != b.Range.End {
			return a.Range.End < b.Range.End
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Code < b.Code
	})
}

// mergeKey identifies a diagnostic for override/dedup purposes.
type mergeKey struct {
	r    text.Range
	code string
}

// merge computes the union of external and lint diagnostics for one file:
// external overrides lint when they share a (range, code) pair, and
// otherwise both survive. Exact duplicates (every field equal) collapse
// to one.
func merge(external, lint []Diagnostic) []Diagnostic {
	overridden := make(map[mergeKey]bool, len(external))
	for _, d := range external {
		overridden[mergeKey{d.Range, d.Code}] = true
	}

	seen := make(map[Diagnostic]bool, len(external)+len(lint))
	var out []Diagnostic
	add := func(d Diagnostic) {
		if seen[d] {
			return
		}
		seen[d] = true
		out = append(out, d)
	}
	for _, d := range external {
		add(d)
	}
	for _, d := range lint {
		if overridden[mergeKey{d.Range, d.Code}] {
			continue
		}
		add(d)
	}

	sortDiagnostics(out)
	return out
}

func equalDiagnostics(a, b []Diagnostic) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
