package flycheck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

func TestMergeExternalOverridesLintSameRangeAndCode(t *testing.T) {
	r := text.Range{Start: 0, End: 5}
	external := []Diagnostic{{Range: r, Code: "E1", Message: "solc says so", Source: SourceCompiler}}
	lint := []Diagnostic{{Range: r, Code: "E1", Message: "lint says so", Source: SourceLint}}

	out := merge(external, lint)
	assert.Len(t, out, 1)
	assert.Equal(t, SourceCompiler, out[0].Source)
}

func TestMergeKeepsBothWhenCodesDiffer(t *testing.T) {
	r := text.Range{Start: 0, End: 5}
	external := []Diagnostic{{Range: r, Code: "E1", Source: SourceCompiler}}
	lint := []Diagnostic{{Range: r, Code: "unused-var", Source: SourceLint}}

	out := merge(external, lint)
	assert.Len(t, out, 2)
}

func TestMergeDedupesIdenticalWithinSameSource(t *testing.T) {
	r := text.Range{Start: 0, End: 5}
	d := Diagnostic{Range: r, Code: "E1", Message: "m", Source: SourceLint}
	out := merge(nil, []Diagnostic{d, d})
	assert.Len(t, out, 1)
}
