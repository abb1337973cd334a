package flycheck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

func TestLintPragmasOkWhenCompilerSatisfiesRange(t *testing.T) {
	pragmas := []*syntax.Pragma{{Name: "solidity", Value: "^0.8.0", Range: text.Range{Start: 0, End: 20}}}
	diags := LintPragmas(pragmas, "0.8.24")
	assert.Empty(t, diags)
}

func TestLintPragmasFlagsVersionMismatch(t *testing.T) {
	pragmas := []*syntax.Pragma{{Name: "solidity", Value: "^0.7.0", Range: text.Range{Start: 0, End: 20}}}
	diags := LintPragmas(pragmas, "0.8.24")
	assert.Len(t, diags, 1)
	assert.Equal(t, "pragma-version-mismatch", diags[0].Code)
}

func TestLintPragmasFlagsMalformedToken(t *testing.T) {
	pragmas := []*syntax.Pragma{{Name: "solidity", Value: "^0.08.0", Range: text.Range{Start: 0, End: 20}}}
	diags := LintPragmas(pragmas, "0.8.24")
	assert.Len(t, diags, 1)
	assert.Equal(t, "pragma-version-malformed", diags[0].Code)
}

func TestLintPragmasIgnoresNonSolidityPragmas(t *testing.T) {
	pragmas := []*syntax.Pragma{{Name: "abicoder", Value: "v2", Range: text.Range{Start: 0, End: 10}}}
	diags := LintPragmas(pragmas, "0.8.24")
	assert.Empty(t, diags)
}
