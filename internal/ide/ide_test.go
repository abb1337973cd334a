package ide

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumosimmo/solidity-analyzer/internal/hir"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

const testFile intern.FileID = 1

func buildProgram(t *testing.T, src string) (*sema.Program, []byte) {
	t.Helper()
	in := intern.NewDefInterner()
	bsrc := []byte(src)
	parsed := syntax.Parse(bsrc)
	files := map[intern.FileID]*syntax.File{testFile: parsed.File}
	lowered := hir.LowerProgram(in, "", nil, func(intern.NormalizedPath) bool { return true }, []hir.ParsedInput{
		{FileID: testFile, Path: "src/A.sol", Syntax: parsed.File},
	})
	return sema.NewProgram(in, lowered, files), bsrc
}

type stubFiles struct {
	src map[intern.FileID][]byte
}

func (s stubFiles) URI(f intern.FileID) string {
	if f == testFile {
		return "file:///A.sol"
	}
	return "file:///unknown.sol"
}

func (s stubFiles) Source(f intern.FileID) []byte { return s.src[f] }

func TestGotoDefinitionResolvesCallToDeclaration(t *testing.T) {
	src := `
	contract C {
		function helper() public pure returns (uint256) { return 1; }
		function f() public pure returns (uint256) { return helper(); }
	}
	`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "helper();") + 1

	loc, ok := GotoDefinition(prog, testFile, offset)
	assert.True(t, ok)
	assert.Equal(t, testFile, loc.File)
	assert.Equal(t, "helper", string(bsrc[loc.Range.Start:loc.Range.End]))
}

func TestGotoDefinitionUnresolvedAtNonIdentOffset(t *testing.T) {
	src := `contract C { uint256 x; }`
	prog, _ := buildProgram(t, src)
	_, ok := GotoDefinition(prog, testFile, 0)
	assert.False(t, ok)
}

func TestHoverRendersSignatureAndNatspec(t *testing.T) {
	src := `
	contract C {
		/// @notice Doubles a value.
		/// @param x The input.
		/// @return The doubled input.
		function double(uint256 x) public pure returns (uint256) { return x * 2; }
	}
	`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "double(uint256")

	files := stubFiles{src: map[intern.FileID][]byte{testFile: bsrc}}
	text, ok := Hover(prog, testFile, offset, files)
	assert.True(t, ok)
	assert.Contains(t, text, "function double(uint256 x) public")
	assert.Contains(t, text, "Doubles a value.")
	assert.Contains(t, text, "`x`: The input.")
}

func TestHoverOnContractDeclarationHasNoNatspecSection(t *testing.T) {
	src := `contract C { }`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "C {")

	files := stubFiles{src: map[intern.FileID][]byte{testFile: bsrc}}
	text, ok := Hover(prog, testFile, offset, files)
	assert.True(t, ok)
	assert.Equal(t, "```solidity\ncontract C\n```", text)
}

func indexOf(src []byte, needle string) int {
	for i := 0; i+len(needle) <= len(src); i++ {
		if string(src[i:i+len(needle)]) == needle {
			return i
		}
	}
	return -1
}
