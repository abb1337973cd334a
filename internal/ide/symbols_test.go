package ide

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentSymbolsNestsMembersUnderContract(t *testing.T) {
	src := `
	contract C {
		uint256 x;
		function helper() public pure returns (uint256) { return 1; }
	}
	`
	prog, _ := buildProgram(t, src)
	syms := DocumentSymbols(prog, testFile)

	assert.Len(t, syms, 1)
	assert.Equal(t, "C", syms[0].Name)
	var names []string
	for _, c := range syms[0].Children {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"x", "helper"}, names)
}

func TestWorkspaceSymbolsFiltersByQuery(t *testing.T) {
	src := `
	contract C {
		function helperOne() public pure returns (uint256) { return 1; }
		function other() public pure returns (uint256) { return 2; }
	}
	`
	prog, _ := buildProgram(t, src)

	matches := WorkspaceSymbols(prog, "helper")
	assert.Len(t, matches, 1)
	assert.Equal(t, "helperOne", matches[0].Name)
}

func TestWorkspaceSymbolsEmptyQueryReturnsAll(t *testing.T) {
	src := `
	contract C {
		function a() public pure returns (uint256) { return 1; }
		function b() public pure returns (uint256) { return 2; }
	}
	`
	prog, _ := buildProgram(t, src)

	matches := WorkspaceSymbols(prog, "")
	assert.GreaterOrEqual(t, len(matches), 3)
}
