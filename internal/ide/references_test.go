package ide

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferencesIncludesDeclarationWhenRequested(t *testing.T) {
	src := `
	contract C {
		function helper() public pure returns (uint256) { return 1; }
		function f() public pure returns (uint256) { return helper() + helper(); }
	}
	`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "helper()") + 1

	locs := References(prog, testFile, offset, true)
	assert.Len(t, locs, 3)
	for _, l := range locs {
		assert.Equal(t, "helper", string(bsrc[l.Range.Start:l.Range.End]))
	}
}

func TestReferencesExcludesDeclarationByDefault(t *testing.T) {
	src := `
	contract C {
		function helper() public pure returns (uint256) { return 1; }
		function f() public pure returns (uint256) { return helper(); }
	}
	`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "helper() public") + 1

	locs := References(prog, testFile, offset, false)
	assert.Len(t, locs, 1)
}

func TestRenameRejectsInvalidIdentifier(t *testing.T) {
	src := `
	contract C {
		function helper() public pure returns (uint256) { return 1; }
	}
	`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "helper()") + 1

	_, err := Rename(prog, testFile, offset, "123bad")
	assert.Error(t, err)
}

func TestRenameProducesEditForEveryUse(t *testing.T) {
	src := `
	contract C {
		function helper() public pure returns (uint256) { return 1; }
		function f() public pure returns (uint256) { return helper(); }
	}
	`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "helper() public") + 1

	edits, err := Rename(prog, testFile, offset, "helperRenamed")
	assert.NoError(t, err)
	assert.Len(t, edits, 2)
	for _, e := range edits {
		assert.Equal(t, "helperRenamed", e.NewText)
	}
}
