package defmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

func mustParse(t *testing.T, src string) *syntax.File {
	t.Helper()
	parsed := syntax.Parse([]byte(src))
	return parsed.File
}

func TestCollectTopLevelAndMembers(t *testing.T) {
	src := `
pragma solidity ^0.8.0;

struct Point { uint x; uint y; }

contract Token {
    uint256 public totalSupply;

    modifier onlyOwner() {
        _;
    }

    function transfer(address to, uint256 amount) public returns (bool) {
        return true;
    }
}
`
	f := mustParse(t, src)
	in := intern.NewDefInterner()
	m := Collect(in, intern.FileID(1), f)

	contracts := m.ByKindName(intern.KindContract, "Token")
	assert.Len(t, contracts, 1)
	assert.Equal(t, "", contracts[0].Container)

	structs := m.ByKindName(intern.KindStruct, "Point")
	assert.Len(t, structs, 1)

	fns := m.ByKindName(intern.KindFunction, "transfer")
	if assert.Len(t, fns, 1) {
		assert.Equal(t, "Token", fns[0].Container)
	}

	mods := m.ByKindName(intern.KindModifier, "onlyOwner")
	if assert.Len(t, mods, 1) {
		assert.Equal(t, "Token", mods[0].Container)
	}

	vars := m.ByKindName(intern.KindVariable, "totalSupply")
	if assert.Len(t, vars, 1) {
		assert.Equal(t, "Token", vars[0].Container)
	}
}

func TestCollectInterfaceAndLibraryKinds(t *testing.T) {
	src := `
interface IToken {
    function balanceOf(address who) external view returns (uint256);
}

library SafeMath {
    function add(uint256 a, uint256 b) internal pure returns (uint256) {
        return a + b;
    }
}
`
	f := mustParse(t, src)
	in := intern.NewDefInterner()
	m := Collect(in, intern.FileID(2), f)

	assert.Len(t, m.ByKindName(intern.KindInterface, "IToken"), 1)
	assert.Len(t, m.ByKindName(intern.KindLibrary, "SafeMath"), 1)
	assert.Len(t, m.ByKindName(intern.KindFunction, "add"), 1)
}

func TestByIDAndByFileName(t *testing.T) {
	src := `contract A { function f() public {} }`
	f := mustParse(t, src)
	in := intern.NewDefInterner()
	file := intern.FileID(7)
	m := Collect(in, file, f)

	entries := m.Entries()
	assert.NotEmpty(t, entries)

	for _, e := range entries {
		got, ok := m.ByID(e.ID)
		assert.True(t, ok)
		assert.Same(t, e, got)
	}

	byFile := m.ByFileName(file, "f")
	assert.Len(t, byFile, 1)
	assert.Equal(t, "A", byFile[0].Container)
}

func TestEqualSameInputsSameDefIDs(t *testing.T) {
	src := `contract A { uint256 public x; function f() public {} }`
	in := intern.NewDefInterner()
	file := intern.FileID(3)

	f1 := mustParse(t, src)
	m1 := Collect(in, file, f1)

	f2 := mustParse(t, src)
	m2 := Collect(in, file, f2)

	assert.True(t, Equal(m1, m2))
}

func TestEqualDetectsAddedMember(t *testing.T) {
	in := intern.NewDefInterner()
	file := intern.FileID(4)

	f1 := mustParse(t, `contract A { function f() public {} }`)
	m1 := Collect(in, file, f1)

	f2 := mustParse(t, `contract A { function f() public {} function g() public {} }`)
	m2 := Collect(in, file, f2)

	assert.False(t, Equal(m1, m2))
}

func TestEmptyFileProducesEmptyMap(t *testing.T) {
	f := mustParse(t, `pragma solidity ^0.8.0;`)
	in := intern.NewDefInterner()
	m := Collect(in, intern.FileID(5), f)
	assert.Empty(t, m.Entries())
}
