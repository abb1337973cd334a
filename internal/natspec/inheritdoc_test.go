package natspec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumosimmo/solidity-analyzer/internal/hir"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

const testFile intern.FileID = 1

func buildProgram(t *testing.T, src string) *sema.Program {
	t.Helper()
	in := intern.NewDefInterner()
	parsed := syntax.Parse([]byte(src))
	files := map[intern.FileID]*syntax.File{testFile: parsed.File}
	lowered := hir.LowerProgram(in, "", nil, func(intern.NormalizedPath) bool { return true }, []hir.ParsedInput{
		{FileID: testFile, Path: "src/A.sol", Syntax: parsed.File},
	})
	return sema.NewProgram(in, lowered, files)
}

func findFunction(c *syntax.ContractDecl, name string) *syntax.FunctionDecl {
	for _, fn := range c.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func TestResolveInheritdocFillsMissingSections(t *testing.T) {
	src := `
	contract Base {
		/// @notice Computes a value.
		/// @param x The input.
		/// @return The doubled input.
		function f(uint256 x) public virtual returns (uint256) { return x * 2; }
	}
	contract Derived is Base {
		/// @inheritdoc Base
		function f(uint256 x) public override returns (uint256) { return x * 2; }
	}
	`
	p := buildProgram(t, src)
	derived := p.ContractDecl(testFile, "Derived")
	fn := findFunction(derived, "f")

	doc := Parse(fn.Comments)
	decl := Declaring{File: testFile, Contract: "Derived", Name: "f", Fn: fn}
	resolved := ResolveInheritdoc(p, doc, decl, nil)

	notice, ok := resolved.section(TagNotice, "")
	if assert.True(t, ok) {
		assert.Equal(t, "Computes a value.", notice.Text())
	}
	param, ok := resolved.section(TagParam, "x")
	if assert.True(t, ok) {
		assert.Equal(t, "The input.", param.Text())
	}
}

func TestResolveInheritdocChainsAcrossMultipleLevels(t *testing.T) {
	src := `
	contract A {
		/// @notice From the root.
		function f() public virtual returns (uint256) { return 1; }
	}
	contract B is A {
		/// @inheritdoc A
		function f() public virtual override returns (uint256) { return 2; }
	}
	contract C is B {
		/// @inheritdoc B
		function f() public override returns (uint256) { return 3; }
	}
	`
	p := buildProgram(t, src)
	c := p.ContractDecl(testFile, "C")
	fn := findFunction(c, "f")

	doc := Parse(fn.Comments)
	decl := Declaring{File: testFile, Contract: "C", Name: "f", Fn: fn}

	var cycles []DebugRecord
	resolved := ResolveInheritdoc(p, doc, decl, func(r DebugRecord) { cycles = append(cycles, r) })
	notice, ok := resolved.section(TagNotice, "")
	if assert.True(t, ok) {
		assert.Equal(t, "From the root.", notice.Text())
	}
	assert.Empty(t, cycles)
}
