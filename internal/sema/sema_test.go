package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumosimmo/solidity-analyzer/internal/hir"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

const singleFile intern.FileID = 1

func buildProgram(t *testing.T, src string) *Program {
	t.Helper()
	in := intern.NewDefInterner()
	parsed := syntax.Parse([]byte(src))
	files := map[intern.FileID]*syntax.File{singleFile: parsed.File}
	lowered := hir.LowerProgram(in, "", nil, func(intern.NormalizedPath) bool { return true }, []hir.ParsedInput{
		{FileID: singleFile, Path: "src/A.sol", Syntax: parsed.File},
	})
	return NewProgram(in, lowered, files)
}

func offsetOf(t *testing.T, src, needle string) int {
	t.Helper()
	i := indexOf(src, needle)
	if i < 0 {
		t.Fatalf("needle %q not found in source", needle)
	}
	return i
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestLinearizeDiamondInheritance(t *testing.T) {
	src := `
	contract A {}
	contract B is A {}
	contract C is A {}
	contract D is B, C {}
	`
	p := buildProgram(t, src)
	order := p.Linearize(singleFile, "D")
	assert.Equal(t, []string{"D", "C", "B", "A"}, order)
}

func TestTypeOfExprMemberAccessCallReturnType(t *testing.T) {
	src := `
	contract Wallet {
		function balanceOf() public view returns (uint256) { return 1; }
	}
	contract User {
		Wallet w;
		function f() public view returns (uint256) {
			return w.balanceOf();
		}
	}
	`
	p := buildProgram(t, src)
	ctx := p.Contracts[ContractKey{File: singleFile, Name: "User"}]
	off := offsetOf(t, src, "w.balanceOf()")
	e := exprAtOffset(p.Files[singleFile], off+len("w.balanceOf("))
	if assert.NotNil(t, e) {
		ty, ok := p.TypeOfExpr(singleFile, ctx, e)
		assert.True(t, ok)
		assert.Equal(t, TypeElementary, ty.Kind)
		assert.Equal(t, "uint256", ty.Name)
	}
}

func TestContractMembersInstanceVsTypeAccess(t *testing.T) {
	src := `
	contract Base {
		uint256 public x;
		uint256 internal y;
		function pub() public returns (uint256) { return x; }
		function intl() internal returns (uint256) { return y; }
	}
	contract Derived is Base {}
	`
	p := buildProgram(t, src)
	ctx := p.Contracts[ContractKey{File: singleFile, Name: "Derived"}]
	base := Type{Kind: TypeContract, Name: "Base", File: singleFile}

	instanceMembers := p.membersOf(base, ctx, AccessInstance)
	names := memberNames(instanceMembers)
	assert.Contains(t, names, "pub")
	assert.Contains(t, names, "x")
	assert.NotContains(t, names, "intl")
	assert.NotContains(t, names, "y")

	typeMembers := p.membersOf(base, ctx, AccessType)
	typeNames := memberNames(typeMembers)
	assert.Contains(t, typeNames, "intl")
	assert.Contains(t, typeNames, "y")
}

func memberNames(members []*memberDecl) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}
	return out
}

func TestSelectOverloadByArity(t *testing.T) {
	src := `
	contract C {
		function f(uint256 a) public {}
		function f(uint256 a, uint256 b) public {}
		function g() public { f(1, 2); }
	}
	`
	p := buildProgram(t, src)
	ctx := p.Contracts[ContractKey{File: singleFile, Name: "C"}]
	var call *syntax.CallExpr
	for _, e := range collectRootExprs(p.Files[singleFile]) {
		if c, ok := e.(*syntax.CallExpr); ok {
			if id, ok := c.Callee.(*syntax.Ident); ok && id.Name == "f" {
				call = c
			}
		}
	}
	if assert.NotNil(t, call) {
		candidates := p.identCandidates(singleFile, ctx, "f")
		chosen := p.SelectOverload(candidates, ctx, call.Args)
		if assert.NotNil(t, chosen) {
			assert.Equal(t, 2, len(p.Functions[chosen.ID].Params))
		}
	}
}

func TestResolveAtOffsetPlainIdentifier(t *testing.T) {
	src := `
	contract C {
		uint256 total;
		function f() public returns (uint256) { return total; }
	}
	`
	p := buildProgram(t, src)
	off := offsetOf(t, src, "return total") + len("return ")
	outcome := p.ResolveAtOffset(singleFile, off)
	if assert.Equal(t, Resolved, outcome.Kind) {
		assert.Equal(t, "total", outcome.Symbol.Name)
		assert.Equal(t, intern.KindVariable, outcome.Symbol.Kind)
		assert.Equal(t, totalVarDecl(p).NameRange, outcome.Symbol.DefRange)
	}
}

func totalVarDecl(p *Program) *syntax.VarDecl {
	for _, v := range p.Variables {
		if v.Name == "total" {
			return v
		}
	}
	return nil
}

func TestResolveAtOffsetLocalShadowsMember(t *testing.T) {
	src := `
	contract C {
		uint256 total;
		function f() public returns (uint256) {
			uint256 total = 1;
			return total;
		}
	}
	`
	p := buildProgram(t, src)
	off := offsetOf(t, src, "return total") + len("return ")
	outcome := p.ResolveAtOffset(singleFile, off)
	if assert.Equal(t, Resolved, outcome.Kind) {
		local := offsetOf(t, src, "total = 1")
		assert.Equal(t, local, outcome.Symbol.DefRange.Start)
		assert.Equal(t, "", outcome.Symbol.Container)
	}
}

func TestResolveAtOffsetSuperCall(t *testing.T) {
	src := `
	contract Base {
		function f() public virtual returns (uint256) { return 1; }
	}
	contract Derived is Base {
		function f() public override returns (uint256) {
			return super.f();
		}
	}
	`
	p := buildProgram(t, src)
	off := offsetOf(t, src, "super.f") + len("super.")
	outcome := p.ResolveAtOffset(singleFile, off)
	if assert.Equal(t, Resolved, outcome.Kind) {
		assert.Equal(t, "Base", outcome.Symbol.Container)
	}
}

func TestReferencesFindsAllUses(t *testing.T) {
	src := `
	contract C {
		uint256 total;
		function f() public returns (uint256) { return total; }
		function g() public returns (uint256) { return total + total; }
	}
	`
	p := buildProgram(t, src)
	decl := totalVarDecl(p)
	if assert.NotNil(t, decl) {
		refs := p.References(singleFile, decl.NameRange)
		assert.Len(t, refs, 3)
	}
}
