package scopes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

func parseFunc(t *testing.T, src string) *syntax.FunctionDecl {
	t.Helper()
	p := syntax.Parse([]byte(src))
	if len(p.File.Functions) > 0 {
		return p.File.Functions[0]
	}
	if len(p.File.Contracts) > 0 && len(p.File.Contracts[0].Functions) > 0 {
		return p.File.Contracts[0].Functions[0]
	}
	t.Fatalf("no function parsed from: %s", src)
	return nil
}

func TestBuildParamsAndReturns(t *testing.T) {
	fn := parseFunc(t, `contract C { function f(uint256 x) public returns (uint256 y) { y = x; } }`)
	defs := Build(fn)

	names := map[string]LocalKind{}
	for _, d := range defs {
		names[d.Name] = d.Kind
	}
	assert.Equal(t, KindParam, names["x"])
	assert.Equal(t, KindReturn, names["y"])
}

func TestBuildLocalScopedToEnclosingBlock(t *testing.T) {
	fn := parseFunc(t, `contract C {
        function f() public {
            uint256 a = 1;
            {
                uint256 b = 2;
            }
        }
    }`)
	defs := Build(fn)

	var a, b *LocalDef
	for i := range defs {
		switch defs[i].Name {
		case "a":
			a = &defs[i]
		case "b":
			b = &defs[i]
		}
	}
	if assert.NotNil(t, a) && assert.NotNil(t, b) {
		assert.Greater(t, a.ScopeRange.Len(), b.ScopeRange.Len())
	}
}

func TestLookupPicksInnermostScope(t *testing.T) {
	fn := parseFunc(t, `contract C {
        function f() public {
            uint256 a = 1;
            {
                uint256 a = 2;
                a;
            }
        }
    }`)
	defs := Build(fn)

	var inner LocalDef
	for _, d := range defs {
		if d.Name == "a" && d.ScopeRange.Len() > 0 {
			if inner.Name == "" || d.ScopeRange.Len() < inner.ScopeRange.Len() {
				inner = d
			}
		}
	}
	assert.NotEmpty(t, inner.Name)

	got, ok := Lookup(defs, "a", inner.ScopeRange.End-1)
	assert.True(t, ok)
	assert.Equal(t, inner.NameRange, got.NameRange)
}

func TestLookupDeclarationMustPrecedeOffset(t *testing.T) {
	fn := parseFunc(t, `contract C {
        function f() public {
            uint256 a = 1;
        }
    }`)
	defs := Build(fn)
	_, ok := Lookup(defs, "a", 0)
	assert.False(t, ok)
}

func TestForInitScopedToWholeLoop(t *testing.T) {
	fn := parseFunc(t, `contract C {
        function f() public {
            for (uint256 i = 0; i < 10; i++) {
                i;
            }
        }
    }`)
	defs := Build(fn)

	var i *LocalDef
	for idx := range defs {
		if defs[idx].Name == "i" {
			i = &defs[idx]
		}
	}
	if assert.NotNil(t, i) {
		_, ok := Lookup(defs, "i", i.ScopeRange.End-1)
		assert.True(t, ok)
	}
}

func TestCatchParamScopedToCatchBody(t *testing.T) {
	fn := parseFunc(t, `contract C {
        function f() public {
            try this.f() {
            } catch Error(string memory reason) {
                reason;
            }
        }
    }`)
	defs := Build(fn)

	found := false
	for _, d := range defs {
		if d.Name == "reason" && d.Kind == KindCatchParam {
			found = true
		}
	}
	assert.True(t, found)
}

func TestUnimplementedFunctionHasNoBodyLocals(t *testing.T) {
	p := syntax.Parse([]byte(`interface I { function f(uint256 x) external returns (uint256); }`))
	fn := p.File.Contracts[0].Functions[0]
	defs := Build(fn)
	assert.Empty(t, defs)
}
