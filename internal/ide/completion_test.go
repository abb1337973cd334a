package ide

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func itemLabels(items []Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.Label)
	}
	return out
}

func TestCompleteMemberContextListsContractMembers(t *testing.T) {
	src := `
	contract C {
		uint256 x;
		function helper() public pure returns (uint256) { return 1; }
	}

	contract D {
		C c;
		function f() public view returns (uint256) { return c.helper(); }
	}
	`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "c.helper") + len("c.")

	items := Complete(prog, testFile, offset, bsrc, nil)
	assert.Contains(t, itemLabels(items), "helper()")
	assert.Contains(t, itemLabels(items), "x")
}

func TestCompleteMemberContextListsAddressBuiltins(t *testing.T) {
	src := `
	contract C {
		address a;
		function f() public view returns (uint256) { return a.balance; }
	}
	`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "a.balance") + len("a.")

	items := Complete(prog, testFile, offset, bsrc, nil)
	labels := itemLabels(items)
	assert.Contains(t, labels, "balance")
	assert.Contains(t, labels, "call()")
}

func TestCompleteIdentifierContextIncludesLocalsAndGlobals(t *testing.T) {
	src := `
	contract C {
		function helper() public pure returns (uint256) { return 1; }
		function f() public pure returns (uint256) {
			uint256 total = 0;
			return total;
		}
	}
	`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "return total;")

	items := Complete(prog, testFile, offset, bsrc, nil)
	labels := itemLabels(items)
	assert.Contains(t, labels, "total")
	assert.Contains(t, labels, "helper()")
	assert.Contains(t, labels, "C")
	assert.Contains(t, labels, "msg")
	assert.Contains(t, labels, "keccak256()")
}

func TestCompleteOverrideContextListsContractNames(t *testing.T) {
	src := `
	contract Base { function f() public virtual pure returns (uint256) { return 1; } }
	contract C is Base { function f() public override(Base) pure returns (uint256) { return 2; } }
	`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "override(Base)") + len("override(")

	items := Complete(prog, testFile, offset, bsrc, nil)
	labels := itemLabels(items)
	assert.Contains(t, labels, "Base")
	assert.Contains(t, labels, "C")
}

func TestCompleteImportStringUsesSuppliedPaths(t *testing.T) {
	src := `import "./Foo.sol";` + "\n" + `contract C {}`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "./Foo.sol") + 2

	items := Complete(prog, testFile, offset, bsrc, func() []string {
		return []string{"./Foo.sol", "./Bar.sol"}
	})
	assert.ElementsMatch(t, []string{"./Foo.sol", "./Bar.sol"}, itemLabels(items))
}
