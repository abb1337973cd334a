package ide

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureHelpTracksActiveParam(t *testing.T) {
	src := `
	contract C {
		function add(uint256 a, uint256 b) public pure returns (uint256) { return a + b; }
		function f() public pure returns (uint256) { return add(1, 2); }
	}
	`
	prog, bsrc := buildProgram(t, src)
	offset := indexOf(bsrc, "2);") + 1

	sig, ok := SignatureHelp(prog, testFile, offset)
	assert.True(t, ok)
	assert.Equal(t, "function add(uint256 a, uint256 b) public pure returns (uint256)", sig.Label)
	assert.Equal(t, []string{"uint256 a", "uint256 b"}, sig.Params)
	assert.Equal(t, 1, sig.ActiveParam)
}

func TestSignatureHelpNoneOutsideCall(t *testing.T) {
	src := `contract C { function f() public pure returns (uint256) { return 1; } }`
	prog, _ := buildProgram(t, src)
	_, ok := SignatureHelp(prog, testFile, 0)
	assert.False(t, ok)
}
