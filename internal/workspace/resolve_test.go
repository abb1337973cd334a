package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
)

func exists(set map[string]bool) FileExists {
	return func(p intern.NormalizedPath) bool { return set[string(p)] }
}

func TestResolveImportRelative(t *testing.T) {
	set := exists(map[string]bool{"src/Dep.sol": true})
	got, ok := ResolveImport("./Dep.sol", "src/Main.sol", "", nil, set)
	assert.True(t, ok)
	assert.Equal(t, intern.NormalizedPath("src/Dep.sol"), got)
}

func TestResolveImportRemappingLongestFromWins(t *testing.T) {
	set := exists(map[string]bool{"lib/forge-std/special/A.sol": true})
	remaps := []Remapping{
		{From: "lib/", To: "lib/forge-std/"},
		{From: "lib/special/", To: "lib/forge-std/special/"},
	}
	got, ok := ResolveImport("lib/special/A.sol", "src/Main.sol", "", remaps, set)
	assert.True(t, ok)
	assert.Equal(t, intern.NormalizedPath("lib/forge-std/special/A.sol"), got)
}

func TestResolveImportContextScopedPreferred(t *testing.T) {
	set := exists(map[string]bool{"lib/ctx-target/A.sol": true, "lib/general/A.sol": true})
	remaps := []Remapping{
		{From: "lib/", To: "lib/general/"},
		{From: "lib/", To: "lib/ctx-target/", Context: "src/special/"},
	}
	got, ok := ResolveImport("lib/A.sol", "src/special/Main.sol", "", remaps, set)
	assert.True(t, ok)
	assert.Equal(t, intern.NormalizedPath("lib/ctx-target/A.sol"), got)
}

func TestResolveImportUnresolved(t *testing.T) {
	set := exists(map[string]bool{})
	_, ok := ResolveImport("nowhere/X.sol", "src/Main.sol", "", nil, set)
	assert.False(t, ok)
}

func TestParseRemappingLineContext(t *testing.T) {
	rm, ok := parseRemappingLine("test/:lib/=lib/forge-std/")
	assert.True(t, ok)
	assert.Equal(t, Remapping{Context: "test/", From: "lib/", To: "lib/forge-std/"}, rm)
}

func TestParseRemappingLineUnscoped(t *testing.T) {
	rm, ok := parseRemappingLine("lib/=lib/forge-std/")
	assert.True(t, ok)
	assert.Equal(t, Remapping{From: "lib/", To: "lib/forge-std/"}, rm)
}
