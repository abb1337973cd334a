package hir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumosimmo/solidity-analyzer/internal/db"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

func parsedInput(t *testing.T, id intern.FileID, path intern.NormalizedPath, src string) ParsedInput {
	t.Helper()
	p := syntax.Parse([]byte(src))
	return ParsedInput{FileID: id, Path: path, Syntax: p.File}
}

func existsAmong(paths ...intern.NormalizedPath) func(intern.NormalizedPath) bool {
	set := make(map[intern.NormalizedPath]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(p intern.NormalizedPath) bool { return set[p] }
}

func TestLowerProgramResolvesRelativeImport(t *testing.T) {
	in := intern.NewDefInterner()
	a := parsedInput(t, 1, "src/A.sol", `import "./Dep.sol"; contract A {}`)
	dep := parsedInput(t, 2, "src/Dep.sol", `contract Dep { function f() public {} }`)

	exists := existsAmong("src/Dep.sol", "src/A.sol")
	program := LowerProgram(in, "", nil, exists, []ParsedInput{a, dep})

	hf := program.Files[1]
	if assert.Len(t, hf.Imports, 1) {
		assert.True(t, hf.Imports[0].Resolved)
		assert.Equal(t, intern.FileID(2), hf.Imports[0].File)
	}

	entries := program.Defs.ByKindName(intern.KindContract, "Dep")
	assert.Len(t, entries, 1)
}

func TestResolveInFileDirectHit(t *testing.T) {
	in := intern.NewDefInterner()
	a := parsedInput(t, 1, "src/A.sol", `contract A { function f() public {} }`)
	program := LowerProgram(in, "", nil, existsAmong("src/A.sol"), []ParsedInput{a})

	found := program.ResolveInFile(1, intern.KindFunction, "f")
	assert.Len(t, found, 1)
}

func TestResolveInFilePlainImportPropagates(t *testing.T) {
	in := intern.NewDefInterner()
	a := parsedInput(t, 1, "src/A.sol", `import "./Dep.sol"; contract A {}`)
	dep := parsedInput(t, 2, "src/Dep.sol", `contract Dep {}`)
	program := LowerProgram(in, "", nil, existsAmong("src/A.sol", "src/Dep.sol"), []ParsedInput{a, dep})

	found := program.ResolveInFile(1, intern.KindContract, "Dep")
	assert.Len(t, found, 1)
}

func TestResolveInFileAliasRenamesOnly(t *testing.T) {
	in := intern.NewDefInterner()
	a := parsedInput(t, 1, "src/A.sol", `import {Dep as Renamed} from "./Dep.sol"; contract A {}`)
	dep := parsedInput(t, 2, "src/Dep.sol", `contract Dep {}`)
	program := LowerProgram(in, "", nil, existsAmong("src/A.sol", "src/Dep.sol"), []ParsedInput{a, dep})

	assert.Len(t, program.ResolveInFile(1, intern.KindContract, "Renamed"), 1)
	assert.Empty(t, program.ResolveInFile(1, intern.KindContract, "Dep"))
}

func TestResolveQualifiedSymbolSourceAlias(t *testing.T) {
	in := intern.NewDefInterner()
	a := parsedInput(t, 1, "src/A.sol", `import "./Dep.sol" as Lib; contract A {}`)
	dep := parsedInput(t, 2, "src/Dep.sol", `contract Dep {}`)
	program := LowerProgram(in, "", nil, existsAmong("src/A.sol", "src/Dep.sol"), []ParsedInput{a, dep})

	assert.Empty(t, program.ResolveInFile(1, intern.KindContract, "Dep"))
	found := program.ResolveQualifiedSymbol(1, "Lib", "Dep")
	assert.Len(t, found, 1)
}

func TestLowerProgramRemappingResolution(t *testing.T) {
	in := intern.NewDefInterner()
	a := parsedInput(t, 1, "src/A.sol", `import "@forge/Dep.sol"; contract A {}`)
	dep := parsedInput(t, 2, "lib/forge-std/Dep.sol", `contract Dep {}`)
	remaps := []db.Remapping{{From: "@forge/", To: "lib/forge-std/"}}
	program := LowerProgram(in, "", remaps, existsAmong("src/A.sol", "lib/forge-std/Dep.sol"), []ParsedInput{a, dep})

	hf := program.Files[1]
	if assert.Len(t, hf.Imports, 1) {
		assert.True(t, hf.Imports[0].Resolved)
		assert.Equal(t, intern.FileID(2), hf.Imports[0].File)
	}
}

func TestResolveInFileUnresolvedImportIsSkipped(t *testing.T) {
	in := intern.NewDefInterner()
	a := parsedInput(t, 1, "src/A.sol", `import "./Missing.sol"; contract A {}`)
	program := LowerProgram(in, "", nil, existsAmong("src/A.sol"), []ParsedInput{a})

	hf := program.Files[1]
	if assert.Len(t, hf.Imports, 1) {
		assert.False(t, hf.Imports[0].Resolved)
	}
	assert.Empty(t, program.ResolveInFile(1, intern.KindContract, "Anything"))
}
