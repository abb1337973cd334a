package ide

import (
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
)

// GotoDefinition resolves the name at offset to its definition site, or
// reports false if nothing resolves there (unavailable snapshot,
// unresolved overload, or no identifier at all).
func GotoDefinition(prog *sema.Program, file intern.FileID, offset int) (Location, bool) {
	out := prog.ResolveAtOffset(file, offset)
	if out.Kind != sema.Resolved {
		return Location{}, false
	}
	return Location{File: out.Symbol.DefFile, Range: out.Symbol.DefRange}, true
}
