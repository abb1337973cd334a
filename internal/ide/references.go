package ide

import (
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

// References finds every use site of the symbol at offset. When
// includeDecl is true the declaration site itself is prepended.
func References(prog *sema.Program, file intern.FileID, offset int, includeDecl bool) []Location {
	defFile, defRange, ok := definitionSite(prog, file, offset)
	if !ok {
		return nil
	}

	var out []Location
	if includeDecl {
		out = append(out, Location{File: defFile, Range: defRange})
	}
	for _, r := range prog.References(defFile, defRange) {
		out = append(out, Location{File: r.File, Range: r.Range})
	}
	return out
}

// definitionSite resolves offset to its definition's (file, range),
// whether offset sits on a reference to it or on the declaration itself.
func definitionSite(prog *sema.Program, file intern.FileID, offset int) (intern.FileID, text.Range, bool) {
	if d, ok := declAtOffset(prog, file, offset); ok {
		return file, d.NameRange, true
	}
	out := prog.ResolveAtOffset(file, offset)
	if out.Kind != sema.Resolved {
		return 0, text.Range{}, false
	}
	return out.Symbol.DefFile, out.Symbol.DefRange, true
}
