package sema

import (
	"sort"
	"sync"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

// defLoc identifies a definition site within its own file: just the
// range, since the file is now the outer partition key (see refIndex).
type defLoc struct {
	Range text.Range
}

// RefLoc is one use site recorded against a definition.
type RefLoc struct {
	File  intern.FileID
	Range text.Range
}

// refIndex is built once per Program, lazily, by replaying ResolveAtOffset
// over every identifier and import-alias token reachable from the HIR.
// Entries are partitioned by the file that defines the symbol, mirroring
// sa-sema::references' file-batched index: a project with many files never
// forces references() to materialize one flat map spanning all of them,
// and a future incremental rebuild can replace a single file's bucket
// without touching the rest.
type refIndex struct {
	mu      sync.Mutex
	built   bool
	entries map[intern.FileID]map[defLoc][]RefLoc
}

// References returns every recorded use site of the item defined at
// (defFile, defRange), sorted by (file, range.start), building the index
// on first use.
func (p *Program) References(defFile intern.FileID, defRange text.Range) []RefLoc {
	p.ensureRefIndex()
	p.refs.mu.Lock()
	defer p.refs.mu.Unlock()
	return append([]RefLoc(nil), p.refs.entries[defFile][defLoc{Range: defRange}]...)
}

func (p *Program) ensureRefIndex() {
	p.refs.mu.Lock()
	if p.refs.built {
		p.refs.mu.Unlock()
		return
	}
	p.refs.mu.Unlock()

	index := map[intern.FileID]map[defLoc][]RefLoc{}
	for file, f := range p.Files {
		p.indexFileReferences(file, f, index)
	}
	for _, byDef := range index {
		for k := range byDef {
			sort.Slice(byDef[k], func(i, j int) bool {
				a, b := byDef[k][i], byDef[k][j]
				if a.File != b.File {
					return a.File < b.File
				}
				return a.Range.Start < b.Range.Start
			})
			byDef[k] = dedupRefLocs(byDef[k])
		}
	}

	p.refs.mu.Lock()
	p.refs.entries = index
	p.refs.built = true
	p.refs.mu.Unlock()
}

func dedupRefLocs(locs []RefLoc) []RefLoc {
	out := locs[:0]
	for i, l := range locs {
		if i > 0 && l == out[len(out)-1] {
			continue
		}
		out = append(out, l)
	}
	return out
}

// indexFileReferences records a reference for every identifier expression
// and import alias in f that resolves to a definition.
func (p *Program) indexFileReferences(file intern.FileID, f *syntax.File, index map[intern.FileID]map[defLoc][]RefLoc) {
	for _, root := range collectRootExprs(f) {
		p.indexExprReferences(file, root, index)
	}
	for _, imp := range f.Imports {
		for _, a := range imp.Aliases {
			p.indexImportAliasReference(file, imp, a, index)
		}
	}
}

func (p *Program) indexExprReferences(file intern.FileID, e syntax.Expr, index map[intern.FileID]map[defLoc][]RefLoc) {
	if e == nil {
		return
	}
	ctx := p.enclosingContract(file, e.Span().Start)

	switch x := e.(type) {
	case *syntax.Ident:
		recordResolved(index, p.resolveIdent(file, ctx, x, false, nil), file, x.Range)
	case *syntax.CallExpr:
		switch callee := x.Callee.(type) {
		case *syntax.Ident:
			recordResolved(index, p.resolveIdent(file, ctx, callee, true, x.Args), file, callee.Range)
		case *syntax.MemberAccess:
			p.indexExprReferences(file, callee.Base, index)
			if _, ok := callee.Base.(*syntax.SuperExpr); ok {
				recordResolved(index, p.resolveSuper(file, ctx, callee, true, x.Args), file, callee.NameRange)
			} else {
				recordResolved(index, p.resolveMemberAccess(file, ctx, callee, true, x.Args), file, callee.NameRange)
			}
		default:
			p.indexExprReferences(file, x.Callee, index)
		}
		for _, a := range x.Args {
			p.indexExprReferences(file, a, index)
		}
		return
	case *syntax.MemberAccess:
		p.indexExprReferences(file, x.Base, index)
		if _, ok := x.Base.(*syntax.SuperExpr); ok {
			recordResolved(index, p.resolveSuper(file, ctx, x, false, nil), file, x.NameRange)
		} else {
			recordResolved(index, p.resolveMemberAccess(file, ctx, x, false, nil), file, x.NameRange)
		}
		return
	}

	for _, c := range e.Children() {
		p.indexExprReferences(file, c, index)
	}
}

// indexImportAliasReference records a reference from the alias token
// (e.g. `Bar` in `import {Foo as Bar}`, or `Foo` itself when un-renamed)
// to the imported item, skipping ambiguous aliases per ResolveQualifiedSymbol's
// own ambiguity rule reused transitively through the HIR's import edges.
func (p *Program) indexImportAliasReference(file intern.FileID, imp *syntax.ImportDecl, a syntax.ImportAlias, index map[intern.FileID]map[defLoc][]RefLoc) {
	hf, ok := p.Hir.Files[file]
	if !ok {
		return
	}
	for _, hi := range hf.Imports {
		if !hi.Resolved || hi.PathText != imp.PathText {
			continue
		}
		entries := p.Hir.Defs.ByFileName(hi.File, a.Name)
		if len(entries) != 1 {
			continue
		}
		recordResolved(index, symbolResolved(a.Range, entries[0]), file, a.Range)
	}
}

func recordResolved(index map[intern.FileID]map[defLoc][]RefLoc, outcome ResolveOutcome, file intern.FileID, origin text.Range) {
	if outcome.Kind != Resolved {
		return
	}
	defFile := outcome.Symbol.DefFile
	byDef, ok := index[defFile]
	if !ok {
		byDef = map[defLoc][]RefLoc{}
		index[defFile] = byDef
	}
	key := defLoc{Range: outcome.Symbol.DefRange}
	byDef[key] = append(byDef[key], RefLoc{File: file, Range: origin})
}
