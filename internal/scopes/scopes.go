// Package scopes walks one function body and records every local
// binder — parameters, named returns, block-local declarations, for-init
// declarations, try/catch bindings — as a (name, scope_range) pair, so
// name resolution can answer "what does this identifier refer to" without
// re-walking the tree on every lookup.
package scopes

import (
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

// LocalKind tags what kind of binder a LocalDef records.
type LocalKind uint8

const (
	KindParam LocalKind = iota
	KindReturn
	KindLocal
	KindCatchParam
	KindTryReturn
)

func (k LocalKind) String() string {
	switch k {
	case KindParam:
		return "param"
	case KindReturn:
		return "return"
	case KindLocal:
		return "local"
	case KindCatchParam:
		return "catch-param"
	case KindTryReturn:
		return "try-return"
	default:
		return "unknown"
	}
}

// LocalDef is one local binder: its name, its declaration site, and the
// half-open range over which that name is visible.
type LocalDef struct {
	Name       string
	Kind       LocalKind
	NameRange  text.Range
	ScopeRange text.Range
	Type       *syntax.TypeExpr // declared type, nil for catch/try-return params without one
}

// Build walks fn's body and returns every local binder it introduces, in
// declaration order. An unimplemented function (interface or abstract,
// no body) contributes nothing: parameters and named returns only have
// a scope once a body exists for them to be visible in.
func Build(fn *syntax.FunctionDecl) []LocalDef {
	var defs []LocalDef
	var bodyRange text.Range
	hasBody := fn.Body != nil
	if hasBody {
		bodyRange = fn.Body.Range
	}

	if hasBody {
		for _, p := range fn.Params {
			if p.Name == "" {
				continue
			}
			defs = append(defs, LocalDef{Name: p.Name, Kind: KindParam, NameRange: p.Range, ScopeRange: bodyRange, Type: &p.Type})
		}
		for _, r := range fn.Returns {
			if r.Name == "" {
				continue
			}
			defs = append(defs, LocalDef{Name: r.Name, Kind: KindReturn, NameRange: r.Range, ScopeRange: bodyRange, Type: &r.Type})
		}
		defs = append(defs, walkBlock(fn.Body)...)
	}
	return defs
}

func walkBlock(b *syntax.Block) []LocalDef {
	if b == nil {
		return nil
	}
	var defs []LocalDef
	for _, s := range b.Stmts {
		defs = append(defs, walkStmt(s, b.Range)...)
	}
	return defs
}

// walkStmt walks one statement, attributing any block-local declaration
// it introduces directly to enclosing (the nearest containing block),
// since a local's scope runs from its declaration site to the end of
// the block it was declared in, not of whatever statement introduced it.
func walkStmt(s syntax.Stmt, enclosing text.Range) []LocalDef {
	var defs []LocalDef
	switch st := s.(type) {
	case *syntax.DeclStmt:
		if st.Decl != nil && st.Decl.Name != "" {
			defs = append(defs, LocalDef{
				Name:       st.Decl.Name,
				Kind:       KindLocal,
				NameRange:  st.Decl.NameRange,
				ScopeRange: text.Range{Start: st.Decl.NameRange.Start, End: enclosing.End},
				Type:       &st.Decl.Type,
			})
		}
	case *syntax.TupleDeclStmt:
		for _, d := range st.Decls {
			if d != nil && d.Name != "" {
				defs = append(defs, LocalDef{
					Name:       d.Name,
					Kind:       KindLocal,
					NameRange:  d.NameRange,
					ScopeRange: text.Range{Start: d.NameRange.Start, End: enclosing.End},
					Type:       &d.Type,
				})
			}
		}
	case *syntax.BlockStmt:
		defs = append(defs, walkBlock(st.Block)...)
	case *syntax.IfStmt:
		defs = append(defs, walkStmt(st.Then, enclosing)...)
		if st.Else != nil {
			defs = append(defs, walkStmt(st.Else, enclosing)...)
		}
	case *syntax.ForStmt:
		// For-init declarations are visible for the lifetime of the loop:
		// condition, post-expression and body, not just the body block.
		if st.Init != nil {
			defs = append(defs, forInitDefs(st.Init, st.Range)...)
		}
		if st.Body != nil {
			defs = append(defs, walkStmt(st.Body, st.Range)...)
		}
	case *syntax.WhileStmt:
		if st.Body != nil {
			defs = append(defs, walkStmt(st.Body, enclosing)...)
		}
	case *syntax.TryStmt:
		for _, r := range st.Returns {
			if r.Name == "" {
				continue
			}
			scope := text.Range{}
			if st.Body != nil {
				scope = st.Body.Range
			}
			defs = append(defs, LocalDef{Name: r.Name, Kind: KindTryReturn, NameRange: r.Range, ScopeRange: scope, Type: &r.Type})
		}
		defs = append(defs, walkBlock(st.Body)...)
		for _, c := range st.Catches {
			for _, p := range c.Params {
				if p.Name == "" {
					continue
				}
				scope := text.Range{}
				if c.Body != nil {
					scope = c.Body.Range
				}
				defs = append(defs, LocalDef{Name: p.Name, Kind: KindCatchParam, NameRange: p.Range, ScopeRange: scope, Type: &p.Type})
			}
			defs = append(defs, walkBlock(c.Body)...)
		}
	}
	return defs
}

// forInitDefs scopes a for-loop's init declarations to the whole loop,
// rather than to whatever block happens to enclose the for statement.
func forInitDefs(init syntax.Stmt, loopRange text.Range) []LocalDef {
	var defs []LocalDef
	switch st := init.(type) {
	case *syntax.DeclStmt:
		if st.Decl != nil && st.Decl.Name != "" {
			defs = append(defs, LocalDef{
				Name:       st.Decl.Name,
				Kind:       KindLocal,
				NameRange:  st.Decl.NameRange,
				ScopeRange: text.Range{Start: st.Decl.NameRange.Start, End: loopRange.End},
				Type:       &st.Decl.Type,
			})
		}
	case *syntax.TupleDeclStmt:
		for _, d := range st.Decls {
			if d != nil && d.Name != "" {
				defs = append(defs, LocalDef{
					Name:       d.Name,
					Kind:       KindLocal,
					NameRange:  d.NameRange,
					ScopeRange: text.Range{Start: d.NameRange.Start, End: loopRange.End},
					Type:       &d.Type,
				})
			}
		}
	}
	return defs
}

// Lookup picks the innermost scope named name that contains offset and
// whose declaration precedes offset: among candidates, the one with the
// shortest scope range wins, since nested scopes are always contained in
// (and therefore no longer than) their enclosing ones.
func Lookup(defs []LocalDef, name string, offset int) (LocalDef, bool) {
	var best LocalDef
	found := false
	for _, d := range defs {
		if d.Name != name {
			continue
		}
		if d.NameRange.Start > offset {
			continue
		}
		if !d.ScopeRange.ContainsInclusive(offset) {
			continue
		}
		if !found || d.ScopeRange.Len() < best.ScopeRange.Len() {
			best = d
			found = true
		}
	}
	return best, found
}
