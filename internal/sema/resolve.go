package sema

import (
	"github.com/lumosimmo/solidity-analyzer/internal/defmap"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/scopes"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

// ResolveKind tags the shape of a ResolveOutcome.
type ResolveKind uint8

const (
	Unavailable ResolveKind = iota // no snapshot for this file
	Unresolved                     // a candidate expression exists but no single definition does
	Resolved
)

// Symbol is what a resolved name points at.
type Symbol struct {
	Kind      intern.DefKind
	Name      string
	Container string
	DefFile   intern.FileID
	DefRange  text.Range
}

// ResolveOutcome is the result of resolving whatever is at an offset.
type ResolveOutcome struct {
	Kind        ResolveKind
	OriginRange text.Range // the identifier/expression span resolution was attempted against
	Symbol      Symbol
}

// ResolveAtOffset finds the innermost expression containing offset and
// resolves it to its definition, per the form-by-form table: plain
// identifiers, calls, member access, super/this, and type annotations.
func (p *Program) ResolveAtOffset(file intern.FileID, offset int) ResolveOutcome {
	f, ok := p.Files[file]
	if !ok {
		return ResolveOutcome{Kind: Unavailable}
	}
	ctx := p.enclosingContract(file, offset)

	if te := typeExprAtOffset(f, offset); te != nil {
		return p.resolveTypeExpr(file, ctx, *te)
	}

	e := exprAtOffset(f, offset)
	if e == nil {
		return ResolveOutcome{Kind: Unavailable}
	}
	return p.resolveExpr(file, ctx, e)
}

func (p *Program) resolveExpr(file intern.FileID, ctx *ContractInfo, e syntax.Expr) ResolveOutcome {
	switch x := e.(type) {
	case *syntax.Ident:
		return p.resolveIdent(file, ctx, x, false, nil)
	case *syntax.CallExpr:
		switch callee := x.Callee.(type) {
		case *syntax.Ident:
			return p.resolveIdent(file, ctx, callee, true, x.Args)
		case *syntax.MemberAccess:
			if _, ok := callee.Base.(*syntax.SuperExpr); ok {
				return p.resolveSuper(file, ctx, callee, true, x.Args)
			}
			return p.resolveMemberAccess(file, ctx, callee, true, x.Args)
		default:
			return ResolveOutcome{Kind: Unresolved, OriginRange: x.Range}
		}
	case *syntax.MemberAccess:
		if _, ok := x.Base.(*syntax.SuperExpr); ok {
			return p.resolveSuper(file, ctx, x, false, nil)
		}
		return p.resolveMemberAccess(file, ctx, x, false, nil)
	default:
		return ResolveOutcome{Kind: Unresolved, OriginRange: e.Span()}
	}
}

// resolveIdent resolves a bare identifier, or (isCall) the callee of a
// call expression. Locals shadow everything and are never ambiguous, but
// only apply to the non-call form: a local variable is never itself
// callable against overload candidates the way a function name is.
func (p *Program) resolveIdent(file intern.FileID, ctx *ContractInfo, id *syntax.Ident, isCall bool, args []syntax.Expr) ResolveOutcome {
	origin := id.Range

	if !isCall {
		if fn := p.enclosingFunction(file, id.Range.Start); fn != nil {
			if def, ok := scopes.Lookup(p.LocalScopes(fn), id.Name, id.Range.Start); ok {
				return ResolveOutcome{Kind: Resolved, OriginRange: origin, Symbol: Symbol{
					Kind: intern.KindVariable, Name: def.Name, DefFile: file, DefRange: def.NameRange,
				}}
			}
		}
	}

	candidates := p.identCandidates(file, ctx, id.Name)
	if len(candidates) == 0 {
		return ResolveOutcome{Kind: Unresolved, OriginRange: origin}
	}

	if isCall {
		var funcs []*defmap.DefEntry
		for _, c := range candidates {
			if c.Kind == intern.KindFunction {
				funcs = append(funcs, c)
			}
		}
		if len(funcs) == 0 {
			return ResolveOutcome{Kind: Unresolved, OriginRange: origin}
		}
		chosen := p.SelectOverload(funcs, ctx, args)
		if chosen == nil {
			return ResolveOutcome{Kind: Unresolved, OriginRange: origin}
		}
		return symbolResolved(origin, chosen)
	}

	if len(candidates) != 1 {
		return ResolveOutcome{Kind: Unresolved, OriginRange: origin}
	}
	return symbolResolved(origin, candidates[0])
}

// IdentCandidates is the exported form of identCandidates, for
// completion's identifier-context dedupe against already-visible names.
func (p *Program) IdentCandidates(file intern.FileID, ctx *ContractInfo, name string) []*defmap.DefEntry {
	return p.identCandidates(file, ctx, name)
}

// identCandidates gathers every definition name could refer to at an
// unqualified reference site: own contract's members (incl. inherited via
// C3) take priority over top-level/imported definitions sharing the name.
func (p *Program) identCandidates(file intern.FileID, ctx *ContractInfo, name string) []*defmap.DefEntry {
	if ctx != nil {
		var out []*defmap.DefEntry
		for _, baseName := range p.Linearize(ctx.File, ctx.Name) {
			for _, e := range p.Hir.Defs.ByFileName(ctx.File, name) {
				if e.Container == baseName {
					out = append(out, e)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return p.Hir.ResolveAnyKindInFile(file, name)
}

// resolveMemberAccess resolves base.name, or (isCall) the callee of
// base.name(args).
func (p *Program) resolveMemberAccess(file intern.FileID, ctx *ContractInfo, ma *syntax.MemberAccess, isCall bool, args []syntax.Expr) ResolveOutcome {
	origin := ma.NameRange

	baseType, ok := p.TypeOfExpr(file, ctx, ma.Base)
	if !ok {
		return ResolveOutcome{Kind: Unresolved, OriginRange: origin}
	}
	mode := p.accessModeFor(file, ma.Base, baseType)
	var matched []*memberDecl
	for _, m := range p.membersOf(baseType, ctx, mode) {
		if m.Name == ma.Name {
			matched = append(matched, m)
		}
	}
	if len(matched) == 0 {
		return ResolveOutcome{Kind: Unresolved, OriginRange: origin}
	}

	if isCall {
		var funcs []*memberDecl
		for _, m := range matched {
			if m.Kind == intern.KindFunction {
				funcs = append(funcs, m)
			}
		}
		chosen := p.selectOverloadMember(funcs, ctx, args)
		if chosen == nil {
			return ResolveOutcome{Kind: Unresolved, OriginRange: origin}
		}
		return memberResolved(origin, baseType.File, chosen)
	}

	if len(matched) != 1 {
		return ResolveOutcome{Kind: Unresolved, OriginRange: origin}
	}
	return memberResolved(origin, baseType.File, matched[0])
}

// resolveSuper resolves `super.ident`: walk the current contract's
// linearization strictly after itself, use the first base exposing ident.
func (p *Program) resolveSuper(file intern.FileID, ctx *ContractInfo, ma *syntax.MemberAccess, isCall bool, args []syntax.Expr) ResolveOutcome {
	origin := ma.NameRange
	if ctx == nil {
		return ResolveOutcome{Kind: Unresolved, OriginRange: origin}
	}
	order := p.Linearize(ctx.File, ctx.Name)
	var skipSelf bool
	for _, baseName := range order {
		if !skipSelf {
			if baseName == ctx.Name {
				skipSelf = true
			}
			continue
		}
		members := p.contractMembers(ctx.File, baseName, ctx, AccessInstance)
		var matched []*memberDecl
		for _, m := range members {
			if m.Name == ma.Name {
				matched = append(matched, m)
			}
		}
		if len(matched) == 0 {
			continue
		}
		if isCall {
			var funcs []*memberDecl
			for _, m := range matched {
				if m.Kind == intern.KindFunction {
					funcs = append(funcs, m)
				}
			}
			if chosen := p.selectOverloadMember(funcs, ctx, args); chosen != nil {
				return memberResolved(origin, ctx.File, chosen)
			}
			continue
		}
		return memberResolved(origin, ctx.File, matched[0])
	}
	return ResolveOutcome{Kind: Unresolved, OriginRange: origin}
}

// resolveTypeExpr resolves a custom type reference in an annotation
// position (parameter/variable/return type) to the item it names.
func (p *Program) resolveTypeExpr(file intern.FileID, ctx *ContractInfo, t syntax.TypeExpr) ResolveOutcome {
	origin := t.Range
	if syntax.IsElementaryType(t.Name) || t.IsArray || t.IsMapping {
		return ResolveOutcome{Kind: Unresolved, OriginRange: origin}
	}
	entries := p.Hir.ResolveAnyKindInFile(file, t.Name)
	if len(entries) != 1 {
		return ResolveOutcome{Kind: Unresolved, OriginRange: origin}
	}
	return symbolResolved(origin, entries[0])
}

func symbolResolved(origin text.Range, e *defmap.DefEntry) ResolveOutcome {
	return ResolveOutcome{Kind: Resolved, OriginRange: origin, Symbol: Symbol{
		Kind: e.Kind, Name: e.Name, Container: e.Container, DefFile: e.File, DefRange: e.NameRange,
	}}
}

func memberResolved(origin text.Range, file intern.FileID, m *memberDecl) ResolveOutcome {
	return ResolveOutcome{Kind: Resolved, OriginRange: origin, Symbol: Symbol{
		Kind: m.Kind, Name: m.Name, Container: m.Container, DefFile: file, DefRange: m.NameRange,
	}}
}

// exprAtOffset finds the innermost expression in f that contains offset,
// descending from whichever root expression contains it; ties (equal
// containing range) break toward whichever is found first, which cannot
// happen for well-formed non-overlapping siblings.
func exprAtOffset(f *syntax.File, offset int) syntax.Expr {
	var best syntax.Expr
	for _, root := range collectRootExprs(f) {
		if cand := descend(root, offset); cand != nil {
			if best == nil || cand.Span().Len() < best.Span().Len() {
				best = cand
			}
		}
	}
	return best
}

func descend(e syntax.Expr, offset int) syntax.Expr {
	if e == nil || !e.Span().ContainsInclusive(offset) {
		return nil
	}
	best := e
	for _, c := range e.Children() {
		if child := descend(c, offset); child != nil && child.Span().Len() < best.Span().Len() {
			best = child
		}
	}
	return best
}

// typeExprAtOffset finds a parameter/return/variable type annotation
// containing offset, checked before expression descent since a type
// annotation is not itself an Expr.
func typeExprAtOffset(f *syntax.File, offset int) *syntax.TypeExpr {
	check := func(t syntax.TypeExpr) *syntax.TypeExpr {
		if t.Range.ContainsInclusive(offset) {
			return &t
		}
		return nil
	}
	checkParams := func(params []syntax.Param) *syntax.TypeExpr {
		for _, p := range params {
			if r := check(p.Type); r != nil {
				return r
			}
		}
		return nil
	}
	for _, fn := range f.Functions {
		if r := checkParams(fn.Params); r != nil {
			return r
		}
		if r := checkParams(fn.Returns); r != nil {
			return r
		}
	}
	for _, c := range f.Contracts {
		for _, fn := range append(append([]*syntax.FunctionDecl{}, c.Functions...), c.Modifiers...) {
			if r := checkParams(fn.Params); r != nil {
				return r
			}
			if r := checkParams(fn.Returns); r != nil {
				return r
			}
		}
		for _, v := range c.Variables {
			if r := check(v.Type); r != nil {
				return r
			}
		}
	}
	return nil
}

// EnclosingCall finds the innermost call expression containing offset,
// for signature help. Arguments are searched too, so a cursor inside a
// call nested in another call's argument list yields the nested call.
func (p *Program) EnclosingCall(file intern.FileID, offset int) (*syntax.CallExpr, *ContractInfo, bool) {
	f, ok := p.Files[file]
	if !ok {
		return nil, nil, false
	}
	ctx := p.enclosingContract(file, offset)

	var best *syntax.CallExpr
	for _, root := range collectRootExprs(f) {
		collectCalls(root, offset, &best)
	}
	if best == nil {
		return nil, nil, false
	}
	return best, ctx, true
}

func collectCalls(e syntax.Expr, offset int, best **syntax.CallExpr) {
	if e == nil || !e.Span().ContainsInclusive(offset) {
		return
	}
	if call, ok := e.(*syntax.CallExpr); ok {
		if *best == nil || call.Span().Len() < (*best).Span().Len() {
			*best = call
		}
	}
	for _, c := range e.Children() {
		collectCalls(c, offset, best)
	}
}

func collectRootExprs(f *syntax.File) []syntax.Expr {
	var out []syntax.Expr
	for _, fn := range f.Functions {
		out = append(out, exprsInBody(fn.Body)...)
	}
	for _, c := range f.Contracts {
		for _, fn := range c.Functions {
			out = append(out, exprsInBody(fn.Body)...)
		}
		for _, fn := range c.Modifiers {
			out = append(out, exprsInBody(fn.Body)...)
		}
		for _, v := range c.Variables {
			if v.Init != nil {
				out = append(out, v.Init)
			}
		}
	}
	return out
}

func exprsInBody(b *syntax.Block) []syntax.Expr {
	if b == nil {
		return nil
	}
	var out []syntax.Expr
	for _, s := range b.Stmts {
		out = append(out, exprsInStmt(s)...)
	}
	return out
}

func exprsInStmt(s syntax.Stmt) []syntax.Expr {
	switch st := s.(type) {
	case *syntax.ExprStmt:
		if st.X != nil {
			return []syntax.Expr{st.X}
		}
	case *syntax.DeclStmt:
		if st.Decl != nil && st.Decl.Init != nil {
			return []syntax.Expr{st.Decl.Init}
		}
	case *syntax.TupleDeclStmt:
		if st.Init != nil {
			return []syntax.Expr{st.Init}
		}
	case *syntax.BlockStmt:
		return exprsInBody(st.Block)
	case *syntax.IfStmt:
		var out []syntax.Expr
		if st.Cond != nil {
			out = append(out, st.Cond)
		}
		out = append(out, exprsInStmt(st.Then)...)
		if st.Else != nil {
			out = append(out, exprsInStmt(st.Else)...)
		}
		return out
	case *syntax.ForStmt:
		var out []syntax.Expr
		if st.Init != nil {
			out = append(out, exprsInStmt(st.Init)...)
		}
		if st.Cond != nil {
			out = append(out, st.Cond)
		}
		if st.Post != nil {
			out = append(out, st.Post)
		}
		if st.Body != nil {
			out = append(out, exprsInStmt(st.Body)...)
		}
		return out
	case *syntax.WhileStmt:
		var out []syntax.Expr
		if st.Cond != nil {
			out = append(out, st.Cond)
		}
		if st.Body != nil {
			out = append(out, exprsInStmt(st.Body)...)
		}
		return out
	case *syntax.ReturnStmt:
		if st.X != nil {
			return []syntax.Expr{st.X}
		}
	case *syntax.EmitStmt:
		if st.X != nil {
			return []syntax.Expr{st.X}
		}
	case *syntax.RevertStmt:
		if st.X != nil {
			return []syntax.Expr{st.X}
		}
	case *syntax.TryStmt:
		var out []syntax.Expr
		if st.Call != nil {
			out = append(out, st.Call)
		}
		out = append(out, exprsInBody(st.Body)...)
		for _, c := range st.Catches {
			out = append(out, exprsInBody(c.Body)...)
		}
		return out
	}
	return nil
}
