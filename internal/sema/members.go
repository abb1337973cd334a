package sema

import (
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/scopes"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

// AccessMode tags how a contract-typed receiver was reached, since that
// determines which members a member access can see.
type AccessMode uint8

const (
	AccessInstance AccessMode = iota // a value of contract type
	AccessType                       // the contract name itself: ContractName.something
	AccessLibrary                    // a library name: Lib.something
)

// memberDecl is one member candidate surfaced by membersOf: enough to
// both label it and, if the caller needs it, keep resolving through its
// own type.
type memberDecl struct {
	Name      string
	Kind      intern.DefKind
	Type      Type
	Decl      *syntax.FunctionDecl // populated for Kind == intern.KindFunction
	Container string               // declaring contract/library name
	NameRange text.Range           // declaration site, for goto-definition
}

// MemberInfo is memberDecl's exported mirror, for callers outside this
// package (completion, hover) that need to enumerate members without
// reaching into sema's internal candidate-selection machinery.
type MemberInfo struct {
	Name      string
	Kind      intern.DefKind
	Type      Type
	Decl      *syntax.FunctionDecl
	Container string
	NameRange text.Range
}

// Members enumerates baseType's members reachable through mode, for
// completion and hover. It's the exported equivalent of membersOf.
func (p *Program) Members(baseType Type, ctx *ContractInfo, mode AccessMode) []MemberInfo {
	decls := p.membersOf(baseType, ctx, mode)
	out := make([]MemberInfo, len(decls))
	for i, m := range decls {
		out[i] = MemberInfo{Name: m.Name, Kind: m.Kind, Type: m.Type, Decl: m.Decl, Container: m.Container, NameRange: m.NameRange}
	}
	return out
}

// paramSignature renders fn's parameter type sequence for deduping
// identical redeclarations reached via diamond inheritance, while
// keeping genuine overloads (different parameter lists) distinct.
func paramSignature(fn *syntax.FunctionDecl) string {
	s := ""
	for i, p := range fn.Params {
		if i > 0 {
			s += ","
		}
		s += p.Type.Name
	}
	return s
}

// accessModeFor classifies how base was reached as a receiver: a bare
// reference to a contract/interface's own name (not shadowed by a local)
// is type access; a library name is library access;
// anything else carrying a contract-shaped type is instance access.
// AccessModeFor is the exported form of accessModeFor, for completion's
// member-context handling.
func (p *Program) AccessModeFor(file intern.FileID, base syntax.Expr, baseType Type) AccessMode {
	return p.accessModeFor(file, base, baseType)
}

func (p *Program) accessModeFor(file intern.FileID, base syntax.Expr, baseType Type) AccessMode {
	if baseType.Kind == TypeLibrary {
		return AccessLibrary
	}
	id, ok := base.(*syntax.Ident)
	if !ok {
		return AccessInstance
	}
	if fn := p.enclosingFunction(file, id.Range.Start); fn != nil {
		if _, isLocal := scopes.Lookup(p.LocalScopes(fn), id.Name, id.Range.Start); isLocal {
			return AccessInstance
		}
	}
	for _, e := range p.Hir.Defs.ByFileName(file, id.Name) {
		if e.Container != "" {
			continue
		}
		if (e.Kind == intern.KindContract || e.Kind == intern.KindInterface) && e.Name == baseType.Name {
			return AccessType
		}
	}
	return AccessInstance
}

// membersOf enumerates the members of baseType reachable through mode,
// including inherited members for contract/interface types walked via
// C3 linearization. ctx is the contract enclosing the access site, used
// only to decide whether internal type-access members are visible
// (§4.12: internal members are visible through type access only when
// the current contract derives from the target).
func (p *Program) membersOf(baseType Type, ctx *ContractInfo, mode AccessMode) []*memberDecl {
	switch baseType.Kind {
	case TypeContract, TypeInterface:
		return p.contractMembers(baseType.File, baseType.Name, ctx, mode)
	case TypeLibrary:
		return p.libraryMembers(baseType.File, baseType.Name)
	case TypeStruct:
		return p.structMembers(baseType.File, baseType.Name)
	default:
		return nil
	}
}

func (p *Program) contractMembers(file intern.FileID, name string, ctx *ContractInfo, mode AccessMode) []*memberDecl {
	currentDerivesTarget := false
	if ctx != nil {
		for _, b := range p.Linearize(ctx.File, ctx.Name) {
			if b == name && ctx.Name != name {
				currentDerivesTarget = true
				break
			}
		}
	}

	var out []*memberDecl
	seen := map[string]bool{}
	for _, baseName := range p.Linearize(file, name) {
		info, ok := p.Contracts[ContractKey{File: file, Name: baseName}]
		if !ok {
			continue
		}
		f, ok := p.Files[info.File]
		if !ok {
			continue
		}
		var c *syntax.ContractDecl
		for _, cand := range f.Contracts {
			if cand.Name == baseName {
				c = cand
				break
			}
		}
		if c == nil {
			continue
		}
		for _, fn := range c.Functions {
			if fn.Name == "" || !visibleFunction(fn.Visibility, mode, currentDerivesTarget) {
				continue
			}
			key := fn.Name + "#fn#" + paramSignature(fn)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, &memberDecl{Name: fn.Name, Kind: intern.KindFunction, Type: functionTypeOrZero(p, info.File, fn), Decl: fn, Container: baseName, NameRange: fn.NameRange})
		}
		for _, v := range c.Variables {
			if !visibleVariable(v, mode, currentDerivesTarget) {
				continue
			}
			key := v.Name + "#var"
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, &memberDecl{Name: v.Name, Kind: intern.KindVariable, Type: p.typeOfTypeExpr(info.File, v.Type).normalizeLocation(), Container: baseName, NameRange: v.NameRange})
		}
	}
	return out
}

func functionTypeOrZero(p *Program, file intern.FileID, fn *syntax.FunctionDecl) Type {
	if len(fn.Returns) != 1 {
		return Type{}
	}
	return p.typeOfTypeExpr(file, fn.Returns[0].Type).normalizeLocation()
}

// visibleFunction applies §4.12's rule table for a contract member
// function.
func visibleFunction(vis syntax.Visibility, mode AccessMode, currentDerivesTarget bool) bool {
	switch mode {
	case AccessInstance:
		return vis == syntax.VisPublic || vis == syntax.VisExternal
	case AccessType:
		if vis == syntax.VisPublic || vis == syntax.VisExternal {
			return true
		}
		return vis == syntax.VisInternal && currentDerivesTarget
	default:
		return false
	}
}

// visibleVariable applies §4.12's rule for a contract state variable:
// only public non-constant variables are visible through instance
// access (the compiler-synthesized getter); constants are reachable
// only through type access.
func visibleVariable(v *syntax.VarDecl, mode AccessMode, currentDerivesTarget bool) bool {
	switch mode {
	case AccessInstance:
		return v.Visibility == syntax.VisPublic && !v.Constant
	case AccessType:
		if v.Constant {
			return true
		}
		if v.Visibility == syntax.VisPublic {
			return true
		}
		return v.Visibility == syntax.VisInternal && currentDerivesTarget
	default:
		return false
	}
}

// libraryMembers surfaces every member of visibility internal or
// greater, since library members are reached only via `using X for Y`
// or qualified `Lib.fn` calls, never via an instance.
func (p *Program) libraryMembers(file intern.FileID, name string) []*memberDecl {
	key := ContractKey{File: file, Name: name}
	info, ok := p.Contracts[key]
	if !ok {
		return nil
	}
	f, ok := p.Files[info.File]
	if !ok {
		return nil
	}
	var out []*memberDecl
	for _, c := range f.Contracts {
		if c.Name != name {
			continue
		}
		for _, fn := range c.Functions {
			if fn.Name == "" || fn.Visibility == syntax.VisPrivate {
				continue
			}
			out = append(out, &memberDecl{Name: fn.Name, Kind: intern.KindFunction, Type: functionTypeOrZero(p, info.File, fn), Decl: fn, Container: name, NameRange: fn.NameRange})
		}
	}
	return out
}

func (p *Program) structMembers(file intern.FileID, name string) []*memberDecl {
	f, ok := p.Files[file]
	if !ok {
		return nil
	}
	var fields []syntax.Param
	for _, s := range f.Structs {
		if s.Name == name {
			fields = s.Fields
		}
	}
	for _, c := range f.Contracts {
		for _, s := range c.Structs {
			if s.Name == name {
				fields = s.Fields
			}
		}
	}
	out := make([]*memberDecl, 0, len(fields))
	for _, fld := range fields {
		out = append(out, &memberDecl{Name: fld.Name, Kind: intern.KindVariable, Type: p.typeOfTypeExpr(file, fld.Type).normalizeLocation(), Container: name, NameRange: fld.Range})
	}
	return out
}
