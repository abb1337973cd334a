package sema

import (
	"github.com/lumosimmo/solidity-analyzer/internal/defmap"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/scopes"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

// TypeKind tags the shape of a computed Type.
type TypeKind uint8

const (
	TypeUnknown TypeKind = iota
	TypeElementary
	TypeContract
	TypeInterface
	TypeLibrary
	TypeStruct
	TypeEnum
	TypeUdvt
	TypeArray
	TypeMapping
	TypeMeta // type(T) / the "type" of a type, used for TypeNameExpr
)

// Type is a structurally computed receiver type: for user types it
// names the declaring file so member lookup can go straight back to the
// def map without re-resolving the name.
type Type struct {
	Kind     TypeKind
	Name     string // elementary spelling, or user type name
	File     intern.FileID
	Location string // "", "memory", "storage", "calldata"
	Elem     *Type  // array element / mapping value
	Key      *Type  // mapping key
}

// normalizeLocation defaults a reference type with no explicit location
// to memory, matching Solidity's own default-location rule, so member
// lookup never has to special-case "no location yet".
func (t Type) normalizeLocation() Type {
	if t.Location == "" && (t.Kind == TypeStruct || t.Kind == TypeArray || t.Kind == TypeMapping) {
		t.Location = "memory"
	}
	return t
}

// typeOfTypeExpr converts a syntax-level type annotation to a Type,
// resolving a named reference against file's contract/struct/enum/udvt
// declarations known to the Program.
func (p *Program) typeOfTypeExpr(file intern.FileID, t syntax.TypeExpr) Type {
	if t.IsMapping {
		key := p.typeOfTypeExpr(file, *t.KeyType)
		val := p.typeOfTypeExpr(file, *t.ValType)
		return Type{Kind: TypeMapping, Key: &key, Elem: &val, Location: "storage"}
	}
	if t.IsArray {
		var elem Type
		if t.ValType != nil {
			elem = p.typeOfTypeExpr(file, *t.ValType)
		} else {
			elem = Type{Kind: TypeElementary, Name: t.Name}
		}
		return Type{Kind: TypeArray, Elem: &elem, Location: t.Location}
	}
	if syntax.IsElementaryType(t.Name) {
		return Type{Kind: TypeElementary, Name: t.Name, Location: t.Location}
	}

	for _, e := range p.Hir.Defs.ByFileName(file, t.Name) {
		switch e.Kind {
		case intern.KindContract:
			return Type{Kind: TypeContract, Name: t.Name, File: file, Location: t.Location}
		case intern.KindInterface:
			return Type{Kind: TypeInterface, Name: t.Name, File: file, Location: t.Location}
		case intern.KindLibrary:
			return Type{Kind: TypeLibrary, Name: t.Name, File: file, Location: t.Location}
		case intern.KindStruct:
			return Type{Kind: TypeStruct, Name: t.Name, File: file, Location: t.Location}
		case intern.KindEnum:
			return Type{Kind: TypeEnum, Name: t.Name, File: file, Location: t.Location}
		case intern.KindUdvt:
			return Type{Kind: TypeUdvt, Name: t.Name, File: file, Location: t.Location}
		}
	}
	return Type{Kind: TypeUnknown, Name: t.Name}
}

// typeOfDefEntry computes the Type a def-map entry denotes when used as
// a value: a contract/struct/enum/udvt name denotes its own type; a
// state variable denotes its declared type; a function with exactly one
// return value denotes that return's type (a multi-value function has
// no single receiver type and is left to call-site handling instead).
func (p *Program) typeOfDefEntry(file intern.FileID, e *defmap.DefEntry) (Type, bool) {
	switch e.Kind {
	case intern.KindContract:
		return Type{Kind: TypeContract, Name: e.Name, File: e.File}, true
	case intern.KindInterface:
		return Type{Kind: TypeInterface, Name: e.Name, File: e.File}, true
	case intern.KindLibrary:
		return Type{Kind: TypeLibrary, Name: e.Name, File: e.File}, true
	case intern.KindStruct:
		return Type{Kind: TypeStruct, Name: e.Name, File: e.File}, true
	case intern.KindEnum:
		return Type{Kind: TypeEnum, Name: e.Name, File: e.File}, true
	case intern.KindUdvt:
		return Type{Kind: TypeUdvt, Name: e.Name, File: e.File}, true
	case intern.KindVariable:
		if v, ok := p.Variables[e.ID]; ok {
			return p.typeOfTypeExpr(file, v.Type).normalizeLocation(), true
		}
		return Type{}, false
	case intern.KindFunction:
		if fn, ok := p.Functions[e.ID]; ok && len(fn.Returns) == 1 {
			return p.typeOfTypeExpr(file, fn.Returns[0].Type).normalizeLocation(), true
		}
		return Type{}, false
	default:
		return Type{}, false
	}
}

// TypeOfExpr computes the structural type of an expression used as a
// receiver, per the table in the member-access/receiver-type design:
// identifiers resolve through their unique definition; member access
// through the base's unique member; calls through the callee's return
// type; indexing through the container's element type; ternary through
// matching branches; unary/payable/delete pass through their operand's
// type; TypeNameExpr yields a meta-type. A cast written `T(x)` parses as
// a call and gets a type only when T names a function.
func (p *Program) TypeOfExpr(file intern.FileID, ctx *ContractInfo, e syntax.Expr) (Type, bool) {
	switch x := e.(type) {
	case *syntax.ThisExpr:
		if ctx == nil {
			return Type{}, false
		}
		return Type{Kind: TypeContract, Name: ctx.Name, File: ctx.File}, true
	case *syntax.SuperExpr:
		if ctx == nil {
			return Type{}, false
		}
		return Type{Kind: TypeContract, Name: ctx.Name, File: ctx.File}, true
	case *syntax.Ident:
		return p.typeOfIdent(file, ctx, x)
	case *syntax.MemberAccess:
		baseType, ok := p.TypeOfExpr(file, ctx, x.Base)
		if !ok {
			return Type{}, false
		}
		mode := p.accessModeFor(file, x.Base, baseType)
		members := p.membersOf(baseType, ctx, mode)
		var matched []*memberDecl
		for _, m := range members {
			if m.Name == x.Name {
				matched = append(matched, m)
			}
		}
		if len(matched) != 1 {
			return Type{}, false
		}
		return matched[0].Type, true
	case *syntax.CallExpr:
		return p.calleeReturnType(file, ctx, x)
	case *syntax.NewExpr:
		return p.typeOfTypeExpr(file, x.Type).normalizeLocation(), true
	case *syntax.IndexAccess:
		baseType, ok := p.TypeOfExpr(file, ctx, x.Base)
		if !ok {
			return Type{}, false
		}
		switch baseType.Kind {
		case TypeArray:
			if baseType.Elem == nil {
				return Type{}, false
			}
			return *baseType.Elem, true
		case TypeMapping:
			if baseType.Elem == nil {
				return Type{}, false
			}
			v := *baseType.Elem
			v.Location = "storage"
			return v, true
		default:
			return Type{}, false
		}
	case *syntax.TupleExpr:
		if len(x.Elems) == 1 && x.Elems[0] != nil {
			return p.TypeOfExpr(file, ctx, x.Elems[0])
		}
		return Type{}, false
	case *syntax.PayableExpr:
		return p.TypeOfExpr(file, ctx, x.X)
	case *syntax.UnaryExpr:
		return p.TypeOfExpr(file, ctx, x.X)
	case *syntax.DeleteExpr:
		return p.TypeOfExpr(file, ctx, x.X)
	case *syntax.TernaryExpr:
		tThen, okThen := p.TypeOfExpr(file, ctx, x.Then)
		tElse, okElse := p.TypeOfExpr(file, ctx, x.Else)
		if okThen && okElse && tThen.Kind == tElse.Kind && tThen.Name == tElse.Name {
			return tThen, true
		}
		return Type{}, false
	case *syntax.TypeNameExpr:
		return Type{Kind: TypeMeta, Name: x.Type.Name}, true
	default:
		return Type{}, false
	}
}

func (p *Program) typeOfIdent(file intern.FileID, ctx *ContractInfo, id *syntax.Ident) (Type, bool) {
	// Local variables shadow everything else.
	if fn := p.enclosingFunction(file, id.Range.Start); fn != nil {
		if def, ok := scopes.Lookup(p.LocalScopes(fn), id.Name, id.Range.Start); ok && def.Type != nil {
			return p.typeOfTypeExpr(file, *def.Type).normalizeLocation(), true
		}
	}

	var container string
	if ctx != nil {
		container = ctx.Name
	}
	if container != "" {
		for _, e := range p.Hir.Defs.ByFileName(file, id.Name) {
			if e.Container != container {
				continue
			}
			if t, ok := p.typeOfDefEntry(file, e); ok {
				return t, true
			}
		}
	}
	entries := p.Hir.Defs.ByFileName(file, id.Name)
	var candidates []Type
	for _, e := range entries {
		if e.Container != "" {
			continue
		}
		if t, ok := p.typeOfDefEntry(file, e); ok {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	return Type{}, false
}

// calleeReturnType resolves call's callee to a function candidate set
// and, via overload selection, to its single-value return type — the
// same lookup used for a type-position `Foo(x)` cast is intentionally
// excluded here: TypeNameExpr is handled separately at parse-adjacent
// layers, this only handles genuine function calls.
func (p *Program) calleeReturnType(file intern.FileID, ctx *ContractInfo, call *syntax.CallExpr) (Type, bool) {
	if callee, ok := call.Callee.(*syntax.MemberAccess); ok {
		baseType, ok := p.TypeOfExpr(file, ctx, callee.Base)
		if !ok {
			return Type{}, false
		}
		mode := p.accessModeFor(file, callee.Base, baseType)
		var candidates []*memberDecl
		for _, m := range p.membersOf(baseType, ctx, mode) {
			if m.Name == callee.Name && m.Kind == intern.KindFunction {
				candidates = append(candidates, m)
			}
		}
		if len(candidates) == 0 {
			return Type{}, false
		}
		chosen := p.selectOverloadMember(candidates, ctx, call.Args)
		if chosen == nil || chosen.Decl == nil || len(chosen.Decl.Returns) != 1 {
			return Type{}, false
		}
		return functionTypeOrZero(p, baseType.File, chosen.Decl), true
	}

	var candidates []*defmap.DefEntry
	switch callee := call.Callee.(type) {
	case *syntax.Ident:
		candidates = p.identFunctionCandidates(file, ctx, callee.Name)
	case *syntax.SuperExpr:
		return Type{}, false
	default:
		return Type{}, false
	}
	if len(candidates) == 0 {
		return Type{}, false
	}
	chosen := p.SelectOverload(candidates, ctx, call.Args)
	if chosen == nil {
		return Type{}, false
	}
	return p.typeOfDefEntry(file, chosen)
}

// identFunctionCandidates gathers every function named name reachable
// from an unqualified call site: contract members first (if inside a
// contract, including inherited ones), then top-level free functions.
func (p *Program) identFunctionCandidates(file intern.FileID, ctx *ContractInfo, name string) []*defmap.DefEntry {
	var out []*defmap.DefEntry
	if ctx != nil {
		for _, baseName := range p.Linearize(ctx.File, ctx.Name) {
			for _, e := range p.Hir.Defs.ByFileName(ctx.File, name) {
				if e.Kind == intern.KindFunction && e.Container == baseName {
					out = append(out, e)
				}
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, e := range p.Hir.Defs.ByFileName(file, name) {
		if e.Kind == intern.KindFunction && e.Container == "" {
			out = append(out, e)
		}
	}
	return out
}

// EnclosingFunction is the exported form of enclosingFunction, for
// completion's locals-in-scope source.
func (p *Program) EnclosingFunction(file intern.FileID, offset int) *syntax.FunctionDecl {
	return p.enclosingFunction(file, offset)
}

// enclosingFunction finds the function/modifier declaration (top-level
// or within any contract of file) whose body contains offset in file.
func (p *Program) enclosingFunction(file intern.FileID, offset int) *syntax.FunctionDecl {
	f, ok := p.Files[file]
	if !ok {
		return nil
	}
	for _, fn := range f.Functions {
		if fn.Body != nil && fn.Body.Range.ContainsInclusive(offset) {
			return fn
		}
	}
	for _, c := range f.Contracts {
		if !c.Range.ContainsInclusive(offset) {
			continue
		}
		for _, fn := range c.Functions {
			if fn.Body != nil && fn.Body.Range.ContainsInclusive(offset) {
				return fn
			}
		}
		for _, fn := range c.Modifiers {
			if fn.Body != nil && fn.Body.Range.ContainsInclusive(offset) {
				return fn
			}
		}
	}
	return nil
}
