package ide

import (
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

// decl is what hover and @inheritdoc resolution need about a definition
// site: enough to render a signature line and to locate its NatSpec
// comments, plus (for a contract member) the contract it was found on.
type decl struct {
	Kind      intern.DefKind
	Name      string
	Container string
	NameRange text.Range
	Fn        *syntax.FunctionDecl
	Var       *syntax.VarDecl
	Contract  *syntax.ContractDecl
	Struct    *syntax.StructDecl
	Enum      *syntax.EnumDecl
	Udvt      *syntax.UdvtDecl
	Comments  []syntax.Comment
}

// declAt locates the declaration node at (file, rng): the range a
// sema.Symbol reports as a definition_range.
func declAt(prog *sema.Program, file intern.FileID, rng text.Range) (decl, bool) {
	return findDecl(prog, file, func(r text.Range) bool { return r == rng })
}

// declAtOffset locates the declaration whose name contains offset, for
// hovering directly over a declaration's own name rather than a
// reference to it.
func declAtOffset(prog *sema.Program, file intern.FileID, offset int) (decl, bool) {
	return findDecl(prog, file, func(r text.Range) bool { return r.ContainsInclusive(offset) })
}

// findDecl searches free (file-level) items, every contract's members,
// and local declarations inside function/modifier bodies for the first
// name range match reports true for, since a symbol's definition can be
// any of these.
func findDecl(prog *sema.Program, file intern.FileID, match func(text.Range) bool) (decl, bool) {
	f, ok := prog.Files[file]
	if !ok {
		return decl{}, false
	}

	for _, c := range f.Contracts {
		if match(c.NameRange) {
			return decl{Kind: contractDefKind(c.Kind), Name: c.Name, NameRange: c.NameRange, Contract: c, Comments: c.Comments}, true
		}
	}
	for _, s := range f.Structs {
		if match(s.NameRange) {
			return decl{Kind: intern.KindStruct, Name: s.Name, NameRange: s.NameRange, Struct: s, Comments: s.Comments}, true
		}
	}
	for _, e := range f.Enums {
		if match(e.NameRange) {
			return decl{Kind: intern.KindEnum, Name: e.Name, NameRange: e.NameRange, Enum: e, Comments: e.Comments}, true
		}
	}
	for _, u := range f.Udvts {
		if match(u.NameRange) {
			return decl{Kind: intern.KindUdvt, Name: u.Name, NameRange: u.NameRange, Udvt: u, Comments: u.Comments}, true
		}
	}
	for _, fn := range f.Functions {
		if match(fn.NameRange) {
			return decl{Kind: intern.KindFunction, Name: fn.Name, NameRange: fn.NameRange, Fn: fn, Comments: fn.Comments}, true
		}
		if d, ok := declInBody(fn.Body, match); ok {
			return d, true
		}
	}

	for _, c := range f.Contracts {
		for _, fn := range c.Functions {
			if match(fn.NameRange) {
				return decl{Kind: intern.KindFunction, Name: fn.Name, Container: c.Name, NameRange: fn.NameRange, Fn: fn, Comments: fn.Comments}, true
			}
			if d, ok := declInBody(fn.Body, match); ok {
				return d, true
			}
		}
		for _, mod := range c.Modifiers {
			if match(mod.NameRange) {
				return decl{Kind: intern.KindModifier, Name: mod.Name, Container: c.Name, NameRange: mod.NameRange, Fn: mod, Comments: mod.Comments}, true
			}
			if d, ok := declInBody(mod.Body, match); ok {
				return d, true
			}
		}
		for _, v := range c.Variables {
			if match(v.NameRange) {
				return decl{Kind: intern.KindVariable, Name: v.Name, Container: c.Name, NameRange: v.NameRange, Var: v, Comments: v.Comments}, true
			}
		}
		for _, s := range c.Structs {
			if match(s.NameRange) {
				return decl{Kind: intern.KindStruct, Name: s.Name, Container: c.Name, NameRange: s.NameRange, Struct: s, Comments: s.Comments}, true
			}
		}
		for _, e := range c.Enums {
			if match(e.NameRange) {
				return decl{Kind: intern.KindEnum, Name: e.Name, Container: c.Name, NameRange: e.NameRange, Enum: e, Comments: e.Comments}, true
			}
		}
		for _, u := range c.Udvts {
			if match(u.NameRange) {
				return decl{Kind: intern.KindUdvt, Name: u.Name, Container: c.Name, NameRange: u.NameRange, Udvt: u, Comments: u.Comments}, true
			}
		}
	}
	return decl{}, false
}

func declInBody(b *syntax.Block, match func(text.Range) bool) (decl, bool) {
	if b == nil {
		return decl{}, false
	}
	for _, s := range b.Stmts {
		if d, ok := declInStmt(s, match); ok {
			return d, true
		}
	}
	return decl{}, false
}

func declInStmt(s syntax.Stmt, match func(text.Range) bool) (decl, bool) {
	switch st := s.(type) {
	case *syntax.DeclStmt:
		if st.Decl != nil && match(st.Decl.NameRange) {
			return decl{Kind: intern.KindVariable, Name: st.Decl.Name, NameRange: st.Decl.NameRange, Var: st.Decl, Comments: st.Decl.Comments}, true
		}
	case *syntax.TupleDeclStmt:
		for _, d := range st.Decls {
			if d != nil && match(d.NameRange) {
				return decl{Kind: intern.KindVariable, Name: d.Name, NameRange: d.NameRange, Var: d, Comments: d.Comments}, true
			}
		}
	case *syntax.BlockStmt:
		return declInBody(st.Block, match)
	case *syntax.IfStmt:
		if d, ok := declInStmt(st.Then, match); ok {
			return d, true
		}
		if st.Else != nil {
			return declInStmt(st.Else, match)
		}
	case *syntax.ForStmt:
		if st.Init != nil {
			if d, ok := declInStmt(st.Init, match); ok {
				return d, true
			}
		}
		if st.Body != nil {
			return declInStmt(st.Body, match)
		}
	case *syntax.WhileStmt:
		if st.Body != nil {
			return declInStmt(st.Body, match)
		}
	case *syntax.TryStmt:
		for _, r := range st.Returns {
			if match(r.Range) {
				return decl{Kind: intern.KindVariable, Name: r.Name, NameRange: r.Range}, true
			}
		}
		if d, ok := declInBody(st.Body, match); ok {
			return d, true
		}
		for _, c := range st.Catches {
			for _, p := range c.Params {
				if match(p.Range) {
					return decl{Kind: intern.KindVariable, Name: p.Name, NameRange: p.Range}, true
				}
			}
			if d, ok := declInBody(c.Body, match); ok {
				return d, true
			}
		}
	}
	return decl{}, false
}

func contractDefKind(k syntax.ContractKind) intern.DefKind {
	switch k {
	case syntax.KInterface:
		return intern.KindInterface
	case syntax.KLibrary:
		return intern.KindLibrary
	default:
		return intern.KindContract
	}
}
