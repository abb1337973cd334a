package sema

import (
	"github.com/lumosimmo/solidity-analyzer/internal/defmap"
	"github.com/lumosimmo/solidity-analyzer/internal/hir"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/scopes"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

// FuncScope pairs a function-like declaration with its local-binder
// table, so resolution can answer identifier lookups inside a body
// without re-walking the function on every request.
type FuncScope struct {
	Decl *syntax.FunctionDecl
	Defs []scopes.LocalDef
}

// Program is the semantic snapshot: the lowered import/def graph plus
// everything resolution needs that the def map alone doesn't carry —
// contract base lists (for C3), function declarations (for overload
// selection and receiver typing), and local scopes per function body.
//
// A project holds up to two Programs at once (primary, with cross-file
// resolution; fallback, without) exactly as laid out for the HirProgram
// pair it wraps — building a Program is cheap enough (one pass over
// already-parsed files) that the caller just builds both when needed
// rather than this type tracking which mode it was built in.
type Program struct {
	Hir       *hir.HirProgram
	Files     map[intern.FileID]*syntax.File
	Contracts map[ContractKey]*ContractInfo
	Functions map[intern.DefID]*syntax.FunctionDecl
	Variables map[intern.DefID]*syntax.VarDecl
	Structs   map[intern.DefID]*syntax.StructDecl
	Enums     map[intern.DefID]*syntax.EnumDecl
	Udvts     map[intern.DefID]*syntax.UdvtDecl

	scopeCache map[*syntax.FunctionDecl][]scopes.LocalDef
	refs       refIndex
}

// NewProgram builds a Program from an already-lowered HirProgram and the
// parsed File for each of its files. interner must be the same
// DefInterner used to build prog's DefMap, so that recomputing
// Intern(kind, file, name, container) here yields the identical DefIDs
// the def map already assigned.
func NewProgram(interner *intern.DefInterner, prog *hir.HirProgram, files map[intern.FileID]*syntax.File) *Program {
	p := &Program{
		Hir:        prog,
		Files:      files,
		Contracts:  make(map[ContractKey]*ContractInfo),
		Functions:  make(map[intern.DefID]*syntax.FunctionDecl),
		Variables:  make(map[intern.DefID]*syntax.VarDecl),
		Structs:    make(map[intern.DefID]*syntax.StructDecl),
		Enums:      make(map[intern.DefID]*syntax.EnumDecl),
		Udvts:      make(map[intern.DefID]*syntax.UdvtDecl),
		scopeCache: make(map[*syntax.FunctionDecl][]scopes.LocalDef),
	}

	for file, f := range files {
		for _, c := range f.Contracts {
			bases := make([]string, len(c.Bases))
			for i, b := range c.Bases {
				bases[i] = b.Name
			}
			p.Contracts[ContractKey{File: file, Name: c.Name}] = &ContractInfo{
				File: file, Name: c.Name, Kind: contractKind(c.Kind), Bases: bases,
			}
			for _, fn := range c.Functions {
				id := interner.Intern(intern.KindFunction, file, fn.Name, c.Name)
				p.Functions[id] = fn
			}
			for _, v := range c.Variables {
				id := interner.Intern(intern.KindVariable, file, v.Name, c.Name)
				p.Variables[id] = v
			}
			for _, s := range c.Structs {
				id := interner.Intern(intern.KindStruct, file, s.Name, c.Name)
				p.Structs[id] = s
			}
			for _, e := range c.Enums {
				id := interner.Intern(intern.KindEnum, file, e.Name, c.Name)
				p.Enums[id] = e
			}
			for _, u := range c.Udvts {
				id := interner.Intern(intern.KindUdvt, file, u.Name, c.Name)
				p.Udvts[id] = u
			}
		}
		for _, fn := range f.Functions {
			id := interner.Intern(intern.KindFunction, file, fn.Name, "")
			p.Functions[id] = fn
		}
		for _, s := range f.Structs {
			id := interner.Intern(intern.KindStruct, file, s.Name, "")
			p.Structs[id] = s
		}
		for _, e := range f.Enums {
			id := interner.Intern(intern.KindEnum, file, e.Name, "")
			p.Enums[id] = e
		}
		for _, u := range f.Udvts {
			id := interner.Intern(intern.KindUdvt, file, u.Name, "")
			p.Udvts[id] = u
		}
	}
	return p
}

func contractKind(k syntax.ContractKind) intern.DefKind {
	switch k {
	case syntax.KInterface:
		return intern.KindInterface
	case syntax.KLibrary:
		return intern.KindLibrary
	default:
		return intern.KindContract
	}
}

// LocalScopes returns (and caches) the local-binder table for fn.
func (p *Program) LocalScopes(fn *syntax.FunctionDecl) []scopes.LocalDef {
	if defs, ok := p.scopeCache[fn]; ok {
		return defs
	}
	defs := scopes.Build(fn)
	p.scopeCache[fn] = defs
	return defs
}

// Linearize computes contract's C3 linearization within this Program.
func (p *Program) Linearize(file intern.FileID, contractName string) []string {
	return Linearize(p.Contracts, file, contractName)
}

// EnclosingContract is the exported form of enclosingContract, for
// completion and hover callers that need the same "current contract"
// context resolution uses.
func (p *Program) EnclosingContract(file intern.FileID, offset int) *ContractInfo {
	return p.enclosingContract(file, offset)
}

// enclosingContract returns the ContractInfo whose body textually
// contains offset in file, if any — used to give member-access and
// `super`/`this` resolution the right "current contract" context.
func (p *Program) enclosingContract(file intern.FileID, offset int) *ContractInfo {
	f, ok := p.Files[file]
	if !ok {
		return nil
	}
	for _, c := range f.Contracts {
		if c.Range.ContainsInclusive(offset) {
			return p.Contracts[ContractKey{File: file, Name: c.Name}]
		}
	}
	return nil
}

// defEntryFor looks up the DefMap entry for an interned id, purely as a
// convenience over p.Hir.Defs.ByID.
func (p *Program) defEntryFor(id intern.DefID) (*defmap.DefEntry, bool) {
	return p.Hir.Defs.ByID(id)
}

// ContractDecl returns the raw declaration for a contract/interface/
// library, bypassing the ContractInfo summary — callers that need the
// full member list (doc rendering, not just typing) go through here.
func (p *Program) ContractDecl(file intern.FileID, name string) *syntax.ContractDecl {
	f, ok := p.Files[file]
	if !ok {
		return nil
	}
	for _, c := range f.Contracts {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FunctionSignature renders fn's inheritdoc-matching signature: its
// parameter type sequence. Two overrides across a base/derived pair
// match by name and this signature, independent of return types or
// visibility.
func FunctionSignature(fn *syntax.FunctionDecl) string {
	return paramSignature(fn)
}
