package natspec

import (
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

// Declaring is what ResolveInheritdoc needs to know about the
// declaration a Doc came from, so it can compute an inheritdoc-matching
// signature and look up a same-shaped member on a base contract.
type Declaring struct {
	File     intern.FileID
	Contract string
	Name     string
	Fn       *syntax.FunctionDecl // nil for non-function declarations
}

func (d Declaring) signature() string {
	if d.Fn != nil {
		return d.Name + "(" + sema.FunctionSignature(d.Fn) + ")"
	}
	return d.Name
}

// cycleKey is the (file, contract, signature) triple §4.16 keys cycle
// detection on.
type cycleKey struct {
	file      intern.FileID
	contract  string
	signature string
}

// DebugRecord is emitted when inheritdoc resolution breaks a cycle,
// for callers that want to surface it (e.g. as a trace log entry).
type DebugRecord struct {
	File      intern.FileID
	Contract  string
	Signature string
}

// ResolveInheritdoc fills in any section missing from doc by walking
// decl's @inheritdoc target (or, absent an explicit tag, is a no-op):
// it finds decl's contract's C3 linearization, skips the contract
// itself, and takes the first base named by the tag. It then locates
// the member on that base with the same inheritdoc signature, parses
// its own comments, recurses (so a chain of @inheritdoc resolves
// transitively), and merges every section tag doc doesn't already
// carry. onCycle, if non-nil, is called once per broken cycle.
func ResolveInheritdoc(prog *sema.Program, doc *Doc, decl Declaring, onCycle func(DebugRecord)) *Doc {
	visited := map[cycleKey]bool{
		{file: decl.File, contract: decl.Contract, signature: decl.signature()}: true,
	}
	return resolveInheritdoc(prog, doc, decl, visited, onCycle)
}

func resolveInheritdoc(prog *sema.Program, doc *Doc, decl Declaring, visited map[cycleKey]bool, onCycle func(DebugRecord)) *Doc {
	target, ok := doc.Inheritdoc()
	if !ok {
		return doc
	}

	order := prog.Linearize(decl.File, decl.Contract)
	var baseName string
	for _, name := range order {
		if name == decl.Contract {
			continue
		}
		if name == target {
			baseName = name
			break
		}
	}
	if baseName == "" {
		return doc
	}

	baseDoc, baseDecl, ok := findMember(prog, decl.File, baseName, decl)
	if !ok {
		return doc
	}

	key := cycleKey{file: baseDecl.File, contract: baseDecl.Contract, signature: baseDecl.signature()}
	if visited[key] {
		if onCycle != nil {
			onCycle(DebugRecord{File: baseDecl.File, Contract: baseDecl.Contract, Signature: baseDecl.signature()})
		}
		return doc
	}
	visited[key] = true

	baseDoc = resolveInheritdoc(prog, baseDoc, baseDecl, visited, onCycle)
	return merge(doc, baseDoc)
}

// findMember locates decl's same-named (and, for functions, same
// parameter-type-signature) counterpart on contract baseName, returning
// its parsed Doc and its own Declaring (for further @inheritdoc chasing).
func findMember(prog *sema.Program, file intern.FileID, baseName string, decl Declaring) (*Doc, Declaring, bool) {
	c := prog.ContractDecl(file, baseName)
	if c == nil {
		return nil, Declaring{}, false
	}

	if decl.Fn != nil {
		want := sema.FunctionSignature(decl.Fn)
		for _, fn := range c.Functions {
			if fn.Name == decl.Name && sema.FunctionSignature(fn) == want {
				return Parse(fn.Comments), Declaring{File: file, Contract: baseName, Name: fn.Name, Fn: fn}, true
			}
		}
		return nil, Declaring{}, false
	}

	for _, v := range c.Variables {
		if v.Name == decl.Name {
			return Parse(v.Comments), Declaring{File: file, Contract: baseName, Name: v.Name}, true
		}
	}
	for _, s := range c.Structs {
		if s.Name == decl.Name {
			return Parse(s.Comments), Declaring{File: file, Contract: baseName, Name: s.Name}, true
		}
	}
	for _, e := range c.Enums {
		if e.Name == decl.Name {
			return Parse(e.Comments), Declaring{File: file, Contract: baseName, Name: e.Name}, true
		}
	}
	for _, e := range c.Events {
		if e.Name == decl.Name {
			return Parse(e.Comments), Declaring{File: file, Contract: baseName, Name: e.Name}, true
		}
	}
	for _, e := range c.Errors {
		if e.Name == decl.Name {
			return Parse(e.Comments), Declaring{File: file, Contract: baseName, Name: e.Name}, true
		}
	}
	for _, u := range c.Udvts {
		if u.Name == decl.Name {
			return Parse(u.Comments), Declaring{File: file, Contract: baseName, Name: u.Name}, true
		}
	}
	return nil, Declaring{}, false
}

// merge copies every section from src whose (tag, key) isn't already
// present in dst, leaving dst's own sections untouched.
func merge(dst, src *Doc) *Doc {
	out := &Doc{Sections: append([]Section(nil), dst.Sections...)}
	for _, s := range src.Sections {
		if s.Tag == TagInheritdoc {
			continue
		}
		if out.HasTag(s.Tag, s.Key) {
			continue
		}
		out.Sections = append(out.Sections, s)
	}
	return out
}
