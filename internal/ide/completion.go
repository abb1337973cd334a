package ide

import (
	"sort"
	"strings"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

// Item is one completion candidate.
type Item struct {
	Label      string
	Kind       intern.DefKind
	InsertText string // snippet form for callables: "name($0)"
	Detail     string
}

// ImportPaths supplies the candidate import path strings for import-
// string completion context; the caller's workspace/VFS owns path
// discovery, so this package only asks for the list.
type ImportPaths func() []string

// Complete answers a completion request at offset against src, the
// file's current (possibly just-edited) source text.
//
// Four contexts are distinguished: inside an import path string,
// immediately after a `.` (member context), just inside `override(`
// (contract names of the file), and everywhere else (identifier context,
// merging contract members, locals in scope, and global top-level names). Narrower contexts this mirrors from solc's
// own grammar — struct-literal-field vs. named-argument disambiguation,
// call-options braces, using-for brace suppression — are not classified
// here; they fall through to plain identifier completion, which is a
// safe (if occasionally too-broad) default.
func Complete(prog *sema.Program, file intern.FileID, offset int, src []byte, imports ImportPaths) []Item {
	if inImportString(src, offset) {
		return importItems(imports)
	}
	if dotOffset, ok := precedingDot(src, offset); ok {
		return memberItems(prog, file, src, dotOffset)
	}
	if afterToken(src, offset, syntax.TokOverride) {
		return contractNameItems(prog, file)
	}
	return identifierItems(prog, file, offset)
}

// inImportString reports whether offset sits inside a string literal
// that is itself an import path, by scanning tokens up to offset and
// checking whether the nearest preceding significant token is `import`,
// `from`, or a comma within an already-open import item list.
func inImportString(src []byte, offset int) bool {
	sc := syntax.NewScanner(src)
	sawImport := false
	for {
		tok := sc.Next()
		if tok.Kind == syntax.TokEOF || tok.Range.Start > offset {
			break
		}
		switch tok.Kind {
		case syntax.TokImport:
			sawImport = true
		case syntax.TokSemi:
			sawImport = false
		case syntax.TokString:
			if tok.Range.ContainsInclusive(offset) {
				return sawImport
			}
		}
	}
	return false
}

func importItems(imports ImportPaths) []Item {
	if imports == nil {
		return nil
	}
	paths := imports()
	out := make([]Item, len(paths))
	for i, p := range paths {
		out[i] = Item{Label: p, InsertText: p}
	}
	return out
}

// precedingDot reports whether the last non-space byte before offset is
// `.`, returning its position.
func precedingDot(src []byte, offset int) (int, bool) {
	i := offset - 1
	for i >= 0 && (src[i] == ' ' || src[i] == '\t') {
		i--
	}
	if i >= 0 && src[i] == '.' {
		return i, true
	}
	return 0, false
}

// memberItems resolves the expression immediately before dotOffset to a
// type and lists its members. Only the base identifier's trailing
// segment is resolved (a qualified chain like `a.b.` is treated as if
// `b` were a bare name) — deeper chains still degrade to a best-effort
// member list rather than failing outright.
func memberItems(prog *sema.Program, file intern.FileID, src []byte, dotOffset int) []Item {
	result, ok := syntax.CollectIdentRange(src, dotOffset-1)
	if !ok || result.Name == "" {
		return nil
	}

	ctx := prog.EnclosingContract(file, dotOffset)
	base := &syntax.Ident{Name: result.Name, Range: result.NameRange}
	baseType, ok := prog.TypeOfExpr(file, ctx, base)
	if !ok {
		return nil
	}
	mode := prog.AccessModeFor(file, base, baseType)

	members := prog.Members(baseType, ctx, mode)
	out := make([]Item, len(members))
	for i, m := range members {
		out[i] = memberItem(m)
	}
	out = append(out, builtinMembers(baseType)...)
	return dedupSortItems(out)
}

func memberItem(m sema.MemberInfo) Item {
	if m.Kind == intern.KindFunction && m.Decl != nil {
		return Item{Label: m.Name + "()", Kind: m.Kind, InsertText: m.Name + "($0)", Detail: functionSignature(m.Decl)}
	}
	return Item{Label: m.Name, Kind: m.Kind, InsertText: m.Name}
}

// afterToken reports whether, of the two tokens immediately preceding
// offset, the earlier one is of the given kind and the later one is an
// opening paren — i.e. offset sits just inside a `kind (` construct.
func afterToken(src []byte, offset int, kind syntax.TokenKind) bool {
	sc := syntax.NewScanner(src)
	var prev, prevPrev syntax.Token
	for {
		tok := sc.Next()
		if tok.Kind == syntax.TokEOF || tok.Range.Start >= offset {
			break
		}
		prevPrev, prev = prev, tok
	}
	return prev.Kind == syntax.TokLParen && prevPrev.Kind == kind
}

func contractNameItems(prog *sema.Program, file intern.FileID) []Item {
	var out []Item
	f, ok := prog.Files[file]
	if !ok {
		return nil
	}
	for _, c := range f.Contracts {
		out = append(out, Item{Label: c.Name, Kind: contractDefKind(c.Kind), InsertText: c.Name})
	}
	return dedupSortItems(out)
}

// identifierItems merges locals in scope, the enclosing contract's
// members (reachable the way a bare name inside a method body is), and
// every top-level (file-scope) declaration across the files sema knows
// about — imports aren't resolved down to their exposed-name set here,
// so this over-includes rather than risks omitting a visible name.
func identifierItems(prog *sema.Program, file intern.FileID, offset int) []Item {
	var out []Item
	seen := map[string]bool{}
	add := func(it Item) {
		if seen[it.Label] {
			return
		}
		seen[it.Label] = true
		out = append(out, it)
	}

	if fn := prog.EnclosingFunction(file, offset); fn != nil {
		for _, d := range prog.LocalScopes(fn) {
			if d.ScopeRange.ContainsInclusive(offset) {
				add(Item{Label: d.Name, Kind: intern.KindVariable, InsertText: d.Name, Detail: d.Kind.String()})
			}
		}
	}

	ctx := prog.EnclosingContract(file, offset)
	if ctx != nil {
		selfType := sema.Type{Kind: sema.TypeContract, Name: ctx.Name, File: ctx.File}
		for _, m := range prog.Members(selfType, ctx, sema.AccessInstance) {
			add(memberItem(m))
		}
	}

	for f := range prog.Files {
		ff := prog.Files[f]
		for _, fn := range ff.Functions {
			add(Item{Label: fn.Name + "()", Kind: intern.KindFunction, InsertText: fn.Name + "($0)", Detail: functionSignature(fn)})
		}
		for _, c := range ff.Contracts {
			add(Item{Label: c.Name, Kind: contractDefKind(c.Kind), InsertText: c.Name})
		}
		for _, s := range ff.Structs {
			add(Item{Label: s.Name, Kind: intern.KindStruct, InsertText: s.Name})
		}
		for _, e := range ff.Enums {
			add(Item{Label: e.Name, Kind: intern.KindEnum, InsertText: e.Name})
		}
		for _, u := range ff.Udvts {
			add(Item{Label: u.Name, Kind: intern.KindUdvt, InsertText: u.Name})
		}
	}

	for _, it := range globalIdentifiers {
		add(it)
	}

	return sortItems(out)
}

func dedupSortItems(items []Item) []Item {
	seen := map[string]bool{}
	out := items[:0]
	for _, it := range items {
		if seen[it.Label] {
			continue
		}
		seen[it.Label] = true
		out = append(out, it)
	}
	return sortItems(out)
}

func sortItems(items []Item) []Item {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		an := strings.TrimSuffix(a.Label, "()")
		bn := strings.TrimSuffix(b.Label, "()")
		if an != bn {
			return an < bn
		}
		return a.Kind < b.Kind
	})
	return items
}
