// Package hir lowers a project's parsed files into a HirProgram: a def
// map rolled up across every file, plus per-file import edges resolved
// against the workspace layer. Name resolution across files (plain
// re-export, aliasing, qualified source/glob access) is answered here,
// on top of the def map built by internal/defmap.
package hir

import (
	"sort"

	"github.com/lumosimmo/solidity-analyzer/internal/db"
	"github.com/lumosimmo/solidity-analyzer/internal/defmap"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
	"github.com/lumosimmo/solidity-analyzer/internal/workspace"
)

// Import is one resolved (or unresolved) import edge out of a file.
type Import struct {
	PathText     string // as written in source
	ResolvedPath intern.NormalizedPath
	File         intern.FileID
	Resolved     bool
	Kind         syntax.ImportItemsKind
	Aliases      []syntax.ImportAlias // populated for ImportAliases
	Qualifier    string               // populated for ImportSourceAlias/ImportGlob
}

// HirFile is one file's contribution to a HirProgram: its identity plus
// its import edges, resolved as far as the workspace layer can take
// them.
type HirFile struct {
	FileID  intern.FileID
	Path    intern.NormalizedPath
	Imports []Import
}

// HirProgram is a project's lowered representation: every file's import
// graph, and the def map rolled up across all of them.
type HirProgram struct {
	Defs  *defmap.DefMap
	Files map[intern.FileID]*HirFile
}

// ParsedInput is what LowerProgram needs per file: enough to both
// resolve its imports and to contribute to the def map.
type ParsedInput struct {
	FileID intern.FileID
	Path   intern.NormalizedPath
	Syntax *syntax.File
}

// toWorkspaceRemappings adapts the DB's config-level Remapping to the
// one workspace.ResolveImport expects; the two packages don't share a
// type to avoid db depending on workspace.
func toWorkspaceRemappings(in []db.Remapping) []workspace.Remapping {
	out := make([]workspace.Remapping, len(in))
	for i, r := range in {
		out[i] = workspace.Remapping{From: r.From, To: r.To, Context: r.Context}
	}
	return out
}

// LowerProgram builds a HirProgram from already-parsed files: it builds
// the path→file_id table, resolves every file's imports against root
// and remappings, and rolls up one combined DefMap.
func LowerProgram(interner *intern.DefInterner, root string, remappings []db.Remapping, exists workspace.FileExists, files []ParsedInput) *HirProgram {
	wsRemaps := toWorkspaceRemappings(remappings)

	byPath := make(map[intern.NormalizedPath]intern.FileID, len(files))
	for _, f := range files {
		byPath[f.Path] = f.FileID
	}

	sorted := make([]ParsedInput, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FileID < sorted[j].FileID })

	program := &HirProgram{Files: make(map[intern.FileID]*HirFile, len(sorted))}
	defMaps := make([]*defmap.DefMap, 0, len(sorted))

	for _, f := range sorted {
		hf := &HirFile{FileID: f.FileID, Path: f.Path}
		for _, imp := range f.Syntax.Imports {
			entry := Import{
				PathText:  imp.PathText,
				Kind:      imp.Kind,
				Aliases:   imp.Aliases,
				Qualifier: imp.Qualifier,
			}
			if resolved, ok := workspace.ResolveImport(imp.PathText, f.Path, root, wsRemaps, exists); ok {
				entry.ResolvedPath = resolved
				entry.Resolved = true
				if fid, ok := byPath[resolved]; ok {
					entry.File = fid
				} else {
					entry.Resolved = false
				}
			}
			hf.Imports = append(hf.Imports, entry)
		}
		program.Files[f.FileID] = hf
		defMaps = append(defMaps, defmap.Collect(interner, f.FileID, f.Syntax))
	}

	program.Defs = defmap.Merge(defMaps)
	return program
}

// exportedName reports whether name is reachable from outside through
// imp, and under what local spelling. Plain imports re-export
// everything importable under its original name; Aliases only exposes
// the renamed (or original, if unrenamed) set; SourceAlias/Glob imports
// never expose bare names, only Qualifier.name.
func exportedName(imp Import, name string) (sourceName string, ok bool) {
	switch imp.Kind {
	case syntax.ImportPlain:
		return name, true
	case syntax.ImportAliases:
		for _, a := range imp.Aliases {
			local := a.Local
			if local == "" {
				local = a.Name
			}
			if local == name {
				return a.Name, true
			}
		}
		return "", false
	default: // ImportSourceAlias, ImportGlob
		return "", false
	}
}

// ResolveInFile resolves name of the given kind as seen from file: a
// direct def-map hit in file wins; otherwise each import is followed
// (subject to its re-export rules) and the search recurses into the
// imported file. visited guards against import cycles.
func (p *HirProgram) ResolveInFile(file intern.FileID, kind intern.DefKind, name string) []*defmap.DefEntry {
	return p.resolveInFile(file, func(k intern.DefKind) bool { return k == kind }, name, make(map[intern.FileID]bool))
}

// ResolveAnyKindInFile is ResolveInFile without a kind filter: useful for
// an unqualified reference whose syntactic form doesn't pin down which
// DefKind it must be (a plain identifier, a type annotation).
func (p *HirProgram) ResolveAnyKindInFile(file intern.FileID, name string) []*defmap.DefEntry {
	return p.resolveInFile(file, func(intern.DefKind) bool { return true }, name, make(map[intern.FileID]bool))
}

func (p *HirProgram) resolveInFile(file intern.FileID, keep func(intern.DefKind) bool, name string, visited map[intern.FileID]bool) []*defmap.DefEntry {
	if visited[file] {
		return nil
	}
	visited[file] = true

	var direct []*defmap.DefEntry
	for _, e := range p.Defs.ByFileName(file, name) {
		if keep(e.Kind) {
			direct = append(direct, e)
		}
	}
	if len(direct) > 0 {
		return direct
	}

	hf, ok := p.Files[file]
	if !ok {
		return nil
	}
	var found []*defmap.DefEntry
	for _, imp := range hf.Imports {
		if !imp.Resolved {
			continue
		}
		importedName, ok := exportedName(imp, name)
		if !ok {
			continue
		}
		found = append(found, p.resolveInFile(imp.File, keep, importedName, visited)...)
	}
	return found
}

// ResolveQualifiedSymbol resolves qualifier.name as seen from file: file
// must declare exactly one import binding qualifier as a source/glob
// alias, and the lookup proceeds into that imported file directly (any
// kind), since a qualified reference names one specific file's export.
func (p *HirProgram) ResolveQualifiedSymbol(file intern.FileID, qualifier, name string) []*defmap.DefEntry {
	hf, ok := p.Files[file]
	if !ok {
		return nil
	}
	var target *Import
	for i := range hf.Imports {
		imp := &hf.Imports[i]
		if !imp.Resolved {
			continue
		}
		if (imp.Kind == syntax.ImportSourceAlias || imp.Kind == syntax.ImportGlob) && imp.Qualifier == qualifier {
			if target != nil {
				return nil // ambiguous: more than one import binds this qualifier
			}
			target = imp
		}
	}
	if target == nil {
		return nil
	}
	return p.Defs.ByFileName(target.File, name)
}
