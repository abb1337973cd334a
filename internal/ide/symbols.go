package ide

import (
	"sort"
	"strings"

	"github.com/lumosimmo/solidity-analyzer/internal/defmap"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

// DocSymbol is one entry in a document's symbol tree: a contract-level
// item, or a member nested under its contract.
type DocSymbol struct {
	Name     string
	Kind     intern.DefKind
	Range    text.Range
	Children []DocSymbol
}

// DocumentSymbols returns file's declarations as a two-level tree: free
// items and contracts at the top, members nested under their contract.
func DocumentSymbols(prog *sema.Program, file intern.FileID) []DocSymbol {
	var top []*defmap.DefEntry
	byContainer := map[string][]*defmap.DefEntry{}
	for _, e := range prog.Hir.Defs.Entries() {
		if e.File != file {
			continue
		}
		if e.Container == "" {
			top = append(top, e)
		} else {
			byContainer[e.Container] = append(byContainer[e.Container], e)
		}
	}

	out := make([]DocSymbol, 0, len(top))
	for _, e := range top {
		sym := DocSymbol{Name: e.Name, Kind: e.Kind, Range: e.NameRange}
		for _, m := range byContainer[e.Name] {
			sym.Children = append(sym.Children, DocSymbol{Name: m.Name, Kind: m.Kind, Range: m.NameRange})
		}
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.Start < out[j].Range.Start })
	for i := range out {
		sort.Slice(out[i].Children, func(a, b int) bool { return out[i].Children[a].Range.Start < out[i].Children[b].Range.Start })
	}
	return out
}

// WorkspaceSymbol is one match from a project-wide fuzzy symbol search.
type WorkspaceSymbol struct {
	Name      string
	Kind      intern.DefKind
	Container string
	File      intern.FileID
	Range     text.Range
}

// maxWorkspaceSymbols caps the result set the way an editor's quick-open
// list does, so a short, common query string doesn't dump the whole
// project index into one response.
const maxWorkspaceSymbols = 200

// WorkspaceSymbols fuzzy-matches query (case-insensitive substring)
// against every declaration name in prog's def map, across every file.
func WorkspaceSymbols(prog *sema.Program, query string) []WorkspaceSymbol {
	q := strings.ToLower(query)
	var out []WorkspaceSymbol
	for _, e := range prog.Hir.Defs.Entries() {
		if q != "" && !strings.Contains(strings.ToLower(e.Name), q) {
			continue
		}
		out = append(out, WorkspaceSymbol{Name: e.Name, Kind: e.Kind, Container: e.Container, File: e.File, Range: e.NameRange})
		if len(out) >= maxWorkspaceSymbols {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
