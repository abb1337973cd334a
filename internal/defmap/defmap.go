// Package defmap builds the project-wide index of named declarations:
// one flat table plus three derived lookup indices, kept over the same
// entries, in the shape gopls' metadata graph indexes packages.
package defmap

import (
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

// DefEntry is one declaration recorded by the def map.
type DefEntry struct {
	ID        intern.DefID
	Kind      intern.DefKind
	File      intern.FileID
	Name      string
	Container string // "" for top-level items
	Range     text.Range
	NameRange text.Range
}

type kindName struct {
	Kind intern.DefKind
	Name string
}

type fileName struct {
	File intern.FileID
	Name string
}

// DefMap indexes every named declaration collected from a set of files.
type DefMap struct {
	byID       map[intern.DefID]*DefEntry
	byKindName map[kindName][]*DefEntry
	byFileName map[fileName][]*DefEntry
	order      []*DefEntry
}

// New returns an empty DefMap.
func New() *DefMap {
	return &DefMap{
		byID:       make(map[intern.DefID]*DefEntry),
		byKindName: make(map[kindName][]*DefEntry),
		byFileName: make(map[fileName][]*DefEntry),
	}
}

func (m *DefMap) insert(e *DefEntry) {
	m.byID[e.ID] = e
	kn := kindName{e.Kind, e.Name}
	m.byKindName[kn] = append(m.byKindName[kn], e)
	fn := fileName{e.File, e.Name}
	m.byFileName[fn] = append(m.byFileName[fn], e)
	m.order = append(m.order, e)
}

// ByID looks up one entry by its interned id.
func (m *DefMap) ByID(id intern.DefID) (*DefEntry, bool) {
	e, ok := m.byID[id]
	return e, ok
}

// ByKindName returns every entry of the given kind with the given name,
// across every file this map was built from.
func (m *DefMap) ByKindName(kind intern.DefKind, name string) []*DefEntry {
	return m.byKindName[kindName{kind, name}]
}

// ByFileName returns every entry named name declared in file, regardless
// of kind — top-level items and contract members alike.
func (m *DefMap) ByFileName(file intern.FileID, name string) []*DefEntry {
	return m.byFileName[fileName{file, name}]
}

// Entries returns every entry in insertion order.
func (m *DefMap) Entries() []*DefEntry { return m.order }

// Equal reports whether a and b carry the same entry sequence. This is
// the def map's only notion of equality: the indices are not compared,
// so map iteration order never matters.
func Equal(a, b *DefMap) bool {
	if len(a.order) != len(b.order) {
		return false
	}
	for i := range a.order {
		if !entryEqual(a.order[i], b.order[i]) {
			return false
		}
	}
	return true
}

func entryEqual(a, b *DefEntry) bool {
	return a.ID == b.ID && a.Kind == b.Kind && a.File == b.File &&
		a.Name == b.Name && a.Container == b.Container &&
		a.Range == b.Range && a.NameRange == b.NameRange
}

// Merge rolls several per-file DefMaps into one project-wide DefMap,
// preserving each source map's relative entry order and iterating the
// source maps themselves in the order given (callers pass them sorted
// by file id so Merge's output is deterministic run to run).
func Merge(maps []*DefMap) *DefMap {
	out := New()
	for _, m := range maps {
		for _, e := range m.Entries() {
			out.insert(e)
		}
	}
	return out
}

// Collect walks one parsed file's top-level items, then each
// contract/interface/library body, inserting one entry per named
// declaration. Modifiers are told apart from functions by the syntax
// tree's own IsModifier-driven split (ContractDecl.Modifiers vs
// ContractDecl.Functions), not by inspecting the name.
func Collect(interner *intern.DefInterner, file intern.FileID, f *syntax.File) *DefMap {
	m := New()
	add := func(kind intern.DefKind, name, container string, rng, nameRange text.Range) {
		if name == "" {
			return
		}
		id := interner.Intern(kind, file, name, container)
		m.insert(&DefEntry{ID: id, Kind: kind, File: file, Name: name, Container: container, Range: rng, NameRange: nameRange})
	}

	for _, c := range f.Contracts {
		add(contractKind(c.Kind), c.Name, "", c.Range, c.NameRange)
		collectContractBody(add, c)
	}
	for _, s := range f.Structs {
		add(intern.KindStruct, s.Name, "", s.Range, s.NameRange)
	}
	for _, e := range f.Enums {
		add(intern.KindEnum, e.Name, "", e.Range, e.NameRange)
	}
	for _, e := range f.Errors {
		add(intern.KindError, e.Name, "", e.Range, e.NameRange)
	}
	for _, u := range f.Udvts {
		add(intern.KindUdvt, u.Name, "", u.Range, u.NameRange)
	}
	for _, fn := range f.Functions {
		add(intern.KindFunction, fn.Name, "", fn.Range, fn.NameRange)
	}
	return m
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

func collectContractBody(add func(kind intern.DefKind, name, container string, rng, nameRange text.Range), c *syntax.ContractDecl) {
	container := c.Name
	for _, fn := range c.Functions {
		add(intern.KindFunction, fn.Name, container, fn.Range, fn.NameRange)
	}
	for _, mod := range c.Modifiers {
		add(intern.KindModifier, mod.Name, container, mod.Range, mod.NameRange)
	}
	for _, v := range c.Variables {
		add(intern.KindVariable, v.Name, container, v.Range, v.NameRange)
	}
	for _, s := range c.Structs {
		add(intern.KindStruct, s.Name, container, s.Range, s.NameRange)
	}
	for _, e := range c.Enums {
		add(intern.KindEnum, e.Name, container, e.Range, e.NameRange)
	}
	for _, e := range c.Events {
		add(intern.KindEvent, e.Name, container, e.Range, e.NameRange)
	}
	for _, e := range c.Errors {
		add(intern.KindError, e.Name, container, e.Range, e.NameRange)
	}
	for _, u := range c.Udvts {
		add(intern.KindUdvt, u.Name, container, u.Range, u.NameRange)
	}
}
