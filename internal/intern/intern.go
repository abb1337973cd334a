// Package intern provides stable integer identifiers for paths, files,
// projects, and declarations.
//
// Every id type here is a thin wrapper over a monotone index assigned by a
// per-key-type interner: given the same key sequence, an interner returns
// the same id.
package intern

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FileID is an opaque handle to a file known to the VFS. It is stable for
// the lifetime of the Vfs instance that allocated it; ids are never
// reissued even after the file is deleted.
type FileID uint32

// ProjectID is an opaque handle to a project configuration.
type ProjectID uint32

// InternID is a monotone index assigned by an Interner.
type InternID uint32

// NormalizedPath is a path with backslashes rewritten to slashes, a
// trailing slash removed, and Unicode NFC-normalized so that equality is
// textual equality regardless of how the editor encoded the original
// bytes.
type NormalizedPath string

// Normalize produces a NormalizedPath from a raw path string.
func Normalize(p string) NormalizedPath {
	p = norm.NFC.String(p)
	p = strings.ReplaceAll(p, "\\", "/")
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	return NormalizedPath(p)
}

func (p NormalizedPath) String() string { return string(p) }

// DefKind tags the syntactic category of a named declaration.
type DefKind uint8

const (
	KindContract DefKind = iota
	KindInterface
	KindLibrary
	KindFunction
	KindModifier
	KindStruct
	KindEnum
	KindEvent
	KindError
	KindVariable
	KindUdvt
)

func (k DefKind) String() string {
	switch k {
	case KindContract:
		return "contract"
	case KindInterface:
		return "interface"
	case KindLibrary:
		return "library"
	case KindFunction:
		return "function"
	case KindModifier:
		return "modifier"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindEvent:
		return "event"
	case KindError:
		return "error"
	case KindVariable:
		return "variable"
	case KindUdvt:
		return "udvt"
	default:
		return "unknown"
	}
}

// DefID is a tagged, interned identifier for a named declaration. Intern
// keys include the file id, name, and optional container name, so the
// same spelling in two files (or two contracts within one file) yields
// distinct ids.
type DefID struct {
	Kind DefKind
	ID   InternID
}

// defKey is the interning key for a DefID: it must uniquely determine the
// declaration regardless of unrelated edits elsewhere in the project.
type defKey struct {
	Kind      DefKind
	File      FileID
	Name      string
	Container string // "" if top-level
}

// Interner assigns stable InternIDs to keys of type K. The same key
// sequence, presented to the same Interner instance, always yields the
// same ids — Intern is a pure function of its key history.
type Interner[K comparable] struct {
	ids  map[K]InternID
	keys []K
}

// NewInterner returns a ready-to-use, empty Interner.
func NewInterner[K comparable]() *Interner[K] {
	return &Interner[K]{ids: make(map[K]InternID)}
}

// Intern returns the id for key, allocating a new one if key has not been
// seen before.
func (in *Interner[K]) Intern(key K) InternID {
	if id, ok := in.ids[key]; ok {
		return id
	}
	id := InternID(len(in.keys))
	in.keys = append(in.keys, key)
	in.ids[key] = id
	return id
}

// Lookup returns the key for id, if any.
func (in *Interner[K]) Lookup(id InternID) (K, bool) {
	if int(id) < 0 || int(id) >= len(in.keys) {
		var zero K
		return zero, false
	}
	return in.keys[id], true
}

// Len reports how many distinct keys have been interned.
func (in *Interner[K]) Len() int { return len(in.keys) }

// DefInterner interns DefIDs keyed on (kind, file, name, container).
type DefInterner struct {
	inner *Interner[defKey]
}

// NewDefInterner returns an empty DefInterner.
func NewDefInterner() *DefInterner {
	return &DefInterner{inner: NewInterner[defKey]()}
}

// Intern returns the DefID for the given declaration identity: for an
// unchanged (kind, file, name, container) tuple, repeated calls across
// successive collect() passes of the same DefInterner return an equal
// DefID.
func (d *DefInterner) Intern(kind DefKind, file FileID, name, container string) DefID {
	id := d.inner.Intern(defKey{Kind: kind, File: file, Name: name, Container: container})
	return DefID{Kind: kind, ID: id}
}
