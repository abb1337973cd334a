// Package vfs implements the virtual file system that mirrors editor
// buffers: a path-normalized text store with per-file monotone versions,
// and a cheap, cloneable snapshot type that every reader operates on.
//
// The shape mirrors gopls's overlayFS (gopls/internal/cache/fs_overlay.go):
// an in-memory table of open "overlays" shadows a disk-backed delegate. The
// delegate here is spf13/afero rather than direct os calls, so tests can
// swap in afero.NewMemMapFs() and production can swap in afero.NewOsFs().
package vfs

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/afero"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
)

// Change is the input to ApplyChange: either Set or Delete a path.
type Change struct {
	Path   intern.NormalizedPath
	Text   []byte // ignored for Delete
	Delete bool
}

// entry is the live, mutable record the Vfs keeps for one path.
type entry struct {
	id      intern.FileID
	text    []byte // shared, never mutated in place
	version int32
	deleted bool
}

// Vfs owns the mapping NormalizedPath -> (FileID, text, version). It is
// not safe to read directly from multiple goroutines while being
// mutated; callers must take a Snapshot first.
type Vfs struct {
	disk afero.Fs

	mu     sync.Mutex
	byPath map[intern.NormalizedPath]*entry
	byID   map[intern.FileID]intern.NormalizedPath
	nextID intern.FileID
	gen    uint64 // bumped on every ApplyChange, used to tag snapshots
}

// New returns an empty Vfs backed by disk for reads that fall outside the
// overlay set.
func New(disk afero.Fs) *Vfs {
	if disk == nil {
		disk = afero.NewMemMapFs()
	}
	return &Vfs{
		disk:   disk,
		byPath: make(map[intern.NormalizedPath]*entry),
		byID:   make(map[intern.FileID]intern.NormalizedPath),
	}
}

// ApplyChange applies one edit or deletion to the Vfs.
//
// Set: if path is new, the next FileID is allocated; otherwise the
// existing id is reused and version is bumped. Delete: the entry is
// removed but its FileID is retired, never reissued.
func (v *Vfs) ApplyChange(c Change) intern.FileID {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++

	e, ok := v.byPath[c.Path]
	if c.Delete {
		if ok {
			e.deleted = true
			delete(v.byPath, c.Path)
		}
		if ok {
			return e.id
		}
		return 0
	}

	if ok {
		e.text = c.Text
		e.version++
		return e.id
	}

	id := v.nextID
	v.nextID++
	e = &entry{id: id, text: c.Text, version: 0}
	v.byPath[c.Path] = e
	v.byID[id] = c.Path
	return id
}

// Snapshot freezes the current generation of the Vfs into a cheap,
// cloneable value. Mutations to the live Vfs after this call do not
// affect the returned Snapshot.
func (v *Vfs) Snapshot() *Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	files := make(map[intern.FileID]fileState, len(v.byPath))
	paths := make(map[intern.NormalizedPath]intern.FileID, len(v.byPath))
	for path, e := range v.byPath {
		files[e.id] = fileState{path: path, text: e.text, version: e.version}
		paths[path] = e.id
	}
	return &Snapshot{
		gen:   v.gen,
		disk:  v.disk,
		files: files,
		paths: paths,
	}
}

type fileState struct {
	path    intern.NormalizedPath
	text    []byte
	version int32
}

// Snapshot is a cheap, cloneable value holding a shared reference to a
// frozen generation of the Vfs. All readers must operate on a Snapshot,
// never the live Vfs, so that a long computation sees a single consistent
// world even as edits keep arriving.
type Snapshot struct {
	gen   uint64
	disk  afero.Fs
	files map[intern.FileID]fileState
	paths map[intern.NormalizedPath]intern.FileID
}

// Generation returns the Vfs generation this snapshot was taken at.
func (s *Snapshot) Generation() uint64 { return s.gen }

// FileIDs returns every file id present in the snapshot, in no
// particular order.
func (s *Snapshot) FileIDs() []intern.FileID {
	ids := make([]intern.FileID, 0, len(s.files))
	for id := range s.files {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FileID looks up the id for path; ok is false if the path is not
// present in this snapshot.
func (s *Snapshot) FileID(path intern.NormalizedPath) (intern.FileID, bool) {
	id, ok := s.paths[path]
	return id, ok
}

// FilePath is the inverse of FileID: (FileID -> path) and (path ->
// FileID) are mutually inverse within a snapshot.
func (s *Snapshot) FilePath(id intern.FileID) (intern.NormalizedPath, bool) {
	f, ok := s.files[id]
	if !ok {
		return "", false
	}
	return f.path, true
}

// Text returns the shared-immutable overlay text for id. It does not
// read the disk delegate: an id absent from the snapshot yields false
// (ReadDisk is the path that reads disk).
func (s *Snapshot) Text(id intern.FileID) ([]byte, bool) {
	f, ok := s.files[id]
	if !ok {
		return nil, false
	}
	return f.text, true
}

// Version reports the overlay's monotone edit counter for id.
func (s *Snapshot) Version(id intern.FileID) (int32, bool) {
	f, ok := s.files[id]
	if !ok {
		return 0, false
	}
	return f.version, true
}

// ReadDisk reads path directly from the disk delegate, bypassing the
// overlay set entirely. Used by workspace discovery to find files the
// editor has not opened yet.
func (s *Snapshot) ReadDisk(path string) ([]byte, error) {
	b, err := afero.ReadFile(s.disk, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

// Disk exposes the underlying afero.Fs for glob-style workspace
// discovery (internal/workspace uses doublestar against this).
func (s *Snapshot) Disk() afero.Fs { return s.disk }
