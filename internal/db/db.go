// Package db is the incremental computation database: it owns file and
// project inputs, memoizes derived "tracked" computations keyed on a
// Fingerprint of the inputs they read, and exposes a cancellation signal
// so long-running computations can abort cooperatively when a newer
// write supersedes them.
//
// The memoization core (cache.go) is a direct generalization of the
// cancel-and-retry promise gopls uses in gopls/internal/cache/future.go,
// widened from a single futureCache[K,V] instantiation to a reusable
// generic Cache[K,V] keyed additionally on a Fingerprint: two consecutive
// calls with no interleaving writes return a pointer-equal result.
package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
)

// FileKind distinguishes Solidity source from other workspace files the
// VFS may hold (e.g. foundry.toml, remappings.txt).
type FileKind uint8

const (
	KindSolidity FileKind = iota
	KindManifest
	KindOther
)

// FileInput is the DB's view of one file: text plus the bookkeeping
// needed to detect changes and to render diagnostics/locations.
type FileInput struct {
	Path    intern.NormalizedPath
	Text    []byte
	Version int32
	Kind    FileKind
}

// ProjectInput is the DB's view of a project's configuration (workspace
// root, remappings, compiler profile). It is compared by value: setting
// an input equal to the previous one must not appear to invalidate
// dependents (DB.SetProjectInput short-circuits on this).
type ProjectInput struct {
	Root        string
	Remappings  []Remapping
	SolcJobs    int
	ProfileName string
}

// Remapping is a from=to rewrite, optionally scoped to a context prefix.
type Remapping struct {
	From    string
	To      string
	Context string // "" if unscoped
}

// ErrUnknownFile/ErrUnknownProject are returned by queries for ids the DB
// has never seen; callers must handle them rather than assume every id
// resolves.
var (
	ErrUnknownFile    = errors.New("db: unknown file id")
	ErrUnknownProject = errors.New("db: unknown project id")
)

// ErrCancelled is the distinguishable "cancelled" error a tracked
// computation's caller observes when cancellation fires mid-computation.
var ErrCancelled = errors.New("db: computation cancelled")

type fileRecord struct {
	input FileInput
}

type projectRecord struct {
	input ProjectInput
}

// DB is the incremental computation database: inputs in, tracked
// computations memoized and invalidated around them.
type DB struct {
	id string // opaque external identifier, mirrors gopls's Session.ID

	mu       sync.Mutex
	files    map[intern.FileID]*fileRecord
	projects map[intern.ProjectID]*projectRecord
	revision uint64

	genMu  sync.Mutex
	genCtx context.Context
	cancel context.CancelFunc
}

// New returns an empty DB.
func New() *DB {
	ctx, cancel := context.WithCancel(context.Background())
	return &DB{
		id:       uuid.NewString(),
		files:    make(map[intern.FileID]*fileRecord),
		projects: make(map[intern.ProjectID]*projectRecord),
		genCtx:   ctx,
		cancel:   cancel,
	}
}

// ID returns the DB's opaque external identifier, used only for logging
// and the serverStatus notification.
func (d *DB) ID() string { return d.id }

// Revision returns the current write generation. It increases by one on
// every SetFile whose version or path differs from what was stored, every
// SetProjectInput whose value differs, and every RemoveFile of a known
// file.
func (d *DB) Revision() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revision
}

// bumpLocked advances the revision and cancels any computation that was
// started against an older generation. Callers must hold d.mu.
func (d *DB) bumpLocked() {
	d.revision++
	d.genMu.Lock()
	d.cancel()
	ctx, cancel := context.WithCancel(context.Background())
	d.genCtx = ctx
	d.cancel = cancel
	d.genMu.Unlock()
}

// generationCtx returns a context that is cancelled the moment a new
// write supersedes the generation it was handed out under. Tracked
// computations derive their working context from this.
func (d *DB) generationCtx() context.Context {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	return d.genCtx
}

// SetFile is total: it always succeeds, allocating state for file if this
// is the first time the id has been set.
func (d *DB) SetFile(file intern.FileID, input FileInput) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, ok := d.files[file]
	if ok && prev.input.Version == input.Version && prev.input.Path == input.Path {
		return
	}
	d.files[file] = &fileRecord{input: input}
	d.bumpLocked()
}

// RemoveFile retires a file from the DB's input set (mirrors Vfs.Delete).
func (d *DB) RemoveFile(file intern.FileID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.files[file]; !ok {
		return
	}
	delete(d.files, file)
	d.bumpLocked()
}

// SetProjectInput replaces project's configuration.
func (d *DB) SetProjectInput(project intern.ProjectID, input ProjectInput) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, ok := d.projects[project]
	if ok && equalProjectInput(prev.input, input) {
		return
	}
	d.projects[project] = &projectRecord{input: input}
	d.bumpLocked()
}

func equalProjectInput(a, b ProjectInput) bool {
	if a.Root != b.Root || a.SolcJobs != b.SolcJobs || a.ProfileName != b.ProfileName {
		return false
	}
	if len(a.Remappings) != len(b.Remappings) {
		return false
	}
	for i := range a.Remappings {
		if a.Remappings[i] != b.Remappings[i] {
			return false
		}
	}
	return true
}

// FileIDs returns all file ids currently known to the DB.
func (d *DB) FileIDs() []intern.FileID {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]intern.FileID, 0, len(d.files))
	for id := range d.files {
		ids = append(ids, id)
	}
	return ids
}

// FileInput returns the current input for file.
func (d *DB) FileInput(file intern.FileID) (FileInput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.files[file]
	if !ok {
		return FileInput{}, fmt.Errorf("%w: %d", ErrUnknownFile, file)
	}
	return r.input, nil
}

// FilePath returns the path for file.
func (d *DB) FilePath(file intern.FileID) (intern.NormalizedPath, error) {
	in, err := d.FileInput(file)
	if err != nil {
		return "", err
	}
	return in.Path, nil
}

// ProjectInput returns the current configuration for project.
func (d *DB) ProjectInput(project intern.ProjectID) (ProjectInput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.projects[project]
	if !ok {
		return ProjectInput{}, fmt.Errorf("%w: %d", ErrUnknownProject, project)
	}
	return r.input, nil
}

// WithCancel derives a child of the DB's current generation context, for
// tracked functions to check periodically via ctx.Err().
func (d *DB) WithCancel(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(mergeDone(ctx, d.generationCtx()))
}

// mergeDone returns a context cancelled when either parent is cancelled.
func mergeDone(a, b context.Context) context.Context {
	ctx, cancel := context.WithCancel(a)
	go func() {
		select {
		case <-b.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
