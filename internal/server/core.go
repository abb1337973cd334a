// Package server wires the incremental database, the semantic pipeline,
// and the IDE query layer into a github.com/tliron/glsp language server:
// request handlers translate protocol types at the edges and otherwise
// call straight into internal/ide against a cached *sema.Program.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"

	"github.com/lumosimmo/solidity-analyzer/internal/db"
	"github.com/lumosimmo/solidity-analyzer/internal/flycheck"
	"github.com/lumosimmo/solidity-analyzer/internal/hir"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
	"github.com/lumosimmo/solidity-analyzer/internal/settings"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
	"github.com/lumosimmo/solidity-analyzer/internal/taskpool"
	"github.com/lumosimmo/solidity-analyzer/internal/toolchain"
	"github.com/lumosimmo/solidity-analyzer/internal/vfs"
	"github.com/lumosimmo/solidity-analyzer/internal/workspace"
)

// projectID is the single project configuration this server tracks. A
// workspace with multiple Foundry roots is out of scope; one DB, one
// project slot.
const projectID intern.ProjectID = 0

// Core owns every piece of state a request handler needs: the file
// store, the incremental database, the cached semantic program, and the
// background subsystems (flycheck, toolchain tracking, task dispatch).
// Server methods are thin protocol adapters over Core's methods.
type Core struct {
	log *slog.Logger

	vfs *vfs.Vfs
	db  *db.DB

	pool *taskpool.Pool

	toolchain *toolchain.Tracker
	flycheck  *flycheck.Engine

	mu       sync.Mutex
	settings settings.Options
	root     string
	wsConfig workspace.Config
	watcher  *vfs.Watcher

	interner     *intern.DefInterner
	parseCache   *db.Cache[intern.FileID, *syntax.File]
	loweredCache *db.Cache[intern.ProjectID, *hir.HirProgram]
	semaCache    *db.Cache[intern.ProjectID, *sema.Program]
}

// NewCore builds a Core backed by disk (os-backed in production, an
// afero.MemMapFs in tests). log may be nil, in which case slog.Default()
// is used.
func NewCore(disk afero.Fs, log *slog.Logger) *Core {
	if log == nil {
		log = slog.Default()
	}
	d := db.New()
	c := &Core{
		log:          log,
		vfs:          vfs.New(disk),
		db:           d,
		toolchain:    toolchain.NewTracker(),
		settings:     settings.Default(),
		interner:     intern.NewDefInterner(),
		parseCache:   db.NewCache[intern.FileID, *syntax.File](),
		loweredCache: db.NewCache[intern.ProjectID, *hir.HirProgram](),
		semaCache:    db.NewCache[intern.ProjectID, *sema.Program](),
	}
	c.pool = taskpool.New(4, d)
	return c
}

// Logger exposes Core's logger for components that need a sub-logger.
func (c *Core) Logger() *slog.Logger { return c.log }

// DB exposes the incremental database for status reporting and command
// handlers (e.g. solidity-analyzer.indexedFiles).
func (c *Core) DB() *db.DB { return c.db }

// Toolchain exposes the toolchain status tracker.
func (c *Core) Toolchain() *toolchain.Tracker { return c.toolchain }

// Pool exposes the worker pool request handlers dispatch IDE work onto.
func (c *Core) Pool() *taskpool.Pool { return c.pool }

// Settings returns a copy of the current decoded configuration.
func (c *Core) Settings() settings.Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// ApplyOptions decodes raw into Core's settings, keeping any field not
// named in raw at its previous value.
func (c *Core) ApplyOptions(raw map[string]any) settings.OptionResults {
	c.mu.Lock()
	defer c.mu.Unlock()
	return settings.Decode(&c.settings, raw)
}

// SetWorkspaceRoot records the resolved Foundry root and loads its
// configuration (profile, remappings), feeding the result into the DB as
// the project input every snapshot build reads.
func (c *Core) SetWorkspaceRoot(root string) error {
	c.mu.Lock()
	profile := c.settings.ToolchainSolcJobs
	c.mu.Unlock()

	cfg, err := workspace.LoadConfig(c.vfs.Snapshot().Disk(), root, "")
	if err != nil {
		return fmt.Errorf("load workspace config at %s: %w", root, err)
	}

	c.mu.Lock()
	c.root = root
	c.wsConfig = cfg
	c.mu.Unlock()

	c.db.SetProjectInput(projectID, db.ProjectInput{
		Root:        root,
		Remappings:  toDBRemappings(cfg.Remappings),
		SolcJobs:    profile,
		ProfileName: cfg.Profile,
	})
	c.startWatching(root)
	return nil
}

// startWatching registers root and every directory under it that holds a
// .sol file with Core's disk watcher, starting the watcher on first use.
// This backs workspace/didChangeWatchedFiles for editors that don't send
// it themselves, and for files pulled in only through a remapping that
// were never opened as editor buffers. Watching is best-effort: a Fs not
// backed by a real directory tree (e.g. afero.MemMapFs in tests) simply
// fails every Add call, which is logged and otherwise harmless.
func (c *Core) startWatching(root string) {
	c.mu.Lock()
	w := c.watcher
	c.mu.Unlock()

	if w == nil {
		var err error
		w, err = vfs.NewWatcher(c.log)
		if err != nil {
			c.log.Warn("start file watcher", slog.Any("err", err))
			return
		}
		c.mu.Lock()
		c.watcher = w
		c.mu.Unlock()
		go c.consumeWatcherChanges(w)
	}

	dirs := map[string]bool{root: true}
	matches, err := workspace.DiscoverSolFiles(c.vfs.Snapshot().Disk(), root)
	if err != nil {
		c.log.Warn("discover .sol files for watching", slog.String("root", root), slog.Any("err", err))
	}
	for _, m := range matches {
		dirs[filepath.Dir(filepath.FromSlash("/"+m))] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			c.log.Warn("watch directory", slog.String("dir", dir), slog.Any("err", err))
		}
	}
}

// consumeWatcherChanges feeds disk-observed changes back into the VFS and
// DB, and wakes flycheck the same way an editor-sent didChangeWatchedFiles
// notification does. Versions are synthesized by bumping whatever the
// VFS already has on file for the path, since a disk write carries no
// version of its own the way an editor's didChange does; SetFile's
// dedup check is keyed on (path, version), so a version that never
// repeats is what actually makes every disk write visible.
func (c *Core) consumeWatcherChanges(w *vfs.Watcher) {
	for change := range w.Changes() {
		if fileKind(change.Path) != db.KindSolidity && fileKind(change.Path) != db.KindManifest {
			continue
		}
		if change.Delete {
			c.RemoveFile(change.Path)
		} else {
			b, err := c.vfs.Snapshot().ReadDisk(filepath.FromSlash(string(change.Path)))
			if err != nil {
				continue
			}
			nextVersion := int32(1)
			snap := c.vfs.Snapshot()
			if id, ok := snap.FileID(change.Path); ok {
				if v, ok := snap.Version(id); ok {
					nextVersion = v + 1
				}
			}
			c.OpenOrChangeFile(change.Path, b, nextVersion)
		}
		if c.flycheck != nil {
			c.flycheck.Request()
		}
	}
}

// Close releases background resources (the disk watcher) started on
// Core's behalf. Safe to call even if no watcher was ever started.
func (c *Core) Close() error {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}

// WorkspaceRoot returns the resolved Foundry root, or "" if none was
// discovered (the client's root URI is used for file resolution instead).
func (c *Core) WorkspaceRoot() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.root
}

// DiscoverRoot walks up from startDir looking for a foundry.toml,
// using the disk filesystem backing the server's VFS.
func (c *Core) DiscoverRoot(startDir string) (string, bool) {
	return workspace.DiscoverRoot(c.vfs.Snapshot().Disk(), startDir)
}

func toDBRemappings(rs []workspace.Remapping) []db.Remapping {
	out := make([]db.Remapping, len(rs))
	for i, r := range rs {
		out[i] = db.Remapping{From: r.From, To: r.To, Context: r.Context}
	}
	return out
}

// Vfs exposes the virtual file system for sync handlers.
func (c *Core) Vfs() *vfs.Vfs { return c.vfs }

// OpenOrChangeFile applies a file's full text to the VFS and DB,
// classifying .sol files as KindSolidity so the snapshot builder picks
// them up.
func (c *Core) OpenOrChangeFile(path intern.NormalizedPath, text []byte, version int32) intern.FileID {
	id := c.vfs.ApplyChange(vfs.Change{Path: path, Text: text})
	c.db.SetFile(id, db.FileInput{Path: path, Text: text, Version: version, Kind: fileKind(path)})
	return id
}

// RemoveFile retires path from both the VFS and the DB.
func (c *Core) RemoveFile(path intern.NormalizedPath) {
	snap := c.vfs.Snapshot()
	id, ok := snap.FileID(path)
	if !ok {
		return
	}
	c.vfs.ApplyChange(vfs.Change{Path: path, Delete: true})
	c.db.RemoveFile(id)
}

func fileKind(path intern.NormalizedPath) db.FileKind {
	s := string(path)
	if len(s) > 4 && s[len(s)-4:] == ".sol" {
		return db.KindSolidity
	}
	if s == "foundry.toml" || (len(s) >= 13 && s[len(s)-13:] == "/foundry.toml") {
		return db.KindManifest
	}
	return db.KindOther
}

// snapshotProgram is what a single call to buildProgram hands back: the
// semantic program plus the per-file syntax trees it was built from
// (request handlers need both — sema.Program doesn't retain enough to
// reproduce pragma/comment-level detail flycheck and hover want).
type snapshotProgram struct {
	vfsSnap *vfs.Snapshot
	prog    *sema.Program
	files   map[intern.FileID]*syntax.File
}

// Snapshot rebuilds (or returns the cached) semantic program, parsing
// and lowering only the files whose fingerprint actually changed since
// the last call. Three independently-invalidated cache nodes back this:
// parseCache per file, and loweredCache/semaCache keyed on the single
// project slot but gated on an aggregate fingerprint over every file
// that feeds the program — an edit anywhere still triggers a fresh
// lowering/sema pass, but an unrelated request racing in behind it
// joins or reuses that same pass instead of recomputing it, and a file
// whose text didn't change never gets re-parsed.
func (c *Core) Snapshot(ctx context.Context) (*snapshotProgram, error) {
	vfsSnap := c.vfs.Snapshot()
	root, remaps := c.projectInputLocked()

	ids := vfsSnap.FileIDs()
	solFiles := make([]intern.FileID, 0, len(ids))
	for _, id := range ids {
		path, ok := vfsSnap.FilePath(id)
		if !ok || fileKind(path) != db.KindSolidity {
			continue
		}
		solFiles = append(solFiles, id)
	}
	sort.Slice(solFiles, func(i, j int) bool { return solFiles[i] < solFiles[j] })

	parsedFiles := make(map[intern.FileID]*syntax.File, len(solFiles))
	inputs := make([]hir.ParsedInput, 0, len(solFiles))
	aggFp := db.NewFingerprintBuilder()
	aggFp.WriteString(root)
	for _, r := range remaps {
		aggFp.WriteString(r.From).WriteString(r.To).WriteString(r.Context)
	}

	for _, id := range solFiles {
		path, _ := vfsSnap.FilePath(id)
		src, ok := vfsSnap.Text(id)
		if !ok {
			continue
		}
		version, _ := vfsSnap.Version(id)

		fileFp := db.NewFingerprintBuilder().
			WriteString(string(path)).
			WriteUint64(uint64(version)).
			WriteBytes(src).
			Build()
		parsed, err := c.parseCache.Get(ctx, id, fileFp, func(ctx context.Context) (*syntax.File, error) {
			return syntax.Parse(src).File, nil
		})
		if err != nil {
			return nil, err
		}

		parsedFiles[id] = parsed
		inputs = append(inputs, hir.ParsedInput{FileID: id, Path: path, Syntax: parsed})
		aggFp.WriteUint64(uint64(id)).WriteUint64(uint64(fileFp))
	}
	fp := aggFp.Build()

	exists := func(p intern.NormalizedPath) bool {
		_, ok := vfsSnap.FileID(p)
		return ok
	}
	hirProg, err := c.loweredCache.Get(ctx, projectID, fp, func(ctx context.Context) (*hir.HirProgram, error) {
		return hir.LowerProgram(c.interner, root, remaps, exists, inputs), nil
	})
	if err != nil {
		return nil, err
	}

	prog, err := c.semaCache.Get(ctx, projectID, fp, func(ctx context.Context) (*sema.Program, error) {
		return sema.NewProgram(c.interner, hirProg, parsedFiles), nil
	})
	if err != nil {
		return nil, err
	}

	return &snapshotProgram{vfsSnap: vfsSnap, prog: prog, files: parsedFiles}, nil
}

func (c *Core) projectInputLocked() (root string, remaps []db.Remapping) {
	in, err := c.db.ProjectInput(projectID)
	if err != nil {
		c.mu.Lock()
		root = c.root
		c.mu.Unlock()
		return root, nil
	}
	return in.Root, in.Remappings
}

// URI returns the file:// URI for a known file id, satisfying
// ide.FileResolver.
func (c *Core) URI(file intern.FileID) string {
	snap := c.vfs.Snapshot()
	path, ok := snap.FilePath(file)
	if !ok {
		return ""
	}
	return pathToURI(path)
}

// Source returns file's current text, satisfying ide.FileResolver.
func (c *Core) Source(file intern.FileID) []byte {
	snap := c.vfs.Snapshot()
	b, _ := snap.Text(file)
	return b
}

// ImportCandidates lists every .sol path under the workspace root, for
// import-string completion. It is cheap enough to call per-request: the
// underlying glob is backed by the same afero.Fs each VFS snapshot reads
// through.
func (c *Core) ImportCandidates() []string {
	root := c.WorkspaceRoot()
	if root == "" {
		return nil
	}
	paths, err := workspace.DiscoverSolFiles(c.vfs.Snapshot().Disk(), root)
	if err != nil {
		c.log.Warn("discover .sol files", slog.String("root", root), slog.Any("err", err))
		return nil
	}
	sort.Strings(paths)
	return paths
}
