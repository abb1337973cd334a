package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/lumosimmo/solidity-analyzer/internal/db"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
)

func newTestCore() *Core {
	return NewCore(afero.NewMemMapFs(), nil)
}

func TestOpenOrChangeFileClassifiesSolidity(t *testing.T) {
	c := newTestCore()
	id := c.OpenOrChangeFile("/proj/src/Token.sol", []byte("pragma solidity ^0.8.0;\ncontract Token {}\n"), 1)

	input, err := c.db.FileInput(id)
	if err != nil {
		t.Fatalf("FileInput: %v", err)
	}
	if input.Kind != db.KindSolidity {
		t.Fatalf("got kind %v, want KindSolidity", input.Kind)
	}
}

func TestSnapshotCachesUntilRevisionChanges(t *testing.T) {
	c := newTestCore()
	c.OpenOrChangeFile("/proj/src/Token.sol", []byte("contract Token {}\n"), 1)

	first, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	second, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if first.prog != second.prog {
		t.Fatal("Snapshot rebuilt a program with no intervening write")
	}

	c.OpenOrChangeFile("/proj/src/Token.sol", []byte("contract Token2 {}\n"), 2)
	third, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if third.prog == first.prog {
		t.Fatal("Snapshot did not rebuild after a file change")
	}
}

func TestRemoveFileRetiresFromDB(t *testing.T) {
	c := newTestCore()
	id := c.OpenOrChangeFile("/proj/src/Token.sol", []byte("contract Token {}\n"), 1)
	c.RemoveFile("/proj/src/Token.sol")

	if _, err := c.db.FileInput(id); err == nil {
		t.Fatal("expected file to be removed from the db")
	}
}

func TestApplyOptionsOverridesDefaults(t *testing.T) {
	c := newTestCore()
	results := c.ApplyOptions(map[string]any{
		"diagnostics.onSave": false,
		"lint.enable":        false,
	})
	for _, r := range results {
		if r.Error != nil {
			t.Fatalf("option %q: %v", r.Name, r.Error)
		}
	}

	opts := c.Settings()
	if opts.DiagnosticsOnSave {
		t.Fatal("diagnostics.onSave should be false")
	}
	if opts.LintEnable {
		t.Fatal("lint.enable should be false")
	}
	if !opts.DiagnosticsEnable {
		t.Fatal("diagnostics.enable should still be at its default (true)")
	}
}

func TestImportCandidatesEmptyWithoutWorkspaceRoot(t *testing.T) {
	c := newTestCore()
	if got := c.ImportCandidates(); got != nil {
		t.Fatalf("expected nil with no workspace root, got %v", got)
	}
}

// TestWatcherPicksUpDiskWriteWithoutAnOpenBuffer exercises startWatching
// end to end against a real directory: a .sol file written directly to
// disk, never opened as an editor buffer, must still show up in the DB
// once the watcher's consumer goroutine processes the fsnotify event.
func TestWatcherPicksUpDiskWriteWithoutAnOpenBuffer(t *testing.T) {
	root := t.TempDir()
	c := NewCore(afero.NewOsFs(), nil)
	if err := c.SetWorkspaceRoot(root); err != nil {
		t.Fatalf("SetWorkspaceRoot: %v", err)
	}
	defer c.Close()

	path := filepath.Join(root, "Lib.sol")
	if err := os.WriteFile(path, []byte("contract Lib {}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	normalized := intern.Normalize(path)
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := c.vfs.Snapshot().FileID(normalized); ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("watcher never picked up %s", path)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
