package flycheck

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
)

// defaultDebounce matches the 50ms window a keystroke-driven flycheck
// request is expected to coalesce within.
const defaultDebounce = 50 * time.Millisecond

// workspaceFallbackPath is where DiagnosticTaskFailure is published: a
// background compile or lint task panicking has no single file to blame,
// so its diagnostic goes to a workspace-wide sentinel path instead of
// being dropped silently.
const workspaceFallbackPath intern.NormalizedPath = "<workspace>"

// Producer runs one diagnostic source (the external compiler, or the
// internal lint pass) over the current project state and returns its
// results keyed by file.
type Producer func(ctx context.Context) (map[intern.NormalizedPath][]Diagnostic, error)

// Engine runs Engine's debounce/supersede/merge/publish state machine
// over a compile Producer and a lint Producer, calling onPublish once per
// file whose merged diagnostic list actually changed, and onStatus on
// every distinct Ok/Analyzing transition.
type Engine struct {
	mu         sync.Mutex
	debounce   time.Duration
	generation uint64
	timer      *time.Timer
	cancel     context.CancelFunc
	status     Status

	compile Producer
	lint    Producer

	external  map[intern.NormalizedPath][]Diagnostic
	lintDiags map[intern.NormalizedPath][]Diagnostic
	published map[intern.NormalizedPath][]Diagnostic

	onPublish func(path intern.NormalizedPath, diags []Diagnostic)
	onStatus  func(Status)
}

// NewEngine constructs an Engine. debounce <= 0 uses defaultDebounce.
// Either producer may be nil (a disabled source contributes nothing).
func NewEngine(debounce time.Duration, compile, lint Producer, onPublish func(intern.NormalizedPath, []Diagnostic), onStatus func(Status)) *Engine {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Engine{
		debounce:  debounce,
		compile:   compile,
		lint:      lint,
		external:  map[intern.NormalizedPath][]Diagnostic{},
		lintDiags: map[intern.NormalizedPath][]Diagnostic{},
		published: map[intern.NormalizedPath][]Diagnostic{},
		onPublish: onPublish,
		onStatus:  onStatus,
	}
}

// Request schedules a flycheck run. A request arriving while one is
// already debouncing or in flight supersedes it: the debounce timer
// resets and any in-flight compile/lint is cancelled.
func (e *Engine) Request() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	gen := e.generation
	e.setStatusLocked(StatusAnalyzing)

	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, func() { e.run(gen) })
}

// Disable clears every entry reported by src and republishes, the way
// turning off on-save/on-change for solc or the linter does without
// waiting for the other source's next run.
func (e *Engine) Disable(src Source) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch src {
	case SourceCompiler:
		e.external = map[intern.NormalizedPath][]Diagnostic{}
	case SourceLint:
		e.lintDiags = map[intern.NormalizedPath][]Diagnostic{}
	}
	e.publishLocked()
}

// run executes both producers concurrently and, if gen is still the
// latest generation when they finish, merges and publishes the result.
// A run whose generation was superseded while in flight is dropped.
func (e *Engine) run(gen uint64) {
	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	var extResult, lintResult map[intern.NormalizedPath][]Diagnostic
	g, gctx := errgroup.WithContext(ctx)
	if e.compile != nil {
		g.Go(func() error {
			r, err := safeRun(gctx, e.compile)
			extResult = r
			return err
		})
	}
	if e.lint != nil {
		g.Go(func() error {
			r, err := safeRun(gctx, e.lint)
			lintResult = r
			return err
		})
	}
	err := g.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		// Superseded: a newer request already owns publishing.
		return
	}

	if err != nil {
		if ctx.Err() == nil {
			e.publishTaskFailureLocked(err)
		}
		e.setStatusLocked(StatusOk)
		return
	}

	if extResult != nil {
		e.external = extResult
	}
	if lintResult != nil {
		e.lintDiags = lintResult
	}
	e.publishLocked()
	e.setStatusLocked(StatusOk)
}

// safeRun turns a producer panic into an error so one misbehaving task
// can't take down the whole flycheck engine.
func safeRun(ctx context.Context, p Producer) (result map[intern.NormalizedPath][]Diagnostic, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("flycheck: task panicked: %v", r)
		}
	}()
	return p(ctx)
}

// publishLocked recomputes the merged list for every path either source
// currently knows about, plus every previously published path (so a path
// that now has zero diagnostics gets an empty republish, clearing it).
func (e *Engine) publishLocked() {
	paths := map[intern.NormalizedPath]bool{}
	for p := range e.external {
		paths[p] = true
	}
	for p := range e.lintDiags {
		paths[p] = true
	}
	for p := range e.published {
		paths[p] = true
	}

	for path := range paths {
		merged := merge(e.external[path], e.lintDiags[path])
		if equalDiagnostics(merged, e.published[path]) {
			continue
		}
		if len(merged) == 0 {
			delete(e.published, path)
		} else {
			e.published[path] = merged
		}
		if e.onPublish != nil {
			e.onPublish(path, merged)
		}
	}
}

func (e *Engine) publishTaskFailureLocked(cause error) {
	diag := Diagnostic{
		Severity: SeverityError,
		Code:     "task-panic",
		Message:  fmt.Sprintf("background analysis task failed: %v", cause),
		Source:   SourceCompiler,
	}
	e.published[workspaceFallbackPath] = []Diagnostic{diag}
	if e.onPublish != nil {
		e.onPublish(workspaceFallbackPath, []Diagnostic{diag})
	}
}

func (e *Engine) setStatusLocked(s Status) {
	if s == e.status {
		return
	}
	e.status = s
	if e.onStatus != nil {
		e.onStatus(s)
	}
}

// Status reports the engine's current computed status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// RunID is a fresh opaque identifier for one flycheck run, surfaced in
// logs and the serverStatus notification.
func RunID() string {
	return uuid.New().String()
}
