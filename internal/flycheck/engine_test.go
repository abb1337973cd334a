package flycheck

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

func waitForPublish(t *testing.T, published *sync.Map, path intern.NormalizedPath, timeout time.Duration) ([]Diagnostic, bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if v, ok := published.Load(path); ok {
			return v.([]Diagnostic), true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return nil, false
}

func TestEnginePublishesMergedDiagnosticsAfterDebounce(t *testing.T) {
	path := intern.NormalizedPath("src/A.sol")
	r := text.Range{Start: 0, End: 3}

	compile := func(ctx context.Context) (map[intern.NormalizedPath][]Diagnostic, error) {
		return map[intern.NormalizedPath][]Diagnostic{path: {{Range: r, Code: "E1", Source: SourceCompiler}}}, nil
	}
	lint := func(ctx context.Context) (map[intern.NormalizedPath][]Diagnostic, error) {
		return map[intern.NormalizedPath][]Diagnostic{path: {{Range: r, Code: "unused", Source: SourceLint}}}, nil
	}

	var published sync.Map
	e := NewEngine(5*time.Millisecond, compile, lint, func(p intern.NormalizedPath, d []Diagnostic) {
		published.Store(p, d)
	}, nil)

	e.Request()
	diags, ok := waitForPublish(t, &published, path, time.Second)
	assert.True(t, ok)
	assert.Len(t, diags, 2)
}

func TestEngineSupersedesPendingRequest(t *testing.T) {
	path := intern.NormalizedPath("src/A.sol")
	var calls int32
	var mu sync.Mutex

	compile := func(ctx context.Context) (map[intern.NormalizedPath][]Diagnostic, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return map[intern.NormalizedPath][]Diagnostic{path: nil}, nil
	}

	var published sync.Map
	e := NewEngine(20*time.Millisecond, compile, nil, func(p intern.NormalizedPath, d []Diagnostic) {
		published.Store(p, d)
	}, nil)

	e.Request()
	time.Sleep(5 * time.Millisecond)
	e.Request() // supersedes the first, resets the debounce window

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(1), calls)
}

func TestEngineDisableClearsSourceAndRepublishes(t *testing.T) {
	path := intern.NormalizedPath("src/A.sol")
	r := text.Range{Start: 0, End: 3}

	compile := func(ctx context.Context) (map[intern.NormalizedPath][]Diagnostic, error) {
		return map[intern.NormalizedPath][]Diagnostic{path: {{Range: r, Code: "E1", Source: SourceCompiler}}}, nil
	}

	var published sync.Map
	e := NewEngine(5*time.Millisecond, compile, nil, func(p intern.NormalizedPath, d []Diagnostic) {
		published.Store(p, d)
	}, nil)

	e.Request()
	_, ok := waitForPublish(t, &published, path, time.Second)
	assert.True(t, ok)

	published.Delete(path)
	e.Disable(SourceCompiler)
	diags, ok := waitForPublish(t, &published, path, time.Second)
	assert.True(t, ok)
	assert.Empty(t, diags)
}

func TestEnginePublishesWorkspaceFallbackOnTaskPanic(t *testing.T) {
	compile := func(ctx context.Context) (map[intern.NormalizedPath][]Diagnostic, error) {
		panic("boom")
	}

	var published sync.Map
	e := NewEngine(5*time.Millisecond, compile, nil, func(p intern.NormalizedPath, d []Diagnostic) {
		published.Store(p, d)
	}, nil)

	e.Request()
	diags, ok := waitForPublish(t, &published, workspaceFallbackPath, time.Second)
	assert.True(t, ok)
	assert.Len(t, diags, 1)
	assert.Equal(t, "task-panic", diags[0].Code)
}

func TestEngineStatusTransitionsOkAfterRun(t *testing.T) {
	compile := func(ctx context.Context) (map[intern.NormalizedPath][]Diagnostic, error) {
		return nil, nil
	}

	var transitions []Status
	var mu sync.Mutex
	e := NewEngine(5*time.Millisecond, compile, nil, nil, func(s Status) {
		mu.Lock()
		transitions = append(transitions, s)
		mu.Unlock()
	})

	e.Request()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && e.Status() != StatusOk {
		time.Sleep(2 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusAnalyzing, StatusOk}, transitions)
}

func TestEnginePublishesWorkspaceFallbackOnProducerError(t *testing.T) {
	compile := func(ctx context.Context) (map[intern.NormalizedPath][]Diagnostic, error) {
		return nil, errors.New("compile failed")
	}

	var published sync.Map
	e := NewEngine(5*time.Millisecond, compile, nil, func(p intern.NormalizedPath, d []Diagnostic) {
		published.Store(p, d)
	}, nil)

	e.Request()
	diags, ok := waitForPublish(t, &published, workspaceFallbackPath, time.Second)
	assert.True(t, ok)
	assert.Equal(t, "task-panic", diags[0].Code)
}
