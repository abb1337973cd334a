package server

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lumosimmo/solidity-analyzer/internal/flycheck"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
)

// notifier is a function that sends an LSP notification, captured from a
// glsp.Context so background work (flycheck's debounce timer) can notify
// the client without needing a request's own *glsp.Context, which only
// exists for the duration of the request that received it.
type notifier func(method string, params any)

func (s *Server) captureNotifier(notify notifier) {
	s.notifyMu.Lock()
	s.notify = notify
	s.notifyMu.Unlock()
}

func (s *Server) currentNotifier() notifier {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	return s.notify
}

// wireDiagnostics builds Core's flycheck.Engine. Only a lint Producer is
// supplied: running solc itself is out of scope, so the compile slot
// stays nil and Engine publishes whatever the lint pass alone finds.
func (s *Server) wireDiagnostics() {
	s.core.flycheck = flycheck.NewEngine(0, nil, s.lintProducer, s.publishDiagnostics, s.publishStatus)
}

// lintProducer runs pragma-version linting over every currently known
// Solidity file, the only lint check this server implements.
func (s *Server) lintProducer(ctx context.Context) (map[intern.NormalizedPath][]flycheck.Diagnostic, error) {
	opts := s.core.Settings()
	if !opts.LintEnable {
		return nil, nil
	}

	snap, err := s.core.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	compilerVersion := s.core.Toolchain().Status().Version

	out := make(map[intern.NormalizedPath][]flycheck.Diagnostic)
	for file, tree := range snap.files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		path, ok := snap.vfsSnap.FilePath(file)
		if !ok {
			continue
		}
		if diags := flycheck.LintPragmas(tree.Pragmas, compilerVersion); len(diags) > 0 {
			out[path] = diags
		}
	}
	return out, nil
}

// publishDiagnostics is flycheck's onPublish callback: it converts one
// file's merged diagnostic list to protocol.PublishDiagnosticsParams and
// sends it through whichever glsp.Context a recent request last handed
// the server.
func (s *Server) publishDiagnostics(path intern.NormalizedPath, diags []flycheck.Diagnostic) {
	notify := s.currentNotifier()
	if notify == nil {
		return
	}

	snap, err := s.core.Snapshot(context.Background())
	if err != nil {
		return
	}
	file, ok := snap.vfsSnap.FileID(path)
	if !ok {
		return
	}
	m := s.core.mapperFor(file)

	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, s.core.diagnosticToProtocol(m, d))
	}

	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         s.core.URI(file),
		Diagnostics: out,
	})
}

// publishStatus is flycheck's onStatus callback: it sends a custom
// solidity-analyzer/serverStatus notification, but only to a client that
// advertised experimental.serverStatusNotification during initialize.
func (s *Server) publishStatus(status flycheck.Status) {
	if !s.statusNotify {
		return
	}
	notify := s.currentNotifier()
	if notify == nil {
		return
	}
	notify("solidity-analyzer/serverStatus", map[string]any{
		"status":  status.String(),
		"message": status.String(),
	})
}
