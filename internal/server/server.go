package server

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple" // required runtime backend for glsp

	"github.com/lumosimmo/solidity-analyzer/internal/errs"
	"github.com/lumosimmo/solidity-analyzer/internal/ide"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

const name = "solidity-analyzer"

const (
	cmdInstallFoundrySolc = "solidity-analyzer.installFoundrySolc"
	cmdIndexedFiles       = "solidity-analyzer.indexedFiles"
)

// Server is the Solidity language server: a protocol.Handler wired
// against a Core, plus the JSON-RPC lifecycle bookkeeping glsp requires
// (shutdown-before-exit, an idempotent Close).
type Server struct {
	log     *slog.Logger
	core    *Core
	handler protocol.Handler
	rpc     *glspserver.Server

	shutdownCalled bool
	closeOnce      sync.Once
	closeErr       error

	statusNotify bool // client advertised experimental.serverStatusNotification

	notifyMu sync.Mutex
	notify   notifier // captured from the most recent request's glsp.Context
}

// NewServer constructs a Server backed by core. log may be nil.
func NewServer(core *Core, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{log: log.With(slog.String("component", "server")), core: core}

	// glsp requires commonlog at runtime; this project logs through slog
	// instead, so commonlog's own output is silenced.
	commonlog.Configure(0, nil)

	s.handler = protocol.Handler{
		Initialize:    s.initialize,
		Initialized:   s.initialized,
		Shutdown:      s.shutdown,
		Exit:          s.exit,
		SetTrace:      s.setTrace,
		CancelRequest: s.cancelRequest,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentDidSave:   s.textDocumentDidSave,

		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentHover:          s.textDocumentHover,
		TextDocumentSignatureHelp:  s.textDocumentSignatureHelp,
		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentReferences:     s.textDocumentReferences,
		TextDocumentRename:         s.textDocumentRename,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		WorkspaceSymbol:            s.workspaceSymbol,

		WorkspaceDidChangeConfiguration:    s.workspaceDidChangeConfiguration,
		WorkspaceDidChangeWatchedFiles:     s.workspaceDidChangeWatchedFiles,
		WorkspaceDidChangeWorkspaceFolders: s.workspaceDidChangeWorkspaceFolders,
		WorkspaceExecuteCommand:            s.workspaceExecuteCommand,
	}

	s.rpc = glspserver.NewServer(&s.handler, name, false)
	s.wireDiagnostics()
	return s
}

// RunStdio runs the server over stdio until the client closes the
// connection or sends exit.
func (s *Server) RunStdio() error {
	return s.rpc.RunStdio()
}

// Close closes the underlying connection, causing RunStdio to return.
// Idempotent: safe to call more than once, and safe to call before
// RunStdio has set up the connection (returns nil, retry later).
func (s *Server) Close() error {
	conn := s.rpc.GetStdio()
	if conn == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.core.Close()
		s.closeErr = conn.Close()
	})
	return s.closeErr
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Info("initialize", slog.String("client", clientName(params)))

	if m, ok := params.Capabilities.Experimental.(map[string]any); ok {
		if v, ok := m["serverStatusNotification"].(bool); ok {
			s.statusNotify = v
		}
	}

	var startDir string
	switch {
	case len(params.WorkspaceFolders) > 0:
		if p, err := uriToPath(params.WorkspaceFolders[0].URI); err == nil {
			startDir = string(p)
		}
	case params.RootURI != nil:
		if p, err := uriToPath(*params.RootURI); err == nil {
			startDir = string(p)
		}
	case params.RootPath != nil:
		startDir = *params.RootPath
	}

	if opts, ok := params.InitializationOptions.(map[string]any); ok {
		for _, r := range s.core.ApplyOptions(opts) {
			if r.Error != nil {
				s.log.Warn("initializationOptions", slog.String("option", r.Name), slog.Any("err", r.Error))
			}
		}
	}

	if startDir != "" {
		root := startDir
		if r, ok := s.core.DiscoverRoot(startDir); ok {
			root = r
		}
		if err := s.core.SetWorkspaceRoot(root); err != nil {
			s.log.Warn("load workspace config", slog.Any("err", err))
		}
	}

	capabilities := s.handler.CreateServerCapabilities()
	// Full sync: textDocumentDidChange only understands a whole-document
	// content change event, so advertising Incremental would let a client
	// send deltas this server silently drops.
	syncKind := protocol.TextDocumentSyncKindFull
	if syncOpts, ok := capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions); ok {
		syncOpts.Change = &syncKind
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", "\"", "/"},
	}
	capabilities.SignatureHelpProvider = &protocol.SignatureHelpOptions{
		TriggerCharacters: []string{"(", ","},
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{cmdInstallFoundrySolc, cmdIndexedFiles},
	}

	version := "dev"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    name,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	s.log.Info("initialized")
	s.captureNotifier(ctx.Notify)
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	s.log.Info("shutdown")
	s.shutdownCalled = true
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) exit(ctx *glsp.Context) error {
	code := 0
	if !s.shutdownCalled {
		s.log.Warn("exit without prior shutdown")
		code = 1
	}
	os.Exit(code)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) cancelRequest(ctx *glsp.Context, params *protocol.CancelParams) error {
	// glsp handles JSON-RPC-level cancellation of the in-flight call;
	// taskpool's generation-based cancellation is what actually aborts
	// the worker goroutine doing the work.
	return nil
}

func clientName(params *protocol.InitializeParams) string {
	if params.ClientInfo == nil {
		return "unknown"
	}
	if params.ClientInfo.Version != nil {
		return params.ClientInfo.Name + " " + *params.ClientInfo.Version
	}
	return params.ClientInfo.Name
}

// --- text synchronization ---

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotifier(ctx.Notify)
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if !isSolidity(path) {
		return nil
	}
	s.core.OpenOrChangeFile(path, []byte(params.TextDocument.Text), params.TextDocument.Version)
	s.core.flycheck.Request()
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotifier(ctx.Notify)
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if !isSolidity(path) {
		return nil
	}
	var full *protocol.TextDocumentContentChangeEventWhole
	for _, raw := range params.ContentChanges {
		if ch, ok := raw.(protocol.TextDocumentContentChangeEventWhole); ok {
			full = &ch
		}
	}
	if full == nil {
		return nil
	}
	s.core.OpenOrChangeFile(path, []byte(full.Text), params.TextDocument.Version)

	opts := s.core.Settings()
	if opts.DiagnosticsEnable && opts.DiagnosticsOnChange {
		s.core.flycheck.Request()
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotifier(ctx.Notify)
	opts := s.core.Settings()
	if opts.DiagnosticsEnable && opts.DiagnosticsOnSave {
		s.core.flycheck.Request()
	}
	return nil
}

func isSolidity(path intern.NormalizedPath) bool {
	return strings.HasSuffix(strings.ToLower(string(path)), ".sol")
}

// --- language features ---
//
// Every handler below dispatches its body onto Core.Pool, which bounds
// how many of these run at once and hands the body a context that
// unwinds the moment a newer edit bumps the DB's revision past the one
// Snapshot built against. A handler that observes that unwind maps it
// to a RequestCancelled error rather than answering against a stale
// program.

func (s *Server) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	var result any
	err := s.core.Pool().Run(context.Background(), func(taskCtx context.Context) error {
		snap, err := s.core.Snapshot(taskCtx)
		if err != nil {
			return err
		}
		file, offset, ok := s.resolvePosition(snap, params.TextDocument.URI, params.Position)
		if !ok {
			return nil
		}
		loc, ok := ide.GotoDefinition(snap.prog, file, offset)
		if !ok {
			return nil
		}
		result = s.core.locationToProtocol(loc)
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.RequestCancelled, err)
	}
	return result, nil
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	var result *protocol.Hover
	err := s.core.Pool().Run(context.Background(), func(taskCtx context.Context) error {
		snap, err := s.core.Snapshot(taskCtx)
		if err != nil {
			return err
		}
		file, offset, ok := s.resolvePosition(snap, params.TextDocument.URI, params.Position)
		if !ok {
			return nil
		}
		content, ok := ide.Hover(snap.prog, file, offset, s.core)
		if !ok {
			return nil
		}
		kind := protocol.MarkupKindMarkdown
		result = &protocol.Hover{Contents: protocol.MarkupContent{Kind: kind, Value: content}}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.RequestCancelled, err)
	}
	return result, nil
}

func (s *Server) textDocumentSignatureHelp(ctx *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	var result *protocol.SignatureHelp
	err := s.core.Pool().Run(context.Background(), func(taskCtx context.Context) error {
		snap, err := s.core.Snapshot(taskCtx)
		if err != nil {
			return err
		}
		file, offset, ok := s.resolvePosition(snap, params.TextDocument.URI, params.Position)
		if !ok {
			return nil
		}
		sig, ok := ide.SignatureHelp(snap.prog, file, offset)
		if !ok {
			return nil
		}
		help := signatureToProtocol(sig)
		result = &help
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.RequestCancelled, err)
	}
	return result, nil
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	var result []protocol.CompletionItem
	err := s.core.Pool().Run(context.Background(), func(taskCtx context.Context) error {
		snap, err := s.core.Snapshot(taskCtx)
		if err != nil {
			return err
		}
		path, err := uriToPath(params.TextDocument.URI)
		if err != nil {
			return nil
		}
		file, ok := snap.vfsSnap.FileID(path)
		if !ok {
			return nil
		}
		src := s.core.Source(file)
		m := text.NewMapper(src)
		offset := positionToOffset(m, params.Position)

		items := ide.Complete(snap.prog, file, offset, src, s.core.ImportCandidates)
		out := make([]protocol.CompletionItem, len(items))
		for i, it := range items {
			out[i] = itemToCompletionItem(it)
		}
		result = out
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.RequestCancelled, err)
	}
	return result, nil
}

func (s *Server) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	var result []protocol.Location
	err := s.core.Pool().Run(context.Background(), func(taskCtx context.Context) error {
		snap, err := s.core.Snapshot(taskCtx)
		if err != nil {
			return err
		}
		file, offset, ok := s.resolvePosition(snap, params.TextDocument.URI, params.Position)
		if !ok {
			return nil
		}
		includeDecl := params.Context.IncludeDeclaration
		locs := ide.References(snap.prog, file, offset, includeDecl)
		out := make([]protocol.Location, len(locs))
		for i, l := range locs {
			out[i] = s.core.locationToProtocol(l)
		}
		result = out
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.RequestCancelled, err)
	}
	return result, nil
}

func (s *Server) textDocumentRename(ctx *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	var result *protocol.WorkspaceEdit
	err := s.core.Pool().Run(context.Background(), func(taskCtx context.Context) error {
		snap, err := s.core.Snapshot(taskCtx)
		if err != nil {
			return err
		}
		file, offset, ok := s.resolvePosition(snap, params.TextDocument.URI, params.Position)
		if !ok {
			return nil
		}
		edits, err := ide.Rename(snap.prog, file, offset, params.NewName)
		if err != nil {
			return errs.Wrap(errs.ResolutionFailure, err)
		}
		we := s.core.editsToWorkspaceEdit(edits)
		result = &we
		return nil
	})
	if err != nil {
		if _, ok := errs.KindOf(err); ok {
			return nil, err
		}
		return nil, errs.Wrap(errs.RequestCancelled, err)
	}
	return result, nil
}

func (s *Server) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	var result []protocol.DocumentSymbol
	err := s.core.Pool().Run(context.Background(), func(taskCtx context.Context) error {
		snap, err := s.core.Snapshot(taskCtx)
		if err != nil {
			return err
		}
		path, err := uriToPath(params.TextDocument.URI)
		if err != nil {
			return nil
		}
		file, ok := snap.vfsSnap.FileID(path)
		if !ok {
			return nil
		}
		m := s.core.mapperFor(file)
		syms := ide.DocumentSymbols(snap.prog, file)
		out := make([]protocol.DocumentSymbol, len(syms))
		for i, sym := range syms {
			out[i] = docSymbolToProtocol(m, sym)
		}
		result = out
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.RequestCancelled, err)
	}
	return result, nil
}

func (s *Server) workspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	var result []protocol.SymbolInformation
	err := s.core.Pool().Run(context.Background(), func(taskCtx context.Context) error {
		snap, err := s.core.Snapshot(taskCtx)
		if err != nil {
			return err
		}
		matches := ide.WorkspaceSymbols(snap.prog, params.Query)
		out := make([]protocol.SymbolInformation, len(matches))
		for i, w := range matches {
			out[i] = s.core.workspaceSymbolToProtocol(w)
		}
		result = out
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.RequestCancelled, err)
	}
	return result, nil
}

// resolvePosition resolves a request's (uri, position) pair to a
// (file, byte offset) pair against snap. ok is false for a uri the
// snapshot doesn't know about (closed or never-opened file).
func (s *Server) resolvePosition(snap *snapshotProgram, uri string, pos protocol.Position) (intern.FileID, int, bool) {
	path, err := uriToPath(uri)
	if err != nil {
		return 0, 0, false
	}
	file, ok := snap.vfsSnap.FileID(path)
	if !ok {
		return 0, 0, false
	}
	m := s.core.mapperFor(file)
	return file, positionToOffset(m, pos), true
}

// --- workspace ---

func (s *Server) workspaceDidChangeConfiguration(ctx *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	if settings, ok := params.Settings.(map[string]any); ok {
		for _, r := range s.core.ApplyOptions(settings) {
			if r.Error != nil {
				s.log.Warn("didChangeConfiguration", slog.String("option", r.Name), slog.Any("err", r.Error))
			}
		}
	}
	return nil
}

func (s *Server) workspaceDidChangeWatchedFiles(ctx *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	for _, change := range params.Changes {
		path, err := uriToPath(change.URI)
		if err != nil || !isSolidity(path) {
			continue
		}
		if change.Type == protocol.FileChangeTypeDeleted {
			s.core.RemoveFile(path)
			continue
		}
		snap := s.core.Vfs().Snapshot()
		b, rerr := snap.ReadDisk(filepath.FromSlash(string(path)))
		if rerr != nil {
			continue
		}
		s.core.OpenOrChangeFile(path, b, 0)
	}
	s.core.flycheck.Request()
	return nil
}

func (s *Server) workspaceDidChangeWorkspaceFolders(ctx *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	for _, folder := range params.Event.Added {
		if p, err := uriToPath(folder.URI); err == nil {
			if root, ok := s.core.DiscoverRoot(string(p)); ok {
				_ = s.core.SetWorkspaceRoot(root)
			}
		}
	}
	return nil
}

func (s *Server) workspaceExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	return s.executeCommand(params.Command, params.Arguments)
}
