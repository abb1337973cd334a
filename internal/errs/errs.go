// Package errs gives every error a server request handler can produce a
// named Kind and a JSON-RPC code, the way a handler decides whether to log
// and continue or fail the whole request. Wrapping uses golang.org/x/xerrors
// so a wrapped cause keeps its originating frame for logs.
package errs

import (
	errors "golang.org/x/xerrors"
)

// Kind names one of the error categories a request or background task can
// fail with.
type Kind int

const (
	// RequestCancelled: the client cancelled the request, or a newer one
	// superseded it before it finished.
	RequestCancelled Kind = iota
	// InternalError: an invariant the code assumes was violated.
	InternalError
	// ServerNotInitialized: a request arrived before initialize completed.
	ServerNotInitialized
	// ResolutionFailure: goto-def/hover/completion couldn't resolve a
	// symbol — the position exists but nothing binds there.
	ResolutionFailure
	// ParseFailure: the file's syntax tree couldn't be built well enough
	// to answer the request.
	ParseFailure
	// DiagnosticTaskFailure: a background compile or lint task failed or
	// panicked; has no single request to report back to.
	DiagnosticTaskFailure
)

func (k Kind) String() string {
	switch k {
	case RequestCancelled:
		return "RequestCancelled"
	case InternalError:
		return "InternalError"
	case ServerNotInitialized:
		return "ServerNotInitialized"
	case ResolutionFailure:
		return "ResolutionFailure"
	case ParseFailure:
		return "ParseFailure"
	case DiagnosticTaskFailure:
		return "DiagnosticTaskFailure"
	default:
		return "UnknownKind"
	}
}

// JSON-RPC / LSP error codes. RequestCancelled and ServerNotInitialized are
// codes the LSP spec reserves; the rest reuse the JSON-RPC reserved range
// since no LSP-specific code is defined for them.
const (
	codeRequestCancelled     = -32800
	codeServerNotInitialized = -32002
	codeInternalError        = -32603
	codeResolutionFailure    = -32001
	codeParseFailure         = -32000
	codeDiagnosticTaskFailed = -32099
)

// Error is an error annotated with a Kind, wrapping an underlying cause.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// New wraps cause with kind, capturing a frame via xerrors so the
// originating call site survives into logs.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, cause: errors.Errorf(format, args...)}
}

// Wrap attaches kind to an existing error, capturing a frame at the call
// site the way errors.Errorf("%w", err) does.
func Wrap(kind Kind, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, cause: errors.Errorf("%w", cause)}
}

// Code maps err's Kind to a JSON-RPC error code. An err with no attached
// Kind (not produced by this package) maps to the generic internal-error
// code, matching a handler's fallback branch for an unclassified error.
func Code(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return codeInternalError
	}
	switch e.Kind {
	case RequestCancelled:
		return codeRequestCancelled
	case ServerNotInitialized:
		return codeServerNotInitialized
	case ResolutionFailure:
		return codeResolutionFailure
	case ParseFailure:
		return codeParseFailure
	case DiagnosticTaskFailure:
		return codeDiagnosticTaskFailed
	default:
		return codeInternalError
	}
}

// KindOf reports the Kind attached to err, and whether err was produced by
// this package at all.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return InternalError, false
	}
	return e.Kind, true
}
