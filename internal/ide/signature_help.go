package ide

import (
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
)

// Signature is one candidate signature-help entry: its label, and the
// parameter labels within it (for highlighting the active one).
type Signature struct {
	Label         string
	Params        []string
	Documentation string
	ActiveParam   int
}

// SignatureHelp finds the call expression enclosing offset and renders
// its callee's signature, with ActiveParam set to the argument position
// offset currently sits in.
func SignatureHelp(prog *sema.Program, file intern.FileID, offset int) (Signature, bool) {
	call, _, ok := prog.EnclosingCall(file, offset)
	if !ok {
		return Signature{}, false
	}

	calleeOffset := call.Callee.Span().Start
	out := prog.ResolveAtOffset(file, calleeOffset)
	if out.Kind != sema.Resolved {
		return Signature{}, false
	}

	d, ok := declAt(prog, out.Symbol.DefFile, out.Symbol.DefRange)
	if !ok || d.Fn == nil {
		return Signature{}, false
	}

	params := make([]string, len(d.Fn.Params))
	for i, p := range d.Fn.Params {
		params[i] = renderType(p.Type)
		if p.Name != "" {
			params[i] += " " + p.Name
		}
	}

	active := 0
	for i, arg := range call.Args {
		if offset <= arg.Span().End {
			active = i
			break
		}
		active = i + 1
	}
	if active >= len(params) && len(params) > 0 {
		active = len(params) - 1
	}

	return Signature{
		Label:       functionSignature(d.Fn),
		Params:      params,
		ActiveParam: active,
	}, true
}
