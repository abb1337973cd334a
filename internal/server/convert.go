package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lumosimmo/solidity-analyzer/internal/flycheck"
	"github.com/lumosimmo/solidity-analyzer/internal/ide"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

// mapperFor builds a position mapper for file's current text. Handlers
// call this once per request against the offset(s) they need to convert;
// there's no cross-request cache since text changes on every edit.
func (c *Core) mapperFor(file intern.FileID) *text.Mapper {
	return text.NewMapper(c.Source(file))
}

func rangeToProtocol(m *text.Mapper, r text.Range) protocol.Range {
	startLine, startCol := m.OffsetToPosition(r.Start)
	endLine, endCol := m.OffsetToPosition(r.End)
	return protocol.Range{
		Start: protocol.Position{Line: toUInteger(startLine), Character: toUInteger(startCol)},
		End:   protocol.Position{Line: toUInteger(endLine), Character: toUInteger(endCol)},
	}
}

// toUInteger converts a non-negative int to protocol.UInteger, clamping
// a stray negative (shouldn't happen; offsets are always >= 0) to 0.
func toUInteger(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n)
}

func positionToOffset(m *text.Mapper, p protocol.Position) int {
	return m.PositionToOffset(int(p.Line), int(p.Character))
}

// locationToProtocol converts an ide.Location to a protocol.Location,
// resolving file to its URI and mapping the byte range against file's
// own text (a reference's range is always expressed in its own file's
// coordinates, never the origin file's).
func (c *Core) locationToProtocol(loc ide.Location) protocol.Location {
	m := c.mapperFor(loc.File)
	return protocol.Location{
		URI:   c.URI(loc.File),
		Range: rangeToProtocol(m, loc.Range),
	}
}

func defKindToSymbolKind(k intern.DefKind) protocol.SymbolKind {
	switch k {
	case intern.KindContract, intern.KindLibrary:
		return protocol.SymbolKindClass
	case intern.KindInterface:
		return protocol.SymbolKindInterface
	case intern.KindFunction, intern.KindModifier:
		return protocol.SymbolKindFunction
	case intern.KindStruct, intern.KindUdvt:
		return protocol.SymbolKindStruct
	case intern.KindEnum:
		return protocol.SymbolKindEnum
	case intern.KindEvent:
		return protocol.SymbolKindEvent
	case intern.KindError:
		return protocol.SymbolKindConstructor
	case intern.KindVariable:
		return protocol.SymbolKindVariable
	default:
		return protocol.SymbolKindVariable
	}
}

func defKindToCompletionKind(k intern.DefKind) protocol.CompletionItemKind {
	switch k {
	case intern.KindContract, intern.KindLibrary:
		return protocol.CompletionItemKindClass
	case intern.KindInterface:
		return protocol.CompletionItemKindInterface
	case intern.KindFunction, intern.KindModifier:
		return protocol.CompletionItemKindFunction
	case intern.KindStruct, intern.KindUdvt:
		return protocol.CompletionItemKindStruct
	case intern.KindEnum:
		return protocol.CompletionItemKindEnum
	case intern.KindEvent:
		return protocol.CompletionItemKindEvent
	case intern.KindError:
		return protocol.CompletionItemKindConstructor
	case intern.KindVariable:
		return protocol.CompletionItemKindVariable
	default:
		return protocol.CompletionItemKindText
	}
}

func itemToCompletionItem(it ide.Item) protocol.CompletionItem {
	kind := defKindToCompletionKind(it.Kind)
	detail := it.Detail
	item := protocol.CompletionItem{
		Label: it.Label,
		Kind:  &kind,
	}
	if detail != "" {
		item.Detail = &detail
	}
	if it.InsertText != "" {
		item.InsertText = &it.InsertText
		snippet := protocol.InsertTextFormatSnippet
		item.InsertTextFormat = &snippet
	}
	return item
}

func docSymbolToProtocol(m *text.Mapper, d ide.DocSymbol) protocol.DocumentSymbol {
	rng := rangeToProtocol(m, d.Range)
	kind := defKindToSymbolKind(d.Kind)
	sym := protocol.DocumentSymbol{
		Name:           d.Name,
		Kind:           kind,
		Range:          rng,
		SelectionRange: rng,
	}
	for _, child := range d.Children {
		c := docSymbolToProtocol(m, child)
		sym.Children = append(sym.Children, c)
	}
	return sym
}

func (c *Core) workspaceSymbolToProtocol(w ide.WorkspaceSymbol) protocol.SymbolInformation {
	m := c.mapperFor(w.File)
	kind := defKindToSymbolKind(w.Kind)
	info := protocol.SymbolInformation{
		Name: w.Name,
		Kind: kind,
		Location: protocol.Location{
			URI:   c.URI(w.File),
			Range: rangeToProtocol(m, w.Range),
		},
	}
	if w.Container != "" {
		info.ContainerName = &w.Container
	}
	return info
}

func (c *Core) editToTextDocumentEdit(edits []ide.Edit) []protocol.TextEdit {
	out := make([]protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		m := c.mapperFor(e.File)
		out = append(out, protocol.TextEdit{
			Range:   rangeToProtocol(m, e.Range),
			NewText: e.NewText,
		})
	}
	return out
}

// editsToWorkspaceEdit groups Edit values by file into one
// protocol.WorkspaceEdit, the shape a rename response returns.
func (c *Core) editsToWorkspaceEdit(edits []ide.Edit) protocol.WorkspaceEdit {
	byFile := map[intern.FileID][]ide.Edit{}
	var order []intern.FileID
	for _, e := range edits {
		if _, ok := byFile[e.File]; !ok {
			order = append(order, e.File)
		}
		byFile[e.File] = append(byFile[e.File], e)
	}
	changes := map[protocol.DocumentUri][]protocol.TextEdit{}
	for _, f := range order {
		changes[c.URI(f)] = c.editToTextDocumentEdit(byFile[f])
	}
	return protocol.WorkspaceEdit{Changes: changes}
}

func signatureToProtocol(sig ide.Signature) protocol.SignatureHelp {
	doc := sig.Documentation
	params := make([]protocol.ParameterInformation, len(sig.Params))
	for i, p := range sig.Params {
		label := p
		params[i] = protocol.ParameterInformation{Label: label}
	}
	info := protocol.SignatureInformation{
		Label:      sig.Label,
		Parameters: params,
	}
	if doc != "" {
		info.Documentation = doc
	}
	active := toUInteger(sig.ActiveParam)
	return protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{info},
		ActiveSignature: uintegerPtr(0),
		ActiveParameter: &active,
	}
}

func uintegerPtr(v protocol.UInteger) *protocol.UInteger { return &v }

func severityToProtocol(s flycheck.Severity) protocol.DiagnosticSeverity {
	switch s {
	case flycheck.SeverityError:
		return protocol.DiagnosticSeverityError
	case flycheck.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case flycheck.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	case flycheck.SeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

func (c *Core) diagnosticToProtocol(m *text.Mapper, d flycheck.Diagnostic) protocol.Diagnostic {
	sev := severityToProtocol(d.Severity)
	code := &protocol.IntegerOrString{Value: d.Code}
	src := string(d.Source)
	return protocol.Diagnostic{
		Range:    rangeToProtocol(m, d.Range),
		Severity: &sev,
		Code:     code,
		Source:   &src,
		Message:  d.Message,
	}
}
