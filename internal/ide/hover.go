package ide

import (
	"strings"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/natspec"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
)

// FileResolver is what hover needs to turn a FileID into the outgoing
// {Target} reference links NatSpec rendering produces: the file's URI
// and its source text (for converting a byte offset into a line number).
// The caller's VFS snapshot satisfies this.
type FileResolver interface {
	URI(file intern.FileID) string
	Source(file intern.FileID) []byte
}

// Hover answers a hover request at offset: the declaration's signature
// line in a code fence, followed by its rendered NatSpec comment (with
// @inheritdoc resolved and {Target} references linkified).
func Hover(prog *sema.Program, file intern.FileID, offset int, files FileResolver) (string, bool) {
	target := file
	d, ok := declAtOffset(prog, file, offset)
	if !ok {
		out := prog.ResolveAtOffset(file, offset)
		if out.Kind != sema.Resolved {
			return "", false
		}
		target = out.Symbol.DefFile
		d, ok = declAt(prog, target, out.Symbol.DefRange)
		if !ok {
			return "", false
		}
	}

	var b strings.Builder
	b.WriteString("```solidity\n")
	b.WriteString(signatureLabel(d))
	b.WriteString("\n```")

	doc := natspec.Parse(d.Comments)
	if len(doc.Sections) > 0 {
		declaring := natspec.Declaring{File: target, Contract: d.Container, Name: d.Name, Fn: d.Fn}
		doc = natspec.ResolveInheritdoc(prog, doc, declaring, nil)
		if text := natspec.Render(doc, linkResolver(prog, target, d, files)); text != "" {
			b.WriteString("\n\n")
			b.WriteString(text)
		}
	}

	return b.String(), true
}

// linkResolver builds a natspec.LinkResolver scoped to the contract a
// hovered declaration lives in, so a bare `{member}` reference resolves
// against the same contract and a `Contract.member` / `Contract::member`
// / `Contract-member` reference resolves against the named one.
func linkResolver(prog *sema.Program, file intern.FileID, d decl, files FileResolver) natspec.LinkResolver {
	var ctxOffset int
	switch {
	case d.Fn != nil:
		ctxOffset = d.Fn.Range.Start
	default:
		ctxOffset = d.Comments[0].Range.Start
	}
	ctx := prog.EnclosingContract(file, ctxOffset)

	return func(target string) (natspec.LinkTarget, bool) {
		contractName, member := splitTarget(target)
		if contractName == "" {
			contractName = d.Container
		}
		for _, e := range prog.IdentCandidates(file, ctx, member) {
			if contractName != "" && e.Container != contractName {
				continue
			}
			return natspec.LinkTarget{
				URI:  files.URI(e.File),
				Line: natspec.LineOf(files.Source(e.File), e.NameRange.Start),
			}, true
		}
		return natspec.LinkTarget{}, false
	}
}

func splitTarget(target string) (contract, member string) {
	for _, sep := range []string{"::", ".", "-"} {
		if i := strings.Index(target, sep); i >= 0 {
			return target[:i], target[i+len(sep):]
		}
	}
	return "", target
}
