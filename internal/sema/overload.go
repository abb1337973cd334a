package sema

import (
	"strings"

	"github.com/lumosimmo/solidity-analyzer/internal/defmap"
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

// SelectOverload narrows candidates (all assumed to already share name
// and be reachable at the call site) down to the one call resolves to:
//
//  1. keep candidates whose parameter count equals len(args);
//  2. if exactly one remains, it wins;
//  3. else, if every argument is a literal whose type is inferable
//     without full type-checking, keep candidates whose parameters each
//     accept the corresponding argument by implicit conversion;
//  4. else, if every surviving candidate shares one identical parameter
//     signature, pick whichever appears earliest in the current
//     contract's C3 linearization;
//  5. otherwise no candidate is chosen.
func (p *Program) SelectOverload(candidates []*defmap.DefEntry, ctx *ContractInfo, args []syntax.Expr) *defmap.DefEntry {
	byArity := filterByArity(p, candidates, len(args))
	if len(byArity) == 1 {
		return byArity[0]
	}
	if len(byArity) == 0 {
		return nil
	}

	if lit, ok := literalArgTypes(args); ok {
		var byConversion []*defmap.DefEntry
		for _, c := range byArity {
			fn, ok := p.Functions[c.ID]
			if !ok {
				continue
			}
			if paramsAccept(p, c.File, fn, lit) {
				byConversion = append(byConversion, c)
			}
		}
		if len(byConversion) == 1 {
			return byConversion[0]
		}
		if len(byConversion) > 1 {
			byArity = byConversion
		}
	}

	if identicalSignatures(p, byArity) && ctx != nil {
		order := p.Linearize(ctx.File, ctx.Name)
		rank := make(map[string]int, len(order))
		for i, name := range order {
			rank[name] = i
		}
		best := byArity[0]
		bestRank := rank[best.Container]
		for _, c := range byArity[1:] {
			if r, ok := rank[c.Container]; ok && r < bestRank {
				best, bestRank = c, r
			}
		}
		return best
	}
	return nil
}

// selectOverloadMember is SelectOverload's twin for member-access call
// candidates, which carry their FunctionDecl directly (membersOf
// already resolved them structurally) rather than needing a DefID
// round-trip through Program.Functions.
func (p *Program) selectOverloadMember(candidates []*memberDecl, ctx *ContractInfo, args []syntax.Expr) *memberDecl {
	var byArity []*memberDecl
	for _, c := range candidates {
		if c.Decl != nil && len(c.Decl.Params) == len(args) {
			byArity = append(byArity, c)
		}
	}
	if len(byArity) == 1 {
		return byArity[0]
	}
	if len(byArity) == 0 {
		return nil
	}

	if lit, ok := literalArgTypes(args); ok {
		var byConversion []*memberDecl
		for _, c := range byArity {
			if paramsAccept(p, 0, c.Decl, lit) {
				byConversion = append(byConversion, c)
			}
		}
		if len(byConversion) == 1 {
			return byConversion[0]
		}
		if len(byConversion) > 1 {
			byArity = byConversion
		}
	}

	if identicalMemberSignatures(byArity) && ctx != nil {
		order := p.Linearize(ctx.File, ctx.Name)
		rank := make(map[string]int, len(order))
		for i, name := range order {
			rank[name] = i
		}
		best := byArity[0]
		bestRank := rank[best.Container]
		for _, c := range byArity[1:] {
			if r, ok := rank[c.Container]; ok && r < bestRank {
				best, bestRank = c, r
			}
		}
		return best
	}
	return nil
}

func identicalMemberSignatures(candidates []*memberDecl) bool {
	if len(candidates) < 2 {
		return true
	}
	first := paramSignature(candidates[0].Decl)
	for _, c := range candidates[1:] {
		if paramSignature(c.Decl) != first {
			return false
		}
	}
	return true
}

func filterByArity(p *Program, candidates []*defmap.DefEntry, n int) []*defmap.DefEntry {
	var out []*defmap.DefEntry
	for _, c := range candidates {
		fn, ok := p.Functions[c.ID]
		if !ok {
			continue
		}
		if len(fn.Params) == n {
			out = append(out, c)
		}
	}
	return out
}

// literalArgTypes infers a coarse elementary-type label for every
// argument when all of them are literal expressions; this is the
// "inferable without full type-checking" case named in step 3.
func literalArgTypes(args []syntax.Expr) ([]string, bool) {
	out := make([]string, len(args))
	for i, a := range args {
		lit, ok := a.(*syntax.Literal)
		if !ok {
			return nil, false
		}
		out[i] = lit.Kind
	}
	return out, true
}

// paramsAccept checks each parameter's declared elementary type against
// the literal kind inferred for the matching argument.
func paramsAccept(p *Program, file intern.FileID, fn *syntax.FunctionDecl, litKinds []string) bool {
	for i, param := range fn.Params {
		if !acceptsLiteral(param.Type, litKinds[i]) {
			return false
		}
	}
	return true
}

func acceptsLiteral(t syntax.TypeExpr, litKind string) bool {
	switch litKind {
	case "number":
		return isIntegerType(t.Name) || t.Name == "address"
	case "string":
		return t.Name == "string" || t.Name == "bytes"
	case "bool":
		return t.Name == "bool"
	case "address":
		return t.Name == "address"
	case "hex":
		return t.Name == "bytes" || isBytesNType(t.Name)
	default:
		return true
	}
}

func isIntegerType(name string) bool {
	return strings.HasPrefix(name, "uint") || strings.HasPrefix(name, "int")
}

func isBytesNType(name string) bool {
	return len(name) > 5 && strings.HasPrefix(name, "bytes")
}

// identicalSignatures reports whether every candidate declares the same
// parameter type sequence — the "true overload across bases" case.
func identicalSignatures(p *Program, candidates []*defmap.DefEntry) bool {
	if len(candidates) < 2 {
		return true
	}
	var first []string
	for i, c := range candidates {
		fn, ok := p.Functions[c.ID]
		if !ok {
			return false
		}
		sig := make([]string, len(fn.Params))
		for j, param := range fn.Params {
			sig[j] = param.Type.Name
		}
		if i == 0 {
			first = sig
			continue
		}
		if len(sig) != len(first) {
			return false
		}
		for j := range sig {
			if sig[j] != first[j] {
				return false
			}
		}
	}
	return true
}
