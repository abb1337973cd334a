package ide

import (
	"strings"

	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

// renderType formats a type annotation the way it would read in source:
// mappings and arrays recurse into their element/value types, and a
// memory/storage/calldata location is appended when present.
func renderType(t syntax.TypeExpr) string {
	var s string
	switch {
	case t.IsMapping:
		s = "mapping(" + renderType(*t.KeyType) + " => " + renderType(*t.ValType) + ")"
	case t.IsArray:
		elem := t.Name
		if t.ValType != nil {
			elem = renderType(*t.ValType)
		}
		s = elem + "[]"
	default:
		s = t.Name
	}
	if t.Location != "" {
		s += " " + t.Location
	}
	return s
}

func renderParams(params []syntax.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = renderType(p.Type)
		if p.Name != "" {
			parts[i] += " " + p.Name
		}
	}
	return strings.Join(parts, ", ")
}

func visibilityString(v syntax.Visibility) string {
	switch v {
	case syntax.VisPublic:
		return "public"
	case syntax.VisPrivate:
		return "private"
	case syntax.VisInternal:
		return "internal"
	case syntax.VisExternal:
		return "external"
	default:
		return ""
	}
}

// functionSignature renders a function/modifier declaration's label the
// way solc itself echoes a signature in a compiler error: name, params,
// visibility/mutability, and a returns clause if present. Constructor,
// fallback, and receive use their keyword in place of a name.
func functionSignature(fn *syntax.FunctionDecl) string {
	var b strings.Builder
	if fn.IsModifier {
		b.WriteString("modifier ")
	} else {
		b.WriteString("function ")
	}
	switch {
	case fn.IsConstructor:
		b.WriteString("constructor")
	case fn.IsFallback:
		b.WriteString("fallback")
	case fn.IsReceive:
		b.WriteString("receive")
	default:
		b.WriteString(fn.Name)
	}
	b.WriteString("(")
	b.WriteString(renderParams(fn.Params))
	b.WriteString(")")
	if vis := visibilityString(fn.Visibility); vis != "" {
		b.WriteString(" " + vis)
	}
	if fn.Mutability != "" {
		b.WriteString(" " + fn.Mutability)
	}
	if fn.Virtual {
		b.WriteString(" virtual")
	}
	if fn.HasOverride {
		b.WriteString(" override")
	}
	if len(fn.Returns) > 0 {
		b.WriteString(" returns (" + renderParams(fn.Returns) + ")")
	}
	return b.String()
}

func variableSignature(name string, t syntax.TypeExpr, vis syntax.Visibility) string {
	s := renderType(t) + " "
	if v := visibilityString(vis); v != "" {
		s += v + " "
	}
	return s + name
}

// signatureLabel renders d's hover/signature-help label: the one-line
// declaration form used as the code-fenced header.
func signatureLabel(d decl) string {
	switch {
	case d.Fn != nil:
		return functionSignature(d.Fn)
	case d.Var != nil:
		vis := d.Var.Visibility
		return variableSignature(d.Var.Name, d.Var.Type, vis)
	case d.Contract != nil:
		return contractKindWord(d.Contract.Kind) + " " + d.Contract.Name
	case d.Struct != nil:
		return "struct " + d.Struct.Name
	case d.Enum != nil:
		return "enum " + d.Enum.Name
	case d.Udvt != nil:
		return "type " + d.Udvt.Name + " is " + renderType(d.Udvt.Underlying)
	default:
		return d.Name
	}
}

func contractKindWord(k syntax.ContractKind) string {
	switch k {
	case syntax.KInterface:
		return "interface"
	case syntax.KLibrary:
		return "library"
	default:
		return "contract"
	}
}
