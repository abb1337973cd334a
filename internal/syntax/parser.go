package syntax

import (
	"strings"

	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

var elementaryTypes = map[string]bool{
	"address": true, "bool": true, "string": true, "bytes": true,
	"fixed": true, "ufixed": true,
}

// IsElementaryType reports whether name is a built-in Solidity value
// type (address, bool, string, bytes, bare fixed/ufixed, or a sized
// uintN/intN/bytesN) rather than a user-declared type needing
// symbol resolution.
func IsElementaryType(name string) bool {
	if elementaryTypes[name] {
		return true
	}
	if strings.HasPrefix(name, "uint") || strings.HasPrefix(name, "int") {
		rest := strings.TrimPrefix(strings.TrimPrefix(name, "uint"), "int")
		if rest == "" {
			return true
		}
		for _, c := range rest {
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	}
	if strings.HasPrefix(name, "bytes") && len(name) > 5 {
		rest := name[5:]
		for _, c := range rest {
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	}
	return false
}

// snapshot captures enough parser state to backtrack a speculative parse.
type snapshot struct {
	pos int
	tok Token
}

// Parser is a hand-written recursive-descent parser over the Solidity
// subset described in this package's doc comment. It never panics on
// malformed input: on an unexpected token it records a SyntaxError and
// resynchronizes at the next statement/declaration boundary.
type Parser struct {
	scanner *Scanner
	src     []byte
	tok     Token
	errors  []SyntaxError
	docs    []Comment
}

// NewParser returns a Parser over src.
func NewParser(src []byte) *Parser {
	p := &Parser{scanner: NewScanner(src), src: src}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.docs = append(p.docs, p.scanner.TakeComments()...)
	p.tok = p.scanner.Next()
}

func (p *Parser) takeDocComments() []Comment {
	var out []Comment
	for _, c := range p.docs {
		if c.NatSpec {
			out = append(out, c)
		}
	}
	p.docs = nil
	return out
}

func (p *Parser) errorf(msg string) {
	p.errors = append(p.errors, SyntaxError{Message: msg, Range: p.tok.Range})
}

func (p *Parser) expect(k TokenKind) bool {
	if p.tok.Kind == k {
		p.advance()
		return true
	}
	p.errorf("unexpected token")
	return false
}

func (p *Parser) snap() snapshot     { return snapshot{pos: p.scanner.pos, tok: p.tok} }
func (p *Parser) restore(s snapshot) { p.scanner.pos = s.pos; p.tok = s.tok }

// ParseFile parses a complete source file, recovering from errors at
// top-level declaration boundaries so one bad construct never prevents
// the rest of the file from contributing a DefMap.
func (p *Parser) ParseFile() *File {
	f := &File{Range: text.Range{Start: 0, End: len(p.src)}}
	for p.tok.Kind != TokEOF {
		switch p.tok.Kind {
		case TokPragma:
			f.Pragmas = append(f.Pragmas, p.parsePragma())
		case TokImport:
			f.Imports = append(f.Imports, p.parseImport())
		case TokContract, TokInterface, TokLibrary:
			f.Contracts = append(f.Contracts, p.parseContract())
		case TokStruct:
			f.Structs = append(f.Structs, p.parseStruct())
		case TokEnum:
			f.Enums = append(f.Enums, p.parseEnum())
		case TokError:
			f.Errors = append(f.Errors, p.parseErrorDecl())
		case TokType:
			f.Udvts = append(f.Udvts, p.parseUdvt())
		case TokFunction:
			f.Functions = append(f.Functions, p.parseFunctionLike())
		case TokUsing:
			p.parseUsingFor() // file-level using-for is parsed and discarded
		default:
			p.errorf("unexpected top-level token")
			p.advance()
		}
	}
	f.Comments = p.scanner.pendingComments
	f.SyntaxErrors = p.errors
	return f
}

func (p *Parser) parsePragma() *Pragma {
	start := p.tok.Range.Start
	p.advance() // "pragma"
	var name strings.Builder
	for p.tok.Kind == TokIdent && p.tok.Text != "" {
		name.WriteString(p.tok.Text)
		p.advance()
		if p.tok.Kind != TokIdent && p.tok.Kind != TokDot {
			break
		}
	}
	var val strings.Builder
	for p.tok.Kind != TokSemi && p.tok.Kind != TokEOF {
		val.WriteString(p.tok.Text)
		p.advance()
	}
	end := p.tok.Range.End
	p.expect(TokSemi)
	return &Pragma{Range: text.Range{Start: start, End: end}, Name: name.String(), Value: val.String()}
}

func (p *Parser) parseImport() *ImportDecl {
	start := p.tok.Range.Start
	p.advance() // "import"
	decl := &ImportDecl{}

	switch {
	case p.tok.Kind == TokString:
		decl.PathText = unquote(p.tok.Text)
		decl.PathRange = p.tok.Range
		p.advance()
		if p.tok.Kind == TokAs {
			p.advance()
			decl.Kind = ImportSourceAlias
			if p.tok.Kind == TokIdent {
				decl.Qualifier = p.tok.Text
				p.advance()
			}
		} else {
			decl.Kind = ImportPlain
		}

	case p.tok.Kind == TokStar:
		p.advance()
		decl.Kind = ImportGlob
		if p.tok.Kind == TokAs {
			p.advance()
			if p.tok.Kind == TokIdent {
				decl.Qualifier = p.tok.Text
				p.advance()
			}
		}
		if p.tok.Kind == TokFrom {
			p.advance()
		}
		if p.tok.Kind == TokString {
			decl.PathText = unquote(p.tok.Text)
			decl.PathRange = p.tok.Range
			p.advance()
		}

	case p.tok.Kind == TokLBrace:
		decl.Kind = ImportAliases
		p.advance()
		for p.tok.Kind != TokRBrace && p.tok.Kind != TokEOF {
			if p.tok.Kind != TokIdent {
				p.advance()
				continue
			}
			al := ImportAlias{Name: p.tok.Text, Range: p.tok.Range}
			p.advance()
			if p.tok.Kind == TokAs {
				p.advance()
				if p.tok.Kind == TokIdent {
					al.Local = p.tok.Text
					p.advance()
				}
			}
			decl.Aliases = append(decl.Aliases, al)
			if p.tok.Kind == TokComma {
				p.advance()
			}
		}
		p.expect(TokRBrace)
		if p.tok.Kind == TokFrom {
			p.advance()
		}
		if p.tok.Kind == TokString {
			decl.PathText = unquote(p.tok.Text)
			decl.PathRange = p.tok.Range
			p.advance()
		}
	}

	end := p.tok.Range.End
	p.expect(TokSemi)
	decl.Range = text.Range{Start: start, End: end}
	return decl
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func (p *Parser) parseBaseList() []BaseSpec {
	var bases []BaseSpec
	if p.tok.Kind != TokIs {
		return bases
	}
	p.advance()
	for {
		if p.tok.Kind != TokIdent {
			break
		}
		bases = append(bases, BaseSpec{Name: p.tok.Text, Range: p.tok.Range})
		p.advance()
		if p.tok.Kind == TokLParen {
			p.skipParenGroup()
		}
		if p.tok.Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	return bases
}

func (p *Parser) skipParenGroup() {
	depth := 0
	for {
		switch p.tok.Kind {
		case TokLParen:
			depth++
		case TokRParen:
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		case TokEOF:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseContract() *ContractDecl {
	start := p.tok.Range.Start
	comments := p.takeDocComments()
	var kind ContractKind
	switch p.tok.Kind {
	case TokInterface:
		kind = KInterface
	case TokLibrary:
		kind = KLibrary
	default:
		kind = KContract
	}
	p.advance()
	c := &ContractDecl{Range: text.Range{Start: start, End: start}, Kind: kind, Comments: comments}
	if p.tok.Kind == TokIdent {
		c.Name = p.tok.Text
		c.NameRange = p.tok.Range
		p.advance()
	} else {
		p.errorf("expected contract name")
	}
	c.Bases = p.parseBaseList()
	bodyStart := p.tok.Range.Start
	if !p.expect(TokLBrace) {
		c.Range.End = p.tok.Range.End
		return c
	}
	for p.tok.Kind != TokRBrace && p.tok.Kind != TokEOF {
		switch p.tok.Kind {
		case TokFunction, TokConstructor, TokFallback, TokReceive:
			c.Functions = append(c.Functions, p.parseFunctionLike())
		case TokModifier:
			c.Modifiers = append(c.Modifiers, p.parseFunctionLike())
		case TokStruct:
			c.Structs = append(c.Structs, p.parseStruct())
		case TokEnum:
			c.Enums = append(c.Enums, p.parseEnum())
		case TokEvent:
			c.Events = append(c.Events, p.parseEvent())
		case TokError:
			c.Errors = append(c.Errors, p.parseErrorDecl())
		case TokType:
			c.Udvts = append(c.Udvts, p.parseUdvt())
		case TokUsing:
			if uf := p.parseUsingFor(); uf != nil {
				c.UsingFor = append(c.UsingFor, uf)
			}
		default:
			if v := p.tryParseStateVar(); v != nil {
				c.Variables = append(c.Variables, v)
			} else {
				p.errorf("unexpected contract member")
				p.advance()
			}
		}
	}
	end := p.tok.Range.End
	p.expect(TokRBrace)
	c.Range.End = end
	c.BodyRange = text.Range{Start: bodyStart, End: end}
	return c
}

func (p *Parser) tryParseStateVar() *VarDecl {
	save := p.snap()
	comments := p.takeDocComments()
	typ, ok := p.tryParseTypeExpr()
	if !ok || p.tok.Kind != TokIdent {
		for _, c := range comments {
			p.docs = append(p.docs, c)
		}
		p.restore(save)
		return nil
	}
	v := &VarDecl{Type: typ}
	for {
		switch p.tok.Kind {
		case TokPublic:
			v.Visibility = VisPublic
			p.advance()
		case TokPrivate:
			v.Visibility = VisPrivate
			p.advance()
		case TokInternal:
			v.Visibility = VisInternal
			p.advance()
		case TokConstant:
			v.Constant = true
			p.advance()
		case TokImmutable:
			v.Immutable = true
			p.advance()
		case TokIdent:
			v.Name = p.tok.Text
			v.NameRange = p.tok.Range
			p.advance()
		default:
			goto done
		}
		if v.Name != "" {
			break
		}
	}
done:
	if v.Name == "" {
		p.restore(save)
		return nil
	}
	start := v.NameRange.Start
	if p.tok.Kind == TokAssign {
		p.advance()
		v.Init = p.parseExpr()
	}
	end := p.tok.Range.End
	p.expect(TokSemi)
	v.Range = text.Range{Start: start, End: end}
	v.Comments = comments
	return v
}

func (p *Parser) parseStruct() *StructDecl {
	start := p.tok.Range.Start
	comments := p.takeDocComments()
	p.advance()
	s := &StructDecl{Comments: comments}
	if p.tok.Kind == TokIdent {
		s.Name = p.tok.Text
		s.NameRange = p.tok.Range
		p.advance()
	}
	p.expect(TokLBrace)
	for p.tok.Kind != TokRBrace && p.tok.Kind != TokEOF {
		typ, ok := p.tryParseTypeExpr()
		if !ok {
			p.advance()
			continue
		}
		field := Param{Type: typ}
		if p.tok.Kind == TokIdent {
			field.Name = p.tok.Text
			field.Range = p.tok.Range
			p.advance()
		}
		s.Fields = append(s.Fields, field)
		p.expect(TokSemi)
	}
	end := p.tok.Range.End
	p.expect(TokRBrace)
	s.Range = text.Range{Start: start, End: end}
	return s
}

func (p *Parser) parseEnum() *EnumDecl {
	start := p.tok.Range.Start
	comments := p.takeDocComments()
	p.advance()
	e := &EnumDecl{Comments: comments}
	if p.tok.Kind == TokIdent {
		e.Name = p.tok.Text
		e.NameRange = p.tok.Range
		p.advance()
	}
	p.expect(TokLBrace)
	for p.tok.Kind != TokRBrace && p.tok.Kind != TokEOF {
		if p.tok.Kind == TokIdent {
			e.Members = append(e.Members, p.tok.Text)
			p.advance()
		}
		if p.tok.Kind == TokComma {
			p.advance()
		}
	}
	end := p.tok.Range.End
	p.expect(TokRBrace)
	e.Range = text.Range{Start: start, End: end}
	return e
}

func (p *Parser) parseParamList() []Param {
	var params []Param
	p.expect(TokLParen)
	for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
		typ, ok := p.tryParseTypeExpr()
		if !ok {
			p.advance()
			continue
		}
		param := Param{Type: typ, Range: typ.Range}
		for p.tok.Kind == TokMemory || p.tok.Kind == TokStorage || p.tok.Kind == TokCalldata {
			param.Type.Location = p.tok.Text
			p.advance()
		}
		if p.tok.Kind == TokIdent {
			param.Name = p.tok.Text
			param.Range = p.tok.Range
			p.advance()
		}
		params = append(params, param)
		if p.tok.Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	p.expect(TokRParen)
	return params
}

func (p *Parser) parseEvent() *EventDecl {
	start := p.tok.Range.Start
	comments := p.takeDocComments()
	p.advance()
	ev := &EventDecl{Comments: comments}
	if p.tok.Kind == TokIdent {
		ev.Name = p.tok.Text
		ev.NameRange = p.tok.Range
		p.advance()
	}
	ev.Params = p.parseEventParamList()
	// "anonymous" keyword
	if p.tok.Kind == TokIdent && p.tok.Text == "anonymous" {
		p.advance()
	}
	end := p.tok.Range.End
	p.expect(TokSemi)
	ev.Range = text.Range{Start: start, End: end}
	return ev
}

func (p *Parser) parseEventParamList() []Param {
	var params []Param
	p.expect(TokLParen)
	for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
		typ, ok := p.tryParseTypeExpr()
		if !ok {
			p.advance()
			continue
		}
		param := Param{Type: typ, Range: typ.Range}
		if p.tok.Kind == TokIdent && p.tok.Text == "indexed" {
			p.advance()
		}
		if p.tok.Kind == TokIdent {
			param.Name = p.tok.Text
			param.Range = p.tok.Range
			p.advance()
		}
		params = append(params, param)
		if p.tok.Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	p.expect(TokRParen)
	return params
}

func (p *Parser) parseErrorDecl() *ErrorDecl {
	start := p.tok.Range.Start
	comments := p.takeDocComments()
	p.advance()
	e := &ErrorDecl{Comments: comments}
	if p.tok.Kind == TokIdent {
		e.Name = p.tok.Text
		e.NameRange = p.tok.Range
		p.advance()
	}
	e.Params = p.parseParamList()
	end := p.tok.Range.End
	p.expect(TokSemi)
	e.Range = text.Range{Start: start, End: end}
	return e
}

func (p *Parser) parseUdvt() *UdvtDecl {
	start := p.tok.Range.Start
	comments := p.takeDocComments()
	p.advance() // "type"
	u := &UdvtDecl{Comments: comments}
	if p.tok.Kind == TokIdent {
		u.Name = p.tok.Text
		u.NameRange = p.tok.Range
		p.advance()
	}
	if p.tok.Kind == TokIs {
		p.advance()
		typ, _ := p.tryParseTypeExpr()
		u.Underlying = typ
	}
	end := p.tok.Range.End
	p.expect(TokSemi)
	u.Range = text.Range{Start: start, End: end}
	return u
}

func (p *Parser) parseUsingFor() *UsingForDecl {
	start := p.tok.Range.Start
	p.advance() // "using"
	uf := &UsingForDecl{}
	if p.tok.Kind == TokLBrace {
		p.advance()
		for p.tok.Kind != TokRBrace && p.tok.Kind != TokEOF {
			if p.tok.Kind == TokIdent {
				uf.LibOrFuncs = append(uf.LibOrFuncs, p.tok.Text)
				p.advance()
			}
			if p.tok.Kind == TokComma {
				p.advance()
			}
		}
		p.expect(TokRBrace)
	} else if p.tok.Kind == TokIdent {
		uf.LibOrFuncs = append(uf.LibOrFuncs, p.tok.Text)
		p.advance()
	}
	if p.tok.Kind == TokFor {
		p.advance()
		if p.tok.Kind == TokStar {
			p.advance()
		} else if typ, ok := p.tryParseTypeExpr(); ok {
			uf.Target = &typ
		}
	}
	if p.tok.Kind == TokIdent && p.tok.Text == "global" {
		uf.Global = true
		p.advance()
	}
	end := p.tok.Range.End
	p.expect(TokSemi)
	uf.Range = text.Range{Start: start, End: end}
	return uf
}

// tryParseTypeExpr speculatively parses a type expression. It returns
// ok=false (and leaves the scanner position unspecified — callers that
// need clean backtracking snapshot before calling) if the current token
// cannot start a type.
func (p *Parser) tryParseTypeExpr() (TypeExpr, bool) {
	start := p.tok.Range.Start
	switch {
	case p.tok.Kind == TokIdent:
		name := p.tok.Text
		end := p.tok.Range.End
		p.advance()
		// qualified user type: Lib.Type
		for p.tok.Kind == TokDot {
			p.advance()
			if p.tok.Kind == TokIdent {
				name = name + "." + p.tok.Text
				end = p.tok.Range.End
				p.advance()
			}
		}
		if name == "address" && p.tok.Kind == TokPayable {
			end = p.tok.Range.End
			p.advance()
		}
		t := TypeExpr{Range: text.Range{Start: start, End: end}, Name: name}
		return p.parseTypeSuffix(t)
	case p.tok.Kind == TokMapping:
		return p.parseMappingType()
	default:
		return TypeExpr{}, false
	}
}

func (p *Parser) parseTypeSuffix(t TypeExpr) (TypeExpr, bool) {
	for p.tok.Kind == TokLBracket {
		p.advance()
		if p.tok.Kind != TokRBracket {
			// fixed-size array: skip the length expression.
			p.parseExpr()
		}
		if !p.expect(TokRBracket) {
			break
		}
		elem := t
		t = TypeExpr{Range: text.Range{Start: t.Range.Start, End: p.tok.Range.Start}, IsArray: true, ValType: &elem}
	}
	return t, true
}

func (p *Parser) parseMappingType() (TypeExpr, bool) {
	start := p.tok.Range.Start
	p.advance() // "mapping"
	p.expect(TokLParen)
	key, _ := p.tryParseTypeExpr()
	// optional key name (Solidity >=0.8.18)
	if p.tok.Kind == TokIdent {
		p.advance()
	}
	p.expect(TokArrow)
	val, _ := p.tryParseTypeExpr()
	if p.tok.Kind == TokIdent {
		p.advance()
	}
	end := p.tok.Range.End
	p.expect(TokRParen)
	t := TypeExpr{Range: text.Range{Start: start, End: end}, IsMapping: true, KeyType: &key, ValType: &val}
	return p.parseTypeSuffix(t)
}

func (p *Parser) parseFunctionLike() *FunctionDecl {
	comments := p.takeDocComments()
	start := p.tok.Range.Start
	fn := &FunctionDecl{Comments: comments}
	switch p.tok.Kind {
	case TokModifier:
		fn.IsModifier = true
	case TokConstructor:
		fn.IsConstructor = true
	case TokFallback:
		fn.IsFallback = true
	case TokReceive:
		fn.IsReceive = true
	}
	p.advance()
	if !fn.IsConstructor && !fn.IsFallback && !fn.IsReceive {
		if p.tok.Kind == TokIdent {
			fn.Name = p.tok.Text
			fn.NameRange = p.tok.Range
			p.advance()
		}
	}
	fn.Params = p.parseParamList()

loop:
	for {
		switch p.tok.Kind {
		case TokPublic:
			fn.Visibility = VisPublic
			p.advance()
		case TokPrivate:
			fn.Visibility = VisPrivate
			p.advance()
		case TokInternal:
			fn.Visibility = VisInternal
			p.advance()
		case TokExternal:
			fn.Visibility = VisExternal
			p.advance()
		case TokView:
			fn.Mutability = "view"
			p.advance()
		case TokPure:
			fn.Mutability = "pure"
			p.advance()
		case TokPayable:
			fn.Mutability = "payable"
			p.advance()
		case TokVirtual:
			fn.Virtual = true
			p.advance()
		case TokOverride:
			fn.HasOverride = true
			p.advance()
			if p.tok.Kind == TokLParen {
				p.advance()
				for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
					if p.tok.Kind == TokIdent {
						fn.Overrides = append(fn.Overrides, p.tok.Text)
						p.advance()
					}
					if p.tok.Kind == TokComma {
						p.advance()
					}
				}
				p.expect(TokRParen)
			}
		case TokReturns:
			p.advance()
			fn.Returns = p.parseParamList()
		case TokIdent:
			fn.Modifiers = append(fn.Modifiers, p.tok.Text)
			p.advance()
			if p.tok.Kind == TokLParen {
				p.skipParenGroup()
			}
		default:
			break loop
		}
	}

	switch p.tok.Kind {
	case TokLBrace:
		fn.Body = p.parseBlock()
	case TokSemi:
		p.advance()
	default:
		p.errorf("expected function body or ;")
	}
	fn.Range = text.Range{Start: start, End: p.tok.Range.Start}
	return fn
}

func (p *Parser) parseBlock() *Block {
	start := p.tok.Range.Start
	p.expect(TokLBrace)
	b := &Block{}
	for p.tok.Kind != TokRBrace && p.tok.Kind != TokEOF {
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	end := p.tok.Range.End
	p.expect(TokRBrace)
	b.Range = text.Range{Start: start, End: end}
	return b
}

func (p *Parser) parseStmt() Stmt {
	start := p.tok.Range.Start
	switch p.tok.Kind {
	case TokLBrace:
		b := p.parseBlock()
		return &BlockStmt{Range: b.Range, Block: b}
	case TokIf:
		return p.parseIf()
	case TokFor:
		return p.parseFor()
	case TokWhile:
		return p.parseWhile()
	case TokReturn:
		p.advance()
		var x Expr
		if p.tok.Kind != TokSemi {
			x = p.parseExpr()
		}
		end := p.tok.Range.End
		p.expect(TokSemi)
		return &ReturnStmt{Range: text.Range{Start: start, End: end}, X: x}
	case TokEmit:
		p.advance()
		x := p.parseExpr()
		end := p.tok.Range.End
		p.expect(TokSemi)
		return &EmitStmt{Range: text.Range{Start: start, End: end}, X: x}
	case TokRevert:
		p.advance()
		var x Expr
		if p.tok.Kind != TokSemi {
			x = p.parseExpr()
		}
		end := p.tok.Range.End
		p.expect(TokSemi)
		return &RevertStmt{Range: text.Range{Start: start, End: end}, X: x}
	case TokTry:
		return p.parseTry()
	case TokLParen:
		if s := p.tryParseTupleDecl(start); s != nil {
			return s
		}
		fallthrough
	default:
		if s := p.tryParseDeclStmt(start); s != nil {
			return s
		}
		x := p.parseExpr()
		end := p.tok.Range.End
		p.expect(TokSemi)
		return &ExprStmt{Range: text.Range{Start: start, End: end}, X: x}
	}
}

func (p *Parser) tryParseDeclStmt(start int) Stmt {
	save := p.snap()
	typ, ok := p.tryParseTypeExpr()
	if !ok {
		p.restore(save)
		return nil
	}
	for p.tok.Kind == TokMemory || p.tok.Kind == TokStorage || p.tok.Kind == TokCalldata {
		typ.Location = p.tok.Text
		p.advance()
	}
	if p.tok.Kind != TokIdent {
		p.restore(save)
		return nil
	}
	v := &VarDecl{Type: typ, Name: p.tok.Text, NameRange: p.tok.Range}
	p.advance()
	if p.tok.Kind == TokAssign {
		p.advance()
		v.Init = p.parseExpr()
	}
	end := p.tok.Range.End
	p.expect(TokSemi)
	v.Range = text.Range{Start: start, End: end}
	return &DeclStmt{Range: v.Range, Decl: v}
}

func (p *Parser) tryParseTupleDecl(start int) Stmt {
	save := p.snap()
	p.advance() // "("
	var decls []*VarDecl
	sawType := false
	for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
		if p.tok.Kind == TokComma {
			decls = append(decls, nil)
			p.advance()
			continue
		}
		typ, ok := p.tryParseTypeExpr()
		if !ok {
			p.restore(save)
			return nil
		}
		for p.tok.Kind == TokMemory || p.tok.Kind == TokStorage || p.tok.Kind == TokCalldata {
			typ.Location = p.tok.Text
			p.advance()
		}
		if p.tok.Kind != TokIdent {
			p.restore(save)
			return nil
		}
		sawType = true
		decls = append(decls, &VarDecl{Type: typ, Name: p.tok.Text, NameRange: p.tok.Range})
		p.advance()
		if p.tok.Kind == TokComma {
			p.advance()
		}
	}
	if !p.expect(TokRParen) || !sawType || p.tok.Kind != TokAssign {
		p.restore(save)
		return nil
	}
	p.advance()
	init := p.parseExpr()
	end := p.tok.Range.End
	p.expect(TokSemi)
	return &TupleDeclStmt{Range: text.Range{Start: start, End: end}, Decls: decls, Init: init}
}

func (p *Parser) parseIf() Stmt {
	start := p.tok.Range.Start
	p.advance()
	p.expect(TokLParen)
	cond := p.parseExpr()
	p.expect(TokRParen)
	then := p.parseStmt()
	var els Stmt
	if p.tok.Kind == TokElse {
		p.advance()
		els = p.parseStmt()
	}
	return &IfStmt{Range: text.Range{Start: start, End: p.tok.Range.Start}, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseFor() Stmt {
	start := p.tok.Range.Start
	p.advance()
	p.expect(TokLParen)
	var init Stmt
	if p.tok.Kind != TokSemi {
		init = p.parseStmt()
	} else {
		p.advance()
	}
	var cond Expr
	if p.tok.Kind != TokSemi {
		cond = p.parseExpr()
	}
	p.expect(TokSemi)
	var post Expr
	if p.tok.Kind != TokRParen {
		post = p.parseExpr()
	}
	p.expect(TokRParen)
	body := p.parseStmt()
	return &ForStmt{Range: text.Range{Start: start, End: p.tok.Range.Start}, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseWhile() Stmt {
	start := p.tok.Range.Start
	p.advance()
	p.expect(TokLParen)
	cond := p.parseExpr()
	p.expect(TokRParen)
	body := p.parseStmt()
	return &WhileStmt{Range: text.Range{Start: start, End: p.tok.Range.Start}, Cond: cond, Body: body}
}

func (p *Parser) parseTry() Stmt {
	start := p.tok.Range.Start
	p.advance()
	call := p.parseExpr()
	t := &TryStmt{Call: call}
	if p.tok.Kind == TokReturns {
		p.advance()
		t.Returns = p.parseParamList()
	}
	t.Body = p.parseBlock()
	for p.tok.Kind == TokCatch {
		p.advance()
		var cc CatchClause
		ccStart := p.tok.Range.Start
		if p.tok.Kind == TokIdent {
			cc.Name = p.tok.Text
			p.advance()
		}
		if p.tok.Kind == TokLParen {
			cc.Params = p.parseParamList()
		}
		cc.Body = p.parseBlock()
		cc.Range = text.Range{Start: ccStart, End: p.tok.Range.Start}
		t.Catches = append(t.Catches, cc)
	}
	t.Range = text.Range{Start: start, End: p.tok.Range.Start}
	return t
}

// --- Expressions, lowest to highest precedence ---

func (p *Parser) parseExpr() Expr { return p.parseAssign() }

func (p *Parser) parseAssign() Expr {
	x := p.parseTernary()
	if p.tok.Kind == TokAssign || p.tok.Kind == TokAssignOp {
		op := p.tok.Text
		p.advance()
		y := p.parseAssign()
		return &BinaryExpr{Range: spanOf(x, y), Op: op, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseTernary() Expr {
	cond := p.parseOr()
	if p.tok.Kind == TokQuestion {
		p.advance()
		then := p.parseExpr()
		p.expect(TokColon)
		els := p.parseExpr()
		return &TernaryExpr{Range: spanOf(cond, els), Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *Parser) parseOr() Expr {
	x := p.parseAnd()
	for p.tok.Kind == TokOrOr {
		op := p.tok.Text
		p.advance()
		y := p.parseAnd()
		x = &BinaryExpr{Range: spanOf(x, y), Op: op, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseAnd() Expr {
	x := p.parseEquality()
	for p.tok.Kind == TokAndAnd {
		op := p.tok.Text
		p.advance()
		y := p.parseEquality()
		x = &BinaryExpr{Range: spanOf(x, y), Op: op, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseEquality() Expr {
	x := p.parseRelational()
	for p.tok.Kind == TokEq || p.tok.Kind == TokNeq {
		op := p.tok.Text
		p.advance()
		y := p.parseRelational()
		x = &BinaryExpr{Range: spanOf(x, y), Op: op, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseRelational() Expr {
	x := p.parseAdditive()
	for p.tok.Kind == TokLt || p.tok.Kind == TokLe || p.tok.Kind == TokGt || p.tok.Kind == TokGe {
		op := p.tok.Text
		p.advance()
		y := p.parseAdditive()
		x = &BinaryExpr{Range: spanOf(x, y), Op: op, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseAdditive() Expr {
	x := p.parseMultiplicative()
	for p.tok.Kind == TokPlus || p.tok.Kind == TokMinus {
		op := p.tok.Text
		p.advance()
		y := p.parseMultiplicative()
		x = &BinaryExpr{Range: spanOf(x, y), Op: op, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseMultiplicative() Expr {
	x := p.parseUnary()
	for p.tok.Kind == TokStar || p.tok.Kind == TokSlash || p.tok.Kind == TokPercent {
		op := p.tok.Text
		p.advance()
		y := p.parseUnary()
		x = &BinaryExpr{Range: spanOf(x, y), Op: op, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseUnary() Expr {
	switch p.tok.Kind {
	case TokBang, TokTilde, TokMinus, TokPlus:
		start := p.tok.Range.Start
		op := p.tok.Text
		p.advance()
		x := p.parseUnary()
		return &UnaryExpr{Range: text.Range{Start: start, End: x.Span().End}, Op: op, X: x}
	case TokDelete:
		start := p.tok.Range.Start
		p.advance()
		x := p.parseUnary()
		return &DeleteExpr{Range: text.Range{Start: start, End: x.Span().End}, X: x}
	case TokNew:
		start := p.tok.Range.Start
		p.advance()
		typ, _ := p.tryParseTypeExpr()
		return &NewExpr{Range: text.Range{Start: start, End: typ.Range.End}, Type: typ}
	case TokPayable:
		start := p.tok.Range.Start
		p.advance()
		p.expect(TokLParen)
		x := p.parseExpr()
		end := p.tok.Range.End
		p.expect(TokRParen)
		return &PayableExpr{Range: text.Range{Start: start, End: end}, X: x}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() Expr {
	x := p.parsePrimary()
	for {
		switch p.tok.Kind {
		case TokDot:
			p.advance()
			nameRange := p.tok.Range
			name := p.tok.Text
			if p.tok.Kind == TokIdent {
				p.advance()
			}
			x = &MemberAccess{Range: text.Range{Start: x.Span().Start, End: nameRange.End}, Base: x, Name: name, NameRange: nameRange}
		case TokLBracket:
			p.advance()
			var idx Expr
			if p.tok.Kind != TokRBracket {
				idx = p.parseExpr()
			}
			end := p.tok.Range.End
			p.expect(TokRBracket)
			x = &IndexAccess{Range: text.Range{Start: x.Span().Start, End: end}, Base: x, Index: idx}
		case TokLParen:
			args, named := p.parseArgList()
			end := p.tok.Range.End
			p.expect(TokRParen)
			x = &CallExpr{Range: text.Range{Start: x.Span().Start, End: end}, Callee: x, Args: args, Named: named}
		case TokLBrace:
			if !looksLikeCallOptions(p) {
				return x
			}
			opts := p.parseCallOptionsBody()
			end := p.tok.Range.End
			callOpts := &CallOptions{Range: text.Range{Start: x.Span().Start, End: end}, Callee: x, Options: opts}
			if p.tok.Kind == TokLParen {
				args, named := p.parseArgList()
				end = p.tok.Range.End
				p.expect(TokRParen)
				x = &CallExpr{Range: text.Range{Start: x.Span().Start, End: end}, Callee: callOpts, Args: args, Named: named}
			} else {
				x = callOpts
			}
		default:
			return x
		}
	}
}

// looksLikeCallOptions distinguishes `f{gas: 1}(...)` from an unrelated
// following block (which never legally follows an expression at
// statement-postfix position in this grammar subset, so this is a light
// heuristic rather than full lookahead).
func looksLikeCallOptions(p *Parser) bool {
	return p.tok.Kind == TokLBrace
}

func (p *Parser) parseCallOptionsBody() map[string]Expr {
	opts := map[string]Expr{}
	p.advance() // "{"
	for p.tok.Kind != TokRBrace && p.tok.Kind != TokEOF {
		if p.tok.Kind != TokIdent {
			p.advance()
			continue
		}
		key := p.tok.Text
		p.advance()
		p.expect(TokColon)
		opts[key] = p.parseExpr()
		if p.tok.Kind == TokComma {
			p.advance()
		}
	}
	p.expect(TokRBrace)
	return opts
}

func (p *Parser) parseArgList() ([]Expr, []string) {
	var args []Expr
	var named []string
	p.expect(TokLParen)
	if p.tok.Kind == TokLBrace {
		// named-argument call form: f({a: 1, b: 2})
		p.advance()
		for p.tok.Kind != TokRBrace && p.tok.Kind != TokEOF {
			if p.tok.Kind != TokIdent {
				p.advance()
				continue
			}
			named = append(named, p.tok.Text)
			p.advance()
			p.expect(TokColon)
			args = append(args, p.parseExpr())
			if p.tok.Kind == TokComma {
				p.advance()
			}
		}
		p.expect(TokRBrace)
		return args, named
	}
	for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
		args = append(args, p.parseExpr())
		named = append(named, "")
		if p.tok.Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	return args, named
}

func (p *Parser) parsePrimary() Expr {
	switch p.tok.Kind {
	case TokIdent:
		id := &Ident{Range: p.tok.Range, Name: p.tok.Text}
		p.advance()
		return id
	case TokThis:
		e := &ThisExpr{Range: p.tok.Range}
		p.advance()
		return e
	case TokSuper:
		e := &SuperExpr{Range: p.tok.Range}
		p.advance()
		return e
	case TokTrue, TokFalse:
		l := &Literal{Range: p.tok.Range, Kind: "bool", Value: p.tok.Text}
		p.advance()
		return l
	case TokNumber:
		l := &Literal{Range: p.tok.Range, Kind: "number", Value: p.tok.Text}
		p.advance()
		return l
	case TokString:
		l := &Literal{Range: p.tok.Range, Kind: "string", Value: p.tok.Text}
		p.advance()
		return l
	case TokLParen:
		start := p.tok.Range.Start
		p.advance()
		var elems []Expr
		for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
			if p.tok.Kind == TokComma {
				elems = append(elems, nil)
				p.advance()
				continue
			}
			elems = append(elems, p.parseExpr())
			if p.tok.Kind == TokComma {
				p.advance()
			}
		}
		end := p.tok.Range.End
		p.expect(TokRParen)
		if len(elems) == 1 {
			return elems[0]
		}
		return &TupleExpr{Range: text.Range{Start: start, End: end}, Elems: elems}
	default:
		// Unknown primary: record an error and return a zero-width
		// placeholder so callers can keep walking without nil checks
		// everywhere.
		r := p.tok.Range
		p.errorf("expected expression")
		if p.tok.Kind != TokEOF {
			p.advance()
		}
		return &Literal{Range: r, Kind: "invalid", Value: ""}
	}
}

func spanOf(a, b Expr) text.Range {
	return text.Range{Start: a.Span().Start, End: b.Span().End}
}
