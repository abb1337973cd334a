package syntax

import "github.com/lumosimmo/solidity-analyzer/internal/text"

// File is the root of a parsed Solidity source file.
type File struct {
	Range        text.Range
	Pragmas      []*Pragma
	Imports      []*ImportDecl
	Contracts    []*ContractDecl // contracts, interfaces, libraries
	Structs      []*StructDecl   // free (file-level) structs
	Enums        []*EnumDecl
	Errors       []*ErrorDecl
	Udvts        []*UdvtDecl
	Functions    []*FunctionDecl // free functions
	Comments     []Comment
	SyntaxErrors []SyntaxError
}

// SyntaxError is a recoverable parse error: the parser never panics on
// malformed input, it records the problem and keeps going so the rest of
// the file can still contribute declarations.
type SyntaxError struct {
	Message string
	Range   text.Range
}

// Pragma is a `pragma solidity ...;` directive.
type Pragma struct {
	Range text.Range
	Name  string // "solidity", "abicoder", ...
	Value string // raw text after Name, e.g. "^0.8.0"
}

// ImportItemsKind tags the form of an import's item list.
type ImportItemsKind uint8

const (
	ImportPlain       ImportItemsKind = iota // import "X.sol";
	ImportAliases                            // import {A as B, C} from "X.sol";
	ImportSourceAlias                        // import "X.sol" as Lib;
	ImportGlob                               // import * as Lib from "X.sol"; (alias for source-alias form)
)

// ImportAlias is one entry of an `import {A as B, ...}` list.
type ImportAlias struct {
	Name  string
	Local string // "" if not renamed
	Range text.Range
}

// ImportDecl is one `import` statement.
type ImportDecl struct {
	Range     text.Range
	PathText  string // as written, unresolved
	PathRange text.Range
	Kind      ImportItemsKind
	Aliases   []ImportAlias // populated for ImportAliases
	Qualifier string        // populated for ImportSourceAlias/ImportGlob
}

// Visibility is a declaration's declared visibility.
type Visibility uint8

const (
	VisDefault Visibility = iota
	VisPublic
	VisPrivate
	VisInternal
	VisExternal
)

// ContractKind distinguishes contract/interface/library.
type ContractKind uint8

const (
	KContract ContractKind = iota
	KInterface
	KLibrary
)

// ContractDecl is a contract, interface, or library declaration.
type ContractDecl struct {
	Range     text.Range
	Kind      ContractKind
	Name      string
	NameRange text.Range
	Bases     []BaseSpec
	Functions []*FunctionDecl
	Modifiers []*FunctionDecl // modifiers reuse FunctionDecl with IsModifier set
	Variables []*VarDecl
	Structs   []*StructDecl
	Enums     []*EnumDecl
	Events    []*EventDecl
	Errors    []*ErrorDecl
	Udvts     []*UdvtDecl
	UsingFor  []*UsingForDecl
	Comments  []Comment
	BodyRange text.Range
}

// BaseSpec is one entry of a contract's `is A, B(args)` list.
type BaseSpec struct {
	Name  string
	Range text.Range
}

// Param is a function parameter or return value.
type Param struct {
	Type  TypeExpr
	Name  string // "" for unnamed return values
	Range text.Range
}

// FunctionDecl covers functions, modifiers, constructor, fallback,
// receive. Modifiers are distinguished from functions by IsModifier
// rather than by name, since "modifier" and "function" share every
// other production in the grammar.
type FunctionDecl struct {
	Range         text.Range
	Name          string // "" for constructor/fallback/receive
	NameRange     text.Range
	IsModifier    bool
	IsConstructor bool
	IsFallback    bool
	IsReceive     bool
	Params        []Param
	Returns       []Param
	Visibility    Visibility
	Mutability    string // "", "view", "pure", "payable"
	Virtual       bool
	Overrides     []string // names in override(A, B); nil for a bare `override`, which only HasOverride records
	HasOverride   bool
	Modifiers     []string // modifier invocations applied to this function
	Body          *Block   // nil if unimplemented (interface/abstract)
	Comments      []Comment
}

// VarDecl is a state variable or a local variable declaration.
type VarDecl struct {
	Range      text.Range
	Type       TypeExpr
	Name       string
	NameRange  text.Range
	Visibility Visibility
	Constant   bool
	Immutable  bool
	Init       Expr
	Comments   []Comment
}

// StructDecl is a struct declaration with its fields.
type StructDecl struct {
	Range     text.Range
	Name      string
	NameRange text.Range
	Fields    []Param
	Comments  []Comment
}

// EnumDecl is an enum declaration.
type EnumDecl struct {
	Range     text.Range
	Name      string
	NameRange text.Range
	Members   []string
	Comments  []Comment
}

// EventDecl is an event declaration.
type EventDecl struct {
	Range     text.Range
	Name      string
	NameRange text.Range
	Params    []Param
	Comments  []Comment
}

// ErrorDecl is a custom error declaration.
type ErrorDecl struct {
	Range     text.Range
	Name      string
	NameRange text.Range
	Params    []Param
	Comments  []Comment
}

// UdvtDecl is a user-defined value type: `type X is uint256;`.
type UdvtDecl struct {
	Range      text.Range
	Name       string
	NameRange  text.Range
	Underlying TypeExpr
	Comments   []Comment
}

// UsingForDecl is `using Lib for Type;` or `using {a, b} for Type;`.
type UsingForDecl struct {
	Range      text.Range
	LibOrFuncs []string
	Target     *TypeExpr // nil means `for *`
	Global     bool
}

// TypeExpr names a type reference in an annotation position (parameter
// type, variable type, return type). Kind distinguishes elementary types
// (handled by name alone) from user/custom types that need resolution.
type TypeExpr struct {
	Range     text.Range
	Name      string // elementary ("uint256", "address", "bool", ...) or user type name
	IsArray   bool
	IsMapping bool
	KeyType   *TypeExpr // for mapping(K => V)
	ValType   *TypeExpr // for mapping(K => V) and array element type
	Location  string    // "", "memory", "storage", "calldata"
}

// Block is a `{ ... }` statement block.
type Block struct {
	Range text.Range
	Stmts []Stmt
}

// Stmt is any statement. The concrete set below is the subset the local-
// scopes and resolution algorithms need.
type Stmt interface {
	stmtNode()
	Span() text.Range
}

type ExprStmt struct {
	Range text.Range
	X     Expr
}

type DeclStmt struct {
	Range text.Range
	Decl  *VarDecl
}

type TupleDeclStmt struct {
	Range text.Range
	Decls []*VarDecl // any entry may be nil (skipped slot in `(, , x) = ...`)
	Init  Expr
}

type BlockStmt struct {
	Range text.Range
	Block *Block
}

type IfStmt struct {
	Range text.Range
	Cond  Expr
	Then  Stmt
	Else  Stmt
}

type ForStmt struct {
	Range text.Range
	Init  Stmt
	Cond  Expr
	Post  Expr
	Body  Stmt
}

type WhileStmt struct {
	Range text.Range
	Cond  Expr
	Body  Stmt
}

type ReturnStmt struct {
	Range text.Range
	X     Expr
}

type EmitStmt struct {
	Range text.Range
	X     Expr // call expression
}

type RevertStmt struct {
	Range text.Range
	X     Expr
}

// TryStmt covers `try E returns (...) { } catch (...) { } ...`.
type TryStmt struct {
	Range   text.Range
	Call    Expr
	Returns []Param
	Body    *Block
	Catches []CatchClause
}

type CatchClause struct {
	Range  text.Range
	Name   string // "" for bare catch
	Params []Param
	Body   *Block
}

func (s *ExprStmt) stmtNode()      {}
func (s *DeclStmt) stmtNode()      {}
func (s *TupleDeclStmt) stmtNode() {}
func (s *BlockStmt) stmtNode()     {}
func (s *IfStmt) stmtNode()        {}
func (s *ForStmt) stmtNode()       {}
func (s *WhileStmt) stmtNode()     {}
func (s *ReturnStmt) stmtNode()    {}
func (s *EmitStmt) stmtNode()      {}
func (s *RevertStmt) stmtNode()    {}
func (s *TryStmt) stmtNode()       {}

func (s *ExprStmt) Span() text.Range      { return s.Range }
func (s *DeclStmt) Span() text.Range      { return s.Range }
func (s *TupleDeclStmt) Span() text.Range { return s.Range }
func (s *BlockStmt) Span() text.Range     { return s.Range }
func (s *IfStmt) Span() text.Range        { return s.Range }
func (s *ForStmt) Span() text.Range       { return s.Range }
func (s *WhileStmt) Span() text.Range     { return s.Range }
func (s *ReturnStmt) Span() text.Range    { return s.Range }
func (s *EmitStmt) Span() text.Range      { return s.Range }
func (s *RevertStmt) Span() text.Range    { return s.Range }
func (s *TryStmt) Span() text.Range       { return s.Range }

// Expr is any expression node. Children() returns immediate sub-
// expressions, used by the offset-containment walk that finds the
// innermost expression enclosing a cursor position.
type Expr interface {
	exprNode()
	Span() text.Range
	Children() []Expr
}

type Ident struct {
	Range text.Range
	Name  string
}

type Literal struct {
	Range text.Range
	Kind  string // "number", "string", "bool", or "invalid" for an unparseable primary
	Value string
}

type ThisExpr struct{ Range text.Range }
type SuperExpr struct{ Range text.Range }

type MemberAccess struct {
	Range     text.Range
	Base      Expr
	Name      string
	NameRange text.Range
}

type IndexAccess struct {
	Range text.Range
	Base  Expr
	Index Expr // nil for `T[]` type-position indexing
}

type CallExpr struct {
	Range  text.Range
	Callee Expr
	Args   []Expr
	Named  []string // parallel to Args when the call uses name: value form
}

// CallOptions is `callee{gas: g, value: v}(args)`.
type CallOptions struct {
	Range   text.Range
	Callee  Expr
	Options map[string]Expr
}

type NewExpr struct {
	Range text.Range
	Type  TypeExpr
}

type UnaryExpr struct {
	Range   text.Range
	Op      string
	X       Expr
	Postfix bool
}

type BinaryExpr struct {
	Range text.Range
	Op    string
	X, Y  Expr
}

type TernaryExpr struct {
	Range            text.Range
	Cond, Then, Else Expr
}

type TupleExpr struct {
	Range text.Range
	Elems []Expr // may contain nil for elided slots
}

type PayableExpr struct {
	Range text.Range
	X     Expr
}

type DeleteExpr struct {
	Range text.Range
	X     Expr
}

// TypeNameExpr is a bare type used as a value, e.g. `type(Foo)` or a cast
// callee `Foo(x)` before call resolution decides whether Foo is a type
// or a function.
type TypeNameExpr struct {
	Range text.Range
	Type  TypeExpr
}

func (e *Ident) exprNode()        {}
func (e *Literal) exprNode()      {}
func (e *ThisExpr) exprNode()     {}
func (e *SuperExpr) exprNode()    {}
func (e *MemberAccess) exprNode() {}
func (e *IndexAccess) exprNode()  {}
func (e *CallExpr) exprNode()     {}
func (e *CallOptions) exprNode()  {}
func (e *NewExpr) exprNode()      {}
func (e *UnaryExpr) exprNode()    {}
func (e *BinaryExpr) exprNode()   {}
func (e *TernaryExpr) exprNode()  {}
func (e *TupleExpr) exprNode()    {}
func (e *PayableExpr) exprNode()  {}
func (e *DeleteExpr) exprNode()   {}
func (e *TypeNameExpr) exprNode() {}

func (e *Ident) Span() text.Range        { return e.Range }
func (e *Literal) Span() text.Range      { return e.Range }
func (e *ThisExpr) Span() text.Range     { return e.Range }
func (e *SuperExpr) Span() text.Range    { return e.Range }
func (e *MemberAccess) Span() text.Range { return e.Range }
func (e *IndexAccess) Span() text.Range  { return e.Range }
func (e *CallExpr) Span() text.Range     { return e.Range }
func (e *CallOptions) Span() text.Range  { return e.Range }
func (e *NewExpr) Span() text.Range      { return e.Range }
func (e *UnaryExpr) Span() text.Range    { return e.Range }
func (e *BinaryExpr) Span() text.Range   { return e.Range }
func (e *TernaryExpr) Span() text.Range  { return e.Range }
func (e *TupleExpr) Span() text.Range    { return e.Range }
func (e *PayableExpr) Span() text.Range  { return e.Range }
func (e *DeleteExpr) Span() text.Range   { return e.Range }
func (e *TypeNameExpr) Span() text.Range { return e.Range }

func (e *Ident) Children() []Expr     { return nil }
func (e *Literal) Children() []Expr   { return nil }
func (e *ThisExpr) Children() []Expr  { return nil }
func (e *SuperExpr) Children() []Expr { return nil }
func (e *MemberAccess) Children() []Expr {
	if e.Base == nil {
		return nil
	}
	return []Expr{e.Base}
}
func (e *IndexAccess) Children() []Expr {
	if e.Index == nil {
		return []Expr{e.Base}
	}
	return []Expr{e.Base, e.Index}
}
func (e *CallExpr) Children() []Expr {
	children := append([]Expr{e.Callee}, e.Args...)
	return children
}
func (e *CallOptions) Children() []Expr {
	children := []Expr{e.Callee}
	for _, v := range e.Options {
		children = append(children, v)
	}
	return children
}
func (e *NewExpr) Children() []Expr     { return nil }
func (e *UnaryExpr) Children() []Expr   { return []Expr{e.X} }
func (e *BinaryExpr) Children() []Expr  { return []Expr{e.X, e.Y} }
func (e *TernaryExpr) Children() []Expr { return []Expr{e.Cond, e.Then, e.Else} }
func (e *TupleExpr) Children() []Expr {
	var out []Expr
	for _, el := range e.Elems {
		if el != nil {
			out = append(out, el)
		}
	}
	return out
}
func (e *PayableExpr) Children() []Expr  { return []Expr{e.X} }
func (e *DeleteExpr) Children() []Expr   { return []Expr{e.X} }
func (e *TypeNameExpr) Children() []Expr { return nil }
