// Package syntax is a pluggable front end that lexes and parses a
// Solidity source file into a tagged syntax tree with byte-accurate
// spans, plus token-level scanners used by completion and the
// syntactic name-resolution fallback.
//
// No example in the retrieval pack ships a Solidity grammar (the tree-
// sitter bindings in standardbeagle-lci cover other languages, and the
// ANTLR grammar in simon-lentz-yammm targets YAMMM), so this package is a
// hand-written recursive-descent parser over the subset of Solidity the
// rest of the engine needs: pragmas, imports, contracts/interfaces/
// libraries with inheritance lists, state variables, functions and
// modifiers, structs/enums/events/errors/UDVTs, `using X for Y`, and
// expressions/statements rich enough to drive member access, overload
// resolution, and local scoping. Its shape — a Scanner producing Tokens,
// consumed by a recursive-descent Parser producing an arena of typed
// nodes — follows go/scanner and go/parser structurally.
package syntax

import "github.com/lumosimmo/solidity-analyzer/internal/text"

// TokenKind tags one lexical token.
type TokenKind uint8

const (
	TokEOF TokenKind = iota
	TokIdent
	TokNumber
	TokString
	TokHexString
	TokUnicodeString

	// Punctuation and operators.
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokSemi
	TokComma
	TokDot
	TokColon
	TokArrow // =>
	TokAssign
	TokEq
	TokNeq
	TokLt
	TokLe
	TokGt
	TokGe
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokCaret
	TokAmp
	TokPipe
	TokBang
	TokTilde
	TokQuestion
	TokAndAnd
	TokOrOr
	TokAssignOp // +=, -=, etc, lumped: exact text kept in Token.Text

	// Keywords the parser actually needs to recognize.
	TokPragma
	TokImport
	TokAs
	TokFrom
	TokContract
	TokInterface
	TokLibrary
	TokIs
	TokFunction
	TokModifier
	TokStruct
	TokEnum
	TokEvent
	TokError
	TokType // UDVT "type X is uint"
	TokUsing
	TokFor
	TokReturns
	TokReturn
	TokPublic
	TokPrivate
	TokInternal
	TokExternal
	TokView
	TokPure
	TokPayable
	TokVirtual
	TokOverride
	TokConstant
	TokImmutable
	TokMemory
	TokStorage
	TokCalldata
	TokIf
	TokElse
	TokWhile
	TokDo
	TokTry
	TokCatch
	TokNew
	TokDelete
	TokEmit
	TokRevert
	TokThis
	TokSuper
	TokTrue
	TokFalse
	TokConstructor
	TokFallback
	TokReceive
	TokMapping

	TokComment
	TokNatspecComment

	TokIllegal
)

var keywords = map[string]TokenKind{
	"pragma":      TokPragma,
	"import":      TokImport,
	"as":          TokAs,
	"from":        TokFrom,
	"contract":    TokContract,
	"interface":   TokInterface,
	"library":     TokLibrary,
	"is":          TokIs,
	"function":    TokFunction,
	"modifier":    TokModifier,
	"struct":      TokStruct,
	"enum":        TokEnum,
	"event":       TokEvent,
	"error":       TokError,
	"type":        TokType,
	"using":       TokUsing,
	"for":         TokFor,
	"returns":     TokReturns,
	"return":      TokReturn,
	"public":      TokPublic,
	"private":     TokPrivate,
	"internal":    TokInternal,
	"external":    TokExternal,
	"view":        TokView,
	"pure":        TokPure,
	"payable":     TokPayable,
	"virtual":     TokVirtual,
	"override":    TokOverride,
	"constant":    TokConstant,
	"immutable":   TokImmutable,
	"memory":      TokMemory,
	"storage":     TokStorage,
	"calldata":    TokCalldata,
	"if":          TokIf,
	"else":        TokElse,
	"while":       TokWhile,
	"do":          TokDo,
	"try":         TokTry,
	"catch":       TokCatch,
	"new":         TokNew,
	"delete":      TokDelete,
	"emit":        TokEmit,
	"revert":      TokRevert,
	"this":        TokThis,
	"super":       TokSuper,
	"true":        TokTrue,
	"false":       TokFalse,
	"constructor": TokConstructor,
	"fallback":    TokFallback,
	"receive":     TokReceive,
	"mapping":     TokMapping,
}

// Token is one lexical token with its source span.
type Token struct {
	Kind  TokenKind
	Text  string
	Range text.Range
}
