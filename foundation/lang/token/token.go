// File: token.go
// Title: Token Model
// Description: Closed set of token kinds, source spans and tokens consumed by
//              the parser. Tokens are produced by the lexer or by any other
//              token source and are read-only once created.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial token model

package token

import "fmt"

// Kind identifies the lexical class of a token
type Kind int

const (
	// Literals and names
	Integer Kind = iota
	Float
	Identifier

	// Operators
	Plus
	Minus
	Asterisk
	Slash
	Ampersand
	Pipe
	Caret
	Tilde
	Bang
	AmpersandAmpersand
	PipePipe
	Equal
	EqualEqual
	BangEqual
	Less
	LessEqual
	Greater
	GreaterEqual

	// Delimiters
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	Comma
	Semicolon

	// Keywords
	Let
	Func
	Return
	If
	Else

	Whitespace
	EOF
	Bad
)

var kindNames = [...]string{
	Integer:            "Integer",
	Float:              "Float",
	Identifier:         "Identifier",
	Plus:               "Plus",
	Minus:              "Minus",
	Asterisk:           "Asterisk",
	Slash:              "Slash",
	Ampersand:          "Ampersand",
	Pipe:               "Pipe",
	Caret:              "Caret",
	Tilde:              "Tilde",
	Bang:               "Bang",
	AmpersandAmpersand: "AmpersandAmpersand",
	PipePipe:           "PipePipe",
	Equal:              "Equal",
	EqualEqual:         "EqualEqual",
	BangEqual:          "BangEqual",
	Less:               "Less",
	LessEqual:          "LessEqual",
	Greater:            "Greater",
	GreaterEqual:       "GreaterEqual",
	LeftParen:          "LeftParen",
	RightParen:         "RightParen",
	LeftBrace:          "LeftBrace",
	RightBrace:         "RightBrace",
	Comma:              "Comma",
	Semicolon:          "Semicolon",
	Let:                "Let",
	Func:               "Func",
	Return:             "Return",
	If:                 "If",
	Else:               "Else",
	Whitespace:         "Whitespace",
	EOF:                "EOF",
	Bad:                "Bad",
}

// symbols holds the fixed spelling of kinds that have one
var symbols = map[Kind]string{
	Plus:               "+",
	Minus:              "-",
	Asterisk:           "*",
	Slash:              "/",
	Ampersand:          "&",
	Pipe:               "|",
	Caret:              "^",
	Tilde:              "~",
	Bang:               "!",
	AmpersandAmpersand: "&&",
	PipePipe:           "||",
	Equal:              "=",
	EqualEqual:         "==",
	BangEqual:          "!=",
	Less:               "<",
	LessEqual:          "<=",
	Greater:            ">",
	GreaterEqual:       ">=",
	LeftParen:          "(",
	RightParen:         ")",
	LeftBrace:          "{",
	RightBrace:         "}",
	Comma:              ",",
	Semicolon:          ";",
	Let:                "let",
	Func:               "func",
	Return:             "return",
	If:                 "if",
	Else:               "else",
}

var keywords = map[string]Kind{
	"let":    Let,
	"func":   Func,
	"return": Return,
	"if":     If,
	"else":   Else,
}

// String returns the name of the kind
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Symbol returns the source spelling of a fixed-spelling kind, or a
// descriptive name for literal classes ("identifier", "end of input").
func (k Kind) Symbol() string {
	if s, ok := symbols[k]; ok {
		return s
	}
	switch k {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Identifier:
		return "identifier"
	case Whitespace:
		return "whitespace"
	case EOF:
		return "end of input"
	default:
		return "invalid token"
	}
}

// IsKeyword reports whether k is a reserved word
func (k Kind) IsKeyword() bool {
	return k >= Let && k <= Else
}

// IsTrivia reports whether the parser skips tokens of kind k
func (k Kind) IsTrivia() bool {
	return k == Whitespace || k == Semicolon
}

// Lookup returns the keyword kind for ident, or Identifier
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return Identifier
}

// Span locates a token in the source text
type Span struct {
	Start   int    // byte offset (0-based)
	Length  int    // length in bytes
	Literal string // source text of the token
}

// End returns the byte offset just past the span
func (s Span) End() int {
	return s.Start + s.Length
}

// Token is a single lexical unit
type Token struct {
	Kind   Kind
	Span   Span
	Line   int // 1-based
	Column int // 1-based
}

// New creates a token whose span covers literal at start
func New(kind Kind, literal string, start, line, column int) Token {
	return Token{
		Kind:   kind,
		Span:   Span{Start: start, Length: len(literal), Literal: literal},
		Line:   line,
		Column: column,
	}
}

// Literal returns the source text of the token
func (t Token) Literal() string {
	return t.Span.Literal
}

// String returns a debug representation such as Identifier("x")@3:5
func (t Token) String() string {
	if t.Kind == EOF {
		return fmt.Sprintf("EOF@%d:%d", t.Line, t.Column)
	}
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Span.Literal, t.Line, t.Column)
}

// Describe renders the token for diagnostics: the quoted literal, or
// "end of input".
func (t Token) Describe() string {
	switch {
	case t.Kind == EOF:
		return "end of input"
	case t.Kind.IsKeyword():
		return fmt.Sprintf("keyword '%s'", t.Span.Literal)
	}
	return fmt.Sprintf("'%s'", t.Span.Literal)
}
