// File: lexer.go
// Title: Lexical Analyzer
// Description: Converts source text into the token stream consumed by the
//              parser. Whitespace and line comments are emitted as
//              Whitespace tokens, unknown characters as Bad tokens. The
//              lexer never fails; the parser reports what it cannot use.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Initial lexer implementation
// - 2026-10-17 v0.2.0: Expression language tokens, spans, trivia tokens

package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/msto63/frege/foundation/lang/token"
)

// Lexer performs lexical analysis of source text
type Lexer struct {
	input  string
	pos    int // byte offset of the next unread character
	line   int // 1-based
	column int // 1-based, counted in runes
}

// New creates a new lexer for the given input
func New(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		column: 1,
	}
}

// Tokenize lexes input completely. The result always ends with EOF.
func Tokenize(input string) []token.Token {
	return New(input).Tokenize()
}

// Tokenize returns all remaining tokens, including the final EOF
func (l *Lexer) Tokenize() []token.Token {
	tokens := make([]token.Token, 0, len(l.input)/2+1)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

// NextToken returns the next token. After the end of input it keeps
// returning EOF.
func (l *Lexer) NextToken() token.Token {
	if l.pos >= len(l.input) {
		return token.New(token.EOF, "", l.pos, l.line, l.column)
	}

	start, line, column := l.pos, l.line, l.column
	ch := l.input[l.pos]
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])

	switch {
	case isSpace(r):
		l.skipWhile(isSpace)
		return l.emit(token.Whitespace, start, line, column)
	case ch == '/' && l.peek(1) == '/':
		l.skipWhile(func(r rune) bool { return r != '\n' })
		return l.emit(token.Whitespace, start, line, column)
	case isDigit(r):
		return l.readNumber(start, line, column)
	case isIdentStart(r):
		l.skipWhile(isIdentPart)
		lit := l.input[start:l.pos]
		return token.New(token.Lookup(lit), lit, start, line, column)
	}

	if kind, width := l.operator(ch); width > 0 {
		l.advance(width)
		return l.emit(kind, start, line, column)
	}

	// Bad tokens cover one whole rune so multi-byte input stays intact
	_, width := utf8.DecodeRuneInString(l.input[l.pos:])
	l.advance(width)
	return l.emit(token.Bad, start, line, column)
}

func (l *Lexer) operator(ch byte) (token.Kind, int) {
	next := l.peek(1)
	switch ch {
	case '+':
		return token.Plus, 1
	case '-':
		return token.Minus, 1
	case '*':
		return token.Asterisk, 1
	case '/':
		return token.Slash, 1
	case '^':
		return token.Caret, 1
	case '~':
		return token.Tilde, 1
	case '(':
		return token.LeftParen, 1
	case ')':
		return token.RightParen, 1
	case '{':
		return token.LeftBrace, 1
	case '}':
		return token.RightBrace, 1
	case ',':
		return token.Comma, 1
	case ';':
		return token.Semicolon, 1
	case '&':
		if next == '&' {
			return token.AmpersandAmpersand, 2
		}
		return token.Ampersand, 1
	case '|':
		if next == '|' {
			return token.PipePipe, 2
		}
		return token.Pipe, 1
	case '=':
		if next == '=' {
			return token.EqualEqual, 2
		}
		return token.Equal, 1
	case '!':
		if next == '=' {
			return token.BangEqual, 2
		}
		return token.Bang, 1
	case '<':
		if next == '=' {
			return token.LessEqual, 2
		}
		return token.Less, 1
	case '>':
		if next == '=' {
			return token.GreaterEqual, 2
		}
		return token.Greater, 1
	}
	return token.Bad, 0
}

// readNumber reads an integer or a float of the form digits.digits
func (l *Lexer) readNumber(start, line, column int) token.Token {
	l.skipWhile(isDigit)

	kind := token.Integer
	if l.pos < len(l.input) && l.input[l.pos] == '.' && isDigit(rune(l.peek(1))) {
		kind = token.Float
		l.advance(1)
		l.skipWhile(isDigit)
	}

	return l.emit(kind, start, line, column)
}

func (l *Lexer) emit(kind token.Kind, start, line, column int) token.Token {
	return token.New(kind, l.input[start:l.pos], start, line, column)
}

func (l *Lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

// advance moves n bytes forward keeping line and column current
func (l *Lexer) advance(n int) {
	end := l.pos + n
	for l.pos < end {
		r, width := utf8.DecodeRuneInString(l.input[l.pos:])
		l.pos += width
		if r == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
	}
}

func (l *Lexer) skipWhile(pred func(rune) bool) {
	for l.pos < len(l.input) {
		r, width := utf8.DecodeRuneInString(l.input[l.pos:])
		if !pred(r) {
			return
		}
		l.advance(width)
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentStart(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' ||
		r >= utf8.RuneSelf && unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
