// File: parser.go
// Title: Statement and Expression Parser
// Description: Recursive descent parser with precedence climbing for binary
//              operators. Statements are produced lazily by Next; malformed
//              input is reported to the diagnostics collection and replaced
//              by Error nodes so that parsing always runs to the end of the
//              token stream.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Initial parser implementation
// - 2026-10-17 v0.2.0: Expression language grammar, lazy statements,
//                      depth guard, diagnostics based recovery

package parser

import (
	"fmt"
	"strconv"
	"strings"

	frgerror "github.com/msto63/frege/foundation/core/error"
	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/lang/ast"
	"github.com/msto63/frege/foundation/lang/diagnostics"
	"github.com/msto63/frege/foundation/lang/lexer"
	"github.com/msto63/frege/foundation/lang/token"
)

// DefaultMaxDepth bounds the recursion of a single statement
const DefaultMaxDepth = 256

// Options configures a Parser
type Options struct {
	// Logger receives debug output; the default logger is used when nil
	Logger *frglog.Logger

	// MaxDepth is the nesting limit, DefaultMaxDepth when zero or negative
	MaxDepth int
}

// Parser turns a token sequence into statements
type Parser struct {
	tokens   []token.Token
	pos      int
	diags    *diagnostics.Collection
	logger   *frglog.Logger
	maxDepth int
	depth    int
}

// New creates a parser over tokens. Whitespace and semicolons are dropped and
// the sequence is cut at the first EOF, which is appended when missing.
func New(tokens []token.Token, diags *diagnostics.Collection, opts Options) (*Parser, error) {
	if diags == nil {
		return nil, frgerror.New("parser needs a diagnostics collection").
			WithCode(frgerror.CodeInvalidInput).
			WithOperation("parser.New")
	}

	if opts.Logger == nil {
		opts.Logger = frglog.GetDefault()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	filtered := make([]token.Token, 0, len(tokens)+1)
	for _, tok := range tokens {
		if tok.Kind.IsTrivia() {
			continue
		}
		filtered = append(filtered, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if len(filtered) == 0 || filtered[len(filtered)-1].Kind != token.EOF {
		filtered = append(filtered, eofAfter(tokens))
	}

	return &Parser{
		tokens:   filtered,
		diags:    diags,
		logger:   opts.Logger.WithField("component", "lang-parser"),
		maxDepth: opts.MaxDepth,
	}, nil
}

// FromSource lexes src and creates a parser over the result
func FromSource(src string, diags *diagnostics.Collection, opts Options) (*Parser, error) {
	return New(lexer.Tokenize(src), diags, opts)
}

// eofAfter synthesises an EOF positioned just past the last token
func eofAfter(tokens []token.Token) token.Token {
	if len(tokens) == 0 {
		return token.New(token.EOF, "", 0, 1, 1)
	}
	last := tokens[len(tokens)-1]
	line, column := last.Line, last.Column+len([]rune(last.Span.Literal))
	if n := strings.Count(last.Span.Literal, "\n"); n > 0 {
		line += n
		column = len([]rune(last.Span.Literal[strings.LastIndex(last.Span.Literal, "\n")+1:])) + 1
	}
	return token.New(token.EOF, "", last.Span.End(), line, column)
}

// Next parses the next top-level statement. It returns false exactly when
// the cursor is at EOF.
func (p *Parser) Next() (ast.Statement, bool) {
	if p.at(token.EOF) {
		return nil, false
	}

	start := p.current()
	stmt := p.parseStatement()

	p.logger.Debug("statement parsed", frglog.Fields{
		"kind":   strings.TrimPrefix(fmt.Sprintf("%T", stmt), "*ast."),
		"line":   start.Line,
		"column": start.Column,
	})
	return stmt, true
}

// ParseProgram drains Next
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for {
		stmt, ok := p.Next()
		if !ok {
			break
		}
		program.Statements = append(program.Statements, stmt)
	}

	p.logger.Debug("program parsed", frglog.Fields{
		"statements":  len(program.Statements),
		"diagnostics": p.diags.Len(),
	})
	return program
}

// Diagnostics returns the collection the parser reports to
func (p *Parser) Diagnostics() *diagnostics.Collection {
	return p.diags
}

// cursor

func (p *Parser) current() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		i = len(p.tokens) - 1
	}
	return p.tokens[i]
}

func (p *Parser) at(kind token.Kind) bool {
	return p.current().Kind == kind
}

// consume returns the current token and advances, except at EOF
func (p *Parser) consume() token.Token {
	tok := p.current()
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

// expect consumes a token of the given kind. On mismatch it reports and
// consumes whatever is there instead (EOF stays).
func (p *Parser) expect(kind token.Kind) token.Token {
	if !p.at(kind) {
		p.diags.ReportUnexpectedToken(kind, p.current())
	}
	return p.consume()
}

// closing consumes the delimiter matching open, reporting when it is
// missing. Braces are left for the enclosing block or function to use.
func (p *Parser) closing(open token.Token, kind token.Kind) {
	if !p.at(kind) {
		p.diags.ReportMissingClosing(open, kind, p.current())
		if p.at(token.LeftBrace) || p.at(token.RightBrace) {
			return
		}
	}
	p.consume()
}

// depth guard

func (p *Parser) enter() bool {
	p.depth++
	return p.depth <= p.maxDepth
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) tooDeep() *ast.Error {
	tok := p.current()
	p.diags.ReportTooDeep(tok, p.maxDepth)
	p.consume()
	return &ast.Error{Offending: tok}
}

// statements

func (p *Parser) parseStatement() ast.Statement {
	defer p.leave()
	if !p.enter() {
		return &ast.ExpressionStatement{Expr: p.tooDeep()}
	}

	switch p.current().Kind {
	case token.Let:
		return p.parseLet()
	case token.Func:
		return p.parseFunction()
	case token.Return:
		return p.parseReturn()
	case token.If:
		return p.parseConditional()
	case token.LeftBrace:
		open, body := p.parseBlock()
		return &ast.CompoundStatement{LeftBrace: open, Statements: body}
	default:
		return &ast.ExpressionStatement{Expr: p.parseExpression()}
	}
}

func (p *Parser) parseLet() ast.Statement {
	keyword := p.consume()
	name := p.expect(token.Identifier)
	p.expect(token.Equal)
	return &ast.LetStatement{
		Keyword:     keyword,
		Name:        name,
		Initializer: p.parseExpression(),
	}
}

func (p *Parser) parseReturn() ast.Statement {
	keyword := p.consume()
	return &ast.ReturnStatement{
		Keyword: keyword,
		Value:   p.parseExpression(),
	}
}

func (p *Parser) parseFunction() ast.Statement {
	keyword := p.consume()
	name := p.expect(token.Identifier)
	open := p.expect(token.LeftParen)
	params := p.parseParameters()
	p.closing(open, token.RightParen)
	_, body := p.parseBlock()

	return &ast.FunctionStatement{
		Keyword: keyword,
		Name:    name,
		Params:  params,
		Body:    body,
	}
}

func (p *Parser) parseConditional() ast.Statement {
	keyword := p.consume()
	open := p.expect(token.LeftParen)
	condition := p.parseExpression()
	p.closing(open, token.RightParen)

	stmt := &ast.ConditionalStatement{
		Keyword:   keyword,
		Condition: condition,
		Then:      p.parseStatement(),
	}
	if p.at(token.Else) {
		p.consume()
		stmt.Else = p.parseStatement()
	}
	return stmt
}

// parseBlock parses { statement* }. The loop ends at '}' or EOF.
func (p *Parser) parseBlock() (token.Token, []ast.Statement) {
	open := p.expect(token.LeftBrace)

	var body []ast.Statement
	for !p.at(token.RightBrace) && !p.at(token.EOF) {
		body = append(body, p.parseStatement())
	}
	p.closing(open, token.RightBrace)

	return open, body
}

// lists

// listState applies the comma policy shared by argument and parameter
// lists: a comma where an item is expected (leading or doubled) is reported
// and skipped, a trailing comma before the closing delimiter is accepted.
type listState struct {
	wantItem bool
}

// comma handles a comma at the cursor and reports whether one was consumed
func (p *Parser) comma(ls *listState) bool {
	if !p.at(token.Comma) {
		return false
	}
	if ls.wantItem {
		p.diags.ReportUnexpectedComma(p.current())
	}
	p.consume()
	ls.wantItem = true
	return true
}

// separator reports a missing comma between two items
func (p *Parser) separator(ls *listState) {
	if !ls.wantItem {
		p.diags.ReportUnexpectedToken(token.Comma, p.current())
	}
	ls.wantItem = false
}

func (p *Parser) parseArguments() []ast.Expression {
	ls := listState{wantItem: true}
	var args []ast.Expression

	for !p.at(token.RightParen) && !p.at(token.RightBrace) && !p.at(token.EOF) {
		if p.comma(&ls) {
			continue
		}
		p.separator(&ls)
		args = append(args, p.parseExpression())
	}
	return args
}

func (p *Parser) parseParameters() []token.Token {
	ls := listState{wantItem: true}
	var params []token.Token

	for !p.at(token.RightParen) && !p.at(token.LeftBrace) && !p.at(token.RightBrace) && !p.at(token.EOF) {
		if p.comma(&ls) {
			continue
		}
		if !p.at(token.Identifier) {
			p.diags.ReportUnexpectedToken(token.Identifier, p.consume())
			continue
		}
		p.separator(&ls)
		params = append(params, p.consume())
	}
	return params
}

// expressions

func (p *Parser) parseExpression() ast.Expression {
	if p.at(token.Identifier) && p.peek(1).Kind == token.Equal {
		defer p.leave()
		if !p.enter() {
			return p.tooDeep()
		}

		name := p.consume()
		p.consume()
		return &ast.Assignment{Name: name, Value: p.parseExpression()}
	}
	return p.parseBinary(0)
}

// parseBinary folds operators whose precedence is strictly greater than
// minPrec, which makes equal precedence left-associative.
func (p *Parser) parseBinary(minPrec int) ast.Expression {
	defer p.leave()
	if !p.enter() {
		return p.tooDeep()
	}

	left := p.parseUnary()
	for {
		kind, ok := ast.BinaryKindOf(p.current().Kind)
		if !ok || kind.Precedence() <= minPrec {
			return left
		}
		op := ast.BinaryOperator{Kind: kind, Token: p.consume()}
		right := p.parseBinary(kind.Precedence())
		left = &ast.Binary{Operator: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	defer p.leave()
	if !p.enter() {
		return p.tooDeep()
	}

	if kind, ok := ast.UnaryKindOf(p.current().Kind); ok {
		op := ast.UnaryOperator{Kind: kind, Token: p.consume()}
		return &ast.Unary{Operator: op, Operand: p.parseUnary()}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expression {
	defer p.leave()
	if !p.enter() {
		return p.tooDeep()
	}

	tok := p.consume()
	switch tok.Kind {
	case token.Integer:
		v, err := strconv.ParseInt(tok.Span.Literal, 10, 64)
		if err != nil {
			p.diags.ReportInvalidLiteral(tok)
			return &ast.Error{Offending: tok}
		}
		return &ast.IntegerLiteral{Literal: tok, Value: v}

	case token.Float:
		v, err := strconv.ParseFloat(tok.Span.Literal, 64)
		if err != nil {
			p.diags.ReportInvalidLiteral(tok)
			return &ast.Error{Offending: tok}
		}
		return &ast.FloatLiteral{Literal: tok, Value: v}

	case token.Identifier:
		if p.at(token.LeftParen) {
			open := p.consume()
			args := p.parseArguments()
			p.closing(open, token.RightParen)
			return &ast.FunctionCall{Name: tok, Args: args}
		}
		return &ast.Variable{Name: tok}

	case token.LeftParen:
		inner := p.parseExpression()
		p.closing(tok, token.RightParen)
		return &ast.Parenthesized{LeftParen: tok, Inner: inner}

	default:
		p.diags.ReportExpectedExpression(tok)
		return &ast.Error{Offending: tok}
	}
}
