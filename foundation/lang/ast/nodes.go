// File: nodes.go
// Title: AST Node Definitions
// Description: Statement and expression node types. Each node keeps the
//              tokens it was built from so that diagnostics and evaluation
//              faults can point at source positions.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Initial AST node definitions
// - 2026-10-17 v0.2.0: Expression language statements and expressions

package ast

import (
	"strings"

	"github.com/msto63/frege/foundation/lang/token"
)

// Node is implemented by every statement and expression
type Node interface {
	// Accept dispatches to the visitor method of the concrete node type
	Accept(v Visitor) interface{}

	// Token returns the token that anchors the node in the source
	Token() token.Token

	// String renders the node in the compact parenthesised form
	String() string
}

// Statement is a node that can appear in a statement list
type Statement interface {
	Node
	statementNode()
}

// Expression is a node that produces a value
type Expression interface {
	Node
	expressionNode()
}

// Program is the list of top-level statements of one unit
type Program struct {
	Statements []Statement
}

// Accept visits each top-level statement and returns the results in order
func (p *Program) Accept(v Visitor) interface{} {
	results := make([]interface{}, 0, len(p.Statements))
	for _, s := range p.Statements {
		results = append(results, s.Accept(v))
	}
	return results
}

// String renders one statement per line
func (p *Program) String() string {
	parts := make([]string, 0, len(p.Statements))
	for _, s := range p.Statements {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "\n")
}

// Statements

// ExpressionStatement evaluates an expression for its value
type ExpressionStatement struct {
	Expr Expression
}

// LetStatement binds Name in the innermost scope
type LetStatement struct {
	Keyword     token.Token
	Name        token.Token
	Initializer Expression
}

// ReturnStatement ends the enclosing function body with Value
type ReturnStatement struct {
	Keyword token.Token
	Value   Expression
}

// FunctionStatement declares a function. Parameter names are expected to be
// unique; the parser does not check.
type FunctionStatement struct {
	Keyword token.Token
	Name    token.Token
	Params  []token.Token
	Body    []Statement
}

// ConditionalStatement runs Then when Condition is non-zero, otherwise Else
// (which may be nil)
type ConditionalStatement struct {
	Keyword   token.Token
	Condition Expression
	Then      Statement
	Else      Statement
}

// CompoundStatement is a braced block with its own scope
type CompoundStatement struct {
	LeftBrace  token.Token
	Statements []Statement
}

// Expressions

// IntegerLiteral is a whole number literal
type IntegerLiteral struct {
	Literal token.Token
	Value   int64
}

// FloatLiteral is a decimal literal
type FloatLiteral struct {
	Literal token.Token
	Value   float64
}

// Variable reads a binding
type Variable struct {
	Name token.Token
}

// Assignment updates the nearest existing binding of Name
type Assignment struct {
	Name  token.Token
	Value Expression
}

// Binary applies Operator to Left and Right
type Binary struct {
	Operator BinaryOperator
	Left     Expression
	Right    Expression
}

// Unary applies a prefix Operator to Operand
type Unary struct {
	Operator UnaryOperator
	Operand  Expression
}

// Parenthesized groups Inner
type Parenthesized struct {
	LeftParen token.Token
	Inner     Expression
}

// FunctionCall calls Name with Args
type FunctionCall struct {
	Name token.Token
	Args []Expression
}

// Error stands in for input the parser could not turn into an expression
type Error struct {
	Offending token.Token
}

// Span returns the source span of the offending input
func (e *Error) Span() token.Span {
	return e.Offending.Span
}

// Accept

func (s *ExpressionStatement) Accept(v Visitor) interface{}  { return v.VisitExpressionStatement(s) }
func (s *LetStatement) Accept(v Visitor) interface{}         { return v.VisitLetStatement(s) }
func (s *ReturnStatement) Accept(v Visitor) interface{}      { return v.VisitReturnStatement(s) }
func (s *FunctionStatement) Accept(v Visitor) interface{}    { return v.VisitFunctionStatement(s) }
func (s *ConditionalStatement) Accept(v Visitor) interface{} { return v.VisitConditionalStatement(s) }
func (s *CompoundStatement) Accept(v Visitor) interface{}    { return v.VisitCompoundStatement(s) }
func (e *IntegerLiteral) Accept(v Visitor) interface{}       { return v.VisitIntegerLiteral(e) }
func (e *FloatLiteral) Accept(v Visitor) interface{}         { return v.VisitFloatLiteral(e) }
func (e *Variable) Accept(v Visitor) interface{}             { return v.VisitVariable(e) }
func (e *Assignment) Accept(v Visitor) interface{}           { return v.VisitAssignment(e) }
func (e *Binary) Accept(v Visitor) interface{}               { return v.VisitBinary(e) }
func (e *Unary) Accept(v Visitor) interface{}                { return v.VisitUnary(e) }
func (e *Parenthesized) Accept(v Visitor) interface{}        { return v.VisitParenthesized(e) }
func (e *FunctionCall) Accept(v Visitor) interface{}         { return v.VisitFunctionCall(e) }
func (e *Error) Accept(v Visitor) interface{}                { return v.VisitError(e) }

// Token

func (s *ExpressionStatement) Token() token.Token {
	if s.Expr == nil {
		return token.Token{}
	}
	return s.Expr.Token()
}
func (s *LetStatement) Token() token.Token         { return s.Keyword }
func (s *ReturnStatement) Token() token.Token      { return s.Keyword }
func (s *FunctionStatement) Token() token.Token    { return s.Keyword }
func (s *ConditionalStatement) Token() token.Token { return s.Keyword }
func (s *CompoundStatement) Token() token.Token    { return s.LeftBrace }
func (e *IntegerLiteral) Token() token.Token       { return e.Literal }
func (e *FloatLiteral) Token() token.Token         { return e.Literal }
func (e *Variable) Token() token.Token             { return e.Name }
func (e *Assignment) Token() token.Token           { return e.Name }
func (e *Binary) Token() token.Token               { return e.Operator.Token }
func (e *Unary) Token() token.Token                { return e.Operator.Token }
func (e *Parenthesized) Token() token.Token        { return e.LeftParen }
func (e *FunctionCall) Token() token.Token         { return e.Name }
func (e *Error) Token() token.Token                { return e.Offending }

// String

func (s *ExpressionStatement) String() string  { return Sprint(s) }
func (s *LetStatement) String() string         { return Sprint(s) }
func (s *ReturnStatement) String() string      { return Sprint(s) }
func (s *FunctionStatement) String() string    { return Sprint(s) }
func (s *ConditionalStatement) String() string { return Sprint(s) }
func (s *CompoundStatement) String() string    { return Sprint(s) }
func (e *IntegerLiteral) String() string       { return Sprint(e) }
func (e *FloatLiteral) String() string         { return Sprint(e) }
func (e *Variable) String() string             { return Sprint(e) }
func (e *Assignment) String() string           { return Sprint(e) }
func (e *Binary) String() string               { return Sprint(e) }
func (e *Unary) String() string                { return Sprint(e) }
func (e *Parenthesized) String() string        { return Sprint(e) }
func (e *FunctionCall) String() string         { return Sprint(e) }
func (e *Error) String() string                { return Sprint(e) }

func (*ExpressionStatement) statementNode()  {}
func (*LetStatement) statementNode()         {}
func (*ReturnStatement) statementNode()      {}
func (*FunctionStatement) statementNode()    {}
func (*ConditionalStatement) statementNode() {}
func (*CompoundStatement) statementNode()    {}

func (*IntegerLiteral) expressionNode() {}
func (*FloatLiteral) expressionNode()   {}
func (*Variable) expressionNode()       {}
func (*Assignment) expressionNode()     {}
func (*Binary) expressionNode()         {}
func (*Unary) expressionNode()          {}
func (*Parenthesized) expressionNode()  {}
func (*FunctionCall) expressionNode()   {}
func (*Error) expressionNode()          {}
