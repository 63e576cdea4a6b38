// File: visitor.go
// Title: AST Visitor Pattern Implementation
// Description: Visitor contract with one value-returning method per node
//              kind, a BaseVisitor providing generic descent and Walk for
//              visiting the children of a node.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Initial visitor pattern implementation
// - 2026-10-17 v0.2.0: Value-returning visitor, self dispatch via Init

package ast

// Visitor has one method per concrete node type. Each method returns the
// visitor's result for that node.
type Visitor interface {
	VisitExpressionStatement(s *ExpressionStatement) interface{}
	VisitLetStatement(s *LetStatement) interface{}
	VisitReturnStatement(s *ReturnStatement) interface{}
	VisitFunctionStatement(s *FunctionStatement) interface{}
	VisitConditionalStatement(s *ConditionalStatement) interface{}
	VisitCompoundStatement(s *CompoundStatement) interface{}

	VisitIntegerLiteral(e *IntegerLiteral) interface{}
	VisitFloatLiteral(e *FloatLiteral) interface{}
	VisitVariable(e *Variable) interface{}
	VisitAssignment(e *Assignment) interface{}
	VisitBinary(e *Binary) interface{}
	VisitUnary(e *Unary) interface{}
	VisitParenthesized(e *Parenthesized) interface{}
	VisitFunctionCall(e *FunctionCall) interface{}
	VisitError(e *Error) interface{}
}

// BaseVisitor visits every child of a node and returns nil. Embed it and
// override the methods of interest; call Init with the embedding visitor so
// that descent reaches the overrides.
type BaseVisitor struct {
	self Visitor
}

// Init sets the visitor that inherited descent dispatches to
func (b *BaseVisitor) Init(self Visitor) {
	b.self = self
}

func (b *BaseVisitor) outer() Visitor {
	if b.self != nil {
		return b.self
	}
	return b
}

func (b *BaseVisitor) VisitExpressionStatement(s *ExpressionStatement) interface{} {
	Walk(b.outer(), s)
	return nil
}

func (b *BaseVisitor) VisitLetStatement(s *LetStatement) interface{} {
	Walk(b.outer(), s)
	return nil
}

func (b *BaseVisitor) VisitReturnStatement(s *ReturnStatement) interface{} {
	Walk(b.outer(), s)
	return nil
}

func (b *BaseVisitor) VisitFunctionStatement(s *FunctionStatement) interface{} {
	Walk(b.outer(), s)
	return nil
}

func (b *BaseVisitor) VisitConditionalStatement(s *ConditionalStatement) interface{} {
	Walk(b.outer(), s)
	return nil
}

func (b *BaseVisitor) VisitCompoundStatement(s *CompoundStatement) interface{} {
	Walk(b.outer(), s)
	return nil
}

func (b *BaseVisitor) VisitIntegerLiteral(e *IntegerLiteral) interface{} { return nil }
func (b *BaseVisitor) VisitFloatLiteral(e *FloatLiteral) interface{}     { return nil }
func (b *BaseVisitor) VisitVariable(e *Variable) interface{}             { return nil }
func (b *BaseVisitor) VisitError(e *Error) interface{}                   { return nil }

func (b *BaseVisitor) VisitAssignment(e *Assignment) interface{} {
	Walk(b.outer(), e)
	return nil
}

func (b *BaseVisitor) VisitBinary(e *Binary) interface{} {
	Walk(b.outer(), e)
	return nil
}

func (b *BaseVisitor) VisitUnary(e *Unary) interface{} {
	Walk(b.outer(), e)
	return nil
}

func (b *BaseVisitor) VisitParenthesized(e *Parenthesized) interface{} {
	Walk(b.outer(), e)
	return nil
}

func (b *BaseVisitor) VisitFunctionCall(e *FunctionCall) interface{} {
	Walk(b.outer(), e)
	return nil
}

// Walk calls Accept(v) on each direct child of node in source order. Nil
// children are skipped.
func Walk(v Visitor, node Node) {
	switch n := node.(type) {
	case *ExpressionStatement:
		accept(v, n.Expr)
	case *LetStatement:
		accept(v, n.Initializer)
	case *ReturnStatement:
		accept(v, n.Value)
	case *FunctionStatement:
		for _, s := range n.Body {
			accept(v, s)
		}
	case *ConditionalStatement:
		accept(v, n.Condition)
		accept(v, n.Then)
		accept(v, n.Else)
	case *CompoundStatement:
		for _, s := range n.Statements {
			accept(v, s)
		}
	case *Assignment:
		accept(v, n.Value)
	case *Binary:
		accept(v, n.Left)
		accept(v, n.Right)
	case *Unary:
		accept(v, n.Operand)
	case *Parenthesized:
		accept(v, n.Inner)
	case *FunctionCall:
		for _, a := range n.Args {
			accept(v, a)
		}
	}
}

func accept(v Visitor, n Node) {
	if n != nil {
		n.Accept(v)
	}
}
