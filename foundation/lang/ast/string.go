// File: string.go
// Title: Compact Tree Rendering
// Description: StringVisitor renders nodes in a parenthesised prefix form,
//              e.g. (+ 1 (* 2 3)). Used by Node.String, test fixtures and
//              the text output of the parse command.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Indented string visitor
// - 2026-10-17 v0.2.0: Value-returning prefix form

package ast

import (
	"strings"
)

// StringVisitor returns the compact string form of each visited node
type StringVisitor struct{}

// Sprint renders node with a StringVisitor
func Sprint(node Node) string {
	if node == nil {
		return "<nil>"
	}
	return node.Accept(StringVisitor{}).(string)
}

func (sv StringVisitor) str(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Accept(sv).(string)
}

func (sv StringVisitor) list(open string, parts ...string) string {
	return "(" + open + " " + strings.Join(parts, " ") + ")"
}

func (sv StringVisitor) VisitExpressionStatement(s *ExpressionStatement) interface{} {
	return sv.str(s.Expr)
}

func (sv StringVisitor) VisitLetStatement(s *LetStatement) interface{} {
	return sv.list("let", s.Name.Span.Literal, sv.str(s.Initializer))
}

func (sv StringVisitor) VisitReturnStatement(s *ReturnStatement) interface{} {
	return sv.list("return", sv.str(s.Value))
}

func (sv StringVisitor) VisitFunctionStatement(s *FunctionStatement) interface{} {
	params := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		params = append(params, p.Span.Literal)
	}
	parts := []string{s.Name.Span.Literal, "(" + strings.Join(params, " ") + ")"}
	for _, stmt := range s.Body {
		parts = append(parts, sv.str(stmt))
	}
	return sv.list("func", parts...)
}

func (sv StringVisitor) VisitConditionalStatement(s *ConditionalStatement) interface{} {
	parts := []string{sv.str(s.Condition), sv.str(s.Then)}
	if s.Else != nil {
		parts = append(parts, sv.str(s.Else))
	}
	return sv.list("if", parts...)
}

func (sv StringVisitor) VisitCompoundStatement(s *CompoundStatement) interface{} {
	parts := make([]string, 0, len(s.Statements))
	for _, stmt := range s.Statements {
		parts = append(parts, sv.str(stmt))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func (sv StringVisitor) VisitIntegerLiteral(e *IntegerLiteral) interface{} {
	return e.Literal.Span.Literal
}

func (sv StringVisitor) VisitFloatLiteral(e *FloatLiteral) interface{} {
	return e.Literal.Span.Literal
}

func (sv StringVisitor) VisitVariable(e *Variable) interface{} {
	return e.Name.Span.Literal
}

func (sv StringVisitor) VisitAssignment(e *Assignment) interface{} {
	return sv.list("=", e.Name.Span.Literal, sv.str(e.Value))
}

func (sv StringVisitor) VisitBinary(e *Binary) interface{} {
	return sv.list(e.Operator.Kind.Symbol(), sv.str(e.Left), sv.str(e.Right))
}

func (sv StringVisitor) VisitUnary(e *Unary) interface{} {
	return sv.list(e.Operator.Kind.Symbol(), sv.str(e.Operand))
}

func (sv StringVisitor) VisitParenthesized(e *Parenthesized) interface{} {
	return sv.list("group", sv.str(e.Inner))
}

func (sv StringVisitor) VisitFunctionCall(e *FunctionCall) interface{} {
	if len(e.Args) == 0 {
		return "(call " + e.Name.Span.Literal + ")"
	}
	parts := []string{e.Name.Span.Literal}
	for _, a := range e.Args {
		parts = append(parts, sv.str(a))
	}
	return sv.list("call", parts...)
}

func (sv StringVisitor) VisitError(e *Error) interface{} {
	if e.Offending.Span.Literal == "" {
		return "(error)"
	}
	return "(error " + e.Offending.Span.Literal + ")"
}
