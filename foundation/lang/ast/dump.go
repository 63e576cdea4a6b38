// File: dump.go
// Title: Generic Tree Dump
// Description: Converts a tree into nested maps and slices suitable for
//              JSON encoding (parse --format json, gRPC Parse responses).
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package ast

// Dump converts node into map[string]interface{} values keyed by "node"
// plus one entry per child or attribute.
func Dump(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}
	return node.Accept(dumpVisitor{}).(map[string]interface{})
}

// DumpProgram dumps every top-level statement
func DumpProgram(p *Program) []interface{} {
	out := make([]interface{}, 0, len(p.Statements))
	for _, s := range p.Statements {
		out = append(out, Dump(s))
	}
	return out
}

type dumpVisitor struct{}

func (d dumpVisitor) one(n Node) interface{} {
	if n == nil {
		return nil
	}
	return Dump(n)
}

func (d dumpVisitor) statements(list []Statement) []interface{} {
	out := make([]interface{}, 0, len(list))
	for _, s := range list {
		out = append(out, Dump(s))
	}
	return out
}

func at(kind string, n Node) map[string]interface{} {
	tok := n.Token()
	return map[string]interface{}{
		"node":   kind,
		"line":   tok.Line,
		"column": tok.Column,
	}
}

func (d dumpVisitor) VisitExpressionStatement(s *ExpressionStatement) interface{} {
	m := at("ExpressionStatement", s)
	m["expr"] = d.one(s.Expr)
	return m
}

func (d dumpVisitor) VisitLetStatement(s *LetStatement) interface{} {
	m := at("LetStatement", s)
	m["name"] = s.Name.Span.Literal
	m["initializer"] = d.one(s.Initializer)
	return m
}

func (d dumpVisitor) VisitReturnStatement(s *ReturnStatement) interface{} {
	m := at("ReturnStatement", s)
	m["value"] = d.one(s.Value)
	return m
}

func (d dumpVisitor) VisitFunctionStatement(s *FunctionStatement) interface{} {
	params := make([]interface{}, 0, len(s.Params))
	for _, p := range s.Params {
		params = append(params, p.Span.Literal)
	}
	m := at("FunctionStatement", s)
	m["name"] = s.Name.Span.Literal
	m["params"] = params
	m["body"] = d.statements(s.Body)
	return m
}

func (d dumpVisitor) VisitConditionalStatement(s *ConditionalStatement) interface{} {
	m := at("ConditionalStatement", s)
	m["condition"] = d.one(s.Condition)
	m["then"] = d.one(s.Then)
	if s.Else != nil {
		m["else"] = d.one(s.Else)
	}
	return m
}

func (d dumpVisitor) VisitCompoundStatement(s *CompoundStatement) interface{} {
	m := at("CompoundStatement", s)
	m["statements"] = d.statements(s.Statements)
	return m
}

func (d dumpVisitor) VisitIntegerLiteral(e *IntegerLiteral) interface{} {
	m := at("IntegerLiteral", e)
	m["value"] = e.Value
	return m
}

func (d dumpVisitor) VisitFloatLiteral(e *FloatLiteral) interface{} {
	m := at("FloatLiteral", e)
	m["value"] = e.Value
	return m
}

func (d dumpVisitor) VisitVariable(e *Variable) interface{} {
	m := at("Variable", e)
	m["name"] = e.Name.Span.Literal
	return m
}

func (d dumpVisitor) VisitAssignment(e *Assignment) interface{} {
	m := at("Assignment", e)
	m["name"] = e.Name.Span.Literal
	m["value"] = d.one(e.Value)
	return m
}

func (d dumpVisitor) VisitBinary(e *Binary) interface{} {
	m := at("Binary", e)
	m["operator"] = e.Operator.Kind.String()
	m["left"] = d.one(e.Left)
	m["right"] = d.one(e.Right)
	return m
}

func (d dumpVisitor) VisitUnary(e *Unary) interface{} {
	m := at("Unary", e)
	m["operator"] = e.Operator.Kind.String()
	m["operand"] = d.one(e.Operand)
	return m
}

func (d dumpVisitor) VisitParenthesized(e *Parenthesized) interface{} {
	m := at("Parenthesized", e)
	m["inner"] = d.one(e.Inner)
	return m
}

func (d dumpVisitor) VisitFunctionCall(e *FunctionCall) interface{} {
	args := make([]interface{}, 0, len(e.Args))
	for _, a := range e.Args {
		args = append(args, Dump(a))
	}
	m := at("FunctionCall", e)
	m["name"] = e.Name.Span.Literal
	m["args"] = args
	return m
}

func (d dumpVisitor) VisitError(e *Error) interface{} {
	m := at("Error", e)
	m["text"] = e.Offending.Span.Literal
	m["start"] = e.Offending.Span.Start
	m["length"] = e.Offending.Span.Length
	return m
}
