// File: doc.go
// Title: AST Package Documentation
// Description: Abstract syntax tree of the expression language and the
//              visitor contract shared by the solver, the checker and the
//              printers.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Initial AST definitions
// - 2026-10-17 v0.2.0: Statement/expression model, value-returning visitor

/*
Package ast defines the syntax tree produced by the parser.

Statements and expressions are closed sets of node types. Every node owns its
children exclusively and is never modified after parsing, so a tree may be
evaluated any number of times and shared between goroutines.

Visitors implement one method per node kind and return their result from the
method instead of accumulating it in a field:

	type counter struct {
		ast.BaseVisitor
		calls int
	}

	func (c *counter) VisitFunctionCall(call *ast.FunctionCall) interface{} {
		c.calls++
		return c.BaseVisitor.VisitFunctionCall(call)
	}

	c := &counter{}
	c.Init(c)
	program.Accept(c)

Init makes the descent inherited from BaseVisitor dispatch to the outer
visitor, so overridden methods are reached for nested nodes as well.
*/
package ast
