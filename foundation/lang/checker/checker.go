// File: checker.go
// Title: Symbol Checker
// Description: Name-resolution pass over a parsed program. Reports
//              undefined variables and functions, call arity mismatches
//              and duplicate parameters as warnings. Built on
//              ast.BaseVisitor so only the interesting nodes are overridden.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package checker

import (
	"github.com/msto63/frege/foundation/lang/ast"
	"github.com/msto63/frege/foundation/lang/diagnostics"
)

// Options configures a Checker
type Options struct {
	// SeparateNamespaces must match the solver setting: when false a
	// function declaration also binds its name as a variable.
	SeparateNamespaces bool
}

// Checker walks a program and appends warnings to a diagnostics collection.
// Function declarations are hoisted so calls to functions declared later in
// the unit are not reported.
type Checker struct {
	ast.BaseVisitor

	diags     *diagnostics.Collection
	separate  bool
	scopes    []map[string]bool
	globals   map[string]bool
	functions map[string]*ast.FunctionStatement
	inBody    int
}

// New creates a checker reporting into diags
func New(diags *diagnostics.Collection, opts Options) *Checker {
	c := &Checker{
		diags:     diags,
		separate:  opts.SeparateNamespaces,
		scopes:    []map[string]bool{{}},
		globals:   make(map[string]bool),
		functions: make(map[string]*ast.FunctionStatement),
	}
	c.Init(c)
	return c
}

// Check runs a fresh checker over prog
func Check(prog *ast.Program, diags *diagnostics.Collection, opts Options) {
	New(diags, opts).Check(prog)
}

// Declare marks variables that exist before the checked unit, e.g. the
// bindings of an interactive session.
func (c *Checker) Declare(names ...string) {
	for _, n := range names {
		c.scopes[0][n] = true
	}
}

// DeclareFunction registers a function that exists before the checked unit
func (c *Checker) DeclareFunction(fn *ast.FunctionStatement) {
	c.functions[fn.Name.Span.Literal] = fn
	if !c.separate {
		c.scopes[0][fn.Name.Span.Literal] = true
	}
}

// Check reports on every statement of prog
func (c *Checker) Check(prog *ast.Program) {
	c.hoist(prog)
	for _, stmt := range prog.Statements {
		stmt.Accept(c)
	}
}

func (c *Checker) hoist(prog *ast.Program) {
	h := &hoister{functions: c.functions}
	h.Init(h)
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.LetStatement:
			c.globals[s.Name.Span.Literal] = true
		case *ast.FunctionStatement:
			if !c.separate {
				c.globals[s.Name.Span.Literal] = true
			}
		}
		stmt.Accept(h)
	}
}

// hoister collects every function declaration, nested ones included
type hoister struct {
	ast.BaseVisitor
	functions map[string]*ast.FunctionStatement
}

func (h *hoister) VisitFunctionStatement(s *ast.FunctionStatement) interface{} {
	h.functions[s.Name.Span.Literal] = s
	ast.Walk(h, s)
	return nil
}

func (c *Checker) bind(name string) {
	c.scopes[len(c.scopes)-1][name] = true
}

func (c *Checker) bound(name string) bool {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if c.scopes[i][name] {
			return true
		}
	}
	// a body runs when called, by then later top-level bindings may exist
	return c.inBody > 0 && c.globals[name]
}

func (c *Checker) push() { c.scopes = append(c.scopes, map[string]bool{}) }
func (c *Checker) pop()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Checker) VisitLetStatement(s *ast.LetStatement) interface{} {
	if s.Initializer != nil {
		s.Initializer.Accept(c)
	}
	c.bind(s.Name.Span.Literal)
	return nil
}

func (c *Checker) VisitFunctionStatement(s *ast.FunctionStatement) interface{} {
	if !c.separate {
		c.bind(s.Name.Span.Literal)
	}

	c.push()
	defer c.pop()
	c.inBody++
	defer func() { c.inBody-- }()

	for _, p := range s.Params {
		name := p.Span.Literal
		if c.scopes[len(c.scopes)-1][name] {
			c.diags.ReportDuplicateParameter(p)
			continue
		}
		c.bind(name)
	}
	for _, stmt := range s.Body {
		stmt.Accept(c)
	}
	return nil
}

func (c *Checker) VisitCompoundStatement(s *ast.CompoundStatement) interface{} {
	c.push()
	defer c.pop()
	ast.Walk(c, s)
	return nil
}

func (c *Checker) VisitVariable(e *ast.Variable) interface{} {
	if !c.bound(e.Name.Span.Literal) {
		c.diags.ReportUndefinedVariable(e.Name)
	}
	return nil
}

func (c *Checker) VisitAssignment(e *ast.Assignment) interface{} {
	if e.Value != nil {
		e.Value.Accept(c)
	}
	if !c.bound(e.Name.Span.Literal) {
		c.diags.ReportUndefinedVariable(e.Name)
	}
	return nil
}

func (c *Checker) VisitFunctionCall(e *ast.FunctionCall) interface{} {
	fn, ok := c.functions[e.Name.Span.Literal]
	switch {
	case !ok:
		c.diags.ReportUndefinedFunction(e.Name)
	case len(fn.Params) != len(e.Args):
		c.diags.ReportArityMismatch(e.Name, len(fn.Params), len(e.Args))
	}
	ast.Walk(c, e)
	return nil
}
