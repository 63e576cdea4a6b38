// File: solver_test.go
// Title: Solver Tests
// Description: Evaluation semantics: precedence, scoping, calls, return
//              signals, faults and the call depth guard.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial tests

package solver

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	frgerror "github.com/msto63/frege/foundation/core/error"
	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/lang/ast"
	"github.com/msto63/frege/foundation/lang/diagnostics"
	"github.com/msto63/frege/foundation/lang/parser"
	"github.com/msto63/frege/foundation/lang/token"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	diags := &diagnostics.Collection{}
	p, err := parser.FromSource(src, diags, parser.Options{Logger: frglog.Discard()})
	if err != nil {
		t.Fatalf("FromSource() error = %v", err)
	}
	prog := p.ParseProgram()
	if diags.HasErrors() {
		t.Fatalf("unexpected syntax errors in %q: %v", src, diags.Errors())
	}
	return prog
}

func newSolver() *Solver {
	return New(Options{Logger: frglog.Discard()})
}

func run(t *testing.T, s *Solver, src string) (Value, error) {
	t.Helper()
	return s.EvaluateProgram(parse(t, src))
}

func TestEvaluate_Arithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 3 - 2", 5},
		{"-2 * 3", -6},
		{"8 / 2 / 2", 2},
		{"1.5 * 2", 3},
		{"7 / 2", 3.5},
		{"--3", 3},
		{"6 & 3", 2},
		{"6 | 3", 7},
		{"6 ^ 3", 5},
		{"7.9 & 3", 3},
		{"~0", -1},
		{"~5.5", -6},
		{"1 | 2 == 3", 1},
		{"2 < 3", 1},
		{"3 <= 2", 0},
		{"3 > 2", 1},
		{"2 >= 2", 1},
		{"1 == 1.0", 1},
		{"1 != 1", 0},
		{"2 && 0.5", 1},
		{"0 && 1", 0},
		{"0 || -1", 1},
		{"0 || 0", 0},
		{"!0", 1},
		{"!7", 0},
		{"!!7", 1},
		{"1 + 2 < 4", 1},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := run(t, newSolver(), tt.src)
			if err != nil {
				t.Fatalf("evaluate error = %v", err)
			}
			if !got.Present || got.Number != tt.want {
				t.Errorf("%s = %v (present %v), want %v", tt.src, got.Number, got.Present, tt.want)
			}
		})
	}
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	tests := []struct {
		src   string
		check func(float64) bool
	}{
		{"1 / 0", func(v float64) bool { return math.IsInf(v, 1) }},
		{"-1 / 0", func(v float64) bool { return math.IsInf(v, -1) }},
		{"0 / 0", math.IsNaN},
	}
	for _, tt := range tests {
		got, err := run(t, newSolver(), tt.src)
		if err != nil {
			t.Fatalf("%s: error = %v", tt.src, err)
		}
		if !tt.check(got.Number) {
			t.Errorf("%s = %v", tt.src, got.Number)
		}
	}

	// NaN truncates to zero for bitwise operators
	if got, _ := run(t, newSolver(), "(0 / 0) | 4"); got.Number != 4 {
		t.Errorf("NaN | 4 = %v, want 4", got.Number)
	}
}

func TestEvaluate_Scoping(t *testing.T) {
	s := newSolver()
	got, err := run(t, s, "let x = 5; func f(y) { let z = 1; return x + y; } f(3)")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got.Number != 8 {
		t.Errorf("f(3) = %v, want 8", got.Number)
	}
	if _, ok := s.Lookup("z"); ok {
		t.Error("let inside f is visible after the call")
	}
	if _, ok := s.Lookup("y"); ok {
		t.Error("parameter is visible after the call")
	}
	if s.Depth() != 1 {
		t.Errorf("Depth() = %d after call, want 1", s.Depth())
	}

	s = newSolver()
	got, err = run(t, s, "let x = 1; func f(x) { return x; } f(9)")
	if err != nil || got.Number != 9 {
		t.Fatalf("f(9) = %v, %v; want 9", got.Number, err)
	}
	if v, _ := s.Lookup("x"); v != 1 {
		t.Errorf("outer x = %v, want 1", v)
	}
}

func TestEvaluate_CompoundScope(t *testing.T) {
	s := newSolver()
	got, err := run(t, s, "let a = 1; { let a = 2; let b = a; a = 10; } a")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got.Number != 1 {
		t.Errorf("a = %v, want 1", got.Number)
	}
	if _, ok := s.Lookup("b"); ok {
		t.Error("block binding leaked")
	}

	// assignment reaches the nearest binding scope
	got, err = run(t, s, "{ a = 7; } a")
	if err != nil || got.Number != 7 {
		t.Errorf("a = %v, %v; want 7", got.Number, err)
	}
}

func TestEvaluate_Assignment(t *testing.T) {
	s := newSolver()
	got, err := run(t, s, "let a = 0; let b = 0; a = b = 4")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got.Number != 4 {
		t.Errorf("chained assignment = %v", got.Number)
	}
	if a, _ := s.Lookup("a"); a != 4 {
		t.Errorf("a = %v", a)
	}

	_, err = run(t, newSolver(), "q = 1")
	if !frgerror.HasCode(err, frgerror.CodeUndefinedVariable) {
		t.Errorf("assignment to unbound name: error = %v", err)
	}
}

func TestEvaluate_Calls(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want float64
	}{
		{"return value", "func f(a, b) { return a * b; } f(3, 4)", 12},
		{"last value", "func f(a) { a + 1; a + 2; } f(1)", 3},
		{"no value", "func f() { func g() {} } f()", 0},
		{"empty body", "func f() {} f()", 0},
		{"extra args dropped", "func f(a) { return a; } f(1, 2, 3)", 1},
		{"nested calls", "func sq(x) { return x * x; } func sum(a, b) { return a + b; } sum(sq(3), sq(4))", 25},
		{"recursion", "func fact(n) { if (n <= 1) return 1; return n * fact(n - 1); } fact(10)", 3628800},
		{"redeclaration overwrites", "func f() { return 1; } func f() { return 2; } f()", 2},
		{"globals visible", "let k = 3; func f() { return k; } f()", 3},
		{"assignment to global", "let k = 3; func f() { k = 9; } f(); k", 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, newSolver(), tt.src)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got.Number != tt.want {
				t.Errorf("got %v, want %v", got.Number, tt.want)
			}
		})
	}
}

func TestEvaluate_MissingParameterStaysUnbound(t *testing.T) {
	_, err := run(t, newSolver(), "func f(a, b) { return b; } f(1)")
	if !frgerror.HasCode(err, frgerror.CodeUndefinedVariable) {
		t.Fatalf("error = %v, want UNDEFINED_VARIABLE", err)
	}
	var fe *frgerror.Error
	if !errors.As(err, &fe) {
		t.Fatal("fault is not a *frgerror.Error")
	}
	if name, _ := fe.Detail("name"); name != "b" {
		t.Errorf("name detail = %v", name)
	}
}

func TestEvaluate_ArgumentsEvaluatedInCallerScope(t *testing.T) {
	got, err := run(t, newSolver(), "let a = 2; func f(a, b) { return a * 10 + b; } f(5, a)")
	if err != nil || got.Number != 52 {
		t.Errorf("f(5, a) = %v, %v; want 52", got.Number, err)
	}
}

func TestEvaluate_ReturnEndsOnlyFunctionBody(t *testing.T) {
	src := `
		func f(x) {
			if (x > 0) {
				{ return 1; }
			}
			return 2;
		}
		f(5) + f(-5) * 10`
	got, err := run(t, newSolver(), src)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got.Number != 21 {
		t.Errorf("got %v, want 21", got.Number)
	}

	// the statement after the call still runs
	got, err = run(t, newSolver(), "func f() { return 1; } f(); 42")
	if err != nil || got.Number != 42 {
		t.Errorf("got %v, %v; want 42", got.Number, err)
	}
}

func TestEvaluate_TopLevelReturnEndsUnit(t *testing.T) {
	s := newSolver()
	got, err := run(t, s, "let a = 1; return a + 1; let b = 5; 99")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got.Number != 2 {
		t.Errorf("got %v, want 2", got.Number)
	}
	if _, ok := s.Lookup("b"); ok {
		t.Error("statements after a top-level return ran")
	}
}

func TestEvaluate_FunctionNameReadsZero(t *testing.T) {
	s := newSolver()
	got, err := run(t, s, "func g() { return 1; } g")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if !got.Present || got.Number != 0 {
		t.Errorf("g = %v, want 0", got.Number)
	}
	if got, _ := run(t, s, "g()"); got.Number != 1 {
		t.Errorf("g() = %v after reading g, want 1", got.Number)
	}

	s = New(Options{Logger: frglog.Discard(), SeparateNamespaces: true})
	_, err = run(t, s, "func g() { return 1; } g")
	if !frgerror.HasCode(err, frgerror.CodeUndefinedVariable) {
		t.Errorf("with separate namespaces: error = %v", err)
	}
}

func TestEvaluate_ValuePresence(t *testing.T) {
	tests := []struct {
		src     string
		present bool
	}{
		{"func f() {}", false},
		{"{}", false},
		{"if (0) 1", false},
		{"if (0) 1 else 2", true},
		{"let a = 3", true},
		{"1; func f() {}", true},
	}
	for _, tt := range tests {
		got, err := run(t, newSolver(), tt.src)
		if err != nil {
			t.Fatalf("%s: error = %v", tt.src, err)
		}
		if got.Present != tt.present {
			t.Errorf("%s: present = %v, want %v", tt.src, got.Present, tt.present)
		}
	}

	if (Value{}).String() != "" {
		t.Error("absent value should render empty")
	}
	a, b := 0.1, 0.2
	if got := (Value{Number: a + b, Present: true}).String(); got != "0.30000000000000004" {
		t.Errorf("String() = %s", got)
	}
	if got := (Value{Number: math.Inf(1), Present: true}).String(); got != "+Inf" {
		t.Errorf("String() = %s", got)
	}
}

func TestEvaluate_Conditional(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"if (1) 10 else 20", 10},
		{"if (0) 10 else 20", 20},
		{"if (-0.5) 10 else 20", 10},
		{"if (0 / 0) 10 else 20", 10},
		{"let x = 3; if (x == 3) { x = x * 2; } x", 6},
	}
	for _, tt := range tests {
		got, err := run(t, newSolver(), tt.src)
		if err != nil || got.Number != tt.want {
			t.Errorf("%s = %v, %v; want %v", tt.src, got.Number, err, tt.want)
		}
	}
}

func TestEvaluate_Faults(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code frgerror.Code
		line int
		col  int
	}{
		{"undefined variable", "1 + nope", frgerror.CodeUndefinedVariable, 1, 5},
		{"undefined function", "\n  h(1)", frgerror.CodeUndefinedFunction, 2, 3},
		{"not callable", "let v = 1; v()", frgerror.CodeNotCallable, 1, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, newSolver(), tt.src)
			if !frgerror.HasCode(err, tt.code) {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
			var fe *frgerror.Error
			if !errors.As(err, &fe) {
				t.Fatal("not a *frgerror.Error")
			}
			line, _ := fe.Detail("line")
			col, _ := fe.Detail("column")
			if line != tt.line || col != tt.col {
				t.Errorf("position = %v:%v, want %d:%d", line, col, tt.line, tt.col)
			}
			if fe.Operation() != "evaluate" {
				t.Errorf("operation = %s", fe.Operation())
			}
		})
	}
}

func TestEvaluate_FaultRestoresScopes(t *testing.T) {
	s := newSolver()
	_, err := run(t, s, "func f(a) { { let b = 1; return nope; } } f(1)")
	if !frgerror.HasCode(err, frgerror.CodeUndefinedVariable) {
		t.Fatalf("error = %v", err)
	}
	if s.Depth() != 1 {
		t.Errorf("Depth() = %d after fault, want 1", s.Depth())
	}
	if got, err := run(t, s, "f"); err != nil || got.Number != 0 {
		t.Errorf("solver unusable after fault: %v, %v", got, err)
	}
}

func TestEvaluate_ErrorNode(t *testing.T) {
	diags := &diagnostics.Collection{}
	p, _ := parser.FromSource("1 + )", diags, parser.Options{Logger: frglog.Discard()})
	prog := p.ParseProgram()
	if !diags.HasErrors() {
		t.Fatal("expected a syntax error")
	}

	_, err := newSolver().EvaluateProgram(prog)
	if !frgerror.HasCode(err, frgerror.CodeUnevaluable) {
		t.Fatalf("error = %v, want UNEVALUABLE", err)
	}

	errNode := &ast.Error{Offending: token.Token{Kind: token.EOF, Line: 3, Column: 1}}
	_, err = newSolver().Evaluate(&ast.ExpressionStatement{Expr: errNode})
	if !frgerror.HasCode(err, frgerror.CodeUnevaluable) || !strings.Contains(err.Error(), "incomplete input") {
		t.Errorf("EOF error node: %v", err)
	}
}

func TestEvaluate_RecursionLimit(t *testing.T) {
	s := New(Options{Logger: frglog.Discard(), MaxCallDepth: 50})
	_, err := run(t, s, "func loop(n) { return loop(n + 1); } loop(0)")
	if !frgerror.HasCode(err, frgerror.CodeRecursionLimit) {
		t.Fatalf("error = %v, want RECURSION_LIMIT", err)
	}
	if s.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", s.Depth())
	}

	// exactly at the limit is fine
	got, err := run(t, s, "func down(n) { if (n <= 1) return 1; return down(n - 1); } down(50)")
	if err != nil || got.Number != 1 {
		t.Errorf("down(50) = %v, %v", got.Number, err)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	prog := parse(t, "let x = 2; func f(n) { return n * x; } f(21)")
	for i := 0; i < 3; i++ {
		got, err := newSolver().EvaluateProgram(prog)
		if err != nil || got.Number != 42 {
			t.Fatalf("run %d = %v, %v", i, got.Number, err)
		}
	}
	if prog.String() != parse(t, "let x = 2; func f(n) { return n * x; } f(21)").String() {
		t.Error("evaluation modified the tree")
	}
}

func TestEvaluate_StatementByStatement(t *testing.T) {
	prog := parse(t, "let a = 2; func twice(v) { return v * 2; } twice(a)")
	s := newSolver()

	var last Value
	for _, stmt := range prog.Statements {
		v, err := s.Evaluate(stmt)
		if err != nil {
			t.Fatalf("Evaluate(%s) error = %v", stmt, err)
		}
		last = v
	}
	if last.Number != 4 {
		t.Errorf("last = %v", last.Number)
	}
	if fns := s.Functions(); len(fns) != 1 || fns[0] != "twice" {
		t.Errorf("Functions() = %v", fns)
	}
	if vars := s.Variables(); vars["a"] != 2 || len(vars) != 2 {
		t.Errorf("Variables() = %v", vars)
	}

	s.Reset()
	if len(s.Functions()) != 0 || len(s.Variables()) != 0 || s.Depth() != 1 {
		t.Error("Reset() left state behind")
	}
}

func TestEvaluate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newSolver()
	_, err := s.EvaluateProgramContext(ctx, parse(t, "func f() { return 1; } f()"))
	if !frgerror.HasCode(err, frgerror.CodeCanceled) {
		t.Fatalf("error = %v, want CANCELED", err)
	}

	// plain expressions never check the context
	got, err := s.EvaluateProgramContext(ctx, parse(t, "1 + 1"))
	if err != nil || got.Number != 2 {
		t.Errorf("got %v, %v", got.Number, err)
	}
}
