// File: checker_test.go
// Title: Symbol Checker Tests
// Description: Warnings for unresolved names, arity and duplicate parameters.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial tests

package checker

import (
	"testing"

	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/lang/ast"
	"github.com/msto63/frege/foundation/lang/diagnostics"
	"github.com/msto63/frege/foundation/lang/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	diags := diagnostics.New()
	p, err := parser.FromSource(src, diags, parser.Options{Logger: frglog.Discard()})
	if err != nil {
		t.Fatalf("FromSource() error = %v", err)
	}
	prog := p.ParseProgram()
	if diags.Len() != 0 {
		t.Fatalf("parse diagnostics for %q: %v", src, diags.Items())
	}
	return prog
}

func messages(diags *diagnostics.Collection) []string {
	var out []string
	for _, d := range diags.Items() {
		out = append(out, d.String())
	}
	return out
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"clean", "let x = 1; func f(a) { return a + x; } f(x)", nil},
		{"undefined variable", "1 + y", []string{"1:5: warning: undefined variable 'y'"}},
		{"use before let", "x; let x = 1", []string{"1:1: warning: undefined variable 'x'"}},
		{"undefined function", "g(1)", []string{"1:1: warning: undefined function 'g'"}},
		{"arity", "func f(a, b) { return a; } f(1)",
			[]string{"1:28: warning: function 'f' takes 2 argument(s), called with 1"}},
		{"duplicate parameter", "func f(a, a) { return a; }", []string{"1:11: warning: duplicate parameter 'a'"}},
		{"assignment to unbound", "z = 3", []string{"1:1: warning: undefined variable 'z'"}},
		{"block scope ends", "{ let b = 1; } b", []string{"1:16: warning: undefined variable 'b'"}},
		{"parameter not visible outside", "func f(p) { return p; } p", []string{"1:25: warning: undefined variable 'p'"}},
		{"function name reads as variable", "func g() { return 1; } g", nil},
		{"call before declaration", "h(); func h() { return 2; }", nil},
		{"body sees later globals", "func f() { return later; } let later = 3; f()", nil},
		{"recursion", "func fact(n) { if (n < 2) return 1; return n * fact(n - 1); }", nil},
		{"nested declaration hoisted", "func outer() { func inner() { return 1; } return inner(); } inner()", nil},
		{"arguments checked", "func f(a) { return a; } f(q)", []string{"1:27: warning: undefined variable 'q'"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := diagnostics.New()
			Check(parse(t, tt.src), diags, Options{})

			got := messages(diags)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("diagnostic %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
			if diags.HasErrors() {
				t.Error("checker must only produce warnings")
			}
		})
	}
}

func TestCheck_SeparateNamespaces(t *testing.T) {
	diags := diagnostics.New()
	Check(parse(t, "func g() { return 1; } g"), diags, Options{SeparateNamespaces: true})

	if len(diags.Warnings()) != 1 || diags.Items()[0].Code != diagnostics.CodeUndefinedVariable {
		t.Errorf("got %v", messages(diags))
	}
}

func TestChecker_Declared(t *testing.T) {
	session := parse(t, "func sq(v) { return v * v; }")

	diags := diagnostics.New()
	c := New(diags, Options{})
	c.Declare("total")
	c.DeclareFunction(session.Statements[0].(*ast.FunctionStatement))
	c.Check(parse(t, "total = sq(total)"))

	if diags.Len() != 0 {
		t.Errorf("session names reported: %v", messages(diags))
	}
}
