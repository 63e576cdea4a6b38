// File: solver.go
// Title: Tree-Walking Evaluator
// Description: Solver evaluates statements against a scope stack and a
//              function table. Every Visit method returns an outcome
//              carrying the number, its presence, a return signal or a
//              fault; nothing is accumulated on the solver itself.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package solver

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"

	frgerror "github.com/msto63/frege/foundation/core/error"
	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/lang/ast"
	"github.com/msto63/frege/foundation/lang/token"
)

// DefaultMaxCallDepth bounds nested user function calls
const DefaultMaxCallDepth = 200

// Options configures a Solver
type Options struct {
	Logger       *frglog.Logger
	MaxCallDepth int
	// SeparateNamespaces stops function declarations from binding their
	// name to 0 in the declaring scope.
	SeparateNamespaces bool
}

// Value is the result of evaluating a statement or program
type Value struct {
	Number  float64
	Present bool
}

// String formats the number the shortest way that round-trips, or returns
// an empty string when no value was produced.
func (v Value) String() string {
	if !v.Present {
		return ""
	}
	return strconv.FormatFloat(v.Number, 'g', -1, 64)
}

// Scope maps identifiers to values
type Scope map[string]float64

// Solver evaluates statements. A Solver is not safe for concurrent use; the
// trees it evaluates are never modified and may be shared.
type Solver struct {
	scopes       []Scope
	functions    map[string]*ast.FunctionStatement
	callDepth    int
	maxCallDepth int
	separate     bool
	ctx          context.Context
	logger       *frglog.Logger
}

// outcome is what every Visit method returns
type outcome struct {
	value    float64
	present  bool
	returned bool
	err      error
}

func number(v float64) outcome { return outcome{value: v, present: true} }

func truth(b bool) outcome {
	if b {
		return number(1)
	}
	return number(0)
}

// New creates a solver with one empty base scope
func New(opts Options) *Solver {
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	logger := opts.Logger
	if logger == nil {
		logger = frglog.GetDefault()
	}

	s := &Solver{
		maxCallDepth: opts.MaxCallDepth,
		separate:     opts.SeparateNamespaces,
		ctx:          context.Background(),
		logger:       logger.WithField("component", "lang-solver"),
	}
	s.Reset()
	return s
}

// Reset drops every variable and function
func (s *Solver) Reset() {
	s.scopes = []Scope{{}}
	s.functions = make(map[string]*ast.FunctionStatement)
	s.callDepth = 0
}

// Evaluate runs one statement. A return at top level yields its value.
func (s *Solver) Evaluate(stmt ast.Statement) (Value, error) {
	return s.EvaluateContext(context.Background(), stmt)
}

// EvaluateContext is Evaluate with cancellation checked on every call
func (s *Solver) EvaluateContext(ctx context.Context, stmt ast.Statement) (Value, error) {
	defer s.bind(ctx)()

	o := s.eval(stmt)
	if o.err != nil {
		return Value{}, o.err
	}
	return Value{Number: o.value, Present: o.present}, nil
}

// EvaluateProgram runs every statement in order. The result is the value of
// the last statement that produced one; a top-level return ends the run.
func (s *Solver) EvaluateProgram(prog *ast.Program) (Value, error) {
	return s.EvaluateProgramContext(context.Background(), prog)
}

// EvaluateProgramContext is EvaluateProgram with cancellation
func (s *Solver) EvaluateProgramContext(ctx context.Context, prog *ast.Program) (Value, error) {
	defer s.bind(ctx)()

	o := s.block(prog.Statements)
	if o.err != nil {
		return Value{}, o.err
	}
	s.logger.Debug("program evaluated", frglog.Fields{
		"statements": len(prog.Statements),
		"present":    o.present,
	})
	return Value{Number: o.value, Present: o.present}, nil
}

func (s *Solver) bind(ctx context.Context) func() {
	if ctx == nil {
		ctx = context.Background()
	}
	prev := s.ctx
	s.ctx = ctx
	return func() { s.ctx = prev }
}

// Lookup resolves name from the innermost scope outwards
func (s *Solver) Lookup(name string) (float64, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i][name]; ok {
			return v, true
		}
	}
	return 0, false
}

// Variables returns the visible bindings, inner scopes shadowing outer ones
func (s *Solver) Variables() map[string]float64 {
	out := make(map[string]float64)
	for _, scope := range s.scopes {
		for k, v := range scope {
			out[k] = v
		}
	}
	return out
}

// Functions returns the declared function names, sorted
func (s *Solver) Functions() []string {
	names := make([]string, 0, len(s.functions))
	for name := range s.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Function returns the declaration registered under name
func (s *Solver) Function(name string) (*ast.FunctionStatement, bool) {
	fn, ok := s.functions[name]
	return fn, ok
}

// Depth returns the number of scopes on the stack
func (s *Solver) Depth() int {
	return len(s.scopes)
}

func (s *Solver) eval(n ast.Node) outcome {
	if n == nil {
		return outcome{}
	}
	return n.Accept(s).(outcome)
}

func (s *Solver) push(scope Scope) {
	s.scopes = append(s.scopes, scope)
}

func (s *Solver) pop() {
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// block runs statements until one faults or signals a return. The outcome
// carries the last produced value.
func (s *Solver) block(stmts []ast.Statement) outcome {
	var last outcome
	for _, stmt := range stmts {
		o := s.eval(stmt)
		if o.err != nil || o.returned {
			return o
		}
		if o.present {
			last = o
		}
	}
	return last
}

func (s *Solver) fault(code frgerror.Code, tok token.Token, format string, args ...interface{}) outcome {
	err := frgerror.Newf(format, args...).
		WithCode(code).
		WithOperation("evaluate").
		WithDetails(map[string]interface{}{
			"name":   tok.Span.Literal,
			"offset": tok.Span.Start,
			"line":   tok.Line,
			"column": tok.Column,
		})
	return outcome{err: err}
}

// Statements

func (s *Solver) VisitExpressionStatement(st *ast.ExpressionStatement) interface{} {
	return s.eval(st.Expr)
}

func (s *Solver) VisitLetStatement(st *ast.LetStatement) interface{} {
	o := s.eval(st.Initializer)
	if o.err != nil {
		return o
	}
	s.scopes[len(s.scopes)-1][st.Name.Span.Literal] = o.value
	return number(o.value)
}

func (s *Solver) VisitReturnStatement(st *ast.ReturnStatement) interface{} {
	o := s.eval(st.Value)
	if o.err != nil {
		return o
	}
	return outcome{value: o.value, present: true, returned: true}
}

func (s *Solver) VisitFunctionStatement(st *ast.FunctionStatement) interface{} {
	name := st.Name.Span.Literal
	s.functions[name] = st
	if !s.separate {
		s.scopes[len(s.scopes)-1][name] = 0
	}
	s.logger.Debug("function declared", frglog.Fields{"name": name, "params": len(st.Params)})
	return outcome{}
}

func (s *Solver) VisitConditionalStatement(st *ast.ConditionalStatement) interface{} {
	cond := s.eval(st.Condition)
	if cond.err != nil {
		return cond
	}
	if cond.value != 0 {
		return s.eval(st.Then)
	}
	if st.Else != nil {
		return s.eval(st.Else)
	}
	return outcome{}
}

func (s *Solver) VisitCompoundStatement(st *ast.CompoundStatement) interface{} {
	s.push(Scope{})
	defer s.pop()
	return s.block(st.Statements)
}

// Expressions

func (s *Solver) VisitIntegerLiteral(e *ast.IntegerLiteral) interface{} {
	return number(float64(e.Value))
}

func (s *Solver) VisitFloatLiteral(e *ast.FloatLiteral) interface{} {
	return number(e.Value)
}

func (s *Solver) VisitVariable(e *ast.Variable) interface{} {
	name := e.Name.Span.Literal
	v, ok := s.Lookup(name)
	if !ok {
		return s.fault(frgerror.CodeUndefinedVariable, e.Name,
			"undefined variable '%s' at %d:%d", name, e.Name.Line, e.Name.Column)
	}
	return number(v)
}

func (s *Solver) VisitAssignment(e *ast.Assignment) interface{} {
	name := e.Name.Span.Literal
	o := s.eval(e.Value)
	if o.err != nil {
		return o
	}
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if _, ok := s.scopes[i][name]; ok {
			s.scopes[i][name] = o.value
			return number(o.value)
		}
	}
	return s.fault(frgerror.CodeUndefinedVariable, e.Name,
		"assignment to undefined variable '%s' at %d:%d", name, e.Name.Line, e.Name.Column)
}

func (s *Solver) VisitBinary(e *ast.Binary) interface{} {
	left := s.eval(e.Left)
	if left.err != nil {
		return left
	}
	right := s.eval(e.Right)
	if right.err != nil {
		return right
	}
	l, r := left.value, right.value

	switch e.Operator.Kind {
	case ast.Plus:
		return number(l + r)
	case ast.Minus:
		return number(l - r)
	case ast.Multiply:
		return number(l * r)
	case ast.Divide:
		return number(l / r)
	case ast.BitwiseOr:
		return number(float64(toInt(l) | toInt(r)))
	case ast.BitwiseAnd:
		return number(float64(toInt(l) & toInt(r)))
	case ast.BitwiseXor:
		return number(float64(toInt(l) ^ toInt(r)))
	case ast.Equal:
		return truth(l == r)
	case ast.NotEqual:
		return truth(l != r)
	case ast.Less:
		return truth(l < r)
	case ast.LessEqual:
		return truth(l <= r)
	case ast.Greater:
		return truth(l > r)
	case ast.GreaterEqual:
		return truth(l >= r)
	case ast.LogicalAnd:
		return truth(l != 0 && r != 0)
	case ast.LogicalOr:
		return truth(l != 0 || r != 0)
	}
	return s.fault(frgerror.CodeUnevaluable, e.Operator.Token,
		"unsupported operator %s", e.Operator.Kind)
}

func (s *Solver) VisitUnary(e *ast.Unary) interface{} {
	o := s.eval(e.Operand)
	if o.err != nil {
		return o
	}
	switch e.Operator.Kind {
	case ast.Negate:
		return number(-o.value)
	case ast.LogicalNot:
		return truth(o.value == 0)
	case ast.BitwiseNot:
		return number(float64(^toInt(o.value)))
	}
	return s.fault(frgerror.CodeUnevaluable, e.Operator.Token,
		"unsupported operator %s", e.Operator.Kind)
}

func (s *Solver) VisitParenthesized(e *ast.Parenthesized) interface{} {
	return s.eval(e.Inner)
}

func (s *Solver) VisitFunctionCall(e *ast.FunctionCall) interface{} {
	name := e.Name.Span.Literal
	fn, ok := s.functions[name]
	if !ok {
		if _, bound := s.Lookup(name); bound {
			return s.fault(frgerror.CodeNotCallable, e.Name,
				"'%s' is a variable, not a function (%d:%d)", name, e.Name.Line, e.Name.Column)
		}
		return s.fault(frgerror.CodeUndefinedFunction, e.Name,
			"undefined function '%s' at %d:%d", name, e.Name.Line, e.Name.Column)
	}

	if err := s.ctx.Err(); err != nil {
		code := frgerror.CodeCanceled
		if errors.Is(err, context.DeadlineExceeded) {
			code = frgerror.CodeTimeout
		}
		return outcome{err: frgerror.Wrap(err, "evaluation interrupted").WithCode(code).WithOperation("evaluate")}
	}
	if s.callDepth >= s.maxCallDepth {
		s.logger.Warn("call depth limit reached", frglog.Fields{"name": name, "limit": s.maxCallDepth})
		return s.fault(frgerror.CodeRecursionLimit, e.Name,
			"call depth limit %d exceeded calling '%s'", s.maxCallDepth, name)
	}

	args := make([]float64, 0, len(e.Args))
	for _, a := range e.Args {
		o := s.eval(a)
		if o.err != nil {
			return o
		}
		args = append(args, o.value)
	}

	frame := make(Scope, len(fn.Params))
	for i, p := range fn.Params {
		if i >= len(args) {
			break
		}
		frame[p.Span.Literal] = args[i]
	}

	s.callDepth++
	s.push(frame)
	defer func() {
		s.pop()
		s.callDepth--
	}()

	o := s.block(fn.Body)
	if o.err != nil {
		return o
	}
	if !o.present {
		return number(0)
	}
	return number(o.value)
}

func (s *Solver) VisitError(e *ast.Error) interface{} {
	tok := e.Offending
	if tok.Kind == token.EOF {
		return s.fault(frgerror.CodeUnevaluable, tok,
			"cannot evaluate incomplete input at %d:%d", tok.Line, tok.Column)
	}
	return s.fault(frgerror.CodeUnevaluable, tok,
		"cannot evaluate %s at %d:%d", tok.Describe(), tok.Line, tok.Column)
}

// toInt truncates toward zero. NaN and out-of-range values saturate so the
// conversion stays deterministic across platforms.
func toInt(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64
	}
	return int64(v)
}
