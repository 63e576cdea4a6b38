// File: engine.go
// Title: Evaluation Engine
// Description: Facade tying lexer, parser, checker and solver together.
//              An Engine is one session: variables and functions persist
//              across Run calls until Reset.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package lang

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	frgerror "github.com/msto63/frege/foundation/core/error"
	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/lang/ast"
	"github.com/msto63/frege/foundation/lang/checker"
	"github.com/msto63/frege/foundation/lang/diagnostics"
	"github.com/msto63/frege/foundation/lang/parser"
	"github.com/msto63/frege/foundation/lang/solver"
)

// DefaultMaxSourceBytes limits the size of one unit
const DefaultMaxSourceBytes = 1 << 20

// Options configures an Engine
type Options struct {
	Logger             *frglog.Logger
	MaxDepth           int
	MaxCallDepth       int
	MaxSourceBytes     int
	SeparateNamespaces bool
	// SkipCheck disables the name-resolution warnings
	SkipCheck bool
}

// Result describes one evaluated unit
type Result struct {
	RunID       string
	Session     string
	Source      string
	Program     *ast.Program
	Value       solver.Value
	Diagnostics []diagnostics.Diagnostic
	Err         error
	Duration    time.Duration
}

// HasValue reports whether the unit produced a value without failing
func (r *Result) HasValue() bool {
	return r.Err == nil && r.Value.Present
}

// Engine evaluates units of source text in one persistent session. Run
// calls on the same Engine are serialized.
type Engine struct {
	opts    Options
	session string
	solver  *solver.Solver
	logger  *frglog.Logger
	mu      sync.Mutex
}

// New creates an engine with a fresh session
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = frglog.GetDefault()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = parser.DefaultMaxDepth
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = solver.DefaultMaxCallDepth
	}
	if opts.MaxSourceBytes <= 0 {
		opts.MaxSourceBytes = DefaultMaxSourceBytes
	}

	session := uuid.NewString()
	logger := opts.Logger.WithSession(session).WithField("component", "lang-engine")
	return &Engine{
		opts:    opts,
		session: session,
		logger:  logger,
		solver: solver.New(solver.Options{
			Logger:             opts.Logger.WithSession(session),
			MaxCallDepth:       opts.MaxCallDepth,
			SeparateNamespaces: opts.SeparateNamespaces,
		}),
	}
}

// Session returns the session identifier
func (e *Engine) Session() string {
	return e.session
}

// Options returns the effective options
func (e *Engine) Options() Options {
	return e.opts
}

// Parse lexes and parses source. Syntax problems are reported through the
// returned collection; the error is only set for rejected input.
func (e *Engine) Parse(source string) (*ast.Program, *diagnostics.Collection, error) {
	if err := e.validate(source); err != nil {
		return nil, nil, err
	}

	diags := diagnostics.New()
	p, err := parser.FromSource(source, diags, parser.Options{
		Logger:   e.opts.Logger,
		MaxDepth: e.opts.MaxDepth,
	})
	if err != nil {
		return nil, nil, err
	}
	return p.ParseProgram(), diags, nil
}

func (e *Engine) validate(source string) error {
	if strings.TrimSpace(source) == "" {
		return frgerror.New("empty input").
			WithCode(frgerror.CodeInvalidInput).
			WithOperation("parse")
	}
	if len(source) > e.opts.MaxSourceBytes {
		return frgerror.Newf("input of %d bytes exceeds the limit of %d", len(source), e.opts.MaxSourceBytes).
			WithCode(frgerror.CodeInvalidInput).
			WithOperation("parse").
			WithDetail("size", len(source)).
			WithDetail("limit", e.opts.MaxSourceBytes)
	}
	return nil
}

// Check appends name-resolution warnings for prog, taking the bindings
// already present in the session into account.
func (e *Engine) Check(prog *ast.Program, diags *diagnostics.Collection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.check(prog, diags)
}

func (e *Engine) check(prog *ast.Program, diags *diagnostics.Collection) {
	c := checker.New(diags, checker.Options{SeparateNamespaces: e.opts.SeparateNamespaces})
	for name := range e.solver.Variables() {
		c.Declare(name)
	}
	for _, name := range e.solver.Functions() {
		if fn, ok := e.solver.Function(name); ok {
			c.DeclareFunction(fn)
		}
	}
	c.Check(prog)
}

// Run parses, checks and evaluates source in the session. The returned
// error is also stored in Result.Err; a unit with syntax errors is not
// evaluated and fails with SYNTAX.
func (e *Engine) Run(ctx context.Context, source string) (*Result, error) {
	prog, diags, err := e.Parse(source)
	if err != nil {
		res := &Result{RunID: uuid.NewString(), Session: e.session, Source: source, Err: err}
		e.logger.WithRunID(res.RunID).LogError(err)
		return res, err
	}
	return e.RunProgram(ctx, source, prog, diags)
}

// RunProgram evaluates an already parsed unit. diags holds the parse
// diagnostics; checker warnings are appended to a copy.
func (e *Engine) RunProgram(ctx context.Context, source string, prog *ast.Program, diags *diagnostics.Collection) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := &Result{
		RunID:   uuid.NewString(),
		Session: e.session,
		Source:  source,
		Program: prog,
	}
	logger := e.logger.WithRunID(res.RunID)
	timer := logger.StartTimer("evaluate").WithField("statements", len(prog.Statements))

	all := diagnostics.New()
	if diags != nil {
		all.Append(diags.Items()...)
	}
	if !e.opts.SkipCheck {
		e.check(prog, all)
		timer.Checkpoint("checked", frglog.Fields{"warnings": len(all.Warnings())})
	}
	res.Diagnostics = all.Items()

	if err := all.Err(); err != nil {
		res.Err = err
		res.Duration = timer.StopWithResult(false, frglog.Fields{"errors": len(all.Errors())})
		return res, err
	}

	if err := ctx.Err(); err != nil {
		code := frgerror.CodeCanceled
		if errors.Is(err, context.DeadlineExceeded) {
			code = frgerror.CodeTimeout
		}
		res.Err = frgerror.Wrap(err, "evaluation not started").
			WithCode(code).
			WithOperation("evaluate")
		res.Duration = timer.StopWithResult(false, string(code))
		return res, res.Err
	}

	value, err := e.solver.EvaluateProgramContext(ctx, prog)
	if err != nil {
		res.Err = err
		res.Duration = timer.StopWithError(err)
		return res, err
	}
	res.Value = value
	res.Duration = timer.Stop()
	return res, nil
}

// Reset clears the session state
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.solver.Reset()
	e.logger.Debug("session reset")
}

// Variables returns the bindings visible at top level
func (e *Engine) Variables() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.solver.Variables()
}

// Functions returns the declared function names
func (e *Engine) Functions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.solver.Functions()
}
