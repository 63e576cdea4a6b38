// Package printer renders syntax trees and diagnostics for terminals.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/msto63/frege/foundation/lang/ast"
	"github.com/msto63/frege/foundation/lang/diagnostics"
)

// Options configures a Printer
type Options struct {
	// Plain disables colour
	Plain bool
	// Positions appends line:column to every node label
	Positions bool
}

// Printer renders trees as branch diagrams:
//
//	Program
//	└── ExpressionStatement
//	    └── Binary +
//	        ├── Integer 1
//	        └── Integer 2
type Printer struct {
	opts   Options
	styles Styles
}

// New creates a printer
func New(opts Options) *Printer {
	styles := DefaultStyles()
	if opts.Plain {
		styles = PlainStyles()
	}
	return &Printer{opts: opts, styles: styles}
}

// Sprint renders prog with the given options
func Sprint(prog *ast.Program, opts Options) string {
	return New(opts).Program(prog)
}

// Fprint writes the rendered tree of prog to w
func Fprint(w io.Writer, prog *ast.Program, opts Options) error {
	_, err := io.WriteString(w, Sprint(prog, opts))
	return err
}

// Program renders every top-level statement under a Program root
func (p *Printer) Program(prog *ast.Program) string {
	root := branch{label: p.styles.Kind.Render("Program")}
	if prog != nil {
		root.children = p.statements(prog.Statements)
	}
	return p.render(root)
}

// Node renders a single subtree
func (p *Printer) Node(n ast.Node) string {
	return p.render(p.one(n))
}

// Value renders an evaluation result
func (p *Printer) Value(s string) string {
	return p.styles.Value.Render(s)
}

// Diagnostics renders items as line:col: severity: message, coloured by
// severity
func (p *Printer) Diagnostics(items []diagnostics.Diagnostic) string {
	var b strings.Builder
	for _, d := range items {
		style := p.styles.Error
		if d.Severity == diagnostics.SeverityWarning {
			style = p.styles.Warning
		}
		fmt.Fprintf(&b, "%d:%d: %s: %s\n", d.Line, d.Column, style.Render(d.Severity.String()), d.Message)
	}
	return b.String()
}

// Error renders err in the error style
func (p *Printer) Error(err error) string {
	return p.styles.Error.Render("Fehler: ") + err.Error()
}

type branch struct {
	label    string
	children []branch
}

func (p *Printer) render(root branch) string {
	var b strings.Builder
	b.WriteString(root.label)
	b.WriteByte('\n')
	p.children(&b, root.children, "")
	return b.String()
}

func (p *Printer) children(b *strings.Builder, list []branch, prefix string) {
	for i, c := range list {
		connector, indent := "├── ", "│   "
		if i == len(list)-1 {
			connector, indent = "└── ", "    "
		}
		b.WriteString(p.styles.Branch.Render(prefix + connector))
		b.WriteString(c.label)
		b.WriteByte('\n')
		p.children(b, c.children, prefix+indent)
	}
}

func (p *Printer) one(n ast.Node) branch {
	if n == nil {
		return branch{label: p.styles.Error.Render("<nil>")}
	}
	return n.Accept(p).(branch)
}

func (p *Printer) statements(list []ast.Statement) []branch {
	out := make([]branch, 0, len(list))
	for _, s := range list {
		out = append(out, p.one(s))
	}
	return out
}

func (p *Printer) label(n ast.Node, kind string, rest ...string) string {
	parts := append([]string{p.styles.Kind.Render(kind)}, rest...)
	if p.opts.Positions {
		tok := n.Token()
		parts = append(parts, p.styles.Branch.Render(fmt.Sprintf("@%d:%d", tok.Line, tok.Column)))
	}
	return strings.Join(parts, " ")
}

func (p *Printer) VisitExpressionStatement(s *ast.ExpressionStatement) interface{} {
	return branch{label: p.label(s, "ExpressionStatement"), children: []branch{p.one(s.Expr)}}
}

func (p *Printer) VisitLetStatement(s *ast.LetStatement) interface{} {
	return branch{
		label:    p.label(s, "Let", p.styles.Name.Render(s.Name.Literal())),
		children: []branch{p.one(s.Initializer)},
	}
}

func (p *Printer) VisitReturnStatement(s *ast.ReturnStatement) interface{} {
	return branch{label: p.label(s, "Return"), children: []branch{p.one(s.Value)}}
}

func (p *Printer) VisitFunctionStatement(s *ast.FunctionStatement) interface{} {
	params := make([]string, 0, len(s.Params))
	for _, t := range s.Params {
		params = append(params, p.styles.Name.Render(t.Literal()))
	}
	sig := p.styles.Name.Render(s.Name.Literal()) + "(" + strings.Join(params, ", ") + ")"
	return branch{label: p.label(s, "Function", sig), children: p.statements(s.Body)}
}

func (p *Printer) VisitConditionalStatement(s *ast.ConditionalStatement) interface{} {
	children := []branch{
		{label: p.styles.Branch.Render("condition"), children: []branch{p.one(s.Condition)}},
		{label: p.styles.Branch.Render("then"), children: []branch{p.one(s.Then)}},
	}
	if s.Else != nil {
		children = append(children, branch{label: p.styles.Branch.Render("else"), children: []branch{p.one(s.Else)}})
	}
	return branch{label: p.label(s, "If"), children: children}
}

func (p *Printer) VisitCompoundStatement(s *ast.CompoundStatement) interface{} {
	return branch{label: p.label(s, "Block"), children: p.statements(s.Statements)}
}

func (p *Printer) VisitIntegerLiteral(e *ast.IntegerLiteral) interface{} {
	return branch{label: p.label(e, "Integer", p.styles.Literal.Render(e.Literal.Literal()))}
}

func (p *Printer) VisitFloatLiteral(e *ast.FloatLiteral) interface{} {
	return branch{label: p.label(e, "Float", p.styles.Literal.Render(e.Literal.Literal()))}
}

func (p *Printer) VisitVariable(e *ast.Variable) interface{} {
	return branch{label: p.label(e, "Variable", p.styles.Name.Render(e.Name.Literal()))}
}

func (p *Printer) VisitAssignment(e *ast.Assignment) interface{} {
	return branch{
		label:    p.label(e, "Assign", p.styles.Name.Render(e.Name.Literal())),
		children: []branch{p.one(e.Value)},
	}
}

func (p *Printer) VisitBinary(e *ast.Binary) interface{} {
	return branch{
		label:    p.label(e, "Binary", p.styles.Operator.Render(e.Operator.Kind.Symbol())),
		children: []branch{p.one(e.Left), p.one(e.Right)},
	}
}

func (p *Printer) VisitUnary(e *ast.Unary) interface{} {
	return branch{
		label:    p.label(e, "Unary", p.styles.Operator.Render(e.Operator.Kind.Symbol())),
		children: []branch{p.one(e.Operand)},
	}
}

func (p *Printer) VisitParenthesized(e *ast.Parenthesized) interface{} {
	return branch{label: p.label(e, "Group"), children: []branch{p.one(e.Inner)}}
}

func (p *Printer) VisitFunctionCall(e *ast.FunctionCall) interface{} {
	args := make([]branch, 0, len(e.Args))
	for _, a := range e.Args {
		args = append(args, p.one(a))
	}
	return branch{label: p.label(e, "Call", p.styles.Name.Render(e.Name.Literal())), children: args}
}

func (p *Printer) VisitError(e *ast.Error) interface{} {
	return branch{label: p.styles.Error.Render("Error") + " " + e.Offending.Describe()}
}
