// File: diagnostics.go
// Title: Diagnostics Collection
// Description: Append-only collector of structured problem reports produced
//              by the parser and the symbol checker. Reports carry a code,
//              a severity and the span of the offending token and can be
//              rendered with a caret excerpt of the source line.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package diagnostics

import (
	"fmt"
	"strings"
	"unicode/utf8"

	frgerror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/foundation/lang/token"
)

// Severity of a diagnostic
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the lower-case name of the severity
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// MarshalText encodes the severity by name
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	default:
		return frgerror.Newf("unknown severity %q", string(text)).WithCode(frgerror.CodeInvalidInput)
	}
	return nil
}

// Code classifies a diagnostic
type Code string

const (
	CodeUnexpectedToken    Code = "unexpected-token"
	CodeExpectedExpression Code = "expected-expression"
	CodeInvalidLiteral     Code = "invalid-literal"
	CodeTooDeep            Code = "too-deep"
	CodeUnexpectedComma    Code = "unexpected-comma"
	CodeMissingClosing     Code = "missing-closing"
	CodeUndefinedVariable  Code = "undefined-variable"
	CodeUndefinedFunction  Code = "undefined-function"
	CodeArityMismatch      Code = "arity-mismatch"
	CodeDuplicateParameter Code = "duplicate-parameter"
)

// Diagnostic is a single report
type Diagnostic struct {
	Code     Code       `json:"code"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Span     token.Span `json:"-"`
	Line     int        `json:"line"`
	Column   int        `json:"column"`
}

// String renders the diagnostic as line:col: severity: message
func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Line, d.Column, d.Severity, d.Message)
}

// Collection accumulates diagnostics in report order
type Collection struct {
	items []Diagnostic
}

// New creates an empty collection
func New() *Collection {
	return &Collection{}
}

func (c *Collection) add(code Code, severity Severity, at token.Token, format string, args ...interface{}) {
	c.items = append(c.items, Diagnostic{
		Code:     code,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Span:     at.Span,
		Line:     at.Line,
		Column:   at.Column,
	})
}

// ReportUnexpectedToken records that expected was required but actual was found
func (c *Collection) ReportUnexpectedToken(expected token.Kind, actual token.Token) {
	c.add(CodeUnexpectedToken, SeverityError, actual,
		"expected '%s', found %s", expected.Symbol(), actual.Describe())
}

// ReportExpectedExpression records a token that cannot start an expression
func (c *Collection) ReportExpectedExpression(actual token.Token) {
	c.add(CodeExpectedExpression, SeverityError, actual,
		"expected an expression, found %s", actual.Describe())
}

// ReportInvalidLiteral records a numeric literal that does not convert
func (c *Collection) ReportInvalidLiteral(literal token.Token) {
	c.add(CodeInvalidLiteral, SeverityError, literal,
		"invalid %s literal %s", literal.Kind.Symbol(), literal.Describe())
}

// ReportTooDeep records that the nesting limit was exceeded at tok
func (c *Collection) ReportTooDeep(tok token.Token, limit int) {
	c.add(CodeTooDeep, SeverityError, tok, "nesting too deep (limit %d)", limit)
}

// ReportUnexpectedComma records a leading or doubled comma in a list
func (c *Collection) ReportUnexpectedComma(comma token.Token) {
	c.add(CodeUnexpectedComma, SeverityError, comma, "unexpected ','")
}

// ReportMissingClosing records that open was never closed by closing
func (c *Collection) ReportMissingClosing(open token.Token, closing token.Kind, actual token.Token) {
	c.add(CodeMissingClosing, SeverityError, actual,
		"expected '%s' to close '%s' at %d:%d, found %s",
		closing.Symbol(), open.Span.Literal, open.Line, open.Column, actual.Describe())
}

// ReportUndefinedVariable warns about a name that no enclosing scope binds
func (c *Collection) ReportUndefinedVariable(name token.Token) {
	c.add(CodeUndefinedVariable, SeverityWarning, name, "undefined variable '%s'", name.Span.Literal)
}

// ReportUndefinedFunction warns about a call to an undeclared function
func (c *Collection) ReportUndefinedFunction(name token.Token) {
	c.add(CodeUndefinedFunction, SeverityWarning, name, "undefined function '%s'", name.Span.Literal)
}

// ReportArityMismatch warns about a call with the wrong number of arguments
func (c *Collection) ReportArityMismatch(name token.Token, params, args int) {
	c.add(CodeArityMismatch, SeverityWarning, name,
		"function '%s' takes %d argument(s), called with %d", name.Span.Literal, params, args)
}

// ReportDuplicateParameter warns about a parameter name used twice
func (c *Collection) ReportDuplicateParameter(param token.Token) {
	c.add(CodeDuplicateParameter, SeverityWarning, param, "duplicate parameter '%s'", param.Span.Literal)
}

// Append adds diagnostics reported elsewhere, e.g. restored from a cache
func (c *Collection) Append(items ...Diagnostic) {
	c.items = append(c.items, items...)
}

// Items returns a copy of all diagnostics in report order
func (c *Collection) Items() []Diagnostic {
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of diagnostics
func (c *Collection) Len() int {
	return len(c.items)
}

// HasErrors reports whether any diagnostic has error severity
func (c *Collection) HasErrors() bool {
	for _, d := range c.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-severity diagnostics
func (c *Collection) Errors() []Diagnostic {
	return c.filter(SeverityError)
}

// Warnings returns the warning-severity diagnostics
func (c *Collection) Warnings() []Diagnostic {
	return c.filter(SeverityWarning)
}

func (c *Collection) filter(s Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.items {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// Err summarises the error diagnostics as a SYNTAX error, nil without errors
func (c *Collection) Err() error {
	errs := c.Errors()
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return frgerror.Newf("%d syntax error(s), first at %s", len(errs), first).
		WithCode(frgerror.CodeSyntax).
		WithDetail("count", len(errs)).
		WithDetail("line", first.Line).
		WithDetail("column", first.Column)
}

// Render formats every diagnostic followed by the source line and a caret
// marker under the offending span.
func (c *Collection) Render(source string) string {
	lines := strings.Split(source, "\n")
	var b strings.Builder

	for _, d := range c.items {
		b.WriteString(d.String())
		b.WriteByte('\n')

		if d.Line < 1 || d.Line > len(lines) {
			continue
		}
		text := strings.TrimRight(lines[d.Line-1], "\r")
		b.WriteString("  ")
		b.WriteString(text)
		b.WriteByte('\n')

		width := utf8.RuneCountInString(d.Span.Literal)
		if width < 1 {
			width = 1
		}
		if rest := utf8.RuneCountInString(text) - (d.Column - 1); width > rest && rest > 0 {
			width = rest
		}
		b.WriteString("  ")
		b.WriteString(strings.Repeat(" ", max(d.Column-1, 0)))
		b.WriteByte('^')
		b.WriteString(strings.Repeat("~", width-1))
		b.WriteByte('\n')
	}

	return b.String()
}
