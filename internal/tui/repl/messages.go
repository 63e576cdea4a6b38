package repl

import (
	"github.com/msto63/frege/internal/frege/service"
)

// Message types for tea.Cmd async operations

// evalDoneMsg is sent when a line has been evaluated
type evalDoneMsg struct {
	source string
	resp   *service.EvaluateResponse
	tree   string
	err    error
}

// lineKind selects the style of a scrollback line
type lineKind int

const (
	lineEcho lineKind = iota
	lineResult
	lineWarning
	lineError
	lineInfo
	lineTree
)

// line is one entry of the scrollback
type line struct {
	kind lineKind
	text string
}
