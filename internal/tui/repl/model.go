// ============================================================================
// frege - small language front end
// ============================================================================
//
// Package:     repl
// Description: Bubbletea model for the interactive read-eval-print loop
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

// Package repl implements the interactive terminal session. Every line
// is evaluated in one persistent engine session, so bindings and
// functions survive between lines until :reset.
package repl

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/msto63/frege/foundation/lang"
	"github.com/msto63/frege/foundation/lang/diagnostics"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/frege/store"
	"github.com/msto63/frege/internal/printer"
)

const helpText = `Befehle:
  :ast     Syntaxbaum nach jeder Zeile an/aus
  :vars    Variablen der Sitzung anzeigen
  :funcs   Funktionen der Sitzung anzeigen
  :reset   Sitzung zurücksetzen
  :clear   Ausgabe leeren
  :quit    Beenden`

// Config holds REPL configuration
type Config struct {
	Prompt  string
	ShowAST bool
	// Plain disables colours in syntax trees
	Plain bool
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Prompt: "frege> ",
	}
}

// Model is the main Bubbletea model for the REPL
type Model struct {
	// State
	width      int
	height     int
	ready      bool
	evaluating bool
	showAST    bool
	runs       int

	// Components
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	service *service.Service
	engine  *lang.Engine
	printer *printer.Printer

	lines   []line
	history []string
	histPos int
}

// New creates a REPL model with a fresh session of svc
func New(svc *service.Service, cfg Config) Model {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultConfig().Prompt
	}

	ti := textinput.New()
	ti.Prompt = cfg.Prompt
	ti.Placeholder = "Ausdruck oder :help"
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	return Model{
		input:   ti,
		spinner: sp,
		service: svc,
		engine:  svc.NewSession(),
		printer: printer.New(printer.Options{Plain: cfg.Plain}),
		showAST: cfg.ShowAST,
		lines:   []line{{kind: lineInfo, text: "Eingabe :help für Befehle"}},
	}
}

// Session returns the identifier of the REPL's engine session
func (m Model) Session() string {
	return m.engine.Session()
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2 // Title + blank line
		footerHeight := 5 // Input box + status bar + help
		viewportHeight := max(msg.Height-headerHeight-footerHeight, 1)

		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.input.Width = max(msg.Width-len(m.input.Prompt)-6, 10)
		m.updateViewportContent()

	case spinner.TickMsg:
		if m.evaluating {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case evalDoneMsg:
		m.evaluating = false
		m.runs++
		m.appendResult(msg)
		m.updateViewportContent()

	default:
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		if m.evaluating {
			return m, nil
		}
		return m.submit()

	case tea.KeyUp:
		if len(m.history) > 0 && m.histPos > 0 {
			m.histPos--
			m.input.SetValue(m.history[m.histPos])
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyDown:
		if m.histPos < len(m.history)-1 {
			m.histPos++
			m.input.SetValue(m.history[m.histPos])
			m.input.CursorEnd()
		} else {
			m.histPos = len(m.history)
			m.input.SetValue("")
		}
		return m, nil

	case tea.KeyPgUp:
		m.viewport.ViewUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit takes the current input line and runs it as command or source
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if text == "" {
		return m, nil
	}

	m.history = append(m.history, text)
	m.histPos = len(m.history)
	m.lines = append(m.lines, line{kind: lineEcho, text: m.input.Prompt + text})

	if strings.HasPrefix(text, ":") {
		cmd := m.command(text)
		m.updateViewportContent()
		return m, cmd
	}

	m.evaluating = true
	m.updateViewportContent()
	return m, tea.Batch(m.spinner.Tick, m.evaluate(text))
}

// command runs a colon command
func (m *Model) command(text string) tea.Cmd {
	switch fields := strings.Fields(text); fields[0] {
	case ":quit", ":q", ":exit":
		return tea.Quit

	case ":help", ":h":
		m.info(helpText)

	case ":ast":
		m.showAST = !m.showAST
		if m.showAST {
			m.info("Syntaxbaum: an")
		} else {
			m.info("Syntaxbaum: aus")
		}

	case ":reset":
		m.engine.Reset()
		m.info("Sitzung zurückgesetzt")

	case ":vars":
		m.info(formatVariables(m.engine.Variables()))

	case ":funcs":
		funcs := m.engine.Functions()
		if len(funcs) == 0 {
			m.info("keine Funktionen")
		} else {
			m.info(strings.Join(funcs, ", "))
		}

	case ":clear":
		m.lines = nil

	default:
		m.lines = append(m.lines, line{kind: lineError, text: "unbekannter Befehl " + fields[0]})
	}
	return nil
}

// evaluate runs source in the session off the UI goroutine
func (m Model) evaluate(source string) tea.Cmd {
	svc, eng, pr, showAST := m.service, m.engine, m.printer, m.showAST
	return func() tea.Msg {
		msg := evalDoneMsg{source: source}
		if showAST {
			if prog, _, err := eng.Parse(source); err == nil {
				msg.tree = pr.Program(prog)
			}
		}
		msg.resp, msg.err = svc.EvaluateIn(context.Background(), eng, source, store.OriginREPL)
		return msg
	}
}

func (m *Model) appendResult(msg evalDoneMsg) {
	if msg.tree != "" {
		m.lines = append(m.lines, line{kind: lineTree, text: strings.TrimRight(msg.tree, "\n")})
	}

	resp := msg.resp
	if resp == nil {
		if msg.err != nil {
			m.lines = append(m.lines, line{kind: lineError, text: "Fehler: " + msg.err.Error()})
		}
		return
	}

	for _, d := range resp.Diagnostics {
		kind := lineError
		if d.Severity == diagnostics.SeverityWarning {
			kind = lineWarning
		}
		m.lines = append(m.lines, line{kind: kind, text: d.String()})
	}

	switch {
	case resp.Error != "":
		m.lines = append(m.lines, line{kind: lineError, text: fmt.Sprintf("Fehler [%s]: %s", resp.ErrorCode, resp.Error)})
	case resp.HasValue:
		m.lines = append(m.lines, line{kind: lineResult, text: "= " + resp.Value})
	}
}

func (m *Model) info(text string) {
	m.lines = append(m.lines, line{kind: lineInfo, text: text})
}

func formatVariables(vars map[string]float64) string {
	if len(vars) == 0 {
		return "keine Variablen"
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(name + " = " + strconv.FormatFloat(vars[name], 'g', -1, 64))
	}
	return b.String()
}

// updateViewportContent renders the scrollback into the viewport
func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderLines())
	m.viewport.GotoBottom()
}

func (m Model) renderLines() string {
	rendered := make([]string, 0, len(m.lines))
	for _, l := range m.lines {
		switch l.kind {
		case lineEcho:
			rendered = append(rendered, EchoStyle.Render(l.text))
		case lineResult:
			rendered = append(rendered, ResultStyle.Render(l.text))
		case lineWarning:
			rendered = append(rendered, WarningStyle.Render(l.text))
		case lineError:
			rendered = append(rendered, ErrorStyle.Render(l.text))
		case lineTree:
			// already styled by the printer
			rendered = append(rendered, l.text)
		default:
			rendered = append(rendered, InfoStyle.Render(l.text))
		}
	}
	return strings.Join(rendered, "\n")
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Lade REPL..."
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("frege") + " " + SubtitleStyle.Render("interaktive Sitzung"))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(InputStyle.Width(max(m.width-2, 10)).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("Enter: auswerten  ↑/↓: Verlauf  PgUp/PgDn: blättern  :help  Esc: beenden"))
	return b.String()
}

func (m Model) renderStatusBar() string {
	session := m.engine.Session()
	if len(session) > 8 {
		session = session[:8]
	}

	ast := "aus"
	if m.showAST {
		ast = "an"
	}
	status := fmt.Sprintf("Sitzung %s  Läufe %d  Syntaxbaum %s", session, m.runs, ast)
	if m.evaluating {
		status = m.spinner.View() + " " + status
	}
	return StatusBarStyle.Width(max(m.width, 10)).Render(status)
}

// Run starts the REPL on the terminal and blocks until it exits
func Run(svc *service.Service, cfg Config) error {
	p := tea.NewProgram(New(svc, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
