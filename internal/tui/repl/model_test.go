package repl

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/lang"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/frege/store"
)

func newTestModel(t *testing.T, cfg Config) (Model, *store.MemoryRunStore) {
	t.Helper()
	runs := store.NewMemoryRunStore()
	scfg := service.DefaultConfig()
	scfg.Engine = lang.Options{Logger: frglog.Discard()}
	scfg.Store = runs
	svc := service.NewService(scfg)
	t.Cleanup(func() { svc.Close() })

	cfg.Plain = true
	m := New(svc, cfg)
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, runs
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// collect runs cmd and every command it batches, returning the messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// enter types text, presses Enter and feeds the evaluation result back
func enter(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})

	for _, msg := range collect(cmd) {
		if done, ok := msg.(evalDoneMsg); ok {
			if !m.evaluating {
				t.Fatalf("model not evaluating while %q runs", text)
			}
			m, _ = update(m, done)
			return m, nil
		}
	}
	return m, cmd
}

func last(m Model) string {
	lines := m.transcript()
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

func TestREPL_EvaluatesInOneSession(t *testing.T) {
	m, runs := newTestModel(t, DefaultConfig())

	m, _ = enter(t, m, "let x = 6")
	if got := last(m); got != "= 6" {
		t.Errorf("after let = %q", got)
	}

	m, _ = enter(t, m, "func sq(n) { return n * n }")
	m, _ = enter(t, m, "sq(x) + 6")
	if got := last(m); got != "= 42" {
		t.Errorf("after call = %q", got)
	}
	if m.runs != 3 {
		t.Errorf("runs = %d, want 3", m.runs)
	}

	got, _ := runs.Query(context.Background(), store.RunFilter{Origin: store.OriginREPL, Session: m.Session()})
	if len(got) != 3 {
		t.Errorf("recorded %d repl runs, want 3", len(got))
	}
}

func TestREPL_Faults(t *testing.T) {
	m, _ := newTestModel(t, DefaultConfig())

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"undefined", "nope + 1", "UNDEFINED_VARIABLE"},
		{"syntax", "(1 + ", "SYNTAX"},
		{"division", "1 / 0", "= +Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ = enter(t, m, tt.source)
			if got := last(m); !strings.Contains(got, tt.want) {
				t.Errorf("last line = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestREPL_Commands(t *testing.T) {
	m, _ := newTestModel(t, DefaultConfig())
	m, _ = enter(t, m, "let b = 2")
	m, _ = enter(t, m, "let a = 1")

	m, _ = enter(t, m, ":vars")
	if got := last(m); got != "a = 1\nb = 2" {
		t.Errorf(":vars = %q", got)
	}

	m, _ = enter(t, m, ":funcs")
	if got := last(m); got != "keine Funktionen" {
		t.Errorf(":funcs = %q", got)
	}

	m, _ = enter(t, m, ":reset")
	m, _ = enter(t, m, ":vars")
	if got := last(m); got != "keine Variablen" {
		t.Errorf(":vars after reset = %q", got)
	}

	m, _ = enter(t, m, ":bogus")
	if got := last(m); got != "unbekannter Befehl :bogus" {
		t.Errorf("unknown command = %q", got)
	}

	m, _ = enter(t, m, ":clear")
	if len(m.transcript()) != 0 {
		t.Errorf("transcript after :clear = %v", m.transcript())
	}

	_, cmd := enter(t, m, ":quit")
	if cmd == nil {
		t.Fatal(":quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error(":quit did not quit")
	}
}

func TestREPL_ShowAST(t *testing.T) {
	m, _ := newTestModel(t, DefaultConfig())

	m, _ = enter(t, m, ":ast")
	m, _ = enter(t, m, "1 + 2")

	joined := strings.Join(m.transcript(), "\n")
	for _, want := range []string{"Program", "Binary +", "Integer 1", "= 3"} {
		if !strings.Contains(joined, want) {
			t.Errorf("transcript missing %q:\n%s", want, joined)
		}
	}

	m, _ = enter(t, m, ":ast")
	before := len(m.transcript())
	m, _ = enter(t, m, "4")
	if added := len(m.transcript()) - before; added != 2 {
		t.Errorf("without tree %d lines were added, want echo and result", added)
	}
}

func TestREPL_HistoryRecall(t *testing.T) {
	m, _ := newTestModel(t, DefaultConfig())
	m, _ = enter(t, m, "1")
	m, _ = enter(t, m, "2")

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.input.Value(); got != "2" {
		t.Errorf("first up = %q", got)
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.input.Value(); got != "1" {
		t.Errorf("second up = %q", got)
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	if got := m.input.Value(); got != "" {
		t.Errorf("down past end = %q", got)
	}
}

func TestREPL_View(t *testing.T) {
	cfg := DefaultConfig()
	runs := store.NewMemoryRunStore()
	scfg := service.DefaultConfig()
	scfg.Engine = lang.Options{Logger: frglog.Discard()}
	scfg.Store = runs
	svc := service.NewService(scfg)
	defer svc.Close()

	m := New(svc, cfg)
	if got := m.View(); got != "Lade REPL..." {
		t.Errorf("View() before size = %q", got)
	}

	m, _ = update(m, tea.WindowSizeMsg{Width: 60, Height: 20})
	view := m.View()
	if !strings.Contains(view, "frege") || !strings.Contains(view, "Sitzung "+m.Session()[:8]) {
		t.Errorf("View() = %q", view)
	}
}

// transcript returns the scrollback without styling
func (m Model) transcript() []string {
	out := make([]string, 0, len(m.lines))
	for _, l := range m.lines {
		out = append(out, l.text)
	}
	return out
}
