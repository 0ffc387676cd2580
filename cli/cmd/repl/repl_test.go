package repl

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T, source string) model {
	t.Helper()

	it, out := newSession(t, source)

	return newModel(t.Context(), Session{Interpreter: it, Output: out}, NewHistory(""))
}

func submit(t *testing.T, m model, mode inputMode, line string) model {
	t.Helper()

	if m.mode != mode {
		m = m.switchToMode(mode)
	}

	m.input.SetValue(line)
	m, _ = m.executeInput()

	return m
}

func TestEvaluate(t *testing.T) {
	m := newTestModel(t, playerSource)

	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"expression", "double(player.pos.y)", []string{"4"}, false},
		{"semicolon_kept", "1 + 1;", []string{"2"}, false},
		{"printed_output", `print("hi", 3)`, []string{"hi 3"}, false},
		{"declaration", "var z = 5", []string{"5"}, false},
		{"block", "if (true) { print(1); }", []string{"1"}, false},
		{"syntax_error", "1 +", []string{"error:", "^"}, true},
		{"runtime_error", "nope()", []string{"error:", "nope"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := m.evaluate(tt.input)

			if (err != nil) != tt.wantErr {
				t.Fatalf("evaluate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}

			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("evaluate(%q) = %q, missing %q", tt.input, got, want)
				}
			}
		})
	}
}

func TestExecuteInputSession(t *testing.T) {
	m := newTestModel(t, "var a = 1;")

	m = submit(t, m, modeEval, "var b = a + 1")
	m = submit(t, m, modeEval, "b +")
	m = submit(t, m, modeEval, "function inc(n) { return n + 1; }")

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	want := "var b = a + 1;\nfunction inc(n) { return n + 1; }\n"
	if !strings.HasSuffix(m.source, want) {
		t.Errorf("source = %q, want suffix %q", m.source, want)
	}

	if strings.Contains(m.source, "b +") {
		t.Errorf("failed input recorded in source: %q", m.source)
	}

	if m.history.Len() != 3 || m.historyIdx != 3 {
		t.Errorf("history len = %d, index = %d", m.history.Len(), m.historyIdx)
	}

	if v, ok := m.it.Global("b"); !ok || v.String() != "2" {
		t.Errorf("Global(b) = %v, %v", v, ok)
	}
}

func TestResetCommand(t *testing.T) {
	m := newTestModel(t, "var a = 1;")

	m = submit(t, m, modeEval, "a = 10")
	m = submit(t, m, modeEval, "var b = 2")
	m = submit(t, m, modeCtrl, "reset")

	if _, ok := m.it.Global("b"); ok {
		t.Error("reset kept a session global")
	}

	if v, ok := m.it.Global("a"); !ok || v.String() != "1" {
		t.Errorf("Global(a) after reset = %v, %v", v, ok)
	}

	if strings.Contains(m.source, "var b") {
		t.Errorf("reset kept session source: %q", m.source)
	}

	if m.mode != modeCtrl || m.quitting {
		t.Errorf("mode = %v, quitting = %v", m.mode, m.quitting)
	}
}

func TestCommands(t *testing.T) {
	m := newTestModel(t, playerSource)

	list := m.list()
	for _, want := range []string{"double(n)", "var player", "var scores"} {
		if !strings.Contains(list, want) {
			t.Errorf("list() = %q, missing %q", list, want)
		}
	}

	empty := newTestModel(t, "")
	if got := empty.list(); !strings.Contains(got, "no functions or globals") {
		t.Errorf("empty list() = %q", got)
	}

	m = submit(t, m, modeCtrl, "quit")
	if !m.quitting {
		t.Error("quit did not end the session")
	}
}

func TestHistoryNavigation(t *testing.T) {
	m := newTestModel(t, "")

	m = submit(t, m, modeEval, "1")
	m = submit(t, m, modeCtrl, "help")
	m = submit(t, m, modeEval, "2")

	steps := []struct {
		step     int
		sameMode bool
		want     string
		mode     inputMode
	}{
		{-1, false, "2", modeEval},
		{-1, false, "help", modeCtrl},
		{-1, false, "1", modeEval},
		{-1, false, "1", modeEval},
		{1, false, "help", modeCtrl},
		{1, true, "", modeCtrl},
		{-1, true, "help", modeCtrl},
		{-1, false, "1", modeEval},
		{1, true, "2", modeEval},
		{1, false, "", modeEval},
	}

	for i, s := range steps {
		m = m.historyStep(s.step, s.sameMode)

		if got := m.input.Value(); got != s.want || m.mode != s.mode {
			t.Fatalf("step %d: input = %q mode = %v, want %q mode %v", i, got, m.mode, s.want, s.mode)
		}
	}
}

func TestModeSwitchKeepsInput(t *testing.T) {
	m := newTestModel(t, "")

	m.input.SetValue("1 + ")
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("after Esc mode = %v input = %q", m.mode, m.input.Value())
	}

	m.input.SetValue("li")
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != modeEval || m.input.Value() != "1 + " {
		t.Fatalf("after second Esc mode = %v input = %q", m.mode, m.input.Value())
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})

	if m.input.Value() != "li" {
		t.Errorf("command input not restored: %q", m.input.Value())
	}
}

func TestTabCompletion(t *testing.T) {
	m := newTestModel(t, playerSource)

	m.input.SetValue("x = dou")
	m.input.SetCursor(7)
	refreshMatches(&m, true)

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})

	if got := m.input.Value(); got != "x = double" {
		t.Errorf("single candidate completion = %q", got)
	}

	m.input.SetValue("player.")
	m.input.SetCursor(7)
	refreshMatches(&m, true)

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if got := m.input.Value(); got != "player.name" || !m.tabActive {
		t.Fatalf("first tab = %q, active %v", got, m.tabActive)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if got := m.input.Value(); got != "player.pos" {
		t.Fatalf("second tab = %q", got)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.input.Value(); got != "player." || m.tabActive || m.mode != modeEval {
		t.Errorf("Esc while cycling = %q, active %v, mode %v", got, m.tabActive, m.mode)
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, "")

	m.input.SetValue("pending")
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})

	if m.quitting || m.input.Value() != "" {
		t.Fatalf("Ctrl+C with input: quitting %v, input %q", m.quitting, m.input.Value())
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlD})
	if !m.quitting {
		t.Error("Ctrl+D on empty input did not quit")
	}

	if m.View() != "" {
		t.Error("View() not empty after quitting")
	}
}

func TestHint(t *testing.T) {
	m := newTestModel(t, playerSource)

	if got := m.hint(); !strings.Contains(got, "Esc for commands") {
		t.Errorf("empty eval hint = %q", got)
	}

	m.input.SetValue("arrayPush(a, ")
	m.input.SetCursor(13)

	if got := m.hint(); !strings.Contains(got, "arrayPush") || !strings.Contains(got, "value") {
		t.Errorf("signature hint = %q", got)
	}
}
