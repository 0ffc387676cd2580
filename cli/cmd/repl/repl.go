// Package repl implements the interactive dopa session: a bubbletea line
// editor that evaluates each submitted line as a continuation of the
// loaded program, with fuzzy completion, signature hints, persisted
// history and whole-program editing in $EDITOR.
package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/dopa/lang"
	"github.com/ardnew/dopa/log"
)

// editProgramMsg is sent when program editing completes successfully.
type editProgramMsg struct{ program *lang.Program }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help     Print this help
  list     List functions and globals
  edit     Edit the session source in $EDITOR and run it
  reset    Discard the session and re-run the script
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type statements to run them; a missing trailing ';' is added
  Declarations persist: var x = 1;  function f(a) { return a * 2; }
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// formatCommand formats the echo of submitted input in the given mode.
func formatCommand(input string, mode inputMode) string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// Session configures an interactive session.
type Session struct {
	// Interpreter evaluates input. A program it already holds is continued.
	Interpreter *lang.Interpreter
	// Output receives the console output of Interpreter's natives and is
	// shown after each evaluation. It may be nil.
	Output *Transcript
	// CacheDir holds the history file. History is not persisted if empty.
	CacheDir string
	Logger   log.Logger
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	it         *lang.Interpreter
	base       *lang.Program // script program, restored by reset
	source     string        // session source, opened by edit
	out        *Transcript
	logger     log.Logger
	history    *History
	historyIdx int

	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began

	banner   string // output printed before the first prompt
	width    int    // terminal width for ellipsization
	quitting bool
	mode     inputMode

	// Input of the inactive mode, restored when switching back.
	savedText   [2]string
	savedCursor [2]int
}

// Run starts the REPL and blocks until the user quits or ctx is done.
func (s Session) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if s.Interpreter == nil {
		return ErrNoInterpreter
	}

	var path string
	if s.CacheDir != "" {
		path = filepath.Join(s.CacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		s.Logger.WarnContext(ctx, "could not load history",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}

	s.Logger.TraceContext(ctx, "repl start",
		slog.String("history", path),
		slog.Int("history_entries", history.Len()),
		slog.Int("functions", len(s.Interpreter.Functions())),
		slog.Int("globals", len(s.Interpreter.Globals())),
	)

	m := newModel(ctx, s, history)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, s Session, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	base := s.Interpreter.Program()

	var source string
	if base != nil {
		source = base.String()
	}

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		it:         s.Interpreter,
		base:       base,
		source:     source,
		out:        s.Output,
		logger:     s.Logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		banner:     s.Output.drain(),
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	if m.banner != "" {
		return tea.Batch(textinput.Blink, tea.Println(m.banner))
	}

	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(evalPrompt) - 2

		return m, nil

	case editProgramMsg:
		m.base = msg.program
		m.source = msg.program.String()

		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.Int("functions", len(msg.program.Functions)),
			slog.Int("globals", len(msg.program.Variables)),
		)

		return m, tea.Sequence(
			tea.Println(resultStyle.Render("program updated")),
			m.rerun(),
		)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hint())
	b.WriteString("\n")

	return b.String()
}

// hint renders the line below the input: the history position, a usage
// hint, the signature of the enclosing call, or completion candidates.
func (m model) hint() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type a statement or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
	}

	if m.mode == modeEval && !m.tabActive {
		if call := detectFunctionCall(input, m.input.Position()); call.inCall {
			if sig, params := signature(m.it, call.name); sig != "" {
				return renderSignatureHint(sig, params, call.argIndex)
			}
		}
	}

	return m.renderCandidateBar()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space accepts the candidate while tab-cycling.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Other keys (backspace, delete, arrows, ...) edit without completing.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, completing the current word with
// the selected candidate. A sole candidate is accepted immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also accepts the completion when exactly one
// candidate remains and the typed word already equals it. autoConfirm is
// false for deletions and cursor movement so that editing never completes
// unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	mode := m.mode

	m.savedText = [2]string{}
	m.savedCursor = [2]int{}
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(formatCommand(input, mode))

	if mode == modeCtrl {
		return m.executeCommand(input, echo)
	}

	out, source, err := m.evaluate(input)
	if err == nil {
		m.source += source + "\n"
	}

	return m, tea.Sequence(echo, tea.Println(out))
}

// evaluate runs input as a continuation of the session and renders the
// output it printed followed by its value or error. It also returns the
// source that was run.
func (m model) evaluate(input string) (string, string, error) {
	source := input
	if !strings.HasSuffix(source, ";") && !strings.HasSuffix(source, "}") {
		source += ";"
	}

	result, err := m.it.Eval(m.ctxFunc(), source)

	m.logger.TraceContext(m.ctxFunc(), "repl eval",
		slog.String("input", source),
		slog.String("result", result.Type().String()),
		slog.Bool("failed", err != nil),
	)

	var lines []string

	if out := m.out.drain(); out != "" {
		lines = append(lines, out)
	}

	switch {
	case err != nil:
		lines = append(lines, renderError(err, source))
	case !result.IsUndefined():
		lines = append(lines, resultStyle.Render(result.String()))
	}

	return strings.Join(lines, "\n"), source, err
}

// renderError renders err, with the offending source line of a positioned
// script error.
func renderError(err error, source string) string {
	msg := errorStyle.Render("error: " + err.Error())

	var le *lang.Error
	if errors.As(err, &le) {
		if excerpt := le.Excerpt(source); excerpt != "" {
			msg += "\n" + hintStyle.Render(strings.TrimSuffix(excerpt, "\n"))
		}
	}

	return msg
}

// rerun loads the script program and executes it from fresh globals,
// discarding everything evaluated since.
func (m model) rerun() tea.Cmd {
	base := m.base
	if base == nil {
		base = &lang.Program{}
	}

	var result lang.Value

	err := m.it.Load(base)
	if err == nil {
		result, err = m.it.Execute(m.ctxFunc())
	}

	var lines []string

	if out := m.out.drain(); out != "" {
		lines = append(lines, out)
	}

	switch {
	case err != nil:
		lines = append(lines, renderError(err, base.String()))
	case !result.IsUndefined():
		lines = append(lines, resultStyle.Render(result.String()))
	}

	if len(lines) == 0 {
		return nil
	}

	return tea.Println(strings.Join(lines, "\n"))
}

func (m model) executeCommand(input string, echo tea.Cmd) (model, tea.Cmd) {
	cmd, _, _ := strings.Cut(input, " ")

	m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("command", cmd))

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.list()))

	case "r", "reset":
		m.source = ""
		if m.base != nil {
			m.source = m.base.String()
		}

		return m, tea.Sequence(echo, m.rerun())

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Sequence(echo,
			tea.Println(errorStyle.Render("Unknown command: "+cmd+" (try 'help')")))
	}
}

// edit opens the loaded program in the user's editor.
func (m model) edit() tea.Cmd {
	cmd := &editProgramCommand{
		ctxFunc: m.ctxFunc,
		source:  m.source,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.edited == nil:
			return editCancelledMsg{}
		default:
			return editProgramMsg{program: cmd.edited}
		}
	})
}

// list renders the script functions with their signatures and the globals
// with their values.
func (m model) list() string {
	var b strings.Builder

	for _, name := range m.it.Functions() {
		sig, _ := signature(m.it, name)
		fmt.Fprintf(&b, "  %s %s\n", hintStyle.Render("function"), sig)
	}

	for _, name := range m.it.Globals() {
		v, _ := m.it.Global(name)
		fmt.Fprintf(&b, "  %s %s = %s\n", hintStyle.Render("var"), name, v)
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no functions or globals)")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// historyStep moves through history by step (-1 older, +1 newer). With
// sameMode, entries of the other mode are skipped; otherwise the mode
// follows the entry. Stepping past the newest entry clears the input.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to mode, saving the current input and restoring
// the input last typed in mode.
func (m model) switchToMode(mode inputMode) model {
	m.savedText[m.mode] = m.input.Value()
	m.savedCursor[m.mode] = m.input.Position()

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.input.SetValue(m.savedText[mode])
	m.input.SetCursor(m.savedCursor[mode])
	m.tabActive = false
	refreshMatches(&m, false)

	return m
}
