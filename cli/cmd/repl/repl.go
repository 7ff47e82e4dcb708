// Package repl implements an interactive prompt for title expressions.
package repl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/wintitle/host"
	"github.com/ardnew/wintitle/lang"
	"github.com/ardnew/wintitle/log"
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"

	defaultWidth = 80
)

const helpText = `
: Commands (Esc toggles command mode)

  vars            List variables
  set NAME=VALUE  Assign a variable (true/false are booleans)
  load FILE       Load variables from a YAML file
  edit            Edit the expression in $VISUAL or $EDITOR
  clear           Clear the screen
  help            Show this text
  quit            Exit

Type an expression and press Enter to render it. The line below the
prompt previews the result, lists unresolved variables, or shows the
parameters of the host call under the cursor.

  Tab / Shift-Tab   cycle completions
  Up / Down         history
  Ctrl-C            clear the line, or exit on an empty line
`

type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

var (
	promptStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle         = suggestionStyle.Bold(true)
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// Config holds the collaborators of a REPL session.
type Config struct {
	Vars    *host.Vars
	Cache   *host.Cache
	Strict  bool
	History string // directory holding the history file; empty disables it
	Logger  log.Logger
}

// editedMsg carries the result of an editor session.
type editedMsg struct {
	text string
	err  error
}

type model struct {
	ctx     context.Context
	input   textinput.Model
	vars    *host.Vars
	cache   *host.Cache
	strict  bool
	logger  log.Logger
	history *History
	histIdx int

	matches   fuzzy.Matches
	wordStart int
	wordEnd   int
	selected  int
	cycling   bool
	preCycle  string
	preCursor int
	preview   string
	width     int
	mode      inputMode
	stash     [2]string // input of the inactive mode
	quitting  bool
}

// Run starts an interactive session and blocks until the user quits or
// ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	var path string
	if cfg.History != "" {
		path = filepath.Join(cfg.History, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "history not loaded", slog.Any("error", err))
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("history", path),
		slog.Int("entries", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, cfg, history), tea.WithContext(ctx))
	_, err := p.Run()

	return err
}

func newModel(ctx context.Context, cfg Config, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.CharLimit = 1024
	ti.Width = defaultWidth
	ti.Focus()

	vars := cfg.Vars
	if vars == nil {
		vars = host.NewVars()
	}

	cache := cfg.Cache
	if cache == nil {
		cache = host.NewCache(0, "repl")
	}

	return model{
		ctx:      ctx,
		input:    ti,
		vars:     vars,
		cache:    cache,
		strict:   cfg.Strict,
		logger:   cfg.Logger,
		history:  history,
		histIdx:  history.Len(),
		selected: -1,
		width:    defaultWidth,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-len(evalPrompt)-2, 1)

		return m, nil

	case editedMsg:
		if msg.err != nil {
			return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
		}

		m = m.switchMode(modeEval)
		m.input.SetValue(msg.text)
		m.input.CursorEnd()
		m.refresh(false)

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.statusLine() + "\n"
}

// statusLine is the line under the prompt.
func (m model) statusLine() string {
	input := m.input.Value()

	switch {
	case m.histIdx < m.history.Len():
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.histIdx+1)),
			m.history.Len()))

	case strings.TrimSpace(input) == "":
		if m.mode == modeCtrl {
			return hintStyle.Render("vars, set, load, edit, clear, help, quit (Esc returns)")
		}

		return hintStyle.Render("Type an expression, or press Esc for commands")

	case len(m.matches) > 0:
		return renderCandidateBar(m.matches, m.selected, m.width)
	}

	if m.mode == modeEval {
		c := detectCall(input, byteOffset(input, m.input.Position()))
		if params, ok := signature(c); ok {
			return renderSignature(c.name, params, c.arg)
		}
	}

	return m.preview
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.cycling = false
		m.histIdx = m.history.Len()
		m.refresh(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.cycling {
			m.cycling = false
			m.refresh(false)

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(-1), nil

	case tea.KeyDown:
		return m.recall(1), nil

	case tea.KeyEsc:
		if m.cycling {
			m.cycling = false
			m.input.SetValue(m.preCycle)
			m.input.SetCursor(m.preCursor)
			m.refresh(false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchMode(modeCtrl), nil
		}

		return m.switchMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		m.cycling = false
		m.histIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refresh(true)

		return m, cmd
	}

	m.cycling = false
	m.histIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh(false)

	return m, cmd
}

// cycle replaces the word under the cursor with the next (dir 1) or
// previous (dir -1) candidate. A single candidate is accepted outright.
func (m model) cycle(dir int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceWord(m.matches[0].Str)
		m.cycling = false
		m.matches = nil
		m.selected = -1

		return m
	}

	if !m.cycling {
		m.cycling = true
		m.preCycle = m.input.Value()
		m.preCursor = m.input.Position()
		m.selected = -1

		if dir < 0 {
			m.selected = 0
		}
	}

	m.selected = (m.selected + dir + n) % n
	m.replaceWord(m.matches[m.selected].Str)

	return m
}

func (m *model) replaceWord(s string) {
	v := m.input.Value()

	head := v[:m.wordStart] + s

	m.input.SetValue(head + v[m.wordEnd:])
	m.input.SetCursor(utf8.RuneCountInString(head))
	m.wordEnd = len(head)
}

// refresh recomputes completions and the preview. With typed set, a
// word that already equals its only candidate stops offering it.
func (m *model) refresh(typed bool) {
	if !m.cycling {
		m.matches, m.wordStart, m.wordEnd = m.computeMatches()
		m.selected = -1
	}

	if typed && len(m.matches) == 1 &&
		m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.matches = nil
	}

	m.preview = ""
	if m.mode == modeEval {
		m.preview = m.previewOf(m.input.Value())
	}
}

// previewOf describes source without running host calls: its value
// when constant, otherwise the variables it still needs.
func (m model) previewOf(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}

	c, err := m.cache.Get(source)
	if err != nil {
		return errorStyle.Render(firstLine(err.Error()))
	}

	if v, ok := c.Const.Get(); ok {
		return resultStyle.Render("= " + lang.FormatString(valueExpr(v)))
	}

	missing, err := c.Unresolved(m.vars)
	if err != nil {
		return errorStyle.Render(firstLine(err.Error()))
	}

	if len(missing) == 0 {
		return ""
	}

	names := make([]string, len(missing))
	for i, v := range missing {
		names[i] = v.Text
	}

	return hintStyle.Render("unresolved: " + strings.Join(names, ", "))
}

// valueExpr wraps v as a literal so it prints in source form.
func valueExpr(v lang.Value) lang.Expr { return &lang.Literal{Value: v} }

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")

	return line
}

// evaluate renders source against the session variables.
func (m model) evaluate(source string) (lang.Value, error) {
	c, err := m.cache.Get(source)
	if err != nil {
		return nil, err
	}

	var ctx lang.Context = lang.NewEvalContext(m.vars)
	if !m.strict {
		ctx = lang.NewSafeContext(ctx)
	}

	return c.Eval(ctx)
}

func (m model) submit() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	if err := m.history.Add(line, m.mode); err != nil {
		m.logger.WarnContext(m.ctx, "history not saved", slog.Any("error", err))
	}

	m.histIdx = m.history.Len()
	m.input.SetValue("")
	m.matches = nil
	m.preview = ""

	if m.mode == modeCtrl {
		return m.command(line)
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(line))

	v, err := m.evaluate(line)

	m.logger.TraceContext(m.ctx, "repl eval",
		slog.String("input", line),
		slog.Any("error", err),
	)

	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(lang.FormatString(valueExpr(v)))))
}

// command runs a command-mode line.
func (m model) command(line string) (model, tea.Cmd) {
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(line))

	m.logger.TraceContext(m.ctx, "repl command", slog.String("verb", verb))

	reply := func(s string) (model, tea.Cmd) {
		return m, tea.Sequence(echo, tea.Println(s))
	}

	switch strings.ToLower(verb) {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return reply(helpText)

	case "v", "vars":
		return reply(m.listVars())

	case "s", "set":
		if err := m.vars.Assign(arg); err != nil {
			return reply(errorStyle.Render("error: " + err.Error()))
		}

		return reply(hintStyle.Render("ok"))

	case "l", "load":
		if err := m.vars.LoadFile(m.ctx, arg); err != nil {
			return reply(errorStyle.Render("error: " + err.Error()))
		}

		return reply(m.listVars())

	case "e", "edit":
		ed := &editorCommand{ctx: m.ctx, logger: m.logger, text: m.stash[modeEval]}

		return m, tea.Sequence(echo, tea.Exec(ed, func(err error) tea.Msg {
			return editedMsg{text: ed.text, err: err}
		}))

	case "c", "clear":
		return m, tea.ClearScreen
	}

	return reply(errorStyle.Render("unknown command: " + verb + " (try help)"))
}

func (m model) listVars() string {
	snap := m.vars.Snapshot()

	names := snap.Names()
	if len(names) == 0 {
		return hintStyle.Render("  (no variables)")
	}

	var b strings.Builder

	for _, name := range names {
		fmt.Fprintf(&b, "  %s %s\n", name,
			hintStyle.Render(lang.FormatString(valueExpr(snap[name]))))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// recall moves through history by step, switching to the mode the
// entry was entered in. Moving past the newest entry clears the line.
func (m model) recall(step int) model {
	i := m.histIdx + step
	if i < 0 {
		return m
	}

	if i >= m.history.Len() {
		m.histIdx = m.history.Len()
		m.input.SetValue("")
		m.refresh(false)

		return m
	}

	e, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	m.histIdx = i
	if e.Mode != m.mode {
		m = m.switchMode(e.Mode)
	}

	m.input.SetValue(e.Line)
	m.input.CursorEnd()
	m.refresh(false)

	return m
}

// switchMode stashes the current line and restores the other mode's.
func (m model) switchMode(mode inputMode) model {
	if mode == m.mode {
		return m
	}

	m.stash[m.mode] = m.input.Value()
	m.mode = mode
	m.cycling = false

	if mode == modeCtrl {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	} else {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	}

	m.input.SetValue(m.stash[mode])
	m.input.CursorEnd()
	m.refresh(false)

	return m
}
