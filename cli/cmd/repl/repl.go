// Package repl implements an interactive terminal for writing and testing
// field aliases.
//
// An alias is tested by pressing Enter. Query variables it references that
// have no value yet are prompted for one at a time, and values stay known
// for the rest of the session. The result or error is printed above the
// input line, and the alias remains in place for further editing.
package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/aliasexpr/alias"
	"github.com/ardnew/aliasexpr/cli/cmd"
	"github.com/ardnew/aliasexpr/lang"
	"github.com/ardnew/aliasexpr/log"
)

// Repl starts the interactive alias tester.
type Repl struct {
	Alias string `help:"Initial alias text."                  placeholder:"TEXT"`
	Mode  string `help:"Interpret the alias as this kind." default:"expression" enum:"literal,expression" short:"m"`

	cmd.VarFlags `embed:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	vars, err := r.Load()
	if err != nil {
		return err
	}

	logger := log.Default()

	var historyPath string
	if dir := cmd.CacheDirFrom(ctx); dir != "" {
		historyPath = filepath.Join(dir, baseHistory)
	}

	history := NewHistory(historyPath)

	err = history.Load()
	if err != nil {
		logger.WarnContext(ctx, "history unavailable",
			slog.String("path", historyPath),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", historyPath),
		slog.Int("history_len", history.Len()),
		slog.Int("var_count", len(vars)),
	)

	m := newModel(ctx, session{
		logger:     logger,
		evalOpts:   cmd.EvalOptionsFrom(ctx),
		history:    history,
		vars:       vars,
		alias:      r.Alias,
		expression: r.Mode != modeLiteralName,
	})

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

const (
	modeLiteralName    = "literal"
	modeExpressionName = "expression"
)

const (
	aliasPrompt = "➜ "
	ctrlPrompt  = " :"

	defaultWidth = 80
	maxAliasLen  = 4096
)

// inputMode selects what the input line edits.
type inputMode int

const (
	modeAlias inputMode = iota
	modeCtrl
)

// testState is the position of the alias test workflow.
type testState int

const (
	stateIdle testState = iota
	stateCollecting
	stateEvaluating
	stateResult
	stateError
)

func (s testState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateCollecting:
		return "collecting"
	case stateEvaluating:
		return "evaluating"
	case stateResult:
		return "result"
	case stateError:
		return "error"
	default:
		return "unknown"
	}
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	varPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
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

// session holds what a model is started with.
type session struct {
	logger     log.Logger
	evalOpts   []lang.Option
	history    *History
	vars       map[string]string
	alias      string
	expression bool
}

// evalDoneMsg carries the outcome of testing an alias.
type evalDoneMsg struct {
	result string
	err    error
}

// editDoneMsg carries the alias text returned from $EDITOR.
type editDoneMsg struct{ text string }

// editCancelledMsg is sent when the editor returned an empty alias.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to fix a syntax error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the editor could not be run.
type editErrorMsg struct{ err error }

// model is the Bubble Tea model of the alias tester.
type model struct {
	ctx      context.Context
	logger   log.Logger
	resolver *alias.Resolver
	evalOpts []lang.Option
	complete completer
	history  *History

	input      textinput.Model
	width      int
	quitting   bool
	historyIdx int

	matches        fuzzy.Matches
	wordStart      int
	wordEnd        int
	suggIdx        int
	cycling        bool // tab-cycling through matches
	preCycleText   string
	preCycleCursor int

	mode       inputMode
	aliasText  string // alias kept while the input shows something else
	aliasCur   int
	multiline  bool // aliasText has line breaks and is not shown in the input
	ctrlText   string
	ctrlCursor int

	expression bool
	vars       map[string]string
	state      testState
	source     string   // alias under test
	pending    []string // variables still to be collected, in order
	result     string
	err        error
}

func newModel(ctx context.Context, s session) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(aliasPrompt)
	ti.CharLimit = maxAliasLen
	ti.Width = defaultWidth
	ti.Focus()

	vars := s.vars
	if vars == nil {
		vars = make(map[string]string)
	}

	history := s.history
	if history == nil {
		history = NewHistory("")
	}

	m := model{
		ctx:    ctx,
		logger: s.logger,
		resolver: alias.NewResolver(
			alias.WithLogger(s.logger),
			alias.WithEvalOptions(s.evalOpts...),
		),
		evalOpts:   s.evalOpts,
		complete:   newCompleter(),
		history:    history,
		input:      ti,
		width:      defaultWidth,
		historyIdx: history.Len(),
		suggIdx:    -1,
		mode:       modeAlias,
		expression: s.expression,
		vars:       vars,
	}

	m.setAlias(s.alias)

	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-len(aliasPrompt)-2, 1)

		return m, nil

	case evalDoneMsg:
		return m.finishTest(msg)

	case editDoneMsg:
		m = m.switchMode(modeAlias)
		m.setAlias(msg.text)

		return m.submitAlias()

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("edit discarded"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var c tea.Cmd

	m.input, c = m.input.Update(msg)

	return m, c
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintLine())
	b.WriteString("\n")

	return b.String()
}

// hintLine returns the status line shown under the input.
func (m model) hintLine() string {
	input := m.input.Value()

	switch {
	case m.state == stateCollecting:
		return hintStyle.Render(fmt.Sprintf(
			"value of $%s$ (%d remaining), Esc cancels",
			m.pending[0], len(m.pending)-1,
		))

	case m.state == stateEvaluating:
		return hintStyle.Render("evaluating...")

	case m.historyIdx < m.history.Len():
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len(),
		))

	case m.mode == modeAlias && m.multiline && input == "":
		return hintStyle.Render(fmt.Sprintf(
			"%d-line %s alias, Enter tests it, Esc then edit changes it",
			strings.Count(m.aliasText, "\n")+1, m.modeName(),
		))

	case strings.TrimSpace(input) == "":
		if m.mode == modeCtrl {
			return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (Esc returns)")
		}

		return hintStyle.Render(fmt.Sprintf(
			"Type a %s alias and press Enter to test it, Esc for commands",
			m.modeName(),
		))
	}

	if m.mode == modeAlias && m.expression {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall {
			if s, ok := lookupSignature(call.name); ok {
				return renderSignatureHint(s, call.argIndex)
			}
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.cycling, m.width)
}

func (m model) modeName() string {
	if m.expression {
		return modeExpressionName
	}

	return modeLiteralName
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx, "repl keypress",
		slog.String("key", msg.String()),
		slog.String("state", m.state.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" && m.state != stateCollecting {
			m.quitting = true

			return m, tea.Quit
		}

		if m.state == stateCollecting {
			return m.cancelCollect(), nil
		}

		m.input.SetValue("")
		m.cycling = false
		m.historyIdx = m.history.Len()
		m.refreshMatches(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.cycling && len(m.matches) > 0 {
			m.cycling = false
			m.refreshMatches(true)

			return m, nil
		}

		return m.submit()

	case tea.KeyEsc:
		switch {
		case m.cycling:
			m.cycling = false
			m.input.SetValue(m.preCycleText)
			m.input.SetCursor(m.preCycleCursor)
			m.refreshMatches(false)

			return m, nil

		case m.state == stateCollecting:
			return m.cancelCollect(), nil

		case m.state == stateEvaluating:
			return m, nil
		}

		return m.toggleMode(), nil

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
	}

	if m.state == stateEvaluating {
		return m, nil
	}

	before := m.input.Value()

	if msg.Type == tea.KeyRunes && m.cycling && msg.String() == " " {
		m.cycling = false
	} else if msg.Type != tea.KeyRunes {
		m.cycling = false
	}

	var c tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, c = m.input.Update(msg)

	if m.mode == modeAlias && m.input.Value() != before {
		m.edited()
	}

	m.refreshMatches(msg.Type == tea.KeyRunes)

	return m, c
}

// edited returns the workflow to idle after the alias text changed.
func (m *model) edited() {
	if m.state == stateCollecting {
		return
	}

	m.multiline = false
	m.state = stateIdle
}

// cycle moves the tab selection by step, wrapping at either end. A single
// match is accepted immediately.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 || m.state == stateCollecting {
		return m
	}

	if len(m.matches) == 1 {
		m.replaceWord(m.matches[0].Str)
		m.cycling = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if !m.cycling {
		m.cycling = true
		m.preCycleText = m.input.Value()
		m.preCycleCursor = m.input.Position()
		m.suggIdx = -1

		if step < 0 {
			m.suggIdx = 0
		}
	}

	m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord substitutes s for the word being completed.
func (m *model) replaceWord(s string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)

	if m.mode == modeAlias {
		m.edited()
	}
}

// refreshMatches recomputes completions for the word at the cursor. With
// accept set, a word that already equals its only match is accepted so the
// candidate bar clears.
func (m *model) refreshMatches(accept bool) {
	input, cursor := m.input.Value(), m.input.Position()

	switch {
	case m.state == stateCollecting, m.mode == modeAlias && !m.expression:
		m.matches = nil

	case m.mode == modeCtrl:
		m.matches, m.wordStart, m.wordEnd = matchCommands(input, cursor)

	default:
		m.matches, m.wordStart, m.wordEnd = m.complete.matches(input, cursor, m.knownNames())
	}

	if !m.cycling {
		m.suggIdx = -1
	}

	if accept && len(m.matches) == 1 && input[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.cycling = false
		m.matches = nil
	}
}

// knownNames returns the session variables and the references in the
// current alias, sorted and without duplicates.
func (m model) knownNames() []string {
	names := slices.AppendSeq(lang.References(m.input.Value()), maps.Keys(m.vars))
	slices.Sort(names)

	return slices.Compact(names)
}

// setAlias replaces the alias being edited. Text with line breaks is kept
// aside since the input line cannot show it.
func (m *model) setAlias(text string) {
	m.multiline = strings.Contains(text, "\n")
	m.aliasText = text

	if m.multiline {
		m.input.SetValue("")
	} else {
		m.input.SetValue(text)
		m.input.SetCursor(len(text))
	}

	m.state = stateIdle
	m.refreshMatches(false)
}

// currentAlias returns the alias the input line edits.
func (m model) currentAlias() string {
	if m.multiline && m.input.Value() == "" {
		return m.aliasText
	}

	return m.input.Value()
}

func (m model) submit() (model, tea.Cmd) {
	switch {
	case m.state == stateCollecting:
		return m.collect()

	case m.state == stateEvaluating:
		return m, nil

	case m.mode == modeCtrl:
		input := strings.TrimSpace(m.input.Value())
		if input == "" {
			return m, nil
		}

		m.addHistory(input, modeCtrl)
		m.input.SetValue("")
		m.ctrlText, m.ctrlCursor = "", 0

		return m.executeCommand(input)
	}

	return m.submitAlias()
}

// submitAlias starts a test of the current alias.
func (m model) submitAlias() (model, tea.Cmd) {
	source := m.currentAlias()
	if strings.TrimSpace(source) == "" {
		return m, nil
	}

	m.addHistory(source, modeAlias)
	m.source = source
	m.cycling = false
	m.matches = nil

	echo := tea.Println(promptStyle.Render(aliasPrompt) + inputStyle.Render(source))

	m.pending = nil

	if m.expression {
		for _, name := range lang.References(source) {
			if _, ok := m.vars[name]; !ok {
				m.pending = append(m.pending, name)
			}
		}
	}

	m.logger.TraceContext(m.ctx, "repl test",
		slog.String("mode", m.modeName()),
		slog.Int("source_length", len(source)),
		slog.Any("missing", m.pending),
	)

	if len(m.pending) > 0 {
		m.state = stateCollecting

		if !m.multiline {
			m.aliasText, m.aliasCur = m.input.Value(), m.input.Position()
		}

		m.promptNext()

		return m, echo
	}

	return m.startEval(echo)
}

// promptNext asks for the value of the next pending variable.
func (m *model) promptNext() {
	m.input.Prompt = varPromptStyle.Render("$" + m.pending[0] + "$ = ")
	m.input.SetValue("")
}

// collect records the input as the value of the variable being prompted
// for. An empty value is a valid value.
func (m model) collect() (model, tea.Cmd) {
	name, value := m.pending[0], m.input.Value()

	m.vars[name] = value
	m.pending = m.pending[1:]

	echo := tea.Println(varPromptStyle.Render("$"+name+"$ = ") + inputStyle.Render(value))

	if len(m.pending) > 0 {
		m.promptNext()

		return m, echo
	}

	m.restoreAliasInput()

	return m.startEval(echo)
}

// cancelCollect abandons the test while variables are being collected.
// Values already entered are kept.
func (m model) cancelCollect() model {
	m.pending = nil
	m.state = stateIdle
	m.restoreAliasInput()

	return m
}

func (m *model) restoreAliasInput() {
	m.input.Prompt = promptStyle.Render(aliasPrompt)

	if m.multiline {
		m.input.SetValue("")
	} else {
		m.input.SetValue(m.aliasText)
		m.input.SetCursor(m.aliasCur)
	}
}

// startEval evaluates the alias under test in the background.
func (m model) startEval(echo tea.Cmd) (model, tea.Cmd) {
	m.state = stateEvaluating

	test := m.test()

	return m, tea.Sequence(echo, func() tea.Msg { return test() })
}

// test returns a function resolving the alias under test with a snapshot of
// the session variables.
func (m model) test() func() evalDoneMsg {
	ctx, resolver := m.ctx, m.resolver
	vars := maps.Clone(m.vars)

	var a alias.Alias = alias.Literal(m.source)
	if m.expression {
		a = alias.Expression(m.source)
	}

	return func() evalDoneMsg {
		result, err := resolver.ResolveAlias(ctx, a, vars)

		return evalDoneMsg{result: result, err: err}
	}
}

// finishTest records the outcome of a test and prints it.
func (m model) finishTest(msg evalDoneMsg) (model, tea.Cmd) {
	m.result, m.err = msg.result, msg.err

	if msg.err != nil {
		m.state = stateError

		m.logger.DebugContext(m.ctx, "repl test failed", slog.Any("error", msg.err))

		return m, tea.Println(errorStyle.Render("✗ " + msg.err.Error()))
	}

	m.state = stateResult

	return m, tea.Println(resultStyle.Render("✓ " + strconv.Quote(msg.result)))
}

func (m *model) addHistory(text string, mode inputMode) {
	err := m.history.Add(text, mode)
	if err != nil {
		m.logger.WarnContext(m.ctx, "history write failed", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	fields := strings.Fields(input)
	name, args := fields[0], fields[1:]

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(m.ctx, "repl command",
		slog.String("command", name),
		slog.Any("args", args),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(renderHelp(m.width)))

	case "v", "vars":
		return m, tea.Sequence(echo, tea.Println(m.listVars()))

	case "u", "unset":
		return m.unset(args, echo)

	case "m", "mode":
		return m.setMode(args, echo)

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Sequence(echo, tea.Println(
			errorStyle.Render("unknown command: "+name+" (try 'help')"),
		))
	}
}

// listVars formats the session variables, one per line.
func (m model) listVars() string {
	if len(m.vars) == 0 {
		return hintStyle.Render("  no variables set")
	}

	var b strings.Builder

	for _, name := range slices.Sorted(maps.Keys(m.vars)) {
		fmt.Fprintf(&b, "  $%s$ = %s\n", name, strconv.Quote(m.vars[name]))
	}

	return strings.TrimRight(b.String(), "\n")
}

// unset forgets the named variables, or all of them without arguments.
func (m model) unset(names []string, echo tea.Cmd) (model, tea.Cmd) {
	if len(names) == 0 {
		clear(m.vars)

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render("  all variables unset")))
	}

	var unknown []string

	for _, name := range names {
		name = strings.Trim(name, "$")

		if _, ok := m.vars[name]; !ok {
			unknown = append(unknown, name)

			continue
		}

		delete(m.vars, name)
	}

	if len(unknown) > 0 {
		return m, tea.Sequence(echo, tea.Println(
			errorStyle.Render("not set: "+strings.Join(unknown, ", ")),
		))
	}

	return m, echo
}

// setMode switches how the alias is interpreted. Without an argument it
// toggles between literal and expression.
func (m model) setMode(args []string, echo tea.Cmd) (model, tea.Cmd) {
	switch {
	case len(args) == 0:
		m.expression = !m.expression

	case args[0] == modeLiteralName:
		m.expression = false

	case args[0] == modeExpressionName:
		m.expression = true

	default:
		return m, tea.Sequence(echo, tea.Println(
			errorStyle.Render("unknown mode: "+args[0]+" (literal or expression)"),
		))
	}

	m.state = stateIdle

	return m, tea.Sequence(echo, tea.Println(hintStyle.Render("  mode: "+m.modeName())))
}

// edit opens the alias in $EDITOR.
func (m model) edit() tea.Cmd {
	c := &editAliasCommand{
		ctx:        m.ctx,
		logger:     m.logger,
		text:       m.editableAlias(),
		expression: m.expression,
		evalOpts:   m.evalOpts,
	}

	return tea.Exec(c, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case c.cancelled:
			return editCancelledMsg{}
		default:
			return editDoneMsg{text: c.edited}
		}
	})
}

// editableAlias returns the alias being edited, including one saved aside
// while entering commands.
func (m model) editableAlias() string {
	if m.mode == modeAlias {
		return m.currentAlias()
	}

	return m.aliasText
}

// toggleMode switches between editing the alias and entering commands.
func (m model) toggleMode() model {
	if m.mode == modeAlias {
		return m.switchMode(modeCtrl)
	}

	return m.switchMode(modeAlias)
}

// switchMode changes the input mode, keeping the text of each mode.
func (m model) switchMode(mode inputMode) model {
	if m.mode == mode {
		return m
	}

	if m.mode == modeAlias {
		if !m.multiline || m.input.Value() != "" {
			m.aliasText, m.multiline = m.input.Value(), false
		}

		m.aliasCur = m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode
	m.cycling = false

	if mode == modeAlias {
		m.restoreAliasInput()
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	m.refreshMatches(false)

	return m
}

// historyStep moves through history by step entries. With sameMode set,
// entries of the other input mode are skipped; otherwise the input mode
// follows the entry. Moving past the newest entry clears the input.
func (m model) historyStep(step int, sameMode bool) model {
	if m.state == stateCollecting || m.state == stateEvaluating {
		return m
	}

	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || sameMode && entry.Mode != m.mode {
			continue
		}

		m.historyIdx = i
		m = m.switchMode(entry.Mode)

		if entry.Mode == modeAlias {
			m.setAlias(entry.Text)
		} else {
			m.input.SetValue(entry.Text)
			m.input.SetCursor(len(entry.Text))
		}

		m.refreshMatches(false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.multiline = false
		m.refreshMatches(false)
	}

	return m
}
