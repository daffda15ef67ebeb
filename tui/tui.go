package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/parley/engine"
	"github.com/nathoo/parley/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the Parley TUI.
type Model struct {
	interp *engine.Interpreter
	ctx    *types.Context

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
	pending  *types.Command // command suspended on a disambiguation choice
}

// stepOutputMsg carries interpreter output into the Update loop.
type stepOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given interpreter and session context.
func New(interp *engine.Interpreter, ctx *types.Context) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		interp:  interp,
		ctx:     ctx,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(interp *engine.Interpreter, ctx *types.Context) error {
	m := New(interp, ctx)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces intro text and first look.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		var lines []string

		meta := m.interp.Store.Meta()
		lines = append(lines, meta.Title+" v"+meta.Version+" by "+meta.Author)
		lines = append(lines, "")

		if meta.Intro != "" {
			lines = append(lines, meta.Intro)
			lines = append(lines, "")
		}

		step := m.interp.Step("look", m.ctx)
		lines = append(lines, strings.Split(step.Result.Message, "\n")...)

		return stepOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, interpreter output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case stepOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// A pending disambiguation consumes the next line as a menu choice.
	if m.pending != nil {
		return m.handleSelection(input)
	}

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(stepOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(stepOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	step := m.interp.Step(input, m.ctx)
	m = m.appendStep(input, step)
	if step.Result.Metadata["quit"] == "true" {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handleSelection resolves a pending disambiguation from a numbered choice.
func (m Model) handleSelection(input string) (tea.Model, tea.Cmd) {
	if strings.EqualFold(input, "cancel") {
		m.pending = nil
		m = m.appendOutput(stepOutputMsg{input: input, lines: []string{"Never mind."}})
		return m, nil
	}

	candidates := m.pending.Disambiguation.Candidates
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(candidates) {
		m = m.appendOutput(stepOutputMsg{input: input, lines: []string{
			fmt.Sprintf("Pick a number between 1 and %d, or 'cancel'.", len(candidates)),
		}})
		return m, nil
	}

	pending := m.pending
	m.pending = nil
	step := m.interp.Resume(pending, m.ctx, candidates[n-1].ID)
	m = m.appendStep(input, step)
	return m, nil
}

// appendStep renders a step result, including any disambiguation menu.
func (m Model) appendStep(input string, step engine.StepResult) Model {
	if step.Pending() {
		m.pending = step.Command
		lines := []string{step.Result.Message}
		for i, cand := range step.Command.Disambiguation.Candidates {
			entry := fmt.Sprintf("  %d. %s", i+1, cand.Name)
			if cand.Tier != "" {
				entry += fmt.Sprintf(" (%s)", cand.Tier)
			}
			if cand.Description != "" {
				entry += " - " + cand.Description
			}
			lines = append(lines, entry)
		}
		return m.appendOutput(stepOutputMsg{input: input, lines: lines})
	}

	lines := strings.Split(step.Result.Message, "\n")
	if m.trace {
		lines = append(lines, formatTrace(step)...)
	}
	return m.appendOutput(stepOutputMsg{input: input, lines: lines})
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg stepOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindYouSee:
		return styledYouSee(line)
	case kindExits:
		return styleExits.Render(line)
	case kindPrompt:
		return stylePrompt.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	switch strings.Fields(input)[0] {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", input)}, false
	}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /quit         — Exit",
		"  /help         — Show this help",
		"  /state        — Dump the session context",
		"  /trace        — Toggle intent trace output",
		"",
		"Commands:",
		"  look (l)              — Describe where you are",
		"  examine <thing> (x)   — Look closely at something",
		"  go <dir>              — Move (or just type n/s/e/w/u/d)",
		"  take/get <item>       — Pick something up",
		"  drop <item>           — Put something down",
		"  put <item> in <thing> — Stow something",
		"  give <item> to <npc>  — Hand something over",
		"  attack <creature>     — Start a fight",
		"  talk to <npc>         — Strike up a conversation",
		"  cast <spell>          — Work magic",
		"  inventory (i)         — Check what you're carrying",
		"  again (g)             — Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	output := []string{
		fmt.Sprintf("Location: %s", m.ctx.Location),
		fmt.Sprintf("In combat: %v", m.ctx.InCombat),
	}
	if m.ctx.Opponent != "" {
		output = append(output, fmt.Sprintf("Opponent: %s", m.ctx.Opponent))
	}
	if len(m.ctx.Recent) > 0 {
		output = append(output, fmt.Sprintf("Recent: %v", m.ctx.Recent))
	}
	if m.pending != nil {
		output = append(output, "Pending: disambiguation choice")
	}
	return output
}

func formatTrace(step engine.StepResult) []string {
	var lines []string
	if step.Command != nil {
		lines = append(lines, fmt.Sprintf("[trace] action=%s pattern=%s", step.Command.Action, step.Command.Pattern))
	}
	lines = append(lines, fmt.Sprintf("[trace] intent=%s/%s confidence=%.2f",
		step.Intent.Primary, step.Intent.Sub, step.Intent.Confidence))
	if step.Intent.Reasoning != "" {
		lines = append(lines, "[trace] "+step.Intent.Reasoning)
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
