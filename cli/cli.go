// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the Parley interpreter.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nathoo/parley/engine"
	"github.com/nathoo/parley/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Interp    *engine.Interpreter
	Ctx       *types.Context
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	lastCmd string         // for "again"/"g" repeat
	pending *types.Command // command suspended on a disambiguation choice
}

// New creates a CLI wired to the given interpreter and session context.
func New(interp *engine.Interpreter, ctx *types.Context) *CLI {
	return &CLI{
		Interp: interp,
		Ctx:    ctx,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run starts the interpreter loop. It shows the intro, describes the
// starting location, then loops: prompt → input → dispatch → output.
func (c *CLI) Run() {
	meta := c.Interp.Store.Meta()
	if meta.Intro != "" {
		c.printLine(meta.Intro)
		c.printLine("")
	}

	c.printStep(c.Interp.Step("look", c.Ctx))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if c.pending != nil {
			c.handleSelection(input)
			continue
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		step := c.Interp.Step(input, c.Ctx)
		c.printStep(step)
		if step.Result.Metadata["quit"] == "true" {
			return
		}
	}
}

// handleSelection feeds a numbered disambiguation choice back into the
// pending command. "cancel" abandons it.
func (c *CLI) handleSelection(input string) {
	if strings.EqualFold(input, "cancel") {
		c.pending = nil
		c.printLine("Never mind.")
		return
	}

	candidates := c.pending.Disambiguation.Candidates
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(candidates) {
		c.printLine(fmt.Sprintf("Pick a number between 1 and %d, or 'cancel'.", len(candidates)))
		return
	}

	step := c.Interp.Resume(c.pending, c.Ctx, candidates[n-1].ID)
	c.pending = nil
	c.printStep(step)
}

// printStep renders a step result, including any disambiguation menu.
func (c *CLI) printStep(step engine.StepResult) {
	if step.Pending() {
		c.pending = step.Command
		c.printLine(step.Result.Message)
		for i, cand := range step.Command.Disambiguation.Candidates {
			line := fmt.Sprintf("  %d. %s", i+1, cand.Name)
			if cand.Tier != "" {
				line += fmt.Sprintf(" (%s)", cand.Tier)
			}
			if cand.Description != "" {
				line += " - " + cand.Description
			}
			c.printLine(line)
		}
		return
	}

	if step.Result.Message != "" {
		c.printLine(step.Result.Message)
	}
	if c.Trace {
		c.printTrace(step)
	}
}

// handleMeta dispatches meta-commands. Returns true if the loop should exit.
func (c *CLI) handleMeta(input string) bool {
	switch strings.Fields(input)[0] {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		for _, line := range helpLines() {
			c.printLine(line)
		}

	case "/state":
		c.printLine(fmt.Sprintf("Location: %s", c.Ctx.Location))
		c.printLine(fmt.Sprintf("In combat: %v", c.Ctx.InCombat))
		if c.Ctx.Opponent != "" {
			c.printLine(fmt.Sprintf("Opponent: %s", c.Ctx.Opponent))
		}
		if len(c.Ctx.Recent) > 0 {
			c.printLine(fmt.Sprintf("Recent: %v", c.Ctx.Recent))
		}

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printLine(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", input))
	}
	return false
}

func (c *CLI) printTrace(step engine.StepResult) {
	if step.Command != nil {
		c.printLine(fmt.Sprintf("[trace] action=%s pattern=%s", step.Command.Action, step.Command.Pattern))
	}
	c.printLine(fmt.Sprintf("[trace] intent=%s/%s confidence=%.2f",
		step.Intent.Primary, step.Intent.Sub, step.Intent.Confidence))
	if step.Intent.Reasoning != "" {
		c.printLine("[trace] " + step.Intent.Reasoning)
	}
}

func helpLines() []string {
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
	}
}

func (c *CLI) print(s string) {
	fmt.Fprint(c.Out, s)
}

func (c *CLI) printLine(s string) {
	fmt.Fprintln(c.Out, s)
}

func (c *CLI) printSystem(s string) {
	fmt.Fprintln(c.Out, "["+s+"]")
}
