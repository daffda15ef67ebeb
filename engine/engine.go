// Package engine wires the interpretation pipeline — lexical classification,
// phrase extraction, object resolution, command parsing, intent routing, and
// action execution — into a single step per player input.
package engine

import (
	"github.com/nathoo/parley/engine/exec"
	"github.com/nathoo/parley/engine/intent"
	"github.com/nathoo/parley/engine/lexicon"
	"github.com/nathoo/parley/engine/parser"
	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

// Interpreter holds the shared lexicon and world store plus the stateless
// pipeline stages. One interpreter serves all sessions; per-session state
// travels in the Context the caller passes to each call.
type Interpreter struct {
	Lexicon  *lexicon.Lexicon
	Store    *world.Store
	Parser   *parser.Parser
	Executor *exec.Executor
}

// New creates an interpreter over a world store with the default vocabulary.
func New(store *world.Store, opts ...exec.Option) *Interpreter {
	lex := lexicon.New()
	return &Interpreter{
		Lexicon:  lex,
		Store:    store,
		Parser:   parser.New(lex, store),
		Executor: exec.New(store, opts...),
	}
}

// RegisterEntities grows the vocabulary and spawns the entities into the
// world. Intended for content-load time, before sessions start.
func (in *Interpreter) RegisterEntities(templates []types.EntityTemplate) {
	in.Lexicon.RegisterEntities(templates)
	in.Store.Spawn(templates)
}

// StepResult is the output of one interpretation step. When the command has
// a pending disambiguation the caller must render Command.Disambiguation and
// feed the selection back through Resume on the same Command value.
type StepResult struct {
	Command *types.Command
	Intent  types.IntentResult
	Result  types.ActionResult
}

// Pending reports whether the step is suspended awaiting a disambiguation choice.
func (r StepResult) Pending() bool {
	return r.Command != nil && r.Command.Disambiguation != nil
}

// Step interprets one line of player input against the session context.
func (in *Interpreter) Step(input string, ctx *types.Context) StepResult {
	cmd := in.Parser.Parse(input, ctx)
	return in.finish(cmd, ctx)
}

// Resume applies a disambiguation selection to the pending command from a
// prior step and continues the pipeline.
func (in *Interpreter) Resume(cmd *types.Command, ctx *types.Context, selectedID string) StepResult {
	if !in.Parser.UpdateAfterDisambiguation(cmd, ctx, selectedID) {
		return StepResult{
			Command: cmd,
			Result: types.ActionResult{
				Message:      "That wasn't one of the choices.",
				StateChanges: map[string]string{},
				Metadata:     map[string]string{"error": "invalid_selection"},
			},
		}
	}
	return in.finish(cmd, ctx)
}

// finish routes and executes a parsed command, or surfaces its parse error.
func (in *Interpreter) finish(cmd *types.Command, ctx *types.Context) StepResult {
	if cmd.Disambiguation != nil {
		return StepResult{
			Command: cmd,
			Result: types.ActionResult{
				Message:      cmd.Error,
				StateChanges: map[string]string{},
				Metadata:     map[string]string{"error": "disambiguation_required"},
			},
		}
	}
	if cmd.Error != "" {
		return StepResult{
			Command: cmd,
			Result: types.ActionResult{
				Message:      cmd.Error,
				StateChanges: map[string]string{},
				Metadata:     map[string]string{"error": "parse_error"},
			},
		}
	}

	routed := intent.Route(cmd)
	return StepResult{
		Command: cmd,
		Intent:  routed,
		Result:  in.Executor.Execute(routed, ctx),
	}
}
