// Package parser assembles classified tokens into a structured Command:
// action, direct/indirect object phrases, preposition, and pattern. It
// validates per-verb object requirements before any resolver work and owns
// the disambiguation re-entry path.
package parser

import (
	"fmt"
	"strings"

	"github.com/nathoo/parley/engine/lexicon"
	"github.com/nathoo/parley/engine/phrase"
	"github.com/nathoo/parley/engine/resolve"
	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

// Verbs that need a direct object. Bare "attack" fails here with a targeted
// prompt before the resolver is ever consulted.
var requiresDirect = map[string]bool{
	"attack": true, "take": true, "examine": true, "open": true,
	"close": true, "drop": true, "eat": true, "drink": true, "use": true,
}

// Verbs that need a direct object, a preposition, and an indirect object,
// with the preposition used in their missing-indirect prompt.
var requiresIndirect = map[string]string{
	"put":  "in",
	"give": "to",
}

// Verbs whose objects are not world entities, so resolution is skipped.
var skipResolution = map[string]bool{
	"look": true, "inventory": true, "help": true, "quit": true, "go": true,
}

// Finalizer may rewrite a command after resolution (e.g. supply an implicit
// combat target for a bare "attack").
type Finalizer func(cmd *types.Command, ctx *types.Context)

// Parser turns raw input into commands against a lexicon and world store.
type Parser struct {
	lex        *lexicon.Lexicon
	store      *world.Store
	finalizers map[string]Finalizer
}

// New creates a parser with the default per-verb finalizers registered.
func New(lex *lexicon.Lexicon, store *world.Store) *Parser {
	p := &Parser{
		lex:        lex,
		store:      store,
		finalizers: map[string]Finalizer{},
	}
	p.RegisterFinalizer("attack", p.implicitCombatTarget)
	return p
}

// RegisterFinalizer installs a post-resolution rewrite hook for a verb.
func (p *Parser) RegisterFinalizer(verb string, f Finalizer) {
	p.finalizers[verb] = f
}

// Parse runs the full token → command state machine for one input line.
func (p *Parser) Parse(text string, ctx *types.Context) *types.Command {
	cmd := &types.Command{Pattern: types.PatternUnknown, Confidence: 1.0}

	tokens := phrase.Tokenize(p.lex, text)
	if len(tokens) == 0 {
		cmd.Error = "Please type something."
		return cmd
	}
	tokens = expandVerbPhrase(tokens)

	if len(tokens) == 1 {
		if done := p.parseSingle(cmd, tokens[0], ctx); done {
			p.finalize(cmd, ctx)
			return cmd
		}
	}

	switch tokens[0].Category {
	case types.CatVerb:
		p.parseVerbCommand(cmd, tokens, ctx)
	case types.CatNoun, types.CatAdjective, types.CatArticle, types.CatPronoun:
		p.parseImplicitObject(cmd, tokens, ctx)
	default:
		cmd.Error = fmt.Sprintf("I don't understand the verb '%s'.", tokens[0].Word)
		if suggestion := p.lex.SuggestVerb(tokens[0].Word); suggestion != "" {
			cmd.Error += fmt.Sprintf(" Did you mean '%s'?", suggestion)
		}
	}

	p.finalize(cmd, ctx)
	return cmd
}

// expandVerbPhrase rewrites verb-particle openings ("look at", "pick up",
// "talk to") into their single-verb form, so the object phrase never starts
// on the particle.
func expandVerbPhrase(tokens []types.Token) []types.Token {
	if len(tokens) < 2 || tokens[0].Category != types.CatVerb {
		return tokens
	}

	verb := ""
	switch tokens[0].Word {
	case "look", "l":
		switch tokens[1].Word {
		case "at", "in", "under":
			verb = "examine"
		}
	case "pick":
		if tokens[1].Word == "up" {
			verb = "take"
		}
	case "talk", "speak", "chat":
		switch tokens[1].Word {
		case "to", "with":
			verb = "talk"
		}
	case "put", "place":
		switch tokens[1].Word {
		case "on":
			verb = "wear"
		case "down":
			verb = "drop"
		}
	}
	if verb == "" {
		return tokens
	}

	expanded := []types.Token{{Word: verb, Category: types.CatVerb}}
	return append(expanded, tokens[2:]...)
}

// parseSingle handles one-token shortcuts: a bare direction becomes "go",
// a bare noun or pronoun becomes "examine". Returns false when the token
// should flow through the general path instead.
func (p *Parser) parseSingle(cmd *types.Command, tok types.Token, ctx *types.Context) bool {
	switch tok.Category {
	case types.CatDirection:
		dir, _ := p.lex.CanonicalDirection(tok.Word)
		cmd.Action = "go"
		cmd.Pattern = types.PatternImplicitDirection
		cmd.DirectObject = &types.NounPhrase{Noun: dir, OriginalText: tok.Word}
		return true
	case types.CatNoun, types.CatPronoun:
		np, _ := phrase.Extract(p.lex, []types.Token{tok}, ctx, p.store)
		cmd.Action = "examine"
		cmd.Pattern = types.PatternImplicitObject
		cmd.DirectObject = np
		p.resolveObjects(cmd, ctx)
		return true
	}
	return false
}

// parseImplicitObject treats input with no leading verb ("the rusty key")
// as an inspection request for the extracted phrase.
func (p *Parser) parseImplicitObject(cmd *types.Command, tokens []types.Token, ctx *types.Context) {
	np, rest := phrase.Extract(p.lex, tokens, ctx, p.store)
	cmd.Action = "examine"
	cmd.Pattern = types.PatternImplicitObject
	cmd.DirectObject = np

	if np == nil {
		cmd.Error = fmt.Sprintf("I don't understand '%s'.", joinWords(tokens))
		return
	}
	if np.Noun == "" {
		cmd.Error = fmt.Sprintf("'%s' what? That needs a noun.", np.OriginalText)
		return
	}
	if len(rest) > 0 {
		cmd.Error = fmt.Sprintf("I don't understand the part '%s'.", joinWords(rest))
		return
	}
	p.resolveObjects(cmd, ctx)
}

// parseVerbCommand handles the general verb-first form: verb, direct object,
// optional preposition, then an indirect object only when a preposition was
// present. Each missing required piece produces an action-named error.
func (p *Parser) parseVerbCommand(cmd *types.Command, tokens []types.Token, ctx *types.Context) {
	verb := p.lex.CanonicalVerb(tokens[0].Word)
	cmd.Action = verb
	rest := tokens[1:]

	if verb == "go" {
		p.parseGo(cmd, rest)
		return
	}

	if len(rest) == 0 {
		if requiresDirect[verb] || requiresIndirect[verb] != "" {
			cmd.Error = fmt.Sprintf("What do you want to %s?", verb)
			return
		}
		cmd.Pattern = types.PatternVerbOnly
		return
	}

	np, remaining := phrase.Extract(p.lex, rest, ctx, p.store)
	if np == nil {
		if requiresDirect[verb] || requiresIndirect[verb] != "" {
			cmd.Error = fmt.Sprintf("What do you want to %s?", verb)
		} else {
			cmd.Error = fmt.Sprintf("I don't understand the part '%s'.", joinWords(rest))
		}
		return
	}
	if np.Noun == "" {
		cmd.Error = fmt.Sprintf("'%s' what? That needs a noun.", np.OriginalText)
		return
	}
	cmd.DirectObject = np

	if len(remaining) > 0 && remaining[0].Category == types.CatPreposition {
		cmd.Preposition = remaining[0].Word
		remaining = remaining[1:]

		indirect, leftover := phrase.Extract(p.lex, remaining, ctx, p.store)
		if indirect == nil || indirect.Noun == "" {
			cmd.Error = fmt.Sprintf("What do you want to %s the %s %s?",
				verb, np.Noun, cmd.Preposition)
			return
		}
		cmd.IndirectObject = indirect
		remaining = leftover
	}

	if prep, ok := requiresIndirect[verb]; ok && cmd.IndirectObject == nil {
		cmd.Error = fmt.Sprintf("What do you want to %s the %s %s?", verb, np.Noun, prep)
		return
	}

	if len(remaining) > 0 {
		cmd.Error = fmt.Sprintf("I don't understand the part '%s'.", joinWords(remaining))
		return
	}

	cmd.Pattern = derivePattern(cmd)
	p.resolveObjects(cmd, ctx)
}

// parseGo handles movement: a direction word or a location noun phrase.
func (p *Parser) parseGo(cmd *types.Command, rest []types.Token) {
	if len(rest) == 0 {
		cmd.Error = "Go where?"
		return
	}
	if dir, ok := p.lex.CanonicalDirection(rest[0].Word); ok {
		if len(rest) > 1 {
			cmd.Error = fmt.Sprintf("I don't understand the part '%s'.", joinWords(rest[1:]))
			return
		}
		cmd.Pattern = types.PatternVerbDirection
		cmd.DirectObject = &types.NounPhrase{Noun: dir, OriginalText: rest[0].Word}
		return
	}

	np, leftover := phrase.Extract(p.lex, rest, nil, nil)
	if np == nil || np.Noun == "" {
		cmd.Error = "Go where?"
		return
	}
	if len(leftover) > 0 {
		cmd.Error = fmt.Sprintf("I don't understand the part '%s'.", joinWords(leftover))
		return
	}
	cmd.Pattern = types.PatternVerbObject
	cmd.DirectObject = np
}

// resolveObjects is the final parser step: bind object phrases to entities.
// A not-found direct object is an error for all verbs outside the skip list;
// an ambiguous one suspends the command with a disambiguation payload.
func (p *Parser) resolveObjects(cmd *types.Command, ctx *types.Context) {
	if skipResolution[cmd.Action] {
		return
	}

	if np := cmd.DirectObject; np != nil && np.ResolvedID == "" && np.Noun != "" {
		res := resolve.Resolve(p.store, ctx, np.Noun, np.Adjectives, "")
		switch res.Outcome {
		case resolve.Matched:
			np.ResolvedID = res.ID
		case resolve.NotFound:
			cmd.Error = fmt.Sprintf("I don't see any '%s' here.", np.Noun)
			return
		case resolve.Ambiguous:
			cmd.Disambiguation = &types.Disambiguation{
				Target:     types.DirectTarget,
				Candidates: res.Candidates,
			}
			cmd.Error = fmt.Sprintf("Which %s do you mean?", np.Noun)
			return
		}
	}

	if np := cmd.IndirectObject; np != nil && np.ResolvedID == "" && np.Noun != "" {
		res := resolve.Resolve(p.store, ctx, np.Noun, np.Adjectives, "")
		switch res.Outcome {
		case resolve.Matched:
			np.ResolvedID = res.ID
		case resolve.NotFound:
			cmd.Error = fmt.Sprintf("I don't see any '%s' here.", np.Noun)
		case resolve.Ambiguous:
			cmd.Disambiguation = &types.Disambiguation{
				Target:     types.IndirectTarget,
				Candidates: res.Candidates,
			}
			cmd.Error = fmt.Sprintf("Which %s do you mean?", np.Noun)
		}
	}
}

// UpdateAfterDisambiguation applies the player's selection to the pending
// command. The command must be the same one that carried the disambiguation;
// there is no session-level queue. Returns false if the selection is not
// among the candidates.
func (p *Parser) UpdateAfterDisambiguation(cmd *types.Command, ctx *types.Context, selectedID string) bool {
	if cmd == nil || cmd.Disambiguation == nil {
		return false
	}
	found := false
	for _, c := range cmd.Disambiguation.Candidates {
		if c.ID == selectedID {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	target := cmd.DirectObject
	if cmd.Disambiguation.Target == types.IndirectTarget {
		target = cmd.IndirectObject
	}
	if target == nil {
		return false
	}
	target.ResolvedID = selectedID
	cmd.Disambiguation = nil
	cmd.Error = ""
	cmd.Pattern = derivePattern(cmd)

	if e, ok := p.store.Entity(selectedID); ok && ctx != nil {
		ctx.NoteReference(e.Category, e.ID)
	}

	// The indirect slot may still be unresolved.
	p.resolveObjects(cmd, ctx)
	return true
}

// finalize runs the per-verb rewrite hook, if any, and settles the pattern.
func (p *Parser) finalize(cmd *types.Command, ctx *types.Context) {
	if f, ok := p.finalizers[cmd.Action]; ok {
		f(cmd, ctx)
	}
	if cmd.Error == "" && cmd.Pattern == types.PatternUnknown && cmd.Action != "" {
		cmd.Pattern = derivePattern(cmd)
	}
}

// implicitCombatTarget rewrites a bare "attack" to target the active combat
// opponent instead of erroring.
func (p *Parser) implicitCombatTarget(cmd *types.Command, ctx *types.Context) {
	if ctx == nil || !ctx.InCombat || ctx.Opponent == "" {
		return
	}
	if cmd.DirectObject != nil && cmd.DirectObject.ResolvedID != "" {
		return
	}
	name := ctx.Opponent
	if n, ok := p.store.EntityName(ctx.Opponent); ok {
		name = strings.ToLower(n)
	}
	cmd.DirectObject = &types.NounPhrase{
		Noun:         name,
		ResolvedID:   ctx.Opponent,
		OriginalText: name,
	}
	cmd.Error = ""
	cmd.Disambiguation = nil
	cmd.Pattern = types.PatternVerbObject
}

// derivePattern computes the command pattern from the populated fields.
// Implicit patterns are assigned during parsing and kept as-is.
func derivePattern(cmd *types.Command) types.CommandPattern {
	switch cmd.Pattern {
	case types.PatternImplicitDirection, types.PatternImplicitObject, types.PatternVerbDirection:
		return cmd.Pattern
	}
	switch {
	case cmd.Action == "":
		return types.PatternUnknown
	case cmd.DirectObject != nil && cmd.IndirectObject != nil && cmd.Preposition != "":
		return types.PatternVerbObjectPrepObject
	case cmd.DirectObject != nil:
		return types.PatternVerbObject
	default:
		return types.PatternVerbOnly
	}
}

func joinWords(tokens []types.Token) string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Word
	}
	return strings.Join(words, " ")
}
