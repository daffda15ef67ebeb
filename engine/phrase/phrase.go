// Package phrase turns raw input into classified tokens and extracts noun
// phrases (determiner + adjectives + noun) from them, resolving pronouns
// against the session context and compound nouns by longest match.
package phrase

import (
	"strings"

	"github.com/nathoo/parley/engine/lexicon"
	"github.com/nathoo/parley/types"
)

// Compound-noun scan window. Registered names are short; four words is
// already generous for "the ancient guardian of the vale" style content.
const maxCompoundWords = 4

// NameSource supplies display names for pronoun antecedents.
type NameSource interface {
	EntityName(id string) (string, bool)
}

// Tokenize normalizes raw text and classifies each word against the lexicon.
// Normalization: lowercase, punctuation stripped (apostrophes kept),
// whitespace collapsed. Empty input yields an empty token list.
func Tokenize(lex *lexicon.Lexicon, text string) []types.Token {
	words := strings.Fields(normalize(text))
	tokens := make([]types.Token, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, types.Token{Word: w, Category: lex.Classify(w)})
	}
	return tokens
}

// normalize lowercases and replaces punctuation (except apostrophes) with spaces.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			b.WriteRune(r)
		case r > 127:
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// Extract consumes a noun phrase from the front of the token list and returns
// it with the remaining tokens. Returns (nil, tokens) when the tokens do not
// begin anything phrase-like. A phrase with an empty Noun means adjectives
// were consumed but no noun followed; callers surface that as an incomplete
// object, not a silent drop.
func Extract(lex *lexicon.Lexicon, tokens []types.Token, ctx *types.Context, names NameSource) (*types.NounPhrase, []types.Token) {
	if len(tokens) == 0 {
		return nil, tokens
	}

	if tokens[0].Category == types.CatPronoun {
		return resolvePronoun(tokens[0].Word, ctx, names), tokens[1:]
	}

	var consumed []string
	np := &types.NounPhrase{}
	rest := tokens

	if rest[0].Category == types.CatArticle {
		np.Determiner = rest[0].Word
		consumed = append(consumed, rest[0].Word)
		rest = rest[1:]
	}

	for len(rest) > 0 && rest[0].Category == types.CatAdjective {
		np.Adjectives = append(np.Adjectives, rest[0].Word)
		consumed = append(consumed, rest[0].Word)
		rest = rest[1:]
	}

	// Longest-match compound scan, then a single noun token.
	if compound, n := matchCompound(lex, rest); n > 0 {
		np.Noun = lex.CanonicalNoun(compound)
		for _, t := range rest[:n] {
			consumed = append(consumed, t.Word)
		}
		rest = rest[n:]
	} else if len(rest) > 0 && rest[0].Category == types.CatNoun {
		np.Noun = lex.CanonicalNoun(rest[0].Word)
		consumed = append(consumed, rest[0].Word)
		rest = rest[1:]
	}

	if np.Noun == "" && len(np.Adjectives) == 0 && np.Determiner == "" {
		return nil, tokens
	}

	np.OriginalText = strings.Join(consumed, " ")
	return np, rest
}

// matchCompound scans from the longest window down and returns the first
// phrase that is a known compound noun, with the token count it spans.
func matchCompound(lex *lexicon.Lexicon, tokens []types.Token) (string, int) {
	limit := maxCompoundWords
	if len(tokens) < limit {
		limit = len(tokens)
	}
	for n := limit; n >= 2; n-- {
		words := make([]string, n)
		for i := 0; i < n; i++ {
			words[i] = tokens[i].Word
		}
		candidate := strings.Join(words, " ")
		if lex.IsCompoundNoun(candidate) {
			return candidate, n
		}
	}
	return "", 0
}

// resolvePronoun maps a pronoun to its antecedent from the session context.
// "him"/"her"/"them" prefer the recent creature or NPC; "it"/"them" fall back
// to the recent object; "it" finally falls back to the combat opponent.
func resolvePronoun(word string, ctx *types.Context, names NameSource) *types.NounPhrase {
	np := &types.NounPhrase{Noun: word, OriginalText: word}
	if ctx == nil {
		return np
	}

	var id string
	switch word {
	case "him", "her":
		id = firstNonEmpty(ctx.RecentOf("creature"), ctx.RecentOf("npc"))
	case "them":
		id = firstNonEmpty(ctx.RecentOf("creature"), ctx.RecentOf("npc"), ctx.RecentOf("item"))
	case "it":
		id = firstNonEmpty(ctx.RecentOf("item"), ctx.Opponent)
	}
	if id == "" {
		return np
	}

	np.ResolvedID = id
	if names != nil {
		if name, ok := names.EntityName(id); ok {
			np.Noun = strings.ToLower(name)
		}
	}
	return np
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
