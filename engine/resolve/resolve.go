// Package resolve maps noun phrases to in-scope world entities. Resolution
// is a three-way outcome — matched, not found, or ambiguous with candidates —
// never an error, so every call site branches on all three.
package resolve

import (
	"strings"

	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

// Outcome is the three-way result of a resolution attempt.
type Outcome int

const (
	NotFound Outcome = iota
	Matched
	Ambiguous
)

// Result carries the outcome: an entity ID when matched, candidate
// summaries when ambiguous.
type Result struct {
	Outcome    Outcome
	ID         string
	Candidates []types.EntitySummary
}

const descriptionLimit = 60

// Minimum adjective length for the name-word fallback match. Short
// adjectives over-match entity names otherwise.
const minAdjectiveLen = 3

// Resolve maps a noun (canonical, possibly multi-word) plus adjectives to an
// entity in scope. Scope is the player's location, their inventory, and
// co-located creatures, optionally narrowed to one entity category. A unique
// match is recorded in the context as the most recently referenced entity of
// its category, feeding later pronoun resolution.
func Resolve(store *world.Store, ctx *types.Context, noun string, adjectives []string, typeFilter string) Result {
	noun = strings.ToLower(strings.TrimSpace(noun))
	if noun == "" {
		return Result{Outcome: NotFound}
	}

	scope := buildScope(store, ctx, typeFilter)

	matches := matchName(scope, noun)

	// "gleaming sword" for "iron sword": retry with the final word alone.
	last := noun
	if len(matches) == 0 && strings.Contains(noun, " ") {
		words := strings.Fields(noun)
		last = words[len(words)-1]
		matches = matchName(scope, last)
	}

	// The reverse elision: a bare "weasel" matches every entity whose name
	// ends in it. More than one survivor here is what ambiguity looks like.
	if len(matches) == 0 {
		matches = matchFinalWord(scope, last)
	}

	// A bare category word ("creature") matches every entity of that
	// category, the same way a shared final word does.
	if len(matches) == 0 {
		matches = matchCategory(scope, last)
	}

	if len(adjectives) > 0 && len(matches) > 0 {
		matches = filterByAdjectives(matches, adjectives)
	}

	switch len(matches) {
	case 0:
		return Result{Outcome: NotFound}
	case 1:
		noteReference(ctx, matches[0])
		return Result{Outcome: Matched, ID: matches[0].ID}
	}

	if id, ok := breakTie(ctx, matches); ok {
		for _, e := range matches {
			if e.ID == id {
				noteReference(ctx, e)
			}
		}
		return Result{Outcome: Matched, ID: id}
	}

	return Result{Outcome: Ambiguous, Candidates: summarize(matches)}
}

// buildScope gathers the entities eligible for resolution: location
// residents plus carried items, deduplicated, optionally type-filtered.
func buildScope(store *world.Store, ctx *types.Context, typeFilter string) []world.Entity {
	var scope []world.Entity
	seen := map[string]bool{}
	add := func(entities []world.Entity) {
		for _, e := range entities {
			if seen[e.ID] {
				continue
			}
			if typeFilter != "" && e.Category != typeFilter {
				continue
			}
			seen[e.ID] = true
			scope = append(scope, e)
		}
	}
	if ctx != nil {
		add(store.EntitiesAt(ctx.Location))
		add(store.Inventory(ctx.PlayerID))
	}
	return scope
}

// matchName keeps entities whose name or any alias equals the noun.
func matchName(scope []world.Entity, noun string) []world.Entity {
	var matches []world.Entity
	for _, e := range scope {
		if strings.ToLower(e.Name) == noun {
			matches = append(matches, e)
			continue
		}
		for _, alias := range e.Aliases {
			if strings.ToLower(alias) == noun {
				matches = append(matches, e)
				break
			}
		}
	}
	return matches
}

// matchFinalWord keeps entities whose multi-word name ends with the noun.
func matchFinalWord(scope []world.Entity, noun string) []world.Entity {
	var matches []world.Entity
	for _, e := range scope {
		words := strings.Fields(strings.ToLower(e.Name))
		if len(words) > 1 && words[len(words)-1] == noun {
			matches = append(matches, e)
		}
	}
	return matches
}

// matchCategory keeps entities whose category tag equals the noun.
func matchCategory(scope []world.Entity, noun string) []world.Entity {
	var matches []world.Entity
	for _, e := range scope {
		if strings.ToLower(e.Category) == noun {
			matches = append(matches, e)
		}
	}
	return matches
}

// filterByAdjectives keeps entities that satisfy the supplied adjectives:
// every adjective in the entity's adjective set, or an adjective appearing
// as a word of the entity's name, or an adjective equal to the entity's
// threat tier or category tag.
func filterByAdjectives(matches []world.Entity, adjectives []string) []world.Entity {
	var narrowed []world.Entity
	for _, e := range matches {
		if satisfiesAdjectives(e, adjectives) {
			narrowed = append(narrowed, e)
		}
	}
	return narrowed
}

func satisfiesAdjectives(e world.Entity, adjectives []string) bool {
	own := map[string]bool{}
	for _, a := range e.Adjectives {
		own[strings.ToLower(a)] = true
	}

	all := true
	for _, adj := range adjectives {
		if !own[strings.ToLower(adj)] {
			all = false
			break
		}
	}
	if all {
		return true
	}

	nameWords := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(e.Name)) {
		nameWords[w] = true
	}
	tier := strings.ToLower(e.Tier)
	category := strings.ToLower(e.Category)

	for _, adj := range adjectives {
		a := strings.ToLower(adj)
		if len([]rune(a)) >= minAdjectiveLen && nameWords[a] {
			return true
		}
		if a == tier || a == category {
			return true
		}
	}
	return false
}

// breakTie applies the context-based disambiguation order: the current
// combat opponent, then the most recently referenced entity of the same
// category, then the first candidate already engaged in combat.
func breakTie(ctx *types.Context, matches []world.Entity) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if ctx.Opponent != "" {
		for _, e := range matches {
			if e.ID == ctx.Opponent {
				return e.ID, true
			}
		}
	}
	for _, e := range matches {
		if recent := ctx.RecentOf(e.Category); recent != "" && recent == e.ID {
			return e.ID, true
		}
	}
	for _, e := range matches {
		if e.InCombat {
			return e.ID, true
		}
	}
	return "", false
}

func noteReference(ctx *types.Context, e world.Entity) {
	if ctx != nil {
		ctx.NoteReference(e.Category, e.ID)
	}
}

func summarize(matches []world.Entity) []types.EntitySummary {
	summaries := make([]types.EntitySummary, 0, len(matches))
	for _, e := range matches {
		summaries = append(summaries, types.EntitySummary{
			ID:          e.ID,
			Name:        e.Name,
			Adjectives:  append([]string(nil), e.Adjectives...),
			Tier:        e.Tier,
			Description: truncate(e.Description, descriptionLimit),
			Location:    e.Location,
		})
	}
	return summaries
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
