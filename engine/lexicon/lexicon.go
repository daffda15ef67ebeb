// Package lexicon holds the mutable vocabulary the pipeline classifies against:
// verbs with synonym mapping, simple and compound nouns, aliases, adjectives,
// prepositions, articles, directions, and pronouns. Registered entity names
// grow the vocabulary; nothing is ever removed within a session.
package lexicon

import (
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/nathoo/parley/types"
)

var defaultVerbs = map[string]string{
	// Look / Examine
	"look": "look", "l": "look",
	"examine": "examine", "x": "examine",
	"inspect": "examine", "check": "examine",
	"study": "examine", "observe": "examine",
	"search": "search", "scan": "search",

	// Movement
	"go": "go", "walk": "go", "run": "go", "head": "go",
	"travel": "go", "proceed": "go", "enter": "go",

	// Take / Drop
	"take": "take", "get": "take", "grab": "take",
	"pick": "take", "hold": "take", "carry": "take",
	"drop": "drop", "discard": "drop",

	// Combat
	"attack": "attack", "hit": "attack", "fight": "attack",
	"strike": "attack", "kill": "attack", "punch": "attack",
	"smash": "attack", "slay": "attack",
	"defend": "defend", "block": "defend", "guard": "defend",
	"flee": "flee", "escape": "flee", "retreat": "flee",

	// Communication
	"talk": "talk", "speak": "talk", "chat": "talk", "converse": "talk",
	"say": "say", "shout": "say", "whisper": "say",
	"ask": "ask", "question": "ask",

	// Open / Close
	"open": "open", "unlock": "open",
	"close": "close", "shut": "close", "lock": "close",

	// Put / Give / Use
	"put": "put", "place": "put", "insert": "put", "store": "put",
	"give": "give", "offer": "give", "hand": "give",
	"use": "use", "apply": "use", "activate": "use",

	// Consumption
	"eat": "eat", "consume": "eat", "taste": "eat", "devour": "eat",
	"drink": "drink", "sip": "drink", "quaff": "drink",

	// Equipment / Reading
	"wear": "wear", "don": "wear", "equip": "wear",
	"read": "read",

	// Magic
	"cast": "cast", "invoke": "cast", "channel": "cast",

	// Meta
	"inventory": "inventory", "inv": "inventory", "i": "inventory",
	"help": "help", "quit": "quit", "exit": "quit",
	"wait": "wait", "z": "wait",
}

var defaultNouns = []string{
	"sword", "shield", "dagger", "bow", "potion", "key", "door", "chest",
	"torch", "map", "coin", "rope", "book", "scroll", "bread", "water",
	"armor", "helmet", "bag", "gem", "spell",
}

var defaultAdjectives = []string{
	"iron", "rusty", "old", "new", "small", "large", "big", "little",
	"red", "blue", "green", "golden", "silver", "wooden", "stone",
	"sharp", "dull", "ancient", "broken", "shiny", "dark", "glowing",
}

var defaultPrepositions = []string{
	"on", "at", "to", "with", "in", "into", "from", "about", "under",
}

var defaultArticles = []string{"the", "a", "an"}

// Direction words and their short forms. Short forms expand to the full name.
var defaultDirections = map[string]string{
	"north": "north", "south": "south", "east": "east", "west": "west",
	"northeast": "northeast", "northwest": "northwest",
	"southeast": "southeast", "southwest": "southwest",
	"up": "up", "down": "down",
	"n": "north", "s": "south", "e": "east", "w": "west",
	"ne": "northeast", "nw": "northwest", "se": "southeast", "sw": "southwest",
	"u": "up", "d": "down",
}

var defaultPronouns = []string{"it", "him", "her", "them"}

// Words skipped when deriving simple nouns from a multi-word entity name.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true, "on": true,
}

// Lexicon is the shared vocabulary. Reads are concurrent; growth
// (RegisterEntities) takes the write lock, so content loading should
// happen before sessions start serving input.
type Lexicon struct {
	mu         sync.RWMutex
	verbs      map[string]string // surface form → canonical
	nouns      map[string]bool
	compounds  map[string]bool   // multi-word nouns, space-joined
	aliases    map[string]string // alias → canonical noun
	adjectives map[string]bool
	preps      map[string]bool
	articles   map[string]bool
	directions map[string]string // surface form → full direction name
	pronouns   map[string]bool
}

// New creates a lexicon seeded with the default vocabulary.
func New() *Lexicon {
	l := &Lexicon{
		verbs:      make(map[string]string, len(defaultVerbs)),
		nouns:      map[string]bool{},
		compounds:  map[string]bool{},
		aliases:    map[string]string{},
		adjectives: map[string]bool{},
		preps:      map[string]bool{},
		articles:   map[string]bool{},
		directions: make(map[string]string, len(defaultDirections)),
		pronouns:   map[string]bool{},
	}
	for w, canon := range defaultVerbs {
		l.verbs[w] = canon
	}
	for _, w := range defaultNouns {
		l.nouns[w] = true
	}
	for _, w := range defaultAdjectives {
		l.adjectives[w] = true
	}
	for _, w := range defaultPrepositions {
		l.preps[w] = true
	}
	for _, w := range defaultArticles {
		l.articles[w] = true
	}
	for w, full := range defaultDirections {
		l.directions[w] = full
	}
	for _, w := range defaultPronouns {
		l.pronouns[w] = true
	}
	return l
}

// Classify assigns a lexical category to a word. Categories are not mutually
// exclusive in the vocabulary ("open" is a verb, a door can be "open"), so
// the first match in a fixed priority order wins.
func (l *Lexicon) Classify(word string) types.LexCategory {
	w := strings.ToLower(strings.TrimSpace(word))
	l.mu.RLock()
	defer l.mu.RUnlock()

	switch {
	case l.verbs[w] != "":
		return types.CatVerb
	case l.pronouns[w]:
		return types.CatPronoun
	case l.directions[w] != "":
		return types.CatDirection
	case l.nouns[w] || l.aliases[w] != "":
		return types.CatNoun
	case l.adjectives[w]:
		return types.CatAdjective
	case l.preps[w]:
		return types.CatPreposition
	case l.articles[w]:
		return types.CatArticle
	default:
		return types.CatUnknown
	}
}

// CanonicalVerb maps a verb synonym to its canonical form.
// Unknown words are returned unchanged.
func (l *Lexicon) CanonicalVerb(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	l.mu.RLock()
	defer l.mu.RUnlock()
	if canon, ok := l.verbs[w]; ok {
		return canon
	}
	return w
}

// IsVerb reports whether the word is a known verb or verb synonym.
func (l *Lexicon) IsVerb(word string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.verbs[strings.ToLower(word)] != ""
}

// CanonicalNoun resolves a noun through the alias map, then the compound-noun
// map, then the raw noun set. It never fails: unknown input comes back unchanged.
func (l *Lexicon) CanonicalNoun(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	l.mu.RLock()
	defer l.mu.RUnlock()
	if canon, ok := l.aliases[w]; ok && canon != "" {
		return canon
	}
	// Known compounds and simple nouns are already canonical; unknown
	// words pass through untouched.
	return w
}

// IsCompoundNoun reports whether the space-joined phrase is a known compound noun.
func (l *Lexicon) IsCompoundNoun(phrase string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.compounds[strings.ToLower(phrase)]
}

// CanonicalDirection expands a direction word or short form ("ne") to its
// full name. Returns ("", false) for non-directions.
func (l *Lexicon) CanonicalDirection(word string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	full, ok := l.directions[strings.ToLower(word)]
	return full, ok
}

// RegisterEntities grows the vocabulary from entity templates. For each
// entity: the full name becomes a compound noun (if multi-word), every
// non-stopword token of the name becomes a simple noun, the final word of a
// multi-word name becomes an alias of the whole ("weasel" → "vine weasel"),
// and explicit aliases plus the category and threat-tier tags map to the name.
func (l *Lexicon) RegisterEntities(templates []types.EntityTemplate) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, t := range templates {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" {
			continue
		}
		words := strings.Fields(name)

		if len(words) > 1 {
			l.compounds[name] = true
			last := words[len(words)-1]
			if existing, taken := l.aliases[last]; !taken {
				l.aliases[last] = name
			} else if existing != "" && existing != name {
				// Two entities share a final word ("vine weasel", "giant
				// weasel"): the bare word stays a plain noun so the resolver
				// sees both instead of whichever registered first.
				l.aliases[last] = ""
			}
		}
		for _, w := range words {
			if !stopwords[w] {
				l.nouns[w] = true
			}
		}

		for _, alias := range t.Aliases {
			a := strings.ToLower(strings.TrimSpace(alias))
			if a == "" {
				continue
			}
			if strings.Contains(a, " ") {
				l.compounds[a] = true
			}
			l.aliases[a] = name
			l.nouns[strings.Fields(a)[len(strings.Fields(a))-1]] = true
		}

		if tag := strings.ToLower(t.Category); tag != "" {
			// Same rule as shared final words: a category tag claimed by
			// more than one entity stays a plain noun.
			if existing, taken := l.aliases[tag]; !taken {
				l.aliases[tag] = name
			} else if existing != "" && existing != name {
				l.aliases[tag] = ""
			}
			l.nouns[tag] = true
		}
		if tag := strings.ToLower(t.Tier); tag != "" {
			l.adjectives[tag] = true
		}

		for _, adj := range t.Adjectives {
			l.adjectives[strings.ToLower(adj)] = true
		}
	}
}

// SuggestVerb returns the closest known verb to a misspelled word, or ""
// when nothing is within the edit-distance budget for the word's length.
func (l *Lexicon) SuggestVerb(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return ""
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	best := ""
	bestDist := -1
	for surface, canon := range l.verbs {
		if len(surface) < 3 {
			continue
		}
		dist := levenshtein.ComputeDistance(w, surface)
		if dist > distanceLimit(len(surface)) {
			continue
		}
		if bestDist == -1 || dist < bestDist || (dist == bestDist && canon < best) {
			best = canon
			bestDist = dist
		}
	}
	return best
}

// distanceLimit scales the allowed edit distance with candidate length.
func distanceLimit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 7:
		return 2
	default:
		return 3
	}
}
