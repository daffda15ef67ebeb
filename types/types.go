// Package types defines the shared data structures for the Parley interpreter.
// This package contains only type definitions and their string forms — no pipeline logic.
package types

// LexCategory classifies a single word.
type LexCategory int

const (
	CatUnknown LexCategory = iota
	CatVerb
	CatNoun
	CatAdjective
	CatPreposition
	CatArticle
	CatDirection
	CatPronoun
)

var lexCategoryNames = [...]string{
	"unknown", "verb", "noun", "adjective", "preposition", "article", "direction", "pronoun",
}

func (c LexCategory) String() string {
	if c >= 0 && int(c) < len(lexCategoryNames) {
		return lexCategoryNames[c]
	}
	return "unknown"
}

// Token is a single classified word from the player's input.
type Token struct {
	Word     string
	Category LexCategory
}

// NounPhrase is a determiner + adjectives + noun group extracted from input.
// Noun is canonical and may be multi-word ("vine weasel"). ResolvedID is set
// once, when the object resolver binds the phrase to a world entity.
type NounPhrase struct {
	Noun         string
	Adjectives   []string
	Determiner   string
	ResolvedID   string
	OriginalText string
}

// CommandPattern identifies the syntactic shape of a parsed command.
type CommandPattern int

const (
	PatternUnknown CommandPattern = iota
	PatternVerbOnly
	PatternVerbDirection
	PatternVerbObject
	PatternVerbObjectPrepObject
	PatternImplicitDirection
	PatternImplicitObject
)

var patternNames = [...]string{
	"unknown", "verb_only", "verb_direction", "verb_object",
	"verb_object_prep_object", "implicit_direction", "implicit_object",
}

func (p CommandPattern) String() string {
	if p >= 0 && int(p) < len(patternNames) {
		return patternNames[p]
	}
	return "unknown"
}

// DisambigTarget says which object slot of a command needs a player choice.
type DisambigTarget int

const (
	DirectTarget DisambigTarget = iota
	IndirectTarget
)

// EntitySummary is one disambiguation candidate, shaped for display.
type EntitySummary struct {
	ID          string
	Name        string
	Adjectives  []string
	Tier        string
	Description string
	Location    string
}

// Disambiguation is the suspended "which one?" state of a command.
type Disambiguation struct {
	Target     DisambigTarget
	Candidates []EntitySummary
}

// Command is the parsed-but-not-yet-classified player request.
// Error and Disambiguation are mutually informative: a pending
// disambiguation always carries a specific "which one?" error text.
type Command struct {
	Action         string
	DirectObject   *NounPhrase
	Preposition    string
	IndirectObject *NounPhrase
	Pattern        CommandPattern
	Error          string
	Disambiguation *Disambiguation
	Confidence     float64
}

// PrimaryIntent is the top-level command category.
type PrimaryIntent int

const (
	IntentUnknown PrimaryIntent = iota
	IntentMovement
	IntentObservation
	IntentInteraction
	IntentCommunication
	IntentCombat
	IntentInventory
	IntentMagic
	IntentMeta
)

var primaryNames = [...]string{
	"unknown", "movement", "observation", "interaction",
	"communication", "combat", "inventory", "magic", "meta",
}

func (p PrimaryIntent) String() string {
	if p >= 0 && int(p) < len(primaryNames) {
		return primaryNames[p]
	}
	return "unknown"
}

// SubIntent is the leaf-level, directly executable classification.
type SubIntent int

const (
	SubUnknown SubIntent = iota
	SubMoveDirection
	SubMoveLocation
	SubLookAround
	SubExamineTarget
	SubSearchArea
	SubTakeItem
	SubDropItem
	SubOpenContainer
	SubCloseContainer
	SubUseItem
	SubUseItemOnTarget
	SubPutItemIn
	SubGiveItemTo
	SubEatFood
	SubDrinkLiquid
	SubWearItem
	SubReadText
	SubTalkTo
	SubAskAbout
	SubSayPhrase
	SubAttackTarget
	SubDefendSelf
	SubFleeCombat
	SubCastSpell
	SubCastSpellOnTarget
	SubCheckInventory
	SubShowHelp
	SubWaitTurn
	SubQuitGame
)

var subIntentNames = [...]string{
	"unknown", "move_direction", "move_location", "look_around", "examine_target",
	"search_area", "take_item", "drop_item", "open_container", "close_container",
	"use_item", "use_item_on_target", "put_item_in", "give_item_to", "eat_food",
	"drink_liquid", "wear_item", "read_text", "talk_to", "ask_about", "say_phrase",
	"attack_target", "defend_self", "flee_combat", "cast_spell", "cast_spell_on_target",
	"check_inventory", "show_help", "wait_turn", "quit_game",
}

func (s SubIntent) String() string {
	if s >= 0 && int(s) < len(subIntentNames) {
		return subIntentNames[s]
	}
	return "unknown"
}

// IntentResult is the routed classification of a command.
type IntentResult struct {
	Primary    PrimaryIntent
	Sub        SubIntent
	Confidence float64
	Metadata   map[string]string
	Reasoning  string
}

// ActionResult is the uniform output of action execution.
type ActionResult struct {
	Success      bool
	Message      string
	StateChanges map[string]string
	Metadata     map[string]string
}

// EntityTemplate is the content-load definition of a world entity.
type EntityTemplate struct {
	ID          string
	Name        string
	Aliases     []string
	Adjectives  []string
	Category    string // "creature", "item", "npc"
	Tier        string // threat tier for creatures ("harmless", "dangerous", ...)
	Description string
	Location    string
}

// LocationDef is the content-load definition of a location.
type LocationDef struct {
	ID          string
	Name        string
	Description string
	Exits       map[string]string // direction → location ID
}

// WorldDef holds world metadata from the content files.
type WorldDef struct {
	Title   string
	Author  string
	Version string
	Start   string // starting location ID
	Intro   string
}

// Context is the per-session game snapshot consulted during interpretation.
// The caller owns it and mutates it between inputs; within one input the
// pipeline reads it and records entity references into Recent.
type Context struct {
	PlayerID string
	Location string
	InCombat bool
	Opponent string            // current or last combat opponent entity ID
	Recent   map[string]string // entity category → most recently referenced ID
}

// NoteReference records an entity as the most recently referenced of its category.
func (c *Context) NoteReference(category, entityID string) {
	if c.Recent == nil {
		c.Recent = map[string]string{}
	}
	c.Recent[category] = entityID
}

// RecentOf returns the most recently referenced entity of a category.
func (c *Context) RecentOf(category string) string {
	return c.Recent[category]
}
