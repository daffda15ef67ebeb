// Package exec dispatches routed sub-intents to handlers that perform (or
// request) the corresponding game-state effect. Handlers call into capability
// services when wired and fall back to narrative, state-free descriptions
// when not, so the pipeline stays usable in isolation. The dispatch boundary
// converts any handler panic into an execution_failed result — a raw fault
// never reaches the caller.
package exec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

// CombatService is the external combat capability.
type CombatService interface {
	Attack(ctx *types.Context, targetID string) (string, error)
	Defend(ctx *types.Context) (string, error)
	Flee(ctx *types.Context) (string, error)
}

// MagicService is the external spellcasting capability.
type MagicService interface {
	Cast(ctx *types.Context, spell, targetID string) (string, error)
}

// Executor runs sub-intents against the world store and optional services.
// A nil store or service degrades the affected handlers to narrative output.
type Executor struct {
	store  *world.Store
	combat CombatService
	magic  MagicService
}

// Option configures an Executor.
type Option func(*Executor)

// WithCombat wires an external combat service.
func WithCombat(c CombatService) Option {
	return func(e *Executor) { e.combat = c }
}

// WithMagic wires an external magic service.
func WithMagic(m MagicService) Option {
	return func(e *Executor) { e.magic = m }
}

// New creates an executor over the given world store.
func New(store *world.Store, opts ...Option) *Executor {
	e := &Executor{store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute dispatches one routed intent. The switch over sub-intents is
// exhaustive; adding a leaf without a handler is a compile-visible gap here.
func (e *Executor) Execute(res types.IntentResult, ctx *types.Context) (result types.ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = fail("Something went wrong performing that action.", "execution_failed")
			result.Metadata["panic"] = fmt.Sprint(r)
		}
	}()

	switch res.Sub {
	case types.SubMoveDirection:
		return e.moveDirection(res, ctx)
	case types.SubMoveLocation:
		return e.moveLocation(res, ctx)
	case types.SubLookAround:
		return e.lookAround(ctx)
	case types.SubExamineTarget:
		return e.examine(res)
	case types.SubSearchArea:
		return ok("You search the area carefully but find nothing out of the ordinary.")
	case types.SubTakeItem:
		return e.take(res, ctx)
	case types.SubDropItem:
		return e.drop(res, ctx)
	case types.SubOpenContainer:
		return e.targeted(res, "You open the %s.")
	case types.SubCloseContainer:
		return e.targeted(res, "You close the %s.")
	case types.SubUseItem:
		return e.targeted(res, "You use the %s.")
	case types.SubUseItemOnTarget:
		return e.targetedPair(res, "You use the %s on the %s.")
	case types.SubPutItemIn:
		return e.targetedPair(res, "You put the %s in the %s.")
	case types.SubGiveItemTo:
		return e.give(res, ctx)
	case types.SubEatFood:
		return e.consume(res, ctx, "You eat the %s.")
	case types.SubDrinkLiquid:
		return e.consume(res, ctx, "You drink the %s.")
	case types.SubWearItem:
		return e.targeted(res, "You put on the %s.")
	case types.SubReadText:
		return e.read(res)
	case types.SubTalkTo:
		return e.targeted(res, "You strike up a conversation with the %s.")
	case types.SubAskAbout:
		return e.ask(res)
	case types.SubSayPhrase:
		return ok("You say your piece aloud.")
	case types.SubAttackTarget:
		return e.attack(res, ctx)
	case types.SubDefendSelf:
		return e.defend(ctx)
	case types.SubFleeCombat:
		return e.flee(ctx)
	case types.SubCastSpell, types.SubCastSpellOnTarget:
		return e.cast(res, ctx)
	case types.SubCheckInventory:
		return e.checkInventory(ctx)
	case types.SubShowHelp:
		return e.help()
	case types.SubWaitTurn:
		return ok("Time passes.")
	case types.SubQuitGame:
		r := ok("Farewell.")
		r.Metadata["quit"] = "true"
		return r
	case types.SubUnknown:
		return fail("I'm not sure what you want to do.", "unknown_intent")
	}
	return fail("I'm not sure what you want to do.", "unknown_intent")
}

func (e *Executor) moveDirection(res types.IntentResult, ctx *types.Context) types.ActionResult {
	dir := res.Metadata["target_name"]
	if dir == "" {
		return fail("Go where?", "missing_target")
	}
	if e.store == nil || ctx == nil {
		return ok(fmt.Sprintf("You head %s.", dir))
	}
	dest, err := e.store.Move(ctx.Location, dir)
	if err != nil {
		return fail("You can't go that way.", "no_exit")
	}
	ctx.Location = dest
	r := ok(strings.Join(e.describeLocation(dest), "\n"))
	r.StateChanges["player_location"] = dest
	return r
}

func (e *Executor) moveLocation(res types.IntentResult, ctx *types.Context) types.ActionResult {
	name := res.Metadata["target_name"]
	if name == "" {
		return fail("Go where?", "missing_target")
	}
	return ok(fmt.Sprintf("You make your way toward the %s.", name))
}

func (e *Executor) lookAround(ctx *types.Context) types.ActionResult {
	if e.store == nil || ctx == nil {
		return ok("You take in your surroundings.")
	}
	return ok(strings.Join(e.describeLocation(ctx.Location), "\n"))
}

// describeLocation produces the standard location description lines.
func (e *Executor) describeLocation(locationID string) []string {
	loc, found := e.store.Location(locationID)
	if !found {
		return []string{"You are somewhere unknown."}
	}
	lines := []string{loc.Description}

	entities := e.store.EntitiesAt(locationID)
	if len(entities) > 0 {
		names := make([]string, 0, len(entities))
		for _, en := range entities {
			names = append(names, en.Name)
		}
		lines = append(lines, "You see: "+strings.Join(names, ", ")+".")
	}

	exits := e.store.Exits(locationID)
	if len(exits) > 0 {
		dirs := make([]string, 0, len(exits))
		for dir := range exits {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		lines = append(lines, "Exits: "+strings.Join(dirs, ", ")+".")
	}
	return lines
}

func (e *Executor) examine(res types.IntentResult) types.ActionResult {
	name, id, missing := target(res)
	if missing != nil {
		return *missing
	}
	if e.store != nil && id != "" {
		if en, found := e.store.Entity(id); found && en.Description != "" {
			return ok(en.Description)
		}
	}
	return ok(fmt.Sprintf("You see nothing special about the %s.", name))
}

func (e *Executor) take(res types.IntentResult, ctx *types.Context) types.ActionResult {
	name, id, missing := target(res)
	if missing != nil {
		return *missing
	}
	if e.store == nil || ctx == nil || id == "" {
		return ok(fmt.Sprintf("You take the %s.", name))
	}
	switch err := e.store.Take(ctx.PlayerID, ctx.Location, id); err {
	case nil:
		r := ok(fmt.Sprintf("You take the %s.", name))
		r.StateChanges["inventory_added"] = id
		return r
	case world.ErrAlreadyCarried:
		return fail("You already have that.", "already_carried")
	case world.ErrNotPortable:
		return fail(fmt.Sprintf("You can't take the %s.", name), "not_portable")
	default:
		return fail(fmt.Sprintf("You don't see the %s here.", name), "not_present")
	}
}

func (e *Executor) drop(res types.IntentResult, ctx *types.Context) types.ActionResult {
	name, id, missing := target(res)
	if missing != nil {
		return *missing
	}
	if e.store == nil || ctx == nil || id == "" {
		return ok(fmt.Sprintf("You drop the %s.", name))
	}
	if err := e.store.Drop(ctx.PlayerID, ctx.Location, id); err != nil {
		return fail("You don't have that.", "not_carried")
	}
	r := ok(fmt.Sprintf("You drop the %s.", name))
	r.StateChanges["inventory_removed"] = id
	return r
}

func (e *Executor) give(res types.IntentResult, ctx *types.Context) types.ActionResult {
	name, id, missing := target(res)
	if missing != nil {
		return *missing
	}
	recipient := res.Metadata["indirect_name"]
	if recipient == "" {
		return fail("Who do you want to give that to?", "missing_target")
	}
	if e.store != nil && ctx != nil && id != "" && !e.store.Carrying(ctx.PlayerID, id) {
		return fail(fmt.Sprintf("You don't have the %s.", name), "not_carried")
	}
	return ok(fmt.Sprintf("You give the %s to the %s.", name, recipient))
}

func (e *Executor) consume(res types.IntentResult, ctx *types.Context, format string) types.ActionResult {
	name, id, missing := target(res)
	if missing != nil {
		return *missing
	}
	if e.store != nil && ctx != nil && id != "" {
		if err := e.store.Remove(ctx.PlayerID, id); err == nil {
			r := ok(fmt.Sprintf(format, name))
			r.StateChanges["consumed"] = id
			return r
		}
		return fail(fmt.Sprintf("You don't have the %s.", name), "not_carried")
	}
	return ok(fmt.Sprintf(format, name))
}

func (e *Executor) read(res types.IntentResult) types.ActionResult {
	name, id, missing := target(res)
	if missing != nil {
		return *missing
	}
	if e.store != nil && id != "" {
		if en, found := e.store.Entity(id); found && en.Description != "" {
			return ok(en.Description)
		}
	}
	return ok(fmt.Sprintf("There is nothing written on the %s.", name))
}

func (e *Executor) ask(res types.IntentResult) types.ActionResult {
	name, _, missing := target(res)
	if missing != nil {
		return *missing
	}
	topic := res.Metadata["indirect_name"]
	if topic == "" {
		return ok(fmt.Sprintf("You ask the %s a question.", name))
	}
	return ok(fmt.Sprintf("You ask the %s about the %s.", name, topic))
}

func (e *Executor) attack(res types.IntentResult, ctx *types.Context) types.ActionResult {
	name, id, missing := target(res)
	if missing != nil {
		return *missing
	}
	if e.combat != nil {
		msg, err := e.combat.Attack(ctx, id)
		if err != nil {
			return fail(err.Error(), "attack_failed")
		}
		return ok(msg)
	}
	if ctx != nil && id != "" {
		ctx.InCombat = true
		ctx.Opponent = id
		if e.store != nil {
			e.store.SetCombat(id, true)
		}
	}
	r := ok(fmt.Sprintf("You attack the %s!", name))
	if id != "" {
		r.StateChanges["combat_target"] = id
	}
	return r
}

func (e *Executor) defend(ctx *types.Context) types.ActionResult {
	if e.combat != nil {
		msg, err := e.combat.Defend(ctx)
		if err != nil {
			return fail(err.Error(), "defend_failed")
		}
		return ok(msg)
	}
	return ok("You raise your guard and brace yourself.")
}

func (e *Executor) flee(ctx *types.Context) types.ActionResult {
	if e.combat != nil {
		msg, err := e.combat.Flee(ctx)
		if err != nil {
			return fail(err.Error(), "flee_failed")
		}
		return ok(msg)
	}
	if ctx == nil || !ctx.InCombat {
		return fail("You're not fighting anything.", "not_in_combat")
	}
	if e.store != nil && ctx.Opponent != "" {
		e.store.SetCombat(ctx.Opponent, false)
	}
	ctx.InCombat = false
	r := ok("You break away from the fight.")
	r.StateChanges["combat_ended"] = "true"
	return r
}

func (e *Executor) cast(res types.IntentResult, ctx *types.Context) types.ActionResult {
	spell, _, missing := target(res)
	if missing != nil {
		return *missing
	}
	targetID := res.Metadata["indirect_target"]
	if e.magic != nil {
		msg, err := e.magic.Cast(ctx, spell, targetID)
		if err != nil {
			return fail(err.Error(), "cast_failed")
		}
		return ok(msg)
	}
	if name := res.Metadata["indirect_name"]; name != "" {
		return ok(fmt.Sprintf("You trace the sigils of %s at the %s.", spell, name))
	}
	return ok(fmt.Sprintf("You trace the sigils of %s in the air.", spell))
}

func (e *Executor) checkInventory(ctx *types.Context) types.ActionResult {
	if e.store == nil || ctx == nil {
		return ok("You pat your pockets.")
	}
	carried := e.store.Inventory(ctx.PlayerID)
	if len(carried) == 0 {
		return ok("You are carrying nothing.")
	}
	names := make([]string, 0, len(carried))
	for _, en := range carried {
		names = append(names, en.Name)
	}
	return ok("You are carrying: " + strings.Join(names, ", ") + ".")
}

func (e *Executor) help() types.ActionResult {
	return ok(strings.Join([]string{
		"Things you can try:",
		"  look / examine <thing>     — observe your surroundings",
		"  go <direction>             — move (or just n/s/e/w/u/d)",
		"  take/drop <item>           — manage what you carry",
		"  put <item> in <container>  — stow something",
		"  give <item> to <someone>   — hand something over",
		"  attack <creature>          — start a fight",
		"  talk to <someone>          — strike up a conversation",
		"  cast <spell> [on <thing>]  — work magic",
		"  inventory (i)              — check what you're carrying",
	}, "\n"))
}

// targeted handles the simple one-object narrative actions: validate the
// target, then describe the action with the target's name.
func (e *Executor) targeted(res types.IntentResult, format string) types.ActionResult {
	name, _, missing := target(res)
	if missing != nil {
		return *missing
	}
	return ok(fmt.Sprintf(format, name))
}

// targetedPair is the two-object variant: the direct object fills the first
// format slot, the indirect object the second.
func (e *Executor) targetedPair(res types.IntentResult, format string) types.ActionResult {
	name, _, missing := target(res)
	if missing != nil {
		return *missing
	}
	other := res.Metadata["indirect_name"]
	if other == "" {
		return fail("That action needs a second target.", "missing_target")
	}
	return ok(fmt.Sprintf(format, name, other))
}

// target extracts the target name/ID from intent metadata, or a
// missing_target failure when the handler requires one.
func target(res types.IntentResult) (name, id string, missing *types.ActionResult) {
	name = res.Metadata["target_name"]
	id = res.Metadata["target"]
	if name == "" && id == "" {
		r := fail("That action needs a target.", "missing_target")
		return "", "", &r
	}
	if name == "" {
		name = id
	}
	return name, id, nil
}

func ok(message string) types.ActionResult {
	return types.ActionResult{
		Success:      true,
		Message:      message,
		StateChanges: map[string]string{},
		Metadata:     map[string]string{},
	}
}

func fail(message, kind string) types.ActionResult {
	return types.ActionResult{
		Success:      false,
		Message:      message,
		StateChanges: map[string]string{},
		Metadata:     map[string]string{"error": kind},
	}
}
