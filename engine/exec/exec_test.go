package exec

import (
	"errors"
	"strings"
	"testing"

	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

func testStore() *world.Store {
	s := world.NewStore()
	s.AddLocation(types.LocationDef{
		ID: "clearing", Name: "Forest Clearing",
		Description: "A grassy clearing ringed by old oaks.",
		Exits:       map[string]string{"north": "thicket"},
	})
	s.AddLocation(types.LocationDef{
		ID: "thicket", Name: "Bramble Thicket",
		Description: "Thorny brambles press in from every side.",
		Exits:       map[string]string{"south": "clearing"},
	})
	s.Spawn([]types.EntityTemplate{
		{ID: "iron_sword", Name: "Iron Sword", Category: "item",
			Description: "A plain but serviceable iron sword.", Location: "clearing"},
		{ID: "giant_weasel", Name: "Giant Weasel", Category: "creature",
			Description: "A weasel the size of a hound.", Location: "clearing"},
		{ID: "bread", Name: "Stale Bread", Category: "item", Location: "clearing"},
	})
	return s
}

func testCtx() *types.Context {
	return &types.Context{PlayerID: "player", Location: "clearing"}
}

func intentFor(sub types.SubIntent, meta map[string]string) types.IntentResult {
	if meta == nil {
		meta = map[string]string{}
	}
	return types.IntentResult{Sub: sub, Confidence: 1.0, Metadata: meta}
}

func TestMoveDirection(t *testing.T) {
	e := New(testStore())
	ctx := testCtx()

	res := e.Execute(intentFor(types.SubMoveDirection, map[string]string{"target_name": "north"}), ctx)
	if !res.Success {
		t.Fatalf("move failed: %q", res.Message)
	}
	if ctx.Location != "thicket" {
		t.Errorf("Location = %q, want \"thicket\"", ctx.Location)
	}
	if res.StateChanges["player_location"] != "thicket" {
		t.Errorf("StateChanges = %v", res.StateChanges)
	}
	if !strings.Contains(res.Message, "Thorny brambles") {
		t.Errorf("expected destination description, got %q", res.Message)
	}
	if !strings.Contains(res.Message, "Exits: south.") {
		t.Errorf("expected exits line, got %q", res.Message)
	}
}

func TestMoveDirection_NoExit(t *testing.T) {
	e := New(testStore())
	ctx := testCtx()

	res := e.Execute(intentFor(types.SubMoveDirection, map[string]string{"target_name": "west"}), ctx)
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Metadata["error"] != "no_exit" {
		t.Errorf("error kind = %q, want \"no_exit\"", res.Metadata["error"])
	}
	if ctx.Location != "clearing" {
		t.Errorf("Location changed to %q on failed move", ctx.Location)
	}
}

func TestLookAround(t *testing.T) {
	e := New(testStore())
	res := e.Execute(intentFor(types.SubLookAround, nil), testCtx())
	if !res.Success {
		t.Fatalf("look failed: %q", res.Message)
	}
	for _, want := range []string{"grassy clearing", "You see:", "Iron Sword", "Exits: north."} {
		if !strings.Contains(res.Message, want) {
			t.Errorf("look output missing %q:\n%s", want, res.Message)
		}
	}
}

func TestExamine(t *testing.T) {
	e := New(testStore())

	res := e.Execute(intentFor(types.SubExamineTarget, map[string]string{
		"target_name": "iron sword", "target": "iron_sword",
	}), testCtx())
	if res.Message != "A plain but serviceable iron sword." {
		t.Errorf("Message = %q", res.Message)
	}

	// Unresolved targets fall back to a generic line.
	res = e.Execute(intentFor(types.SubExamineTarget, map[string]string{
		"target_name": "pebble",
	}), testCtx())
	if res.Message != "You see nothing special about the pebble." {
		t.Errorf("Message = %q", res.Message)
	}
}

func TestMissingTarget(t *testing.T) {
	e := New(testStore())
	res := e.Execute(intentFor(types.SubExamineTarget, nil), testCtx())
	if res.Success || res.Metadata["error"] != "missing_target" {
		t.Errorf("got %+v, want missing_target failure", res)
	}
}

func TestTakeAndInventory(t *testing.T) {
	e := New(testStore())
	ctx := testCtx()

	res := e.Execute(intentFor(types.SubTakeItem, map[string]string{
		"target_name": "iron sword", "target": "iron_sword",
	}), ctx)
	if !res.Success {
		t.Fatalf("take failed: %q", res.Message)
	}
	if res.StateChanges["inventory_added"] != "iron_sword" {
		t.Errorf("StateChanges = %v", res.StateChanges)
	}

	res = e.Execute(intentFor(types.SubCheckInventory, nil), ctx)
	if !strings.Contains(res.Message, "Iron Sword") {
		t.Errorf("inventory output = %q", res.Message)
	}

	// Taking again is already_carried.
	res = e.Execute(intentFor(types.SubTakeItem, map[string]string{
		"target_name": "iron sword", "target": "iron_sword",
	}), ctx)
	if res.Success || res.Metadata["error"] != "already_carried" {
		t.Errorf("got %+v, want already_carried", res)
	}
}

func TestTakeCreature(t *testing.T) {
	e := New(testStore())
	res := e.Execute(intentFor(types.SubTakeItem, map[string]string{
		"target_name": "weasel", "target": "giant_weasel",
	}), testCtx())
	if res.Success || res.Metadata["error"] != "not_portable" {
		t.Errorf("got %+v, want not_portable", res)
	}
}

func TestDrop(t *testing.T) {
	e := New(testStore())
	ctx := testCtx()

	res := e.Execute(intentFor(types.SubDropItem, map[string]string{
		"target_name": "bread", "target": "bread",
	}), ctx)
	if res.Success || res.Metadata["error"] != "not_carried" {
		t.Errorf("dropping uncarried: got %+v", res)
	}

	e.Execute(intentFor(types.SubTakeItem, map[string]string{
		"target_name": "bread", "target": "bread",
	}), ctx)
	res = e.Execute(intentFor(types.SubDropItem, map[string]string{
		"target_name": "bread", "target": "bread",
	}), ctx)
	if !res.Success || res.StateChanges["inventory_removed"] != "bread" {
		t.Errorf("drop: got %+v", res)
	}
}

func TestConsumeRemovesEntity(t *testing.T) {
	store := testStore()
	e := New(store)
	ctx := testCtx()

	e.Execute(intentFor(types.SubTakeItem, map[string]string{
		"target_name": "bread", "target": "bread",
	}), ctx)
	res := e.Execute(intentFor(types.SubEatFood, map[string]string{
		"target_name": "bread", "target": "bread",
	}), ctx)
	if !res.Success || res.StateChanges["consumed"] != "bread" {
		t.Fatalf("eat: got %+v", res)
	}
	if _, found := store.Entity("bread"); found {
		t.Error("eaten entity still exists")
	}

	// Eating something not carried fails.
	res = e.Execute(intentFor(types.SubEatFood, map[string]string{
		"target_name": "iron sword", "target": "iron_sword",
	}), ctx)
	if res.Success || res.Metadata["error"] != "not_carried" {
		t.Errorf("got %+v, want not_carried", res)
	}
}

func TestAttackNarrative(t *testing.T) {
	store := testStore()
	e := New(store)
	ctx := testCtx()

	res := e.Execute(intentFor(types.SubAttackTarget, map[string]string{
		"target_name": "weasel", "target": "giant_weasel",
	}), ctx)
	if !res.Success {
		t.Fatalf("attack failed: %q", res.Message)
	}
	if !ctx.InCombat || ctx.Opponent != "giant_weasel" {
		t.Errorf("combat state not set: %+v", ctx)
	}
	if res.StateChanges["combat_target"] != "giant_weasel" {
		t.Errorf("StateChanges = %v", res.StateChanges)
	}
	en, _ := store.Entity("giant_weasel")
	if !en.InCombat {
		t.Error("entity combat flag not set")
	}
}

func TestFlee(t *testing.T) {
	store := testStore()
	e := New(store)
	ctx := testCtx()

	res := e.Execute(intentFor(types.SubFleeCombat, nil), ctx)
	if res.Success || res.Metadata["error"] != "not_in_combat" {
		t.Errorf("fleeing outside combat: got %+v", res)
	}

	ctx.InCombat = true
	ctx.Opponent = "giant_weasel"
	store.SetCombat("giant_weasel", true)

	res = e.Execute(intentFor(types.SubFleeCombat, nil), ctx)
	if !res.Success || ctx.InCombat {
		t.Errorf("flee: got %+v, ctx %+v", res, ctx)
	}
	en, _ := store.Entity("giant_weasel")
	if en.InCombat {
		t.Error("entity combat flag not cleared")
	}
}

func TestNarrativeTargetHandlers(t *testing.T) {
	e := New(testStore())
	ctx := testCtx()

	res := e.Execute(intentFor(types.SubOpenContainer, map[string]string{
		"target_name": "chest",
	}), ctx)
	if !res.Success || res.Message != "You open the chest." {
		t.Errorf("open: got %+v", res)
	}

	res = e.Execute(intentFor(types.SubPutItemIn, map[string]string{
		"target_name": "bread", "indirect_name": "bag",
	}), ctx)
	if !res.Success || res.Message != "You put the bread in the bag." {
		t.Errorf("put: got %+v", res)
	}

	res = e.Execute(intentFor(types.SubUseItemOnTarget, map[string]string{
		"target_name": "key",
	}), ctx)
	if res.Success || res.Metadata["error"] != "missing_target" {
		t.Errorf("use without second object: got %+v", res)
	}

	res = e.Execute(intentFor(types.SubWearItem, nil), ctx)
	if res.Success || res.Metadata["error"] != "missing_target" {
		t.Errorf("wear without target: got %+v", res)
	}
}

func TestQuit(t *testing.T) {
	e := New(testStore())
	res := e.Execute(intentFor(types.SubQuitGame, nil), testCtx())
	if res.Metadata["quit"] != "true" {
		t.Errorf("Metadata = %v, want quit=true", res.Metadata)
	}
}

// combatStub lets tests drive the service path.
type combatStub struct {
	msg   string
	err   error
	panic bool
}

func (c *combatStub) Attack(ctx *types.Context, targetID string) (string, error) {
	if c.panic {
		panic("combat backend unavailable")
	}
	return c.msg, c.err
}
func (c *combatStub) Defend(ctx *types.Context) (string, error) { return c.msg, c.err }
func (c *combatStub) Flee(ctx *types.Context) (string, error)   { return c.msg, c.err }

func TestCombatService(t *testing.T) {
	e := New(testStore(), WithCombat(&combatStub{msg: "You land a solid blow."}))
	res := e.Execute(intentFor(types.SubAttackTarget, map[string]string{
		"target_name": "weasel", "target": "giant_weasel",
	}), testCtx())
	if !res.Success || res.Message != "You land a solid blow." {
		t.Errorf("got %+v", res)
	}

	e = New(testStore(), WithCombat(&combatStub{err: errors.New("the weasel dodges")}))
	res = e.Execute(intentFor(types.SubAttackTarget, map[string]string{
		"target_name": "weasel", "target": "giant_weasel",
	}), testCtx())
	if res.Success || res.Metadata["error"] != "attack_failed" {
		t.Errorf("got %+v", res)
	}
}

func TestPanicRecovery(t *testing.T) {
	e := New(testStore(), WithCombat(&combatStub{panic: true}))
	res := e.Execute(intentFor(types.SubAttackTarget, map[string]string{
		"target_name": "weasel", "target": "giant_weasel",
	}), testCtx())

	if res.Success {
		t.Fatal("expected failure from panicking handler")
	}
	if res.Metadata["error"] != "execution_failed" {
		t.Errorf("error kind = %q, want \"execution_failed\"", res.Metadata["error"])
	}
	if !strings.Contains(res.Metadata["panic"], "combat backend unavailable") {
		t.Errorf("panic metadata = %q", res.Metadata["panic"])
	}
}

// magicStub drives the spellcasting service path.
type magicStub struct{ msg string }

func (m *magicStub) Cast(ctx *types.Context, spell, targetID string) (string, error) {
	return m.msg, nil
}

func TestMagicService(t *testing.T) {
	e := New(testStore(), WithMagic(&magicStub{msg: "Light blooms around you."}))
	res := e.Execute(intentFor(types.SubCastSpell, map[string]string{
		"target_name": "light",
	}), testCtx())
	if !res.Success || res.Message != "Light blooms around you." {
		t.Errorf("got %+v", res)
	}
}

func TestNilStoreDegradesToNarrative(t *testing.T) {
	e := New(nil)
	res := e.Execute(intentFor(types.SubTakeItem, map[string]string{
		"target_name": "sword",
	}), nil)
	if !res.Success || res.Message != "You take the sword." {
		t.Errorf("got %+v", res)
	}
}
