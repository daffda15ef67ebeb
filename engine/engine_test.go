package engine

import (
	"strings"
	"testing"

	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

func testInterpreter() (*Interpreter, *types.Context) {
	store := world.NewStore()
	store.SetMeta(types.WorldDef{Title: "Test Vale", Start: "clearing"})
	store.AddLocation(types.LocationDef{
		ID: "clearing", Name: "Forest Clearing",
		Description: "A grassy clearing ringed by old oaks.",
		Exits:       map[string]string{"north": "thicket"},
	})
	store.AddLocation(types.LocationDef{
		ID: "thicket", Name: "Bramble Thicket",
		Description: "Thorny brambles press in from every side.",
		Exits:       map[string]string{"south": "clearing"},
	})

	interp := New(store)
	interp.RegisterEntities([]types.EntityTemplate{
		{ID: "giant_weasel", Name: "Giant Weasel", Category: "creature",
			Tier: "dangerous", Adjectives: []string{"huge", "brown"},
			Description: "A weasel the size of a hound.", Location: "clearing"},
		{ID: "iron_sword", Name: "Iron Sword", Category: "item",
			Adjectives:  []string{"iron", "sharp"},
			Description: "A plain but serviceable iron sword.", Location: "clearing"},
		{ID: "trader_maren", Name: "Trader Maren", Category: "npc",
			Aliases: []string{"merchant"}, Location: "clearing"},
		{ID: "vine_weasel", Name: "Vine Weasel", Category: "creature",
			Tier: "harmless", Adjectives: []string{"green", "slender"},
			Description: "A slender weasel with mottled green fur.", Location: "clearing"},
	})

	return interp, &types.Context{PlayerID: "player", Location: "clearing"}
}

func TestStep_TakeItem(t *testing.T) {
	interp, ctx := testInterpreter()

	step := interp.Step("take sword", ctx)
	if !step.Result.Success {
		t.Fatalf("take failed: %q", step.Result.Message)
	}
	if step.Intent.Primary != types.IntentInventory || step.Intent.Sub != types.SubTakeItem {
		t.Errorf("intent = %v/%v", step.Intent.Primary, step.Intent.Sub)
	}
	if !interp.Store.Carrying("player", "iron_sword") {
		t.Error("sword not in inventory after take")
	}
}

func TestStep_Movement(t *testing.T) {
	interp, ctx := testInterpreter()

	step := interp.Step("n", ctx)
	if !step.Result.Success {
		t.Fatalf("move failed: %q", step.Result.Message)
	}
	if ctx.Location != "thicket" {
		t.Errorf("Location = %q, want \"thicket\"", ctx.Location)
	}
	if !strings.Contains(step.Result.Message, "Thorny brambles") {
		t.Errorf("Message = %q", step.Result.Message)
	}

	step = interp.Step("go west", ctx)
	if step.Result.Success || step.Result.Metadata["error"] != "no_exit" {
		t.Errorf("got %+v, want no_exit failure", step.Result)
	}
}

func TestStep_DisambiguationRoundTrip(t *testing.T) {
	interp, ctx := testInterpreter()

	step := interp.Step("attack weasel", ctx)
	if !step.Pending() {
		t.Fatalf("expected pending disambiguation, got %+v", step.Result)
	}
	if step.Result.Metadata["error"] != "disambiguation_required" {
		t.Errorf("Metadata = %v", step.Result.Metadata)
	}
	if step.Result.Message != "Which weasel do you mean?" {
		t.Errorf("Message = %q", step.Result.Message)
	}
	candidates := step.Command.Disambiguation.Candidates
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}

	resumed := interp.Resume(step.Command, ctx, "vine_weasel")
	if resumed.Pending() {
		t.Fatal("still pending after selection")
	}
	if !resumed.Result.Success {
		t.Fatalf("attack after selection failed: %q", resumed.Result.Message)
	}
	if !ctx.InCombat || ctx.Opponent != "vine_weasel" {
		t.Errorf("combat state = %+v", ctx)
	}
}

func TestResume_InvalidSelection(t *testing.T) {
	interp, ctx := testInterpreter()

	step := interp.Step("attack weasel", ctx)
	if !step.Pending() {
		t.Fatal("expected pending disambiguation")
	}

	resumed := interp.Resume(step.Command, ctx, "iron_sword")
	if resumed.Result.Metadata["error"] != "invalid_selection" {
		t.Errorf("Metadata = %v", resumed.Result.Metadata)
	}
	// The command stays suspended for another try.
	if resumed.Command.Disambiguation == nil {
		t.Error("disambiguation discarded on invalid selection")
	}
}

func TestStep_ImplicitCombatTarget(t *testing.T) {
	interp, ctx := testInterpreter()

	step := interp.Step("attack weasel", ctx)
	interp.Resume(step.Command, ctx, "giant_weasel")

	// Bare "attack" mid-combat swings at the current opponent.
	step = interp.Step("attack", ctx)
	if !step.Result.Success {
		t.Fatalf("bare attack failed: %q", step.Result.Message)
	}
	if step.Intent.Metadata["target"] != "giant_weasel" {
		t.Errorf("target = %q, want \"giant_weasel\"", step.Intent.Metadata["target"])
	}
}

func TestStep_VerbParticle(t *testing.T) {
	interp, ctx := testInterpreter()

	step := interp.Step("look at sword", ctx)
	if !step.Result.Success {
		t.Fatalf("look at failed: %q", step.Result.Message)
	}
	if step.Intent.Sub != types.SubExamineTarget {
		t.Errorf("Sub = %v, want SubExamineTarget", step.Intent.Sub)
	}
	if step.Result.Message != "A plain but serviceable iron sword." {
		t.Errorf("Message = %q", step.Result.Message)
	}

	step = interp.Step("talk to maren", ctx)
	if !step.Result.Success {
		t.Fatalf("talk to failed: %q", step.Result.Message)
	}
	if step.Intent.Sub != types.SubTalkTo {
		t.Errorf("Sub = %v, want SubTalkTo", step.Intent.Sub)
	}
	if !strings.Contains(step.Result.Message, "strike up a conversation") {
		t.Errorf("Message = %q", step.Result.Message)
	}
}

func TestStep_ParseError(t *testing.T) {
	interp, ctx := testInterpreter()

	step := interp.Step("frobnicate sword", ctx)
	if step.Result.Metadata["error"] != "parse_error" {
		t.Errorf("Metadata = %v", step.Result.Metadata)
	}
	if !strings.Contains(step.Result.Message, "I don't understand the verb") {
		t.Errorf("Message = %q", step.Result.Message)
	}

	step = interp.Step("", ctx)
	if step.Result.Message != "Please type something." {
		t.Errorf("Message = %q", step.Result.Message)
	}
}

func TestStep_PronounAcrossSteps(t *testing.T) {
	interp, ctx := testInterpreter()

	interp.Step("examine sword", ctx)
	step := interp.Step("take it", ctx)
	if !step.Result.Success {
		t.Fatalf("take it failed: %q", step.Result.Message)
	}
	if !interp.Store.Carrying("player", "iron_sword") {
		t.Error("pronoun did not carry the reference forward")
	}
}

func TestStep_Quit(t *testing.T) {
	interp, ctx := testInterpreter()
	step := interp.Step("quit", ctx)
	if step.Result.Metadata["quit"] != "true" {
		t.Errorf("Metadata = %v", step.Result.Metadata)
	}
}

func TestStep_UnknownIsNotFound(t *testing.T) {
	interp, ctx := testInterpreter()
	// "potion" is vocabulary, but nothing in scope matches it.
	step := interp.Step("take potion", ctx)
	if step.Result.Metadata["error"] != "parse_error" {
		t.Errorf("Metadata = %v", step.Result.Metadata)
	}
	if step.Result.Message != "I don't see any 'potion' here." {
		t.Errorf("Message = %q", step.Result.Message)
	}
}
