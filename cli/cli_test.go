package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nathoo/parley/engine"
	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/types"
)

func testCLI(input string) (*CLI, *bytes.Buffer) {
	store := world.NewStore()
	store.SetMeta(types.WorldDef{
		Title: "Test Vale", Start: "clearing", Intro: "The test begins.",
	})
	store.AddLocation(types.LocationDef{
		ID: "clearing", Name: "Forest Clearing",
		Description: "A grassy clearing ringed by old oaks.",
		Exits:       map[string]string{"north": "thicket"},
	})
	store.AddLocation(types.LocationDef{
		ID: "thicket", Name: "Bramble Thicket", Description: "Thorny brambles.",
	})

	interp := engine.New(store)
	interp.RegisterEntities([]types.EntityTemplate{
		{ID: "giant_weasel", Name: "Giant Weasel", Category: "creature",
			Tier: "dangerous", Location: "clearing"},
		{ID: "iron_sword", Name: "Iron Sword", Category: "item", Location: "clearing"},
		{ID: "vine_weasel", Name: "Vine Weasel", Category: "creature",
			Tier: "harmless", Location: "clearing"},
	})

	ctx := &types.Context{PlayerID: "player", Location: "clearing"}
	c := New(interp, ctx)
	c.In = strings.NewReader(input)
	out := &bytes.Buffer{}
	c.Out = out
	return c, out
}

func TestRun_BasicSession(t *testing.T) {
	c, out := testCLI("take sword\ninventory\n/state\n/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{
		"The test begins.",
		"A grassy clearing ringed by old oaks.",
		"You see: Giant Weasel, Iron Sword, Vine Weasel.",
		"You take the iron sword.",
		"You are carrying: Iron Sword.",
		"Location: clearing",
		"[Goodbye.]",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestRun_DisambiguationMenu(t *testing.T) {
	c, out := testCLI("attack weasel\n2\n/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{
		"Which weasel do you mean?",
		"1. Giant Weasel (dangerous)",
		"2. Vine Weasel (harmless)",
		"You attack the weasel!",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if !c.Ctx.InCombat || c.Ctx.Opponent != "vine_weasel" {
		t.Errorf("combat state = %+v", c.Ctx)
	}
}

func TestRun_SelectionValidation(t *testing.T) {
	c, out := testCLI("attack weasel\n9\nnope\ncancel\n/quit\n")
	c.Run()

	output := out.String()
	if strings.Count(output, "Pick a number between 1 and 2, or 'cancel'.") != 2 {
		t.Errorf("expected two validation prompts:\n%s", output)
	}
	if !strings.Contains(output, "Never mind.") {
		t.Errorf("expected cancellation message:\n%s", output)
	}
	if c.Ctx.InCombat {
		t.Error("cancelled command still entered combat")
	}
}

func TestRun_Again(t *testing.T) {
	c, out := testCLI("again\nlook\ng\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Nothing to repeat.") {
		t.Errorf("expected empty-repeat message:\n%s", output)
	}
	// The initial look, the explicit look, and the repeated one.
	if got := strings.Count(output, "A grassy clearing ringed by old oaks."); got != 3 {
		t.Errorf("expected 3 location descriptions, got %d:\n%s", got, output)
	}
}

func TestRun_QuitVerb(t *testing.T) {
	c, out := testCLI("quit\nnever reached\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Farewell.") {
		t.Errorf("expected farewell:\n%s", output)
	}
	if strings.Contains(output, "never reached") {
		t.Error("loop continued past quit")
	}
}

func TestRun_EchoAndComments(t *testing.T) {
	c, out := testCLI("# a comment line\nlook\n/quit\n")
	c.EchoInput = true
	c.Run()

	output := out.String()
	if strings.Contains(output, "# a comment line") {
		t.Error("comment line was not skipped")
	}
	if !strings.Contains(output, "> look\n") {
		t.Errorf("expected echoed input:\n%s", output)
	}
}

func TestRun_EOFEndsLoop(t *testing.T) {
	c, _ := testCLI("look\n")
	c.Run() // must return when input runs out
}

func TestRun_Trace(t *testing.T) {
	c, out := testCLI("/trace\nlook\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "[Trace output enabled.]") {
		t.Errorf("expected trace toggle confirmation:\n%s", output)
	}
	if !strings.Contains(output, "[trace] intent=observation/look_around") {
		t.Errorf("expected trace line:\n%s", output)
	}
}
