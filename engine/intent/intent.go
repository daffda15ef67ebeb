// Package intent classifies a parsed command into a primary category and an
// executable sub-intent with a confidence score. Both levels are closed
// enums dispatched by exhaustive switches; unmapped verbs degrade to a
// low-confidence unknown result instead of failing.
package intent

import (
	"fmt"

	"github.com/nathoo/parley/types"
)

// verbPrimary maps canonical verbs to their primary category.
var verbPrimary = map[string]types.PrimaryIntent{
	"go": types.IntentMovement,

	"look": types.IntentObservation, "examine": types.IntentObservation,
	"search": types.IntentObservation, "read": types.IntentObservation,

	"use": types.IntentInteraction, "open": types.IntentInteraction,
	"close": types.IntentInteraction, "eat": types.IntentInteraction,
	"drink": types.IntentInteraction, "give": types.IntentInteraction,
	"put": types.IntentInteraction,

	"talk": types.IntentCommunication, "say": types.IntentCommunication,
	"ask": types.IntentCommunication,

	"attack": types.IntentCombat, "defend": types.IntentCombat,
	"flee": types.IntentCombat,

	"take": types.IntentInventory, "drop": types.IntentInventory,
	"wear": types.IntentInventory, "inventory": types.IntentInventory,

	"cast": types.IntentMagic,

	"help": types.IntentMeta, "quit": types.IntentMeta, "wait": types.IntentMeta,
}

// High-frequency sub-intents get a small confidence nudge.
var frequent = map[types.SubIntent]bool{
	types.SubMoveDirection: true,
	types.SubLookAround:    true,
	types.SubExamineTarget: true,
	types.SubTakeItem:      true,
	types.SubAttackTarget:  true,
}

const (
	unmappedPenalty = 0.4
	resolvedBoost   = 0.05
	frequentBoost   = 0.02
)

// Route classifies a structured command. Confidence starts at the command's
// own confidence (1.0 when unset), is boosted by a resolved target, nudged
// for frequent sub-intents, and multiplied down when the verb is unmapped.
// It is a heuristic signal for downstream systems, not a hard gate.
func Route(cmd *types.Command) types.IntentResult {
	confidence := cmd.Confidence
	if confidence == 0 {
		confidence = 1.0
	}

	meta := map[string]string{
		"verb":    cmd.Action,
		"pattern": cmd.Pattern.String(),
	}
	if cmd.Preposition != "" {
		meta["preposition"] = cmd.Preposition
	}
	resolved := false
	if np := cmd.DirectObject; np != nil {
		meta["target_name"] = np.Noun
		if np.ResolvedID != "" {
			meta["target"] = np.ResolvedID
			resolved = true
		}
	}
	if np := cmd.IndirectObject; np != nil {
		meta["indirect_name"] = np.Noun
		if np.ResolvedID != "" {
			meta["indirect_target"] = np.ResolvedID
		}
	}

	primary, mapped := verbPrimary[cmd.Action]
	if !mapped {
		return types.IntentResult{
			Primary:    types.IntentUnknown,
			Sub:        types.SubUnknown,
			Confidence: clamp(confidence * unmappedPenalty),
			Metadata:   meta,
			Reasoning:  fmt.Sprintf("verb '%s' has no primary category; needs disambiguation", cmd.Action),
		}
	}

	sub := subIntentFor(primary, cmd)
	reasoning := fmt.Sprintf("verb '%s' → %s/%s", cmd.Action, primary, sub)

	if resolved {
		confidence += resolvedBoost
		reasoning += "; resolved target"
	}
	if frequent[sub] {
		confidence += frequentBoost
	}

	return types.IntentResult{
		Primary:    primary,
		Sub:        sub,
		Confidence: clamp(confidence),
		Metadata:   meta,
		Reasoning:  reasoning,
	}
}

// subIntentFor selects the leaf behavior from (primary, verb, shape).
func subIntentFor(primary types.PrimaryIntent, cmd *types.Command) types.SubIntent {
	hasTarget := cmd.DirectObject != nil && cmd.DirectObject.Noun != ""
	hasIndirect := cmd.IndirectObject != nil && cmd.IndirectObject.Noun != ""

	switch primary {
	case types.IntentMovement:
		if cmd.Pattern == types.PatternVerbDirection || cmd.Pattern == types.PatternImplicitDirection {
			return types.SubMoveDirection
		}
		return types.SubMoveLocation

	case types.IntentObservation:
		switch cmd.Action {
		case "look":
			if hasTarget {
				return types.SubExamineTarget
			}
			return types.SubLookAround
		case "examine":
			return types.SubExamineTarget
		case "search":
			return types.SubSearchArea
		case "read":
			return types.SubReadText
		}

	case types.IntentInteraction:
		switch cmd.Action {
		case "use":
			if hasIndirect {
				return types.SubUseItemOnTarget
			}
			return types.SubUseItem
		case "open":
			return types.SubOpenContainer
		case "close":
			return types.SubCloseContainer
		case "eat":
			return types.SubEatFood
		case "drink":
			return types.SubDrinkLiquid
		case "give":
			return types.SubGiveItemTo
		case "put":
			return types.SubPutItemIn
		}

	case types.IntentCommunication:
		switch cmd.Action {
		case "talk":
			if hasIndirect || cmd.Preposition == "about" {
				return types.SubAskAbout
			}
			return types.SubTalkTo
		case "ask":
			return types.SubAskAbout
		case "say":
			return types.SubSayPhrase
		}

	case types.IntentCombat:
		switch cmd.Action {
		case "attack":
			return types.SubAttackTarget
		case "defend":
			return types.SubDefendSelf
		case "flee":
			return types.SubFleeCombat
		}

	case types.IntentInventory:
		switch cmd.Action {
		case "take":
			return types.SubTakeItem
		case "drop":
			return types.SubDropItem
		case "wear":
			return types.SubWearItem
		case "inventory":
			return types.SubCheckInventory
		}

	case types.IntentMagic:
		if hasIndirect {
			return types.SubCastSpellOnTarget
		}
		return types.SubCastSpell

	case types.IntentMeta:
		switch cmd.Action {
		case "help":
			return types.SubShowHelp
		case "quit":
			return types.SubQuitGame
		case "wait":
			return types.SubWaitTurn
		}
	}
	return types.SubUnknown
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
