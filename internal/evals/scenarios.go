// internal/evals/scenarios.go

// Package evals runs scripted end-to-end conversations through the full
// rule-based pipeline and checks the final outcome. Deterministic by
// construction: no LLM is involved.
package evals

import "coldcall-backend/internal/engine"

// Scenario is one scripted call with assertions on the final outcome.
type Scenario struct {
	Name        string
	Description string
	Turns       []string

	ExpectedLabel       string
	MinScore            float64
	MaxScore            float64
	ExpectedFilledSlots []engine.Slot
	ExpectedSlotValues  map[engine.Slot]string
	ExpectEnded         bool
	ExpectedEndReason   engine.EndReason
}

// Scenarios returns the built-in suite. Utterances follow the engine's
// probing order (pain, budget, authority, timeline, company_size) since
// off-question answers are rejected by the alignment gate.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name: "strong_lead",
			Description: "Cooperative prospect reveals high pain, budget, authority, " +
				"timeline and size in order. Closes after two confirmations.",
			Turns: []string{
				"Yeah sure, I have a minute. What's this about?",
				"Honestly, outbound is a huge pain point, way too much manual work.",
				"We do have budget set aside for this quarter.",
				"I'm the VP of Sales, I make the call on tools like this.",
				"We're looking to get something in place this quarter, ideally asap.",
				"We're about 50 people on the sales team.",
				"Sure, I'd be open to a demo. Let's do it.",
			},
			ExpectedLabel: "Strong",
			MinScore:      7.0,
			MaxScore:      10.0,
			ExpectedFilledSlots: []engine.Slot{
				engine.SlotPain, engine.SlotBudget, engine.SlotAuthority,
				engine.SlotTimeline, engine.SlotCompanySize,
			},
			ExpectEnded:       true,
			ExpectedEndReason: engine.EndReasonClosed,
		},
		{
			Name: "weak_lead",
			Description: "Prospect is not interested, raises objections, reveals " +
				"nothing, hangs up.",
			Turns: []string{
				"I'm really not interested, we already have a tool for this.",
				"Look, I'm really busy right now, can you just send me an email?",
				"No thanks, goodbye.",
			},
			ExpectedLabel:     "Weak",
			MinScore:          0.0,
			MaxScore:          3.9,
			ExpectEnded:       true,
			ExpectedEndReason: engine.EndReasonUserEnded,
		},
		{
			Name: "objection_heavy",
			Description: "Prospect shares pain and a budget rejection but stacks up " +
				"objections. Penalties keep the score Weak.",
			Turns: []string{
				"Fine, I've got a minute.",
				"Our outbound is painful yeah, it's a lot of manual work.",
				"We already use another tool, it's okay but not great.",
				"There's no budget for another tool.",
				"Look, just send me an email and I'll pass it along.",
				"I need to hang up now, goodbye.",
			},
			ExpectedLabel: "Weak",
			MinScore:      0.0,
			MaxScore:      3.9,
			ExpectedFilledSlots: []engine.Slot{
				engine.SlotPain, engine.SlotBudget,
			},
			ExpectEnded:       true,
			ExpectedEndReason: engine.EndReasonUserEnded,
		},
		{
			Name: "correction_flow",
			Description: "Fully qualified call where the prospect corrects the " +
				"company size after the close; the correction overwrites the slot.",
			Turns: []string{
				"Sure, go ahead.",
				"Outbound is slow and tedious for us.",
				"We have budget allocated.",
				"I'm the head of sales, I decide.",
				"Probably next quarter.",
				"We're 20 people.",
				"Actually, sorry, we're 45 people total.",
			},
			ExpectedLabel: "Strong",
			MinScore:      10.0,
			MaxScore:      10.0,
			ExpectedFilledSlots: []engine.Slot{
				engine.SlotPain, engine.SlotBudget, engine.SlotAuthority,
				engine.SlotTimeline, engine.SlotCompanySize,
			},
			ExpectedSlotValues: map[engine.Slot]string{
				engine.SlotCompanySize: "45",
			},
			ExpectEnded:       true,
			ExpectedEndReason: engine.EndReasonClosed,
		},
		{
			Name: "turn_limit",
			Description: "Prospect stalls forever; the turn budget force-ends " +
				"the call.",
			Turns: []string{
				"Hm, okay.", "Hm, okay.", "Hm, okay.", "Hm, okay.",
				"Hm, okay.", "Hm, okay.", "Hm, okay.", "Hm, okay.",
				"Hm, okay.", "Hm, okay.", "Hm, okay.",
			},
			ExpectedLabel:     "Weak",
			MinScore:          0.0,
			MaxScore:          0.0,
			ExpectEnded:       true,
			ExpectedEndReason: engine.EndReasonTurnLimit,
		},
	}
}
