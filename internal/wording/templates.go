// internal/wording/templates.go
package wording

import (
	"context"
	"fmt"

	"coldcall-backend/internal/engine"
)

// Templates is the deterministic renderer. One fixed utterance per
// action, so evals and tests are reproducible.
type Templates struct{}

func NewTemplates() *Templates {
	return &Templates{}
}

var slotQuestions = map[engine.Slot]string{
	engine.SlotPain: "I'd love to understand your current workflow better. " +
		"What's the biggest challenge your team faces with outbound right now?",
	engine.SlotCompanySize: "That's helpful context. Roughly how large is your team, " +
		"how many people are involved in outbound?",
	engine.SlotAuthority: "Got it. And when it comes to evaluating a new tool like this, " +
		"are you the one who makes that call, or is there someone else involved?",
	engine.SlotBudget: "Makes sense. Is there budget set aside for improving your outbound " +
		"process, or is that something you'd need to get approved?",
	engine.SlotTimeline: "Understood. If this were a good fit, what would your timeline look " +
		"like for getting something like this up and running?",
}

var objectionResponses = map[engine.ObjectionType]string{
	engine.ObjectionNotInterested: "I totally understand, I wouldn't want to waste your time. " +
		"Just out of curiosity, how is your team currently handling outbound? " +
		"I ask because a lot of teams in your space have told us about similar frustrations.",
	engine.ObjectionCompetitor: "That's great that you already have something in place! " +
		"A lot of our customers actually came from other tools. " +
		"What would you say is the one thing you wish worked better with your current setup?",
	engine.ObjectionPrice: "I hear you on cost, it's always a factor. Most of our customers " +
		"find the ROI pays for itself within the first quarter. " +
		"What does your current cost per qualified meeting look like?",
	engine.ObjectionTiming: "Totally respect that you're stretched right now. " +
		"I can absolutely keep this short, or call back at a better time. " +
		"What would work best for you?",
	engine.ObjectionTrust: "That's completely fair, you've never heard of us. " +
		"We work with a number of teams in your space, and I'm happy to share references. " +
		"What would you need to see to feel comfortable continuing the conversation?",
}

const closeText = "Based on everything you've shared, it sounds like there could be a really " +
	"strong fit here. Would you be open to a 30-minute demo this week so I can " +
	"show you exactly how this would work for your team?"

var endTexts = map[string]string{
	"USER_ENDED": "Totally understand. Thanks for taking the time to chat, " +
		"I really appreciate it. Have a great rest of your day!",
	"TURN_LIMIT_REACHED": "I know I've taken a lot of your time, so I'll let you go. " +
		"Thanks for the conversation, I'll follow up with a summary. Have a great day!",
	"ALL_SLOTS_FILLED": "I appreciate you sharing all of that. I'll get that demo on the " +
		"calendar and send over a summary. Thanks so much for your time!",
}

const endDefault = "Thanks so much for the conversation. I'll follow up with a summary " +
	"and next steps. Have a great day!"

// Render never fails; the error return satisfies the Renderer interface.
func (t *Templates) Render(_ context.Context, req *Request) (string, error) {
	action := req.Action

	switch action.Type {
	case engine.ActionAskSlot:
		if q, ok := slotQuestions[action.Slot]; ok {
			return q, nil
		}
		return fmt.Sprintf("Can you tell me more about your %s?", action.Slot), nil

	case engine.ActionHandleObjection:
		if r, ok := objectionResponses[action.Objection]; ok {
			return r, nil
		}
		return "I understand your concern. Could you help me understand " +
			"a bit more about what's holding you back?", nil

	case engine.ActionClose:
		return closeText, nil

	case engine.ActionEnd:
		for _, reason := range action.ReasonCodes {
			if text, ok := endTexts[reason]; ok {
				return text, nil
			}
		}
		return endDefault, nil
	}

	return endDefault, nil
}
