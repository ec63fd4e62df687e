// internal/extraction/rules.go
package extraction

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"coldcall-backend/internal/engine"
)

// RuleBased is the deterministic keyword extractor. Zero latency, no API
// cost, low recall on nuanced language. It never fails, which makes it
// the terminal fallback of the chain.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

// Objection patterns: (regex, objection type)
var objectionPatterns = []struct {
	re  *regexp.Regexp
	typ string
}{
	{regexp.MustCompile(`\bnot interested\b`), "not_interested"},
	{regexp.MustCompile(`\bno thanks\b`), "not_interested"},
	{regexp.MustCompile(`\bdon'?t need\b`), "not_interested"},
	{regexp.MustCompile(`\balready (?:use|have|got)\b`), "competitor"},
	{regexp.MustCompile(`\bwe use\b`), "competitor"},
	{regexp.MustCompile(`\btoo expensive\b`), "price"},
	{regexp.MustCompile(`\bcan'?t afford\b`), "price"},
	{regexp.MustCompile(`\bno budget\b`), "price"},
	{regexp.MustCompile(`\bbusy\b`), "timing"},
	{regexp.MustCompile(`\bbad time\b`), "timing"},
	{regexp.MustCompile(`\bcall (?:me )?back\b`), "timing"},
	{regexp.MustCompile(`\bsend (?:me )?(?:an |the )?(?:email|details|info)\b`), "timing"},
	{regexp.MustCompile(`\bjust (?:email|send)\b`), "timing"},
	{regexp.MustCompile(`\bnever heard of\b`), "trust"},
	{regexp.MustCompile(`\bscam\b`), "trust"},
	{regexp.MustCompile(`\bdon'?t trust\b`), "trust"},
	{regexp.MustCompile(`\bhow did you get (?:my|this) number\b`), "trust"},
}

// End-of-call signals
var endPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bgoodbye\b`),
	regexp.MustCompile(`\bhang up\b`),
	regexp.MustCompile(`\bgotta go\b`),
	regexp.MustCompile(`\bend (?:the )?call\b`),
}

// An explicit correction marker lets the gate overwrite a filled slot.
var correctionRe = regexp.MustCompile(`\b(?:actually|i meant|i mean|correction|scratch that|sorry,? (?:it|that)'?s)\b`)

var companySizeRe = regexp.MustCompile(`(\d+)\s*(?:people|employees|folks|team|person|engineers|devs)`)

// Pain keywords with severity 0-10. The strongest match wins.
var painKeywords = map[string]int{
	"struggling": 8, "painful": 8, "frustrated": 7, "waste": 7,
	"slow": 6, "manual": 6, "tedious": 6, "hours": 5,
	"annoying": 5, "problem": 5, "issue": 4, "challenge": 4,
}

var (
	budgetYesRe  = regexp.MustCompile(`\b(?:have|got|set aside|allocated)\b.*\bbudget\b`)
	budgetNoRe   = regexp.MustCompile(`\b(?:no budget|can'?t afford|too expensive)\b`)
	budgetSoftRe = regexp.MustCompile(`\bbudget\b.*\b(?:maybe|depends|later|next quarter)\b`)

	// Delegation signals are checked before job titles because "my
	// manager" contains "manager" which would falsely match a title.
	authorityNoRe    = regexp.MustCompile(`\b(?:need to ask|check with|my boss|my manager|not the decision)\b`)
	authorityYesRe   = regexp.MustCompile(`\bi (?:decide|approve|sign off|own|handle|make the call)\b`)
	authorityTitleRe = regexp.MustCompile(`\b(?:vp|director|head of|cto|ceo|founder)\b`)

	timelineRe = regexp.MustCompile(
		`\b(?:this quarter|next quarter|q[1-4]|this month|next month` +
			`|this year|next year|asap|immediately|soon|later|no rush)\b`)
)

// Extract runs the keyword heuristics. The error is always nil; it
// exists only to satisfy the Extractor interface.
func (r *RuleBased) Extract(_ context.Context, req *Request) (engine.Signals, error) {
	text := strings.ToLower(strings.TrimSpace(req.UserText))
	sig := engine.Signals{
		UserText: req.UserText,
		Source:   SourceRuleBased,
	}

	for _, re := range endPatterns {
		if re.MatchString(text) {
			sig.EndOfCall = true
			return sig, nil
		}
	}

	correction := correctionRe.MatchString(text)

	addFill := func(slot, value string, conf float64) {
		sig.SlotFills = append(sig.SlotFills, engine.SlotCandidate{
			Slot:       slot,
			Value:      value,
			Confidence: conf,
			Correction: correction,
		})
	}

	for _, p := range objectionPatterns {
		if p.re.MatchString(text) {
			sig.Objections = append(sig.Objections, engine.ObjectionCandidate{
				Type:       p.typ,
				Confidence: 0.7,
			})
			// Slot content may still be present in the same turn.
			break
		}
	}

	if m := companySizeRe.FindStringSubmatch(text); m != nil {
		addFill("company_size", m[1], 0.7)
	}

	maxPain := -1
	for kw, severity := range painKeywords {
		if strings.Contains(text, kw) && severity > maxPain {
			maxPain = severity
		}
	}
	if maxPain >= 0 {
		addFill("pain", fmt.Sprintf("%d/10", maxPain), 0.6)
	}

	switch {
	case budgetYesRe.MatchString(text):
		addFill("budget", "available", 0.7)
	case budgetNoRe.MatchString(text):
		addFill("budget", "none", 0.6)
	case budgetSoftRe.MatchString(text):
		addFill("budget", "uncertain", 0.5)
	}

	switch {
	case authorityNoRe.MatchString(text):
		addFill("authority", "not decision-maker", 0.6)
	case authorityYesRe.MatchString(text):
		addFill("authority", "decision-maker", 0.7)
	case authorityTitleRe.MatchString(text):
		addFill("authority", "decision-maker", 0.6)
	}

	if m := timelineRe.FindString(text); m != "" {
		addFill("timeline", m, 0.6)
	}

	return sig, nil
}
