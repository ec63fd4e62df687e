// internal/prospect/scripted.go
package prospect

import "context"

// scriptedLines are indexed by turn; the conversation walks through a
// cooperative lead that answers every qualification question. Turns past
// the end repeat the last line.
var scriptedLines = []string{
	"Yeah sure, I have a minute. What's this about?",
	"We're about 50 people. Outbound is mostly manual right now, lots of spreadsheets.",
	"I handle the sales tools decisions, yeah.",
	"Honestly, we've looked at a few things but nothing stuck. Budget is there if it makes sense.",
	"Probably this quarter if the fit is right.",
	"Sure, I'd be open to a demo.",
}

type Scripted struct{}

func NewScripted() *Scripted {
	return &Scripted{}
}

// NextUtterance never fails; the error return satisfies Generator.
func (s *Scripted) NextUtterance(_ context.Context, req *Request) (string, error) {
	idx := req.TurnIndex
	if idx < 0 {
		idx = 0
	}
	if idx >= len(scriptedLines) {
		idx = len(scriptedLines) - 1
	}
	return scriptedLines[idx], nil
}

var _ Generator = (*Scripted)(nil)
