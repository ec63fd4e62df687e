// internal/evals/runner.go
package evals

import (
	"context"
	"fmt"

	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
	"coldcall-backend/internal/extraction"
)

// Result is one scenario's verdict with every failed assertion listed.
type Result struct {
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
	Score    float64  `json:"score"`
	Label    string   `json:"label"`
	Ended    bool     `json:"ended"`
	Turns    int      `json:"turns"`
}

// Runner drives scenarios through the rule-based extraction pipeline and
// the engine, session layer excluded: evals grade decision quality, not
// plumbing.
type Runner struct {
	engine    *engine.Engine
	extractor extraction.Extractor
	logger    logger.Logger
}

func NewRunner(eng *engine.Engine, log logger.Logger) *Runner {
	return &Runner{
		engine:    eng,
		extractor: extraction.NewRuleBased(),
		logger: log.WithFields(map[string]interface{}{
			"component": "eval-runner",
		}),
	}
}

// Run plays one scenario to the end and grades the outcome.
func (r *Runner) Run(ctx context.Context, sc Scenario) *Result {
	state := engine.NewState("eval-" + sc.Name)

	var last *engine.TurnResult
	for _, text := range sc.Turns {
		if state.Ended {
			break
		}

		sig, _ := r.extractor.Extract(ctx, &extraction.Request{
			SessionID:     state.SessionID,
			UserText:      text,
			TurnIndex:     state.TurnIndex,
			LastAskedSlot: string(state.LastAskedSlot),
		})

		res, err := r.engine.ProcessTurn(state, sig)
		if err != nil {
			return &Result{
				Name:     sc.Name,
				Failures: []string{fmt.Sprintf("turn %q: %v", text, err)},
			}
		}
		last = res
	}

	result := &Result{
		Name:  sc.Name,
		Ended: state.Ended,
		Turns: state.TurnIndex,
	}
	if last != nil {
		result.Score = last.Score
		result.Label = last.Label
	}

	result.Failures = r.grade(sc, state, result)
	result.Passed = len(result.Failures) == 0

	r.logger.Info("scenario finished", map[string]interface{}{
		"scenario": sc.Name,
		"passed":   result.Passed,
		"score":    result.Score,
		"label":    result.Label,
		"turns":    result.Turns,
	})
	return result
}

// RunAll runs the whole suite.
func (r *Runner) RunAll(ctx context.Context, scenarios []Scenario) []*Result {
	results := make([]*Result, 0, len(scenarios))
	for _, sc := range scenarios {
		results = append(results, r.Run(ctx, sc))
	}
	return results
}

func (r *Runner) grade(sc Scenario, state *engine.State, res *Result) []string {
	var failures []string

	if sc.ExpectEnded && !state.Ended {
		failures = append(failures, "call did not end")
	}
	if !sc.ExpectEnded && state.Ended {
		failures = append(failures, fmt.Sprintf("call ended unexpectedly (%s)", state.EndReason))
	}
	if sc.ExpectedEndReason != "" && state.EndReason != sc.ExpectedEndReason {
		failures = append(failures, fmt.Sprintf("end reason %q, want %q", state.EndReason, sc.ExpectedEndReason))
	}

	if res.Label != sc.ExpectedLabel {
		failures = append(failures, fmt.Sprintf("label %q, want %q", res.Label, sc.ExpectedLabel))
	}
	if res.Score < sc.MinScore || res.Score > sc.MaxScore {
		failures = append(failures, fmt.Sprintf("score %.1f outside [%.1f, %.1f]", res.Score, sc.MinScore, sc.MaxScore))
	}

	filled := make(map[engine.Slot]bool)
	for _, s := range state.FilledSlots() {
		filled[s] = true
	}
	for _, want := range sc.ExpectedFilledSlots {
		if !filled[want] {
			failures = append(failures, fmt.Sprintf("slot %q not filled", want))
		}
	}
	if len(state.FilledSlots()) != len(sc.ExpectedFilledSlots) {
		failures = append(failures, fmt.Sprintf("%d slots filled, want %d",
			len(state.FilledSlots()), len(sc.ExpectedFilledSlots)))
	}

	for slot, want := range sc.ExpectedSlotValues {
		if got := state.Slot(slot).Value; got != want {
			failures = append(failures, fmt.Sprintf("slot %q = %q, want %q", slot, got, want))
		}
	}

	return failures
}
