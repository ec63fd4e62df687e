// internal/engine/config.go
package engine

import (
	"fmt"
	"math"
)

// Config holds every tunable constant of the turn engine. All thresholds
// and weights live here rather than inline so they can be validated once,
// at construction, and injected from the application config.
type Config struct {
	// SlotWeights must sum to the score ceiling (10) across the five slots.
	SlotWeights map[Slot]float64
	// SlotPriority is the probing order; must cover every slot exactly once.
	SlotPriority []Slot
	// ObjectionPenalties is the full (first-occurrence) penalty per type,
	// expressed as a positive number of points.
	ObjectionPenalties map[ObjectionType]float64
	// ObjectionPenaltyFloor caps the total objection deduction (negative).
	ObjectionPenaltyFloor float64

	// MinConfidence is the gate floor for slot fills.
	MinConfidence float64
	// ObjectionMinConfidence is the separate, lower floor for objections.
	ObjectionMinConfidence float64
	// AlignmentOverride lets a strong out-of-band signal bypass the
	// question-alignment gate.
	AlignmentOverride float64
	// CorrectionMargin is the confidence lead a new candidate needs to
	// overwrite a filled slot without an explicit correction marker.
	CorrectionMargin float64

	// WeakThreshold / StrongThreshold partition [0,10] into
	// Weak / Medium / Strong.
	WeakThreshold   float64
	StrongThreshold float64

	// MaxTurns is the turn budget before the engine force-ends the call.
	MaxTurns int

	// ResetLastAskedOnObjection makes HandleObjection consume the pending
	// question. Default false: objection handling leaves it untouched.
	ResetLastAskedOnObjection bool
}

const scoreCeiling = 10.0

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		SlotWeights: map[Slot]float64{
			SlotPain:        3,
			SlotBudget:      2,
			SlotAuthority:   2,
			SlotTimeline:    2,
			SlotCompanySize: 1,
		},
		SlotPriority: AllSlots(),
		ObjectionPenalties: map[ObjectionType]float64{
			ObjectionPrice:         1.0,
			ObjectionTrust:         0.5,
			ObjectionTiming:        0.5,
			ObjectionCompetitor:    1.0,
			ObjectionNotInterested: 1.5,
		},
		ObjectionPenaltyFloor:  -2.0,
		MinConfidence:          0.35,
		ObjectionMinConfidence: 0.5,
		AlignmentOverride:      0.85,
		CorrectionMargin:       0.25,
		WeakThreshold:          4.0,
		StrongThreshold:        7.0,
		MaxTurns:               10,
	}
}

// Validate fails fast on inconsistent tuning, before any session starts.
func (c Config) Validate() error {
	var sum float64
	for _, s := range AllSlots() {
		w, ok := c.SlotWeights[s]
		if !ok {
			return fmt.Errorf("slot weight missing for %q", s)
		}
		if w < 0 {
			return fmt.Errorf("slot weight for %q is negative", s)
		}
		sum += w
	}
	if math.Abs(sum-scoreCeiling) > 1e-9 {
		return fmt.Errorf("slot weights sum to %.2f, want %.0f", sum, scoreCeiling)
	}

	if len(c.SlotPriority) != len(AllSlots()) {
		return fmt.Errorf("slot priority lists %d slots, want %d", len(c.SlotPriority), len(AllSlots()))
	}
	seen := make(map[Slot]bool, len(c.SlotPriority))
	for _, s := range c.SlotPriority {
		if _, ok := ParseSlot(string(s)); !ok {
			return fmt.Errorf("unknown slot %q in priority order", s)
		}
		if seen[s] {
			return fmt.Errorf("slot %q repeated in priority order", s)
		}
		seen[s] = true
	}

	for _, t := range AllObjectionTypes() {
		p, ok := c.ObjectionPenalties[t]
		if !ok {
			return fmt.Errorf("objection penalty missing for %q", t)
		}
		if p < 0 {
			return fmt.Errorf("objection penalty for %q is negative", t)
		}
	}
	if c.ObjectionPenaltyFloor > 0 {
		return fmt.Errorf("objection penalty floor must be <= 0, got %.2f", c.ObjectionPenaltyFloor)
	}

	for name, v := range map[string]float64{
		"min_confidence":           c.MinConfidence,
		"objection_min_confidence": c.ObjectionMinConfidence,
		"alignment_override":       c.AlignmentOverride,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %.2f", name, v)
		}
	}
	if c.CorrectionMargin < 0 {
		return fmt.Errorf("correction margin must be >= 0, got %.2f", c.CorrectionMargin)
	}

	// Label thresholds must partition [0,10] without gaps.
	if !(c.WeakThreshold > 0 && c.WeakThreshold < c.StrongThreshold && c.StrongThreshold < scoreCeiling) {
		return fmt.Errorf("label thresholds must satisfy 0 < weak (%.1f) < strong (%.1f) < %.0f",
			c.WeakThreshold, c.StrongThreshold, scoreCeiling)
	}

	if c.MaxTurns <= 0 {
		return fmt.Errorf("max turns must be positive, got %d", c.MaxTurns)
	}
	return nil
}
