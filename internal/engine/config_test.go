// internal/engine/config_test.go
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"weights must sum to ceiling",
			func(c *Config) { c.SlotWeights[SlotPain] = 4 },
			"slot weights sum",
		},
		{
			"weight missing",
			func(c *Config) { delete(c.SlotWeights, SlotBudget) },
			"slot weight missing",
		},
		{
			"negative weight",
			func(c *Config) {
				c.SlotWeights[SlotPain] = -1
				c.SlotWeights[SlotBudget] = 6
			},
			"negative",
		},
		{
			"priority must cover all slots",
			func(c *Config) { c.SlotPriority = []Slot{SlotPain, SlotBudget} },
			"slot priority lists",
		},
		{
			"priority must not repeat",
			func(c *Config) {
				c.SlotPriority = []Slot{SlotPain, SlotPain, SlotBudget, SlotTimeline, SlotCompanySize}
			},
			"repeated",
		},
		{
			"objection penalty missing",
			func(c *Config) { delete(c.ObjectionPenalties, ObjectionTrust) },
			"objection penalty missing",
		},
		{
			"positive penalty floor",
			func(c *Config) { c.ObjectionPenaltyFloor = 1 },
			"penalty floor",
		},
		{
			"confidence out of range",
			func(c *Config) { c.MinConfidence = 1.2 },
			"min_confidence",
		},
		{
			"negative correction margin",
			func(c *Config) { c.CorrectionMargin = -0.1 },
			"correction margin",
		},
		{
			"threshold gap",
			func(c *Config) { c.WeakThreshold = 8 },
			"label thresholds",
		},
		{
			"zero turn budget",
			func(c *Config) { c.MaxTurns = 0 },
			"max turns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			_, err = New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestCustomPriorityOrderIsHonored(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlotPriority = []Slot{SlotBudget, SlotPain, SlotAuthority, SlotTimeline, SlotCompanySize}
	e, err := New(cfg)
	require.NoError(t, err)

	res, err := e.ProcessTurn(NewState("s1"), Signals{})
	require.NoError(t, err)
	assert.Equal(t, SlotBudget, res.Action.Slot)
}
