// internal/evals/runner_test.go
package evals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

func newRunner(t *testing.T) *Runner {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)
	return NewRunner(eng, logger.NewTestLogger(t))
}

func TestBuiltinScenariosPass(t *testing.T) {
	runner := newRunner(t)

	for _, sc := range Scenarios() {
		t.Run(sc.Name, func(t *testing.T) {
			res := runner.Run(context.Background(), sc)
			assert.True(t, res.Passed, "failures: %v", res.Failures)
		})
	}
}

func TestStrongLeadDetails(t *testing.T) {
	runner := newRunner(t)

	var strong Scenario
	for _, sc := range Scenarios() {
		if sc.Name == "strong_lead" {
			strong = sc
		}
	}
	require.NotEmpty(t, strong.Name)

	res := runner.Run(context.Background(), strong)
	assert.Equal(t, 10.0, res.Score)
	assert.Equal(t, "Strong", res.Label)
	assert.True(t, res.Ended)
	assert.Equal(t, 7, res.Turns)
}

func TestRunAll(t *testing.T) {
	runner := newRunner(t)

	results := runner.RunAll(context.Background(), Scenarios())
	require.Len(t, results, len(Scenarios()))
	for _, res := range results {
		assert.True(t, res.Passed, "%s failures: %v", res.Name, res.Failures)
	}
}

// A failing assertion must be reported, not panicked over.
func TestGradeReportsFailures(t *testing.T) {
	runner := newRunner(t)

	sc := Scenario{
		Name:          "impossible",
		Turns:         []string{"goodbye"},
		ExpectedLabel: "Strong",
		MinScore:      9.0,
		MaxScore:      10.0,
		ExpectEnded:   true,
	}
	res := runner.Run(context.Background(), sc)
	assert.False(t, res.Passed)
	assert.NotEmpty(t, res.Failures)
}
