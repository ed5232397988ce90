package roll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rollstat/rollstat/internal/roll"
)

// TestEvaluator_OutcomeLimit verifies the fail-fast cap: a cartesian
// product larger than MaxOutcomes is rejected before enumeration.
func TestEvaluator_OutcomeLimit(t *testing.T) {
	d6 := mustDie(t, 6)
	three, err := roll.Repeat(3, d6)
	require.NoError(t, err)

	ev := roll.NewEvaluator(10, nil)
	_, err = ev.Distribution(three)
	assert.ErrorIs(t, err, roll.ErrOutcomeLimit)

	// The same tree fits under the default cap.
	dist, err := roll.GetDistribution(three)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dist.TotalProbability(), roll.ProbabilityTolerance)
}

func TestEvaluator_ZeroUsesDefaults(t *testing.T) {
	ev := roll.NewEvaluator(0, nil)
	dist, err := ev.Distribution(roll.Add(mustDie(t, 6), mustDie(t, 6)))
	require.NoError(t, err)
	assert.Len(t, dist, 11)
}

// TestEvaluator_LogsEvaluation verifies the debug log carries an eval id
// and the outcome count.
func TestEvaluator_LogsEvaluation(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ev := roll.NewEvaluator(0, zap.New(core))

	_, err := ev.Distribution(mustDie(t, 6))
	require.NoError(t, err)

	entries := logs.FilterMessage("roll evaluated").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.NotEmpty(t, fields["eval_id"])
	assert.EqualValues(t, 6, fields["outcomes"])
	assert.InDelta(t, 1.0, fields["total_probability"].(float64), roll.ProbabilityTolerance)
}

// TestEvaluator_LogsFailure verifies failed evaluations are logged and the
// error still propagates.
func TestEvaluator_LogsFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ev := roll.NewEvaluator(0, zap.New(core))

	_, err := ev.Distribution(roll.Mod(mustDie(t, 6), roll.Constant(0)))
	require.ErrorIs(t, err, roll.ErrZeroDivisor)
	assert.Len(t, logs.FilterMessage("roll evaluation failed").All(), 1)
}

// TestEvaluator_ConcurrentUse evaluates a shared tree from several
// goroutines; Rolls are immutable and the evaluator is stateless, so all
// results must agree.
func TestEvaluator_ConcurrentUse(t *testing.T) {
	tree := roll.Add(mustDie(t, 8), mustDie(t, 8))
	ev := roll.NewEvaluator(0, nil)

	results := make(chan roll.Distribution, 8)
	for i := 0; i < 8; i++ {
		go func() {
			dist, err := ev.Distribution(tree)
			assert.NoError(t, err)
			results <- dist
		}()
	}

	first := <-results
	for i := 1; i < 8; i++ {
		assertSameDistribution(t, first, <-results)
	}
}
