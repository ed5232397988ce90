package roll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollstat/rollstat/internal/roll"
)

func TestComparisons_BernoulliShape(t *testing.T) {
	d6 := mustDie(t, 6)

	cases := []struct {
		name    string
		node    roll.Roll
		success float64 // probability of outcome 1
	}{
		{"lt", roll.Lt(d6, roll.Constant(4)), 3.0 / 6.0},
		{"le", roll.Le(d6, roll.Constant(4)), 4.0 / 6.0},
		{"eq", roll.Eq(d6, roll.Constant(4)), 1.0 / 6.0},
		{"ne", roll.Ne(d6, roll.Constant(4)), 5.0 / 6.0},
		{"gt", roll.Gt(d6, roll.Constant(4)), 2.0 / 6.0},
		{"ge", roll.Ge(d6, roll.Constant(4)), 3.0 / 6.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dist, err := roll.GetDistribution(tc.node)
			require.NoError(t, err)
			assertNormalized(t, dist)

			success, ok := dist.Find(1, roll.TagSet{})
			require.True(t, ok)
			assert.InDelta(t, tc.success, success.Probability, roll.ProbabilityTolerance)
		})
	}
}

func TestNeg(t *testing.T) {
	dist, err := roll.GetDistribution(roll.Neg(mustDie(t, 4)))
	require.NoError(t, err)
	require.Len(t, dist, 4)
	for v := -4; v <= -1; v++ {
		o, ok := dist.Find(v, roll.TagSet{})
		require.True(t, ok)
		assert.InDelta(t, 0.25, o.Probability, roll.ProbabilityTolerance)
	}
}

func TestPow(t *testing.T) {
	dist, err := roll.GetDistribution(roll.Pow(mustDie(t, 3), roll.Constant(2)))
	require.NoError(t, err)
	for _, want := range []int{1, 4, 9} {
		o, ok := dist.Find(want, roll.TagSet{})
		require.True(t, ok)
		assert.InDelta(t, 1.0/3.0, o.Probability, roll.ProbabilityTolerance)
	}

	_, err = roll.GetDistribution(roll.Pow(mustDie(t, 3), roll.Constant(-1)))
	assert.ErrorIs(t, err, roll.ErrInvalidCount)
}

func TestDivRound_HalvesAwayFromZero(t *testing.T) {
	// 3/2 rounds to 2, -3/2 rounds to -2.
	dist, err := roll.GetDistribution(roll.DivRound(roll.Constant(3), roll.Constant(2)))
	require.NoError(t, err)
	assert.Equal(t, 2, dist[0].Value)

	dist, err = roll.GetDistribution(roll.DivRound(roll.Constant(-3), roll.Constant(2)))
	require.NoError(t, err)
	assert.Equal(t, -2, dist[0].Value)
}

func TestDivFloor_TowardNegativeInfinity(t *testing.T) {
	dist, err := roll.GetDistribution(roll.DivFloor(roll.Constant(-3), roll.Constant(2)))
	require.NoError(t, err)
	assert.Equal(t, -2, dist[0].Value)

	dist, err = roll.GetDistribution(roll.DivFloor(roll.Constant(3), roll.Constant(2)))
	require.NoError(t, err)
	assert.Equal(t, 1, dist[0].Value)
}

func TestMod_TruncatedRemainder(t *testing.T) {
	dist, err := roll.GetDistribution(roll.Mod(mustDie(t, 6), roll.Constant(3)))
	require.NoError(t, err)
	assertNormalized(t, dist)
	for remainder, want := range map[int]float64{0: 2.0 / 6.0, 1: 2.0 / 6.0, 2: 2.0 / 6.0} {
		o, ok := dist.Find(remainder, roll.TagSet{})
		require.True(t, ok)
		assert.InDelta(t, want, o.Probability, roll.ProbabilityTolerance)
	}
}

func TestMaxMin_RequireOperands(t *testing.T) {
	_, err := roll.Max()
	assert.ErrorIs(t, err, roll.ErrNoRolls)

	_, err = roll.Min()
	assert.ErrorIs(t, err, roll.ErrNoRolls)
}

func TestMin_NAry(t *testing.T) {
	m, err := roll.Min(mustDie(t, 4), mustDie(t, 4), roll.Constant(2))
	require.NoError(t, err)

	dist, err := roll.GetDistribution(m)
	require.NoError(t, err)
	assertNormalized(t, dist)

	// min(d4, d4, 2): P(1) = 1 - (3/4)^2 = 7/16, P(2) = 9/16.
	one, ok := dist.Find(1, roll.TagSet{})
	require.True(t, ok)
	assert.InDelta(t, 7.0/16.0, one.Probability, roll.ProbabilityTolerance)
	two, ok := dist.Find(2, roll.TagSet{})
	require.True(t, ok)
	assert.InDelta(t, 9.0/16.0, two.Probability, roll.ProbabilityTolerance)
}

func TestRepeat_Validation(t *testing.T) {
	d6 := mustDie(t, 6)

	_, err := roll.Repeat(-1, d6)
	assert.ErrorIs(t, err, roll.ErrInvalidCount)

	zero, err := roll.Repeat(0, d6)
	require.NoError(t, err)
	dist, err := roll.GetDistribution(zero)
	require.NoError(t, err)
	require.Len(t, dist, 1)
	assert.Equal(t, 0, dist[0].Value)
}

func TestKeepHighest_Validation(t *testing.T) {
	d6 := mustDie(t, 6)

	_, err := roll.KeepHighest(1)
	assert.ErrorIs(t, err, roll.ErrNoRolls)

	_, err = roll.KeepHighest(0, d6)
	assert.ErrorIs(t, err, roll.ErrInvalidCount)

	_, err = roll.KeepHighest(3, d6, d6)
	assert.ErrorIs(t, err, roll.ErrInvalidCount)
}

func TestKeepHighest_Exact(t *testing.T) {
	d2 := mustDie(t, 2)

	// keep highest 1 of two d2: P(1) = 1/4, P(2) = 3/4.
	kh, err := roll.KeepHighest(1, d2, d2)
	require.NoError(t, err)
	dist, err := roll.GetDistribution(kh)
	require.NoError(t, err)
	assertNormalized(t, dist)

	one, ok := dist.Find(1, roll.TagSet{})
	require.True(t, ok)
	assert.InDelta(t, 0.25, one.Probability, roll.ProbabilityTolerance)
	two, ok := dist.Find(2, roll.TagSet{})
	require.True(t, ok)
	assert.InDelta(t, 0.75, two.Probability, roll.ProbabilityTolerance)
}

func TestKeepHighest_FourD6KeepThree(t *testing.T) {
	d6 := mustDie(t, 6)
	kh, err := roll.KeepHighest(3, d6, d6, d6, d6)
	require.NoError(t, err)

	dist, err := roll.GetDistribution(kh)
	require.NoError(t, err)
	assertNormalized(t, dist)

	// Direct enumeration over 6^4 combinations.
	counts := make(map[int]int)
	for a := 1; a <= 6; a++ {
		for b := 1; b <= 6; b++ {
			for c := 1; c <= 6; c++ {
				for d := 1; d <= 6; d++ {
					low := a
					for _, v := range []int{b, c, d} {
						if v < low {
							low = v
						}
					}
					counts[a+b+c+d-low]++
				}
			}
		}
	}
	require.Len(t, dist, len(counts))
	for sum, n := range counts {
		o, ok := dist.Find(sum, roll.TagSet{})
		require.True(t, ok, "missing sum %d", sum)
		assert.InDelta(t, float64(n)/1296.0, o.Probability, roll.ProbabilityTolerance)
	}
}

func TestApplyTagRule(t *testing.T) {
	d20, err := roll.Die(20, roll.TagAssignment{"crit": {20}})
	require.NoError(t, err)

	// Double the value on a crit.
	ruled := roll.ApplyTagRule(d20,
		func(v int) int { return v * 2 },
		func(tags roll.TagSet) bool { return tags.Count("crit") > 0 },
	)

	dist, err := roll.GetDistribution(ruled)
	require.NoError(t, err)
	assertNormalized(t, dist)
	require.Len(t, dist, 20)

	crit, ok := dist.Find(40, roll.TagSet{"crit": 1})
	require.True(t, ok)
	assert.InDelta(t, 1.0/20.0, crit.Probability, roll.ProbabilityTolerance)

	// Untagged faces pass through untouched.
	_, ok = dist.Find(19, roll.TagSet{})
	assert.True(t, ok)
	_, ok = dist.Find(20, roll.TagSet{})
	assert.False(t, ok, "the tagged 20 face must have been transformed")
}

func TestRemoveTags(t *testing.T) {
	d20, err := roll.Die(20, roll.TagAssignment{"crit": {1}, "crit_fail": {20}})
	require.NoError(t, err)

	dist, err := roll.GetDistribution(roll.RemoveTags(d20, "crit"))
	require.NoError(t, err)
	require.Len(t, dist, 20)

	one, ok := dist.Find(1, roll.TagSet{})
	require.True(t, ok, "crit tag must be stripped from the 1 face")
	assert.InDelta(t, 1.0/20.0, one.Probability, roll.ProbabilityTolerance)

	_, ok = dist.Find(20, roll.TagSet{"crit_fail": 1})
	assert.True(t, ok, "unnamed tags must survive")
}

func TestEnsureRoll(t *testing.T) {
	r, err := roll.EnsureRoll(5)
	require.NoError(t, err)
	dist, err := roll.GetDistribution(r)
	require.NoError(t, err)
	require.Len(t, dist, 1)
	assert.Equal(t, 5, dist[0].Value)

	d6 := mustDie(t, 6)
	same, err := roll.EnsureRoll(d6)
	require.NoError(t, err)
	assert.Equal(t, d6, same)

	_, err = roll.EnsureRoll("2d6")
	assert.ErrorIs(t, err, roll.ErrOperandType)

	_, err = roll.EnsureRoll(2.5)
	assert.ErrorIs(t, err, roll.ErrOperandType)
}
