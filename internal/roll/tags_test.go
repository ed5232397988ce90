package roll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rollstat/rollstat/internal/roll"
)

// TestTagSet_Equal_ZeroCountIsAbsent verifies the defining invariant: a tag
// present with count 0 compares equal to a tag that is absent.
func TestTagSet_Equal_ZeroCountIsAbsent(t *testing.T) {
	withZero := roll.TagSet{"crit": 0}
	empty := roll.TagSet{}

	assert.True(t, withZero.Equal(empty))
	assert.True(t, empty.Equal(withZero))
	assert.True(t, roll.TagSet(nil).Equal(withZero))
}

func TestTagSet_Equal_CountMismatch(t *testing.T) {
	a := roll.TagSet{"crit": 1}
	b := roll.TagSet{"crit": 2}
	c := roll.TagSet{"crit_fail": 1}

	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, a.Equal(roll.TagSet{"crit": 1, "other": 0}))
}

func TestNewTagSet_CountsDuplicates(t *testing.T) {
	tags := roll.NewTagSet("crit", "crit", "blessed")
	assert.Equal(t, 2, tags.Count("crit"))
	assert.Equal(t, 1, tags.Count("blessed"))
	assert.Equal(t, 0, tags.Count("missing"))
}

// TestMergeTags_Identity verifies that merging zero sets yields the empty
// TagSet, the identity element of the keyed sum.
func TestMergeTags_Identity(t *testing.T) {
	merged := roll.MergeTags()
	require.NotNil(t, merged)
	assert.True(t, merged.Equal(roll.TagSet{}))
}

func TestMergeTags_KeyedSum(t *testing.T) {
	merged := roll.MergeTags(
		roll.TagSet{"crit": 1, "blessed": 2},
		roll.TagSet{"crit": 1},
		roll.TagSet{"cursed": -1},
	)
	assert.Equal(t, 2, merged.Count("crit"))
	assert.Equal(t, 2, merged.Count("blessed"))
	assert.Equal(t, -1, merged.Count("cursed"))
}

// TestMergeTags_Property verifies commutativity and associativity of the
// keyed sum for arbitrary tag sets.
func TestMergeTags_Property(t *testing.T) {
	tagSetGen := rapid.MapOf(
		rapid.SampledFrom([]string{"crit", "crit_fail", "blessed", "cursed"}),
		rapid.IntRange(-3, 3),
	)
	rapid.Check(t, func(rt *rapid.T) {
		a := roll.TagSet(tagSetGen.Draw(rt, "a"))
		b := roll.TagSet(tagSetGen.Draw(rt, "b"))
		c := roll.TagSet(tagSetGen.Draw(rt, "c"))

		assert.True(rt, roll.MergeTags(a, b).Equal(roll.MergeTags(b, a)),
			"merge must be commutative")
		assert.True(rt,
			roll.MergeTags(roll.MergeTags(a, b), c).Equal(roll.MergeTags(a, roll.MergeTags(b, c))),
			"merge must be associative")
		assert.True(rt, roll.MergeTags(a).Equal(a),
			"merging a single set must be the identity")
	})
}

func TestTagSet_Without(t *testing.T) {
	tags := roll.TagSet{"crit": 1, "blessed": 2}
	stripped := tags.Without("crit", "missing")

	assert.Equal(t, 0, stripped.Count("crit"))
	assert.Equal(t, 2, stripped.Count("blessed"))
	assert.Equal(t, 1, tags.Count("crit"), "Without must not mutate the receiver")
}

func TestTagSet_Clone_Independent(t *testing.T) {
	tags := roll.TagSet{"crit": 1}
	clone := tags.Clone()
	clone["crit"] = 5

	assert.Equal(t, 1, tags.Count("crit"))
}
