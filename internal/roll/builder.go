package roll

import "fmt"

// Builders for the standard operator nodes. Each returns an immutable Roll
// combining its operands with one of the standard combinators; building a
// tree performs no computation.

// Constant builds a leaf with a single certain outcome. Each tag name
// contributes count 1 (repeat a name for higher counts).
func Constant(value int, tags ...string) Roll {
	return NewLeaf(Distribution{{Value: value, Probability: 1.0, Tags: NewTagSet(tags...)}})
}

// Add builds a + b.
func Add(a, b Roll) Roll { return Combined(FromValueRule(addValues), a, b) }

// Sub builds a - b.
func Sub(a, b Roll) Roll { return Combined(FromValueRule(subValues), a, b) }

// Mul builds a * b. Note that multiplying a die by an integer constant
// scales each outcome value; summing n independent copies of a die is
// Repeat, a different operation with a different distribution.
func Mul(a, b Roll) Roll { return Combined(FromValueRule(mulValues), a, b) }

// DivRound builds a / b rounded to the nearest integer, halves away from
// zero. Evaluation fails with ErrZeroDivisor when b yields a zero outcome.
func DivRound(a, b Roll) Roll { return Combined(FromValueRule(divRoundValues), a, b) }

// DivFloor builds a / b rounded toward negative infinity. Evaluation fails
// with ErrZeroDivisor when b yields a zero outcome.
func DivFloor(a, b Roll) Roll { return Combined(FromValueRule(divFloorValues), a, b) }

// Pow builds a ^ b. Evaluation fails when b yields a negative outcome.
func Pow(a, b Roll) Roll { return Combined(FromValueRule(powValues), a, b) }

// Mod builds a mod b with Go's truncated-remainder semantics (the result
// takes the sign of a). Evaluation fails with ErrZeroDivisor when b yields
// a zero outcome.
func Mod(a, b Roll) Roll { return Combined(FromValueRule(modValues), a, b) }

// Neg builds -a, expressed as 0 - a.
func Neg(a Roll) Roll { return Sub(Constant(0), a) }

// Comparison builders produce 1 when the relation holds, else 0. Tags of
// both operands combine additively, like the arithmetic builders.

// Lt builds a < b.
func Lt(a, b Roll) Roll { return Combined(FromValueRule(compareRule(func(x, y int) bool { return x < y })), a, b) }

// Le builds a <= b.
func Le(a, b Roll) Roll {
	return Combined(FromValueRule(compareRule(func(x, y int) bool { return x <= y })), a, b)
}

// Eq builds a == b.
func Eq(a, b Roll) Roll {
	return Combined(FromValueRule(compareRule(func(x, y int) bool { return x == y })), a, b)
}

// Ne builds a != b.
func Ne(a, b Roll) Roll {
	return Combined(FromValueRule(compareRule(func(x, y int) bool { return x != y })), a, b)
}

// Gt builds a > b.
func Gt(a, b Roll) Roll { return Combined(FromValueRule(compareRule(func(x, y int) bool { return x > y })), a, b) }

// Ge builds a >= b.
func Ge(a, b Roll) Roll {
	return Combined(FromValueRule(compareRule(func(x, y int) bool { return x >= y })), a, b)
}

// Max builds the n-ary maximum of rolls; tags combine additively across
// all operands.
//
// Errors: ErrNoRolls with zero operands.
func Max(rolls ...Roll) (Roll, error) {
	if len(rolls) == 0 {
		return nil, fmt.Errorf("roll: max: %w", ErrNoRolls)
	}
	return Combined(FromValueRule(maxValues), rolls...), nil
}

// Min builds the n-ary minimum of rolls; tags combine additively across
// all operands.
//
// Errors: ErrNoRolls with zero operands.
func Min(rolls ...Roll) (Roll, error) {
	if len(rolls) == 0 {
		return nil, fmt.Errorf("roll: min: %w", ErrNoRolls)
	}
	return Combined(FromValueRule(minValues), rolls...), nil
}

// Repeat builds the sum of n independent copies of r as a chain of add
// nodes seeded with Constant(0). This is the "3 × d6 means roll three
// d6" repetition form; contrast Mul, which scales outcome values.
//
// Errors: ErrInvalidCount when n < 0.
func Repeat(n int, r Roll) (Roll, error) {
	if n < 0 {
		return nil, fmt.Errorf("roll: repeat %d times: %w", n, ErrInvalidCount)
	}
	out := Constant(0)
	for i := 0; i < n; i++ {
		out = Add(out, r)
	}
	return out, nil
}

// KeepHighest builds the sum of the keep highest outcomes among rolls,
// e.g. KeepHighest(3, d6, d6, d6, d6) for "4d6 keep highest 3". The
// enumeration is exact: all operands are rolled jointly and the top keep
// values of each combination are summed.
//
// Errors: ErrNoRolls with zero operands; ErrInvalidCount unless
// 1 <= keep <= len(rolls).
func KeepHighest(keep int, rolls ...Roll) (Roll, error) {
	if len(rolls) == 0 {
		return nil, fmt.Errorf("roll: keep highest: %w", ErrNoRolls)
	}
	if keep < 1 || keep > len(rolls) {
		return nil, fmt.Errorf("roll: keep %d of %d rolls: %w", keep, len(rolls), ErrInvalidCount)
	}
	return Combined(FromValueRule(topKRule(keep)), rolls...), nil
}

// ApplyTagRule builds a single-child node that rewrites outcome values
// whose tags satisfy predicate: if predicate(tags) holds the value becomes
// transform(value), otherwise it passes through. Tags and probability are
// untouched either way.
//
// Precondition: transform and predicate must be non-nil and pure.
func ApplyTagRule(r Roll, transform func(int) int, predicate func(TagSet) bool) Roll {
	if transform == nil || predicate == nil {
		panic("roll: ApplyTagRule called with nil transform or predicate")
	}
	return Combined(tagRuleCombiner(transform, predicate), r)
}

// RemoveTags builds a single-child node that passes values through and
// strips the named tags from every outcome.
func RemoveTags(r Roll, names ...string) Roll {
	return Combined(removeTagsCombiner(names...), r)
}

// EnsureRoll coerces v to a Roll at the operand boundary: a Roll passes
// through, an int becomes a Constant, anything else is rejected.
//
// Errors: ErrOperandType for any other type.
func EnsureRoll(v any) (Roll, error) {
	switch x := v.(type) {
	case Roll:
		return x, nil
	case int:
		return Constant(x), nil
	default:
		return nil, fmt.Errorf("roll: cannot use %T as a roll operand: %w", v, ErrOperandType)
	}
}
