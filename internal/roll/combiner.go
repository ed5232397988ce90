package roll

import (
	"fmt"
	"math"
)

// Combiner merges one input Outcome drawn from each child's distribution
// into a single parent Outcome. Combiners must be pure: the result depends
// only on the inputs, and the returned Probability is the product of the
// input probabilities (times any combiner-specific weighting).
//
// A Combiner may be invoked with zero arguments when its node has no
// children; the standard combiners built from value rules reject that, but
// constant combiners rely on it.
type Combiner func(outcomes ...Outcome) (Outcome, error)

// ValueRule computes the output value from the input values. Rules report
// domain violations (zero divisor, negative exponent) as errors, which
// abort the whole distribution computation.
type ValueRule func(values ...int) (int, error)

// TagRule computes the output TagSet from the input TagSets. The standard
// rule is MergeTags (additive sum); tag-rule application nodes use a
// passthrough instead.
type TagRule func(sets ...TagSet) TagSet

// FromRules builds a Combiner layering a value rule over a tag rule. The
// output probability is the product of the input probabilities.
func FromRules(value ValueRule, tags TagRule) Combiner {
	return func(outcomes ...Outcome) (Outcome, error) {
		values := make([]int, len(outcomes))
		sets := make([]TagSet, len(outcomes))
		probability := 1.0
		for i, o := range outcomes {
			values[i] = o.Value
			sets[i] = o.Tags
			probability *= o.Probability
		}
		v, err := value(values...)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Value: v, Probability: probability, Tags: tags(sets...)}, nil
	}
}

// FromValueRule builds a Combiner from a value rule with the additive tag
// rule, the policy shared by all arithmetic and comparison combinators.
func FromValueRule(value ValueRule) Combiner {
	return FromRules(value, MergeTags)
}

// Standard value rules. All n-ary rules follow the conventions of the
// two-operand operator table: sub is first minus the sum of the rest, div
// is first over the product of the rest.

func addValues(values ...int) (int, error) {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum, nil
}

func subValues(values ...int) (int, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("roll: subtract needs operands: %w", ErrNoRolls)
	}
	result := values[0]
	for _, v := range values[1:] {
		result -= v
	}
	return result, nil
}

func mulValues(values ...int) (int, error) {
	product := 1
	for _, v := range values {
		product *= v
	}
	return product, nil
}

// divRoundValues divides the first value by the product of the rest and
// rounds to the nearest integer, halves away from zero.
func divRoundValues(values ...int) (int, error) {
	a, b, err := divOperands(values)
	if err != nil {
		return 0, err
	}
	return int(math.Round(float64(a) / float64(b))), nil
}

// divFloorValues divides the first value by the product of the rest and
// rounds toward negative infinity.
func divFloorValues(values ...int) (int, error) {
	a, b, err := divOperands(values)
	if err != nil {
		return 0, err
	}
	return int(math.Floor(float64(a) / float64(b))), nil
}

func divOperands(values []int) (int, int, error) {
	if len(values) < 2 {
		return 0, 0, fmt.Errorf("roll: divide needs two operands: %w", ErrNoRolls)
	}
	divisor := 1
	for _, v := range values[1:] {
		divisor *= v
	}
	if divisor == 0 {
		return 0, 0, ErrZeroDivisor
	}
	return values[0], divisor, nil
}

func modValues(values ...int) (int, error) {
	if len(values) < 2 {
		return 0, fmt.Errorf("roll: modulo needs two operands: %w", ErrNoRolls)
	}
	if values[1] == 0 {
		return 0, ErrZeroDivisor
	}
	// Go truncated remainder: the result takes the sign of the dividend.
	return values[0] % values[1], nil
}

func powValues(values ...int) (int, error) {
	if len(values) < 2 {
		return 0, fmt.Errorf("roll: exponent needs two operands: %w", ErrNoRolls)
	}
	base, exp := values[0], values[1]
	if exp < 0 {
		return 0, fmt.Errorf("roll: negative exponent %d: %w", exp, ErrInvalidCount)
	}
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result, nil
}

func maxValues(values ...int) (int, error) {
	if len(values) == 0 {
		return 0, ErrNoRolls
	}
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best, nil
}

func minValues(values ...int) (int, error) {
	if len(values) == 0 {
		return 0, ErrNoRolls
	}
	best := values[0]
	for _, v := range values[1:] {
		if v < best {
			best = v
		}
	}
	return best, nil
}

// compareRule lifts a boolean relation into a 1/0 value rule over exactly
// two operands.
func compareRule(relation func(a, b int) bool) ValueRule {
	return func(values ...int) (int, error) {
		if len(values) < 2 {
			return 0, fmt.Errorf("roll: comparison needs two operands: %w", ErrNoRolls)
		}
		if relation(values[0], values[1]) {
			return 1, nil
		}
		return 0, nil
	}
}

// topKRule sums the keep highest values of its inputs; the exact analogue
// of a "4d6 keep highest 3" roll.
func topKRule(keep int) ValueRule {
	return func(values ...int) (int, error) {
		if keep > len(values) {
			return 0, fmt.Errorf("roll: keep %d of %d values: %w", keep, len(values), ErrInvalidCount)
		}
		sorted := make([]int, len(values))
		copy(sorted, values)
		// Insertion sort descending; n is the number of dice, always small.
		for i := 1; i < len(sorted); i++ {
			for j := i; j > 0 && sorted[j] > sorted[j-1]; j-- {
				sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
			}
		}
		sum := 0
		for _, v := range sorted[:keep] {
			sum += v
		}
		return sum, nil
	}
}

// tagRuleCombiner backs ApplyTagRule nodes: exactly one input outcome; if
// predicate(tags) holds the value is transformed, otherwise it passes
// through. Tags pass through unchanged in both cases.
func tagRuleCombiner(transform func(int) int, predicate func(TagSet) bool) Combiner {
	return func(outcomes ...Outcome) (Outcome, error) {
		if len(outcomes) != 1 {
			return Outcome{}, fmt.Errorf("roll: tag rule expects one operand, got %d: %w", len(outcomes), ErrNoRolls)
		}
		o := outcomes[0]
		value := o.Value
		if predicate(o.Tags) {
			value = transform(value)
		}
		return Outcome{Value: value, Probability: o.Probability, Tags: o.Tags.Clone()}, nil
	}
}

// removeTagsCombiner passes the value and probability through and drops the
// named tags.
func removeTagsCombiner(names ...string) Combiner {
	return func(outcomes ...Outcome) (Outcome, error) {
		if len(outcomes) != 1 {
			return Outcome{}, fmt.Errorf("roll: tag removal expects one operand, got %d: %w", len(outcomes), ErrNoRolls)
		}
		o := outcomes[0]
		return Outcome{Value: o.Value, Probability: o.Probability, Tags: o.Tags.Without(names...)}, nil
	}
}
