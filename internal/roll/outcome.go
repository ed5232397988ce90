package roll

// ProbabilityTolerance is the absolute tolerance used when checking that a
// Distribution's probabilities sum to 1, absorbing float64 accumulation
// error across deep trees.
const ProbabilityTolerance = 1e-9

// Outcome is one concrete value a roll can take, with its probability and
// tag annotations. Outcomes are treated as immutable once constructed.
type Outcome struct {
	Value       int
	Probability float64
	Tags        TagSet
}

// clone returns a copy of o with an independent TagSet, so callers holding
// a returned Distribution can never observe internal state change.
func (o Outcome) clone() Outcome {
	return Outcome{Value: o.Value, Probability: o.Probability, Tags: o.Tags.Clone()}
}

// Distribution is an ordered collection of Outcomes. A normalized
// Distribution contains no two outcomes with both equal Value and Equal
// Tags, and its probabilities sum to 1 within ProbabilityTolerance.
// Ordering carries no meaning but is deterministic: outcomes appear in
// first-encounter order of the enumeration that produced them.
type Distribution []Outcome

// TotalProbability returns the sum of all outcome probabilities.
//
// Postcondition: for any Distribution returned by GetDistribution, the
// result is within ProbabilityTolerance of 1.
func (d Distribution) TotalProbability() float64 {
	total := 0.0
	for _, o := range d {
		total += o.Probability
	}
	return total
}

// Find returns the outcome with the given value and tags, if present.
func (d Distribution) Find(value int, tags TagSet) (Outcome, bool) {
	for _, o := range d {
		if o.Value == value && o.Tags.Equal(tags) {
			return o, true
		}
	}
	return Outcome{}, false
}

// clone returns a deep copy of d.
func (d Distribution) clone() Distribution {
	out := make(Distribution, len(d))
	for i, o := range d {
		out[i] = o.clone()
	}
	return out
}

// outcomeKey identifies an outcome equivalence class for merging: equal
// value and Equal tags (via the canonical tag form, which ignores
// zero-count entries).
type outcomeKey struct {
	value int
	tags  string
}

// accumulator merges outcomes into a normalized Distribution. The hash
// index keeps the merge step amortized O(1) instead of a linear scan of
// the accumulated distribution; insertion order is preserved.
type accumulator struct {
	outcomes Distribution
	index    map[outcomeKey]int
}

func newAccumulator() *accumulator {
	return &accumulator{index: make(map[outcomeKey]int)}
}

// add merges o into the accumulated distribution: if an outcome with equal
// value and tags exists its probability grows by o.Probability, otherwise
// o is appended.
func (a *accumulator) add(o Outcome) {
	key := outcomeKey{value: o.Value, tags: o.Tags.canonical()}
	if i, ok := a.index[key]; ok {
		a.outcomes[i].Probability += o.Probability
		return
	}
	a.index[key] = len(a.outcomes)
	a.outcomes = append(a.outcomes, o)
}
