package roll

import "fmt"

// Roll is a node in an immutable roll-expression tree. There are exactly
// two implementations: a leaf owning a fixed Distribution, and a combined
// node owning child Rolls and a Combiner.
//
// Rolls are pure values with no identity and no caching: every evaluation
// recomputes the whole subtree, so a Roll may be freely shared between
// trees and between concurrent evaluations. Sharing a Roll inside one
// expression shares its description only; each occurrence rolls
// independently during enumeration.
type Roll interface {
	// distribution computes this node's Distribution under ev's limits.
	distribution(ev *Evaluator) (Distribution, error)
}

// leaf is a Roll that owns its Distribution directly (a die or constant).
type leaf struct {
	dist Distribution
}

// combined is a Roll computed on demand from its children's distributions
// through a Combiner.
type combined struct {
	children []Roll
	combine  Combiner
}

// NewLeaf builds a leaf Roll over a copy of dist. The distribution is not
// validated here; Die and Constant are the validating constructors, and a
// hand-built empty or non-normalized leaf is the caller's responsibility.
func NewLeaf(dist Distribution) Roll {
	return &leaf{dist: dist.clone()}
}

// Combined builds an internal Roll that combines children through combine.
// Zero children is permitted: evaluation then invokes combine once with no
// arguments and returns its single outcome.
//
// Precondition: combine must be non-nil and pure.
func Combined(combine Combiner, children ...Roll) Roll {
	if combine == nil {
		panic("roll: Combined called with nil combiner")
	}
	kids := make([]Roll, len(children))
	copy(kids, children)
	return &combined{children: kids, combine: combine}
}

func (l *leaf) distribution(*Evaluator) (Distribution, error) {
	// Defensive copy: callers must never observe a previously returned
	// Distribution change as a side effect of later calls.
	return l.dist.clone(), nil
}

func (c *combined) distribution(ev *Evaluator) (Distribution, error) {
	if len(c.children) == 0 {
		out, err := c.combine()
		if err != nil {
			return nil, err
		}
		return Distribution{out}, nil
	}

	dists := make([]Distribution, len(c.children))
	product := 1
	for i, child := range c.children {
		d, err := child.distribution(ev)
		if err != nil {
			return nil, err
		}
		dists[i] = d
		product *= len(d)
		if product > ev.maxOutcomes {
			return nil, fmt.Errorf("roll: %d children need more than %d combinations: %w",
				len(c.children), ev.maxOutcomes, ErrOutcomeLimit)
		}
	}

	// An empty child distribution empties the cartesian product; the
	// result is an empty Distribution, signalling a malformed leaf
	// upstream rather than an error here.
	if product == 0 {
		return Distribution{}, nil
	}

	// Enumerate the full cartesian product with a mixed-radix counter,
	// last index fastest. The order is deterministic, giving stable
	// insertion order in the accumulated distribution.
	acc := newAccumulator()
	indexes := make([]int, len(dists))
	args := make([]Outcome, len(dists))
	for {
		for i, d := range dists {
			args[i] = d[indexes[i]]
		}
		out, err := c.combine(args...)
		if err != nil {
			return nil, err
		}
		acc.add(out)

		i := len(indexes) - 1
		for ; i >= 0; i-- {
			indexes[i]++
			if indexes[i] < len(dists[i]) {
				break
			}
			indexes[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return acc.outcomes, nil
}
