package roll

import (
	"fmt"
	"math"
)

// Face describes one side of a die. A bare face (Weighted false) shares
// the probability mass left over after all weighted faces claim theirs; a
// weighted face carries an explicit probability and optional tags.
type Face struct {
	Value       int
	Probability float64 // used only when Weighted
	Weighted    bool
	Tags        TagSet
}

// FaceOf returns a bare face with the given value.
func FaceOf(value int) Face {
	return Face{Value: value}
}

// WeightedFace returns a face with an explicit probability and tags.
//
// Precondition: probability in [0, 1].
func WeightedFace(value int, probability float64, tags TagSet) Face {
	return Face{Value: value, Probability: probability, Weighted: true, Tags: tags}
}

// TagAssignment maps a tag name to the face values that carry it. Every
// face whose value appears in the list gets the tag with count 1.
type TagAssignment map[string][]int

// Die builds a fair die with faces 1..sides. assign may be nil.
//
// Postcondition: the resulting distribution has one outcome per face, each
// with probability 1/sides.
func Die(sides int, assign TagAssignment) (Roll, error) {
	if sides <= 0 {
		return nil, fmt.Errorf("roll: die with %d sides: %w", sides, ErrInvalidDie)
	}
	faces := make([]Face, sides)
	for i := range faces {
		faces[i] = FaceOf(i + 1)
	}
	return DieFaces(faces, assign)
}

// DieFaces builds a die from an explicit face list. Probability mass not
// claimed by weighted faces is divided evenly among the bare faces.
//
// Errors: ErrInvalidDie if faces is empty, if weighted probabilities
// exceed 1, or if residual mass remains with no bare face to carry it.
func DieFaces(faces []Face, assign TagAssignment) (Roll, error) {
	if len(faces) == 0 {
		return nil, fmt.Errorf("roll: die with no faces: %w", ErrInvalidDie)
	}

	claimed := 0.0
	bare := 0
	for _, f := range faces {
		if f.Weighted {
			claimed += f.Probability
		} else {
			bare++
		}
	}
	residual := 1.0 - claimed
	if residual < -ProbabilityTolerance {
		return nil, fmt.Errorf("roll: face probabilities sum to %g: %w", claimed, ErrInvalidDie)
	}

	share := 0.0
	if bare == 0 {
		if math.Abs(residual) > ProbabilityTolerance {
			return nil, fmt.Errorf("roll: residual probability %g with no bare faces: %w", residual, ErrInvalidDie)
		}
	} else {
		share = residual / float64(bare)
	}

	dist := make(Distribution, len(faces))
	for i, f := range faces {
		probability := share
		if f.Weighted {
			probability = f.Probability
		}
		tags := f.Tags.Clone()
		for name, values := range assign {
			for _, v := range values {
				if v == f.Value {
					tags[name] = 1
					break
				}
			}
		}
		dist[i] = Outcome{Value: f.Value, Probability: probability, Tags: tags}
	}
	return NewLeaf(dist), nil
}
