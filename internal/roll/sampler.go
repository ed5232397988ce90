package roll

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand"
)

// Source is the randomness provider for sampling a concrete outcome from a
// computed distribution.
//
// Implementations MUST return values uniformly distributed in [0, 1).
type Source interface {
	// Float64 returns a uniform random float64 in [0, 1).
	Float64() float64
}

// float64Bits is the number of uniformly drawn bits in a Float64 result,
// matching the precision of math/rand's Float64.
const float64Bits = 53

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand, suitable for
// production draws.
//
// Postcondition: every value returned by Float64 is in [0, 1).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Float64 returns a cryptographically secure uniform float64 in [0, 1).
//
// Panics with "roll: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Float64() float64 {
	limit := big.NewInt(1 << float64Bits)
	val, err := rand.Int(rand.Reader, limit)
	if err != nil {
		panic("roll: crypto/rand failure: " + err.Error())
	}
	return float64(val.Int64()) / float64(int64(1)<<float64Bits)
}

// seededSource implements Source using a deterministic math/rand stream.
type seededSource struct {
	rng *mathrand.Rand
}

// NewSeededSource returns a deterministic Source for tests and replayable
// simulations: the same seed always yields the same draw sequence.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: mathrand.New(mathrand.NewSource(seed))}
}

func (s *seededSource) Float64() float64 {
	return s.rng.Float64()
}

// Sample draws one Outcome from d by inverse-CDF walk: it accumulates
// probability in distribution order and returns the first outcome whose
// cumulative sum meets or exceeds the draw.
//
// Errors: ErrEmptyDistribution when d has no outcomes.
func Sample(d Distribution, src Source) (Outcome, error) {
	if len(d) == 0 {
		return Outcome{}, ErrEmptyDistribution
	}
	draw := src.Float64()
	cumulative := 0.0
	for _, o := range d {
		cumulative += o.Probability
		if cumulative >= draw {
			return o.clone(), nil
		}
	}
	// Float drift can leave the total a hair under 1; the draw then
	// belongs to the last outcome.
	return d[len(d)-1].clone(), nil
}

// Simulate evaluates r and draws one Outcome from its distribution.
func Simulate(r Roll, src Source) (Outcome, error) {
	dist, err := GetDistribution(r)
	if err != nil {
		return Outcome{}, err
	}
	return Sample(dist, src)
}
