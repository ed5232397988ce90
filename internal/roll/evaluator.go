package roll

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxOutcomes caps the cartesian-product size of a single node's
// enumeration when no explicit Evaluator is used. Nothing in the data
// model prevents exponential blow-up with deeply chained high-arity
// combinations; the cap turns that into a fast ErrOutcomeLimit failure.
const DefaultMaxOutcomes = 1_000_000

// Evaluator computes Roll distributions under a configurable combination
// cap, logging each evaluation at debug level. Evaluators are stateless
// between calls and safe for concurrent use.
type Evaluator struct {
	maxOutcomes int
	logger      *zap.Logger
}

// NewEvaluator creates an Evaluator.
//
// Precondition: maxOutcomes >= 0; 0 uses DefaultMaxOutcomes. A nil logger
// disables logging.
func NewEvaluator(maxOutcomes int, logger *zap.Logger) *Evaluator {
	if maxOutcomes <= 0 {
		maxOutcomes = DefaultMaxOutcomes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{maxOutcomes: maxOutcomes, logger: logger}
}

// Distribution evaluates r into its exact distribution.
//
// Postcondition: on success the returned Distribution is normalized (no
// two outcomes share value and tags) and its probabilities sum to 1
// within ProbabilityTolerance, provided every leaf was built by a
// validating constructor.
func (e *Evaluator) Distribution(r Roll) (Distribution, error) {
	start := time.Now()
	evalID := uuid.NewString()

	dist, err := r.distribution(e)
	if err != nil {
		e.logger.Debug("roll evaluation failed",
			zap.String("eval_id", evalID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	e.logger.Debug("roll evaluated",
		zap.String("eval_id", evalID),
		zap.Int("outcomes", len(dist)),
		zap.Float64("total_probability", dist.TotalProbability()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return dist, nil
}

var defaultEvaluator = NewEvaluator(DefaultMaxOutcomes, nil)

// GetDistribution evaluates r with the default combination cap and no
// logging. Equivalent to NewEvaluator(0, nil).Distribution(r).
func GetDistribution(r Roll) (Distribution, error) {
	return defaultEvaluator.Distribution(r)
}
