package roll

import "errors"

// Sentinel errors for the evaluation engine. All are surfaced synchronously
// from construction or GetDistribution; a failed computation is discarded
// whole, never returned partially. Match with errors.Is.
var (
	// ErrInvalidDie reports a die that cannot carry a valid distribution:
	// zero sides, an empty face list, or explicit face probabilities that
	// leave residual mass with no bare face to absorb it.
	ErrInvalidDie = errors.New("roll: invalid die")

	// ErrZeroDivisor reports a division or modulo whose divisor operand
	// produced a zero-valued outcome during enumeration.
	ErrZeroDivisor = errors.New("roll: division by zero")

	// ErrNoRolls reports an n-ary builder invoked with zero operands.
	ErrNoRolls = errors.New("roll: at least one roll required")

	// ErrOperandType reports a value that is neither an int nor a Roll at
	// the operand coercion boundary.
	ErrOperandType = errors.New("roll: operand must be an int or a Roll")

	// ErrInvalidCount reports an out-of-range repetition or keep count.
	ErrInvalidCount = errors.New("roll: count out of range")

	// ErrOutcomeLimit reports a cartesian product larger than the
	// evaluator's configured cap. The check runs before enumeration, so
	// no work is wasted on a combination space that cannot complete.
	ErrOutcomeLimit = errors.New("roll: cartesian product exceeds outcome limit")

	// ErrEmptyDistribution reports a sampling draw from a distribution
	// with no outcomes.
	ErrEmptyDistribution = errors.New("roll: empty distribution")
)
