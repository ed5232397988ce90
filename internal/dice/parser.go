package dice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rollstat/rollstat/internal/roll"
)

// Parse parses a compact dice expression into an exact roll tree.
// Supported forms: "d20", "2d6", "2d6+3", "4d8-2", "4d6kh3".
//
// "NdS" is N independent dice summed; "khK" keeps the K highest of the N
// dice (exact joint enumeration, not an approximation); a trailing
// modifier adds or subtracts a constant.
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns a Roll or a descriptive error.
func Parse(expr string) (roll.Roll, error) {
	if expr == "" {
		return nil, fmt.Errorf("dice: empty expression")
	}

	raw := expr
	s := strings.ToLower(expr)

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		return nil, fmt.Errorf("dice: missing 'd' in expression %q", raw)
	}

	// Count before 'd'; defaults to 1 when omitted.
	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		var err error
		count, err = strconv.Atoi(countStr)
		if err != nil {
			return nil, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
		}
		if count <= 0 {
			return nil, fmt.Errorf("dice: invalid die count in %q: must be >= 1", raw)
		}
	}

	rest := s[dIdx+1:]

	// Extract the keep-highest suffix ("kh<N>") before any modifier.
	keepHighest := 0
	if khIdx := strings.Index(rest, "kh"); khIdx >= 0 {
		khPart := rest[khIdx+2:]
		rest = rest[:khIdx]

		// khPart may still carry a modifier suffix; split it off.
		if modOffset := signOffset(khPart); modOffset >= 0 {
			rest += khPart[modOffset:]
			khPart = khPart[:modOffset]
		}

		kh, err := strconv.Atoi(khPart)
		if err != nil {
			return nil, fmt.Errorf("dice: invalid kh value in %q: %w", raw, err)
		}
		if kh <= 0 || kh >= count {
			return nil, fmt.Errorf("dice: kh value %d must be > 0 and < count %d in %q", kh, count, raw)
		}
		keepHighest = kh
	}

	// Split sides and optional modifier.
	sidesStr, modStr := rest, ""
	if modOffset := signOffset(rest); modOffset >= 0 {
		sidesStr, modStr = rest[:modOffset], rest[modOffset:]
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil {
		return nil, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < 2 {
		return nil, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", raw)
	}

	modifier := 0
	if modStr != "" {
		modifier, err = strconv.Atoi(modStr)
		if err != nil {
			return nil, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
	}

	die, err := roll.Die(sides, nil)
	if err != nil {
		return nil, fmt.Errorf("dice: building die for %q: %w", raw, err)
	}

	var tree roll.Roll
	switch {
	case keepHighest > 0:
		pool := make([]roll.Roll, count)
		for i := range pool {
			pool[i] = die
		}
		tree, err = roll.KeepHighest(keepHighest, pool...)
		if err != nil {
			return nil, fmt.Errorf("dice: building %q: %w", raw, err)
		}
	case count == 1:
		tree = die
	default:
		tree, err = roll.Repeat(count, die)
		if err != nil {
			return nil, fmt.Errorf("dice: building %q: %w", raw, err)
		}
	}

	if modifier != 0 {
		tree = roll.Add(tree, roll.Constant(modifier))
	}
	return tree, nil
}

// MustParse parses expr and panics on error. Useful for package-level
// constants.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) roll.Roll {
	r, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return r
}

// signOffset returns the index of the first '+' or '-' not at position 0,
// or -1 when there is none.
func signOffset(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			return i
		}
	}
	return -1
}
