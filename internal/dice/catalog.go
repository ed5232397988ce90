// Package dice provides the catalog of named standard dice, a parser for
// compact dice expressions ("2d6+3", "4d6kh3"), and YAML-defined custom
// dice. Everything here is a thin constructor layer over the roll engine;
// the returned values are ordinary immutable roll trees.
package dice

import "github.com/rollstat/rollstat/internal/roll"

// mustDie builds a fair die; only invalid side counts can fail, so the
// fixed catalog constructors panic instead of returning an error.
func mustDie(sides int, assign roll.TagAssignment) roll.Roll {
	d, err := roll.Die(sides, assign)
	if err != nil {
		panic("dice: building catalog die: " + err.Error())
	}
	return d
}

// D2 returns a fair two-sided die (a coin).
func D2() roll.Roll { return mustDie(2, nil) }

// D3 returns a fair three-sided die.
func D3() roll.Roll { return mustDie(3, nil) }

// D4 returns a fair four-sided die.
func D4() roll.Roll { return mustDie(4, nil) }

// D6 returns a fair six-sided die.
func D6() roll.Roll { return mustDie(6, nil) }

// D8 returns a fair eight-sided die.
func D8() roll.Roll { return mustDie(8, nil) }

// D10 returns a fair ten-sided die.
func D10() roll.Roll { return mustDie(10, nil) }

// D12 returns a fair twelve-sided die.
func D12() roll.Roll { return mustDie(12, nil) }

// D20 returns a fair twenty-sided die.
func D20() roll.Roll { return mustDie(20, nil) }

// D100 returns a fair percentile die.
func D100() roll.Roll { return mustDie(100, nil) }

// D20Crit returns a d20 with the natural 1 tagged "crit" and the natural
// 20 tagged "crit_fail", the roll-under convention where low is good.
func D20Crit() roll.Roll {
	return mustDie(20, roll.TagAssignment{"crit": {1}, "crit_fail": {20}})
}

// Named returns the catalog die for a name like "d20", if it exists.
func Named(name string) (roll.Roll, bool) {
	switch name {
	case "d2":
		return D2(), true
	case "d3":
		return D3(), true
	case "d4":
		return D4(), true
	case "d6":
		return D6(), true
	case "d8":
		return D8(), true
	case "d10":
		return D10(), true
	case "d12":
		return D12(), true
	case "d20":
		return D20(), true
	case "d100":
		return D100(), true
	default:
		return nil, false
	}
}
