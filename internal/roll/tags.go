// Package roll computes exact discrete probability distributions over
// composite roll expressions: dice, constants, and their algebraic
// combinations. Expressions are immutable trees built from leaf rolls and
// combinator nodes; evaluating a tree enumerates the full cartesian product
// of its children's distributions, never sampling.
//
// Two occurrences of the same Roll value inside one expression are two
// independent random variables with identical marginal distributions. The
// tree is a description, not a realization: `Sub(x, x)` for a d6 is the
// difference of two independent d6 rolls, not the constant zero.
package roll

import "sort"

// TagSet maps a tag name to an integer count. Tags track provenance of an
// outcome, e.g. which die face produced a value or whether a side counts as
// a critical hit.
//
// Invariant: a tag absent from the map is equivalent to a tag present with
// count 0. All operations honor this; callers must compare TagSets with
// Equal, never with reflect-style map equality.
type TagSet map[string]int

// NewTagSet builds a TagSet from tag names, counting each occurrence.
//
// Postcondition: Count(name) equals the number of times name appears in names.
func NewTagSet(names ...string) TagSet {
	t := make(TagSet, len(names))
	for _, name := range names {
		t[name]++
	}
	return t
}

// Count returns the count for name, defaulting to 0 for absent tags.
func (t TagSet) Count(name string) int {
	return t[name]
}

// Equal reports whether t and other agree on every tag appearing in either,
// with missing entries defaulting to 0.
func (t TagSet) Equal(other TagSet) bool {
	for name, count := range t {
		if other[name] != count {
			return false
		}
	}
	for name, count := range other {
		if t[name] != count {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of t. Cloning nil yields an empty,
// non-nil TagSet so callers may write to the result.
func (t TagSet) Clone() TagSet {
	out := make(TagSet, len(t))
	for name, count := range t {
		out[name] = count
	}
	return out
}

// Without returns a copy of t with the named tags removed.
func (t TagSet) Without(names ...string) TagSet {
	out := t.Clone()
	for _, name := range names {
		delete(out, name)
	}
	return out
}

// MergeTags combines TagSets by keyed sum: the result maps each tag to the
// sum of its counts across all inputs. The operation is commutative and
// associative; merging zero sets yields the empty TagSet.
func MergeTags(sets ...TagSet) TagSet {
	out := make(TagSet)
	for _, set := range sets {
		for name, count := range set {
			out[name] += count
		}
	}
	return out
}

// String returns the canonical form, used in logs and CLI output.
func (t TagSet) String() string {
	return t.canonical()
}

// canonical returns a deterministic string form of t with zero-count entries
// skipped, suitable as a hash key: TagSets that are Equal always canonicalize
// identically.
func (t TagSet) canonical() string {
	if len(t) == 0 {
		return ""
	}
	names := make([]string, 0, len(t))
	for name, count := range t {
		if count != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b []byte
	for _, name := range names {
		b = append(b, name...)
		b = append(b, '=')
		b = appendInt(b, t[name])
		b = append(b, ';')
	}
	return string(b)
}

func appendInt(b []byte, n int) []byte {
	if n < 0 {
		b = append(b, '-')
		n = -n
	}
	if n >= 10 {
		b = appendInt(b, n/10)
	}
	return append(b, byte('0'+n%10))
}
