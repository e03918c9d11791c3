// Package bitset provides a small fixed-capacity bit set used for
// per-block dirty tracking.
//
// The state compiler tracks well under 64 hardware blocks, so a single
// machine word is enough; the type still exposes set-algebra operations
// (union, difference) because the workaround policy composes dirty sets.
package bitset

import "math/bits"

// Set is a bit set over small non-negative indices (0..63).
// The zero value is an empty set.
type Set struct {
	word uint64
}

// Set marks index i as present.
func (s *Set) Set(i int) {
	s.word |= 1 << uint(i)
}

// Clear removes index i.
func (s *Set) Clear(i int) {
	s.word &^= 1 << uint(i)
}

// Test reports whether index i is present.
func (s *Set) Test(i int) bool {
	return s.word&(1<<uint(i)) != 0
}

// Empty reports whether no index is present.
func (s *Set) Empty() bool {
	return s.word == 0
}

// Count returns the number of indices present.
func (s *Set) Count() int {
	return bits.OnesCount64(s.word)
}

// Reset removes every index.
func (s *Set) Reset() {
	s.word = 0
}

// SetAll marks indices [0, n) as present.
func (s *Set) SetAll(n int) {
	if n >= 64 {
		s.word = ^uint64(0)
		return
	}
	s.word = (1 << uint(n)) - 1
}

// Union adds every index present in other.
func (s *Set) Union(other Set) {
	s.word |= other.word
}

// Subtract removes every index present in other.
func (s *Set) Subtract(other Set) {
	s.word &^= other.word
}

// Intersects reports whether the two sets share any index.
func (s *Set) Intersects(other Set) bool {
	return s.word&other.word != 0
}

// Equal reports whether both sets contain exactly the same indices.
func (s *Set) Equal(other Set) bool {
	return s.word == other.word
}

// Of returns a set containing the given indices.
func Of(indices ...int) Set {
	var s Set
	for _, i := range indices {
		s.Set(i)
	}
	return s
}
