// Package bitset provides the fixed-width terminal sets used for FIRST
// sets and LALR(1) lookahead sets. It wraps bits-and-blooms/bitset to add
// the change-on-write signal the analysis fixpoints depend on: Add and
// Union report whether they actually changed the set, since that report
// is the termination test of the FIRST-set and lookahead-propagation
// fixpoints.
package bitset

import "github.com/bits-and-blooms/bitset"

// Set is a fixed-width bit-set of terminal indices. FIRST sets and
// lookahead sets are width nterminal; the {default} sentinel is not a
// real terminal and never occupies a bit here. It is a distinct
// lookahead value the action packer (acttab) reserves at index
// nterminal, one past this set's range.
type Set struct {
	bits *bitset.BitSet
	n    uint
}

// New returns an all-zero set of width n.
func New(n uint) *Set {
	return &Set{
		bits: bitset.New(n),
		n:    n,
	}
}

// Len reports the set's fixed width.
func (s *Set) Len() uint {
	return s.n
}

// Add sets bit i and reports whether it transitioned 0->1.
func (s *Set) Add(i uint) bool {
	if s.bits.Test(i) {
		return false
	}
	s.bits.Set(i)
	return true
}

// Contains reports whether bit i is set.
func (s *Set) Contains(i uint) bool {
	return s.bits.Test(i)
}

// Union merges src into s in place and reports whether any bit
// transitioned 0->1 in s. This is the termination signal the FIRST-set
// and lookahead fixpoints check after each pass.
func (s *Set) Union(src *Set) bool {
	if src == nil {
		return false
	}
	before := s.bits.Count()
	s.bits.InPlaceUnion(src.bits)
	return s.bits.Count() != before
}

// Each calls f for every set bit, in ascending order.
func (s *Set) Each(f func(i uint)) {
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		f(i)
	}
}

// Slice returns the set bits as a sorted slice.
func (s *Set) Slice() []uint {
	out := make([]uint, 0, s.bits.Count())
	s.Each(func(i uint) { out = append(out, i) })
	return out
}

// IsEmpty reports whether no bit is set.
func (s *Set) IsEmpty() bool {
	return s.bits.None()
}

// Clone returns an independent copy of s.
func (s *Set) Clone() *Set {
	return &Set{bits: s.bits.Clone(), n: s.n}
}
