// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package minisketch

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/btcsuite/minisketch/field"
)

// Implementation identifies the field arithmetic backend a sketch uses.
// Sketches can only be merged with sketches using the same implementation.
type Implementation = field.Implementation

// These constants define the available implementations.
const (
	Generic = field.Generic
	CLMul   = field.CLMul
	Table   = field.Table
)

// FixedSeed is the seed value that selects a fixed, non-randomized root
// finding basis when decoding.
const FixedSeed = ^uint64(0)

// BitsSupported returns whether sketches of elements with the given width can
// be constructed.
func BitsSupported(bits uint32) bool {
	return field.BitsSupported(bits)
}

// MaxImplementation returns the highest implementation number defined.
func MaxImplementation() Implementation {
	return field.MaxImplementation()
}

// ImplementationSupported returns whether impl can be used for sketches of
// the given width on the running machine.
func ImplementationSupported(bits uint32, impl Implementation) bool {
	return field.ImplementationSupported(bits, impl)
}

// SupportedImplementations returns the implementations usable for sketches
// of the given width on the running machine.
func SupportedImplementations(bits uint32) []Implementation {
	return field.SupportedImplementations(bits)
}

// NumImplementations returns the number of implementations usable for the
// given width on the running machine.  Implementation values are not
// contiguous, so enumerate them with SupportedImplementations.
func NumImplementations(bits uint32) int {
	return field.NumImplementations(bits)
}

// Sketch is a compact, mergeable summary of a set of nonzero elements of a
// fixed bit width.  Adding the same element twice removes it again, so a
// sketch always summarizes the set of elements added an odd number of times.
//
// The k-th coefficient stored (k = 1..capacity) is the sum of the members
// raised to the power 2k-1 in GF(2^bits).  The even power sums are implied by
// the odd ones, so a sketch can recover up to capacity elements.
//
// A Sketch is not safe for concurrent mutation.
type Sketch struct {
	field     field.Field
	seed      uint64
	syndromes []uint64
}

// New returns an empty sketch for elements of the given width, using the
// given field implementation, able to recover up to capacity elements.  The
// decoding seed is chosen at random.
func New(bits uint32, impl Implementation, capacity int) (*Sketch, error) {
	if !BitsSupported(bits) {
		str := fmt.Sprintf("element width %d is not supported", bits)
		return nil, sketchError(ErrBadBits, str)
	}
	if capacity <= 0 {
		str := fmt.Sprintf("capacity %d is not positive", capacity)
		return nil, sketchError(ErrZeroCapacity, str)
	}
	f, err := field.New(bits, impl)
	if err != nil {
		var fErr field.Error
		if errors.As(err, &fErr) && fErr.ErrorCode == field.ErrBitsOutOfRange {
			return nil, sketchError(ErrBadBits, fErr.Description)
		}
		return nil, sketchError(ErrUnsupportedImplementation, err.Error())
	}

	return &Sketch{
		field:     f,
		seed:      rand.Uint64(),
		syndromes: make([]uint64, capacity),
	}, nil
}

// Bits returns the element width of the sketch.
func (s *Sketch) Bits() uint32 {
	return s.field.Bits()
}

// Implementation returns the field implementation of the sketch.
func (s *Sketch) Implementation() Implementation {
	return s.field.Implementation()
}

// Capacity returns the number of elements the sketch can recover.
func (s *Sketch) Capacity() int {
	return len(s.syndromes)
}

// Seed returns the seed used to randomize decoding.
func (s *Sketch) Seed() uint64 {
	return s.seed
}

// SetSeed sets the seed used to randomize decoding.  The seed has no effect
// on the contents of the sketch.  FixedSeed selects a fixed root finding
// basis.
func (s *Sketch) SetSeed(seed uint64) {
	s.seed = seed
}

// Add toggles the membership of element in the summarized set.  Only the low
// Bits() bits of element are used, and adding zero has no effect.
func (s *Sketch) Add(element uint64) {
	x := s.field.FromUint64(element)
	if x == 0 {
		return
	}
	addElement(s.field, s.syndromes, x)
}

// AddMany toggles the membership of every element in elements.
func (s *Sketch) AddMany(elements []uint64) {
	for _, e := range elements {
		s.Add(e)
	}
}

// addElement adds the odd power sums of the nonzero element x to syndromes.
func addElement(f field.Field, syndromes []uint64, x uint64) {
	sqr := f.Sqr(x)
	cur := x
	for i := range syndromes {
		syndromes[i] ^= cur
		cur = f.Mul(cur, sqr)
	}
}

// Clone returns an independent copy of the sketch.
func (s *Sketch) Clone() *Sketch {
	c := *s
	c.syndromes = make([]uint64, len(s.syndromes))
	copy(c.syndromes, s.syndromes)
	return &c
}

// Reset empties the sketch without changing its parameters.
func (s *Sketch) Reset() {
	for i := range s.syndromes {
		s.syndromes[i] = 0
	}
}

// IsEmpty returns whether the sketch summarizes the empty set.
func (s *Sketch) IsEmpty() bool {
	for _, v := range s.syndromes {
		if v != 0 {
			return false
		}
	}
	return true
}

// compatible returns an ErrIncompatible error when other cannot be merged
// into s.
func (s *Sketch) compatible(other *Sketch) error {
	if s.Bits() != other.Bits() {
		str := fmt.Sprintf("cannot merge %d-bit sketch with %d-bit "+
			"sketch", s.Bits(), other.Bits())
		return sketchError(ErrIncompatible, str)
	}
	if s.Implementation() != other.Implementation() {
		str := fmt.Sprintf("cannot merge %v sketch with %v sketch",
			s.Implementation(), other.Implementation())
		return sketchError(ErrIncompatible, str)
	}
	return nil
}

// Merge replaces the contents of s with a summary of the symmetric
// difference of the sets summarized by s and other.  When the capacities
// differ, s is reduced to the smaller capacity.  The resulting capacity is
// returned.
//
// Sketches with different widths or implementations cannot be merged and
// leave s unchanged.
func (s *Sketch) Merge(other *Sketch) (int, error) {
	if err := s.compatible(other); err != nil {
		return 0, err
	}

	if len(other.syndromes) < len(s.syndromes) {
		s.syndromes = s.syndromes[:len(other.syndromes):len(other.syndromes)]
	}
	for i := range s.syndromes {
		s.syndromes[i] ^= other.syndromes[i]
	}
	return len(s.syndromes), nil
}

// Combine returns a new sketch summarizing the symmetric difference of the
// sets summarized by a and b without modifying either.  The result uses the
// seed of a.
func Combine(a, b *Sketch) (*Sketch, error) {
	if err := a.compatible(b); err != nil {
		return nil, err
	}
	c := a.Clone()
	if _, err := c.Merge(b); err != nil {
		return nil, err
	}
	return c, nil
}

// String returns a human-readable summary of the sketch parameters.
func (s *Sketch) String() string {
	return fmt.Sprintf("minisketch(bits=%d, implementation=%v, capacity=%d)",
		s.Bits(), s.Implementation(), s.Capacity())
}
