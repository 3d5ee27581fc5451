// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconcile

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/btcsuite/minisketch"
	"github.com/dchest/siphash"
)

// KeySize is the size of the key partitioning elements into buckets.
const KeySize = 16

// Set is a set of nonzero elements of a fixed width that can produce sketches
// of itself and of its partition buckets.
type Set struct {
	bits     uint32
	mask     uint64
	k0, k1   uint64
	elements map[uint64]struct{}
}

// NewSet returns an empty set of elements of the given width partitioned
// with the given key.
func NewSet(bits uint32, key [KeySize]byte) (*Set, error) {
	if !minisketch.BitsSupported(bits) {
		str := fmt.Sprintf("element width %d is not supported", bits)
		return nil, reconcileError(ErrInvalidConfig, str)
	}
	mask := ^uint64(0)
	if bits < 64 {
		mask = 1<<bits - 1
	}
	return &Set{
		bits:     bits,
		mask:     mask,
		k0:       binary.LittleEndian.Uint64(key[0:8]),
		k1:       binary.LittleEndian.Uint64(key[8:16]),
		elements: make(map[uint64]struct{}),
	}, nil
}

// Bits returns the element width of the set.
func (s *Set) Bits() uint32 {
	return s.bits
}

// Add adds the element, truncated to the element width, to the set.
func (s *Set) Add(element uint64) error {
	e := element & s.mask
	if e == 0 {
		str := fmt.Sprintf("element %#x is zero in %d bits", element,
			s.bits)
		return reconcileError(ErrZeroElement, str)
	}
	s.elements[e] = struct{}{}
	return nil
}

// Remove removes the element from the set.
func (s *Set) Remove(element uint64) {
	delete(s.elements, element&s.mask)
}

// Has returns whether the element is in the set.
func (s *Set) Has(element uint64) bool {
	_, ok := s.elements[element&s.mask]
	return ok
}

// Len returns the number of elements in the set.
func (s *Set) Len() int {
	return len(s.elements)
}

// Elements returns the elements of the set in ascending order.
func (s *Set) Elements() []uint64 {
	out := make([]uint64, 0, len(s.elements))
	for e := range s.elements {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Bucket returns the bucket the element belongs to at the given depth.  Every
// element is in bucket 0 at depth 0.
func (s *Set) Bucket(element uint64, depth uint32) uint64 {
	if depth == 0 {
		return 0
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], element&s.mask)
	return siphash.Hash(s.k0, s.k1, buf[:]) >> (64 - depth)
}

// Sketch returns a sketch of the elements in the given bucket at the given
// depth.
func (s *Set) Sketch(impl minisketch.Implementation, capacity int,
	depth uint32, bucket uint64) (*minisketch.Sketch, error) {

	sketch, err := minisketch.New(s.bits, impl, capacity)
	if err != nil {
		return nil, err
	}
	for e := range s.elements {
		if s.Bucket(e, depth) == bucket {
			sketch.Add(e)
		}
	}
	return sketch, nil
}
