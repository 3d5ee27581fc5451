// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package minisketch

import (
	"math"
)

// falsePositiveBits returns -log2 of the probability that a uniformly random
// sketch of the given width and capacity is accepted by DecodeMax with
// maxElements.  A random sketch is accepted when it equals the sketch of some
// set of at most maxElements nonzero elements, and there are sum(C(2^bits-1,
// k)) such sets among the 2^(bits*capacity) possible sketches.
func falsePositiveBits(bits uint32, capacity, maxElements int) float64 {
	q := math.Exp2(float64(bits))

	// logSets accumulates log2 of the number of sets, starting with the
	// empty set.  logC is log2 C(q-1, k), updated incrementally.
	var logSets, logC float64
	for k := 1; k <= maxElements && float64(k) < q; k++ {
		logC += math.Log2(q-float64(k)) - math.Log2(float64(k))
		hi, lo := math.Max(logSets, logC), math.Min(logSets, logC)
		logSets = hi + math.Log2(1+math.Exp2(lo-hi))
	}
	return float64(bits)*float64(capacity) - logSets
}

// ComputeCapacity returns the capacity a sketch of the given width needs so
// DecodeMax(maxElements) recovers up to maxElements differences while
// accepting a sketch that summarizes more with probability at most
// 2^-fpBits.  Zero is returned for unsupported widths and when maxElements is
// not positive.
func ComputeCapacity(bits uint32, maxElements int, fpBits uint32) int {
	if !BitsSupported(bits) || maxElements <= 0 {
		return 0
	}

	// Every extra coefficient adds bits to the false positive margin.
	want := float64(fpBits)
	base := falsePositiveBits(bits, maxElements, maxElements)
	capacity := maxElements
	if base < want {
		capacity += int(math.Ceil((want - base) / float64(bits)))
	}
	for falsePositiveBits(bits, capacity, maxElements) < want {
		capacity++
	}
	for capacity > maxElements &&
		falsePositiveBits(bits, capacity-1, maxElements) >= want {

		capacity--
	}
	return capacity
}

// ComputeMaxElements is the inverse of ComputeCapacity.  It returns the
// largest number of differences a sketch of the given width and capacity can
// recover with DecodeMax while keeping the false positive probability at most
// 2^-fpBits, or zero if there is none.
func ComputeMaxElements(bits uint32, capacity int, fpBits uint32) int {
	if !BitsSupported(bits) || capacity <= 0 {
		return 0
	}

	want := float64(fpBits)
	for m := capacity; m > 0; m-- {
		if falsePositiveBits(bits, capacity, m) >= want {
			return m
		}
	}
	return 0
}
