// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package minisketch implements set reconciliation sketches based on BCH codes
(the PinSketch construction).

A sketch is a compact summary of a set of fixed-width nonzero integers.  Two
parties holding similar sets each build a sketch of their own set, exchange
them, and merge them.  The merged sketch summarizes the symmetric difference of
the two sets and can be decoded to recover it, provided the difference has at
most Capacity() elements.  The size of a sketch depends only on its element
width and capacity, not on the size of the sets.

	a, _ := minisketch.New(32, minisketch.Generic, 4)
	b, _ := minisketch.New(32, minisketch.Generic, 4)
	a.AddMany(aliceSet)
	b.AddMany(bobSet)

	// Ship a.Bytes() to Bob, who deserializes and merges it.
	if _, err := b.Merge(a); err != nil {
		...
	}
	diff, err := b.Decode()

# Elements

Elements are uint64 values truncated to the low Bits() bits.  Zero cannot be a
member: adding it has no effect.  Adding an element twice removes it again.

# Serialization

A serialized sketch is ceil(Bits()*Capacity()/8) bytes holding the capacity
coefficients in order, each packed least significant bit first.  The element
width, capacity and implementation are not part of the serialization and must
be agreed out of band.

# Decoding Failures

When a sketch summarizes more elements than it can recover, Decode returns an
error with ErrDecode with overwhelming probability but is not guaranteed to.
The probability of accepting such a sketch can be bounded by decoding with
DecodeMax and sizing the sketch with ComputeCapacity.  The reconcile package
shows how to recover differences larger than the capacity by bisection.

# Errors

Errors returned by this package are of type minisketch.Error and can be tested
against the ErrorCode values with errors.Is.
*/
package minisketch
