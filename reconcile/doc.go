// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package reconcile recovers the symmetric difference between a local set and a
remote set with minisketch sketches, including differences larger than the
sketch capacity.

The reconciler first decodes the merge of a sketch of the whole local set with
a sketch of the whole remote set.  When that fails because the sets differ in
more elements than the capacity, the element space is bisected: every element
belongs to a bucket at each depth d given by the top d bits of a keyed SipHash
of the element, and bucket b at depth d splits into buckets 2b and 2b+1 at
depth d+1.  The reconciler requests the remote sketch of the left half and
derives the right half by linearity, since the sketch of a bucket is the merge
of the sketches of its two halves.  This continues until every bucket decodes
or the maximum depth is reached.

A bucket is only decoded up to the number of differences
minisketch.ComputeMaxElements allows for the capacity and Config.FPBits.  The
remaining syndromes make a wrong decode of an overflowed bucket unlikely, and an
overflowed bucket is bisected instead of reported.

Both parties must agree on the element width, the implementation, the capacity
and the partition key.  The Remote interface is the only contact with the other
party, so any transport can be used.
*/
package reconcile
