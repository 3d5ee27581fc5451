// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/btcsuite/minisketch"
)

const (
	// DefaultMaxDepth is the bisection depth used when Config.MaxDepth is
	// zero.
	DefaultMaxDepth = 8

	// MaxDepthLimit is the largest supported bisection depth.
	MaxDepthLimit = 32

	// DefaultFPBits is the false positive margin used when Config.FPBits
	// is zero.
	DefaultFPBits = 16
)

// Config holds the parameters both parties of a reconciliation agree on.
type Config struct {
	// Implementation is the field implementation of the sketches.
	Implementation minisketch.Implementation

	// Capacity is the capacity of every sketch exchanged.
	Capacity int

	// FPBits bounds the probability of accepting a wrong decode of a
	// bucket holding more differences than it can recover to 2^-FPBits.
	// Each bucket is decoded with the number of elements
	// minisketch.ComputeMaxElements allows for the capacity and this
	// margin, so fewer than Capacity differences are recovered per
	// sketch.
	FPBits uint32

	// MaxDepth bounds the number of bisection rounds.  Up to 2^MaxDepth
	// buckets are decoded, so less than Capacity * 2^MaxDepth differences
	// can be recovered.
	MaxDepth uint32
}

// Diff is the symmetric difference between a local and a remote set.
type Diff struct {
	// Missing holds the elements the remote set has and the local set
	// lacks.
	Missing []uint64

	// Extra holds the elements the local set has and the remote set
	// lacks.
	Extra []uint64

	// Requests is the number of sketches requested from the remote.
	Requests int

	// Depth is the deepest bisection level reached.
	Depth uint32
}

// Reconciler computes set differences against remotes.
type Reconciler struct {
	cfg Config
}

// New returns a Reconciler with the given configuration.
func New(cfg Config) (*Reconciler, error) {
	if cfg.Capacity <= 0 {
		str := fmt.Sprintf("capacity %d is not positive", cfg.Capacity)
		return nil, reconcileError(ErrInvalidConfig, str)
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.FPBits == 0 {
		cfg.FPBits = DefaultFPBits
	}
	if cfg.MaxDepth > MaxDepthLimit {
		str := fmt.Sprintf("max depth %d exceeds the limit of %d",
			cfg.MaxDepth, MaxDepthLimit)
		return nil, reconcileError(ErrInvalidConfig, str)
	}
	return &Reconciler{cfg: cfg}, nil
}

// Reconcile returns the difference between the local set and the remote
// set.  The context is checked before every request to the remote.
func (r *Reconciler) Reconcile(ctx context.Context, local *Set, remote Remote) (*Diff, error) {
	if !minisketch.ImplementationSupported(local.Bits(), r.cfg.Implementation) {
		str := fmt.Sprintf("implementation %v is not supported for "+
			"%d-bit elements", r.cfg.Implementation, local.Bits())
		return nil, reconcileError(ErrInvalidConfig, str)
	}
	maxElements := minisketch.ComputeMaxElements(local.Bits(),
		r.cfg.Capacity, r.cfg.FPBits)
	if maxElements == 0 {
		str := fmt.Sprintf("capacity %d cannot recover any %d-bit "+
			"element with a %d-bit false positive margin",
			r.cfg.Capacity, local.Bits(), r.cfg.FPBits)
		return nil, reconcileError(ErrInvalidConfig, str)
	}

	diff := &Diff{}
	root, err := r.bucketDiff(ctx, local, remote, diff, 0, 0)
	if err != nil {
		return nil, err
	}
	err = r.resolve(ctx, local, remote, diff, root, maxElements, 0, 0)
	if err != nil {
		return nil, err
	}

	sort.Slice(diff.Missing, func(i, j int) bool {
		return diff.Missing[i] < diff.Missing[j]
	})
	sort.Slice(diff.Extra, func(i, j int) bool {
		return diff.Extra[i] < diff.Extra[j]
	})
	log.Debugf("Reconciled %d missing and %d extra elements with %d "+
		"requests at depth %d", len(diff.Missing), len(diff.Extra),
		diff.Requests, diff.Depth)
	return diff, nil
}

// bucketDiff returns the merge of the local and remote sketches of a bucket.
func (r *Reconciler) bucketDiff(ctx context.Context, local *Set, remote Remote,
	diff *Diff, depth uint32, bucket uint64) (*minisketch.Sketch, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf, err := remote.Sketch(ctx, depth, bucket)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch sketch for bucket %d at "+
			"depth %d: %w", bucket, depth, err)
	}
	diff.Requests++

	theirs, err := minisketch.New(local.Bits(), r.cfg.Implementation,
		r.cfg.Capacity)
	if err != nil {
		return nil, err
	}
	if err := theirs.Deserialize(buf); err != nil {
		str := fmt.Sprintf("remote sketch for bucket %d at depth %d: %v",
			bucket, depth, err)
		return nil, reconcileError(ErrRemote, str)
	}

	ours, err := local.Sketch(r.cfg.Implementation, r.cfg.Capacity, depth,
		bucket)
	if err != nil {
		return nil, err
	}
	if _, err := ours.Merge(theirs); err != nil {
		return nil, err
	}
	return ours, nil
}

// resolve decodes the difference sketch of a bucket, bisecting it when it
// holds more than maxElements differences.  The syndromes beyond maxElements
// are left to reject sketches that overflowed.
func (r *Reconciler) resolve(ctx context.Context, local *Set, remote Remote,
	diff *Diff, sketch *minisketch.Sketch, maxElements int, depth uint32,
	bucket uint64) error {

	if depth > diff.Depth {
		diff.Depth = depth
	}

	elements, err := sketch.DecodeMax(maxElements)
	if err == nil && !r.inBucket(local, elements, depth, bucket) {
		err = fmt.Errorf("decoded elements outside of bucket %d: %w",
			bucket, minisketch.ErrDecode)
	}
	switch {
	case err == nil:
		for _, e := range elements {
			if local.Has(e) {
				diff.Extra = append(diff.Extra, e)
			} else {
				diff.Missing = append(diff.Missing, e)
			}
		}
		return nil

	case !errors.Is(err, minisketch.ErrDecode):
		return err
	}

	if depth >= r.cfg.MaxDepth {
		str := fmt.Sprintf("bucket %d still holds more than %d "+
			"differences at max depth %d", bucket, maxElements, depth)
		return reconcileError(ErrMaxDepth, str)
	}

	log.Tracef("Bisecting bucket %d at depth %d", bucket, depth)
	left, right := bucket<<1, bucket<<1|1
	leftDiff, err := r.bucketDiff(ctx, local, remote, diff, depth+1, left)
	if err != nil {
		return err
	}
	rightDiff, err := minisketch.Combine(sketch, leftDiff)
	if err != nil {
		return err
	}

	err = r.resolve(ctx, local, remote, diff, leftDiff, maxElements,
		depth+1, left)
	if err != nil {
		return err
	}
	return r.resolve(ctx, local, remote, diff, rightDiff, maxElements,
		depth+1, right)
}

// inBucket returns whether every element belongs to the bucket.  A decoded
// element outside the bucket means the sketch overflowed and decoded to a
// wrong set.  Below the root this catches most of the wrong decodes the
// spare syndromes let through.
func (r *Reconciler) inBucket(local *Set, elements []uint64, depth uint32,
	bucket uint64) bool {

	for _, e := range elements {
		if local.Bucket(e, depth) != bucket {
			return false
		}
	}
	return true
}
