// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconcile

import (
	"context"
	"sync/atomic"

	"github.com/btcsuite/minisketch"
)

// Remote is the other party of a reconciliation.
type Remote interface {
	// Sketch returns the serialized sketch of the remote elements in the
	// given bucket at the given depth, built with the parameters both
	// parties agreed on.
	Sketch(ctx context.Context, depth uint32, bucket uint64) ([]byte, error)
}

// LocalRemote serves sketches of a Set held in the same process.
type LocalRemote struct {
	set      *Set
	impl     minisketch.Implementation
	capacity int
	requests atomic.Int64
}

// Ensure LocalRemote implements the Remote interface.
var _ Remote = (*LocalRemote)(nil)

// NewLocalRemote returns a Remote serving sketches of set with the given
// parameters.
func NewLocalRemote(set *Set, impl minisketch.Implementation, capacity int) *LocalRemote {
	return &LocalRemote{
		set:      set,
		impl:     impl,
		capacity: capacity,
	}
}

// Sketch returns the serialized sketch of the bucket.
func (r *LocalRemote) Sketch(ctx context.Context, depth uint32, bucket uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.requests.Add(1)
	sketch, err := r.set.Sketch(r.impl, r.capacity, depth, bucket)
	if err != nil {
		return nil, err
	}
	return sketch.Bytes(), nil
}

// Requests returns the number of sketches served.
func (r *LocalRemote) Requests() int {
	return int(r.requests.Load())
}
