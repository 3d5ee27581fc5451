// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconcile

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/btcsuite/minisketch"
	"github.com/stretchr/testify/require"
)

var testKey = [KeySize]byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
}

// element returns a deterministic, well spread nonzero 32-bit element.
func element(i int) uint64 {
	return (uint64(i) * 0x9e3779b97f4a7c15) >> 32
}

// buildSets returns a local and a remote set sharing shared elements, with
// extra elements only the local set has and missing elements only the remote
// set has.
func buildSets(t *testing.T, shared, extra, missing int) (*Set, *Set, []uint64, []uint64) {
	t.Helper()

	local, err := NewSet(32, testKey)
	require.NoError(t, err)
	remote, err := NewSet(32, testKey)
	require.NoError(t, err)

	i := 1
	for ; i <= shared; i++ {
		require.NoError(t, local.Add(element(i)))
		require.NoError(t, remote.Add(element(i)))
	}
	var wantExtra, wantMissing []uint64
	for n := 0; n < extra; n, i = n+1, i+1 {
		require.NoError(t, local.Add(element(i)))
		wantExtra = append(wantExtra, element(i))
	}
	for n := 0; n < missing; n, i = n+1, i+1 {
		require.NoError(t, remote.Add(element(i)))
		wantMissing = append(wantMissing, element(i))
	}
	return local, remote, wantExtra, wantMissing
}

// TestReconcileWithinCapacity ensures small differences are recovered with a
// single request.
func TestReconcileWithinCapacity(t *testing.T) {
	t.Parallel()

	local, remote, extra, missing := buildSets(t, 500, 3, 4)
	r, err := New(Config{Implementation: minisketch.Generic, Capacity: 8})
	require.NoError(t, err)

	peer := NewLocalRemote(remote, minisketch.Generic, 8)
	diff, err := r.Reconcile(context.Background(), local, peer)
	require.NoError(t, err)
	require.ElementsMatch(t, extra, diff.Extra)
	require.ElementsMatch(t, missing, diff.Missing)
	require.Equal(t, 1, diff.Requests)
	require.Equal(t, 1, peer.Requests())
	require.Zero(t, diff.Depth)
}

// TestReconcileBisect ensures differences larger than the capacity are
// recovered by bisection.
func TestReconcileBisect(t *testing.T) {
	t.Parallel()

	local, remote, extra, missing := buildSets(t, 1000, 22, 18)
	r, err := New(Config{
		Implementation: minisketch.Generic,
		Capacity:       8,
		MaxDepth:       6,
	})
	require.NoError(t, err)

	peer := NewLocalRemote(remote, minisketch.Generic, 8)
	diff, err := r.Reconcile(context.Background(), local, peer)
	require.NoError(t, err)
	require.ElementsMatch(t, extra, diff.Extra)
	require.ElementsMatch(t, missing, diff.Missing)
	require.Greater(t, diff.Requests, 1)
	require.Greater(t, diff.Depth, uint32(0))
	require.Equal(t, diff.Requests, peer.Requests())
}

// TestReconcileOverflowNeverWrong ensures overflowed sketches at a small
// capacity are bisected instead of decoded to a wrong difference.  Without
// spare syndromes about one in 24 overflowed capacity 4 sketches decodes.
func TestReconcileOverflowNeverWrong(t *testing.T) {
	t.Parallel()

	const trials = 500
	rng := rand.New(rand.NewPCG(0x5eed, 0xcafe))
	r, err := New(Config{Implementation: minisketch.Generic, Capacity: 4})
	require.NoError(t, err)

	var ok int
	for trial := 0; trial < trials; trial++ {
		var key [KeySize]byte
		for i := range key {
			key[i] = byte(rng.Uint32())
		}
		local, err := NewSet(32, key)
		require.NoError(t, err)
		remote, err := NewSet(32, key)
		require.NoError(t, err)

		seen := make(map[uint64]struct{})
		randElement := func() uint64 {
			for {
				e := uint64(rng.Uint32())
				if _, dup := seen[e]; e != 0 && !dup {
					seen[e] = struct{}{}
					return e
				}
			}
		}
		for i := 0; i < 20; i++ {
			e := randElement()
			require.NoError(t, local.Add(e))
			require.NoError(t, remote.Add(e))
		}
		var missing []uint64
		n := 5 + rng.IntN(6)
		for i := 0; i < n; i++ {
			e := randElement()
			require.NoError(t, remote.Add(e))
			missing = append(missing, e)
		}

		peer := NewLocalRemote(remote, minisketch.Generic, 4)
		diff, err := r.Reconcile(context.Background(), local, peer)
		if err != nil {
			// Failing is allowed, guessing is not.
			require.ErrorIs(t, err, ErrMaxDepth, "trial %d", trial)
			continue
		}
		require.Empty(t, diff.Extra, "trial %d", trial)
		require.ElementsMatch(t, missing, diff.Missing, "trial %d", trial)
		ok++
	}
	require.Greater(t, ok, trials*9/10)
}

// TestReconcileMaxDepth ensures reconciliation fails instead of guessing
// when the difference cannot be recovered within the maximum depth.
func TestReconcileMaxDepth(t *testing.T) {
	t.Parallel()

	local, remote, _, _ := buildSets(t, 100, 50, 50)
	r, err := New(Config{
		Implementation: minisketch.Generic,
		Capacity:       16,
		MaxDepth:       1,
	})
	require.NoError(t, err)

	peer := NewLocalRemote(remote, minisketch.Generic, 16)
	_, err = r.Reconcile(context.Background(), local, peer)
	require.ErrorIs(t, err, ErrMaxDepth)
}

// TestReconcileCanceled ensures a canceled context stops reconciliation.
func TestReconcileCanceled(t *testing.T) {
	t.Parallel()

	local, remote, _, _ := buildSets(t, 10, 1, 1)
	r, err := New(Config{Implementation: minisketch.Generic, Capacity: 4})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	peer := NewLocalRemote(remote, minisketch.Generic, 4)
	_, err = r.Reconcile(ctx, local, peer)
	require.True(t, errors.Is(err, context.Canceled))
	require.Zero(t, peer.Requests())
}

// TestReconcileBadRemote ensures a remote serving truncated sketches is
// reported.
func TestReconcileBadRemote(t *testing.T) {
	t.Parallel()

	local, remote, _, _ := buildSets(t, 10, 1, 1)
	r, err := New(Config{Implementation: minisketch.Generic, Capacity: 8})
	require.NoError(t, err)

	// The remote uses a smaller capacity than agreed.
	peer := NewLocalRemote(remote, minisketch.Generic, 2)
	_, err = r.Reconcile(context.Background(), local, peer)
	require.ErrorIs(t, err, ErrRemote)
}

// TestConfig ensures invalid configurations are rejected.
func TestConfig(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Capacity: 0})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{Capacity: 4, MaxDepth: MaxDepthLimit + 1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	r, err := New(Config{Capacity: 4})
	require.NoError(t, err)
	require.Equal(t, uint32(DefaultMaxDepth), r.cfg.MaxDepth)
	require.Equal(t, uint32(DefaultFPBits), r.cfg.FPBits)

	// A capacity that leaves no room for the margin cannot reconcile.
	r, err = New(Config{Capacity: 1, FPBits: 16})
	require.NoError(t, err)
	local, remote, _, _ := buildSets(t, 1, 0, 0)
	_, err = r.Reconcile(context.Background(), local,
		NewLocalRemote(remote, minisketch.Generic, 1))
	require.ErrorIs(t, err, ErrInvalidConfig)

	// The implementation is checked against the set width.
	r, err = New(Config{Implementation: minisketch.Table, Capacity: 4})
	require.NoError(t, err)
	_, err = r.Reconcile(context.Background(), local,
		NewLocalRemote(remote, minisketch.Table, 4))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

// TestSet ensures set membership and bucketing behave as documented.
func TestSet(t *testing.T) {
	t.Parallel()

	_, err := NewSet(0, testKey)
	require.ErrorIs(t, err, ErrInvalidConfig)

	s, err := NewSet(16, testKey)
	require.NoError(t, err)
	require.ErrorIs(t, s.Add(0), ErrZeroElement)
	require.ErrorIs(t, s.Add(1<<16), ErrZeroElement)

	require.NoError(t, s.Add(0x10005))
	require.True(t, s.Has(5))
	require.Equal(t, []uint64{5}, s.Elements())
	s.Remove(5)
	require.Zero(t, s.Len())

	// Buckets at depth d+1 refine buckets at depth d.
	for i := 1; i < 100; i++ {
		e := element(i) & 0xffff
		if e == 0 {
			continue
		}
		require.Zero(t, s.Bucket(e, 0))
		for d := uint32(1); d < 20; d++ {
			require.Equal(t, s.Bucket(e, d-1), s.Bucket(e, d)>>1)
		}
	}

	// The bucket sketches at one depth merge into the parent sketch.
	for i := 1; i < 50; i++ {
		require.NoError(t, s.Add(uint64(i)))
	}
	parent, err := s.Sketch(minisketch.Generic, 6, 2, 1)
	require.NoError(t, err)
	left, err := s.Sketch(minisketch.Generic, 6, 3, 2)
	require.NoError(t, err)
	right, err := s.Sketch(minisketch.Generic, 6, 3, 3)
	require.NoError(t, err)
	_, err = left.Merge(right)
	require.NoError(t, err)
	require.Equal(t, parent.Bytes(), left.Bytes())
}
