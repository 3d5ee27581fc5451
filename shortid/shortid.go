// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package shortid derives the 32-bit short transaction identifiers used to
// reconcile transaction announcements with sketches, as described in BIP 330.
//
// Both peers contribute a salt.  The salts are combined into a SipHash key so
// neither side controls which transactions collide, and every identifier is
// in the range 1 to 2^32-1 so it is a valid sketch element.
package shortid

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/minisketch"
	"github.com/dchest/siphash"
)

const (
	// Bits is the element width of sketches built from short IDs.
	Bits = 32

	// KeySize is the size of the SipHash key derived from the salts.
	KeySize = 16

	// saltTag is the tag of the tagged hash combining the salts.
	saltTag = "Tx Relay Salting"

	// idModulus maps SipHash output onto the nonzero 32-bit values.
	idModulus = 0xffffffff
)

// Hasher computes short IDs for one pair of peers.
type Hasher struct {
	k0, k1 uint64
}

// NewHasher returns a Hasher for the given pair of salts.  The order of the
// salts does not matter, so both peers derive the same key.
func NewHasher(localSalt, remoteSalt uint64) *Hasher {
	lo, hi := localSalt, remoteSalt
	if lo > hi {
		lo, hi = hi, lo
	}
	var msg [16]byte
	binary.LittleEndian.PutUint64(msg[0:8], lo)
	binary.LittleEndian.PutUint64(msg[8:16], hi)
	h := chainhash.TaggedHash([]byte(saltTag), msg[:])

	return &Hasher{
		k0: binary.LittleEndian.Uint64(h[0:8]),
		k1: binary.LittleEndian.Uint64(h[8:16]),
	}
}

// Key returns the SipHash key derived from the salts.
func (h *Hasher) Key() [KeySize]byte {
	var key [KeySize]byte
	binary.LittleEndian.PutUint64(key[0:8], h.k0)
	binary.LittleEndian.PutUint64(key[8:16], h.k1)
	return key
}

// ShortID returns the short ID of the transaction with the given witness
// hash.  The result is never zero.
func (h *Hasher) ShortID(wtxid *chainhash.Hash) uint32 {
	return uint32(1 + siphash.Hash(h.k0, h.k1, wtxid[:])%idModulus)
}

// Set tracks the transactions announced to a peer by their short IDs so
// decoded sketch elements can be mapped back to transactions.
type Set struct {
	hasher *Hasher
	txns   map[uint32]chainhash.Hash

	// collisions counts transactions that were not added because another
	// transaction with the same short ID is already present.
	collisions int
}

// NewSet returns an empty Set using the given hasher.
func NewSet(hasher *Hasher) *Set {
	return &Set{
		hasher: hasher,
		txns:   make(map[uint32]chainhash.Hash),
	}
}

// Add adds the transaction to the set and returns its short ID.  The second
// result is false when a different transaction already uses the ID, in which
// case the set is unchanged.
func (s *Set) Add(wtxid *chainhash.Hash) (uint32, bool) {
	id := s.hasher.ShortID(wtxid)
	if existing, ok := s.txns[id]; ok {
		if existing != *wtxid {
			s.collisions++
			return id, false
		}
		return id, true
	}
	s.txns[id] = *wtxid
	return id, true
}

// Remove removes the transaction from the set.
func (s *Set) Remove(wtxid *chainhash.Hash) {
	id := s.hasher.ShortID(wtxid)
	if existing, ok := s.txns[id]; ok && existing == *wtxid {
		delete(s.txns, id)
	}
}

// Len returns the number of transactions in the set.
func (s *Set) Len() int {
	return len(s.txns)
}

// Collisions returns the number of transactions rejected by Add because of a
// short ID collision.
func (s *Set) Collisions() int {
	return s.collisions
}

// Lookup returns the transaction with the given short ID.
func (s *Set) Lookup(id uint32) (chainhash.Hash, bool) {
	h, ok := s.txns[id]
	return h, ok
}

// IDs returns the short IDs of every transaction in the set in unspecified
// order, widened for use as sketch elements.
func (s *Set) IDs() []uint64 {
	ids := make([]uint64, 0, len(s.txns))
	for id := range s.txns {
		ids = append(ids, uint64(id))
	}
	return ids
}

// Sketch returns a sketch of the given capacity over the short IDs of the
// set.
func (s *Set) Sketch(impl minisketch.Implementation, capacity int) (*minisketch.Sketch, error) {
	sketch, err := minisketch.New(Bits, impl, capacity)
	if err != nil {
		return nil, err
	}
	for id := range s.txns {
		sketch.Add(uint64(id))
	}
	return sketch, nil
}

// Resolve splits decoded sketch elements into the transactions of the set
// they identify and the short IDs the set does not know, which must be
// requested from the peer.
func (s *Set) Resolve(elements []uint64) ([]chainhash.Hash, []uint32) {
	var known []chainhash.Hash
	var unknown []uint32
	for _, e := range elements {
		id := uint32(e)
		if h, ok := s.txns[id]; ok {
			known = append(known, h)
			continue
		}
		unknown = append(unknown, id)
	}
	return known, unknown
}
