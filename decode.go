// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package minisketch

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/minisketch/field"
	"golang.org/x/crypto/chacha20"
)

// decodeError returns an ErrDecode error with the given description and logs
// the failure.
func decodeError(s *Sketch, desc string) error {
	log.Debugf("Failed to decode %v: %s", s, desc)
	return sketchError(ErrDecode, desc)
}

// Decode returns the elements of the set summarized by the sketch.  Elements
// are never returned partially, and the order of the returned elements is
// unspecified.  The sketch is not modified.
//
// A sketch that summarizes more than Capacity() elements is not always
// detected.  Decode uses every coefficient, so an overflowed sketch decodes to
// a wrong set with probability about 1/c! for capacity c: always at capacity
// one, about half the time at capacity two.  Callers that cannot tolerate a
// wrong result should use DecodeMax with a limit below the capacity, chosen
// with ComputeMaxElements or ComputeCapacity.
func (s *Sketch) Decode() ([]uint64, error) {
	return s.DecodeMax(len(s.syndromes))
}

// DecodeMax is like Decode but fails when the sketch summarizes more than
// maxElements elements.  Values above the capacity are treated as the
// capacity.
//
// Decoding fewer elements than the capacity leaves the remaining coefficients
// as a check on the result.  Each spare coefficient lowers the probability of
// accepting a sketch that overflowed by a factor of about 2^Bits().  See
// ComputeCapacity.
func (s *Sketch) DecodeMax(maxElements int) ([]uint64, error) {
	f := s.field
	c := len(s.syndromes)
	if maxElements > c {
		maxElements = c
	}
	if maxElements < 0 {
		maxElements = 0
	}

	// Recover the full sequence of power sums s_1..s_2c.  sums[j] holds
	// s_(j+1), the odd ones are stored directly and s_2j = s_j^2.
	sums := make([]uint64, 2*c)
	for i, v := range s.syndromes {
		sums[2*i] = v
	}
	for i := 0; i < c; i++ {
		sums[2*i+1] = f.Sqr(sums[i])
	}

	conn := berlekampMassey(f, sums, maxElements)
	if conn == nil {
		str := fmt.Sprintf("more than %d differences", maxElements)
		return nil, decodeError(s, str)
	}
	l := conn.degree()
	if l <= 0 {
		return []uint64{}, nil
	}
	if conn[l] == 0 {
		return nil, decodeError(s, "connection polynomial has a root "+
			"at zero")
	}

	// The connection polynomial has the inverses of the members as roots,
	// so its reversal has the members themselves as roots.
	p := make(poly, l+1)
	for i, v := range conn {
		p[l-i] = v
	}
	p = p.monic(f)

	roots, ok := findRoots(f, p, basisSeed(f, s.seed))
	if !ok || len(roots) != l {
		str := fmt.Sprintf("locator polynomial of degree %d does not "+
			"split into distinct roots", l)
		return nil, decodeError(s, str)
	}

	// The roots must reproduce the sketch exactly.  Anything else means
	// the sketch was not produced by a set of at most maxElements elements.
	check := make([]uint64, c)
	for _, r := range roots {
		addElement(f, check, r)
	}
	for i := range check {
		if check[i] != s.syndromes[i] {
			return nil, decodeError(s, "recovered elements do not "+
				"reproduce the sketch")
		}
	}

	log.Tracef("Decoded %d elements from %v", len(roots), s)
	return roots, nil
}

// basisSeed derives the nonzero element used to start the root finding basis
// from the sketch seed.  FixedSeed selects one.
func basisSeed(f field.Field, seed uint64) uint64 {
	if seed == FixedSeed {
		return 1
	}

	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	stream, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		// Only possible with invalid key or nonce sizes.
		panic(err)
	}

	var buf [8]byte
	for {
		buf = [8]byte{}
		stream.XORKeyStream(buf[:], buf[:])
		if v := f.FromUint64(binary.LittleEndian.Uint64(buf[:])); v != 0 {
			return v
		}
	}
}

// findRoots returns the roots of the monic polynomial p, which must have a
// nonzero constant term.  It fails unless p splits into distinct linear
// factors over the field.
func findRoots(f field.Field, p poly, beta uint64) ([]uint64, bool) {
	if p.degree() == 1 {
		return []uint64{p[0]}, true
	}

	// p divides x^(2^bits) - x exactly when it is a product of distinct
	// linear factors.
	xm := polyMod(f, poly{0, 1}, p, nil)
	u := append(poly(nil), xm...)
	for i := uint32(0); i < f.Bits(); i++ {
		u = polySqrMod(f, u, p)
	}
	if !u.equal(xm) {
		return nil, false
	}

	return splitRoots(f, p, beta, make([]uint64, 0, p.degree()))
}

// splitRoots appends the roots of the monic, fully splitting polynomial p to
// roots.
//
// For each candidate b the trace map Tr(b*x) takes the value 0 on some roots
// of p and 1 on the others, so gcd(p, Tr(b*x)) separates them.  The
// candidates b, b*x, b*x^2, ... form a basis of the field, and any two
// distinct roots disagree on the trace for at least one basis element, so
// Bits() candidates always suffice.
func splitRoots(f field.Field, p poly, beta uint64, roots []uint64) ([]uint64, bool) {
	if p.degree() == 1 {
		return append(roots, p[0]), true
	}

	for attempt := uint32(0); attempt < f.Bits(); attempt++ {
		g := polyGCD(f, p, traceMap(f, p, beta))
		if f.Bits() > 1 {
			beta = f.Mul(beta, 2)
		}
		if g.degree() <= 0 || g.degree() >= p.degree() {
			continue
		}

		q := polyDiv(f, p, g)
		var ok bool
		roots, ok = splitRoots(f, g, beta, roots)
		if !ok {
			return roots, false
		}
		return splitRoots(f, q, beta, roots)
	}
	return roots, false
}

// traceMap returns the sum of (b*x)^(2^i) for i < Bits(), reduced modulo p.
func traceMap(f field.Field, p poly, b uint64) poly {
	u := polyMod(f, poly{0, b}, p, nil)
	t := append(poly(nil), u...)
	for i := uint32(1); i < f.Bits(); i++ {
		u = polySqrMod(f, u, p)
		t = polyAddInto(t, u)
	}
	return t
}
