// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package field

// clmulField multiplies with a full 64x64 carry-less product followed by a
// folding reduction.
type clmulField struct {
	params
}

// Implementation returns CLMul.
func (f *clmulField) Implementation() Implementation {
	return CLMul
}

// Mul returns the product a*b.
func (f *clmulField) Mul(a, b uint64) uint64 {
	hi, lo := clmul64(a, b)
	return f.reduce(hi, lo)
}

// Sqr returns a*a.
func (f *clmulField) Sqr(a uint64) uint64 {
	hi, lo := clmul64(a, a)
	return f.reduce(hi, lo)
}

// Inv returns the inverse of a, or zero when a is zero.
func (f *clmulField) Inv(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return invFermat(f, a)
}

// reduce reduces a product of degree at most 2n-2 modulo x^n + m(x).  Each
// round replaces the part q*x^n above the field width with q*m(x), which
// strictly lowers the degree since m(x) has degree below n.
func (f *clmulField) reduce(hi, lo uint64) uint64 {
	n := f.bits
	for hi != 0 || lo&^f.mask != 0 {
		q := hi<<(64-n) | lo>>n
		r := lo & f.mask
		qh, ql := clmul64(q, f.mod)
		hi, lo = qh, ql^r
	}
	return lo
}

// clmulSoft returns the 128-bit carry-less product of a and b.  It is the
// reference for the assembly version and the fallback on other platforms.
func clmulSoft(a, b uint64) (hi, lo uint64) {
	for i := uint(0); i < 64; i++ {
		if b>>i&1 == 0 {
			continue
		}
		lo ^= a << i
		if i != 0 {
			hi ^= a >> (64 - i)
		}
	}
	return hi, lo
}
