// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package field

import (
	"math/bits"
	"sync"
)

// moduli caches the low terms of the reduction polynomial for every width.
// Index 0 is unused.
var (
	moduli     [MaxBits + 1]uint64
	moduliOnce [MaxBits + 1]sync.Once
)

// modulusFor returns m(x) such that x^n + m(x) is the reduction polynomial for
// GF(2^n).  The leading x^n term is implicit.
func modulusFor(n uint32) uint64 {
	moduliOnce[n].Do(func() {
		moduli[n] = findModulus(n)
		log.Debugf("Selected modulus x^%d + %#x for GF(2^%d)", n,
			moduli[n], n)
	})
	return moduli[n]
}

// findModulus searches for the lowest-weight irreducible polynomial of degree
// n.  Trinomials are tried first ordered by their middle exponent, then
// pentanomials in lexicographic order of their exponents.
func findModulus(n uint32) uint64 {
	if n == 1 {
		// x + 1 is the only irreducible polynomial of degree 1 with a
		// nonzero constant term.
		return 1
	}
	for k := uint32(1); k < n; k++ {
		low := uint64(1)<<k | 1
		if irreducible(n, low) {
			return low
		}
	}
	for a := uint32(3); a < n; a++ {
		for b := uint32(2); b < a; b++ {
			for c := uint32(1); c < b; c++ {
				low := uint64(1)<<a | uint64(1)<<b | uint64(1)<<c | 1
				if irreducible(n, low) {
					return low
				}
			}
		}
	}

	// Every degree from 2 through 64 has an irreducible trinomial or
	// pentanomial.
	panic("no irreducible polynomial found")
}

// irreducible reports whether x^n + low is irreducible over GF(2) using
// Ben-Or's test: for every i <= n/2, gcd(f, x^(2^i) - x) must be 1.
//
// The arithmetic is performed in GF(2)[x]/f using the shift-and-xor
// multiplier, which only requires that low has degree below n.
func irreducible(n uint32, low uint64) bool {
	p := params{bits: n, mod: low, mask: maskFor(n)}
	const x = 2
	xp := uint64(x)
	for i := uint32(1); i <= n/2; i++ {
		xp = mulShiftXor(xp, xp, &p)
		if gcdModulus(n, low, xp^x) != 1 {
			return false
		}
	}
	return true
}

// gcdModulus returns gcd(x^n + low, a) over GF(2) where a has degree below n.
func gcdModulus(n uint32, low, a uint64) uint64 {
	if a == 0 {
		// The modulus itself is not representable in 64 bits when n is
		// 64, but gcd(f, 0) = f is never 1 for n >= 1.
		return 0
	}

	// One reduction step of the implicit-leading-term modulus by a brings
	// both operands into 64 bits.
	r := reduceModulus(n, low, a)
	return gcd2(a, r)
}

// reduceModulus returns (x^n + low) mod a for a nonzero a of degree below n.
func reduceModulus(n uint32, low, a uint64) uint64 {
	if a == 1 {
		return 0
	}
	da := uint(63 - bits.LeadingZeros64(a))
	r := uint64(1)
	for i := uint32(0); i < n; i++ {
		r <<= 1
		if r>>da&1 != 0 {
			r ^= a
		}
	}
	return r ^ polyMod(low, a)
}

// polyMod returns a mod b for binary polynomials with b nonzero.
func polyMod(a, b uint64) uint64 {
	db := 63 - bits.LeadingZeros64(b)
	for a != 0 {
		da := 63 - bits.LeadingZeros64(a)
		if da < db {
			break
		}
		a ^= b << uint(da-db)
	}
	return a
}

// gcd2 returns the greatest common divisor of two binary polynomials.
func gcd2(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, polyMod(a, b)
	}
	return a
}

// maskFor returns a mask of the low n bits.
func maskFor(n uint32) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<n - 1
}

// mulShiftXor multiplies two elements of the field described by p using
// schoolbook shift-and-xor multiplication interleaved with reduction.
func mulShiftXor(a, b uint64, p *params) uint64 {
	top := uint64(1) << (p.bits - 1)
	var r uint64
	for b != 0 {
		if b&1 != 0 {
			r ^= a
		}
		b >>= 1
		carry := a & top
		a = (a << 1) & p.mask
		if carry != 0 {
			a ^= p.mod
		}
	}
	return r
}
