// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package minisketch

import (
	"github.com/btcsuite/minisketch/field"
)

// poly is a polynomial over GF(2^bits) with the coefficient of x^i at index
// i.  Normalized polynomials have a nonzero last coefficient and the zero
// polynomial is empty.
type poly []uint64

// trim removes high zero coefficients.
func (p poly) trim() poly {
	for len(p) > 0 && p[len(p)-1] == 0 {
		p = p[:len(p)-1]
	}
	return p
}

// degree returns the degree of a normalized polynomial, or -1 for zero.
func (p poly) degree() int {
	return len(p) - 1
}

// equal reports whether two normalized polynomials are identical.
func (p poly) equal(q poly) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// monic scales a nonzero normalized polynomial in place so its leading
// coefficient is one.
func (p poly) monic(f field.Field) poly {
	lead := p[len(p)-1]
	if lead == 1 {
		return p
	}
	inv := f.Inv(lead)
	for i := range p {
		p[i] = f.Mul(p[i], inv)
	}
	return p
}

// polyMod reduces a modulo the monic normalized polynomial m in place and
// returns the normalized remainder.  The quotient is discarded unless quot is
// non-nil, in which case it must have room for deg(a)-deg(m)+1 coefficients.
func polyMod(f field.Field, a, m poly, quot poly) poly {
	a = a.trim()
	dm := m.degree()
	for len(a)-1 >= dm {
		c := a[len(a)-1]
		shift := len(a) - 1 - dm
		if quot != nil {
			quot[shift] = c
		}
		for i, mc := range m {
			a[shift+i] ^= f.Mul(c, mc)
		}
		a = a.trim()
	}
	return a
}

// polyDiv returns a divided by the monic polynomial m.  a must be a multiple
// of m.
func polyDiv(f field.Field, a, m poly) poly {
	a = append(poly(nil), a...)
	quot := make(poly, a.degree()-m.degree()+1)
	polyMod(f, a, m, quot)
	return quot.trim()
}

// polySqrMod returns a^2 mod m.  Squaring is linear in characteristic two, so
// only the squares of the coefficients at doubled positions remain.
func polySqrMod(f field.Field, a, m poly) poly {
	if len(a) == 0 {
		return a
	}
	r := make(poly, 2*len(a)-1)
	for i, c := range a {
		r[2*i] = f.Sqr(c)
	}
	return polyMod(f, r, m, nil)
}

// polyGCD returns the monic greatest common divisor of a and b.  Both
// arguments are left untouched.
func polyGCD(f field.Field, a, b poly) poly {
	a = append(poly(nil), a...).trim()
	b = append(poly(nil), b...).trim()
	for len(b) > 0 {
		b = b.monic(f)
		a, b = b, polyMod(f, a, b, nil)
	}
	if len(a) == 0 {
		return a
	}
	return a.monic(f)
}

// polyAddInto adds b to a, growing a when needed, and returns the normalized
// sum.
func polyAddInto(a, b poly) poly {
	for len(a) < len(b) {
		a = append(a, 0)
	}
	for i, c := range b {
		a[i] ^= c
	}
	return a.trim()
}

// berlekampMassey returns the shortest linear feedback shift register
// generating the sequence s as its connection polynomial C, with C[0] = 1 and
// length L+1 where L is the register length.  Nil is returned as soon as L
// exceeds maxLen.
func berlekampMassey(f field.Field, s []uint64, maxLen int) poly {
	c := poly{1}
	b := poly{1}
	l, m := 0, 1
	bInv := uint64(1)

	for n := range s {
		d := s[n]
		for i := 1; i <= l && i < len(c); i++ {
			d ^= f.Mul(c[i], s[n-i])
		}
		if d == 0 {
			m++
			continue
		}

		coef := f.Mul(d, bInv)
		var prev poly
		if 2*l <= n {
			prev = append(poly(nil), c...)
		}
		for len(c) < len(b)+m {
			c = append(c, 0)
		}
		for i, bc := range b {
			c[i+m] ^= f.Mul(coef, bc)
		}

		if 2*l > n {
			m++
			continue
		}
		l = n + 1 - l
		if l > maxLen {
			return nil
		}
		b = prev
		bInv = f.Inv(d)
		m = 1
	}

	for len(c) < l+1 {
		c = append(c, 0)
	}
	return c[:l+1]
}
