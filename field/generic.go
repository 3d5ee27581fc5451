// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package field

// genericField multiplies with portable shift-and-xor arithmetic.
type genericField struct {
	params
}

// Implementation returns Generic.
func (f *genericField) Implementation() Implementation {
	return Generic
}

// Mul returns the product a*b.
func (f *genericField) Mul(a, b uint64) uint64 {
	return mulShiftXor(a, b, &f.params)
}

// Sqr returns a*a.
func (f *genericField) Sqr(a uint64) uint64 {
	return mulShiftXor(a, a, &f.params)
}

// Inv returns the inverse of a, or zero when a is zero.
func (f *genericField) Inv(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return invFermat(f, a)
}
