// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package field

// tableField multiplies by adding discrete logarithms with respect to a
// generator of the multiplicative group.
type tableField struct {
	params

	// order is the size of the multiplicative group, 2^n - 1.
	order uint32

	// logs maps a nonzero element to its logarithm.  logs[0] is unused.
	logs []uint16

	// exps maps a logarithm to its element.  It holds two periods so the
	// sum of two logarithms never needs reducing.
	exps []uint16
}

// newTableField builds the logarithm tables for the field described by p.
func newTableField(p params) *tableField {
	order := uint32(p.mask)
	g := findGenerator(&p)
	f := &tableField{
		params: p,
		order:  order,
		logs:   make([]uint16, order+1),
		exps:   make([]uint16, 2*order),
	}

	x := uint64(1)
	for i := uint32(0); i < order; i++ {
		f.exps[i] = uint16(x)
		f.exps[i+order] = uint16(x)
		f.logs[x] = uint16(i)
		x = mulShiftXor(x, g, &p)
	}

	log.Debugf("Built %d-bit log tables with generator %#x", p.bits, g)
	return f
}

// findGenerator returns the smallest element whose powers cover every
// nonzero element of the field.
func findGenerator(p *params) uint64 {
	order := p.mask
	for g := uint64(1); g <= p.mask; g++ {
		x, n := g, uint64(1)
		for x != 1 {
			x = mulShiftXor(x, g, p)
			n++
		}
		if n == order {
			return g
		}
	}

	// The multiplicative group of a finite field is cyclic.
	panic("field has no generator")
}

// Implementation returns Table.
func (f *tableField) Implementation() Implementation {
	return Table
}

// Mul returns the product a*b.
func (f *tableField) Mul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	return uint64(f.exps[uint32(f.logs[a])+uint32(f.logs[b])])
}

// Sqr returns a*a.
func (f *tableField) Sqr(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return uint64(f.exps[2*uint32(f.logs[a])])
}

// Inv returns the inverse of a, or zero when a is zero.
func (f *tableField) Inv(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return uint64(f.exps[f.order-uint32(f.logs[a])])
}
