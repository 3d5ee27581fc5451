// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package field

import (
	"fmt"
	"sync"
)

// Implementation identifies one of the interchangeable arithmetic backends.
type Implementation uint32

const (
	// Generic uses portable shift-and-xor multiplication.
	Generic Implementation = iota

	// CLMul uses hardware carry-less multiplication.
	CLMul

	// Table uses discrete logarithm tables and is limited to small
	// fields.
	Table

	// numImplementations is the number of defined backends.
	numImplementations
)

const (
	// MinBits is the smallest supported field width.
	MinBits = 1

	// MaxBits is the largest supported field width.
	MaxBits = 64

	// MaxTableBits is the largest width the Table backend supports.
	MaxTableBits = 16
)

// Map of Implementation values back to their names for pretty printing.
var implementationStrings = map[Implementation]string{
	Generic: "generic",
	CLMul:   "clmul",
	Table:   "table",
}

// String returns the Implementation in human-readable form.
func (i Implementation) String() string {
	if s, ok := implementationStrings[i]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Implementation (%d)", uint32(i))
}

// ParseImplementation returns the Implementation with the given name.
func ParseImplementation(name string) (Implementation, bool) {
	for impl, s := range implementationStrings {
		if s == name {
			return impl, true
		}
	}
	return 0, false
}

// Field is GF(2^n) arithmetic for one width.  Elements are n-bit integers
// and every method expects operands that are already reduced to n bits.
// Values are immutable and safe for concurrent use.
type Field interface {
	// Bits returns the width n of the field.
	Bits() uint32

	// Implementation returns the backend computing the products.
	Implementation() Implementation

	// Modulus returns the low terms m(x) of the reduction polynomial
	// x^n + m(x).
	Modulus() uint64

	// Mask returns a mask covering the low n bits.
	Mask() uint64

	// FromUint64 truncates v to the low n bits.
	FromUint64(v uint64) uint64

	// Mul returns the product a*b.
	Mul(a, b uint64) uint64

	// Sqr returns a*a.
	Sqr(a uint64) uint64

	// Inv returns the multiplicative inverse of a.  The inverse of zero
	// is defined to be zero.
	Inv(a uint64) uint64
}

// params holds the description of a field shared by every backend.
type params struct {
	bits uint32
	mod  uint64
	mask uint64
}

// Bits returns the width of the field.
func (p *params) Bits() uint32 {
	return p.bits
}

// Modulus returns the low terms of the reduction polynomial.
func (p *params) Modulus() uint64 {
	return p.mod
}

// Mask returns a mask covering the low bits of the field.
func (p *params) Mask() uint64 {
	return p.mask
}

// FromUint64 truncates v to the width of the field.
func (p *params) FromUint64(v uint64) uint64 {
	return v & p.mask
}

// Add returns the sum of two field elements, which in characteristic two is
// also their difference.
func Add(a, b uint64) uint64 {
	return a ^ b
}

// Pow returns a raised to the power e in f.  Pow(f, 0, 0) is 1.
func Pow(f Field, a, e uint64) uint64 {
	r := uint64(1)
	for e != 0 {
		if e&1 != 0 {
			r = f.Mul(r, a)
		}
		e >>= 1
		if e != 0 {
			a = f.Sqr(a)
		}
	}
	return r
}

// invFermat computes a^(2^n - 2), the inverse of a in GF(2^n), as the
// product of the squarings a^2, a^4, ..., a^(2^(n-1)).
func invFermat(f Field, a uint64) uint64 {
	r := uint64(1)
	for i := uint32(1); i < f.Bits(); i++ {
		a = f.Sqr(a)
		r = f.Mul(r, a)
	}
	return r
}

// BitsSupported returns whether fields of the given width can be
// constructed.
func BitsSupported(bits uint32) bool {
	return bits >= MinBits && bits <= MaxBits
}

// MaxImplementation returns the highest Implementation value defined.  Not
// every value up to it is necessarily supported for every width.
func MaxImplementation() Implementation {
	return numImplementations - 1
}

// ImplementationSupported returns whether impl can be used for fields of the
// given width on the running machine.
func ImplementationSupported(bits uint32, impl Implementation) bool {
	if !BitsSupported(bits) {
		return false
	}
	switch impl {
	case Generic:
		return true
	case CLMul:
		return hasCLMul
	case Table:
		return bits <= MaxTableBits
	}
	return false
}

// SupportedImplementations returns the backends usable for fields of the
// given width on the running machine in ascending order.  Generic comes first
// whenever the width is supported.
func SupportedImplementations(bits uint32) []Implementation {
	var impls []Implementation
	for impl := Generic; impl < numImplementations; impl++ {
		if ImplementationSupported(bits, impl) {
			impls = append(impls, impl)
		}
	}
	return impls
}

// NumImplementations returns how many backends are usable for the given
// width on the running machine.  The count is not an upper bound on the
// usable Implementation values since the supported set may have gaps, for
// instance Table without CLMul.  Use SupportedImplementations to enumerate
// them.
func NumImplementations(bits uint32) int {
	return len(SupportedImplementations(bits))
}

// cache holds the constructed fields so tables and moduli are only built
// once per process.
var cache [numImplementations][MaxBits + 1]struct {
	once sync.Once
	f    Field
}

// New returns the field of the given width computed by the given backend.
// The returned value is shared between callers.
func New(bits uint32, impl Implementation) (Field, error) {
	if !BitsSupported(bits) {
		str := fmt.Sprintf("field width %d is outside of the supported "+
			"range %d-%d", bits, MinBits, MaxBits)
		return nil, fieldError(ErrBitsOutOfRange, str)
	}
	if !ImplementationSupported(bits, impl) {
		str := fmt.Sprintf("implementation %v is not supported for "+
			"%d-bit fields", impl, bits)
		return nil, fieldError(ErrUnsupportedImplementation, str)
	}

	slot := &cache[impl][bits]
	slot.once.Do(func() {
		p := params{bits: bits, mod: modulusFor(bits), mask: maskFor(bits)}
		switch impl {
		case Generic:
			slot.f = &genericField{params: p}
		case CLMul:
			slot.f = &clmulField{params: p}
		case Table:
			slot.f = newTableField(p)
		}
		log.Debugf("Constructed %d-bit field using %v backend", bits,
			impl)
	})
	return slot.f, nil
}
