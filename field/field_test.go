// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package field

import (
	"errors"
	"math/rand"
	"slices"
	"testing"
)

// supportedFields returns every field the running machine can construct.
func supportedFields(t testing.TB) []Field {
	var fields []Field
	for bits := uint32(MinBits); bits <= MaxBits; bits++ {
		for impl := Generic; impl <= MaxImplementation(); impl++ {
			if !ImplementationSupported(bits, impl) {
				continue
			}
			f, err := New(bits, impl)
			if err != nil {
				t.Fatalf("New(%d, %v): unexpected error: %v", bits,
					impl, err)
			}
			fields = append(fields, f)
		}
	}
	return fields
}

// TestModulus ensures the selected reduction polynomials match the well known
// lowest-weight irreducible polynomials.
func TestModulus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bits uint32
		want uint64
	}{
		{bits: 1, want: 0x1},
		{bits: 2, want: 0x3},
		{bits: 8, want: 0x1b},
		{bits: 12, want: 0x9},
		{bits: 16, want: 0x2b},
		{bits: 32, want: 0x8d},
		{bits: 33, want: 0x401},
		{bits: 58, want: 0x80001},
		{bits: 62, want: 0x20000001},
		{bits: 63, want: 0x3},
		{bits: 64, want: 0x1b},
	}

	for _, test := range tests {
		f, err := New(test.bits, Generic)
		if err != nil {
			t.Errorf("New(%d): unexpected error: %v", test.bits, err)
			continue
		}
		if got := f.Modulus(); got != test.want {
			t.Errorf("modulus for %d bits: got %#x, want %#x",
				test.bits, got, test.want)
		}
	}

	// Every selected modulus must pass the irreducibility test, and the
	// obviously reducible x^n + 1 must not.
	for bits := uint32(2); bits <= MaxBits; bits++ {
		if !irreducible(bits, modulusFor(bits)) {
			t.Errorf("modulus for %d bits is reducible", bits)
		}
		if irreducible(bits, 1) {
			t.Errorf("x^%d + 1 reported irreducible", bits)
		}
	}
}

// TestKnownProducts ensures multiplication matches independently computed
// products.
func TestKnownProducts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		bits    uint32
		a, b, p uint64
	}{
		// The 8-bit field shares its modulus with AES.
		{name: "aes", bits: 8, a: 0x57, b: 0x83, p: 0xc1},
		{name: "aes xtime", bits: 8, a: 0x57, b: 0x13, p: 0xfe},
		{name: "gf2", bits: 1, a: 1, b: 1, p: 1},
		{name: "wrap 64", bits: 64, a: 1 << 63, b: 2, p: 0x1b},
		{name: "wrap 12", bits: 12, a: 1 << 11, b: 2, p: 0x9},
		{name: "zero", bits: 32, a: 0, b: 0xdeadbeef, p: 0},
		{name: "one", bits: 32, a: 1, b: 0xdeadbeef, p: 0xdeadbeef},
	}

	for _, test := range tests {
		for impl := Generic; impl <= MaxImplementation(); impl++ {
			if !ImplementationSupported(test.bits, impl) {
				continue
			}
			f, err := New(test.bits, impl)
			if err != nil {
				t.Fatalf("%s/%v: unexpected error: %v", test.name,
					impl, err)
			}
			if got := f.Mul(test.a, test.b); got != test.p {
				t.Errorf("%s/%v: got %#x, want %#x", test.name,
					impl, got, test.p)
			}
			if got := f.Mul(test.b, test.a); got != test.p {
				t.Errorf("%s/%v: commuted got %#x, want %#x",
					test.name, impl, got, test.p)
			}
		}
	}
}

// TestImplementationsAgree ensures every backend computes the same products,
// squares and inverses as the generic backend.
func TestImplementationsAgree(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(12345))
	for _, f := range supportedFields(t) {
		ref, err := New(f.Bits(), Generic)
		if err != nil {
			t.Fatalf("New(%d, generic): %v", f.Bits(), err)
		}
		for i := 0; i < 200; i++ {
			a := f.FromUint64(rng.Uint64())
			b := f.FromUint64(rng.Uint64())
			if got, want := f.Mul(a, b), ref.Mul(a, b); got != want {
				t.Fatalf("%d-bit %v: %#x*%#x = %#x, want %#x",
					f.Bits(), f.Implementation(), a, b, got, want)
			}
			if got, want := f.Sqr(a), ref.Mul(a, a); got != want {
				t.Fatalf("%d-bit %v: sqr(%#x) = %#x, want %#x",
					f.Bits(), f.Implementation(), a, got, want)
			}
			if got, want := f.Inv(a), ref.Inv(a); got != want {
				t.Fatalf("%d-bit %v: inv(%#x) = %#x, want %#x",
					f.Bits(), f.Implementation(), a, got, want)
			}
		}
	}
}

// TestFieldAxioms spot checks distributivity, inverses and the order of the
// multiplicative group.
func TestFieldAxioms(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(54321))
	for _, f := range supportedFields(t) {
		if f.Inv(0) != 0 {
			t.Errorf("%d-bit %v: inverse of zero is not zero",
				f.Bits(), f.Implementation())
		}
		for i := 0; i < 50; i++ {
			a := f.FromUint64(rng.Uint64())
			b := f.FromUint64(rng.Uint64())
			c := f.FromUint64(rng.Uint64())

			lhs := f.Mul(a, Add(b, c))
			rhs := Add(f.Mul(a, b), f.Mul(a, c))
			if lhs != rhs {
				t.Fatalf("%d-bit %v: distributivity failed for "+
					"%#x %#x %#x", f.Bits(),
					f.Implementation(), a, b, c)
			}
			if a == 0 {
				continue
			}
			if got := f.Mul(a, f.Inv(a)); got != 1 {
				t.Fatalf("%d-bit %v: %#x * inv = %#x", f.Bits(),
					f.Implementation(), a, got)
			}
			if got := Pow(f, a, f.Mask()); got != 1 {
				t.Fatalf("%d-bit %v: %#x^(2^n-1) = %#x",
					f.Bits(), f.Implementation(), a, got)
			}
		}
	}
}

// TestClmul ensures the carry-less multiply matches its reference on edge
// cases and random inputs.
func TestClmul(t *testing.T) {
	t.Parallel()

	hi, lo := clmulSoft(3, 3)
	if hi != 0 || lo != 5 {
		t.Fatalf("clmulSoft(3, 3) = %#x:%#x, want 0:0x5", hi, lo)
	}
	hi, lo = clmulSoft(1<<63, 1<<63)
	if hi != 1<<62 || lo != 0 {
		t.Fatalf("clmulSoft(2^63, 2^63) = %#x:%#x, want 2^62:0", hi, lo)
	}

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 1000; i++ {
		a, b := rng.Uint64(), rng.Uint64()
		wantHi, wantLo := clmulSoft(a, b)
		gotHi, gotLo := clmul64(a, b)
		if gotHi != wantHi || gotLo != wantLo {
			t.Fatalf("clmul64(%#x, %#x) = %#x:%#x, want %#x:%#x",
				a, b, gotHi, gotLo, wantHi, wantLo)
		}
	}
}

// TestNewErrors ensures unsupported parameters are rejected with the
// expected error codes.
func TestNewErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bits uint32
		impl Implementation
		err  ErrorCode
	}{
		{"zero bits", 0, Generic, ErrBitsOutOfRange},
		{"too many bits", 65, Generic, ErrBitsOutOfRange},
		{"table too wide", MaxTableBits + 1, Table, ErrUnsupportedImplementation},
		{"unknown implementation", 8, numImplementations, ErrUnsupportedImplementation},
	}

	for _, test := range tests {
		_, err := New(test.bits, test.impl)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: got error %v, want %v", test.name, err,
				test.err)
			continue
		}
		var fErr Error
		if !errors.As(err, &fErr) || fErr.ErrorCode != test.err {
			t.Errorf("%s: error %v is not an Error with code %v",
				test.name, err, test.err)
		}
	}
}

// TestCapabilities ensures the capability queries are consistent.
func TestCapabilities(t *testing.T) {
	t.Parallel()

	if BitsSupported(0) || BitsSupported(65) {
		t.Fatal("out of range widths reported supported")
	}
	if MaxImplementation() != Table {
		t.Fatalf("max implementation %v, want %v", MaxImplementation(),
			Table)
	}
	if NumImplementations(0) != 0 {
		t.Fatal("implementations reported for zero width")
	}
	for bits := uint32(MinBits); bits <= MaxBits; bits++ {
		want := 1
		if hasCLMul {
			want++
		}
		if bits <= MaxTableBits {
			want++
		}
		if got := NumImplementations(bits); got != want {
			t.Errorf("NumImplementations(%d) = %d, want %d", bits,
				got, want)
		}
		if !ImplementationSupported(bits, Generic) {
			t.Errorf("generic not supported for %d bits", bits)
		}
	}
}

// TestSupportedImplementations ensures the enumerated backends are exactly
// the supported ones even when their values are not contiguous.
func TestSupportedImplementations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bits uint32
		want []Implementation
	}{
		{bits: 0, want: nil},
		{bits: 65, want: nil},
		{bits: 8, want: []Implementation{Generic, Table}},
		{bits: MaxTableBits, want: []Implementation{Generic, Table}},
		{bits: MaxTableBits + 1, want: []Implementation{Generic}},
		{bits: 64, want: []Implementation{Generic}},
	}

	for _, test := range tests {
		want := test.want
		if hasCLMul && len(want) > 0 {
			want = append([]Implementation{Generic, CLMul}, want[1:]...)
		}

		got := SupportedImplementations(test.bits)
		if !slices.Equal(got, want) {
			t.Errorf("SupportedImplementations(%d) = %v, want %v",
				test.bits, got, want)
		}
		if len(got) != NumImplementations(test.bits) {
			t.Errorf("%d bits: %d implementations listed, %d counted",
				test.bits, len(got), NumImplementations(test.bits))
		}
		for _, impl := range got {
			if !ImplementationSupported(test.bits, impl) {
				t.Errorf("%d bits: %v listed but not supported",
					test.bits, impl)
			}
		}
	}
}

// TestSharedFields ensures constructing the same field twice returns the
// shared instance.
func TestSharedFields(t *testing.T) {
	t.Parallel()

	a, err := New(16, Table)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(16, Table)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a != b {
		t.Fatal("fields are not shared")
	}
}

// TestImplementationStringer tests the stringized output and parsing of the
// Implementation type.
func TestImplementationStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Implementation
		want string
	}{
		{Generic, "generic"},
		{CLMul, "clmul"},
		{Table, "table"},
		{0xffff, "Unknown Implementation (65535)"},
	}

	for i, test := range tests {
		result := test.in.String()
		if result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result,
				test.want)
			continue
		}
		impl, ok := ParseImplementation(test.want)
		if ok != (test.in < numImplementations) {
			t.Errorf("ParseImplementation #%d: ok = %v", i, ok)
			continue
		}
		if ok && impl != test.in {
			t.Errorf("ParseImplementation #%d: got %v, want %v", i,
				impl, test.in)
		}
	}
}

// TestErrorCodeStringer tests the stringized output for the ErrorCode type.
func TestErrorCodeStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrBitsOutOfRange, "ErrBitsOutOfRange"},
		{ErrUnsupportedImplementation, "ErrUnsupportedImplementation"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	// Detect additional error codes that don't have the stringer added.
	if len(tests)-1 != int(numErrorCodes) {
		t.Errorf("It appears an error code was added without adding an " +
			"associated stringer test")
	}

	for i, test := range tests {
		result := test.in.String()
		if result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result,
				test.want)
			continue
		}
	}
}

// TestError tests the error output for the Error type.
func TestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Error
		want string
	}{
		{Error{Description: "some error"}, "some error"},
		{Error{Description: "human-readable error"}, "human-readable error"},
	}

	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("Error #%d\n got: %s want: %s", i, result,
				test.want)
			continue
		}
	}
}
