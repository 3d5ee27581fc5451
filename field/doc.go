// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package field implements arithmetic in the binary extension fields GF(2^n) for
1 <= n <= 64, as used by the minisketch set reconciliation sketches.

# Element Encoding

Field elements are represented as n-bit unsigned integers stored in a uint64.
Bit i of the integer is the coefficient of x^i of the polynomial representing
the element, modulo a fixed irreducible polynomial x^n + m(x).  Addition is
therefore XOR, and every backend shares the same encoding, so values can be
passed between backends freely.

The modulus for each width is the lowest-weight irreducible polynomial: the
trinomial x^n + x^k + 1 with the smallest k when one exists, otherwise the
pentanomial x^n + x^a + x^b + x^c + 1 that is first in lexicographic order of
(a, b, c).  It is computed once per width and verified with Ben-Or's
irreducibility test.

# Implementations

Several interchangeable backends exist.  They are selected at runtime by an
Implementation value:

  - Generic: shift-and-xor multiplication, available for every width
  - CLMul: carry-less multiplication using the PCLMULQDQ instruction on
    amd64 CPUs that support it
  - Table: discrete logarithm tables, available for widths up to 16 bits

Use ImplementationSupported to check whether a combination is usable on the
running machine before calling New.
*/
package field
