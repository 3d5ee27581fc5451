// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build amd64 && !purego

package field

import (
	"github.com/klauspost/cpuid/v2"
)

// hasCLMul reports whether the running CPU provides PCLMULQDQ.
var hasCLMul = cpuid.CPU.Has(cpuid.CLMUL)

// clmulAsm returns the 128-bit carry-less product of a and b using
// PCLMULQDQ.  It must only be called when hasCLMul is true.
//
//go:noescape
func clmulAsm(a, b uint64) (hi, lo uint64)

// clmul64 returns the 128-bit carry-less product of a and b.
func clmul64(a, b uint64) (hi, lo uint64) {
	if hasCLMul {
		return clmulAsm(a, b)
	}
	return clmulSoft(a, b)
}
