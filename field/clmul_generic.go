// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build !amd64 || purego

package field

// hasCLMul is false on platforms without an assembly carry-less multiply.
const hasCLMul = false

// clmul64 returns the 128-bit carry-less product of a and b.
func clmul64(a, b uint64) (hi, lo uint64) {
	return clmulSoft(a, b)
}
