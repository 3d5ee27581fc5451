// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package minisketch

import (
	"fmt"
	"testing"
)

// BenchmarkAdd benchmarks adding elements to a 32-bit sketch.
func BenchmarkAdd(b *testing.B) {
	for _, capacity := range []int{8, 64} {
		s := mustNew(b, 32, Generic, capacity)
		b.Run(fmt.Sprintf("capacity%d", capacity), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				s.Add(uint64(i) + 1)
			}
		})
	}
}

// BenchmarkDecode benchmarks decoding full sketches.
func BenchmarkDecode(b *testing.B) {
	benches := []struct {
		name     string
		bits     uint32
		capacity int
	}{
		{"32bit/16", 32, 16},
		{"64bit/16", 64, 16},
		{"64bit/64", 64, 64},
	}

	for _, bench := range benches {
		s := mustNew(b, bench.bits, Generic, bench.capacity)
		for i := 1; i <= bench.capacity; i++ {
			s.Add(spreadElement(bench.bits, i))
		}
		b.Run(bench.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := s.Decode(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
