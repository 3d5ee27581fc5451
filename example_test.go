// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package minisketch_test

import (
	"fmt"
	"sort"

	"github.com/btcsuite/minisketch"
)

// This example demonstrates reconciling two sets of 12-bit elements that
// differ in four elements using sketches of capacity four.
func Example_reconcile() {
	alice, err := minisketch.New(12, minisketch.Generic, 4)
	if err != nil {
		fmt.Println(err)
		return
	}
	for i := uint64(3000); i < 3010; i++ {
		alice.Add(i)
	}

	// Alice sends her serialized sketch.
	msg := alice.Bytes()
	fmt.Printf("message: %d bytes\n", len(msg))

	bob, err := minisketch.New(12, minisketch.Generic, 4)
	if err != nil {
		fmt.Println(err)
		return
	}
	for i := uint64(3002); i < 3012; i++ {
		bob.Add(i)
	}

	// Bob reconstructs Alice's sketch and merges it with his own.
	received, _ := minisketch.New(12, minisketch.Generic, 4)
	if err := received.Deserialize(msg); err != nil {
		fmt.Println(err)
		return
	}
	if _, err := bob.Merge(received); err != nil {
		fmt.Println(err)
		return
	}

	diff, err := bob.Decode()
	if err != nil {
		fmt.Println(err)
		return
	}
	sort.Slice(diff, func(i, j int) bool { return diff[i] < diff[j] })
	fmt.Println("difference:", diff)

	// Output:
	// message: 6 bytes
	// difference: [3000 3001 3010 3011]
}

// This example demonstrates sizing a sketch for a number of differences and
// a false positive margin.
func ExampleComputeCapacity() {
	capacity := minisketch.ComputeCapacity(32, 10, 32)
	fmt.Println("capacity:", capacity)
	fmt.Println("bytes:", minisketch.SerializedSize(32, capacity))

	// Output:
	// capacity: 11
	// bytes: 44
}
