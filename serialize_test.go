// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package minisketch

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/rand"
	"testing"
)

// TestSerializeVectors ensures sketches serialize to known bytes.
func TestSerializeVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bits     uint32
		capacity int
		elements []uint64
		want     string
	}{{
		name:     "range 3000-3009",
		bits:     12,
		capacity: 4,
		elements: []uint64{3000, 3001, 3002, 3003, 3004, 3005, 3006,
			3007, 3008, 3009},
		want: "01e0d2f97469",
	}, {
		name:     "range 3002-3011",
		bits:     12,
		capacity: 4,
		elements: []uint64{3002, 3003, 3004, 3005, 3006, 3007, 3008,
			3009, 3010, 3011},
		want: "0190814badb8",
	}, {
		name:     "symmetric difference",
		bits:     12,
		capacity: 4,
		elements: []uint64{3000, 3001, 3010, 3011},
		want:     "007053b2d9d1",
	}, {
		name:     "64-bit extremes",
		bits:     64,
		capacity: 2,
		elements: []uint64{1, ^uint64(0)},
		want:     "feffffffffffffff4431333333333333",
	}, {
		name:     "padding",
		bits:     5,
		capacity: 3,
		elements: []uint64{7},
		want:     "8778",
	}, {
		name:     "empty",
		bits:     7,
		capacity: 3,
		want:     "000000",
	}}

	for _, test := range tests {
		for _, impl := range supportedImpls(test.bits) {
			s := mustNew(t, test.bits, impl, test.capacity)
			s.AddMany(test.elements)
			got := hex.EncodeToString(s.Bytes())
			if got != test.want {
				t.Errorf("%s/%v: got %s, want %s", test.name,
					impl, got, test.want)
				continue
			}

			// Deserializing into a fresh sketch must reproduce
			// the original exactly.
			r := mustNew(t, test.bits, impl, test.capacity)
			if err := r.Deserialize(s.Bytes()); err != nil {
				t.Errorf("%s/%v: unexpected error: %v", test.name,
					impl, err)
				continue
			}
			if hex.EncodeToString(r.Bytes()) != test.want {
				t.Errorf("%s/%v: round trip got %x", test.name,
					impl, r.Bytes())
			}
		}
	}
}

// TestSerializeRoundTrip ensures random sketches survive a serialization
// round trip for every width.
func TestSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	for bits := uint32(1); bits <= 64; bits++ {
		capacity := 1 + rng.Intn(9)
		s := mustNew(t, bits, Generic, capacity)
		for i := 0; i < 12; i++ {
			s.Add(rng.Uint64())
		}
		buf := s.Bytes()
		if len(buf) != (int(bits)*capacity+7)/8 {
			t.Fatalf("%d bits: serialized %d bytes", bits, len(buf))
		}

		r := mustNew(t, bits, Generic, capacity)
		if err := r.Deserialize(buf); err != nil {
			t.Fatalf("%d bits: unexpected error: %v", bits, err)
		}
		for i := range s.syndromes {
			if r.syndromes[i] != s.syndromes[i] {
				t.Fatalf("%d bits: coefficient %d got %#x, "+
					"want %#x", bits, i, r.syndromes[i],
					s.syndromes[i])
			}
		}
	}
}

// TestSerializeBuffers ensures buffer size handling matches the documented
// behavior.
func TestSerializeBuffers(t *testing.T) {
	t.Parallel()

	s := mustNew(t, 12, Generic, 4)
	s.AddMany([]uint64{3000, 3001, 3010, 3011})
	want, _ := hex.DecodeString("007053b2d9d1")

	// Short buffers are rejected without partial writes.
	short := []byte{0xaa, 0xaa, 0xaa, 0xaa, 0xaa}
	if err := s.Serialize(short); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("Serialize: got %v, want %v", err, ErrShortBuffer)
	}
	if !bytes.Equal(short, []byte{0xaa, 0xaa, 0xaa, 0xaa, 0xaa}) {
		t.Fatalf("short buffer modified: %x", short)
	}

	// Longer buffers are accepted and only the prefix is used.
	long := bytes.Repeat([]byte{0xff}, 8)
	if err := s.Serialize(long); err != nil {
		t.Fatalf("Serialize: unexpected error: %v", err)
	}
	if !bytes.Equal(long[:6], want) || long[6] != 0xff || long[7] != 0xff {
		t.Fatalf("long buffer: got %x", long)
	}

	r := mustNew(t, 12, Generic, 4)
	r.Add(77)
	before := r.Bytes()
	if err := r.Deserialize(want[:5]); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("Deserialize: got %v, want %v", err, ErrShortBuffer)
	}
	if !bytes.Equal(r.Bytes(), before) {
		t.Fatal("failed deserialize modified the sketch")
	}
	if err := r.Deserialize(long); err != nil {
		t.Fatalf("Deserialize: unexpected error: %v", err)
	}
	if !bytes.Equal(r.Bytes(), want) {
		t.Fatalf("got %x, want %x", r.Bytes(), want)
	}
}

// TestDeserializeIgnoresPadding ensures set padding bits do not change the
// decoded coefficients.
func TestDeserializeIgnoresPadding(t *testing.T) {
	t.Parallel()

	s := mustNew(t, 5, Generic, 3)
	if err := s.Deserialize([]byte{0x87, 0xf8}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint64{7, 4, 30}
	for i, v := range want {
		if s.syndromes[i] != v {
			t.Fatalf("coefficient %d: got %d, want %d", i,
				s.syndromes[i], v)
		}
	}
	if got := hex.EncodeToString(s.Bytes()); got != "8778" {
		t.Fatalf("reserialized %s, want 8778", got)
	}
}

// TestBitStream ensures values of mixed widths read back as written.
func TestBitStream(t *testing.T) {
	t.Parallel()

	widths := []uint{1, 3, 8, 13, 64, 7, 2, 33, 64, 5}
	values := []uint64{1, 5, 0xa5, 0x1abc, 0xfedcba9876543210, 0x55, 2,
		0x1deadbeef, 1, 0x11}
	var total uint
	for _, w := range widths {
		total += w
	}

	buf := make([]byte, (total+7)/8)
	w := newBitWriter(buf)
	for i, v := range values {
		w.writeNBits(v, widths[i])
	}

	r := newBitReader(buf)
	for i, want := range values {
		if got := r.readNBits(widths[i]); got != want {
			t.Fatalf("value %d: got %#x, want %#x", i, got, want)
		}
	}
}
