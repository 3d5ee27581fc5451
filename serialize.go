// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package minisketch

import (
	"fmt"
)

// SerializedSize returns the number of bytes needed to serialize a sketch of
// the given width and capacity.
func SerializedSize(bits uint32, capacity int) int {
	return (int(bits)*capacity + 7) / 8
}

// SerializedSize returns the number of bytes Serialize writes.
func (s *Sketch) SerializedSize() int {
	return SerializedSize(s.Bits(), len(s.syndromes))
}

// Serialize writes the sketch to the start of buf.  The coefficients are
// packed Bits() bits each, least significant bit first, and the padding bits
// of the last byte are zero.  Nothing is written when buf is shorter than
// SerializedSize().
func (s *Sketch) Serialize(buf []byte) error {
	size := s.SerializedSize()
	if len(buf) < size {
		str := fmt.Sprintf("buffer of %d bytes is too small for a %d "+
			"byte sketch", len(buf), size)
		return sketchError(ErrShortBuffer, str)
	}

	out := buf[:size]
	clear(out)
	w := newBitWriter(out)
	for _, v := range s.syndromes {
		w.writeNBits(v, uint(s.Bits()))
	}
	return nil
}

// Bytes returns the serialized sketch.
func (s *Sketch) Bytes() []byte {
	buf := make([]byte, s.SerializedSize())
	if err := s.Serialize(buf); err != nil {
		// The buffer is always large enough.
		panic(err)
	}
	return buf
}

// Deserialize replaces the contents of the sketch with the serialized
// sketch at the start of buf.  The width and capacity are not part of the
// serialization, so buf must have been produced by a sketch with the same
// parameters.  Padding bits are ignored and the sketch is left unchanged when
// buf is too short.
func (s *Sketch) Deserialize(buf []byte) error {
	size := s.SerializedSize()
	if len(buf) < size {
		str := fmt.Sprintf("buffer of %d bytes is too small for a %d "+
			"byte sketch", len(buf), size)
		return sketchError(ErrShortBuffer, str)
	}

	r := newBitReader(buf[:size])
	for i := range s.syndromes {
		s.syndromes[i] = r.readNBits(uint(s.Bits()))
	}
	return nil
}
