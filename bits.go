// Copyright (c) 2018 The Decred developers
// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package minisketch

// bitWriter packs fixed-width values into a byte slice least significant bit
// first.  Bit p of the stream is stored in bit p%8 of byte p/8.
type bitWriter struct {
	bytes []byte
	pos   uint // Number of bits written
}

// newBitWriter returns a writer that fills buf from the start.  buf must be
// zeroed and large enough to hold everything written.
func newBitWriter(buf []byte) bitWriter {
	return bitWriter{bytes: buf}
}

// writeNBits writes the n least significant bits of data to the bit stream.
// Panics if n > 64.
func (b *bitWriter) writeNBits(data uint64, n uint) {
	if n > 64 {
		panic("minisketch: cannot write more than 64 bits of a uint64")
	}

	for n > 0 {
		idx, off := b.pos/8, b.pos%8

		// Fill the rest of the current byte, or as much of it as the
		// remaining bits allow.
		take := 8 - off
		if take > n {
			take = n
		}
		chunk := byte(data) & (1<<take - 1)
		b.bytes[idx] |= chunk << off

		data >>= take
		n -= take
		b.pos += take
	}
}

// bitReader reads fixed-width values packed least significant bit first.
type bitReader struct {
	bytes []byte
	pos   uint // Number of bits read
}

func newBitReader(bitstream []byte) bitReader {
	return bitReader{bytes: bitstream}
}

// readNBits reads n bits from the bit stream and returns them as the least
// significant bits of the result.  Panics if n > 64 or the stream holds fewer
// than n unread bits.
func (b *bitReader) readNBits(n uint) uint64 {
	if n > 64 {
		panic("minisketch: cannot read more than 64 bits as a uint64")
	}

	var value uint64
	var shift uint
	for n > 0 {
		idx, off := b.pos/8, b.pos%8

		take := 8 - off
		if take > n {
			take = n
		}
		chunk := (b.bytes[idx] >> off) & (1<<take - 1)
		value |= uint64(chunk) << shift

		shift += take
		n -= take
		b.pos += take
	}
	return value
}
