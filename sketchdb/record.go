// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sketchdb

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/minisketch"
)

// serializeRecord returns the stored form of a sketch.
func serializeRecord(s *minisketch.Sketch) []byte {
	buf := make([]byte, 0, 2+binary.MaxVarintLen64+8+s.SerializedSize())
	buf = append(buf, byte(s.Bits()), byte(s.Implementation()))
	buf = binary.AppendUvarint(buf, uint64(s.Capacity()))
	buf = binary.LittleEndian.AppendUint64(buf, s.Seed())
	return append(buf, s.Bytes()...)
}

// deserializeRecord parses a stored record into a sketch.
func deserializeRecord(name string, rec []byte) (*minisketch.Sketch, error) {
	if len(rec) < 2 {
		str := fmt.Sprintf("record for %q is truncated", name)
		return nil, dbError(ErrCorruptRecord, str)
	}
	bits := uint32(rec[0])
	impl := minisketch.Implementation(rec[1])
	rec = rec[2:]

	capacity, n := binary.Uvarint(rec)
	if n <= 0 || capacity == 0 || capacity > uint64(len(rec))*8 {
		str := fmt.Sprintf("record for %q has an invalid capacity", name)
		return nil, dbError(ErrCorruptRecord, str)
	}
	rec = rec[n:]

	if len(rec) < 8 {
		str := fmt.Sprintf("record for %q is missing its seed", name)
		return nil, dbError(ErrCorruptRecord, str)
	}
	seed := binary.LittleEndian.Uint64(rec[:8])
	rec = rec[8:]

	s, err := minisketch.New(bits, impl, int(capacity))
	if err != nil {
		str := fmt.Sprintf("record for %q has unusable parameters: %v",
			name, err)
		return nil, dbError(ErrCorruptRecord, str)
	}
	if len(rec) != s.SerializedSize() {
		str := fmt.Sprintf("record for %q holds %d sketch bytes, want "+
			"%d", name, len(rec), s.SerializedSize())
		return nil, dbError(ErrCorruptRecord, str)
	}
	if err := s.Deserialize(rec); err != nil {
		return nil, err
	}
	s.SetSeed(seed)
	return s, nil
}
