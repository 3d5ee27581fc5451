// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pebbledb

import (
	"github.com/btcsuite/minisketch/sketchdb/engine"
	"github.com/cockroachdb/pebble"
)

func NewIterator(iter *pebble.Iterator) engine.Iterator {
	return &Iterator{Iterator: iter}
}

type Iterator struct {
	*pebble.Iterator
	released bool
}

func (i *Iterator) Next() bool {
	if i.released {
		return false
	}
	return i.Iterator.Next()
}

func (i *Iterator) Key() []byte {
	if i.released || !i.Iterator.Valid() { // nil once exhausted
		return nil
	}
	return i.Iterator.Key()
}

func (i *Iterator) Value() []byte {
	if i.released || !i.Iterator.Valid() { // nil once exhausted
		return nil
	}
	return i.Iterator.Value()
}

func (i *Iterator) Release() {
	if !i.released {
		i.released = true
		i.Iterator.Close()
	}
}

func (i *Iterator) Error() error {
	if i.released {
		return ErrIteratorReleased
	}
	return i.Iterator.Error()
}

// errIterator is an empty iterator that reports the error which prevented
// the creation of a real one.
type errIterator struct {
	err error
}

func (errIterator) Next() bool     { return false }
func (errIterator) Key() []byte    { return nil }
func (errIterator) Value() []byte  { return nil }
func (errIterator) Release()       {}
func (e errIterator) Error() error { return e.err }
