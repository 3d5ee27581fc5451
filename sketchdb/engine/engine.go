// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package engine defines the key-value storage interface the sketch store is
// built on.  Writes go through transactions and reads through point-in-time
// snapshots.
package engine

import (
	"github.com/syndtr/goleveldb/leveldb/errors"
)

// ErrNotFound is returned by Snapshot.Get for keys that do not exist.
var ErrNotFound = errors.New("engine: key not found")

type Engine interface {
	Transaction() (Transaction, error)
	Snapshot() (Snapshot, error)
	Close() error
}

// Transaction batches writes until Commit.  A discarded transaction cannot
// be committed.
type Transaction interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Commit() error
	Discard()
}

// Snapshot is a consistent read view of the engine.  Get returns
// ErrNotFound for missing keys.
type Snapshot interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	NewIterator(*Range) Iterator
	Releaser
}

type Releaser interface {
	Release()
}
