// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sketchdb

import (
	"errors"
	"fmt"

	"github.com/btcsuite/minisketch"
	"github.com/btcsuite/minisketch/sketchdb/engine"
	"github.com/btcsuite/minisketch/sketchdb/engine/leveldb"
	"github.com/btcsuite/minisketch/sketchdb/engine/pebbledb"
)

const (
	// BackendLevelDB selects the goleveldb storage backend.
	BackendLevelDB = "leveldb"

	// BackendPebble selects the pebble storage backend.
	BackendPebble = "pebble"
)

// Backends lists the supported backend names.
var Backends = []string{BackendLevelDB, BackendPebble}

// sketchPrefix is the key prefix of every sketch record.
var sketchPrefix = []byte("sketch/")

// DB is a store of named sketches.  It is safe for concurrent use to the
// extent the underlying engine is.
type DB struct {
	engine engine.Engine
}

// Open opens the sketch store at path using the named backend, creating it
// when it does not exist.
func Open(backend, path string) (*DB, error) {
	var (
		e   engine.Engine
		err error
	)
	switch backend {
	case BackendLevelDB:
		e, err = leveldb.NewDB(path, false)
	case BackendPebble:
		e, err = pebbledb.NewDB(path, false, 0, 0)
	default:
		str := fmt.Sprintf("unknown backend %q", backend)
		return nil, dbError(ErrUnknownBackend, str)
	}
	if err != nil {
		return nil, err
	}

	log.Debugf("Opened %s sketch store at %s", backend, path)
	return New(e), nil
}

// New returns a sketch store on top of an open engine.
func New(e engine.Engine) *DB {
	return &DB{engine: e}
}

// sketchKey returns the key of the named sketch.
func sketchKey(name string) ([]byte, error) {
	if name == "" {
		return nil, dbError(ErrInvalidName, "sketch name is empty")
	}
	key := make([]byte, 0, len(sketchPrefix)+len(name))
	key = append(key, sketchPrefix...)
	return append(key, name...), nil
}

// update runs fn in a transaction and commits it when fn succeeds.
func (db *DB) update(fn func(tx engine.Transaction) error) error {
	tx, err := db.engine.Transaction()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Discard()
		return err
	}
	return tx.Commit()
}

// view runs fn against a snapshot.
func (db *DB) view(fn func(snap engine.Snapshot) error) error {
	snap, err := db.engine.Snapshot()
	if err != nil {
		return err
	}
	defer snap.Release()
	return fn(snap)
}

// Put stores the sketch under the name, replacing any existing sketch.
func (db *DB) Put(name string, s *minisketch.Sketch) error {
	key, err := sketchKey(name)
	if err != nil {
		return err
	}
	rec := serializeRecord(s)
	err = db.update(func(tx engine.Transaction) error {
		return tx.Put(key, rec)
	})
	if err != nil {
		return err
	}

	log.Tracef("Stored sketch %q: %v", name, s)
	return nil
}

// Get returns the sketch stored under the name.
func (db *DB) Get(name string) (*minisketch.Sketch, error) {
	key, err := sketchKey(name)
	if err != nil {
		return nil, err
	}

	var rec []byte
	err = db.view(func(snap engine.Snapshot) error {
		v, err := snap.Get(key)
		rec = v
		return err
	})
	if errors.Is(err, engine.ErrNotFound) {
		str := fmt.Sprintf("no sketch named %q", name)
		return nil, dbError(ErrNotFound, str)
	}
	if err != nil {
		return nil, err
	}
	return deserializeRecord(name, rec)
}

// Has returns whether a sketch is stored under the name.
func (db *DB) Has(name string) (bool, error) {
	key, err := sketchKey(name)
	if err != nil {
		return false, err
	}

	var has bool
	err = db.view(func(snap engine.Snapshot) error {
		ok, err := snap.Has(key)
		has = ok
		return err
	})
	return has, err
}

// Delete removes the sketch stored under the name.  Deleting a missing
// sketch is not an error.
func (db *DB) Delete(name string) error {
	key, err := sketchKey(name)
	if err != nil {
		return err
	}
	return db.update(func(tx engine.Transaction) error {
		return tx.Delete(key)
	})
}

// Names returns the names of all stored sketches in ascending order.
func (db *DB) Names() ([]string, error) {
	var names []string
	err := db.view(func(snap engine.Snapshot) error {
		iter := snap.NewIterator(engine.BytesPrefix(sketchPrefix))
		defer iter.Release()
		for iter.Next() {
			names = append(names, string(iter.Key()[len(sketchPrefix):]))
		}
		return iter.Error()
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ForEach calls fn with every stored sketch in ascending name order from a
// single consistent snapshot.  Iteration stops at the first error fn returns.
func (db *DB) ForEach(fn func(name string, s *minisketch.Sketch) error) error {
	return db.view(func(snap engine.Snapshot) error {
		iter := snap.NewIterator(engine.BytesPrefix(sketchPrefix))
		defer iter.Release()
		for iter.Next() {
			name := string(iter.Key()[len(sketchPrefix):])
			sketch, err := deserializeRecord(name, iter.Value())
			if err != nil {
				return err
			}
			if err := fn(name, sketch); err != nil {
				return err
			}
		}
		return iter.Error()
	})
}

// Close closes the underlying engine.
func (db *DB) Close() error {
	return db.engine.Close()
}
