// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSuiteEngine runs the behavior every Engine implementation must provide
// against engines returned by new.
func TestSuiteEngine(t *testing.T, new func() Engine) {
	t.Run("TransactionSnapshot", func(t *testing.T) {
		engine := new()
		defer engine.Close()

		tx, err := engine.Transaction()
		require.NoErrorf(t, err, "failed to create transaction")

		key := []byte("sketch/alice")
		value := []byte{0x0c, 0x00, 0x04, 0x01, 0xe0, 0xd2, 0xf9, 0x74, 0x69}
		err = tx.Put(key, value)
		require.NoErrorf(t, err, "failed to put data into transaction")

		// Uncommitted writes are invisible to snapshots.
		snapshot, err := engine.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")

		has, err := snapshot.Has(key)
		require.NoErrorf(t, err, "failed to check if key exists in snapshot")
		require.Falsef(t, has, "expected key to not exist in snapshot")

		gotValue, err := snapshot.Get(key)
		require.ErrorIsf(t, err, ErrNotFound, "expected not found error from snapshot")
		require.Nil(t, gotValue, "expected to get nil value from snapshot")

		err = tx.Commit()
		require.NoErrorf(t, err, "failed to commit transaction")

		// Snapshots are point in time views.
		has, err = snapshot.Has(key)
		require.NoErrorf(t, err, "failed to check if key exists in snapshot")
		require.Falsef(t, has, "old snapshot sees committed write")
		snapshot.Release()

		snapshot, err = engine.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")

		gotValue, err = snapshot.Get(key)
		require.NoErrorf(t, err, "failed to get value from snapshot")
		require.Equalf(t, value, gotValue, "snapshot value mismatch")
		snapshot.Release()
	})

	t.Run("DeleteOverwrite", func(t *testing.T) {
		engine := new()
		defer engine.Close()

		tx, err := engine.Transaction()
		require.NoErrorf(t, err, "failed to create transaction")
		require.NoError(t, tx.Put([]byte("sketch/a"), []byte("one")))
		require.NoError(t, tx.Put([]byte("sketch/b"), []byte("two")))
		require.NoErrorf(t, tx.Commit(), "failed to commit transaction")

		tx, err = engine.Transaction()
		require.NoErrorf(t, err, "failed to create transaction")
		require.NoError(t, tx.Put([]byte("sketch/a"), []byte("three")))
		require.NoError(t, tx.Delete([]byte("sketch/b")))
		require.NoErrorf(t, tx.Commit(), "failed to commit transaction")

		snapshot, err := engine.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")
		defer snapshot.Release()

		gotValue, err := snapshot.Get([]byte("sketch/a"))
		require.NoErrorf(t, err, "failed to get value from snapshot")
		require.Equal(t, []byte("three"), gotValue)

		has, err := snapshot.Has([]byte("sketch/b"))
		require.NoErrorf(t, err, "failed to check if key exists in snapshot")
		require.Falsef(t, has, "deleted key still present")
	})

	t.Run("TransactionIterator", func(t *testing.T) {
		for _, test := range []struct {
			kvs       map[string]string // random order of key-value pairs
			ranges    *Range
			expectkvs [][2]string
		}{
			{
				kvs:       map[string]string{"s/a": "1", "s/b": "2", "s/c": "3"},
				ranges:    &Range{Start: []byte("s/"), Limit: []byte("s/a")},
				expectkvs: nil,
			},
			{
				kvs:       map[string]string{"s/a": "1", "s/b": "2", "s/c": "3"},
				ranges:    &Range{Start: []byte("s/a"), Limit: []byte("s/c")},
				expectkvs: [][2]string{{"s/a", "1"}, {"s/b", "2"}},
			},
			{
				kvs:       map[string]string{"s/a": "1", "s/b": "2", "s/c": "3"},
				ranges:    &Range{Start: []byte("s/aa"), Limit: []byte("s/d")},
				expectkvs: [][2]string{{"s/b", "2"}, {"s/c", "3"}},
			},
			{
				kvs:       map[string]string{"s/a": "1", "s/b": "2"},
				ranges:    &Range{Start: []byte("s/b"), Limit: []byte("s/b")},
				expectkvs: nil,
			},
			{
				kvs: map[string]string{"sketch/x": "1", "sketch/y": "2",
					"meta/version": "3", "sketchx": "4"},
				ranges:    BytesPrefix([]byte("sketch/")),
				expectkvs: [][2]string{{"sketch/x", "1"}, {"sketch/y", "2"}},
			},
		} {
			engine := new()
			defer engine.Close()

			tx, err := engine.Transaction()
			require.NoErrorf(t, err, "failed to create transaction")

			for k, v := range test.kvs {
				err = tx.Put([]byte(k), []byte(v))
				require.NoErrorf(t, err, "failed to put data into transaction")
			}
			err = tx.Commit()
			require.NoErrorf(t, err, "failed to commit transaction")

			snapshot, err := engine.Snapshot()
			require.NoErrorf(t, err, "failed to create snapshot")

			iter := snapshot.NewIterator(test.ranges)
			var idx int
			for iter.Next() {
				if idx >= len(test.expectkvs) {
					require.FailNowf(t, "unexpected key-value pair", "key: %s, value: %s", iter.Key(), iter.Value())
				}

				require.Equalf(t, []byte(test.expectkvs[idx][0]), iter.Key(), "key mismatch")
				require.Equalf(t, []byte(test.expectkvs[idx][1]), iter.Value(), "value mismatch")
				idx++
			}
			require.Equalf(t, len(test.expectkvs), idx, "key-value pair count mismatch")

			iter.Release()
			snapshot.Release()
		}
	})

	t.Run("DbClose", func(t *testing.T) {
		engine := new()

		transaction, err := engine.Transaction()
		require.NoErrorf(t, err, "failed to create transaction")

		transaction.Discard()
		transaction.Discard() // multiple calls to discard should be safe
		err = transaction.Commit()
		require.Errorf(t, err, "expected to get error when committing discarded transaction")

		snapshot, err := engine.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")

		iterator := snapshot.NewIterator(&Range{})
		require.NoErrorf(t, iterator.Error(), "failed to create iterator")
		iterator.Release()
		iterator.Release() // multiple calls to release should be safe

		snapshot.Release()
		snapshot.Release() // multiple calls to release should be safe

		// Iterators of a released snapshot are empty and report why.
		iterator = snapshot.NewIterator(&Range{})
		require.NotNil(t, iterator, "expected an iterator from released snapshot")
		require.False(t, iterator.Next(), "expected released snapshot iterator to be empty")
		require.Nil(t, iterator.Key())
		require.Nil(t, iterator.Value())
		require.Errorf(t, iterator.Error(), "expected to get error from released snapshot iterator")
		iterator.Release()
		_, err = snapshot.Get([]byte("key"))
		require.Errorf(t, err, "expected to get error when getting value from released snapshot")

		err = engine.Close()
		require.NoErrorf(t, err, "failed to close engine")

		err = engine.Close()
		require.Errorf(t, err, "expected to get error when closing closed engine")

		_, err = engine.Transaction()
		require.Errorf(t, err, "expected to get error when creating transaction from closed engine")

		_, err = engine.Snapshot()
		require.Errorf(t, err, "expected to get error when creating snapshot from closed engine")
	})
}
