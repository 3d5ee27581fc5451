// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package sketchdb persists named minisketch sketches in a key-value store.

Each sketch is stored under the key "sketch/" followed by its name.  Since the
serialized form of a sketch does not include its parameters, the record holds
them in front of the serialized sketch:

	[bits:1][implementation:1][capacity:uvarint][seed:8 little endian][sketch]

Two storage backends are available, goleveldb and pebble, selected by name when
opening a database.
*/
package sketchdb
