// Copyright (c) 2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zero contains functions to clear key material from memory.
package zero

// Bytes sets all bytes in the passed slice to zero.
func Bytes(b []byte) {
	clear(b)
}

// Bytea32 clears the 32-byte array by filling it with the zero value.
// This is used to explicitly clear private key material from memory.
func Bytea32(b *[32]byte) {
	*b = [32]byte{}
}

// Keys zeroes every key in keys and empties the map.
func Keys[K comparable](keys map[K][]byte) {
	for k, v := range keys {
		Bytes(v)
		delete(keys, k)
	}
}
