// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package crypt

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/salsa20/salsa"
)

var errKeySize = errors.New("invalid key size")

var (
	sigma = [16]byte{'e', 'x', 'p', 'a', 'n', 'd', ' ', '3', '2', '-', 'b', 'y', 't', 'e', ' ', 'k'}
	tau   = [16]byte{'e', 'x', 'p', 'a', 'n', 'd', ' ', '1', '6', '-', 'b', 'y', 't', 'e', ' ', 'k'}
)

// Salsa8XOR XORs src with the Salsa20/8 key stream for key and a zero nonce
// and returns the result. The transform is its own inverse. key must be 16
// or 32 bytes long.
func Salsa8XOR(src, key []byte) ([]byte, error) {
	var in [64]byte
	switch len(key) {
	case 16:
		copy(in[0:], tau[0:4])
		copy(in[4:], key)
		copy(in[20:], tau[4:8])
		copy(in[40:], tau[8:12])
		copy(in[44:], key)
		copy(in[60:], tau[12:16])
	case 32:
		copy(in[0:], sigma[0:4])
		copy(in[4:], key[:16])
		copy(in[20:], sigma[4:8])
		copy(in[40:], sigma[8:12])
		copy(in[44:], key[16:])
		copy(in[60:], sigma[12:16])
	default:
		return nil, fmt.Errorf("%w: %d", errKeySize, len(key))
	}

	dst := make([]byte, len(src))
	var block [64]byte
	for off := 0; off < len(src); off += len(block) {
		// Words 6-7 hold the nonce (zero), words 8-9 the block counter.
		//nolint:gosec // off is non-negative.
		binary.LittleEndian.PutUint64(in[32:], uint64(off/len(block)))
		salsa.Core208(&block, &in)

		end := min(off+len(block), len(src))
		for i := off; i < end; i++ {
			dst[i] = src[i] ^ block[i-off]
		}
	}
	return dst, nil
}

// RegKey derives the key that decrypts an index header from a registration
// code and the user id (e-mail address or device id) it was issued for.
func RegKey(regCode []byte, userID string) ([]byte, error) {
	digest := Ripemd128([]byte(userID))
	return Salsa8XOR(regCode, digest[:])
}
