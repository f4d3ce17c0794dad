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
	"errors"
)

// errShortBlock indicates a framed block is too short to carry a checksum.
var errShortBlock = errors.New("block too short")

// keyIndexSeed is appended to the block checksum to derive the key.
var keyIndexSeed = []byte{0x95, 0x36, 0x00, 0x00}

// KeyIndexKey returns the key used to scramble a framed key index block. It
// is derived from the block's stored checksum (bytes 4 to 8).
func KeyIndexKey(block []byte) ([Ripemd128Size]byte, error) {
	if len(block) < 8 {
		return [Ripemd128Size]byte{}, errShortBlock
	}
	seed := make([]byte, 0, 8)
	seed = append(seed, block[4:8]...)
	seed = append(seed, keyIndexSeed...)
	return Ripemd128(seed), nil
}

// DecryptKeyIndex returns a copy of a framed key index block with its
// payload (everything after the 8 byte frame header) unscrambled.
func DecryptKeyIndex(block []byte) ([]byte, error) {
	key, err := KeyIndexKey(block)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(block))
	copy(out, block[:8])
	prev := byte(0x36)
	for i, c := range block[8:] {
		t := c>>4 | c<<4
		//nolint:gosec // truncation intended.
		out[8+i] = t ^ prev ^ byte(i) ^ key[i%len(key)]
		prev = c
	}
	return out, nil
}

// EncryptKeyIndex is the inverse of [DecryptKeyIndex].
func EncryptKeyIndex(block []byte) ([]byte, error) {
	key, err := KeyIndexKey(block)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(block))
	copy(out, block[:8])
	prev := byte(0x36)
	for i, p := range block[8:] {
		//nolint:gosec // truncation intended.
		t := p ^ prev ^ byte(i) ^ key[i%len(key)]
		c := t>>4 | t<<4
		out[8+i] = c
		prev = c
	}
	return out, nil
}
