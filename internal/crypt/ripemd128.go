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

// Package crypt implements the deterministic transforms used to obfuscate
// parts of a container: RIPEMD-128 key derivation, Salsa20/8 and the key
// index byte scrambling.
package crypt

import (
	"encoding/binary"
	"math/bits"
)

// Ripemd128Size is the size of a RIPEMD-128 digest in bytes.
const Ripemd128Size = 16

var (
	// Message word selection for the left and right lines.
	rLeft = [64]uint8{
		0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
		7, 4, 13, 1, 10, 6, 15, 3, 12, 0, 9, 5, 2, 14, 11, 8,
		3, 10, 14, 4, 9, 15, 8, 1, 2, 7, 0, 6, 13, 11, 5, 12,
		1, 9, 11, 10, 0, 8, 12, 4, 13, 3, 7, 15, 14, 5, 6, 2,
	}
	rRight = [64]uint8{
		5, 14, 7, 0, 9, 2, 11, 4, 13, 6, 15, 8, 1, 10, 3, 12,
		6, 11, 3, 7, 0, 13, 5, 10, 14, 15, 8, 12, 4, 9, 1, 2,
		15, 5, 1, 3, 7, 14, 6, 9, 11, 8, 12, 2, 10, 0, 4, 13,
		8, 6, 4, 1, 3, 11, 15, 0, 5, 12, 2, 13, 9, 7, 10, 14,
	}

	// Rotation amounts for the left and right lines.
	sLeft = [64]uint8{
		11, 14, 15, 12, 5, 8, 7, 9, 11, 13, 14, 15, 6, 7, 9, 8,
		7, 6, 8, 13, 11, 9, 7, 15, 7, 12, 15, 9, 11, 7, 13, 12,
		11, 13, 6, 7, 14, 9, 13, 15, 14, 8, 13, 6, 5, 12, 7, 5,
		11, 12, 14, 15, 14, 15, 9, 8, 9, 14, 5, 6, 8, 6, 5, 12,
	}
	sRight = [64]uint8{
		8, 9, 9, 11, 13, 15, 15, 5, 7, 7, 8, 11, 14, 14, 12, 6,
		9, 13, 15, 7, 12, 8, 9, 11, 7, 7, 12, 7, 6, 15, 13, 11,
		9, 7, 15, 11, 8, 6, 6, 14, 12, 13, 5, 14, 13, 13, 7, 5,
		15, 5, 8, 11, 14, 14, 6, 14, 6, 9, 12, 9, 12, 5, 15, 8,
	}

	kLeft  = [4]uint32{0x00000000, 0x5a827999, 0x6ed9eba1, 0x8f1bbcdc}
	kRight = [4]uint32{0x50a28be6, 0x5c4dd124, 0x6d703ef3, 0x00000000}
)

func f(round int, x, y, z uint32) uint32 {
	switch round {
	case 0:
		return x ^ y ^ z
	case 1:
		return (x & y) | (^x & z)
	case 2:
		return (x | ^y) ^ z
	default:
		return (x & z) | (y &^ z)
	}
}

// Ripemd128 returns the RIPEMD-128 digest of data.
func Ripemd128(data []byte) [Ripemd128Size]byte {
	h := [4]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476}

	// Merkle-Damgard padding with a little-endian bit length, as in MD4.
	msg := make([]byte, 0, len(data)+72)
	msg = append(msg, data...)
	msg = append(msg, 0x80)
	for len(msg)%64 != 56 {
		msg = append(msg, 0)
	}
	msg = binary.LittleEndian.AppendUint64(msg, uint64(len(data))<<3)

	var x [16]uint32
	for chunk := msg; len(chunk) >= 64; chunk = chunk[64:] {
		for i := range x {
			x[i] = binary.LittleEndian.Uint32(chunk[i*4:])
		}

		al, bl, cl, dl := h[0], h[1], h[2], h[3]
		ar, br, cr, dr := h[0], h[1], h[2], h[3]
		for j := 0; j < 64; j++ {
			round := j / 16

			t := bits.RotateLeft32(al+f(round, bl, cl, dl)+x[rLeft[j]]+kLeft[round], int(sLeft[j]))
			al, dl, cl, bl = dl, cl, bl, t

			t = bits.RotateLeft32(ar+f(3-round, br, cr, dr)+x[rRight[j]]+kRight[round], int(sRight[j]))
			ar, dr, cr, br = dr, cr, br, t
		}

		t := h[1] + cl + dr
		h[1] = h[2] + dl + ar
		h[2] = h[3] + al + br
		h[3] = h[0] + bl + cr
		h[0] = t
	}

	var out [Ripemd128Size]byte
	for i, v := range h {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}
