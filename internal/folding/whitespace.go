// Copyright 2025 Ian Lewis
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

package folding

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// SpaceFolder trims whitespace from both ends of the input. Runs of internal
// whitespace become a single ASCII space, or nothing when Drop is set.
type SpaceFolder struct {
	// Drop removes internal whitespace runs instead of collapsing them.
	Drop bool

	// seen is set once a non-space rune has been written.
	seen bool

	// pending is set while a run of whitespace after the first word is being
	// skipped. The run is only emitted if another non-space rune follows.
	pending bool
}

// Transform implements [transform.Transformer.Transform].
func (f *SpaceFolder) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	nDst, nSrc := 0, 0
	for nSrc < len(src) {
		r, n := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}

		if unicode.IsSpace(r) {
			f.pending = f.seen
			nSrc += n
			continue
		}

		// RuneError is written as three bytes even when n is 1.
		need := utf8.RuneLen(r)
		if f.pending && !f.Drop {
			need++
		}
		if nDst+need > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		if f.pending && !f.Drop {
			dst[nDst] = ' '
			nDst++
		}
		f.pending = false
		f.seen = true
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc += n
	}
	return nDst, nSrc, nil
}

// Reset implements [transform.Transformer.Reset].
func (f *SpaceFolder) Reset() {
	*f = SpaceFolder{Drop: f.Drop}
}
