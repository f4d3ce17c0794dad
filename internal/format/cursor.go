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

package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxBlockSize bounds every size read from the container before it is used
// to allocate memory.
const MaxBlockSize = 1 << 28

var errShortBuffer = errors.New("short buffer")

// Cursor reads big-endian fields from a byte slice. The first error is
// sticky; every read after it returns zero values.
type Cursor struct {
	b   []byte
	off int
	err error
}

// NewCursor returns a Cursor positioned at the start of b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{b: b}
}

// Err returns the first error encountered.
func (c *Cursor) Err() error {
	return c.err
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int {
	return len(c.b) - c.off
}

// Offset returns the number of bytes read so far.
func (c *Cursor) Offset() int {
	return c.off
}

// Bytes returns the next n bytes. The returned slice aliases the buffer.
func (c *Cursor) Bytes(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || n > c.Len() {
		c.err = fmt.Errorf("%w: need %d bytes at %d, have %d", errShortBuffer, n, c.off, c.Len())
		return nil
	}
	b := c.b[c.off : c.off+n]
	c.off += n
	return b
}

// Uint reads a big-endian unsigned integer of the given width in bytes.
// Valid widths are 1, 2, 4 and 8.
func (c *Cursor) Uint(width int) uint64 {
	b := c.Bytes(width)
	if b == nil {
		return 0
	}
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	case 8:
		return binary.BigEndian.Uint64(b)
	}
	c.err = fmt.Errorf("invalid field width: %d", width)
	return 0
}

// Size reads an unsigned integer of the given width and checks that it can
// be used as a length.
func (c *Cursor) Size(width int) int64 {
	v := c.Uint(width)
	if c.err == nil && v > MaxBlockSize {
		c.err = fmt.Errorf("size %d exceeds limit %d", v, MaxBlockSize)
		return 0
	}
	//nolint:gosec // bounded above.
	return int64(v)
}

// Offset64 reads an unsigned integer of the given width as a signed stream
// offset.
func (c *Cursor) Offset64(width int) int64 {
	v := c.Uint(width)
	if c.err == nil && v > math.MaxInt64 {
		c.err = fmt.Errorf("offset %d too large", v)
		return 0
	}
	//nolint:gosec // bounded above.
	return int64(v)
}

// Terminated reads up to and including the next terminator made of unit zero
// bytes, stepping in unit sized steps. The terminator is not returned.
func (c *Cursor) Terminated(unit int) []byte {
	if c.err != nil {
		return nil
	}
	rest := c.b[c.off:]
	for i := 0; i+unit <= len(rest); i += unit {
		if isZero(rest[i : i+unit]) {
			c.off += i + unit
			return rest[:i]
		}
	}
	c.err = fmt.Errorf("%w: unterminated text at %d", errShortBuffer, c.off)
	return nil
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// ReadAt reads exactly n bytes at off from r. Short reads are reported as
// [io.ErrUnexpectedEOF] wrapped in [ErrIO].
func ReadAt(r io.ReaderAt, off, n int64) ([]byte, error) {
	if n < 0 || n > MaxBlockSize {
		return nil, fmt.Errorf("%w: read of %d bytes exceeds limit", ErrHeaderCorrupt, n)
	}
	b := make([]byte, n)
	read, err := r.ReadAt(b, off)
	if int64(read) == n {
		// io.ReaderAt may return io.EOF alongside a full read.
		return b, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("%w: reading %d bytes at %d: %w", ErrIO, n, off, err)
}

// IsShortRead reports whether err was caused by reading past the end of the
// source.
func IsShortRead(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF)
}
