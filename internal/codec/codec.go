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

// Package codec decodes the framed, compressed blocks used for the key index,
// key blocks and record blocks.
//
// Every block starts with an 8 byte frame header:
//  1. The compression type: a 32 bit little-endian integer.
//  2. The Adler-32 checksum of the decompressed data: a 32 bit big-endian
//     integer.
//
// The compressed payload follows the frame header.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/rasky/go-lzo"

	"github.com/ianlewis/go-mdict/internal/format"
)

// HeaderSize is the size of the frame header preceding each payload.
const HeaderSize = 8

// Compression is the compression type of a block.
type Compression uint32

const (
	// None is an uncompressed block.
	None Compression = iota

	// LZO is a block compressed with LZO1X.
	LZO

	// Zlib is a block compressed with zlib (deflate in a zlib wrapper).
	Zlib
)

// String implements [fmt.Stringer].
func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case LZO:
		return "lzo"
	case Zlib:
		return "zlib"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(c))
	}
}

// Frame is a parsed frame header.
type Frame struct {
	Compression Compression
	Checksum    uint32
}

// ParseFrame parses the frame header at the start of b.
func ParseFrame(b []byte) (Frame, error) {
	if len(b) < HeaderSize {
		return Frame{}, fmt.Errorf("%w: %d byte block has no frame header", format.ErrTruncatedBlock, len(b))
	}
	return Frame{
		Compression: Compression(binary.LittleEndian.Uint32(b[0:4])),
		Checksum:    binary.BigEndian.Uint32(b[4:8]),
	}, nil
}

// Decode decompresses the framed block b and validates it. size is the
// decompressed size recorded in the block's descriptor. The returned slice
// never aliases b.
func Decode(b []byte, size int64) ([]byte, error) {
	frame, err := ParseFrame(b)
	if err != nil {
		return nil, err
	}
	if size < 0 || size > format.MaxBlockSize {
		return nil, fmt.Errorf("%w: decompressed size %d out of range", format.ErrHeaderCorrupt, size)
	}
	payload := b[HeaderSize:]

	var out []byte
	switch frame.Compression {
	case None:
		out = bytes.Clone(payload)
	case LZO:
		out, err = unlzo(payload, size)
		if err != nil {
			return nil, err
		}
	case Zlib:
		out, err = inflate(payload, size)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %v", format.ErrUnsupportedCompression, frame.Compression)
	}

	if int64(len(out)) != size {
		// A compressed payload that inflates to the wrong size is damaged.
		kind := format.ErrChecksumMismatch
		if frame.Compression == None {
			kind = format.ErrTruncatedBlock
		}
		return nil, fmt.Errorf("%w: %v block decompressed to %d bytes, want %d",
			kind, frame.Compression, len(out), size)
	}
	if sum := adler32.Checksum(out); sum != frame.Checksum {
		return nil, fmt.Errorf("%w: adler32 %08x, want %08x", format.ErrChecksumMismatch, sum, frame.Checksum)
	}
	return out, nil
}

// inflate decompresses a zlib payload. The payload was read in full so any
// stream error means the data is damaged.
func inflate(payload []byte, size int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib: %w", format.ErrChecksumMismatch, err)
	}
	defer zr.Close()

	// Read one byte past the expected size so oversized output is detected.
	out, err := io.ReadAll(io.LimitReader(zr, size+1))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib: %w", format.ErrChecksumMismatch, err)
	}
	return out, nil
}

// unlzo decompresses an LZO1X payload. The decoder indexes its output
// directly, so a panic on hostile input is reported as damaged data.
func unlzo(payload []byte, size int64) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: lzo: %v", format.ErrChecksumMismatch, r)
		}
	}()

	//nolint:gosec // size is bounded by Decode.
	out, err = lzo.Decompress1X(bytes.NewReader(payload), len(payload), int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: lzo: %w", format.ErrChecksumMismatch, err)
	}
	return out, nil
}
