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

// Package record reads the record section of a container.
//
// The record section holds the records of all keys as one logical byte
// stream, split into compressed record blocks. Key entries address records
// by their offset in the stream.
package record

import (
	"fmt"
	"io"

	"github.com/ianlewis/go-mdict/header"
	"github.com/ianlewis/go-mdict/internal/codec"
	"github.com/ianlewis/go-mdict/internal/format"
	"github.com/ianlewis/go-mdict/internal/index"
)

// Block describes one record block.
type Block struct {
	// Offset is the position of the compressed block in the container.
	Offset int64

	// CompressedSize and Size are the sizes of the block before and after
	// decompression.
	CompressedSize int64
	Size           int64

	// Start is the position of the block's first byte in the record stream.
	Start int64
}

// End returns the position just past the block's last byte in the record
// stream.
func (b Block) End() int64 {
	return b.Start + b.Size
}

// Index is the record block index.
type Index struct {
	r       io.ReaderAt
	blocks  []Block
	index   *index.Index[int64]
	entries int64
	size    int64
	end     int64
}

// NewIndex reads the record section starting at off.
func NewIndex(r io.ReaderAt, off int64, flags header.Flags) (*Index, error) {
	width := flags.OffsetWidth
	if width == 0 {
		width = 8
	}

	hdr, err := format.ReadAt(r, off, int64(4*width))
	if err != nil {
		return nil, corrupt(err, "reading record section header")
	}
	c := format.NewCursor(hdr)
	numBlocks := c.Size(width)
	entries := c.Offset64(width)
	infoSize := c.Size(width)
	dataSize := c.Offset64(width)
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("%w: record section header: %w", format.ErrHeaderCorrupt, err)
	}
	if infoSize != numBlocks*2*int64(width) {
		return nil, fmt.Errorf("%w: record index is %d bytes for %d blocks",
			format.ErrHeaderCorrupt, infoSize, numBlocks)
	}

	infoOff := off + int64(4*width)
	info, err := format.ReadAt(r, infoOff, infoSize)
	if err != nil {
		return nil, corrupt(err, "reading record index")
	}

	x := &Index{
		r:       r,
		blocks:  make([]Block, 0, numBlocks),
		entries: entries,
	}
	c = format.NewCursor(info)
	pos := infoOff + infoSize
	for range numBlocks {
		b := Block{
			Offset:         pos,
			CompressedSize: c.Size(width),
			Size:           c.Size(width),
			Start:          x.size,
		}
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("%w: record index: %w", format.ErrHeaderCorrupt, err)
		}
		x.blocks = append(x.blocks, b)
		pos += b.CompressedSize
		x.size += b.Size
	}
	if compressed := pos - (infoOff + infoSize); compressed != dataSize {
		return nil, fmt.Errorf("%w: record blocks total %d bytes, header says %d",
			format.ErrHeaderCorrupt, compressed, dataSize)
	}
	x.end = pos

	spans := make([]index.Span[int64], len(x.blocks))
	for i, b := range x.blocks {
		spans[i] = index.Span[int64]{Lo: b.Start, Hi: b.End() - 1}
	}
	x.index = index.New(spans, func(a, b int64) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
	return x, nil
}

func corrupt(err error, what string) error {
	if format.IsShortRead(err) {
		return fmt.Errorf("%w: %s: %w", format.ErrHeaderCorrupt, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// Len returns the number of record blocks.
func (x *Index) Len() int {
	return len(x.blocks)
}

// Block returns the descriptor of block i.
func (x *Index) Block(i int) Block {
	return x.blocks[i]
}

// Entries returns the number of entries declared by the record section.
func (x *Index) Entries() int64 {
	return x.entries
}

// Size returns the length of the record stream.
func (x *Index) Size() int64 {
	return x.size
}

// End returns the offset just past the record section.
func (x *Index) End() int64 {
	return x.end
}

// Find returns the block holding the record stream byte at offset.
func (x *Index) Find(offset int64) (int, bool) {
	if offset < 0 || offset >= x.size {
		return 0, false
	}
	i, j := x.index.Search(offset)
	if i >= j {
		return 0, false
	}
	return i, true
}

// Decode reads, validates and decompresses block i.
func (x *Index) Decode(i int) ([]byte, error) {
	if i < 0 || i >= len(x.blocks) {
		return nil, fmt.Errorf("record block %d out of range [0, %d)", i, len(x.blocks))
	}
	b := x.blocks[i]

	raw, err := format.ReadAt(x.r, b.Offset, b.CompressedSize)
	if err != nil {
		if format.IsShortRead(err) {
			return nil, fmt.Errorf("%w: record block %d: %w", format.ErrTruncatedBlock, i, err)
		}
		return nil, fmt.Errorf("record block %d: %w", i, err)
	}
	data, err := codec.Decode(raw, b.Size)
	if err != nil {
		return nil, fmt.Errorf("record block %d: %w", i, err)
	}
	return data, nil
}
