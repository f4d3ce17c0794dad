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

// Package keyblock reads the key section of a container: the key index and
// the key blocks it describes.
//
// The key section starts with a header of block and entry counts and sizes,
// followed by the key index and then the key blocks. Each key index record
// holds the entry count, first key, last key and sizes of one key block.
package keyblock

import (
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"io"
	"log/slog"

	"github.com/ianlewis/go-mdict/collation"
	"github.com/ianlewis/go-mdict/header"
	"github.com/ianlewis/go-mdict/internal/codec"
	"github.com/ianlewis/go-mdict/internal/crypt"
	"github.com/ianlewis/go-mdict/internal/format"
	"github.com/ianlewis/go-mdict/internal/index"
)

// Options are options for reading the key section.
type Options struct {
	// Flags are the layout flags from the container header.
	Flags header.Flags

	// Text is the key encoding. Defaults to UTF-8.
	Text *format.Text

	// Mode is the order of the keys in the container.
	Mode collation.Mode

	// RegKey decrypts the section header when it is encrypted.
	RegKey []byte

	// Logger receives warnings about non-conforming containers.
	Logger *slog.Logger
}

// DefaultOptions are the default options for a version 2 container.
var DefaultOptions = &Options{
	Flags: header.Flags{
		Version:     2.0,
		OffsetWidth: 8,
	},
	Text: format.UTF8,
}

// Block describes one key block.
type Block struct {
	// Entries is the number of entries in the block.
	Entries int

	// First and Last are the first and last keys of the block as stored.
	First string
	Last  string

	// Offset is the position of the compressed block in the container.
	Offset int64

	// CompressedSize and Size are the sizes of the block before and after
	// decompression.
	CompressedSize int64
	Size           int64
}

// Index is the key index.
type Index struct {
	r      io.ReaderAt
	blocks []Block
	index  *index.Index[string]

	mode    collation.Mode
	text    *format.Text
	width   int
	entries int64
	end     int64
	sorted  bool
}

// NewIndex reads the key section starting at off.
func NewIndex(r io.ReaderAt, off int64, opts *Options) (*Index, error) {
	if opts == nil {
		opts = DefaultOptions
	}
	x := &Index{
		r:     r,
		mode:  opts.Mode,
		text:  opts.Text,
		width: opts.Flags.OffsetWidth,
	}
	if x.text == nil {
		x.text = format.UTF8
	}
	if x.width == 0 {
		x.width = DefaultOptions.Flags.OffsetWidth
	}
	v2 := opts.Flags.V2()

	// Section header.
	fields := 4
	if v2 {
		fields = 5
	}
	hdrSize := int64(fields * x.width)
	sumSize := int64(0)
	if v2 {
		sumSize = 4
	}
	hdr, err := format.ReadAt(r, off, hdrSize+sumSize)
	if err != nil {
		return nil, corrupt(err, "reading key section header")
	}
	fieldBytes := hdr[:hdrSize]
	if opts.Flags.Encryption.Has(header.EncryptIndexHeader) {
		if len(opts.RegKey) == 0 {
			return nil, fmt.Errorf("%w: key section header is encrypted and no registration code was given",
				format.ErrUnsupportedEncryption)
		}
		fieldBytes, err = crypt.Salsa8XOR(fieldBytes, opts.RegKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", format.ErrUnsupportedEncryption, err)
		}
	}
	if v2 {
		want := binary.BigEndian.Uint32(hdr[hdrSize:])
		if got := adler32.Checksum(fieldBytes); got != want {
			if opts.Flags.Encryption.Has(header.EncryptIndexHeader) {
				return nil, fmt.Errorf("%w: key section header adler32 %08x, want %08x (wrong registration code?)",
					format.ErrHeaderCorrupt, got, want)
			}
			return nil, fmt.Errorf("%w: key section header adler32 %08x, want %08x",
				format.ErrHeaderCorrupt, got, want)
		}
	}

	c := format.NewCursor(fieldBytes)
	numBlocks := c.Size(x.width)
	x.entries = c.Offset64(x.width)
	var infoDecompSize int64
	if v2 {
		infoDecompSize = c.Size(x.width)
	}
	infoSize := c.Size(x.width)
	dataSize := c.Offset64(x.width)
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("%w: key section header: %w", format.ErrHeaderCorrupt, err)
	}

	// Key index.
	infoOff := off + hdrSize + sumSize
	info, err := format.ReadAt(r, infoOff, infoSize)
	if err != nil {
		return nil, corrupt(err, "reading key index")
	}
	if v2 {
		if opts.Flags.Encryption.Has(header.EncryptKeyIndex) {
			info, err = crypt.DecryptKeyIndex(info)
			if err != nil {
				return nil, fmt.Errorf("%w: key index: %w", format.ErrHeaderCorrupt, err)
			}
		}
		info, err = codec.Decode(info, infoDecompSize)
		if err != nil {
			return nil, fmt.Errorf("key index: %w", err)
		}
	}

	dataOff := infoOff + infoSize
	if err := x.parseBlocks(info, v2, dataOff); err != nil {
		return nil, err
	}
	if int64(len(x.blocks)) != numBlocks {
		return nil, fmt.Errorf("%w: key index has %d blocks, header says %d",
			format.ErrHeaderCorrupt, len(x.blocks), numBlocks)
	}

	var entries, compressed int64
	for _, b := range x.blocks {
		entries += int64(b.Entries)
		compressed += b.CompressedSize
	}
	if entries != x.entries {
		return nil, fmt.Errorf("%w: key index has %d entries, header says %d",
			format.ErrHeaderCorrupt, entries, x.entries)
	}
	if compressed != dataSize {
		return nil, fmt.Errorf("%w: key blocks total %d bytes, header says %d",
			format.ErrHeaderCorrupt, compressed, dataSize)
	}
	x.end = dataOff + dataSize

	x.buildIndex(opts.Logger)
	return x, nil
}

func (x *Index) parseBlocks(info []byte, v2 bool, dataOff int64) error {
	lenWidth, term := 1, 0
	if v2 {
		lenWidth, term = 2, 1
	}
	unit := x.text.Unit()

	c := format.NewCursor(info)
	off := dataOff
	for c.Len() > 0 {
		var b Block
		n := c.Size(x.width)
		//nolint:gosec // bounded by Size.
		b.Entries = int(n)

		keys := [2]string{}
		for k := range keys {
			//nolint:gosec // at most 2 bytes.
			l := int(c.Uint(lenWidth))
			raw := c.Bytes((l + term) * unit)
			if c.Err() != nil {
				break
			}
			s, err := x.text.Decode(raw[:l*unit])
			if err != nil {
				return fmt.Errorf("%w: key index block %d: %w", format.ErrHeaderCorrupt, len(x.blocks), err)
			}
			keys[k] = s
		}
		b.First, b.Last = keys[0], keys[1]
		b.CompressedSize = c.Size(x.width)
		b.Size = c.Size(x.width)
		if err := c.Err(); err != nil {
			return fmt.Errorf("%w: key index block %d: %w", format.ErrHeaderCorrupt, len(x.blocks), err)
		}
		if b.Entries == 0 {
			return fmt.Errorf("%w: key index block %d is empty", format.ErrHeaderCorrupt, len(x.blocks))
		}

		b.Offset = off
		off += b.CompressedSize
		x.blocks = append(x.blocks, b)
	}
	return nil
}

// buildIndex builds the range index over the folded block bounds and checks
// that the blocks are ordered.
func (x *Index) buildIndex(logger *slog.Logger) {
	spans := make([]index.Span[string], len(x.blocks))
	for i, b := range x.blocks {
		spans[i] = index.Span[string]{
			Lo: collation.Key(b.First, x.mode),
			Hi: collation.Key(b.Last, x.mode),
		}
	}
	x.index = index.New(spans, func(a, b string) int {
		return collation.CompareKeys(a, b, x.mode)
	})

	bad := x.index.Unsorted()
	for i, s := range spans {
		if collation.CompareKeys(s.Lo, s.Hi, x.mode) > 0 && (bad < 0 || i < bad) {
			bad = i
		}
	}
	x.sorted = bad < 0
	if !x.sorted && logger != nil {
		logger.Warn("key index is not sorted; scanning neighboring blocks",
			slog.Int("block", bad),
			slog.String("first", x.blocks[bad].First),
			slog.String("last", x.blocks[bad].Last),
			slog.String("mode", x.mode.String()),
			slog.Any("err", format.ErrIndexUnsorted),
		)
	}
}

func corrupt(err error, what string) error {
	if format.IsShortRead(err) {
		return fmt.Errorf("%w: %s: %w", format.ErrHeaderCorrupt, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// Len returns the number of key blocks.
func (x *Index) Len() int {
	return len(x.blocks)
}

// Block returns the descriptor of block i.
func (x *Index) Block(i int) Block {
	return x.blocks[i]
}

// Blocks returns the block descriptors in container order.
func (x *Index) Blocks() []Block {
	return append([]Block(nil), x.blocks...)
}

// Entries returns the total number of entries.
func (x *Index) Entries() int64 {
	return x.entries
}

// End returns the offset just past the key section. The record section
// starts here.
func (x *Index) End() int64 {
	return x.end
}

// Mode returns the order of the keys.
func (x *Index) Mode() collation.Mode {
	return x.mode
}

// Sorted reports whether the block bounds are ordered under Mode. Searches of
// an unsorted index include the neighbors of each candidate range.
func (x *Index) Sorted() bool {
	return x.sorted
}

// Search returns the numbers of the blocks that may hold keys equal to query
// under m, in container order. When equality under m does not imply equality
// under the index order every block is returned.
func (x *Index) Search(query string, m collation.Mode) []int {
	if !m.Refines(x.mode) {
		return x.all()
	}
	i, j := x.index.Search(collation.Key(query, x.mode))
	return x.expand(i, j)
}

// LowerBound returns the number of the first block that may hold keys
// beginning with prefix under m. Every block from it on must be scanned
// until a block's first key sorts after the prefix.
func (x *Index) LowerBound(prefix string, m collation.Mode) int {
	if !m.Refines(x.mode) || !x.sorted {
		return 0
	}
	folded := collation.Key(prefix, x.mode)
	i, _ := x.index.Search(folded)
	return i
}

// After reports whether every key of block i sorts after all keys beginning
// with prefix under m. Prefix scans stop at such a block.
func (x *Index) After(i int, prefix string, m collation.Mode) bool {
	if !m.Refines(x.mode) || !x.sorted {
		return false
	}
	folded := collation.Key(prefix, x.mode)
	first := collation.Key(x.blocks[i].First, x.mode)
	return collation.CompareKeys(first, folded, x.mode) > 0 && !hasPrefix(first, folded)
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// expand adds the neighbors of the candidate range [i, j) when the index is
// unsorted. An empty range has both blocks around the insertion point as
// neighbors.
func (x *Index) expand(i, j int) []int {
	if !x.sorted {
		j = min(max(j, i+1)+1, len(x.blocks))
		i = max(i-1, 0)
	}
	if i >= j {
		return nil
	}
	out := make([]int, 0, j-i)
	for n := i; n < j; n++ {
		out = append(out, n)
	}
	return out
}

func (x *Index) all() []int {
	out := make([]int, len(x.blocks))
	for i := range out {
		out[i] = i
	}
	return out
}
