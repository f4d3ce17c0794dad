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

package keyblock

import (
	"fmt"

	"github.com/ianlewis/go-mdict/internal/codec"
	"github.com/ianlewis/go-mdict/internal/format"
)

// Entry is a key block entry.
type Entry struct {
	// Key is the key as stored.
	Key string

	// Offset is the position of the entry's record in the record stream.
	Offset int64
}

// Decode reads, validates and parses block i. A block is only returned when
// its checksum matches and it holds exactly the number of entries given by
// its descriptor.
func (x *Index) Decode(i int) ([]Entry, error) {
	if i < 0 || i >= len(x.blocks) {
		return nil, fmt.Errorf("key block %d out of range [0, %d)", i, len(x.blocks))
	}
	b := x.blocks[i]

	raw, err := format.ReadAt(x.r, b.Offset, b.CompressedSize)
	if err != nil {
		if format.IsShortRead(err) {
			return nil, fmt.Errorf("%w: key block %d: %w", format.ErrTruncatedBlock, i, err)
		}
		return nil, fmt.Errorf("key block %d: %w", i, err)
	}
	data, err := codec.Decode(raw, b.Size)
	if err != nil {
		return nil, fmt.Errorf("key block %d: %w", i, err)
	}

	entries, err := x.parseEntries(data, b.Entries)
	if err != nil {
		return nil, fmt.Errorf("key block %d: %w", i, err)
	}
	return entries, nil
}

func (x *Index) parseEntries(data []byte, n int) ([]Entry, error) {
	unit := x.text.Unit()
	// Each entry takes at least an offset and a terminator.
	entries := make([]Entry, 0, min(n, len(data)/(x.width+unit)))

	c := format.NewCursor(data)
	for c.Len() > 0 && len(entries) < n {
		off := c.Offset64(x.width)
		raw := c.Terminated(unit)
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", format.ErrTruncatedBlock, len(entries), err)
		}
		key, err := x.text.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(entries), err)
		}
		entries = append(entries, Entry{Key: key, Offset: off})
	}

	if len(entries) != n || c.Len() != 0 {
		return nil, fmt.Errorf("%w: decoded %d entries with %d bytes left, want %d entries",
			format.ErrTruncatedBlock, len(entries), c.Len(), n)
	}
	return entries, nil
}
