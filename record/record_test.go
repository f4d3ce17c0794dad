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

package record_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ianlewis/go-mdict/header"
	"github.com/ianlewis/go-mdict/internal/codec"
	"github.com/ianlewis/go-mdict/internal/format"
	"github.com/ianlewis/go-mdict/internal/testutil"
	"github.com/ianlewis/go-mdict/record"
)

var entries = []testutil.Entry{
	{Key: "hoge", Value: []byte("hoge definition")},
	{Key: "fuga", Value: []byte("fuga")},
	{Key: "pico", Value: []byte("pico pico")},
	{Key: "piyo", Value: []byte("piyo!")},
	{Key: "foo", Value: []byte("foo bar baz")},
}

func newIndex(t *testing.T, c *testutil.Container, b []byte) (*record.Index, error) {
	t.Helper()

	h, err := header.New(bytes.NewReader(c.Bytes))
	if err != nil {
		t.Fatalf("header.New: %v", err)
	}
	off := c.KeySection.Offset + c.KeySection.Size
	return record.NewIndex(bytes.NewReader(b), int64(off), h.Flags())
}

// stream returns the record stream of a MDX container with UTF-8 records.
func stream(c *testutil.Container) []byte {
	var b []byte
	for _, e := range c.Entries {
		b = append(b, e.Value...)
		b = append(b, 0)
	}
	return b
}

func TestIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts *testutil.Options
	}{
		{
			name: "v2 uncompressed",
			opts: &testutil.Options{},
		},
		{
			name: "v2 zlib",
			opts: &testutil.Options{Compression: codec.Zlib, RecordsPerBlock: 3},
		},
		{
			name: "v2 lzo",
			opts: &testutil.Options{Compression: codec.LZO, RecordsPerBlock: 1},
		},
		{
			name: "v1",
			opts: &testutil.Options{Version: "1.2", Compression: codec.Zlib},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			c := testutil.MakeContainer(t, entries, test.opts)
			x, err := newIndex(t, c, c.Bytes)
			if err != nil {
				t.Fatalf("NewIndex: %v", err)
			}

			want := stream(c)
			if diff := cmp.Diff(int64(len(want)), x.Size()); diff != "" {
				t.Errorf("Size (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(int64(len(entries)), x.Entries()); diff != "" {
				t.Errorf("Entries (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(len(c.RecordBlocks), x.Len()); diff != "" {
				t.Errorf("Len (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(int64(len(c.Bytes)), x.End()); diff != "" {
				t.Errorf("End (-want, +got):\n%s", diff)
			}

			var got []byte
			for i := range x.Len() {
				b := x.Block(i)
				if diff := cmp.Diff(int64(len(got)), b.Start); diff != "" {
					t.Errorf("block %d Start (-want, +got):\n%s", i, diff)
				}
				data, err := x.Decode(i)
				if err != nil {
					t.Fatalf("Decode(%d): %v", i, err)
				}
				got = append(got, data...)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("record stream (-want, +got):\n%s", diff)
			}

			// Every byte of the stream is found in the block that holds it.
			for off := range int64(len(want)) {
				i, ok := x.Find(off)
				if !ok {
					t.Fatalf("Find(%d): not found", off)
				}
				if b := x.Block(i); off < b.Start || off >= b.End() {
					t.Fatalf("Find(%d): block %d holds [%d, %d)", off, i, b.Start, b.End())
				}
			}
			for _, off := range []int64{-1, int64(len(want))} {
				if _, ok := x.Find(off); ok {
					t.Errorf("Find(%d): found", off)
				}
			}
		})
	}
}

func TestIndex_errors(t *testing.T) {
	t.Parallel()

	opts := &testutil.Options{Compression: codec.Zlib}

	t.Run("truncated header", func(t *testing.T) {
		t.Parallel()

		c := testutil.MakeContainer(t, entries, opts)
		end := c.KeySection.Offset + c.KeySection.Size
		_, err := newIndex(t, c, c.Bytes[:end+12])
		if diff := cmp.Diff(format.ErrHeaderCorrupt, err, cmpopts.EquateErrors()); diff != "" {
			t.Fatalf("NewIndex error (-want, +got):\n%s", diff)
		}
	})

	t.Run("data size", func(t *testing.T) {
		t.Parallel()

		c := testutil.MakeContainer(t, entries, opts)
		end := c.KeySection.Offset + c.KeySection.Size
		// The last byte of the data size field.
		c.Bytes[end+31]++
		_, err := newIndex(t, c, c.Bytes)
		if diff := cmp.Diff(format.ErrHeaderCorrupt, err, cmpopts.EquateErrors()); diff != "" {
			t.Fatalf("NewIndex error (-want, +got):\n%s", diff)
		}
	})

	t.Run("flipped block", func(t *testing.T) {
		t.Parallel()

		c := testutil.MakeContainer(t, entries, opts)
		c.Bytes[c.RecordBlocks[1].Offset+codec.HeaderSize+3] ^= 0x01
		x, err := newIndex(t, c, c.Bytes)
		if err != nil {
			t.Fatalf("NewIndex: %v", err)
		}
		if _, err := x.Decode(0); err != nil {
			t.Fatalf("Decode(0): %v", err)
		}
		_, err = x.Decode(1)
		if diff := cmp.Diff(format.ErrChecksumMismatch, err, cmpopts.EquateErrors()); diff != "" {
			t.Fatalf("Decode error (-want, +got):\n%s", diff)
		}
	})

	t.Run("truncated block", func(t *testing.T) {
		t.Parallel()

		c := testutil.MakeContainer(t, entries, opts)
		x, err := newIndex(t, c, c.Bytes[:len(c.Bytes)-1])
		if err != nil {
			t.Fatalf("NewIndex: %v", err)
		}
		_, err = x.Decode(x.Len() - 1)
		if diff := cmp.Diff(format.ErrTruncatedBlock, err, cmpopts.EquateErrors()); diff != "" {
			t.Fatalf("Decode error (-want, +got):\n%s", diff)
		}
	})
}
