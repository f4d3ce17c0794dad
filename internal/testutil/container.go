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

// Package testutil builds MDX and MDD containers for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"html"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/rasky/go-lzo"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/ianlewis/go-mdict/collation"
	"github.com/ianlewis/go-mdict/internal/codec"
	"github.com/ianlewis/go-mdict/internal/crypt"
)

// Entry is a key and its record.
type Entry struct {
	Key string

	// Value is the record. MDX records are text and are written in the
	// container's encoding followed by a terminator.
	Value []byte

	// SharedWith names an entry written earlier whose record this entry
	// reuses. Value is ignored when it is set.
	SharedWith string
}

// Options configure a test container. The zero value is a version 2.0 MDX
// container with uncompressed UTF-8 blocks holding two keys or records each.
type Options struct {
	// Version is the GeneratedByEngineVersion attribute. Defaults to "2.0".
	Version string

	// MDD writes a resource container.
	MDD bool

	// Encoding is the Encoding attribute of MDX containers. Defaults to
	// "UTF-8".
	Encoding string

	// Compression is used for the key index, key blocks and record blocks.
	Compression codec.Compression

	// KeysPerBlock is the number of keys per key block. Defaults to 2.
	KeysPerBlock int

	// RecordsPerBlock is the number of records per record block. Defaults
	// to 2.
	RecordsPerBlock int

	// Encrypted is the Encrypted attribute.
	Encrypted int

	// RegKey encrypts the key section header when bit 0 of Encrypted is
	// set.
	RegKey []byte

	// KeyCaseSensitive and StripKey are written as Yes or No.
	KeyCaseSensitive bool
	StripKey         bool

	Title       string
	Description string

	// Attrs are written after, and override, the attributes above.
	Attrs map[string]string

	// Unsorted writes the entries in the given order instead of sorting
	// them by the index order.
	Unsorted bool
}

// Span is a byte range of a container.
type Span struct {
	Offset int
	Size   int
}

// Container is an encoded container and the location of its sections.
type Container struct {
	Bytes []byte

	// Entries are the entries in the order they were written.
	Entries []Entry

	Header       Span
	KeySection   Span
	KeyIndex     Span
	KeyBlocks    []Span
	RecordBlocks []Span
}

func (o *Options) version() string {
	if o.Version == "" {
		return "2.0"
	}
	return o.Version
}

func (o *Options) v2() bool {
	return !strings.HasPrefix(o.version(), "1.")
}

func (o *Options) width() int {
	if o.v2() {
		return 8
	}
	return 4
}

func (o *Options) encoding() string {
	if o.Encoding == "" {
		return "UTF-8"
	}
	return o.Encoding
}

func (o *Options) keysPerBlock() int {
	if o.KeysPerBlock < 1 {
		return 2
	}
	return o.KeysPerBlock
}

func (o *Options) recordsPerBlock() int {
	if o.RecordsPerBlock < 1 {
		return 2
	}
	return o.RecordsPerBlock
}

// Mode returns the key order implied by the options.
func (o *Options) Mode() collation.Mode {
	return collation.Mode{
		IgnoreCase:  !o.KeyCaseSensitive,
		IgnorePunct: o.StripKey,
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Attributes returns the header attributes in the order they are written.
func (o *Options) Attributes() [][2]string {
	attrs := [][2]string{
		{"GeneratedByEngineVersion", o.version()},
		{"RequiredEngineVersion", o.version()},
		{"Encrypted", fmt.Sprint(o.Encrypted)},
	}
	if !o.MDD {
		attrs = append(attrs, [2]string{"Encoding", o.encoding()}, [2]string{"Format", "Html"})
	}
	attrs = append(attrs,
		[2]string{"KeyCaseSensitive", yesNo(o.KeyCaseSensitive)},
		[2]string{"StripKey", yesNo(o.StripKey)},
		[2]string{"Title", o.Title},
		[2]string{"Description", o.Description},
	)
	for _, name := range slices.Sorted(maps.Keys(o.Attrs)) {
		i := slices.IndexFunc(attrs, func(a [2]string) bool { return a[0] == name })
		if i >= 0 {
			attrs[i][1] = o.Attrs[name]
			continue
		}
		attrs = append(attrs, [2]string{name, o.Attrs[name]})
	}
	return attrs
}

// MakeHeader encodes a header record. root is Dictionary or Library_Data.
func MakeHeader(t *testing.T, root string, attrs [][2]string) []byte {
	t.Helper()

	var s strings.Builder
	s.WriteString("<" + root)
	for _, a := range attrs {
		fmt.Fprintf(&s, " %s=\"%s\"", a[0], html.EscapeString(a[1]))
	}
	s.WriteString("/>\r\n\x00")

	text := Encode(t, "UTF-16", s.String())
	return MakeRawHeader(text)
}

// MakeRawHeader frames already encoded header text with its length and
// checksum.
func MakeRawHeader(text []byte) []byte {
	//nolint:gosec // test data is small.
	b := binary.BigEndian.AppendUint32(nil, uint32(len(text)))
	b = append(b, text...)
	return binary.LittleEndian.AppendUint32(b, adler32.Checksum(text))
}

// Encode encodes s with the named encoding.
func Encode(t *testing.T, name, s string) []byte {
	t.Helper()

	var enc encoding.Encoding
	switch strings.ToUpper(name) {
	case "", "UTF-8", "UTF8":
		return []byte(s)
	case "UTF-16", "UTF-16LE":
		enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "GBK", "GB2312", "GB18030":
		enc = simplifiedchinese.GB18030
	default:
		var err error
		enc, err = htmlindex.Get(name)
		if err != nil {
			t.Fatalf("htmlindex.Get(%q): %v", name, err)
		}
	}
	b, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encoding %q as %s: %v", s, name, err)
	}
	return b
}

// Frame compresses data and adds a frame header.
func Frame(t *testing.T, c codec.Compression, data []byte) []byte {
	t.Helper()

	b := binary.LittleEndian.AppendUint32(nil, uint32(c))
	b = binary.BigEndian.AppendUint32(b, adler32.Checksum(data))
	switch c {
	case codec.LZO:
		return append(b, lzo.Compress1X(data)...)
	case codec.Zlib:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			t.Fatalf("zlib.Write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("zlib.Close: %v", err)
		}
		return append(b, buf.Bytes()...)
	default:
		return append(b, data...)
	}
}

type builder struct {
	t    *testing.T
	opts *Options
	buf  []byte
}

func (b *builder) number(buf []byte, v int) []byte {
	if b.opts.v2() {
		//nolint:gosec // test data is non-negative.
		return binary.BigEndian.AppendUint64(buf, uint64(v))
	}
	//nolint:gosec // test data is small.
	return binary.BigEndian.AppendUint32(buf, uint32(v))
}

func (b *builder) keyText() string {
	if b.opts.MDD {
		return "UTF-16"
	}
	return b.opts.encoding()
}

func (b *builder) unit() int {
	switch strings.ToUpper(b.keyText()) {
	case "UTF-16", "UTF-16LE":
		return 2
	}
	return 1
}

// MakeContainer encodes entries as a container.
func MakeContainer(t *testing.T, entries []Entry, opts *Options) *Container {
	t.Helper()
	if opts == nil {
		opts = &Options{}
	}
	b := &builder{t: t, opts: opts}

	entries = slices.Clone(entries)
	if !opts.Unsorted {
		mode := opts.Mode()
		slices.SortStableFunc(entries, func(x, y Entry) int {
			return collation.Compare(x.Key, y.Key, mode)
		})
	}
	c := &Container{Entries: entries}

	root := "Dictionary"
	if opts.MDD {
		root = "Library_Data"
	}
	b.buf = MakeHeader(t, root, opts.Attributes())
	c.Header = Span{0, len(b.buf)}

	// Lay out the record stream.
	offsets := make([]int, len(entries))
	byKey := map[string]int{}
	var records [][]byte
	var stream int
	for i, e := range entries {
		if e.SharedWith != "" {
			off, ok := byKey[e.SharedWith]
			if !ok {
				t.Fatalf("entry %q shares unknown record %q", e.Key, e.SharedWith)
			}
			offsets[i] = off
			continue
		}
		r := e.Value
		if !opts.MDD {
			r = append(Encode(t, opts.encoding(), string(e.Value)), make([]byte, b.unit())...)
		}
		offsets[i] = stream
		byKey[e.Key] = stream
		records = append(records, r)
		stream += len(r)
	}

	b.keySection(c, entries, offsets)
	b.recordSection(c, len(entries), records)
	c.Bytes = b.buf
	return c
}

func (b *builder) keySection(c *Container, entries []Entry, offsets []int) {
	opts := b.opts
	unit := b.unit()

	var info, data []byte
	var blocks [][]byte
	for start := 0; start < len(entries); start += opts.keysPerBlock() {
		end := min(start+opts.keysPerBlock(), len(entries))

		var raw []byte
		for i := start; i < end; i++ {
			raw = b.number(raw, offsets[i])
			raw = append(raw, Encode(b.t, b.keyText(), entries[i].Key)...)
			raw = append(raw, make([]byte, unit)...)
		}
		framed := Frame(b.t, opts.Compression, raw)
		blocks = append(blocks, framed)

		info = b.number(info, end-start)
		info = b.indexKey(info, entries[start].Key)
		info = b.indexKey(info, entries[end-1].Key)
		info = b.number(info, len(framed))
		info = b.number(info, len(raw))
	}

	index := info
	if opts.v2() {
		index = Frame(b.t, opts.Compression, info)
		if opts.Encrypted&2 != 0 {
			var err error
			index, err = crypt.EncryptKeyIndex(index)
			if err != nil {
				b.t.Fatalf("EncryptKeyIndex: %v", err)
			}
		}
	}
	for _, blk := range blocks {
		data = append(data, blk...)
	}

	var hdr []byte
	hdr = b.number(hdr, len(blocks))
	hdr = b.number(hdr, len(entries))
	if opts.v2() {
		hdr = b.number(hdr, len(info))
	}
	hdr = b.number(hdr, len(index))
	hdr = b.number(hdr, len(data))
	sum := adler32.Checksum(hdr)
	if opts.Encrypted&1 != 0 {
		var err error
		hdr, err = crypt.Salsa8XOR(hdr, opts.RegKey)
		if err != nil {
			b.t.Fatalf("Salsa8XOR: %v", err)
		}
	}
	if opts.v2() {
		hdr = binary.BigEndian.AppendUint32(hdr, sum)
	}

	start := len(b.buf)
	b.buf = append(b.buf, hdr...)
	c.KeyIndex = Span{len(b.buf), len(index)}
	b.buf = append(b.buf, index...)
	for _, blk := range blocks {
		c.KeyBlocks = append(c.KeyBlocks, Span{len(b.buf), len(blk)})
		b.buf = append(b.buf, blk...)
	}
	c.KeySection = Span{start, len(b.buf) - start}
}

// indexKey appends a first or last key of the key index.
func (b *builder) indexKey(buf []byte, key string) []byte {
	text := Encode(b.t, b.keyText(), key)
	n := len(text) / b.unit()
	if b.opts.v2() {
		//nolint:gosec // test keys are short.
		buf = binary.BigEndian.AppendUint16(buf, uint16(n))
		buf = append(buf, text...)
		return append(buf, make([]byte, b.unit())...)
	}
	//nolint:gosec // test keys are short.
	buf = append(buf, byte(n))
	return append(buf, text...)
}

func (b *builder) recordSection(c *Container, numEntries int, records [][]byte) {
	opts := b.opts

	var info, data []byte
	var blocks [][]byte
	for start := 0; start < len(records); start += opts.recordsPerBlock() {
		end := min(start+opts.recordsPerBlock(), len(records))
		raw := bytes.Join(records[start:end], nil)
		framed := Frame(b.t, opts.Compression, raw)
		blocks = append(blocks, framed)
		info = b.number(info, len(framed))
		info = b.number(info, len(raw))
	}
	for _, blk := range blocks {
		data = append(data, blk...)
	}

	b.buf = b.number(b.buf, len(blocks))
	b.buf = b.number(b.buf, numEntries)
	b.buf = b.number(b.buf, len(info))
	b.buf = b.number(b.buf, len(data))
	b.buf = append(b.buf, info...)
	for _, blk := range blocks {
		c.RecordBlocks = append(c.RecordBlocks, Span{len(b.buf), len(blk)})
		b.buf = append(b.buf, blk...)
	}
}

// RegCode returns the registration code issued to userID for the key that
// encrypts a container's key section header.
func RegCode(t *testing.T, regKey []byte, userID string) []byte {
	t.Helper()

	digest := crypt.Ripemd128([]byte(userID))
	code, err := crypt.Salsa8XOR(regKey, digest[:])
	if err != nil {
		t.Fatalf("Salsa8XOR: %v", err)
	}
	return code
}
