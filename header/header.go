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

// Package header parses the metadata record at the start of a MDX or MDD
// container.
//
// The record is laid out as follows:
//  1. The length N of the attribute text: a 32 bit big-endian integer.
//  2. N bytes of attribute text, usually UTF-16LE, of the form
//     `<Dictionary Name="value" .../>` for MDX containers or
//     `<Library_Data Name="value" .../>` for MDD containers.
//  3. The Adler-32 checksum of the attribute text: a 32 bit little-endian
//     integer.
package header

import (
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"html"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/ianlewis/go-mdict/internal/format"
)

// MaxSize is the largest attribute text accepted.
const MaxSize = 1 << 20

var (
	rootRegex = regexp.MustCompile(`(?s)^<(Dictionary|Library_Data)\b(.*?)/?>$`)
	attrRegex = regexp.MustCompile(`(?s)(\w+)\s*=\s*"(.*?)"`)
)

// Kind is the kind of container.
type Kind int

const (
	// MDX is a dictionary container. Records are text in the declared
	// encoding.
	MDX Kind = iota

	// MDD is a resource container. Keys are resource paths in UTF-16 and
	// records are raw bytes.
	MDD
)

// String implements [fmt.Stringer].
func (k Kind) String() string {
	if k == MDD {
		return "mdd"
	}
	return "mdx"
}

// Encryption is the set of encrypted sections. It is a bit set.
type Encryption uint8

const (
	// EncryptIndexHeader marks the key section header as encrypted with a key
	// derived from a registration code.
	EncryptIndexHeader Encryption = 1 << iota

	// EncryptKeyIndex marks the key index block as obfuscated.
	EncryptKeyIndex
)

// Has reports whether all bits of f are set.
func (e Encryption) Has(f Encryption) bool {
	return e&f == f
}

// String implements [fmt.Stringer].
func (e Encryption) String() string {
	switch e {
	case 0:
		return "none"
	case EncryptIndexHeader:
		return "index-header"
	case EncryptKeyIndex:
		return "key-index"
	case EncryptIndexHeader | EncryptKeyIndex:
		return "index-header,key-index"
	}
	return fmt.Sprintf("unknown(%d)", uint8(e))
}

// Flags describe the binary layout of the sections following the header.
type Flags struct {
	// Kind is the container kind.
	Kind Kind

	// Version is the engine version that generated the container.
	Version float64

	// Encryption is the set of encrypted sections.
	Encryption Encryption

	// OffsetWidth is the width in bytes of numbers in the key and record
	// sections. It is 8 for version 2 containers and 4 before that.
	OffsetWidth int
}

// V2 reports whether the container uses the version 2 layout.
func (f Flags) V2() bool {
	return f.Version >= 2.0
}

// Meta is the descriptive metadata of a container.
type Meta struct {
	Title         string
	Description   string
	Encoding      string
	EngineVersion string
	StyleSheet    string
	Format        string
	CreationDate  string
	RegisterBy    string

	// SourceLanguage and TargetLanguage are [language.Und] when not declared.
	SourceLanguage language.Tag
	TargetLanguage language.Tag

	// KeyCaseSensitive is true when keys are ordered case sensitively.
	KeyCaseSensitive bool

	// StripKey is true when keys are ordered ignoring punctuation and
	// whitespace.
	StripKey bool
}

// Header is a parsed container header.
type Header struct {
	attrs map[string]string
	meta  Meta
	flags Flags
	text  *format.Text
	size  int64
}

// New reads the header at the start of r.
func New(r io.ReaderAt) (*Header, error) {
	prefix, err := format.ReadAt(r, 0, 4)
	if err != nil {
		return nil, shortRead(err, "reading header length")
	}
	n := int64(binary.BigEndian.Uint32(prefix))
	if n > MaxSize {
		return nil, fmt.Errorf("%w: header length %d exceeds limit", format.ErrHeaderCorrupt, n)
	}

	b, err := format.ReadAt(r, 4, n+4)
	if err != nil {
		return nil, shortRead(err, "reading header")
	}
	raw, sum := b[:n], binary.LittleEndian.Uint32(b[n:])
	if got := adler32.Checksum(raw); got != sum {
		return nil, fmt.Errorf("%w: header adler32 %08x, want %08x", format.ErrHeaderCorrupt, got, sum)
	}

	s, err := decodeText(raw)
	if err != nil {
		return nil, err
	}
	h, err := parse(s)
	if err != nil {
		return nil, err
	}
	h.size = 4 + n + 4
	return h, nil
}

func shortRead(err error, what string) error {
	if format.IsShortRead(err) {
		return fmt.Errorf("%w: %s: %w", format.ErrHeaderCorrupt, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// decodeText decodes the attribute text. It is UTF-16LE in conforming
// containers; some tools write UTF-8.
func decodeText(raw []byte) (string, error) {
	if len(raw) >= 2 && raw[0] == '<' && raw[1] == 0 {
		s, err := format.UTF16.Decode(raw[:len(raw)&^1])
		if err == nil {
			return strings.TrimRight(s, "\x00\r\n\t "), nil
		}
	}
	s, err := format.UTF8.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("%w: header text is neither UTF-16LE nor UTF-8", format.ErrHeaderCorrupt)
	}
	return strings.TrimRight(s, "\x00\r\n\t "), nil
}

func parse(s string) (*Header, error) {
	m := rootRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: malformed header element", format.ErrHeaderCorrupt)
	}

	h := &Header{
		attrs: map[string]string{},
	}
	if m[1] == "Library_Data" {
		h.flags.Kind = MDD
	}

	if rest := strings.TrimSpace(attrRegex.ReplaceAllString(m[2], "")); rest != "" {
		return nil, fmt.Errorf("%w: malformed header attributes near %q", format.ErrHeaderCorrupt, truncate(rest, 16))
	}
	for _, a := range attrRegex.FindAllStringSubmatch(m[2], -1) {
		h.attrs[a[1]] = html.UnescapeString(a[2])
	}

	if err := h.parseFlags(); err != nil {
		return nil, err
	}
	if err := h.parseMeta(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Header) parseFlags() error {
	v := h.attrs["GeneratedByEngineVersion"]
	if v == "" {
		return fmt.Errorf("%w: missing engine version", format.ErrUnsupportedVersion)
	}
	version, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%w: engine version %q: %w", format.ErrUnsupportedVersion, v, err)
	}
	if version < 1.0 || version >= 3.0 {
		return fmt.Errorf("%w: engine version %s", format.ErrUnsupportedVersion, v)
	}
	h.flags.Version = version
	h.flags.OffsetWidth = 4
	if h.flags.V2() {
		h.flags.OffsetWidth = 8
	}

	h.flags.Encryption, err = parseEncryption(h.attrs["Encrypted"])
	return err
}

func parseEncryption(v string) (Encryption, error) {
	switch strings.TrimSpace(v) {
	case "", "No":
		return 0, nil
	case "Yes":
		return EncryptIndexHeader, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 || n > int(EncryptIndexHeader|EncryptKeyIndex) {
		return 0, fmt.Errorf("%w: Encrypted=%q", format.ErrUnsupportedEncryption, v)
	}
	//nolint:gosec // bounded above.
	return Encryption(n), nil
}

func (h *Header) parseMeta() error {
	h.meta = Meta{
		Title:            h.attrs["Title"],
		Description:      h.attrs["Description"],
		Encoding:         h.attrs["Encoding"],
		EngineVersion:    h.attrs["GeneratedByEngineVersion"],
		StyleSheet:       h.attrs["StyleSheet"],
		Format:           h.attrs["Format"],
		CreationDate:     h.attrs["CreationDate"],
		RegisterBy:       h.attrs["RegisterBy"],
		SourceLanguage:   parseLanguage(h.attrs["SourceLanguage"]),
		TargetLanguage:   parseLanguage(h.attrs["TargetLanguage"]),
		KeyCaseSensitive: parseBool(h.attrs["KeyCaseSensitive"], false),
		StripKey:         parseBool(h.attrs["StripKey"], true),
	}

	if h.flags.Kind == MDD {
		h.text = format.UTF16
		return nil
	}
	text, err := format.LookupText(h.meta.Encoding)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", format.ErrHeaderCorrupt, format.ErrEncoding, err)
	}
	h.text = text
	return nil
}

func parseLanguage(v string) language.Tag {
	if v == "" {
		return language.Und
	}
	t, err := language.Parse(v)
	if err != nil {
		return language.Und
	}
	return t
}

func parseBool(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1":
		return true
	case "no", "false", "0":
		return false
	}
	return def
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Value returns the raw value of the named attribute.
func (h *Header) Value(name string) string {
	return h.attrs[name]
}

// Names returns the attribute names in sorted order.
func (h *Header) Names() []string {
	names := make([]string, 0, len(h.attrs))
	for name := range h.attrs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Meta returns the descriptive metadata.
func (h *Header) Meta() Meta {
	return h.meta
}

// Flags returns the layout flags.
func (h *Header) Flags() Flags {
	return h.flags
}

// Text returns the encoding of keys and, for MDX containers, records.
func (h *Header) Text() *format.Text {
	return h.text
}

// Size returns the size in bytes of the header including its length prefix
// and checksum. The key section starts at this offset.
func (h *Header) Size() int64 {
	return h.size
}
