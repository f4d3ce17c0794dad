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
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// replacement is utf8.RuneError encoded as UTF-8.
var replacement = []byte("\uFFFD")

// Text decodes text stored in the container with a declared encoding.
type Text struct {
	name string
	enc  encoding.Encoding
	unit int

	// encodedReplacement is U+FFFD in the source encoding, if representable.
	encodedReplacement []byte
}

// UTF16 is the encoding of the header text and of all MDD keys.
var UTF16 = newText("UTF-16", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), 2)

// UTF8 is the default record encoding.
var UTF8 = newText("UTF-8", nil, 1)

func newText(name string, enc encoding.Encoding, unit int) *Text {
	t := &Text{
		name: name,
		enc:  enc,
		unit: unit,
	}
	if enc != nil {
		if b, err := enc.NewEncoder().Bytes(replacement); err == nil {
			t.encodedReplacement = b
		}
	}
	return t
}

// LookupText returns the Text for an encoding name as declared in a
// container header. An empty name is UTF-8.
func LookupText(name string) (*Text, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "UTF-8", "UTF8":
		return UTF8, nil
	case "UTF-16", "UTF16", "UTF-16LE":
		return UTF16, nil
	case "GBK", "GB2312", "GB18030", "CP936":
		// GB18030 is a superset of the other two.
		return newText(name, simplifiedchinese.GB18030, 1), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	canonical, err := htmlindex.Name(enc)
	if err == nil && strings.HasPrefix(canonical, "utf-16") {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return newText(name, enc, 1), nil
}

// Name returns the declared encoding name.
func (t *Text) Name() string {
	return t.name
}

// Unit returns the width in bytes of a terminator in this encoding.
func (t *Text) Unit() int {
	return t.unit
}

// Decode decodes b strictly. Bytes which are invalid in the encoding result
// in an [ErrEncoding] error rather than replacement characters.
func (t *Text) Decode(b []byte) (string, error) {
	if t.enc == nil {
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: invalid %s text", ErrEncoding, t.name)
		}
		return string(b), nil
	}
	if len(b)%t.unit != 0 {
		return "", fmt.Errorf("%w: %s text has odd length %d", ErrEncoding, t.name, len(b))
	}

	out, err := t.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	if bytes.Contains(out, replacement) &&
		(t.encodedReplacement == nil || !bytes.Contains(b, t.encodedReplacement)) {
		return "", fmt.Errorf("%w: invalid %s text", ErrEncoding, t.name)
	}
	return string(out), nil
}
