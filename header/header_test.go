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

package header_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/text/language"

	"github.com/ianlewis/go-mdict/header"
	"github.com/ianlewis/go-mdict/internal/format"
	"github.com/ianlewis/go-mdict/internal/testutil"
)

func TestNew(t *testing.T) {
	t.Parallel()

	attrs := [][2]string{
		{"GeneratedByEngineVersion", "2.0"},
		{"RequiredEngineVersion", "2.0"},
		{"Encrypted", "2"},
		{"Encoding", "GBK"},
		{"Format", "Html"},
		{"CreationDate", "2024-5-1"},
		{"KeyCaseSensitive", "No"},
		{"StripKey", "Yes"},
		{"Title", "Test &amp; Dictionary"},
		{"Description", "<b>hoge</b>"},
		{"StyleSheet", "1\n<b>\n</b>"},
		{"SourceLanguage", "en"},
		{"TargetLanguage", "zh-Hans"},
	}
	b := testutil.MakeHeader(t, "Dictionary", attrs)

	h, err := header.New(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wantMeta := header.Meta{
		// Values are unescaped once: MakeHeader escapes them again.
		Title:            "Test &amp; Dictionary",
		Description:      "<b>hoge</b>",
		Encoding:         "GBK",
		EngineVersion:    "2.0",
		StyleSheet:       "1\n<b>\n</b>",
		Format:           "Html",
		CreationDate:     "2024-5-1",
		SourceLanguage:   language.English,
		TargetLanguage:   language.MustParse("zh-Hans"),
		KeyCaseSensitive: false,
		StripKey:         true,
	}
	if diff := cmp.Diff(wantMeta, h.Meta(), cmp.Comparer(func(a, b language.Tag) bool { return a == b })); diff != "" {
		t.Errorf("Meta (-want, +got):\n%s", diff)
	}

	wantFlags := header.Flags{
		Kind:        header.MDX,
		Version:     2.0,
		Encryption:  header.EncryptKeyIndex,
		OffsetWidth: 8,
	}
	if diff := cmp.Diff(wantFlags, h.Flags()); diff != "" {
		t.Errorf("Flags (-want, +got):\n%s", diff)
	}

	if diff := cmp.Diff(int64(len(b)), h.Size()); diff != "" {
		t.Errorf("Size (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff("GBK", h.Text().Name()); diff != "" {
		t.Errorf("Text (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff("2.0", h.Value("RequiredEngineVersion")); diff != "" {
		t.Errorf("Value (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(len(attrs), len(h.Names())); diff != "" {
		t.Errorf("Names (-want, +got):\n%s", diff)
	}
}

func TestNew_kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		root    string
		version string

		kind  header.Kind
		width int
		text  string
	}{
		{
			name:    "mdx v2",
			root:    "Dictionary",
			version: "2.0",
			kind:    header.MDX,
			width:   8,
			text:    "UTF-8",
		},
		{
			name:    "mdx v1",
			root:    "Dictionary",
			version: "1.2",
			kind:    header.MDX,
			width:   4,
			text:    "UTF-8",
		},
		{
			name:    "mdd",
			root:    "Library_Data",
			version: "2.0",
			kind:    header.MDD,
			width:   8,
			text:    "UTF-16",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			b := testutil.MakeHeader(t, test.root, [][2]string{
				{"GeneratedByEngineVersion", test.version},
			})
			h, err := header.New(bytes.NewReader(b))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if diff := cmp.Diff(test.kind, h.Flags().Kind); diff != "" {
				t.Errorf("Kind (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.width, h.Flags().OffsetWidth); diff != "" {
				t.Errorf("OffsetWidth (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.text, h.Text().Name()); diff != "" {
				t.Errorf("Text (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestNew_utf8Text(t *testing.T) {
	t.Parallel()

	b := testutil.MakeRawHeader([]byte(`<Dictionary GeneratedByEngineVersion="2.0" Title="utf8"/>` + "\r\n\x00"))
	h, err := header.New(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if diff := cmp.Diff("utf8", h.Meta().Title); diff != "" {
		t.Errorf("Title (-want, +got):\n%s", diff)
	}
}

func TestNew_errors(t *testing.T) {
	t.Parallel()

	v2 := [2]string{"GeneratedByEngineVersion", "2.0"}

	tests := []struct {
		name string
		data func(t *testing.T) []byte
		err  error
	}{
		{
			name: "empty",
			data: func(*testing.T) []byte { return nil },
			err:  format.ErrHeaderCorrupt,
		},
		{
			name: "short length prefix",
			data: func(*testing.T) []byte { return []byte{0, 0} },
			err:  format.ErrHeaderCorrupt,
		},
		{
			name: "length past end",
			data: func(t *testing.T) []byte {
				b := testutil.MakeHeader(t, "Dictionary", [][2]string{v2})
				return b[:len(b)-6]
			},
			err: format.ErrHeaderCorrupt,
		},
		{
			name: "length too large",
			data: func(*testing.T) []byte { return []byte{0xff, 0xff, 0xff, 0xff} },
			err:  format.ErrHeaderCorrupt,
		},
		{
			name: "checksum",
			data: func(t *testing.T) []byte {
				b := testutil.MakeHeader(t, "Dictionary", [][2]string{v2})
				b[len(b)-1] ^= 0xff
				return b
			},
			err: format.ErrHeaderCorrupt,
		},
		{
			name: "flipped text",
			data: func(t *testing.T) []byte {
				b := testutil.MakeHeader(t, "Dictionary", [][2]string{v2})
				b[10] ^= 0x01
				return b
			},
			err: format.ErrHeaderCorrupt,
		},
		{
			name: "unknown root",
			data: func(t *testing.T) []byte {
				return testutil.MakeHeader(t, "Glossary", [][2]string{v2})
			},
			err: format.ErrHeaderCorrupt,
		},
		{
			name: "malformed attributes",
			data: func(*testing.T) []byte {
				return testutil.MakeRawHeader([]byte(`<Dictionary GeneratedByEngineVersion="2.0" Title=oops/>`))
			},
			err: format.ErrHeaderCorrupt,
		},
		{
			name: "invalid utf-8",
			data: func(*testing.T) []byte {
				return testutil.MakeRawHeader([]byte("<Dictionary Title=\"\xff\xfe\xfd\"/>"))
			},
			err: format.ErrHeaderCorrupt,
		},
		{
			name: "missing version",
			data: func(t *testing.T) []byte {
				return testutil.MakeHeader(t, "Dictionary", [][2]string{{"Title", "hoge"}})
			},
			err: format.ErrUnsupportedVersion,
		},
		{
			name: "version 3",
			data: func(t *testing.T) []byte {
				return testutil.MakeHeader(t, "Dictionary", [][2]string{{"GeneratedByEngineVersion", "3.0"}})
			},
			err: format.ErrUnsupportedVersion,
		},
		{
			name: "version 0.9",
			data: func(t *testing.T) []byte {
				return testutil.MakeHeader(t, "Dictionary", [][2]string{{"GeneratedByEngineVersion", "0.9"}})
			},
			err: format.ErrUnsupportedVersion,
		},
		{
			name: "bad version",
			data: func(t *testing.T) []byte {
				return testutil.MakeHeader(t, "Dictionary", [][2]string{{"GeneratedByEngineVersion", "two"}})
			},
			err: format.ErrUnsupportedVersion,
		},
		{
			name: "encryption out of range",
			data: func(t *testing.T) []byte {
				return testutil.MakeHeader(t, "Dictionary", [][2]string{v2, {"Encrypted", "4"}})
			},
			err: format.ErrUnsupportedEncryption,
		},
		{
			name: "encryption unknown",
			data: func(t *testing.T) []byte {
				return testutil.MakeHeader(t, "Dictionary", [][2]string{v2, {"Encrypted", "Maybe"}})
			},
			err: format.ErrUnsupportedEncryption,
		},
		{
			name: "unknown encoding",
			data: func(t *testing.T) []byte {
				return testutil.MakeHeader(t, "Dictionary", [][2]string{v2, {"Encoding", "x-klingon"}})
			},
			err: format.ErrHeaderCorrupt,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			h, err := header.New(bytes.NewReader(test.data(t)))
			if diff := cmp.Diff(test.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("New error (-want, +got):\n%s", diff)
			}
			if h != nil {
				t.Fatalf("New: unexpected header %+v", h)
			}
		})
	}
}

func TestNew_unknownEncoding(t *testing.T) {
	t.Parallel()

	b := testutil.MakeHeader(t, "Dictionary", [][2]string{
		{"GeneratedByEngineVersion", "2.0"},
		{"Encoding", "x-klingon"},
	})
	_, err := header.New(bytes.NewReader(b))
	for _, want := range []error{format.ErrFormat, format.ErrHeaderCorrupt, format.ErrEncoding} {
		if diff := cmp.Diff(want, err, cmpopts.EquateErrors()); diff != "" {
			t.Errorf("New error (-want, +got):\n%s", diff)
		}
	}
}

func TestEncryption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  header.Encryption
	}{
		{"No", 0},
		{"", 0},
		{"Yes", header.EncryptIndexHeader},
		{"1", header.EncryptIndexHeader},
		{"2", header.EncryptKeyIndex},
		{"3", header.EncryptIndexHeader | header.EncryptKeyIndex},
	}

	for _, test := range tests {
		t.Run(test.value, func(t *testing.T) {
			t.Parallel()

			b := testutil.MakeHeader(t, "Dictionary", [][2]string{
				{"GeneratedByEngineVersion", "2.0"},
				{"Encrypted", test.value},
			})
			h, err := header.New(bytes.NewReader(b))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if diff := cmp.Diff(test.want, h.Flags().Encryption); diff != "" {
				t.Fatalf("Encryption (-want, +got):\n%s", diff)
			}
		})
	}
}
