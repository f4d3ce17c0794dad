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

// Package format holds the pieces of the container format shared by the
// header, key block and record block readers: error values, a bounds checked
// byte cursor and the text codecs used for keys and records.
package format

import (
	"errors"
	"fmt"
)

// ErrIO indicates that the byte source could not be read.
var ErrIO = errors.New("i/o error")

// ErrFormat is the parent of all errors caused by malformed or unsupported
// container data.
var ErrFormat = errors.New("format error")

var (
	// ErrHeaderCorrupt indicates the header or a section header is
	// inconsistent with the container.
	ErrHeaderCorrupt = fmt.Errorf("%w: header corrupt", ErrFormat)

	// ErrUnsupportedVersion indicates an engine version this package cannot
	// read.
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported version", ErrFormat)

	// ErrIndexUnsorted indicates the key block index is not ordered.
	ErrIndexUnsorted = fmt.Errorf("%w: index unsorted", ErrFormat)

	// ErrChecksumMismatch indicates a block failed checksum validation.
	ErrChecksumMismatch = fmt.Errorf("%w: checksum mismatch", ErrFormat)

	// ErrUnsupportedCompression indicates an unknown block compression type.
	ErrUnsupportedCompression = fmt.Errorf("%w: unsupported compression", ErrFormat)

	// ErrUnsupportedEncryption indicates an unknown encryption type or an
	// encrypted container opened without its registration key.
	ErrUnsupportedEncryption = fmt.Errorf("%w: unsupported encryption", ErrFormat)

	// ErrTruncatedBlock indicates a block is shorter than its descriptor.
	ErrTruncatedBlock = fmt.Errorf("%w: truncated block", ErrFormat)
)

// ErrEncoding indicates text could not be decoded with the declared encoding.
var ErrEncoding = errors.New("encoding error")
