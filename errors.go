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

package mdict

import (
	"errors"
	"fmt"

	"github.com/ianlewis/go-mdict/internal/format"
)

var (
	// ErrIO indicates that reading from the byte source failed.
	ErrIO = format.ErrIO

	// ErrFormat is the parent of all errors caused by a malformed or
	// unsupported container.
	ErrFormat = format.ErrFormat

	// ErrHeaderCorrupt indicates a malformed header or index section.
	ErrHeaderCorrupt = format.ErrHeaderCorrupt

	// ErrUnsupportedVersion indicates an engine version outside [1.0, 3.0).
	ErrUnsupportedVersion = format.ErrUnsupportedVersion

	// ErrIndexUnsorted indicates that the key index is not ordered. It is
	// logged rather than returned; lookups scan neighboring blocks instead.
	ErrIndexUnsorted = format.ErrIndexUnsorted

	// ErrChecksumMismatch indicates a block whose contents do not match its
	// checksum.
	ErrChecksumMismatch = format.ErrChecksumMismatch

	// ErrUnsupportedCompression indicates an unknown block compression type.
	ErrUnsupportedCompression = format.ErrUnsupportedCompression

	// ErrUnsupportedEncryption indicates an unknown encryption scheme or a
	// missing registration code.
	ErrUnsupportedEncryption = format.ErrUnsupportedEncryption

	// ErrTruncatedBlock indicates a block shorter than its descriptor.
	ErrTruncatedBlock = format.ErrTruncatedBlock

	// ErrEncoding indicates text that is invalid in its declared encoding.
	ErrEncoding = format.ErrEncoding

	// ErrLookup is the parent of errors for queries that cannot be
	// answered from a valid container.
	ErrLookup = errors.New("lookup error")

	// ErrNotFound indicates that no key matches the query.
	ErrNotFound = fmt.Errorf("%w: not found", ErrLookup)

	// ErrLinkCycle indicates a chain of links longer than the hop limit.
	ErrLinkCycle = fmt.Errorf("%w: too many links", ErrLookup)

	// ErrClosed indicates use of a closed dictionary.
	ErrClosed = errors.New("dictionary closed")
)

// fatal reports whether err leaves the dictionary unusable for every later
// query.
func fatal(err error) bool {
	return errors.Is(err, ErrHeaderCorrupt) ||
		errors.Is(err, ErrUnsupportedVersion) ||
		errors.Is(err, ErrUnsupportedCompression) ||
		errors.Is(err, ErrUnsupportedEncryption)
}
