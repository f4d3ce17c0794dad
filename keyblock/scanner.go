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
)

// Scanner scans the entries of an index in stored order, one key block at a
// time.
type Scanner struct {
	decode func(int) ([]Entry, error)
	blocks int

	block   int
	entries []Entry
	next    int
	err     error
}

// ScannerOptions are options for scanning the key blocks.
type ScannerOptions struct {
	// Block is the first block to scan.
	Block int

	// Entry is the first entry of Block to scan.
	Entry int

	// Decode returns the entries of a block. Defaults to Index.Decode.
	Decode func(i int) ([]Entry, error)
}

// DefaultScannerOptions is the default options for a Scanner.
var DefaultScannerOptions = &ScannerOptions{}

// NewScanner returns a new scanner that scans the index from the block and
// entry given in options to the end.
func (x *Index) NewScanner(options *ScannerOptions) (*Scanner, error) {
	if options == nil {
		options = DefaultScannerOptions
	}
	if options.Block < 0 || options.Block > len(x.blocks) || options.Entry < 0 {
		return nil, fmt.Errorf("scanner start %d/%d out of range", options.Block, options.Entry)
	}

	s := &Scanner{
		decode: options.Decode,
		blocks: len(x.blocks),
		block:  options.Block - 1,
	}
	if s.decode == nil {
		s.decode = x.Decode
	}
	if options.Entry > 0 && options.Block < len(x.blocks) {
		if !s.load(options.Block) {
			return s, nil
		}
		s.next = min(options.Entry, len(s.entries))
	}
	return s, nil
}

// Scan advances the scanner to the next entry. It returns false if the scan
// stops either by reaching the end of the index or an error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.next >= len(s.entries) {
		if s.block+1 >= s.blocks {
			return false
		}
		if !s.load(s.block + 1) {
			return false
		}
	}
	s.next++
	return true
}

func (s *Scanner) load(i int) bool {
	entries, err := s.decode(i)
	if err != nil {
		s.err = err
		return false
	}
	s.block, s.entries, s.next = i, entries, 0
	return true
}

// Entry returns the current entry.
func (s *Scanner) Entry() Entry {
	return s.entries[s.next-1]
}

// Block returns the number of the block holding the current entry.
func (s *Scanner) Block() int {
	return s.block
}

// Err returns the first error encountered.
func (s *Scanner) Err() error {
	return s.err
}
