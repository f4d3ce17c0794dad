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
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ianlewis/go-mdict/collation"
	"github.com/ianlewis/go-mdict/header"
	"github.com/ianlewis/go-mdict/keyblock"
)

// linkPrefix starts an article that redirects to another key.
const linkPrefix = "@@@LINK="

var errNotResource = fmt.Errorf("%w: not a resource container", ErrLookup)

// match is a key found in a key block.
type match struct {
	block int
	index int
	entry keyblock.Entry
}

// Lookup returns the article for keyword, following links. Resource
// containers have no articles; use Resource for them.
func (d *Dictionary) Lookup(keyword string) (string, error) {
	e, err := d.LookupEntry(keyword, nil)
	if err != nil {
		return "", err
	}
	return e.Text(), nil
}

// LookupEntry returns the entry for keyword, following links. Links are
// resolved with the dictionary's default mode.
func (d *Dictionary) LookupEntry(keyword string, opts *LookupOptions) (*Entry, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	mode, nth := d.mode, 0
	if opts != nil {
		if opts.Mode != nil {
			mode = *opts.Mode
		}
		nth = opts.Nth
	}

	e := &Entry{query: keyword}
	q := keyword
	for hops := 0; ; hops++ {
		m, err := d.find(q, mode, nth)
		if err != nil {
			if hops > 0 {
				return nil, fmt.Errorf("following link from %q: %w", keyword, err)
			}
			return nil, err
		}
		data, err := d.record(m)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", m.entry.Key, err)
		}
		e.key = m.entry.Key

		if d.Kind() == header.MDD {
			e.data = data
			return e, nil
		}

		text := d.header.Text()
		data = trimTerminator(data, text.Unit())
		s, err := text.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", m.entry.Key, err)
		}
		target, ok := parseLink(s)
		if !ok {
			e.data, e.text = data, s
			return e, nil
		}
		if hops >= d.maxHops {
			return nil, fmt.Errorf("%w: %q: %s", ErrLinkCycle, keyword, strings.Join(append(e.links, target), " -> "))
		}
		d.logger.Debug("following link",
			slog.String("from", m.entry.Key),
			slog.String("to", target),
		)
		e.links = append(e.links, target)
		q, mode, nth = target, d.mode, 0
	}
}

// HasKey reports whether keyword matches a key under the default mode.
// Links are not followed.
func (d *Dictionary) HasKey(keyword string) (bool, error) {
	if err := d.check(); err != nil {
		return false, err
	}
	_, err := d.find(keyword, d.mode, 0)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Prefix returns up to limit stored keys beginning with prefix under the
// default mode, in stored order. A limit of zero or less returns every match.
func (d *Dictionary) Prefix(prefix string, limit int) ([]string, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	s, err := d.keys.NewScanner(&keyblock.ScannerOptions{
		Block:  d.keys.LowerBound(prefix, d.mode),
		Decode: d.keyBlock,
	})
	if err != nil {
		return nil, err
	}

	matcher := collation.NewMatcher(prefix, d.mode)
	var keys []string
	block := -1
	for s.Scan() {
		if b := s.Block(); b != block {
			if d.keys.After(b, prefix, d.mode) {
				break
			}
			block = b
		}
		if key := s.Entry().Key; matcher.Prefix(key) {
			keys = append(keys, key)
			if limit > 0 && len(keys) >= limit {
				break
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Keys calls fn for every stored key in stored order until fn returns false.
func (d *Dictionary) Keys(fn func(key string) bool) error {
	if err := d.check(); err != nil {
		return err
	}
	s, err := d.keys.NewScanner(&keyblock.ScannerOptions{Decode: d.keyBlock})
	if err != nil {
		return err
	}
	for s.Scan() {
		if !fn(s.Entry().Key) {
			return nil
		}
	}
	return s.Err()
}

// Resource returns the raw bytes of the named resource. Names may use either
// path separator and are matched without regard to case.
func (d *Dictionary) Resource(name string) ([]byte, error) {
	if d.Kind() != header.MDD {
		return nil, fmt.Errorf("%w: %q", errNotResource, d.title)
	}
	e, err := d.LookupEntry(ResourceKey(name), &LookupOptions{
		Mode: &collation.Mode{IgnoreCase: true},
	})
	if err != nil {
		return nil, err
	}
	return e.Data(), nil
}

// ResourceKey returns the stored form of a resource name: backslash
// separated with a leading backslash.
func ResourceKey(name string) string {
	name = strings.ReplaceAll(name, "/", "\\")
	if !strings.HasPrefix(name, "\\") {
		name = "\\" + name
	}
	return name
}

// find returns the nth key equal to q under m.
func (d *Dictionary) find(q string, m collation.Mode, nth int) (match, error) {
	if q == "" {
		return match{}, fmt.Errorf("%w: empty keyword", ErrNotFound)
	}
	matcher := collation.NewMatcher(q, m)
	seen := 0
	for _, b := range d.keys.Search(q, m) {
		entries, err := d.keyBlock(b)
		if err != nil {
			return match{}, err
		}
		for i, e := range entries {
			if !matcher.Match(e.Key) {
				continue
			}
			if seen == nth {
				return match{block: b, index: i, entry: e}, nil
			}
			seen++
		}
	}
	return match{}, fmt.Errorf("%w: %q", ErrNotFound, q)
}

// record returns a copy of the bytes of the record for m. A record runs from
// its offset to the next greater offset in key order, bounded by the end of
// the record block holding it.
func (d *Dictionary) record(m match) ([]byte, error) {
	start := m.entry.Offset
	i, ok := d.records.Find(start)
	if !ok {
		return nil, fmt.Errorf("%w: record offset %d outside %d byte record stream",
			ErrTruncatedBlock, start, d.records.Size())
	}
	blk := d.records.Block(i)

	end, err := d.nextOffset(m)
	if err != nil {
		return nil, err
	}
	end = min(end, blk.End())

	data, err := d.recordBlock(i)
	if err != nil {
		return nil, err
	}
	// The block is shared through the cache.
	return bytes.Clone(data[start-blk.Start : end-blk.Start]), nil
}

// nextOffset returns the first offset after m's in key order that is greater
// than it, or the length of the record stream.
func (d *Dictionary) nextOffset(m match) (int64, error) {
	s, err := d.keys.NewScanner(&keyblock.ScannerOptions{
		Block:  m.block,
		Entry:  m.index + 1,
		Decode: d.keyBlock,
	})
	if err != nil {
		return 0, err
	}
	for s.Scan() {
		if off := s.Entry().Offset; off > m.entry.Offset {
			return off, nil
		}
	}
	if err := s.Err(); err != nil {
		return 0, err
	}
	return d.records.Size(), nil
}

// trimTerminator removes the NUL terminators that end an article.
func trimTerminator(b []byte, unit int) []byte {
	nul := make([]byte, unit)
	for len(b) >= unit && bytes.Equal(b[len(b)-unit:], nul) {
		b = b[:len(b)-unit]
	}
	return b
}

// parseLink returns the target of an article that consists of a single
// link.
func parseLink(s string) (string, bool) {
	s = strings.Trim(s, " \t\r\n\x00")
	target, ok := strings.CutPrefix(s, linkPrefix)
	if !ok {
		return "", false
	}
	target = strings.TrimSpace(target)
	if target == "" || strings.ContainsAny(target, "\r\n") {
		return "", false
	}
	return target, true
}
