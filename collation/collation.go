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

// Package collation compares dictionary keys. A [Mode] selects case and
// punctuation folding and an optional locale ordering. Every function in this
// package is safe for concurrent use.
package collation

import (
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ianlewis/go-mdict/internal/folding"
)

// Mode is a matching mode. The zero value is binary code point order, case
// sensitive and respecting punctuation.
type Mode struct {
	// IgnoreCase compares keys after Unicode case folding.
	IgnoreCase bool

	// IgnorePunct ignores punctuation, symbols, diacritics and whitespace.
	IgnorePunct bool

	// Locale selects a locale specific ordering. [language.Und] is binary
	// order.
	Locale language.Tag
}

// Binary is binary code point order with no folding.
var Binary = Mode{}

// String implements [fmt.Stringer].
func (m Mode) String() string {
	var b strings.Builder
	if m.IgnoreCase {
		b.WriteString("case-insensitive")
	} else {
		b.WriteString("case-sensitive")
	}
	if m.IgnorePunct {
		b.WriteString(",ignore-punct")
	}
	if m.Locale != language.Und {
		b.WriteString(",")
		b.WriteString(m.Locale.String())
	}
	return b.String()
}

// Refines reports whether two keys equal under m are also equal under other.
// The locale orders keys but never makes distinct folded keys equal, so it
// does not take part.
func (m Mode) Refines(other Mode) bool {
	return (!m.IgnoreCase || other.IgnoreCase) && (!m.IgnorePunct || other.IgnorePunct)
}

func (m Mode) folding() folding.Options {
	return folding.Options{
		Case:  m.IgnoreCase,
		Punct: m.IgnorePunct,
	}
}

// Key returns the folded form of s under m. Two keys are equal under m if and
// only if their folded forms are equal.
func Key(s string, m Mode) string {
	if !m.IgnoreCase && !m.IgnorePunct {
		return s
	}
	return folding.String(s, m.folding())
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to or
// after b under m.
func Compare(a, b string, m Mode) int {
	return compareKeys(Key(a, m), Key(b, m), m.Locale)
}

// CompareKeys is like Compare for keys already folded with [Key].
func CompareKeys(a, b string, m Mode) int {
	return compareKeys(a, b, m.Locale)
}

// compareKeys compares folded keys. Keys the locale collator considers equal
// are ordered by code point so the order stays total.
func compareKeys(a, b string, locale language.Tag) int {
	if a == b {
		return 0
	}
	if locale != language.Und {
		c := getCollator(locale)
		r := c.CompareString(a, b)
		putCollator(locale, c)
		if r != 0 {
			return r
		}
	}
	return strings.Compare(a, b)
}

// HasPrefix reports whether s begins with prefix under m.
func HasPrefix(s, prefix string, m Mode) bool {
	return strings.HasPrefix(Key(s, m), Key(prefix, m))
}

// Sort sorts keys under m. Keys that compare equal keep their order.
func Sort(keys []string, m Mode) {
	folded := make(map[string]string, len(keys))
	for _, k := range keys {
		if _, ok := folded[k]; !ok {
			folded[k] = Key(k, m)
		}
	}
	slices.SortStableFunc(keys, func(a, b string) int {
		return compareKeys(folded[a], folded[b], m.Locale)
	})
}

// Matcher compares stored keys against a single query. The query is folded
// once when the Matcher is created.
type Matcher struct {
	mode  Mode
	query string
}

// NewMatcher returns a Matcher for query under m.
func NewMatcher(query string, m Mode) *Matcher {
	return &Matcher{
		mode:  m,
		query: Key(query, m),
	}
}

// Mode returns the matcher's mode.
func (q *Matcher) Mode() Mode {
	return q.mode
}

// Query returns the folded query.
func (q *Matcher) Query() string {
	return q.query
}

// Compare compares the query with the key s.
func (q *Matcher) Compare(s string) int {
	return compareKeys(q.query, Key(s, q.mode), q.mode.Locale)
}

// Match reports whether s is equal to the query.
func (q *Matcher) Match(s string) bool {
	return Key(s, q.mode) == q.query
}

// Prefix reports whether s begins with the query.
func (q *Matcher) Prefix(s string) bool {
	return strings.HasPrefix(Key(s, q.mode), q.query)
}

// collate.Collator values are not safe for concurrent use so each locale keeps
// a pool of them.
var collators sync.Map // language.Tag -> *sync.Pool

func collatorPool(tag language.Tag) *sync.Pool {
	if p, ok := collators.Load(tag); ok {
		return p.(*sync.Pool)
	}
	p, _ := collators.LoadOrStore(tag, &sync.Pool{
		New: func() any {
			return collate.New(tag)
		},
	})
	return p.(*sync.Pool)
}

func getCollator(tag language.Tag) *collate.Collator {
	return collatorPool(tag).Get().(*collate.Collator)
}

func putCollator(tag language.Tag, c *collate.Collator) {
	collatorPool(tag).Put(c)
}
