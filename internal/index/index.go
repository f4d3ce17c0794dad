// Copyright 2025 Ian Lewis
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

// Package index implements a sorted index of closed ranges. It is used to
// find the blocks whose bounds may contain a key or offset.
package index

import (
	"sort"
)

// Span is a closed range [Lo, Hi]. A span with Hi < Lo is empty.
type Span[V any] struct {
	Lo V
	Hi V
}

// Index is a generic sorted range index.
type Index[V any] struct {
	// spans are in file order.
	spans []Span[V]

	cmp func(V, V) int

	// sorted is true if the spans are non-decreasing.
	sorted bool
}

// New creates an index from the given spans and comparison function. The
// spans are kept in the given order. cmp(a, b) should return a negative number
// when a < b, a positive number when a > b and zero when a == b or a and b are
// incomparable in the sense of a strict weak ordering.
func New[V any](spans []Span[V], cmp func(V, V) int) *Index[V] {
	idx := &Index[V]{
		spans: spans,
		cmp:   cmp,
	}
	idx.sorted = idx.Unsorted() < 0
	return idx
}

// Len returns the number of spans.
func (idx *Index[V]) Len() int {
	return len(idx.spans)
}

// Sorted returns whether the spans are ordered: each span's Lo is not
// greater than its Hi and each span's Hi is not greater than the next span's
// Lo. Empty spans only need to be ordered with respect to their neighbors.
func (idx *Index[V]) Sorted() bool {
	return idx.sorted
}

// Unsorted returns the position of the first span that breaks the ordering
// or -1 if the index is sorted.
func (idx *Index[V]) Unsorted() int {
	for i, s := range idx.spans {
		if idx.cmp(s.Lo, s.Hi) > 0 && !idx.isEmptyAt(i) {
			return i
		}
		if i > 0 && idx.cmp(idx.spans[i-1].Hi, s.Lo) > 0 {
			return i
		}
	}
	return -1
}

// isEmptyAt reports whether the span at i is a legitimately empty span which
// starts where the previous one ended.
func (idx *Index[V]) isEmptyAt(i int) bool {
	s := idx.spans[i]
	if idx.cmp(s.Lo, s.Hi) <= 0 {
		return false
	}
	return i == 0 || idx.cmp(idx.spans[i-1].Hi, s.Hi) == 0
}

// Search performs a binary search over the index and returns the half-open
// range [i, j) of spans that may contain q. Spans whose bound ties with q
// are included so adjacent spans sharing a boundary value are both
// returned. The result is empty (i == j) when no span contains q; i is then
// the position q would be inserted at.
func (idx *Index[V]) Search(q V) (int, int) {
	i := sort.Search(len(idx.spans), func(i int) bool {
		return idx.cmp(idx.spans[i].Hi, q) >= 0
	})

	j := i
	//nolint:revive // This block increments j.
	for ; j < len(idx.spans) && idx.cmp(idx.spans[j].Lo, q) <= 0; j++ {
	}
	return i, j
}
