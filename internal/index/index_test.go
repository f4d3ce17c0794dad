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

package index

import (
	"cmp"
	"strings"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
)

func TestIndex_Search_string(t *testing.T) {
	t.Parallel()

	spans := []Span[string]{
		{Lo: "apple", Hi: "banana"},
		{Lo: "banana", Hi: "cherry"},
		{Lo: "date", Hi: "fig"},
		{Lo: "grape", Hi: "kiwi"},
	}

	tests := []struct {
		name  string
		query string
		i, j  int
	}{
		{
			name:  "before all",
			query: "aardvark",
			i:     0,
			j:     0,
		},
		{
			name:  "inside first",
			query: "avocado",
			i:     0,
			j:     1,
		},
		{
			name:  "shared boundary",
			query: "banana",
			i:     0,
			j:     2,
		},
		{
			name:  "between spans",
			query: "coconut",
			i:     2,
			j:     2,
		},
		{
			name:  "last bound",
			query: "kiwi",
			i:     3,
			j:     4,
		},
		{
			name:  "after all",
			query: "lemon",
			i:     4,
			j:     4,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			index := New(spans, strings.Compare)
			i, j := index.Search(test.query)
			if diff := gocmp.Diff([]int{test.i, test.j}, []int{i, j}); diff != "" {
				t.Fatalf("Search(%q) (-want, +got):\n%s", test.query, diff)
			}
		})
	}
}

func TestIndex_Search_offsets(t *testing.T) {
	t.Parallel()

	// [0, 100), [100, 100) (empty), [100, 250), [250, 300)
	index := New([]Span[int64]{
		{Lo: 0, Hi: 99},
		{Lo: 100, Hi: 99},
		{Lo: 100, Hi: 249},
		{Lo: 250, Hi: 299},
	}, cmp.Compare[int64])

	if !index.Sorted() {
		t.Fatalf("Sorted: want true, unsorted at %d", index.Unsorted())
	}

	for q, want := range map[int64]int{0: 0, 99: 0, 100: 2, 249: 2, 250: 3, 299: 3} {
		i, j := index.Search(q)
		if i == j || i != want {
			t.Errorf("Search(%d) = [%d, %d), want span %d", q, i, j, want)
		}
	}
	if i, j := index.Search(300); i != j {
		t.Errorf("Search(300) = [%d, %d), want empty", i, j)
	}
}

func TestIndex_Sorted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spans    []Span[string]
		unsorted int
	}{
		{
			name:     "empty",
			unsorted: -1,
		},
		{
			name: "sorted with ties",
			spans: []Span[string]{
				{Lo: "a", Hi: "c"},
				{Lo: "c", Hi: "c"},
				{Lo: "c", Hi: "e"},
			},
			unsorted: -1,
		},
		{
			name: "inverted span",
			spans: []Span[string]{
				{Lo: "a", Hi: "c"},
				{Lo: "f", Hi: "d"},
			},
			unsorted: 1,
		},
		{
			name: "overlapping spans",
			spans: []Span[string]{
				{Lo: "a", Hi: "m"},
				{Lo: "d", Hi: "z"},
			},
			unsorted: 1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			index := New(test.spans, strings.Compare)
			if diff := gocmp.Diff(test.unsorted, index.Unsorted()); diff != "" {
				t.Fatalf("Unsorted (-want, +got):\n%s", diff)
			}
			if diff := gocmp.Diff(test.unsorted < 0, index.Sorted()); diff != "" {
				t.Fatalf("Sorted (-want, +got):\n%s", diff)
			}
		})
	}
}
