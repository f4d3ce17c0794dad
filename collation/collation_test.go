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

package collation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

func TestSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		keys     []string
		mode     Mode
		expected []string
	}{
		{
			name:     "binary",
			keys:     []string{"Zoo", "Apple", "apple", "Ant"},
			mode:     Binary,
			expected: []string{"Ant", "Apple", "Zoo", "apple"},
		},
		{
			name: "case-insensitive",
			keys: []string{"Zoo", "Apple", "apple", "Ant"},
			mode: Mode{IgnoreCase: true},
			// Apple and apple are equal and keep their order.
			expected: []string{"Ant", "Apple", "apple", "Zoo"},
		},
		{
			name:     "case-insensitive stable",
			keys:     []string{"Zoo", "apple", "Apple", "Ant"},
			mode:     Mode{IgnoreCase: true},
			expected: []string{"Ant", "apple", "Apple", "Zoo"},
		},
		{
			name:     "ignore punctuation",
			keys:     []string{"a-c", "ab", "a b", "aa"},
			mode:     Mode{IgnorePunct: true},
			expected: []string{"aa", "ab", "a b", "a-c"},
		},
		{
			name:     "german",
			keys:     []string{"z", "äb", "b", "a"},
			mode:     Mode{Locale: language.German},
			expected: []string{"a", "äb", "b", "z"},
		},
		{
			name:     "swedish",
			keys:     []string{"z", "äb", "b", "a"},
			mode:     Mode{Locale: language.Swedish},
			expected: []string{"a", "b", "z", "äb"},
		},
		{
			name:     "english case-sensitive",
			keys:     []string{"b", "B", "a", "A"},
			mode:     Mode{Locale: language.English},
			expected: []string{"a", "A", "b", "B"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			keys := append([]string(nil), test.keys...)
			Sort(keys, test.mode)
			if diff := cmp.Diff(test.expected, keys); diff != "" {
				t.Fatalf("Sort (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b     string
		mode     Mode
		expected int
	}{
		{"apple", "apple", Binary, 0},
		{"Apple", "apple", Binary, -1},
		{"apple", "Apple", Binary, 1},
		{"Apple", "apple", Mode{IgnoreCase: true}, 0},
		{"APPLE", "apple", Mode{IgnoreCase: true}, 0},
		{"grüßen", "GRÜSSEN", Mode{IgnoreCase: true}, 0},
		{"grüßen", "grussen", Mode{IgnoreCase: true}, 1},
		{"grüßen", "grussen", Mode{IgnoreCase: true, IgnorePunct: true}, 0},
		{"foo bar", "foo. bar?", Mode{IgnorePunct: true}, 0},
		{"foo bar", "foo. bar?", Binary, -1},
		{"a", "B", Binary, 1},
		{"a", "B", Mode{Locale: language.English}, -1},
		{"a", "A", Mode{Locale: language.English}, -1},
		{"a", "A", Mode{Locale: language.English, IgnoreCase: true}, 0},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("%s %s %v", test.a, test.b, test.mode), func(t *testing.T) {
			t.Parallel()

			got := Compare(test.a, test.b, test.mode)
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Fatalf("Compare (-want, +got):\n%s", diff)
			}
			// The order is antisymmetric.
			if diff := cmp.Diff(-test.expected, Compare(test.b, test.a, test.mode)); diff != "" {
				t.Fatalf("Compare reversed (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestHasPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s, prefix string
		mode      Mode
		expected  bool
	}{
		{"apple", "app", Binary, true},
		{"Apple", "app", Binary, false},
		{"Apple", "app", Mode{IgnoreCase: true}, true},
		{"a-p-p-le", "app", Mode{IgnorePunct: true}, true},
		{"ap", "app", Mode{IgnoreCase: true}, false},
		{"anything", "", Binary, true},
	}

	for _, test := range tests {
		t.Run(test.s+" "+test.prefix, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(test.expected, HasPrefix(test.s, test.prefix, test.mode)); diff != "" {
				t.Fatalf("HasPrefix (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestMode_Refines(t *testing.T) {
	t.Parallel()

	sensitive := Binary
	insensitive := Mode{IgnoreCase: true}
	punct := Mode{IgnorePunct: true}
	loose := Mode{IgnoreCase: true, IgnorePunct: true}

	tests := []struct {
		name     string
		m, other Mode
		expected bool
	}{
		{"same", insensitive, insensitive, true},
		{"sensitive refines insensitive", sensitive, insensitive, true},
		{"insensitive does not refine sensitive", insensitive, sensitive, false},
		{"insensitive refines loose", insensitive, loose, true},
		{"insensitive does not refine punct", insensitive, punct, false},
		{"loose does not refine insensitive", loose, insensitive, false},
		{"locale is ignored", Mode{Locale: language.Japanese}, sensitive, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(test.expected, test.m.Refines(test.other)); diff != "" {
				t.Fatalf("Refines (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestMatcher(t *testing.T) {
	t.Parallel()

	keys := []string{"Zoo", "Apple", "apple", "Ant"}

	match := func(m *Matcher) []string {
		var got []string
		for _, k := range keys {
			if m.Match(k) {
				got = append(got, k)
			}
		}
		return got
	}

	if diff := cmp.Diff([]string{"Apple", "apple"}, match(NewMatcher("APPLE", Mode{IgnoreCase: true}))); diff != "" {
		t.Errorf("case-insensitive Match (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string(nil), match(NewMatcher("APPLE", Binary))); diff != "" {
		t.Errorf("case-sensitive Match (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"apple"}, match(NewMatcher("apple", Binary))); diff != "" {
		t.Errorf("binary Match (-want, +got):\n%s", diff)
	}

	m := NewMatcher("ap", Mode{IgnoreCase: true})
	if !m.Prefix("Apple") || m.Prefix("Ant") {
		t.Errorf("Prefix: unexpected result for query %q", m.Query())
	}
	if got := m.Compare("Ant"); got != 1 {
		t.Errorf("Compare(%q): got %d, want 1", "Ant", got)
	}
}

func TestCompare_concurrent(t *testing.T) {
	t.Parallel()

	mode := Mode{Locale: language.German, IgnoreCase: true}
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if got := Compare("Äpfel", "apfel", mode); got != 1 {
					errs <- fmt.Errorf("Compare: got %d, want 1", got)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
