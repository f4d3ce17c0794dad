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

package keyblock_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ianlewis/go-mdict/internal/testutil"
	"github.com/ianlewis/go-mdict/keyblock"
)

func scan(t *testing.T, x *keyblock.Index, opts *keyblock.ScannerOptions) ([]string, error) {
	t.Helper()

	s, err := x.NewScanner(opts)
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	var keys []string
	for s.Scan() {
		keys = append(keys, s.Entry().Key)
	}
	return keys, s.Err()
}

func TestScanner(t *testing.T) {
	t.Parallel()

	c := testutil.MakeContainer(t, fruits(), &testutil.Options{KeysPerBlock: 4})
	x, err := newIndex(t, c.Bytes, nil)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	tests := []struct {
		name     string
		opts     *keyblock.ScannerOptions
		expected []string
	}{
		{
			name:     "all",
			expected: []string{"apple", "banana", "cherry", "date", "fig", "grape"},
		},
		{
			name:     "second block",
			opts:     &keyblock.ScannerOptions{Block: 1},
			expected: []string{"fig", "grape"},
		},
		{
			name:     "mid block",
			opts:     &keyblock.ScannerOptions{Block: 0, Entry: 3},
			expected: []string{"date", "fig", "grape"},
		},
		{
			name:     "past last entry of block",
			opts:     &keyblock.ScannerOptions{Block: 0, Entry: 4},
			expected: []string{"fig", "grape"},
		},
		{
			name: "end",
			opts: &keyblock.ScannerOptions{Block: 2},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			keys, err := scan(t, x, test.opts)
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if diff := cmp.Diff(test.expected, keys); diff != "" {
				t.Errorf("keys (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestScanner_decodeError(t *testing.T) {
	t.Parallel()

	c := testutil.MakeContainer(t, fruits(), nil)
	x, err := newIndex(t, bytes.Clone(c.Bytes), nil)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	errBlock := errors.New("block 1")
	keys, err := scan(t, x, &keyblock.ScannerOptions{
		Decode: func(i int) ([]keyblock.Entry, error) {
			if i == 1 {
				return nil, errBlock
			}
			return x.Decode(i)
		},
	})
	if !errors.Is(err, errBlock) {
		t.Fatalf("Err: want %v, got %v", errBlock, err)
	}
	if diff := cmp.Diff([]string{"apple", "banana"}, keys); diff != "" {
		t.Errorf("keys (-want, +got):\n%s", diff)
	}
}

func TestNewScanner_errors(t *testing.T) {
	t.Parallel()

	c := testutil.MakeContainer(t, fruits(), nil)
	x, err := newIndex(t, c.Bytes, nil)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	for _, opts := range []*keyblock.ScannerOptions{{Block: -1}, {Block: 4}, {Entry: -1}} {
		if _, err := x.NewScanner(opts); err == nil {
			t.Errorf("NewScanner(%+v): want error", *opts)
		}
	}
}
