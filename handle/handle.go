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

// Package handle exposes dictionaries through integer handles for embedding
// hosts that cannot hold Go pointers.
//
// Every function accepts any Handle. Zero, unknown and released handles are
// ignored and produce zero values.
package handle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ianlewis/go-mdict"
)

// Handle identifies an open dictionary. The zero Handle is never valid.
type Handle uint64

type dictionary struct {
	d *mdict.Dictionary

	mu  sync.Mutex
	err error
}

func (x *dictionary) setErr(err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.err = err
}

var (
	mu      sync.RWMutex
	next    Handle
	handles = map[Handle]*dictionary{}

	// openErr is the reason the last Open failed.
	openErr error
)

// Open opens the dictionary at path. userID unlocks containers that require
// a registration code; the code is read from a file next to the dictionary
// named after it with a .key extension. Open returns zero on failure.
func Open(path, userID string) Handle {
	opts := *mdict.DefaultOptions
	if userID != "" {
		code, err := readRegCode(path)
		if err != nil {
			setOpenErr(err)
			return 0
		}
		if code != "" {
			opts.Passcode = &mdict.Passcode{RegCode: code, UserID: userID}
		}
	}

	d, err := mdict.OpenFile(path, &opts)
	if err != nil {
		setOpenErr(err)
		return 0
	}

	mu.Lock()
	defer mu.Unlock()
	next++
	handles[next] = &dictionary{d: d}
	openErr = nil
	return next
}

func setOpenErr(err error) {
	mu.Lock()
	defer mu.Unlock()
	openErr = err
}

// readRegCode returns the registration code stored next to path, or an
// empty string when there is none.
func readRegCode(path string) (string, error) {
	base := path
	for _, ext := range []string{".dz", ".mdx", ".mdd"} {
		if strings.EqualFold(filepath.Ext(base), ext) {
			base = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}
	b, err := os.ReadFile(base + ".key")
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading registration code: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func get(h Handle) *dictionary {
	if h == 0 {
		return nil
	}
	mu.RLock()
	defer mu.RUnlock()
	return handles[h]
}

// Lookup returns the article for keyword. The second result is false when
// there is no article; LastError reports why.
func Lookup(h Handle, keyword string) (string, bool) {
	x := get(h)
	if x == nil || keyword == "" {
		return "", false
	}
	s, err := x.d.Lookup(keyword)
	x.setErr(err)
	if err != nil {
		return "", false
	}
	return s, true
}

// HasKey reports whether the dictionary has keyword.
func HasKey(h Handle, keyword string) bool {
	x := get(h)
	if x == nil || keyword == "" {
		return false
	}
	ok, err := x.d.HasKey(keyword)
	x.setErr(err)
	return ok
}

// Title returns the dictionary title.
func Title(h Handle) string {
	x := get(h)
	if x == nil {
		return ""
	}
	return x.d.Title()
}

// Description returns the dictionary description.
func Description(h Handle) string {
	x := get(h)
	if x == nil {
		return ""
	}
	return x.d.Description()
}

// LastError returns the error of the last failed operation on h. The zero
// Handle reports why the last Open failed.
func LastError(h Handle) error {
	if h == 0 {
		mu.RLock()
		defer mu.RUnlock()
		return openErr
	}
	x := get(h)
	if x == nil {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.err
}

// Release closes the dictionary. h is invalid afterwards.
func Release(h Handle) {
	mu.Lock()
	x := handles[h]
	delete(handles, h)
	mu.Unlock()

	if x != nil {
		_ = x.d.Close()
	}
}
