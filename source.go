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
	"io"
	"os"
	"strings"
	"sync"
)

// lockedReaderAt serializes reads from a source that is not known to
// support concurrent ReadAt calls.
type lockedReaderAt struct {
	mu sync.Mutex
	r  io.ReaderAt
}

func (l *lockedReaderAt) ReadAt(p []byte, off int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.ReadAt(p, off)
}

// newSource returns r wrapped so that it may be read from concurrently.
func newSource(r io.ReaderAt) io.ReaderAt {
	switch r.(type) {
	case *os.File, *bytes.Reader, *strings.Reader, *io.SectionReader, *lockedReaderAt:
		return r
	}
	return &lockedReaderAt{r: r}
}
