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

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ianlewis/go-dictzip"
)

// MakeFileOptions configure MakeTempFile.
type MakeFileOptions struct {
	// Dir is the directory to write the file to. Defaults to a new
	// temporary directory.
	Dir string

	// Name is the file name. Defaults to 'test.mdx', 'test.mdd' when the
	// container is a MDD container. '.dz' is appended when DictZip is true.
	Name string

	// DictZip indicates that the file should be compressed with DictZip.
	DictZip bool
}

// GetName returns the file name for a container.
func (o *MakeFileOptions) GetName(mdd bool) string {
	name := "test.mdx"
	if mdd {
		name = "test.mdd"
	}
	if o == nil {
		return name
	}
	if o.Name != "" {
		name = o.Name
	}
	if o.DictZip {
		name += ".dz"
	}
	return name
}

// MakeTempFile writes the container to a file and returns its path. The
// file is removed when the test finishes.
func MakeTempFile(t *testing.T, c *Container, mdd bool, opts *MakeFileOptions) string {
	t.Helper()
	if opts == nil {
		opts = &MakeFileOptions{}
	}

	dir := opts.Dir
	if dir == "" {
		dir = t.TempDir()
	}
	path := filepath.Join(dir, opts.GetName(mdd))

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if opts.DictZip {
		z, err := dictzip.NewWriter(f)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := z.Write(c.Bytes); err != nil {
			t.Fatal(err)
		}
		if err := z.Close(); err != nil {
			t.Fatal(err)
		}
	} else {
		if _, err := f.Write(c.Bytes); err != nil {
			t.Fatal(err)
		}
	}

	return path
}
