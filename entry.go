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

// Entry is a resolved dictionary entry.
type Entry struct {
	query string
	key   string
	links []string
	data  []byte
	text  string
}

// Query returns the keyword the lookup started from.
func (e *Entry) Query() string {
	return e.query
}

// Key returns the stored key of the entry that was resolved. It differs from
// the query when links were followed or the lookup ignored case or
// punctuation.
func (e *Entry) Key() string {
	return e.key
}

// Links returns the link targets followed to reach the entry, in order.
func (e *Entry) Links() []string {
	return e.links
}

// Data returns the entry's raw bytes with the record terminator removed.
func (e *Entry) Data() []byte {
	return e.data
}

// Text returns the entry's decoded article. It is empty for resources.
func (e *Entry) Text() string {
	return e.text
}

// String returns a string representation of the Entry.
func (e *Entry) String() string {
	if e.text == "" {
		return e.key + "\n"
	}
	return e.key + "\n" + e.text + "\n"
}
