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

// Package mdict implements a library for reading MDict dictionaries in pure
// Go.
//
// MDict dictionaries are distributed as a pair of containers:
//  1. An .mdx file that holds the dictionary's keys and articles. Articles
//     are text, usually HTML, and may link to other keys.
//  2. An optional .mdd file that holds resources such as images, sounds and
//     style sheets, keyed by path.
//
// Both containers share one layout: a header of XML attributes, a key
// section of compressed key blocks and a record section of compressed record
// blocks. Containers are read lazily; a lookup decodes only the blocks it
// needs and keeps recently decoded blocks in memory.
//
// A Dictionary is safe for concurrent use.
package mdict
