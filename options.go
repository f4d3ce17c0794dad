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
	"io"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/ianlewis/go-mdict/collation"
	"github.com/ianlewis/go-mdict/internal/cache"
)

// DefaultMaxLinkHops is the default limit on links followed by a lookup.
const DefaultMaxLinkHops = 8

// Passcode unlocks containers whose key section header is encrypted.
type Passcode struct {
	// RegCode is the hex encoded 16 byte registration code.
	RegCode string

	// UserID is the e-mail address or device id the code was issued for.
	UserID string
}

// Options are options for opening a dictionary.
type Options struct {
	// Logger receives diagnostics. Defaults to discarding them.
	Logger *slog.Logger

	// CacheSize is the number of decoded key blocks and of decoded record
	// blocks kept in memory.
	CacheSize int

	// MaxLinkHops is the number of links a lookup follows before failing
	// with ErrLinkCycle.
	MaxLinkHops int

	// Locale selects a locale ordering for keys. Defaults to binary order.
	Locale language.Tag

	// Mode is the default lookup mode. Defaults to the order the keys are
	// stored in.
	Mode *collation.Mode

	// Passcode unlocks encrypted containers.
	Passcode *Passcode
}

// DefaultOptions is the default options for a Dictionary.
var DefaultOptions = &Options{
	Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	CacheSize:   cache.DefaultSize,
	MaxLinkHops: DefaultMaxLinkHops,
}

// LookupOptions are options for a single lookup.
type LookupOptions struct {
	// Mode overrides the dictionary's default lookup mode.
	Mode *collation.Mode

	// Nth selects among keys that are equal under the mode, in stored
	// order. Links are always resolved to their first match.
	Nth int
}
