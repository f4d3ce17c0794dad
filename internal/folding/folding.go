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

// Package folding builds the text transformers used to fold keys before they
// are compared.
package folding

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Options select the folding steps.
type Options struct {
	// Case performs Unicode case folding.
	Case bool

	// Punct removes punctuation, symbols, diacritics and all whitespace.
	Punct bool
}

// New returns a new transformer for the options. Transformers are stateful so
// a new one is needed for every string.
func New(opts Options) transform.Transformer {
	var t []transform.Transformer
	if opts.Punct {
		t = append(t,
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.P)),
			runes.Remove(runes.In(unicode.S)),
		)
	}
	t = append(t, &SpaceFolder{Drop: opts.Punct})
	if opts.Case {
		t = append(t, cases.Fold())
	}
	t = append(t, norm.NFC)
	return transform.Chain(t...)
}

// String folds s with the given options.
func String(s string, opts Options) string {
	out, _, err := transform.String(New(opts), s)
	if err != nil {
		// The transformers in the chain do not fail on complete input.
		return s
	}
	return out
}
