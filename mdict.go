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
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ianlewis/go-dictzip"

	"github.com/ianlewis/go-mdict/collation"
	"github.com/ianlewis/go-mdict/header"
	"github.com/ianlewis/go-mdict/internal/cache"
	"github.com/ianlewis/go-mdict/internal/crypt"
	"github.com/ianlewis/go-mdict/keyblock"
	"github.com/ianlewis/go-mdict/record"
)

// titlePlaceholder is the title written by the dictionary builder when the
// author leaves it blank.
const titlePlaceholder = "Title (No HTML code allowed)"

// Dictionary is an open MDict container.
type Dictionary struct {
	r      io.ReaderAt
	closer io.Closer
	path   string

	header  *header.Header
	keys    *keyblock.Index
	records *record.Index

	keyCache    *cache.Cache[[]keyblock.Entry]
	recordCache *cache.Cache[[]byte]

	title   string
	mode    collation.Mode
	maxHops int
	logger  *slog.Logger

	closed atomic.Bool

	mu  sync.RWMutex
	err error
}

// OpenAll opens all dictionaries under a directory. This function will return
// all successfully opened dictionaries along with any errors that occurred.
func OpenAll(path string, opts *Options) ([]*Dictionary, []error) {
	var dicts []*Dictionary
	var errs []error
	if err := filepath.WalkDir(path, func(path string, info fs.DirEntry, err error) error {
		// Walking the file path will ignore errors.
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if !info.IsDir() && isContainer(info.Name()) {
			dict, err := OpenFile(path, opts)
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			dicts = append(dicts, dict)
		}
		return nil
	}); err != nil {
		errs = append(errs, err)
		return nil, errs
	}
	return dicts, errs
}

func isContainer(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".dz" {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(name, filepath.Ext(name))))
	}
	return ext == ".mdx" || ext == ".mdd"
}

// OpenFile opens the container at path. Containers compressed with dictzip
// (.mdx.dz, .mdd.dz) are read through the dictzip index.
func OpenFile(path string, opts *Options) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %w", ErrIO, path, err)
	}

	var r io.ReaderAt = f
	if strings.EqualFold(filepath.Ext(path), ".dz") {
		z, err := dictzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%w: reading %q: %w", ErrIO, path, err)
		}
		r = z
	}

	d, err := Open(r, opts)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	d.closer = f
	d.path = path
	if d.title == "" {
		base := filepath.Base(path)
		for _, ext := range []string{".dz", ".mdx", ".mdd"} {
			if strings.EqualFold(filepath.Ext(base), ext) {
				base = base[:len(base)-len(ext)]
			}
		}
		d.title = base
	}
	return d, nil
}

// Open reads the header and indexes of the container in r. Key and record
// blocks are decoded on demand. r must remain readable until the Dictionary
// is closed.
func Open(r io.ReaderAt, opts *Options) (*Dictionary, error) {
	if opts == nil {
		opts = DefaultOptions
	}
	logger := opts.Logger
	if logger == nil {
		logger = DefaultOptions.Logger
	}
	r = newSource(r)

	h, err := header.New(r)
	if err != nil {
		return nil, err
	}
	flags := h.Flags()
	meta := h.Meta()

	var regKey []byte
	if flags.Encryption.Has(header.EncryptIndexHeader) && opts.Passcode != nil {
		regKey, err = passcodeKey(opts.Passcode)
		if err != nil {
			return nil, err
		}
	}

	indexMode := collation.Mode{
		IgnoreCase:  !meta.KeyCaseSensitive,
		IgnorePunct: meta.StripKey,
		Locale:      opts.Locale,
	}
	keys, err := keyblock.NewIndex(r, h.Size(), &keyblock.Options{
		Flags:  flags,
		Text:   h.Text(),
		Mode:   indexMode,
		RegKey: regKey,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	records, err := record.NewIndex(r, keys.End(), flags)
	if err != nil {
		return nil, err
	}
	if records.Entries() != keys.Entries() {
		return nil, fmt.Errorf("%w: record section has %d entries, key section has %d",
			ErrHeaderCorrupt, records.Entries(), keys.Entries())
	}

	size := opts.CacheSize
	if size <= 0 {
		size = cache.DefaultSize
	}
	maxHops := opts.MaxLinkHops
	if maxHops <= 0 {
		maxHops = DefaultMaxLinkHops
	}
	mode := indexMode
	if opts.Mode != nil {
		mode = *opts.Mode
	}

	title := meta.Title
	if strings.TrimSpace(title) == "" || title == titlePlaceholder {
		title = ""
	}

	d := &Dictionary{
		r:           r,
		header:      h,
		keys:        keys,
		records:     records,
		keyCache:    cache.New[[]keyblock.Entry](size),
		recordCache: cache.New[[]byte](size),
		title:       title,
		mode:        mode,
		maxHops:     maxHops,
		logger:      logger,
	}
	logger.Debug("opened dictionary",
		slog.String("title", title),
		slog.String("kind", flags.Kind.String()),
		slog.Float64("version", flags.Version),
		slog.String("encoding", h.Text().Name()),
		slog.Int64("entries", keys.Entries()),
		slog.Int("key_blocks", keys.Len()),
		slog.Int("record_blocks", records.Len()),
	)
	return d, nil
}

// passcodeKey derives the key section key from a registration code.
func passcodeKey(p *Passcode) ([]byte, error) {
	code, err := hex.DecodeString(strings.TrimSpace(p.RegCode))
	if err != nil || len(code) != crypt.Ripemd128Size {
		return nil, fmt.Errorf("%w: registration code must be %d hex encoded bytes",
			ErrUnsupportedEncryption, crypt.Ripemd128Size)
	}
	key, err := crypt.RegKey(code, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedEncryption, err)
	}
	return key, nil
}

// Title returns the dictionary title. Dictionaries opened from a file without
// a title are named after the file.
func (d *Dictionary) Title() string {
	return d.title
}

// Description returns the dictionary description.
func (d *Dictionary) Description() string {
	return d.header.Meta().Description
}

// Meta returns the dictionary metadata.
func (d *Dictionary) Meta() header.Meta {
	return d.header.Meta()
}

// Flags returns the container layout flags.
func (d *Dictionary) Flags() header.Flags {
	return d.header.Flags()
}

// Kind returns whether the container holds articles or resources.
func (d *Dictionary) Kind() header.Kind {
	return d.header.Flags().Kind
}

// Header returns the container header.
func (d *Dictionary) Header() *header.Header {
	return d.header
}

// Path returns the path the dictionary was opened from, if any.
func (d *Dictionary) Path() string {
	return d.path
}

// EntryCount returns the number of keys in the dictionary.
func (d *Dictionary) EntryCount() int64 {
	return d.keys.Entries()
}

// Mode returns the default lookup mode.
func (d *Dictionary) Mode() collation.Mode {
	return d.mode
}

// IndexMode returns the order the keys are stored in.
func (d *Dictionary) IndexMode() collation.Mode {
	return d.keys.Mode()
}

// CacheStats counts block cache activity.
type CacheStats struct {
	// Hits is the number of blocks served from memory.
	Hits uint64

	// Loads is the number of blocks read and decoded.
	Loads uint64

	// Shared is the number of requests that waited on another request's
	// decode of the same block.
	Shared uint64
}

// Stats are the dictionary's cache statistics.
type Stats struct {
	KeyBlocks    CacheStats
	RecordBlocks CacheStats
}

// Stats returns the dictionary's cache statistics.
func (d *Dictionary) Stats() Stats {
	k, r := d.keyCache.Stats(), d.recordCache.Stats()
	return Stats{
		KeyBlocks:    CacheStats(k),
		RecordBlocks: CacheStats(r),
	}
}

// Close releases the dictionary's caches and closes the file it was opened
// from. Lookups after Close fail with ErrClosed.
func (d *Dictionary) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	d.keyCache.Purge()
	d.recordCache.Purge()
	if d.closer != nil {
		if err := d.closer.Close(); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	return nil
}

// check returns the error that prevents the dictionary from serving queries.
func (d *Dictionary) check() error {
	if d.closed.Load() {
		return ErrClosed
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.err
}

// fail records err if it leaves the dictionary unusable and returns it.
func (d *Dictionary) fail(err error) error {
	if err == nil || !fatal(err) {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err == nil {
		d.err = fmt.Errorf("dictionary unusable: %w", err)
		d.logger.Error("dictionary unusable",
			slog.String("title", d.title),
			slog.Any("err", err),
		)
	}
	return err
}

func (d *Dictionary) keyBlock(i int) ([]keyblock.Entry, error) {
	entries, err := d.keyCache.Get(i, func() ([]keyblock.Entry, error) {
		return d.keys.Decode(i)
	})
	if err != nil {
		return nil, d.fail(err)
	}
	return entries, nil
}

func (d *Dictionary) recordBlock(i int) ([]byte, error) {
	data, err := d.recordCache.Get(i, func() ([]byte, error) {
		return d.records.Decode(i)
	})
	if err != nil {
		return nil, d.fail(err)
	}
	return data, nil
}
