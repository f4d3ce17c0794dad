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

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-mdict"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeNotFound is the exit code when a query has no results.
	ExitCodeNotFound

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrMdutil is a parent error for all command errors.
var ErrMdutil = errors.New("mdutil")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrMdutil)

// ErrNoResults indicates that a query matched nothing.
var ErrNoResults = fmt.Errorf("%w: no results", ErrMdutil)

// ErrOpen indicates that some dictionaries could not be opened.
var ErrOpen = fmt.Errorf("%w: opening dictionaries", ErrMdutil)

var copyrightNames = []string{
	"2026 Ian Lewis",
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

// dictOptions returns the options for opening dictionaries given the global
// flags.
func dictOptions(c *cli.Context) *mdict.Options {
	opts := *mdict.DefaultOptions

	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	opts.Logger = slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))

	if code := c.String("regcode"); code != "" {
		opts.Passcode = &mdict.Passcode{
			RegCode: code,
			UserID:  c.String("user-id"),
		}
	}
	return &opts
}

// openDicts opens the dictionaries named on the command line, or all
// dictionaries in the data directories when none are named.
func openDicts(c *cli.Context, files []string) ([]*mdict.Dictionary, []error) {
	opts := dictOptions(c)

	var dicts []*mdict.Dictionary
	var errs []error
	if len(files) > 0 {
		for _, path := range files {
			d, err := mdict.OpenFile(path, opts)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			dicts = append(dicts, d)
		}
		return dicts, errs
	}

	for _, path := range c.StringSlice("data-dir") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		openDicts, openErrs := mdict.OpenAll(path, opts)

		dicts = append(dicts, openDicts...)
		errs = append(errs, openErrs...)
	}

	return dicts, errs
}

func closeAll(dicts []*mdict.Dictionary) {
	for _, d := range dicts {
		_ = d.Close()
	}
}

// reportErrs prints errs and returns an error if there were any.
func reportErrs(c *cli.Context, errs []error) error {
	for _, err := range errs {
		fmt.Fprintln(c.App.ErrWriter, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %d failed", ErrOpen, len(errs))
	}
	return nil
}

func newMdutilApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Search MDict dictionaries.",
		Description: strings.Join([]string{
			"MDict utility written in Go.",
			"http://github.com/ianlewis/go-mdict",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "data-dir",
				Usage:   "include dictionaries in `DIR`",
				Aliases: []string{"d"},
				EnvVars: []string{"MDICT_DATA_DIR"},
				Value:   cli.NewStringSlice(dictLocations()...),
			},
			&cli.StringFlag{
				Name:    "user-id",
				Usage:   "unlock dictionaries registered to `ID`",
				EnvVars: []string{"MDICT_USER_ID"},
			},
			&cli.StringFlag{
				Name:    "regcode",
				Usage:   "hex encoded registration `CODE`",
				EnvVars: []string{"MDICT_REGCODE"},
			},
			&cli.BoolFlag{
				Name:               "verbose",
				Usage:              "print diagnostics to stderr",
				Aliases:            []string{"v"},
				DisableDefaultText: true,
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
		},
		Copyright:       strings.Join(copyrightNames, "\n"),
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			if c.Bool("version") {
				return printVersion(c)
			}

			check(cli.ShowAppHelp(c))
			return nil
		},
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return fmt.Errorf("%w: %w", ErrFlagParse, err)
		},
		Commands: []*cli.Command{
			listCommand,
			infoCommand,
			queryCommand,
			keysCommand,
			resourceCommand,
		},
	}
}
